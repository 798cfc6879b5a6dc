package advisor

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/adbudget-cli/internal/table"
)

// Record is one campaign row with its metrics coerced to numbers.
// A missing value is NaN. Conversions, CostPerConv, CTR and Budget are
// never NaN in records returned by Normalize.
type Record struct {
	// Line is the 1-based data line of the row in the input table.
	Line        int
	Campaign    string
	Conversions float64
	CostPerConv float64
	// CTR is in percent units, as exported (3.5 means 3.5%).
	CTR    float64
	Clicks float64
	// ConvRate is in percent units, as exported.
	ConvRate float64
	Budget   float64
}

// Normalized is the output of the Row Normalizer.
type Normalized struct {
	Records []Record
	// Excluded counts aggregate rows removed by the total marker.
	Excluded int
	// Dropped counts rows removed for a missing mandatory metric.
	Dropped int
}

// Normalize filters aggregate rows out of raw, cleans the metric columns and
// drops rows missing a mandatory metric. raw is not modified.
func Normalize(raw *table.Table, opt Options) (*Normalized, error) {
	if raw == nil {
		return nil, ErrEmptyInput
	}
	if err := CheckSchema(raw); err != nil {
		return nil, err
	}

	candidates := raw.Filter(func(r table.Row) bool {
		return opt.TotalMarker == "" || !strings.Contains(r.Value(ColCampaign), opt.TotalMarker)
	})

	for _, col := range CleanColumns {
		vals, ok := candidates.Column(col)
		if !ok {
			continue
		}
		for i, v := range vals {
			vals[i] = CleanCell(v, opt.Placeholder)
		}
		if err := candidates.SetColumn(col, vals); err != nil {
			return nil, fmt.Errorf("clean column: %w", err)
		}
	}

	parsed := table.MapRows(candidates, func(r table.Row) Record {
		return Record{
			Line:        r.Line,
			Campaign:    r.Value(ColCampaign),
			Conversions: metric(r, ColConversions),
			CostPerConv: metric(r, ColCostPerConv),
			CTR:         metric(r, ColCTR),
			Clicks:      metric(r, ColClicks),
			ConvRate:    metric(r, ColConvRate),
			Budget:      metric(r, ColBudget),
		}
	})

	out := &Normalized{Excluded: raw.Len() - candidates.Len(), Records: make([]Record, 0, len(parsed))}
	for _, rec := range parsed {
		if !rec.complete() {
			out.Dropped++
			continue
		}
		out.Records = append(out.Records, rec)
	}
	return out, nil
}

// CheckSchema returns a *SchemaError listing every required column absent
// from t. The campaign column is reported first.
func CheckSchema(t *table.Table) error {
	var missing []string
	for _, col := range append([]string{ColCampaign}, MandatoryColumns...) {
		if !t.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

func (r Record) complete() bool {
	return !math.IsNaN(r.Conversions) && !math.IsNaN(r.CostPerConv) &&
		!math.IsNaN(r.CTR) && !math.IsNaN(r.Budget)
}

// CleanCell removes the placeholder token and percent signs and trims.
func CleanCell(s, placeholder string) string {
	if placeholder != "" {
		s = strings.ReplaceAll(s, placeholder, "")
	}
	s = strings.ReplaceAll(s, "%", "")
	return strings.TrimSpace(s)
}

// ParseNumber parses a cleaned cell. Anything unparsable, including the
// empty string, is NaN.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func metric(r table.Row, col string) float64 {
	v, ok := r.Get(col)
	if !ok {
		return math.NaN()
	}
	return ParseNumber(v)
}
