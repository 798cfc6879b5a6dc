package advisor

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/KaramelBytes/adbudget-cli/internal/table"
)

// BenchmarkSource tells where the benchmark values came from.
type BenchmarkSource string

const (
	SourceAccountTotal BenchmarkSource = "account_total"
	SourceAverages     BenchmarkSource = "campaign_averages"
)

// Benchmark holds the account-level reference values every campaign is
// compared against. NaN marks a value that could not be derived; any
// comparison against it is false.
type Benchmark struct {
	AvgConversions float64
	AvgCPA         float64
	// AvgCTR is in percent units.
	AvgCTR float64
	// AvgConvRate is a fraction (0.02 means 2%).
	AvgConvRate float64
	Source      BenchmarkSource
}

// Fallback reports whether the benchmark was averaged from campaign rows.
func (b Benchmark) Fallback() bool { return b.Source == SourceAverages }

// ResolveBenchmark derives the benchmark from the account-total row of raw
// when present, otherwise from the mean of records.
func ResolveBenchmark(raw *table.Table, records []Record, opt Options) Benchmark {
	if raw != nil && opt.AccountRow != "" {
		for i := 0; i < raw.Len(); i++ {
			r := raw.Row(i)
			if r.Value(ColCampaign) != opt.AccountRow {
				continue
			}
			return Benchmark{
				AvgConversions: ParseNumber(r.Value(ColConversions)),
				AvgCPA:         ParseNumber(r.Value(ColCostPerConv)),
				AvgCTR:         ParseNumber(stripPercent(r.Value(ColCTR))),
				AvgConvRate:    ParseNumber(stripPercent(r.Value(ColConvRate))) / 100,
				Source:         SourceAccountTotal,
			}
		}
	}
	return averageBenchmark(records)
}

func averageBenchmark(records []Record) Benchmark {
	var conv, cpa, ctr, rate mean
	for _, r := range records {
		conv.add(r.Conversions)
		cpa.add(r.CostPerConv)
		ctr.add(r.CTR)
		rate.add(r.ConvRate)
	}
	return Benchmark{
		AvgConversions: conv.value(),
		AvgCPA:         cpa.value(),
		AvgCTR:         ctr.value(),
		AvgConvRate:    rate.value() / 100,
		Source:         SourceAverages,
	}
}

func stripPercent(s string) string { return strings.ReplaceAll(s, "%", "") }

// mean accumulates an arithmetic mean that skips NaN.
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(x float64) {
	if math.IsNaN(x) {
		return
	}
	m.sum += x
	m.n++
}

func (m mean) value() float64 {
	if m.n == 0 {
		return math.NaN()
	}
	return m.sum / float64(m.n)
}

// MarshalJSON writes NaN fields as null.
func (b Benchmark) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		AvgConversions *float64        `json:"avg_conversions"`
		AvgCPA         *float64        `json:"avg_cpa"`
		AvgCTR         *float64        `json:"avg_ctr"`
		AvgConvRate    *float64        `json:"avg_conv_rate"`
		Source         BenchmarkSource `json:"source"`
	}{Nullable(b.AvgConversions), Nullable(b.AvgCPA), Nullable(b.AvgCTR), Nullable(b.AvgConvRate), b.Source})
}

// UnmarshalJSON reads null fields back as NaN.
func (b *Benchmark) UnmarshalJSON(data []byte) error {
	var v struct {
		AvgConversions *float64        `json:"avg_conversions"`
		AvgCPA         *float64        `json:"avg_cpa"`
		AvgCTR         *float64        `json:"avg_ctr"`
		AvgConvRate    *float64        `json:"avg_conv_rate"`
		Source         BenchmarkSource `json:"source"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = Benchmark{
		AvgConversions: FromNullable(v.AvgConversions),
		AvgCPA:         FromNullable(v.AvgCPA),
		AvgCTR:         FromNullable(v.AvgCTR),
		AvgConvRate:    FromNullable(v.AvgConvRate),
		Source:         v.Source,
	}
	return nil
}

// Nullable maps NaN and infinities to nil for JSON output.
func Nullable(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// FromNullable is the inverse of Nullable.
func FromNullable(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}
