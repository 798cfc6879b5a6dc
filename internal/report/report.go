package report

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/adbudget-cli/internal/advisor"
)

// Output column names.
const (
	ColSuggestedBudget     = "Suggested Budget"
	ColBudgetAction        = "Budget Action"
	ColReason              = "Reason"
	ColExpectedConversions = "Expected Conversions"
)

// Format is an export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatXLSX     Format = "xlsx"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
)

// ParseFormat accepts a format name as given on the command line.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "json":
		return FormatJSON, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use csv|xlsx|json|md)", s)
	}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", false
	}
	f, err := ParseFormat(ext)
	if err != nil {
		return "", false
	}
	return f, true
}

// Report is the presentation of one run: rows sorted by action label
// descending, plus the benchmark and diagnostics.
type Report struct {
	Name     string
	Result   *advisor.Result
	Extended bool
	Glyphs   bool
	rows     []advisor.Row
}

// New builds a report for res. The result itself is not reordered.
func New(name string, res *advisor.Result, extended, glyphs bool) *Report {
	rows := make([]advisor.Row, len(res.Rows))
	copy(rows, res.Rows)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Action.Label(glyphs) > rows[j].Action.Label(glyphs)
	})
	return &Report{Name: name, Result: res, Extended: extended, Glyphs: glyphs, rows: rows}
}

// Rows returns the rows in presentation order.
func (r *Report) Rows() []advisor.Row { return r.rows }

// Columns returns the output header.
func (r *Report) Columns() []string {
	cols := []string{
		advisor.ColCampaign, advisor.ColBudget, ColSuggestedBudget, advisor.ColConversions,
		advisor.ColCostPerConv, advisor.ColCTR, advisor.ColClicks, ColBudgetAction, ColReason,
	}
	if r.Extended {
		cols = append(cols, ColExpectedConversions)
	}
	return cols
}

// Records renders every row as text cells aligned with Columns.
func (r *Report) Records() [][]string {
	out := make([][]string, 0, len(r.rows))
	for _, row := range r.rows {
		rec := []string{
			row.Campaign,
			formatNum(row.Budget),
			formatMoney(row.SuggestedBudget),
			formatNum(row.Conversions),
			formatNum(row.CostPerConv),
			formatNum(row.CTR),
			formatNum(row.Clicks),
			row.Action.Label(r.Glyphs),
			row.Reason,
		}
		if r.Extended {
			rec = append(rec, formatMoney(row.ExpectedConversions))
		}
		out = append(out, rec)
	}
	return out
}

// Write renders the report in the given format.
func (r *Report) Write(w io.Writer, f Format) error {
	switch f {
	case FormatCSV:
		return r.WriteCSV(w)
	case FormatXLSX:
		return r.WriteXLSX(w)
	case FormatJSON:
		return r.WriteJSON(w)
	case FormatMarkdown:
		_, err := io.WriteString(w, r.Markdown())
		return err
	default:
		return fmt.Errorf("unsupported format: %s", f)
	}
}

func formatNum(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatMoney(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
