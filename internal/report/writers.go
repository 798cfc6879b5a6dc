package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/adbudget-cli/internal/advisor"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Recommendations"

// DefaultFilename is the download name used for CSV exports.
const DefaultFilename = "campaign_budget_recommendations.csv"

// WriteCSV writes the header and rows as comma separated values.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(r.Columns()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(r.Records()); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// WriteXLSX writes a single-sheet workbook. Numeric cells stay numeric.
func (r *Report) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	cols := r.Columns()
	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, row := range r.rows {
		cells := []interface{}{
			row.Campaign,
			cellNum(row.Budget),
			cellNum(row.SuggestedBudget),
			cellNum(row.Conversions),
			cellNum(row.CostPerConv),
			cellNum(row.CTR),
			cellNum(row.Clicks),
			row.Action.Label(r.Glyphs),
			row.Reason,
		}
		if r.Extended {
			cells = append(cells, cellNum(row.ExpectedConversions))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// cellNum leaves missing values as empty cells.
func cellNum(f float64) interface{} {
	if p := advisor.Nullable(f); p != nil {
		return *p
	}
	return nil
}

// Document is the JSON shape of a report.
type Document struct {
	Name        string              `json:"name,omitempty"`
	Benchmark   advisor.Benchmark   `json:"benchmark"`
	Diagnostics advisor.Diagnostics `json:"diagnostics"`
	Counts      map[string]int      `json:"counts"`
	Rows        []DocumentRow       `json:"rows"`
}

// DocumentRow is one recommendation in a Document. Missing numbers are null.
type DocumentRow struct {
	Line                int      `json:"line,omitempty"`
	Campaign            string   `json:"campaign"`
	Budget              *float64 `json:"budget"`
	SuggestedBudget     *float64 `json:"suggested_budget"`
	Conversions         *float64 `json:"conversions"`
	CostPerConv         *float64 `json:"cost_per_conv"`
	CTR                 *float64 `json:"ctr"`
	Clicks              *float64 `json:"clicks"`
	ConvRate            *float64 `json:"conv_rate"`
	Action              string   `json:"action"`
	Reason              string   `json:"reason"`
	ExpectedConversions *float64 `json:"expected_conversions,omitempty"`
}

// Document converts the report into its JSON form.
func (r *Report) Document() Document {
	doc := Document{
		Name:        r.Name,
		Benchmark:   r.Result.Benchmark,
		Diagnostics: r.Result.Diagnostics,
		Counts:      map[string]int{},
		Rows:        make([]DocumentRow, 0, len(r.rows)),
	}
	for a, n := range r.Result.Counts() {
		doc.Counts[a.String()] = n
	}
	for _, row := range r.rows {
		dr := DocumentRow{
			Line:            row.Line,
			Campaign:        row.Campaign,
			Budget:          advisor.Nullable(row.Budget),
			SuggestedBudget: advisor.Nullable(row.SuggestedBudget),
			Conversions:     advisor.Nullable(row.Conversions),
			CostPerConv:     advisor.Nullable(row.CostPerConv),
			CTR:             advisor.Nullable(row.CTR),
			Clicks:          advisor.Nullable(row.Clicks),
			ConvRate:        advisor.Nullable(row.ConvRate),
			Action:          row.Action.Label(r.Glyphs),
			Reason:          row.Reason,
		}
		if r.Extended {
			dr.ExpectedConversions = advisor.Nullable(row.ExpectedConversions)
		}
		doc.Rows = append(doc.Rows, dr)
	}
	return doc
}

// WriteJSON writes the Document form, indented.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.Document()); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// Markdown renders a compact plain-text report for terminals and notes.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[RUN SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	d := r.Result.Diagnostics
	b.WriteString(fmt.Sprintf("Rows: %d (excluded %d, dropped %d, classified %d)\n", d.InputRows, d.Excluded, d.Dropped, len(r.rows)))
	counts := r.Result.Counts()
	b.WriteString(fmt.Sprintf("Actions: %s %d, %s %d, %s %d\n\n",
		advisor.ActionIncrease.Label(r.Glyphs), counts[advisor.ActionIncrease],
		advisor.ActionSlightIncrease.Label(r.Glyphs), counts[advisor.ActionSlightIncrease],
		advisor.ActionDecrease.Label(r.Glyphs), counts[advisor.ActionDecrease]))

	bm := r.Result.Benchmark
	b.WriteString("[BENCHMARK]\n")
	b.WriteString(fmt.Sprintf("Source: %s\n", bm.Source))
	b.WriteString(fmt.Sprintf("- Conversions: %s\n", orDash(formatNum(bm.AvgConversions))))
	b.WriteString(fmt.Sprintf("- Cost / conv.: %s\n", orDash(formatNum(bm.AvgCPA))))
	b.WriteString(fmt.Sprintf("- CTR: %s\n", orDash(formatNum(bm.AvgCTR))))
	b.WriteString(fmt.Sprintf("- Conv. rate: %s\n\n", orDash(formatNum(bm.AvgConvRate))))

	if len(d.Warnings) > 0 {
		b.WriteString("[WARNINGS]\n")
		for _, w := range d.Warnings {
			b.WriteString("- " + w + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("[RECOMMENDATIONS]\n")
	cols := r.Columns()
	b.WriteString("| " + strings.Join(cols, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(cols)) + "\n")
	for _, rec := range r.Records() {
		for i := range rec {
			rec[i] = safeVal(rec[i])
		}
		b.WriteString("| " + strings.Join(rec, " | ") + " |\n")
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
