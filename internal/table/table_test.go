package table

import (
	"bytes"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
)

const adsExport = "Campaign performance\n" +
	"\"January 1, 2025 - January 31, 2025\"\n" +
	"Campaign,Conversions,Cost / conv.,CTR,Clicks,Conv. rate,Budget\n" +
	"Brand,120,4.10,5.20%,2300,5.22%,1500\n" +
	"Generic,40,7.00,2.00%,500,8.00%,1000\n" +
	"\n" +
	"Total: Account,160,5.00,3.00%,2800,5.71%,2500\n"

func TestReadCSVSkipsPreambleAndBlankRows(t *testing.T) {
	tbl, err := Read("export.csv", strings.NewReader(adsExport), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"Campaign", "Conversions", "Cost / conv.", "CTR", "Clicks", "Conv. rate", "Budget"}, tbl.Columns())
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, "Brand", tbl.Row(0).Value("Campaign"))
	assert.Equal(t, "5.20%", tbl.Row(0).Value("CTR"))
	assert.Equal(t, "Total: Account", tbl.Row(2).Value("Campaign"))
}

func TestReadCSVSniffsTabAndDecodesUTF16(t *testing.T) {
	tsv := strings.ReplaceAll(adsExport, ",", "\t")
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	b, err := enc.Bytes([]byte(tsv))
	require.NoError(t, err)

	tbl, err := Read("export.csv", bytes.NewReader(b), DefaultOptions())
	require.NoError(t, err)
	assert.True(t, tbl.Has("Cost / conv."))
	assert.Equal(t, "Generic", tbl.Row(1).Value("Campaign"))
	assert.Equal(t, "2.00%", tbl.Row(1).Value("CTR"))
}

func TestReadCSVHeaderWithBOM(t *testing.T) {
	in := "\uFEFFCampaign;Budget\nA;10\n"
	tbl, err := Read("a.csv", strings.NewReader(in), Options{})
	require.NoError(t, err)
	assert.True(t, tbl.Has("Campaign"))
	assert.Equal(t, "10", tbl.Row(0).Value("Budget"))
}

func TestReadCSVKeepsLeadingSpaceInCells(t *testing.T) {
	in := "Campaign, Budget\n Total: Account, 10\nBrand,5\n"
	tbl, err := Read("a.csv", strings.NewReader(in), Options{})
	require.NoError(t, err)
	assert.True(t, tbl.Has("Budget"), "headers are still trimmed")
	assert.Equal(t, " Total: Account", tbl.Row(0).Value("Campaign"))
	assert.Equal(t, " 10", tbl.Row(0).Value("Budget"))
	assert.Equal(t, "Brand", tbl.Row(1).Value("Campaign"))
}

func TestReadEmptyAfterPreamble(t *testing.T) {
	_, err := Read("a.csv", strings.NewReader("only\none\n"), DefaultOptions())
	require.ErrorIs(t, err, ErrEmpty)
}

func TestReadUnsupportedExtension(t *testing.T) {
	_, err := Read("a.pdf", strings.NewReader(""), DefaultOptions())
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet("Report")
	require.NoError(t, err)
	rows := [][]interface{}{
		{"Campaign performance"},
		{"January 2025"},
		{"Campaign", "Conversions", "Cost / conv.", "CTR", "Budget"},
		{"Brand", 120, 4.1, "5.20%", 1500},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Report", cell, &r))
	}
	path := filepath.Join(t.TempDir(), "export.xlsx")
	require.NoError(t, f.SaveAs(path))

	tbl, err := ReadFile(path, Options{SkipRows: 2, Sheet: "report"})
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "Brand", tbl.Row(0).Value("Campaign"))
	assert.Equal(t, "120", tbl.Row(0).Value("Conversions"))

	_, err = ReadFile(path, Options{SkipRows: 2, Sheet: "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Available sheets")
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"), DefaultOptions())
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestColumnSetColumnFilterMap(t *testing.T) {
	tbl := New([]string{" Campaign ", "Budget"}, [][]string{{"A", "10"}, {"Total", "30"}, {"B"}})

	col, ok := tbl.Column("Campaign")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "Total", "B"}, col)

	budgets, _ := tbl.Column("Budget")
	assert.Equal(t, []string{"10", "30", ""}, budgets)

	require.NoError(t, tbl.SetColumn("Budget", []string{"11", "31", "21"}))
	require.NoError(t, tbl.SetColumn("Note", []string{"x", "y", "z"}))
	require.Error(t, tbl.SetColumn("Budget", []string{"1"}))

	kept := tbl.Filter(func(r Row) bool { return !strings.Contains(r.Value("Campaign"), "Total") })
	require.Equal(t, 2, kept.Len())
	assert.Equal(t, 3, kept.Row(1).Line)

	got := MapRows(kept, func(r Row) string { return r.Value("Campaign") + "=" + r.Value("Budget") + r.Value("Note") })
	assert.Equal(t, []string{"A=11x", "B=21z"}, got)

	_, ok = kept.Row(0).Get("Missing")
	assert.False(t, ok)
}
