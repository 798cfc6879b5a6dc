package table

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Table is a row-oriented, text-valued, in-memory table with named columns.
// Rows shorter than the header are padded on construction.
type Table struct {
	header []string
	index  map[string]int
	rows   [][]string
	// lines holds the source data line of each row; nil means row i is line i+1.
	lines []int
}

// Row is a read-only view of one table row.
type Row struct {
	t    *Table
	vals []string
	// Line is the 1-based data line in the table the row was first read into
	// (header excluded). It survives Filter.
	Line int
}

// New builds a table from a header and rows. Header names are trimmed and
// NFC-normalized; duplicate names resolve to the first occurrence.
func New(header []string, rows [][]string) *Table {
	t := &Table{header: make([]string, len(header)), index: make(map[string]int, len(header))}
	for i, h := range header {
		name := CleanHeader(h)
		t.header[i] = name
		if _, dup := t.index[name]; !dup {
			t.index[name] = i
		}
	}
	t.rows = make([][]string, 0, len(rows))
	for _, r := range rows {
		t.rows = append(t.rows, pad(r, len(header)))
	}
	return t
}

// CleanHeader trims whitespace and a leading BOM, then normalizes to NFC.
func CleanHeader(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	return norm.NFC.String(strings.TrimSpace(s))
}

func pad(r []string, n int) []string {
	if len(r) > n {
		n = len(r)
	}
	out := make([]string, n)
	copy(out, r)
	return out
}

// Columns returns the header in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.header))
	copy(out, t.header)
	return out
}

// Has reports whether a column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Row returns the i-th row view.
func (t *Table) Row(i int) Row {
	line := i + 1
	if t.lines != nil {
		line = t.lines[i]
	}
	return Row{t: t, vals: t.rows[i], Line: line}
}

// Column returns a copy of all values in the named column.
func (t *Table) Column(name string) ([]string, bool) {
	idx, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[idx]
	}
	return out, true
}

// SetColumn replaces the values of an existing column, or appends a new column.
// len(vals) must equal Len().
func (t *Table) SetColumn(name string, vals []string) error {
	if len(vals) != len(t.rows) {
		return fmt.Errorf("set column %q: got %d values for %d rows", name, len(vals), len(t.rows))
	}
	idx, ok := t.index[name]
	if !ok {
		idx = len(t.header)
		t.header = append(t.header, name)
		t.index[name] = idx
		for i := range t.rows {
			t.rows[i] = pad(t.rows[i], idx+1)
		}
	}
	for i, v := range vals {
		t.rows[i][idx] = v
	}
	return nil
}

// Filter returns a new table holding copies of the rows for which keep returns true.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := &Table{header: t.Columns(), index: make(map[string]int, len(t.index))}
	for k, v := range t.index {
		out.index[k] = v
	}
	out.lines = make([]int, 0, len(t.rows))
	for i := range t.rows {
		r := t.Row(i)
		if !keep(r) {
			continue
		}
		out.rows = append(out.rows, pad(t.rows[i], len(t.header)))
		out.lines = append(out.lines, r.Line)
	}
	return out
}

// MapRows applies fn to every row in order and collects the results.
func MapRows[T any](t *Table, fn func(Row) T) []T {
	out := make([]T, 0, len(t.rows))
	for i := range t.rows {
		out = append(out, fn(t.Row(i)))
	}
	return out
}

// Get returns the value of the named column for this row.
func (r Row) Get(name string) (string, bool) {
	idx, ok := r.t.index[name]
	if !ok || idx >= len(r.vals) {
		return "", false
	}
	return r.vals[idx], true
}

// Value returns the named column's value, or "" when the column is absent.
func (r Row) Value(name string) string {
	v, _ := r.Get(name)
	return v
}
