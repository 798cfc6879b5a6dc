package table

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Options controls how an input file is decoded into a Table.
type Options struct {
	// SkipRows is the number of preamble lines before the header row.
	SkipRows int
	// Delimiter for CSV. If 0, sniffed from the header line among ',', ';', '\t'.
	Delimiter rune
	// Sheet selects an XLSX sheet by name; empty means the first sheet.
	Sheet string
}

// DefaultOptions matches the Google Ads report export layout: two metadata
// lines (report title and date range) precede the header.
func DefaultOptions() Options {
	return Options{SkipRows: 2}
}

// Reader decodes one input format into a Table.
type Reader interface {
	CanRead(filename string) bool
	Read(r io.Reader, opt Options) (*Table, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// ErrEmpty indicates the input had no header row after the preamble.
var ErrEmpty = errors.New("no header row found")

// ErrUnsupported indicates no registered reader accepts the file name.
var ErrUnsupported = errors.New("unsupported table format")

// ReadFile selects a reader by file name and decodes the file.
func ReadFile(path string, opt Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()
	return Read(path, f, opt)
}

// Read decodes r using the reader registered for filename. Names without a
// known extension are read as CSV.
func Read(filename string, r io.Reader, opt Options) (*Table, error) {
	for _, rd := range registry {
		if rd.CanRead(filename) {
			return rd.Read(r, opt)
		}
	}
	if !strings.Contains(filename, ".") {
		return csvReader{}.Read(r, opt)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filename)
}

func init() {
	Register(csvReader{})
	Register(xlsxReader{})
}

// fromRecords skips the preamble, takes the next record as header and drops
// fully blank rows.
func fromRecords(recs [][]string, skip int) (*Table, error) {
	if skip < 0 {
		skip = 0
	}
	if len(recs) <= skip {
		return nil, ErrEmpty
	}
	recs = recs[skip:]
	header := recs[0]
	if blank(header) {
		return nil, ErrEmpty
	}
	rows := make([][]string, 0, len(recs)-1)
	for _, r := range recs[1:] {
		if blank(r) {
			continue
		}
		rows = append(rows, r)
	}
	return New(header, rows), nil
}

func blank(r []string) bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
