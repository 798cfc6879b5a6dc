package table

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type csvReader struct{}

func (csvReader) CanRead(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt")
}

// Read decodes delimited text. UTF-8 and BOM-marked UTF-16 (the Google Ads
// "CSV for Excel" export) are both accepted.
func (csvReader) Read(r io.Reader, opt Options) (*Table, error) {
	dec := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	b, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}
	text := string(b)

	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(text, opt.SkipRows)
	}
	cr := csv.NewReader(strings.NewReader(text))
	// Cells keep leading spaces: " Total: Account" is a different campaign name.
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.Comma = delim

	var recs [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(recs)+1, err)
		}
		recs = append(recs, rec)
	}
	return fromRecords(recs, opt.SkipRows)
}

// sniffDelimiter picks the most frequent candidate on the header line.
// Comma wins ties.
func sniffDelimiter(text string, skip int) rune {
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := ""
	for i := 0; sc.Scan(); i++ {
		if i >= skip {
			line = sc.Text()
			break
		}
	}
	best, bestN := ',', strings.Count(line, ",")
	for _, c := range []rune{'\t', ';'} {
		if n := strings.Count(line, string(c)); n > bestN {
			best, bestN = c, n
		}
	}
	return best
}
