package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/adbudget-cli/internal/advisor"
	"github.com/KaramelBytes/adbudget-cli/internal/history"
	"github.com/KaramelBytes/adbudget-cli/internal/report"
	"github.com/KaramelBytes/adbudget-cli/internal/table"
	"github.com/KaramelBytes/adbudget-cli/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// inputFlags are the table and classifier overrides shared by recommend and
// recommend-batch.
type inputFlags struct {
	skipRows    int
	delimiter   string
	sheet       string
	totalMarker string
	accountRow  string
	placeholder string
	extended    bool
	glyphs      bool
}

func (in *inputFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&in.skipRows, "skip-rows", 2, "metadata lines before the header row")
	fs.StringVar(&in.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (auto-detect if omitted)")
	fs.StringVar(&in.sheet, "sheet", "", "XLSX: sheet name (first sheet if omitted)")
	fs.StringVar(&in.totalMarker, "total-marker", "", "campaign names containing this are aggregate rows (default \"Total\")")
	fs.StringVar(&in.accountRow, "account-row", "", "campaign name of the account-total row (default \"Total: Account\")")
	fs.StringVar(&in.placeholder, "placeholder", "", "token meaning 'no data' (default \"--\")")
	fs.BoolVar(&in.extended, "extended", true, "include Expected Conversions")
	fs.BoolVar(&in.glyphs, "glyphs", false, "prefix action labels with colored squares")
}

// resetFlags restores defaults so repeated executions in one process start clean.
func resetFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

// options merges config with explicitly set flags.
func (in *inputFlags) options(fs *pflag.FlagSet) (table.Options, advisor.Options, error) {
	c := currentConfig()
	topt := table.DefaultOptions()
	topt.SkipRows = c.SkipRows
	aopt := c.AdvisorOptions()

	if fs.Changed("skip-rows") {
		if in.skipRows < 0 {
			return topt, aopt, fmt.Errorf("--skip-rows must be >= 0")
		}
		topt.SkipRows = in.skipRows
	}
	if in.delimiter != "" {
		switch in.delimiter {
		case ",":
			topt.Delimiter = ','
		case "\t", "tab":
			topt.Delimiter = '\t'
		case ";":
			topt.Delimiter = ';'
		default:
			return topt, aopt, fmt.Errorf("unsupported --delimiter: %s", in.delimiter)
		}
	}
	topt.Sheet = in.sheet
	if fs.Changed("total-marker") {
		aopt.TotalMarker = in.totalMarker
	}
	if fs.Changed("account-row") {
		aopt.AccountRow = in.accountRow
	}
	if fs.Changed("placeholder") {
		aopt.Placeholder = in.placeholder
	}
	if fs.Changed("extended") {
		aopt.Extended = in.extended
	}
	if fs.Changed("glyphs") {
		aopt.Glyphs = in.glyphs
	}
	return topt, aopt, nil
}

// recommendFile runs the whole pipeline for one input file.
func recommendFile(path string, topt table.Options, aopt advisor.Options) (*report.Report, error) {
	raw, err := table.ReadFile(path, topt)
	if err != nil {
		return nil, err
	}
	res, err := advisor.Run(raw, aopt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	log := logger.WithField("file", filepath.Base(path))
	for _, msg := range res.Diagnostics.Warnings {
		log.Warn(msg)
	}
	counts := res.Counts()
	log.WithFields(logrus.Fields{
		"rows":      len(res.Rows),
		"excluded":  res.Diagnostics.Excluded,
		"dropped":   res.Diagnostics.Dropped,
		"benchmark": res.Benchmark.Source,
		"increase":  counts[advisor.ActionIncrease],
		"slight":    counts[advisor.ActionSlightIncrease],
		"decrease":  counts[advisor.ActionDecrease],
	}).Debug("recommendations computed")
	return report.New(filepath.Base(path), res, aopt.Extended, aopt.Glyphs), nil
}

// resolveFormat picks the output format from an explicit flag or the file extension.
func resolveFormat(flag, path string, fallback report.Format) (report.Format, error) {
	if strings.TrimSpace(flag) != "" {
		return report.ParseFormat(flag)
	}
	if path != "" {
		if f, ok := report.FormatFromPath(path); ok {
			return f, nil
		}
	}
	return fallback, nil
}

func writeReport(rep *report.Report, path string, f report.Format) error {
	var buf bytes.Buffer
	if err := rep.Write(&buf, f); err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func saveRun(source string, aopt advisor.Options, rep *report.Report) (*history.Run, error) {
	run := history.NewRun(source, aopt.Rules, rep)
	if err := history.NewStore(currentConfig().RunsDir).Save(run); err != nil {
		return nil, fmt.Errorf("save run: %w", err)
	}
	return run, nil
}
