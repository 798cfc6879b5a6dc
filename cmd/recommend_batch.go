package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/adbudget-cli/internal/report"
	"github.com/KaramelBytes/adbudget-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	rbInput    inputFlags
	rbOutDir   string
	rbFormat   string
	rbSave     bool
	rbQuiet    bool
	rbFailFast bool
)

var recommendBatchCmd = &cobra.Command{
	Use:   "recommend-batch <files...>",
	Short: "Recommend budget actions for many exports with progress",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		topt, aopt, err := rbInput.options(cmd.Flags())
		if err != nil {
			return err
		}
		format, err := resolveFormat(rbFormat, "", report.FormatCSV)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		written := map[string]struct{}{}
		var failed []string
		total := len(files)
		for i, path := range files {
			if !rbQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			rep, err := recommendFile(path, topt, aopt)
			if err != nil {
				if rbFailFast {
					return err
				}
				fmt.Fprintf(os.Stderr, "✗ %s: %v\n", path, err)
				failed = append(failed, filepath.Base(path))
				continue
			}

			base := utils.OutputPath(path, rbOutDir, string(format))
			outFile := uniqueOutput(base, written)
			if outFile != base && !rbQuiet {
				fmt.Fprintf(out, "⚠ Output name already used, writing to %s to avoid overwrite.\n", filepath.Base(outFile))
			}
			if err := writeReport(rep, outFile, format); err != nil {
				return err
			}
			written[outFile] = struct{}{}
			if !rbQuiet {
				fmt.Fprintf(out, "✓ Wrote %d recommendations to %s\n", len(rep.Rows()), outFile)
			}
			if rbSave {
				run, err := saveRun(path, aopt, rep)
				if err != nil {
					return err
				}
				if !rbQuiet {
					fmt.Fprintf(out, "✓ Saved run %s\n", run.ID)
				}
			}
		}
		if len(failed) > 0 {
			return fmt.Errorf("%d of %d files failed: %s", len(failed), total, strings.Join(failed, ", "))
		}
		return nil
	},
}

// expandInputs resolves globs and literal paths, deduplicated and sorted.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

// uniqueOutput appends __2, __3, ... when path was already written in this
// batch, e.g. same-named inputs from different directories into one --out-dir.
func uniqueOutput(path string, written map[string]struct{}) string {
	taken := func(p string) bool {
		_, ok := written[p]
		return ok
	}
	if !taken(path) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for idx := 2; ; idx++ {
		cand := fmt.Sprintf("%s__%d%s", stem, idx, ext)
		if !taken(cand) {
			return cand
		}
	}
}

func init() {
	rootCmd.AddCommand(recommendBatchCmd)
	rbInput.register(recommendBatchCmd.Flags())
	recommendBatchCmd.Flags().StringVar(&rbOutDir, "out-dir", "", "directory for outputs (default: next to each input)")
	recommendBatchCmd.Flags().StringVarP(&rbFormat, "format", "f", "csv", "output format: csv|xlsx|json|md")
	recommendBatchCmd.Flags().BoolVar(&rbSave, "save", false, "save each run to the run history")
	recommendBatchCmd.Flags().BoolVar(&rbQuiet, "quiet", false, "suppress progress and non-essential output")
	recommendBatchCmd.Flags().BoolVar(&rbFailFast, "fail-fast", false, "stop at the first file that fails")
}
