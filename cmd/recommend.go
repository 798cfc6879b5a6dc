package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/adbudget-cli/internal/report"
	"github.com/spf13/cobra"
)

var (
	recInput  inputFlags
	recOutput string
	recFormat string
	recSave   bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <file>",
	Short: "Recommend budget actions for one campaign export",
	Long: `Reads a campaign export, resolves the account benchmark and classifies every
campaign. Without --output the report is printed to stdout (Markdown unless
--format says otherwise). With --output the format follows --format or the
file extension.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		topt, aopt, err := recInput.options(cmd.Flags())
		if err != nil {
			return err
		}
		format, err := resolveFormat(recFormat, recOutput, report.FormatMarkdown)
		if err != nil {
			return err
		}
		if recOutput != "" && recFormat == "" {
			if _, ok := report.FormatFromPath(recOutput); !ok {
				return fmt.Errorf("cannot infer format from %s; pass --format csv|xlsx|json|md", filepath.Base(recOutput))
			}
		}

		rep, err := recommendFile(path, topt, aopt)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if recOutput != "" {
			if err := writeReport(rep, recOutput, format); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Wrote %d recommendations to %s\n", len(rep.Rows()), recOutput)
		} else {
			if format == report.FormatXLSX {
				return fmt.Errorf("xlsx output requires --output")
			}
			if err := rep.Write(out, format); err != nil {
				return err
			}
		}
		if recSave {
			run, err := saveRun(path, aopt, rep)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Saved run %s\n", run.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)
	recInput.register(recommendCmd.Flags())
	recommendCmd.Flags().StringVarP(&recOutput, "output", "o", "", "path to write the report (.csv, .xlsx, .json, .md)")
	recommendCmd.Flags().StringVarP(&recFormat, "format", "f", "", "output format: csv|xlsx|json|md")
	recommendCmd.Flags().BoolVar(&recSave, "save", false, "save this run to the run history")
}
