package cmd

import (
	"fmt"
	"time"

	"github.com/KaramelBytes/adbudget-cli/internal/advisor"
	"github.com/KaramelBytes/adbudget-cli/internal/history"
	"github.com/KaramelBytes/adbudget-cli/internal/utils"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List, show or delete saved runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		runs, err := runStore().List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "(no runs)")
			return nil
		}
		for _, r := range runs {
			counts := r.Document.Counts
			fmt.Fprintf(out, "- %s  %s  %s  (%d rows: +%d ~%d -%d)\n",
				r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Source, len(r.Document.Rows),
				counts[advisor.ActionIncrease.String()], counts[advisor.ActionSlightIncrease.String()], counts[advisor.ActionDecrease.String()])
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved run as JSON (ID prefixes are accepted)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := runStore().Load(args[0])
		if err != nil {
			return err
		}
		b, err := utils.PrettyJSON(r)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runStore().Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted run %s\n", args[0])
		return nil
	},
}

func runStore() *history.Store { return history.NewStore(currentConfig().RunsDir) }

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)
}
