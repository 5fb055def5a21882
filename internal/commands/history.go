package commands

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/furrow-dev/furrow/internal/report"
)

func newHistoryCommand() *cobra.Command {
	var repo string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past projection runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(repo)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			entries, err := report.Read(root)
			if err != nil {
				return err
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "WHEN\tSCENARIO\tPOLICY\tALERTS\tFINAL CASH\tFINAL BANK DEBT\tRUN")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
					e.Timestamp.Format(time.DateTime), e.Scenario, e.Policy, e.Alerts,
					e.FinalCash.StringFixed(2), e.FinalBankDebt.StringFixed(2), e.RunID)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&repo, "repo", ".", "project directory")
	cmd.Flags().IntVar(&limit, "limit", 20, "show at most this many recent runs (0 for all)")

	return cmd
}
