package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/furrow-dev/furrow/internal/debtpool"
	"github.com/furrow-dev/furrow/internal/debtservice"
	"github.com/furrow-dev/furrow/internal/model"
	"github.com/furrow-dev/furrow/internal/period"
	"github.com/furrow-dev/furrow/internal/report"
)

func newDebtsCommand() *cobra.Command {
	var repo string
	var clip bool

	cmd := &cobra.Command{
		Use:   "debts",
		Short: "Summarize the consolidated debt pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := openProject(repo)
			if err != nil {
				return err
			}
			defer p.logger.Sync()

			periods, err := p.cfg.Periods()
			if err != nil {
				return err
			}
			idx, err := period.NewIndex(periods)
			if err != nil {
				return err
			}

			src, closeSrc, err := p.debtSource(ctx)
			if err != nil {
				return err
			}
			defer closeSrc()

			debts, err := src.LoadDebts(ctx)
			if err != nil {
				return err
			}
			pool, err := debtpool.Consolidate(
				model.DebtPool{Instruments: debts, FXRate: p.cfg.FXRate()},
				idx,
				debtpool.Options{Clip: p.cfg.Horizon.Clip || clip},
			)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := report.RenderPool(out, pool); err != nil {
				return err
			}
			calc := debtservice.NewCalculator(pool.BankInstruments(), p.cfg.DebtService.BlendedRate)
			weighted := debtservice.WeightedRate(pool.Normalized(model.CategoryBank))
			fmt.Fprintf(out, "\nBlended rate: %s%%  weighted: %s%%\n",
				calc.Rate.Shift(2).StringFixed(2), weighted.Shift(2).StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&repo, "repo", ".", "project directory")
	cmd.Flags().BoolVar(&clip, "clip", false, "drop debt payments outside the horizon instead of failing")

	return cmd
}
