package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/furrow-dev/furrow/internal/balancesheet"
	"github.com/furrow-dev/furrow/internal/metrics"
	"github.com/furrow-dev/furrow/internal/projection"
	"github.com/furrow-dev/furrow/internal/report"
)

const (
	formatTable = "table"
	formatCSV   = "csv"
)

type projectOptions struct {
	repo        string
	format      string
	out         string
	clip        bool
	metricsFile string
	noLog       bool
	refresh     bool
}

func newProjectCommand() *cobra.Command {
	var opts projectOptions

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Run the cash-flow and debt projection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatTable && opts.format != formatCSV {
				return fmt.Errorf("unknown format %q (want %s or %s)", opts.format, formatTable, formatCSV)
			}
			return runProject(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.repo, "repo", ".", "project directory")
	cmd.Flags().StringVar(&opts.format, "format", formatTable, "output format: table or csv")
	cmd.Flags().StringVar(&opts.out, "out", "", "directory for waterfall, balance sheet and position CSVs")
	cmd.Flags().BoolVar(&opts.clip, "clip", false, "drop debt payments outside the horizon instead of failing")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	cmd.Flags().BoolVar(&opts.noLog, "no-log", false, "do not append to the run log")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore and replace any cached result")

	return cmd
}

func runProject(cmd *cobra.Command, opts projectOptions) error {
	ctx := cmd.Context()
	p, err := openProject(opts.repo)
	if err != nil {
		return err
	}
	defer p.logger.Sync()

	sc, err := p.scenario(opts.clip)
	if err != nil {
		return err
	}

	debts, closeDebts, err := p.debtSource(ctx)
	if err != nil {
		return err
	}
	defer closeDebts()

	memo, closeMemo := p.memo(ctx)
	defer closeMemo()

	runner := projection.NewRunner(memo, p.logger)
	runner.Refresh = opts.refresh
	res, err := runner.Project(ctx, sc, debts, p.seriesSource())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch opts.format {
	case formatCSV:
		err = report.WriteWaterfall(out, res.States)
	default:
		err = renderTable(out, res)
	}
	if err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if opts.out != "" {
		dir := opts.out
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(p.root, dir)
		}
		if err := writeReports(dir, res); err != nil {
			return err
		}
		p.logger.Info("reports written", zap.String("dir", dir))
	}

	if opts.metricsFile != "" {
		if err := metrics.WriteFile(opts.metricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	if opts.noLog {
		return nil
	}
	return report.Append(p.root, []report.Entry{{
		Timestamp:     time.Now().UTC(),
		RunID:         res.RunID,
		Organization:  res.Organization,
		Scenario:      res.Scenario,
		Policy:        policyLabel(sc.Policy),
		Periods:       res.Totals.Simulated,
		Alerts:        res.Totals.Alerts,
		FinalCash:     res.Totals.FinalCash,
		FinalBankDebt: res.Totals.FinalBankDebt,
	}})
}

func renderTable(w io.Writer, res *projection.Result) error {
	fmt.Fprintf(w, "%s / %s\n\n", res.Organization, res.Scenario)
	if err := report.RenderWaterfall(w, res.States); err != nil {
		return err
	}
	fmt.Fprintln(w)
	if err := report.RenderSummary(w, res.Totals, res.BlendedRate, res.WeightedRate); err != nil {
		return err
	}
	if bad := balancesheet.Check(res.Snapshots); len(bad) > 0 {
		fmt.Fprintf(w, "balance sheet does not balance in %v\n", bad)
	}
	return nil
}

func writeReports(dir string, res *projection.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating reports dir: %w", err)
	}
	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"waterfall.csv", func(w io.Writer) error { return report.WriteWaterfall(w, res.States) }},
		{"balance-sheet.csv", func(w io.Writer) error { return report.WriteBalanceSheet(w, res.Snapshots) }},
		{"debt-position.csv", func(w io.Writer) error { return report.WritePosition(w, res.Position) }},
	}
	for _, f := range files {
		if err := writeFile(filepath.Join(dir, f.name), f.write); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(fh); err != nil {
		fh.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return fh.Close()
}
