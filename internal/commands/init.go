package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/furrow-dev/furrow/internal/config"
	"github.com/furrow-dev/furrow/internal/importer"
)

const sampleDebts = importer.DebtsHeader + `
bb-custeio-24,Banco do Brasil custeio,bank,LOCAL,1800000,0.115,custeio,2024/25=900000;2025/26=900000
rabo-usd-22,Rabobank export prepayment,trading,USD,200000,0.072,long,2024/25=50000;2025/26=50000;2026/27=100000
fazenda-sul,Fazenda Sul purchase,land,LOCAL,2400000,0.06,,2024/25=600000;2025/26=600000;2026/27=600000;2027/28=600000
agro-insumos,Agro Insumos seed credit,supplier,LOCAL,50000,0,,
`

const sampleSeries = importer.SeriesHeader + `
2023/24,9200000,6100000,450000,0,0,0,0,0
2024/25,10400000,6500000,480000,0,-350000,0,120000,0
2025/26,11100000,6900000,500000,800000,0,0,120000,0
2026/27,11800000,7200000,520000,0,400000,50000,120000,0
`

func newInitCommand() *cobra.Command {
	var org string
	var scenario string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new furrow project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, org, scenario)
		},
	}

	cmd.Flags().StringVar(&org, "org", "", "organization name (required)")
	_ = cmd.MarkFlagRequired("org")
	cmd.Flags().StringVar(&scenario, "scenario", "base", "scenario name")

	return cmd
}

func runInit(out io.Writer, dir, org, scenario string) error {
	for _, d := range []string{"data", "logs", "reports"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	cfg := config.Default(org, scenario)
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	samples := map[string]string{
		cfg.Data.Debts:  sampleDebts,
		cfg.Data.Series: sampleSeries,
	}
	for rel, content := range samples {
		if err := os.WriteFile(filepath.Join(dir, rel), []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", rel, err)
		}
	}

	gitignore := ".env\nreports/\n*.prom\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	fmt.Fprintf(out, "Initialized furrow project at %s\n", dir)
	return nil
}
