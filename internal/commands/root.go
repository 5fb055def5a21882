package commands

import (
	"github.com/spf13/cobra"

	"github.com/furrow-dev/furrow/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "furrow",
		Short:   "Cash-flow and debt projections for farm businesses",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newProjectCommand())
	rootCmd.AddCommand(newDebtsCommand())
	rootCmd.AddCommand(newHistoryCommand())

	return rootCmd
}
