package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankmint/internal/buildinfo"
)

type globalFlags struct {
	dataDir string
	envFile string
	debug   bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:     "bankmint",
		Short:   "Bank statement categorization and cash flow forecasting",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.dataDir, "data-dir", ".", "project directory holding bankmint.yaml")
	rootCmd.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "env file with BANKMINT_* overrides (default .env)")
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newInitCommand(),
		newImportCommand(&flags),
		newTransactionsCommand(&flags),
		newCorrectCommand(&flags),
		newRulesCommand(&flags),
		newSuggestCommand(&flags),
		newPatternsCommand(&flags),
		newForecastCommand(&flags),
		newHistoryCommand(&flags),
	)

	return rootCmd
}
