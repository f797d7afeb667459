package commands

import (
	"github.com/spf13/cobra"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	root      string
	logLevel  string
	logFormat string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "ledgerimport",
		Short:   "Import bank CSV exports into a double-entry ledger",
		Version: version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.root, "root", ".", "ledger directory")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (overrides ledger.yaml)")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: console or json (overrides ledger.yaml)")

	rootCmd.AddCommand(
		newInitCommand(),
		newImportCommand(opts),
		newScanCommand(opts),
		newAccountsCommand(opts),
	)

	return rootCmd
}
