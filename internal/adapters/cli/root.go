package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	actorFlag  string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "imperium",
		Short: "Imperium - production scheduler and credit ledger",
		Long: `Imperium schedules technology, structure, unit and defense production
for player empires and keeps every empire's credit ledger.

The serve command runs the HTTP API together with the background sweeper
and income accrual. The remaining commands operate on the same database
directly and are meant for operators.

Examples:
  imperium serve
  imperium migrate
  imperium empire register --actor alice --location A01:02:03:04 --credits 1000
  imperium queue list technology --actor alice
  imperium ledger history --actor alice --limit 20
  imperium ledger verify
  imperium catalog tree robotics`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: search ./config.yaml, ./configs, /etc/imperium)")
	rootCmd.PersistentFlags().StringVar(&actorFlag, "actor", "",
		"Acting player (defaults to the one set with 'imperium config set-actor')")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	// Add command groups
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewMigrateCommand())
	rootCmd.AddCommand(NewSweepCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewEmpireCommand())
	rootCmd.AddCommand(NewQueueCommand())
	rootCmd.AddCommand(NewLedgerCommand())
	rootCmd.AddCommand(NewCatalogCommand())
	rootCmd.AddCommand(NewHealthCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
