package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	productionCommands "github.com/andrescamacho/imperium/internal/application/production/commands"
	"github.com/andrescamacho/imperium/internal/infrastructure/database"
)

// NewMigrateCommand creates the migrate command
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long: `Create or update every table used by the server.

Example:
  imperium migrate --config configs/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap(bootOptions{})
			if err != nil {
				return err
			}
			defer app.Close()

			if err := database.AutoMigrate(app.db); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			fmt.Printf("✓ Schema applied to %s database\n", app.cfg.Database.Type)
			return nil
		},
	}
}

// NewSweepCommand creates the sweep command
func NewSweepCommand() *cobra.Command {
	var batch int

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Settle every due queue entry once",
		Long: `Settle all queue entries whose completion time has passed, then exit.

A running server does this continuously; the command is for operators
recovering a backlog while the server is stopped.

Example:
  imperium sweep --batch 500`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap(bootOptions{})
			if err != nil {
				return err
			}
			defer app.Close()

			resp, err := app.mediator.Send(context.Background(), &productionCommands.SettleDueCommand{Batch: batch})
			if err != nil {
				return fmt.Errorf("sweep failed: %w", err)
			}
			out := resp.(*productionCommands.SettleDueResponse)
			fmt.Printf("✓ Settled %d entries\n", out.Settled)
			return nil
		},
	}

	cmd.Flags().IntVar(&batch, "batch", 0, "Entries loaded per round (default: scheduler default)")

	return cmd
}
