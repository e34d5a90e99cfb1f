package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/imperium/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage Imperium configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (IMP_* prefix, plus DATABASE_URL)
2. Config file (config.yaml)
3. Default values

Operator preferences (default actor) are stored in ~/.imperium/config.json

Examples:
  imperium config show
  imperium config set-actor alice
  imperium config clear-actor`,
	}

	// Add subcommands
	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetActorCommand())
	cmd.AddCommand(newConfigClearActorCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			userCfg, err := userConfigHandler.Load()
			if err != nil {
				fmt.Printf("Warning: Failed to load user config: %v\n\n", err)
				userCfg = &config.UserConfig{}
			}

			fmt.Println("Imperium Configuration")
			fmt.Println("======================")

			fmt.Println("User Preferences:")
			if userCfg.DefaultActor != "" {
				fmt.Printf("  Default Actor:    %s\n", userCfg.DefaultActor)
			} else {
				fmt.Printf("  Default Actor:    (not set)\n")
			}

			fmt.Println("\nDatabase:")
			fmt.Printf("  Type:             %s\n", cfg.Database.Type)
			switch {
			case cfg.Database.URL != "":
				fmt.Printf("  URL:              %s\n", maskPassword(cfg.Database.URL))
			case cfg.Database.Type == "sqlite":
				fmt.Printf("  Path:             %s\n", cfg.Database.Path)
			default:
				fmt.Printf("  Host:             %s\n", cfg.Database.Host)
				fmt.Printf("  Port:             %d\n", cfg.Database.Port)
				fmt.Printf("  Database:         %s\n", cfg.Database.Name)
				fmt.Printf("  User:             %s\n", cfg.Database.User)
			}

			fmt.Println("\nServer:")
			fmt.Printf("  Listen:           %s:%d\n", cfg.Server.Host, cfg.Server.Port)
			fmt.Printf("  Auth Mode:        %s\n", cfg.Auth.Mode)
			fmt.Printf("  Rate Limit:       %.1f req/s (burst: %d)\n",
				cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Burst)
			if len(cfg.Server.CORS.AllowedOrigins) > 0 {
				fmt.Printf("  CORS Origins:     %s\n", strings.Join(cfg.Server.CORS.AllowedOrigins, ", "))
			}

			fmt.Println("\nScheduler:")
			fmt.Printf("  Sweep Interval:   %s\n", cfg.Scheduler.SweepInterval)
			fmt.Printf("  Sweep Batch:      %d\n", cfg.Scheduler.SweepBatch)
			fmt.Printf("  Rate per Level:   %d work/h\n", cfg.Scheduler.RatePerLevel)
			fmt.Printf("  Floor Rate:       %d work/h\n", cfg.Scheduler.FloorPerHour)
			fmt.Printf("  Catalog:          %s\n", cfg.Catalog.Path)

			fmt.Println("\nEconomy:")
			fmt.Printf("  Income:           %d/h + %d/h per base\n", cfg.Economy.IncomePerHour, cfg.Economy.IncomePerBase)
			fmt.Printf("  Accrual Interval: %s\n", cfg.Economy.AccrualInterval)

			fmt.Println("\nRedis Lease:")
			if cfg.Redis.Enabled {
				fmt.Printf("  Address:          %s (db %d)\n", cfg.Redis.Addr, cfg.Redis.DB)
				fmt.Printf("  Key:              %s\n", cfg.Redis.LeaseKey)
			} else {
				fmt.Printf("  Disabled (every process sweeps)\n")
			}

			fmt.Println("\nLogging:")
			fmt.Printf("  Level:            %s\n", cfg.Logging.Level)
			fmt.Printf("  Format:           %s\n", cfg.Logging.Format)
			fmt.Printf("  Output:           %s\n", cfg.Logging.Output)

			fmt.Println("\nMetrics:")
			fmt.Printf("  Enabled:          %t\n", cfg.Metrics.Enabled)
			fmt.Printf("  Path:             %s\n", cfg.Metrics.Path)

			return nil
		},
	}
}

// newConfigSetActorCommand creates the config set-actor subcommand
func newConfigSetActorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-actor <actor>",
		Short: "Set the default actor",
		Long: `Set the actor used by commands when --actor is not given.

Example:
  imperium config set-actor alice`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor := strings.TrimSpace(args[0])
			if actor == "" {
				return fmt.Errorf("actor must not be empty")
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.SetDefaultActor(actor); err != nil {
				return fmt.Errorf("failed to set default actor: %w", err)
			}

			fmt.Printf("✓ Default actor set to %s\n", actor)
			fmt.Println("Override with --actor.")
			return nil
		},
	}
}

// newConfigClearActorCommand creates the config clear-actor subcommand
func newConfigClearActorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-actor",
		Short: "Clear the default actor",
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.SetDefaultActor(""); err != nil {
				return fmt.Errorf("failed to clear default actor: %w", err)
			}

			fmt.Println("✓ Default actor cleared")
			return nil
		},
	}
}
