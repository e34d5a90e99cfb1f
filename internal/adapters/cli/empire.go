package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	empireCommands "github.com/andrescamacho/imperium/internal/application/empire/commands"
	empireQueries "github.com/andrescamacho/imperium/internal/application/empire/queries"
)

// NewEmpireCommand creates the empire command with subcommands
func NewEmpireCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "empire",
		Short: "Register and inspect empires",
		Long: `Register player empires and show their state.

Examples:
  imperium empire register --actor alice --location A01:02:03:04 --credits 1000
  imperium empire register --actor bob --location B01:01:01:01 \
    --asset B01:01:01:01=research_lab:1 --asset B01:01:01:01=shipyard:2
  imperium empire show --actor alice`,
	}

	cmd.AddCommand(newEmpireRegisterCommand())
	cmd.AddCommand(newEmpireShowCommand())

	return cmd
}

func newEmpireRegisterCommand() *cobra.Command {
	var (
		name      string
		locations []string
		credits   int64
		assets    []string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new empire",
		Long: `Register an empire for the actor owning the given locations.

Starting assets are given as LOCATION=ITEM:LEVEL and become active
structures immediately. Starting credits are posted to the ledger.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := resolveActor()
			if err != nil {
				return err
			}
			startingAssets, err := parseStartingAssets(assets)
			if err != nil {
				return err
			}
			if name == "" {
				name = actor
			}

			app, err := bootstrap(bootOptions{})
			if err != nil {
				return err
			}
			defer app.Close()

			resp, err := app.mediator.Send(context.Background(), &empireCommands.RegisterEmpireCommand{
				Actor:           actor,
				Name:            name,
				Locations:       locations,
				StartingCredits: credits,
				StartingAssets:  startingAssets,
			})
			if err != nil {
				return fmt.Errorf("failed to register empire: %w", err)
			}

			out := resp.(*empireCommands.RegisterEmpireResponse)
			fmt.Println("✓ Empire registered")
			fmt.Printf("  ID:        %d\n", out.EmpireID)
			fmt.Printf("  Actor:     %s\n", actor)
			fmt.Printf("  Locations: %s\n", strings.Join(locations, ", "))
			fmt.Printf("  Credits:   %d\n", credits)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Empire name (default: the actor)")
	cmd.Flags().StringSliceVar(&locations, "location", nil, "Owned location coordinate (repeatable) [required]")
	cmd.Flags().Int64Var(&credits, "credits", 0, "Starting credits")
	cmd.Flags().StringArrayVar(&assets, "asset", nil, "Starting structure as LOCATION=ITEM:LEVEL (repeatable)")
	_ = cmd.MarkFlagRequired("location")

	return cmd
}

func newEmpireShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the actor's empire",
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := resolveActor()
			if err != nil {
				return err
			}

			app, err := bootstrap(bootOptions{})
			if err != nil {
				return err
			}
			defer app.Close()

			resp, err := app.mediator.Send(context.Background(), &empireQueries.GetEmpireQuery{Actor: actor})
			if err != nil {
				return err
			}
			e := resp.(*empireQueries.GetEmpireResponse).Empire

			fmt.Printf("Empire %s (#%d)\n", e.Name, e.ID)
			fmt.Printf("  Credits:   %d\n", e.Credits)
			fmt.Printf("  Energy:    %d\n", e.Energy)
			fmt.Printf("  Bases:     %d\n", e.BaseCount)
			fmt.Printf("  Locations: %s\n", strings.Join(e.Locations, ", "))

			if len(e.TechLevels) > 0 {
				fmt.Println("\nTechnologies:")
				keys := make([]string, 0, len(e.TechLevels))
				for key := range e.TechLevels {
					keys = append(keys, key)
				}
				sort.Strings(keys)

				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				for _, key := range keys {
					fmt.Fprintf(w, "  %s\t%d\n", key, e.TechLevels[key])
				}
				w.Flush()
			}
			return nil
		},
	}
}

// parseStartingAssets parses LOCATION=ITEM:LEVEL values
func parseStartingAssets(values []string) ([]empireCommands.StartingAsset, error) {
	assets := make([]empireCommands.StartingAsset, 0, len(values))
	for _, raw := range values {
		location, rest, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, fmt.Errorf("invalid asset %q: expected LOCATION=ITEM:LEVEL", raw)
		}
		item, levelText, ok := strings.Cut(rest, ":")
		if !ok {
			return nil, fmt.Errorf("invalid asset %q: expected LOCATION=ITEM:LEVEL", raw)
		}
		level, err := strconv.Atoi(levelText)
		if err != nil || level < 1 {
			return nil, fmt.Errorf("invalid asset %q: level must be a positive integer", raw)
		}
		assets = append(assets, empireCommands.StartingAsset{
			Location: strings.TrimSpace(location),
			ItemKey:  strings.TrimSpace(item),
			Level:    level,
		})
	}
	return assets, nil
}
