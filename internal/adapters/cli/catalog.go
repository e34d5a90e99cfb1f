package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	catalogLoader "github.com/andrescamacho/imperium/internal/adapters/catalog"
	"github.com/andrescamacho/imperium/internal/domain/catalog"
	"github.com/andrescamacho/imperium/internal/domain/shared"
	"github.com/andrescamacho/imperium/internal/infrastructure/config"
)

// NewCatalogCommand creates the catalog command with subcommands
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the item catalog",
		Long: `Inspect the item catalog configured at catalog.path.

Examples:
  imperium catalog list
  imperium catalog list units
  imperium catalog tree robotics`,
	}

	cmd.AddCommand(newCatalogListCommand())
	cmd.AddCommand(newCatalogTreeCommand())

	return cmd
}

func newCatalogListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [track]",
		Short: "List catalog items with their level 1 cost and work",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tracks := shared.AllTracks()
			if len(args) == 1 {
				track, err := parseTrack(args[0])
				if err != nil {
					return err
				}
				tracks = []shared.Track{track}
			}

			cat, err := loadCatalog()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TRACK\tKEY\tNAME\tMAX LEVEL\tCOST\tWORK\tPROVIDES")
			for _, track := range tracks {
				for _, item := range cat.Items(track) {
					maxLevel := "-"
					if item.MaxLevel > 0 {
						maxLevel = fmt.Sprintf("%d", item.MaxLevel)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
						track, item.Key, item.Name, maxLevel, item.BaseCost, item.BaseWork, item.ProvidesTrack)
				}
			}
			return w.Flush()
		},
	}
}

func newCatalogTreeCommand() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "tree <item>",
		Short: "Show the prerequisite tree of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog()
			if err != nil {
				return err
			}

			root, err := BuildPrerequisiteTree(cat, args[0])
			if err != nil {
				return err
			}
			fmt.Print(NewTreeFormatter(!noColor).FormatTree(root))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}

func loadCatalog() (*catalog.StaticCatalog, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cat, err := catalogLoader.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cat, nil
}
