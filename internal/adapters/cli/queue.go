package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/imperium/internal/application/production"
	productionCommands "github.com/andrescamacho/imperium/internal/application/production/commands"
	productionQueries "github.com/andrescamacho/imperium/internal/application/production/queries"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// NewQueueCommand creates the queue command with subcommands
func NewQueueCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage production queues",
		Long: `Start, list and cancel production on one of the four tracks:
technology, structures, units, defenses.

Examples:
  imperium queue list technology --actor alice
  imperium queue list units --location A01:02:03:04
  imperium queue start structures --location A01:02:03:04 --item shipyard
  imperium queue cancel defenses 6f1c0e4e-5b7a-4d0b-9c1e-2a52f7f3a9d1`,
	}

	cmd.AddCommand(newQueueListCommand())
	cmd.AddCommand(newQueueStartCommand())
	cmd.AddCommand(newQueueCancelCommand())

	return cmd
}

func newQueueListCommand() *cobra.Command {
	var location string

	cmd := &cobra.Command{
		Use:   "list <track>",
		Short: "List pending entries of a track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := parseTrack(args[0])
			if err != nil {
				return err
			}
			actor, err := resolveActor()
			if err != nil {
				return err
			}

			app, err := bootstrap(bootOptions{})
			if err != nil {
				return err
			}
			defer app.Close()

			resp, err := app.mediator.Send(context.Background(), &productionQueries.ListQueueQuery{
				Actor:    actor,
				Track:    track,
				Location: location,
			})
			if err != nil {
				return err
			}
			printQueue(resp.(*productionQueries.ListQueueResponse).Queue)
			return nil
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "Only entries at this location")

	return cmd
}

func newQueueStartCommand() *cobra.Command {
	var (
		location string
		item     string
		level    int
		token    string
	)

	cmd := &cobra.Command{
		Use:   "start <track>",
		Short: "Start production of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := parseTrack(args[0])
			if err != nil {
				return err
			}
			actor, err := resolveActor()
			if err != nil {
				return err
			}

			app, err := bootstrap(bootOptions{})
			if err != nil {
				return err
			}
			defer app.Close()

			resp, err := app.mediator.Send(context.Background(), &productionCommands.StartProductionCommand{
				Actor:        actor,
				Track:        track,
				Location:     location,
				ItemKey:      item,
				TargetLevel:  level,
				RequestToken: token,
			})
			if err != nil {
				if reasons := shared.ReasonsOf(err); len(reasons) > 0 {
					return fmt.Errorf("%w:\n  - %s", err, strings.Join(reasons, "\n  - "))
				}
				return err
			}

			entry := resp.(*productionCommands.StartProductionResponse).Entry
			fmt.Println("✓ Production started")
			printQueue([]*production.EntryView{entry})
			return nil
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "Location coordinate [required]")
	cmd.Flags().StringVar(&item, "item", "", "Catalog item key [required]")
	cmd.Flags().IntVar(&level, "level", 0, "Target level (default: next technology level, a new structure, one unit)")
	cmd.Flags().StringVar(&token, "request-token", "", "Idempotency token for retries")
	_ = cmd.MarkFlagRequired("location")
	_ = cmd.MarkFlagRequired("item")

	return cmd
}

func newQueueCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <track> <entry-id>",
		Short: "Cancel a pending entry and refund its charge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := parseTrack(args[0])
			if err != nil {
				return err
			}
			actor, err := resolveActor()
			if err != nil {
				return err
			}

			app, err := bootstrap(bootOptions{})
			if err != nil {
				return err
			}
			defer app.Close()

			resp, err := app.mediator.Send(context.Background(), &productionCommands.CancelProductionCommand{
				Actor:   actor,
				Track:   track,
				EntryID: args[1],
			})
			if err != nil {
				return err
			}

			out := resp.(*production.CancelResult)
			fmt.Printf("✓ Cancelled %s, refunded %d credits\n", out.CancelledID, out.RefundedAmount)
			return nil
		},
	}
}

func parseTrack(raw string) (shared.Track, error) {
	track := shared.Track(strings.ToLower(strings.TrimSpace(raw)))
	if !track.IsValid() {
		names := make([]string, 0, 4)
		for _, t := range shared.AllTracks() {
			names = append(names, t.String())
		}
		return "", fmt.Errorf("unknown track %q (one of %s)", raw, strings.Join(names, ", "))
	}
	return track, nil
}

func printQueue(entries []*production.EntryView) {
	if len(entries) == 0 {
		fmt.Println("Queue is empty")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLOCATION\tITEM\tLEVEL\tSTATUS\tCHARGED\tCOMPLETES")
	for _, e := range entries {
		completes := "waiting"
		if e.CompletesAt != nil {
			completes = e.CompletesAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%d\t%s\n",
			e.ID, e.Location, e.ItemKey, e.TargetLevel, e.Status, e.ChargedAmount, completes)
	}
	w.Flush()
}
