package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/imperium/internal/application/ledger/queries"
)

// NewLedgerCommand creates the ledger command with subcommands
func NewLedgerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Credit ledger operations",
		Long: `View and verify credit transactions.

Every credit change (production charges, refunds, income payouts) is
recorded with the balance before and after it. history lists the most
recent rows; verify replays ledgers from zero and checks that every row
and the live balance add up.

Examples:
  imperium ledger history --actor alice --limit 20
  imperium ledger verify
  imperium ledger verify --empire-id 3`,
	}

	// Add subcommands
	cmd.AddCommand(newLedgerHistoryCommand())
	cmd.AddCommand(newLedgerVerifyCommand())

	return cmd
}

// newLedgerHistoryCommand creates the ledger history subcommand
func newLedgerHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent transactions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := resolveActor()
			if err != nil {
				return err
			}
			return runLedgerHistory(actor, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of transactions to return")

	return cmd
}

// newLedgerVerifyCommand creates the ledger verify subcommand
func newLedgerVerifyCommand() *cobra.Command {
	var empireID int

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Replay ledgers and report inconsistencies",
		Long: `Replay every empire's ledger (or one with --empire-id) from a zero
balance. Exits non-zero when any row or balance does not add up.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedgerVerify(empireID)
		},
	}

	cmd.Flags().IntVar(&empireID, "empire-id", 0, "Only verify this empire")

	return cmd
}

func runLedgerHistory(actor string, limit int) error {
	app, err := bootstrap(bootOptions{})
	if err != nil {
		return err
	}
	defer app.Close()

	resp, err := app.mediator.Send(context.Background(), &queries.GetCreditHistoryQuery{
		Actor: actor,
		Limit: limit,
	})
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	out := resp.(*queries.GetCreditHistoryResponse)

	fmt.Printf("Balance: %d credits\n\n", out.Balance)
	if len(out.Transactions) == 0 {
		fmt.Println("No transactions")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tTIME\tTYPE\tAMOUNT\tBALANCE\tNOTE")
	for _, tx := range out.Transactions {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n",
			tx.Sequence,
			tx.CreatedAt.Local().Format(time.DateTime),
			tx.Type,
			formatCredits(tx.Amount),
			tx.BalanceAfter,
			tx.Note)
	}
	return w.Flush()
}

func runLedgerVerify(empireID int) error {
	app, err := bootstrap(bootOptions{})
	if err != nil {
		return err
	}
	defer app.Close()

	resp, err := app.mediator.Send(context.Background(), &queries.VerifyLedgerQuery{EmpireID: empireID})
	if err != nil {
		return fmt.Errorf("failed to verify ledger: %w", err)
	}
	out := resp.(*queries.VerifyLedgerResponse)

	ids := make([]int, 0, len(out.Reports))
	for id := range out.Reports {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EMPIRE\tROWS\tREPLAYED\tBALANCE\tSTATUS")
	for _, id := range ids {
		report := out.Reports[id]
		status := "ok"
		if !report.Consistent() {
			status = fmt.Sprintf("%d mismatches", len(report.Mismatches))
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%s\n",
			id, report.Transactions, report.ReplayedTotal, report.CurrentBalance, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if out.Consistent() {
		fmt.Printf("\n✓ %d ledgers consistent\n", len(ids))
		return nil
	}

	for _, id := range ids {
		for _, m := range out.Reports[id].Mismatches {
			fmt.Printf("  empire %d: %s\n", id, m)
		}
	}
	return fmt.Errorf("ledger verification failed")
}
