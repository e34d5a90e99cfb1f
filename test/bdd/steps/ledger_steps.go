package steps

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"

	ledgerCommands "github.com/andrescamacho/imperium/internal/application/ledger/commands"
	ledgerQueries "github.com/andrescamacho/imperium/internal/application/ledger/queries"
)

// LedgerContext holds ledger and payout steps
type LedgerContext struct {
	world   *World
	accrual *ledgerCommands.AccruePayoutsResponse
}

// InitializeLedgerScenario registers ledger steps
func InitializeLedgerScenario(sc *godog.ScenarioContext, world *World) {
	c := &LedgerContext{world: world}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		c.accrual = nil
		return ctx, nil
	})

	sc.Step(`^income is accrued$`, c.incomeIsAccrued)
	sc.Step(`^(\d+) credits? (?:was|were) paid out$`, c.creditsWerePaidOut)
	sc.Step(`^the ledger of "([^"]*)" is consistent$`, c.theLedgerIsConsistent)
	sc.Step(`^the credit history of "([^"]*)" is:$`, c.theCreditHistoryIs)
}

func (c *LedgerContext) incomeIsAccrued() error {
	resp, err := c.world.app.Mediator.Send(context.Background(), &ledgerCommands.AccruePayoutsCommand{})
	if err != nil {
		return err
	}
	c.accrual = resp.(*ledgerCommands.AccruePayoutsResponse)
	return nil
}

func (c *LedgerContext) creditsWerePaidOut(amount int) error {
	if c.accrual == nil {
		return fmt.Errorf("income was not accrued in this scenario")
	}
	if c.accrual.Credited != int64(amount) {
		return fmt.Errorf("expected %d credits paid out, got %d", amount, c.accrual.Credited)
	}
	return nil
}

func (c *LedgerContext) theLedgerIsConsistent(actor string) error {
	id, err := c.world.empireID(actor)
	if err != nil {
		return err
	}
	resp, err := c.world.app.Mediator.Send(context.Background(), &ledgerQueries.VerifyLedgerQuery{EmpireID: id.Value()})
	if err != nil {
		return err
	}
	report, ok := resp.(*ledgerQueries.VerifyLedgerResponse).Reports[id.Value()]
	if !ok {
		return fmt.Errorf("no replay report for %s", actor)
	}
	if !report.Consistent() {
		return fmt.Errorf("ledger of %s is inconsistent: %v", actor, report.Mismatches)
	}
	return nil
}

// theCreditHistoryIs compares the whole history, newest first, against a
// | type | amount | balance | table
func (c *LedgerContext) theCreditHistoryIs(actor string, table *godog.Table) error {
	resp, err := c.world.app.Mediator.Send(context.Background(), &ledgerQueries.GetCreditHistoryQuery{
		Actor: actor,
		Limit: 100,
	})
	if err != nil {
		return err
	}
	history := resp.(*ledgerQueries.GetCreditHistoryResponse).Transactions

	expected := table.Rows[1:]
	if len(history) != len(expected) {
		return fmt.Errorf("expected %d transactions, got %d", len(expected), len(history))
	}

	for i, row := range expected {
		tx := history[i]
		amount, err := strconv.ParseInt(row.Cells[1].Value, 10, 64)
		if err != nil {
			return fmt.Errorf("row %d: invalid amount: %w", i+1, err)
		}
		balance, err := strconv.ParseInt(row.Cells[2].Value, 10, 64)
		if err != nil {
			return fmt.Errorf("row %d: invalid balance: %w", i+1, err)
		}
		if tx.Type != row.Cells[0].Value || tx.Amount != amount || tx.BalanceAfter != balance {
			return fmt.Errorf("row %d: expected %s %d -> %d, got %s %d -> %d",
				i+1, row.Cells[0].Value, amount, balance, tx.Type, tx.Amount, tx.BalanceAfter)
		}
	}
	return nil
}
