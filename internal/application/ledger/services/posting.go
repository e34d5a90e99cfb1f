package services

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/imperium/internal/adapters/metrics"
	"github.com/andrescamacho/imperium/internal/application/common"
	"github.com/andrescamacho/imperium/internal/domain/empire"
	"github.com/andrescamacho/imperium/internal/domain/ledger"
)

// Post applies a signed amount to a locked empire and appends the matching
// ledger row. It must run inside UnitOfWork.WithinEmpire for e: the row lock
// is what makes the sequence number and the balance read race-free.
//
// A debit larger than the balance returns *ledger.InsufficientFundsError
// and writes nothing.
func Post(
	ctx context.Context,
	repos common.Repositories,
	e *empire.Empire,
	amount int64,
	txType ledger.TransactionType,
	note string,
	ref ledger.Reference,
	at time.Time,
) (*ledger.Transaction, error) {
	if amount == 0 {
		return nil, fmt.Errorf("cannot post a zero amount")
	}

	before, _, err := e.AdjustCredits(amount)
	if err != nil {
		return nil, err
	}

	seq, err := repos.Transactions.NextSequence(ctx, e.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to allocate ledger sequence: %w", err)
	}

	tx, err := ledger.NewTransaction(e.ID(), seq, at, txType, amount, before, note, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	if err := repos.Empires.Save(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to save empire balance: %w", err)
	}
	if err := repos.Transactions.Append(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to append transaction: %w", err)
	}
	return tx, nil
}

// RecordCommitted reports transactions to metrics once their unit of work has committed
func RecordCommitted(txs ...*ledger.Transaction) {
	for _, tx := range txs {
		if tx == nil {
			continue
		}
		metrics.RecordTransaction(
			tx.EmpireID().Value(),
			tx.TransactionType().String(),
			tx.Category().String(),
			tx.Amount(),
			tx.BalanceAfter(),
		)
	}
}
