package services

import (
	"context"
	"fmt"

	"github.com/andrescamacho/imperium/internal/application/common"
	"github.com/andrescamacho/imperium/internal/domain/empire"
	"github.com/andrescamacho/imperium/internal/domain/ledger"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// LedgerService is the credit ledger: the only way balances change. Each
// successful Debit or Credit appends exactly one transaction.
type LedgerService struct {
	uow   common.UnitOfWork
	clock shared.Clock
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uow common.UnitOfWork, clock shared.Clock) *LedgerService {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &LedgerService{uow: uow, clock: clock}
}

// Debit removes amount credits and returns the new balance
func (s *LedgerService) Debit(ctx context.Context, empireID shared.EmpireID, amount int64, txType ledger.TransactionType, note string) (int64, error) {
	if amount <= 0 {
		return 0, shared.NewValidationError("amount", "debit amount must be positive")
	}
	return s.post(ctx, empireID, -amount, txType, note)
}

// Credit adds amount credits and returns the new balance
func (s *LedgerService) Credit(ctx context.Context, empireID shared.EmpireID, amount int64, txType ledger.TransactionType, note string) (int64, error) {
	if amount <= 0 {
		return 0, shared.NewValidationError("amount", "credit amount must be positive")
	}
	return s.post(ctx, empireID, amount, txType, note)
}

func (s *LedgerService) post(ctx context.Context, empireID shared.EmpireID, amount int64, txType ledger.TransactionType, note string) (int64, error) {
	var tx *ledger.Transaction
	err := s.uow.WithinEmpire(ctx, empireID, func(ctx context.Context, repos common.Repositories, locked *empire.Empire) error {
		var err error
		tx, err = Post(ctx, repos, locked, amount, txType, note, ledger.Reference{}, s.clock.Now())
		return err
	})
	if err != nil {
		return 0, err
	}
	RecordCommitted(tx)
	return tx.BalanceAfter(), nil
}

// History returns the newest transactions first; limit is clamped to [1, 200]
// and defaults to 50 when zero
func (s *LedgerService) History(ctx context.Context, empireID shared.EmpireID, limit int) ([]*ledger.Transaction, error) {
	opts := ledger.DefaultQueryOptions()
	opts.Limit = ledger.ClampHistoryLimit(limit)

	txs, err := s.uow.Reader().Transactions.FindByEmpire(ctx, empireID, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load credit history: %w", err)
	}
	return txs, nil
}

// VerifyReplay replays the empire's whole ledger from zero under the empire
// lock and reports any row or balance that does not add up
func (s *LedgerService) VerifyReplay(ctx context.Context, empireID shared.EmpireID) (*ledger.ReplayReport, error) {
	var report *ledger.ReplayReport
	err := s.uow.WithinEmpire(ctx, empireID, func(ctx context.Context, repos common.Repositories, locked *empire.Empire) error {
		txs, err := repos.Transactions.FindByEmpire(ctx, empireID, ledger.QueryOptions{Ascending: true})
		if err != nil {
			return fmt.Errorf("failed to load ledger: %w", err)
		}
		report = ledger.Replay(txs, locked.Credits())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
