package commands

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/andrescamacho/imperium/internal/application/common"
	"github.com/andrescamacho/imperium/internal/application/ledger/services"
	"github.com/andrescamacho/imperium/internal/application/mediator"
	"github.com/andrescamacho/imperium/internal/domain/empire"
	"github.com/andrescamacho/imperium/internal/domain/ledger"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// IncomeRates configures passive income
type IncomeRates struct {
	PerHour        int64 // flat income of every empire
	PerBasePerHour int64 // added for each owned base
}

// AccruePayoutsCommand credits every empire with the income earned since its last payout
type AccruePayoutsCommand struct{}

// AccruePayoutsResponse summarises one accrual pass
type AccruePayoutsResponse struct {
	Empires  int
	Credited int64
	Failed   int
}

// AccruePayoutsHandler handles the AccruePayouts command
type AccruePayoutsHandler struct {
	uow   common.UnitOfWork
	rates IncomeRates
	clock shared.Clock
}

// NewAccruePayoutsHandler creates a new AccruePayoutsHandler
func NewAccruePayoutsHandler(uow common.UnitOfWork, rates IncomeRates, clock shared.Clock) *AccruePayoutsHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &AccruePayoutsHandler{uow: uow, rates: rates, clock: clock}
}

// Handle executes the AccruePayouts command
func (h *AccruePayoutsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*AccruePayoutsCommand); !ok {
		return nil, fmt.Errorf("invalid request type: expected *AccruePayoutsCommand")
	}

	logger := common.LoggerFromContext(ctx)

	ids, err := h.uow.Reader().Empires.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list empires: %w", err)
	}

	resp := &AccruePayoutsResponse{}
	for _, id := range ids {
		credited, err := h.accrue(ctx, id)
		if err != nil {
			// One empire failing must not hold back the others
			resp.Failed++
			logger.Warn("payout accrual failed", zap.Stringer("empire_id", id), zap.Error(err))
			continue
		}
		resp.Empires++
		resp.Credited += credited
	}
	return resp, nil
}

func (h *AccruePayoutsHandler) accrue(ctx context.Context, id shared.EmpireID) (int64, error) {
	var tx *ledger.Transaction
	err := h.uow.WithinEmpire(ctx, id, func(ctx context.Context, repos common.Repositories, locked *empire.Empire) error {
		now := h.clock.Now()
		elapsed := now.Sub(locked.LastPayoutAt())
		if elapsed <= 0 {
			return nil
		}

		perHour := h.rates.PerHour + h.rates.PerBasePerHour*int64(locked.BaseCount())
		if perHour <= 0 {
			locked.RecordPayout(now)
			return repos.Empires.Save(ctx, locked)
		}

		// Milli-credits earned; the unpaid sub-milli fraction stays in the
		// elapsed time by advancing the payout mark only as far as was paid.
		milli := perHour * elapsed.Milliseconds() / 3600
		paid := time.Duration(milli*3600/perHour) * time.Millisecond
		locked.RecordPayout(locked.LastPayoutAt().Add(paid))

		whole, err := locked.AccrueMilli(milli)
		if err != nil {
			return err
		}
		if whole == 0 {
			return repos.Empires.Save(ctx, locked)
		}

		tx, err = services.Post(ctx, repos, locked, whole, ledger.TransactionTypePayout,
			fmt.Sprintf("income for %s", paid.Truncate(time.Second)), ledger.Reference{}, now)
		return err
	})
	if err != nil {
		return 0, err
	}
	if tx == nil {
		return 0, nil
	}
	services.RecordCommitted(tx)
	return tx.Amount(), nil
}
