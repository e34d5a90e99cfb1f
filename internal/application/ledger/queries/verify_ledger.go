package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/imperium/internal/application/common"
	"github.com/andrescamacho/imperium/internal/application/ledger/services"
	"github.com/andrescamacho/imperium/internal/application/mediator"
	"github.com/andrescamacho/imperium/internal/domain/ledger"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// VerifyLedgerQuery replays one empire's ledger, or every empire's when EmpireID is zero
type VerifyLedgerQuery struct {
	EmpireID int
}

// VerifyLedgerResponse maps empire id to its replay report
type VerifyLedgerResponse struct {
	Reports map[int]*ledger.ReplayReport
}

// Consistent reports whether every replayed ledger adds up
func (r *VerifyLedgerResponse) Consistent() bool {
	for _, report := range r.Reports {
		if !report.Consistent() {
			return false
		}
	}
	return true
}

// VerifyLedgerHandler handles the VerifyLedger query
type VerifyLedgerHandler struct {
	ledger *services.LedgerService
	uow    common.UnitOfWork
}

// NewVerifyLedgerHandler creates a new VerifyLedgerHandler
func NewVerifyLedgerHandler(ledgerService *services.LedgerService, uow common.UnitOfWork) *VerifyLedgerHandler {
	return &VerifyLedgerHandler{ledger: ledgerService, uow: uow}
}

// Handle executes the VerifyLedger query
func (h *VerifyLedgerHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*VerifyLedgerQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *VerifyLedgerQuery")
	}

	var ids []shared.EmpireID
	if query.EmpireID != 0 {
		id, err := shared.NewEmpireID(query.EmpireID)
		if err != nil {
			return nil, shared.NewValidationError("empire_id", err.Error())
		}
		ids = []shared.EmpireID{id}
	} else {
		all, err := h.uow.Reader().Empires.ListIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list empires: %w", err)
		}
		ids = all
	}

	resp := &VerifyLedgerResponse{Reports: make(map[int]*ledger.ReplayReport, len(ids))}
	for _, id := range ids {
		report, err := h.ledger.VerifyReplay(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to verify empire %s: %w", id, err)
		}
		resp.Reports[id.Value()] = report
	}
	return resp, nil
}
