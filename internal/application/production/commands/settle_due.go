package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/imperium/internal/application/mediator"
	"github.com/andrescamacho/imperium/internal/application/production"
)

// SettleDueCommand completes every due entry across all empires
type SettleDueCommand struct {
	Batch int // entries loaded per round; 0 uses the default
}

// SettleDueResponse reports how many entries were completed
type SettleDueResponse struct {
	Settled int
}

// SettleDueHandler handles the SettleDue command
type SettleDueHandler struct {
	manager *production.Manager
}

// NewSettleDueHandler creates a new SettleDueHandler
func NewSettleDueHandler(manager *production.Manager) *SettleDueHandler {
	return &SettleDueHandler{manager: manager}
}

// Handle executes the SettleDue command
func (h *SettleDueHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*SettleDueCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *SettleDueCommand")
	}

	batch := cmd.Batch
	if batch <= 0 {
		batch = production.DefaultSweepBatch
	}
	settled, err := h.manager.SettleDue(ctx, batch)
	if err != nil {
		return nil, err
	}
	return &SettleDueResponse{Settled: settled}, nil
}
