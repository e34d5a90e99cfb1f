package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/imperium/internal/application/mediator"
	"github.com/andrescamacho/imperium/internal/application/production"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// CancelProductionCommand withdraws a pending queue entry
type CancelProductionCommand struct {
	Actor   string
	Track   shared.Track
	EntryID string
}

// CancelProductionHandler handles the CancelProduction command.
// The response is a *production.CancelResult.
type CancelProductionHandler struct {
	manager *production.Manager
}

// NewCancelProductionHandler creates a new CancelProductionHandler
func NewCancelProductionHandler(manager *production.Manager) *CancelProductionHandler {
	return &CancelProductionHandler{manager: manager}
}

// Handle executes the CancelProduction command
func (h *CancelProductionHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*CancelProductionCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CancelProductionCommand")
	}
	if cmd.EntryID == "" {
		return nil, shared.NewValidationError("id", "entry id is required")
	}
	return h.manager.Cancel(ctx, cmd.Actor, cmd.Track, cmd.EntryID)
}
