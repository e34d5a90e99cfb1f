package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/imperium/internal/application/mediator"
	"github.com/andrescamacho/imperium/internal/application/production"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// StartProductionCommand puts an item of any track into production
type StartProductionCommand struct {
	Actor        string
	Track        shared.Track
	Location     string
	ItemKey      string
	TargetLevel  int
	RequestToken string
}

// StartProductionResponse carries the new entry projection
type StartProductionResponse struct {
	Entry *production.EntryView
}

// StartProductionHandler handles the StartProduction command
type StartProductionHandler struct {
	manager *production.Manager
}

// NewStartProductionHandler creates a new StartProductionHandler
func NewStartProductionHandler(manager *production.Manager) *StartProductionHandler {
	return &StartProductionHandler{manager: manager}
}

// Handle executes the StartProduction command
func (h *StartProductionHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*StartProductionCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *StartProductionCommand")
	}

	view, err := h.manager.Start(ctx, production.StartRequest{
		Actor:        cmd.Actor,
		Track:        cmd.Track,
		Location:     cmd.Location,
		ItemKey:      cmd.ItemKey,
		TargetLevel:  cmd.TargetLevel,
		RequestToken: cmd.RequestToken,
	})
	if err != nil {
		return nil, err
	}
	return &StartProductionResponse{Entry: view}, nil
}
