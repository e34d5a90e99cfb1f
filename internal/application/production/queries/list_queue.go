package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/imperium/internal/application/mediator"
	"github.com/andrescamacho/imperium/internal/application/production"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// ListQueueQuery lists the pending entries of one track. Location is optional.
type ListQueueQuery struct {
	Actor    string
	Track    shared.Track
	Location string
}

// ListQueueResponse holds the queue ordered by soonest completion
type ListQueueResponse struct {
	Queue []*production.EntryView
}

// ListQueueHandler handles the ListQueue query
type ListQueueHandler struct {
	manager *production.Manager
}

// NewListQueueHandler creates a new ListQueueHandler
func NewListQueueHandler(manager *production.Manager) *ListQueueHandler {
	return &ListQueueHandler{manager: manager}
}

// Handle executes the ListQueue query
func (h *ListQueueHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListQueueQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListQueueQuery")
	}

	views, err := h.manager.ListQueue(ctx, query.Actor, query.Track, query.Location)
	if err != nil {
		return nil, err
	}
	return &ListQueueResponse{Queue: views}, nil
}
