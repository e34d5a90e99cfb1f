package queries

import (
	"context"
	"fmt"

	empireApp "github.com/andrescamacho/imperium/internal/application/empire"
	"github.com/andrescamacho/imperium/internal/application/mediator"
	"github.com/andrescamacho/imperium/internal/domain/empire"
)

// GetEmpireQuery returns the actor's empire summary
type GetEmpireQuery struct {
	Actor string
}

// EmpireDTO is the transport view of an empire
type EmpireDTO struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	Credits    int64           `json:"credits"`
	Energy     int64           `json:"energy"`
	BaseCount  int             `json:"baseCount"`
	Locations  []string        `json:"locations"`
	TechLevels map[string]int  `json:"techLevels"`
	Flags      map[string]bool `json:"flags,omitempty"`
}

// GetEmpireResponse represents the result of the query
type GetEmpireResponse struct {
	Empire *EmpireDTO
}

// GetEmpireHandler handles the GetEmpire query
type GetEmpireHandler struct {
	resolver *empireApp.Resolver
}

// NewGetEmpireHandler creates a new GetEmpireHandler
func NewGetEmpireHandler(resolver *empireApp.Resolver) *GetEmpireHandler {
	return &GetEmpireHandler{resolver: resolver}
}

// Handle executes the GetEmpire query
func (h *GetEmpireHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetEmpireQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetEmpireQuery")
	}

	e, err := h.resolver.ResolveEmpire(ctx, query.Actor)
	if err != nil {
		return nil, err
	}
	return &GetEmpireResponse{Empire: ToEmpireDTO(e)}, nil
}

// ToEmpireDTO converts the aggregate for transport
func ToEmpireDTO(e *empire.Empire) *EmpireDTO {
	locations := make([]string, 0, e.BaseCount())
	for _, loc := range e.Locations() {
		locations = append(locations, loc.String())
	}
	flags := make(map[string]bool)
	for flag, on := range e.Flags() {
		flags[string(flag)] = on
	}
	return &EmpireDTO{
		ID:         e.ID().Value(),
		Name:       e.Name(),
		Credits:    e.Credits(),
		Energy:     e.Energy(),
		BaseCount:  e.BaseCount(),
		Locations:  locations,
		TechLevels: e.TechLevels(),
		Flags:      flags,
	}
}
