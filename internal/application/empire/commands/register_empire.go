package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/imperium/internal/application/common"
	"github.com/andrescamacho/imperium/internal/application/ledger/services"
	"github.com/andrescamacho/imperium/internal/application/mediator"
	"github.com/andrescamacho/imperium/internal/domain/capacity"
	"github.com/andrescamacho/imperium/internal/domain/empire"
	"github.com/andrescamacho/imperium/internal/domain/ledger"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// StartingAsset is a structure an empire owns from the beginning
type StartingAsset struct {
	Location string
	ItemKey  string
	Level    int
}

// RegisterEmpireCommand provisions an empire for an actor. Universe generation
// and ownership assignment happen elsewhere; this is the hand-off point used
// by operators and tests.
type RegisterEmpireCommand struct {
	Actor           string
	Name            string
	Locations       []string
	StartingCredits int64
	StartingAssets  []StartingAsset
}

// RegisterEmpireResponse represents the result of registering an empire
type RegisterEmpireResponse struct {
	EmpireID int
}

// RegisterEmpireHandler handles the RegisterEmpire command
type RegisterEmpireHandler struct {
	uow   common.UnitOfWork
	clock shared.Clock
}

// NewRegisterEmpireHandler creates a new RegisterEmpireHandler
func NewRegisterEmpireHandler(uow common.UnitOfWork, clock shared.Clock) *RegisterEmpireHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &RegisterEmpireHandler{uow: uow, clock: clock}
}

// Handle executes the RegisterEmpire command
func (h *RegisterEmpireHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*RegisterEmpireCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RegisterEmpireCommand")
	}

	if cmd.StartingCredits < 0 {
		return nil, shared.NewValidationError("startingCredits", "cannot be negative")
	}

	locations := make([]shared.Coordinate, 0, len(cmd.Locations))
	for _, raw := range cmd.Locations {
		coord, err := shared.ParseCoordinate(raw)
		if err != nil {
			return nil, err
		}
		locations = append(locations, coord)
	}

	now := h.clock.Now()
	e, err := empire.NewEmpire(cmd.Actor, cmd.Name, locations, now)
	if err != nil {
		return nil, err
	}

	saved, err := h.uow.Reader().Empires.Add(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("failed to save empire: %w", err)
	}

	var grant *ledger.Transaction
	err = h.uow.WithinEmpire(ctx, saved.ID(), func(ctx context.Context, repos common.Repositories, locked *empire.Empire) error {
		for _, a := range cmd.StartingAssets {
			coord, err := shared.ParseCoordinate(a.Location)
			if err != nil {
				return err
			}
			if !locked.OwnsLocation(coord) {
				return shared.NewNotOwnedError(coord.String())
			}
			level := a.Level
			if level < 1 {
				level = 1
			}
			if err := repos.Assets.Create(ctx, capacity.NewActiveAsset(locked.ID(), coord, a.ItemKey, level)); err != nil {
				return fmt.Errorf("failed to create starting asset %s: %w", a.ItemKey, err)
			}
		}

		if cmd.StartingCredits == 0 {
			return nil
		}
		tx, err := services.Post(ctx, repos, locked, cmd.StartingCredits, ledger.TransactionTypeOther,
			"starting credits", ledger.Reference{EntityType: "empire", EntityID: locked.ID().String()}, now)
		grant = tx
		return err
	})
	if err != nil {
		return nil, err
	}
	services.RecordCommitted(grant)

	return &RegisterEmpireResponse{EmpireID: saved.ID().Value()}, nil
}
