package empire

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrescamacho/imperium/internal/domain/empire"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// Resolver maps an authenticated actor to their empire and checks location
// ownership. It is read-only and always reads committed state; it keeps no cache.
type Resolver struct {
	empires empire.Repository
}

// NewResolver creates a resolver backed by the given repository
func NewResolver(empires empire.Repository) *Resolver {
	return &Resolver{empires: empires}
}

// ResolveEmpire returns the empire owned by actor, or a NotFoundError
func (r *Resolver) ResolveEmpire(ctx context.Context, actor string) (*empire.Empire, error) {
	if actor == "" {
		return nil, shared.NewNotFoundError("empire", "for anonymous actor")
	}
	e, err := r.empires.FindByActor(ctx, actor)
	if err != nil {
		var notFound *shared.NotFoundError
		if errors.As(err, &notFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to resolve empire for actor %s: %w", actor, err)
	}
	return e, nil
}

// ValidateLocation parses a coordinate; malformed input is a client error
func ValidateLocation(raw string) (shared.Coordinate, error) {
	return shared.ParseCoordinate(raw)
}

// AssertOwnership fails with NotOwnedError unless the empire owns coord
func AssertOwnership(e *empire.Empire, coord shared.Coordinate) error {
	if !e.OwnsLocation(coord) {
		return shared.NewNotOwnedError(coord.String())
	}
	return nil
}
