package empire

import (
	"context"

	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// Repository defines empire persistence operations
type Repository interface {
	FindByID(ctx context.Context, id shared.EmpireID) (*Empire, error)
	FindByActor(ctx context.Context, actor string) (*Empire, error)

	// LockByID loads the empire and holds a row lock until the surrounding
	// transaction ends. All balance changes go through a locked empire.
	LockByID(ctx context.Context, id shared.EmpireID) (*Empire, error)

	// Add persists a new empire with its owned locations and returns it with its id
	Add(ctx context.Context, e *Empire) (*Empire, error)

	// Save writes back balance, remainder, tech levels and flags
	Save(ctx context.Context, e *Empire) error

	ListIDs(ctx context.Context) ([]shared.EmpireID, error)
}
