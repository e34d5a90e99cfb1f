package capacity

import (
	"context"

	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// AssetRepository defines persistence operations for capacity assets
type AssetRepository interface {
	FindByID(ctx context.Context, id string) (*Asset, error)
	FindByLocation(ctx context.Context, empireID shared.EmpireID, location shared.Coordinate) ([]*Asset, error)
	Create(ctx context.Context, asset *Asset) error
	Save(ctx context.Context, asset *Asset) error
	Delete(ctx context.Context, id string) error
}
