package inventory

import (
	"context"

	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// Holding is the number of completed units or defenses of one kind an
// empire keeps at a location
type Holding struct {
	EmpireID shared.EmpireID
	Location shared.Coordinate
	Track    shared.Track
	ItemKey  string
	Count    int64
}

// HoldingRepository persists holdings
type HoldingRepository interface {
	// Increment adds delta to the holding, creating it when absent
	Increment(ctx context.Context, empireID shared.EmpireID, location shared.Coordinate, track shared.Track, itemKey string, delta int64) error
	FindByLocation(ctx context.Context, empireID shared.EmpireID, location shared.Coordinate) ([]*Holding, error)
}
