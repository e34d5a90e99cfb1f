package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/imperium/internal/domain/inventory"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// GormHoldingRepository implements inventory.HoldingRepository using GORM
type GormHoldingRepository struct {
	db *gorm.DB
}

// NewGormHoldingRepository creates a new GORM holding repository
func NewGormHoldingRepository(db *gorm.DB) *GormHoldingRepository {
	return &GormHoldingRepository{db: db}
}

// Increment adds delta to a holding with an upsert
func (r *GormHoldingRepository) Increment(ctx context.Context, empireID shared.EmpireID, location shared.Coordinate, track shared.Track, itemKey string, delta int64) error {
	model := &HoldingModel{
		EmpireID: empireID.Value(),
		Location: location.String(),
		Track:    track.String(),
		ItemKey:  itemKey,
		Count:    delta,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "empire_id"}, {Name: "location"}, {Name: "track"}, {Name: "item_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count": gorm.Expr("holdings.count + ?", delta),
		}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to increment holding: %w", err)
	}
	return nil
}

// FindByLocation retrieves the holdings of an empire at a location
func (r *GormHoldingRepository) FindByLocation(ctx context.Context, empireID shared.EmpireID, location shared.Coordinate) ([]*inventory.Holding, error) {
	var models []HoldingModel
	result := r.db.WithContext(ctx).
		Where("empire_id = ? AND location = ?", empireID.Value(), location.String()).
		Order("track ASC, item_key ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", result.Error)
	}

	holdings := make([]*inventory.Holding, 0, len(models))
	for _, m := range models {
		track, err := shared.ParseTrack(m.Track)
		if err != nil {
			return nil, fmt.Errorf("invalid track in database: %w", err)
		}
		holdings = append(holdings, &inventory.Holding{
			EmpireID: empireID,
			Location: location,
			Track:    track,
			ItemKey:  m.ItemKey,
			Count:    m.Count,
		})
	}
	return holdings, nil
}
