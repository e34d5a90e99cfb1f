package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/imperium/internal/domain/capacity"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// GormCapacityAssetRepository implements capacity.AssetRepository using GORM
type GormCapacityAssetRepository struct {
	db *gorm.DB
}

// NewGormCapacityAssetRepository creates a new GORM capacity asset repository
func NewGormCapacityAssetRepository(db *gorm.DB) *GormCapacityAssetRepository {
	return &GormCapacityAssetRepository{db: db}
}

// FindByID retrieves an asset by ID
func (r *GormCapacityAssetRepository) FindByID(ctx context.Context, id string) (*capacity.Asset, error) {
	var model CapacityAssetModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("asset", id)
		}
		return nil, fmt.Errorf("failed to find asset: %w", result.Error)
	}
	return modelToAsset(&model)
}

// FindByLocation retrieves every asset of an empire at a location, active or not
func (r *GormCapacityAssetRepository) FindByLocation(ctx context.Context, empireID shared.EmpireID, location shared.Coordinate) ([]*capacity.Asset, error) {
	var models []CapacityAssetModel
	result := r.db.WithContext(ctx).
		Where("empire_id = ? AND location = ?", empireID.Value(), location.String()).
		Order("item_key ASC, id ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list assets: %w", result.Error)
	}

	assets := make([]*capacity.Asset, 0, len(models))
	for i := range models {
		a, err := modelToAsset(&models[i])
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, nil
}

// Create persists a new asset
func (r *GormCapacityAssetRepository) Create(ctx context.Context, asset *capacity.Asset) error {
	if err := r.db.WithContext(ctx).Create(assetToModel(asset)).Error; err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

// Save writes back level and flags
func (r *GormCapacityAssetRepository) Save(ctx context.Context, asset *capacity.Asset) error {
	result := r.db.WithContext(ctx).Model(&CapacityAssetModel{}).
		Where("id = ?", asset.ID()).
		Updates(map[string]interface{}{
			"level":           asset.Level(),
			"active":          asset.IsActive(),
			"pending_upgrade": asset.IsPendingUpgrade(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to save asset: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("asset", asset.ID())
	}
	return nil
}

// Delete removes an asset
func (r *GormCapacityAssetRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&CapacityAssetModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return nil
}

func modelToAsset(model *CapacityAssetModel) (*capacity.Asset, error) {
	empireID, err := shared.NewEmpireID(model.EmpireID)
	if err != nil {
		return nil, fmt.Errorf("invalid empire ID in database: %w", err)
	}
	location, err := shared.ParseCoordinate(model.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid location in database: %w", err)
	}
	return capacity.ReconstructAsset(model.ID, empireID, location, model.ItemKey, model.Level, model.Active, model.PendingUpgrade), nil
}

func assetToModel(a *capacity.Asset) *CapacityAssetModel {
	return &CapacityAssetModel{
		ID:             a.ID(),
		EmpireID:       a.EmpireID().Value(),
		Location:       a.Location().String(),
		ItemKey:        a.ItemKey(),
		Level:          a.Level(),
		Active:         a.IsActive(),
		PendingUpgrade: a.IsPendingUpgrade(),
	}
}
