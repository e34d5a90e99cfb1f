package production

import (
	"context"
	"fmt"

	"github.com/andrescamacho/imperium/internal/application/common"
	"github.com/andrescamacho/imperium/internal/domain/capacity"
	"github.com/andrescamacho/imperium/internal/domain/empire"
	"github.com/andrescamacho/imperium/internal/domain/queue"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// applyEffect makes a completed entry visible in empire state
func (m *Manager) applyEffect(ctx context.Context, repos common.Repositories, locked *empire.Empire, entry *queue.Entry) error {
	switch entry.Track() {
	case shared.TrackTechnology:
		if locked.RaiseTechLevel(entry.ItemKey(), entry.TargetLevel()) {
			if err := repos.Empires.Save(ctx, locked); err != nil {
				return fmt.Errorf("failed to save tech level: %w", err)
			}
		}
		return nil

	case shared.TrackStructures:
		asset, err := repos.Assets.FindByID(ctx, entry.AssetID())
		if err != nil {
			return fmt.Errorf("failed to load asset for entry %s: %w", entry.ID(), err)
		}
		if asset.IsActive() {
			err = asset.CompleteUpgrade(entry.TargetLevel())
		} else {
			err = asset.Activate()
		}
		if err != nil {
			return err
		}
		return repos.Assets.Save(ctx, asset)

	case shared.TrackUnits, shared.TrackDefenses:
		return repos.Holdings.Increment(ctx, entry.EmpireID(), entry.Location(), entry.Track(), entry.ItemKey(), 1)
	}
	return fmt.Errorf("no completion effect for track %s", entry.Track())
}

// reserveAsset creates the inactive asset of a new build, or flags the
// existing one as upgrading, and links it to the entry
func (m *Manager) reserveAsset(ctx context.Context, repos common.Repositories, locked *empire.Empire, entry *queue.Entry, upgrade *capacity.Asset) error {
	if upgrade != nil {
		if err := upgrade.BeginUpgrade(); err != nil {
			return err
		}
		if err := repos.Assets.Save(ctx, upgrade); err != nil {
			return fmt.Errorf("failed to mark asset upgrading: %w", err)
		}
		entry.AttachAsset(upgrade.ID())
		return nil
	}

	asset := capacity.NewPendingAsset(locked.ID(), entry.Location(), entry.ItemKey())
	if err := repos.Assets.Create(ctx, asset); err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}
	entry.AttachAsset(asset.ID())
	return nil
}

// revertAsset undoes reserveAsset for a cancelled structure entry
func (m *Manager) revertAsset(ctx context.Context, repos common.Repositories, entry *queue.Entry) error {
	if entry.AssetID() == "" {
		return nil
	}
	asset, err := repos.Assets.FindByID(ctx, entry.AssetID())
	if err != nil {
		return fmt.Errorf("failed to load asset for entry %s: %w", entry.ID(), err)
	}
	if !asset.IsActive() {
		return repos.Assets.Delete(ctx, asset.ID())
	}
	asset.AbortUpgrade()
	return repos.Assets.Save(ctx, asset)
}
