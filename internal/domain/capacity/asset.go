package capacity

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// Asset is a built structure at a location. Active assets contribute
// production capacity to the track their catalog item provides.
//
// Lifecycle: a new build starts inactive at level 1 and is activated when its
// queue entry settles. An upgrade keeps the asset active at its current level
// with pendingUpgrade set until the upgrade settles.
type Asset struct {
	id             string
	empireID       shared.EmpireID
	location       shared.Coordinate
	itemKey        string
	level          int
	active         bool
	pendingUpgrade bool
}

// NewPendingAsset creates the inactive placeholder for a structure under construction
func NewPendingAsset(empireID shared.EmpireID, location shared.Coordinate, itemKey string) *Asset {
	return &Asset{
		id:       uuid.NewString(),
		empireID: empireID,
		location: location,
		itemKey:  itemKey,
		level:    1,
	}
}

// NewActiveAsset creates an already-built structure (starting bases, fixtures)
func NewActiveAsset(empireID shared.EmpireID, location shared.Coordinate, itemKey string, level int) *Asset {
	return &Asset{
		id:       uuid.NewString(),
		empireID: empireID,
		location: location,
		itemKey:  itemKey,
		level:    level,
		active:   true,
	}
}

// ReconstructAsset rebuilds an asset from persistence
func ReconstructAsset(id string, empireID shared.EmpireID, location shared.Coordinate, itemKey string, level int, active, pendingUpgrade bool) *Asset {
	return &Asset{
		id:             id,
		empireID:       empireID,
		location:       location,
		itemKey:        itemKey,
		level:          level,
		active:         active,
		pendingUpgrade: pendingUpgrade,
	}
}

func (a *Asset) ID() string                  { return a.id }
func (a *Asset) EmpireID() shared.EmpireID   { return a.empireID }
func (a *Asset) Location() shared.Coordinate { return a.location }
func (a *Asset) ItemKey() string             { return a.itemKey }
func (a *Asset) Level() int                  { return a.level }
func (a *Asset) IsActive() bool              { return a.active }
func (a *Asset) IsPendingUpgrade() bool      { return a.pendingUpgrade }

// ContributingLevel is the level the asset adds to its track's rate: zero
// while inactive, the pre-upgrade level while an upgrade is running
func (a *Asset) ContributingLevel() int {
	if !a.active {
		return 0
	}
	return a.level
}

// Activate finishes a new build
func (a *Asset) Activate() error {
	if a.active {
		return fmt.Errorf("asset %s is already active", a.id)
	}
	a.active = true
	return nil
}

// BeginUpgrade marks an active asset as being upgraded to the next level
func (a *Asset) BeginUpgrade() error {
	if !a.active {
		return fmt.Errorf("cannot upgrade inactive asset %s", a.id)
	}
	if a.pendingUpgrade {
		return fmt.Errorf("asset %s already has an upgrade in progress", a.id)
	}
	a.pendingUpgrade = true
	return nil
}

// CompleteUpgrade applies the new level and clears the pending flag
func (a *Asset) CompleteUpgrade(level int) error {
	if !a.pendingUpgrade {
		return fmt.Errorf("asset %s has no upgrade in progress", a.id)
	}
	if level <= a.level {
		return fmt.Errorf("upgrade of asset %s to level %d does not raise level %d", a.id, level, a.level)
	}
	a.level = level
	a.pendingUpgrade = false
	return nil
}

// AbortUpgrade clears the pending flag after a cancelled upgrade
func (a *Asset) AbortUpgrade() {
	a.pendingUpgrade = false
}
