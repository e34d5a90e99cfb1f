package catalog

import (
	"fmt"
	"math"

	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// Item is one buildable entry of the game catalog: a technology, a
// structure, a unit or a defense.
type Item struct {
	Key   string
	Track shared.Track
	Name  string

	// MaxLevel caps multi-level items; 0 means uncapped
	MaxLevel int

	// Cost and work for level 1, grown by the percentage factors for each
	// further level unless Levels lists explicit values
	BaseCost      int64
	BaseWork      int64
	CostGrowthPct int64
	WorkGrowthPct int64
	Levels        []LevelOverride

	// ProvidesTrack is set on structures: the track the building supplies capacity to
	ProvidesTrack shared.Track
	// SpeedBonusPct is set on technologies: speed bonus per level on a track
	SpeedBonusPct map[shared.Track]int
	Prerequisites Prerequisites
}

// LevelOverride pins cost and work for a specific level
type LevelOverride struct {
	Level int
	Cost  int64
	Work  int64
}

// Prerequisites lists what must be in place before an item can be started
type Prerequisites struct {
	// Technologies maps tech key to minimum empire-wide level
	Technologies map[string]int
	// Structures maps structure key to minimum active level at the same location
	Structures map[string]int
}

// IsEmpty reports whether the item can be started without any prerequisite
func (p Prerequisites) IsEmpty() bool {
	return len(p.Technologies) == 0 && len(p.Structures) == 0
}

// CostAt returns the credit cost of reaching level
func (i *Item) CostAt(level int) (int64, error) {
	if err := i.checkLevel(level); err != nil {
		return 0, err
	}
	if o, ok := i.override(level); ok && o.Cost > 0 {
		return o.Cost, nil
	}
	return grow(i.BaseCost, i.CostGrowthPct, level), nil
}

// WorkAt returns the base construction work of reaching level, measured in
// capacity-units: one unit of rate processes one unit of work per hour
func (i *Item) WorkAt(level int) (int64, error) {
	if err := i.checkLevel(level); err != nil {
		return 0, err
	}
	if o, ok := i.override(level); ok && o.Work > 0 {
		return o.Work, nil
	}
	return grow(i.BaseWork, i.WorkGrowthPct, level), nil
}

// IsMultiLevel reports whether the item can be advanced past level 1
func (i *Item) IsMultiLevel() bool {
	return i.Track == shared.TrackTechnology || i.Track == shared.TrackStructures
}

func (i *Item) checkLevel(level int) error {
	if level < 1 {
		return shared.NewValidationError("targetLevel", fmt.Sprintf("level must be at least 1, got %d", level))
	}
	if i.MaxLevel > 0 && level > i.MaxLevel {
		return shared.NewValidationError("targetLevel", fmt.Sprintf("%s has a maximum level of %d", i.Key, i.MaxLevel))
	}
	return nil
}

func (i *Item) override(level int) (LevelOverride, bool) {
	for _, o := range i.Levels {
		if o.Level == level {
			return o, true
		}
	}
	return LevelOverride{}, false
}

// grow applies an integer percentage growth level-1 times, saturating at MaxInt64
func grow(base, growthPct int64, level int) int64 {
	value := base
	if growthPct <= 0 {
		growthPct = 100
	}
	for l := 1; l < level; l++ {
		if value > math.MaxInt64/growthPct {
			return math.MaxInt64
		}
		value = value * growthPct / 100
	}
	return value
}

// Validate checks an item definition is usable
func (i *Item) Validate() error {
	if i.Key == "" {
		return fmt.Errorf("catalog item without key")
	}
	if !i.Track.IsValid() {
		return fmt.Errorf("catalog item %s: unknown track %q", i.Key, i.Track)
	}
	if i.BaseCost < 0 || i.BaseWork < 0 {
		return fmt.Errorf("catalog item %s: cost and work must not be negative", i.Key)
	}
	if i.ProvidesTrack != "" && !i.ProvidesTrack.IsValid() {
		return fmt.Errorf("catalog item %s: unknown capacity track %q", i.Key, i.ProvidesTrack)
	}
	if i.ProvidesTrack != "" && i.Track != shared.TrackStructures {
		return fmt.Errorf("catalog item %s: only structures provide capacity", i.Key)
	}
	return nil
}
