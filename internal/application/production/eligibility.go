package production

import (
	"fmt"
	"sort"

	"github.com/andrescamacho/imperium/internal/domain/capacity"
	"github.com/andrescamacho/imperium/internal/domain/catalog"
	"github.com/andrescamacho/imperium/internal/domain/empire"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// eligibility is the outcome of checking a submission against empire state
type eligibility struct {
	reasons []string
	// upgrade is the existing structure a targetLevel > 1 submission upgrades
	upgrade *capacity.Asset
}

// resolveTargetLevel fills in the natural next level when none was requested
// and rejects levels that make no sense for the track. A structure without an
// explicit level is a new build; upgrades name their level.
func resolveTargetLevel(locked *empire.Empire, item *catalog.Item, requested int) (int, error) {
	switch item.Track {
	case shared.TrackTechnology:
		if requested == 0 {
			return locked.TechLevel(item.Key) + 1, nil
		}
		return requested, nil
	case shared.TrackStructures:
		if requested == 0 {
			return 1, nil
		}
		return requested, nil
	default:
		if requested != 0 && requested != 1 {
			return 0, shared.NewValidationError("targetLevel", fmt.Sprintf("%s are produced one level at a time", item.Track))
		}
		return 1, nil
	}
}

// checkEligibility collects every reason the submission cannot start. An
// empty reason list means it may proceed.
func (m *Manager) checkEligibility(locked *empire.Empire, item *catalog.Item, target int, coord shared.Coordinate, assets []*capacity.Asset) (eligibility, error) {
	var check eligibility

	if item.MaxLevel > 0 && target > item.MaxLevel {
		check.reasons = append(check.reasons, fmt.Sprintf("%s is capped at level %d", item.Key, item.MaxLevel))
	}

	switch item.Track {
	case shared.TrackTechnology:
		current := locked.TechLevel(item.Key)
		switch {
		case target <= current:
			check.reasons = append(check.reasons, fmt.Sprintf("%s is already at level %d", item.Key, current))
		case target > current+1:
			check.reasons = append(check.reasons, fmt.Sprintf("%s is at level %d, research level %d first", item.Key, current, current+1))
		}
	case shared.TrackStructures:
		if target > 1 {
			upgrade, reason := upgradeCandidate(assets, item.Key, target, coord)
			if reason != "" {
				check.reasons = append(check.reasons, reason)
			}
			check.upgrade = upgrade
		}
	}

	prereqs, err := m.catalog.Prerequisites(item.Key)
	if err != nil {
		return check, err
	}
	for _, key := range sortedKeys(prereqs.Technologies) {
		need := prereqs.Technologies[key]
		if have := locked.TechLevel(key); have < need {
			check.reasons = append(check.reasons, fmt.Sprintf("requires technology %s level %d (have %d)", key, need, have))
		}
	}
	for _, key := range sortedKeys(prereqs.Structures) {
		need := prereqs.Structures[key]
		if have := highestLevel(assets, key); have < need {
			check.reasons = append(check.reasons, fmt.Sprintf("requires structure %s level %d at %s (have %d)", key, need, coord, have))
		}
	}

	return check, nil
}

// upgradeCandidate picks the active asset of itemKey one level below target
// that is not already upgrading, or explains why there is none
func upgradeCandidate(assets []*capacity.Asset, itemKey string, target int, coord shared.Coordinate) (*capacity.Asset, string) {
	var built, busy bool
	for _, a := range assets {
		if a.ItemKey() != itemKey || !a.IsActive() {
			continue
		}
		built = true
		if a.Level() != target-1 {
			continue
		}
		if a.IsPendingUpgrade() {
			busy = true
			continue
		}
		return a, ""
	}
	switch {
	case !built:
		return nil, fmt.Sprintf("%s must be built at %s before it can be upgraded", itemKey, coord)
	case busy:
		return nil, fmt.Sprintf("%s at %s is already being upgraded to level %d", itemKey, coord, target)
	default:
		return nil, fmt.Sprintf("no %s at level %d at %s to upgrade to %d", itemKey, target-1, coord, target)
	}
}

// highestLevel is the best contributing level among assets of itemKey
func highestLevel(assets []*capacity.Asset, itemKey string) int {
	best := 0
	for _, a := range assets {
		if a.ItemKey() == itemKey && a.ContributingLevel() > best {
			best = a.ContributingLevel()
		}
	}
	return best
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
