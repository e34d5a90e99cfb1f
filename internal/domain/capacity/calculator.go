package capacity

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrNegativeInput marks a programming error: costs, levels and bonuses are never negative
	ErrNegativeInput = errors.New("capacity: negative input")

	// ErrNoCapacity is returned under the Block policy when nothing at the location contributes
	ErrNoCapacity = errors.New("capacity: no contributing capacity")

	// ErrEtaOutOfRange is returned when work at a rate would take longer than a time.Duration holds
	ErrEtaOutOfRange = errors.New("capacity: eta out of range")
)

// ZeroCapacityPolicy decides what happens when a location has no capacity for a track
type ZeroCapacityPolicy int

const (
	// ZeroCapacityFloor falls back to the configured floor rate
	ZeroCapacityFloor ZeroCapacityPolicy = iota
	// ZeroCapacityBlock refuses to start work
	ZeroCapacityBlock
)

func (p ZeroCapacityPolicy) String() string {
	if p == ZeroCapacityBlock {
		return "block"
	}
	return "floor"
}

// Rate is the effective production speed in work units per hour
type Rate struct {
	PerHour int64
}

// Calculator turns contributing asset levels into rates and ETAs.
// It is a pure function of its inputs and safe for concurrent use.
type Calculator struct {
	ratePerLevel int64
	floorPerHour int64
}

// NewCalculator builds a calculator; ratePerLevel is the work per hour one
// asset level provides, floorPerHour the rate used by the Floor policy
func NewCalculator(ratePerLevel, floorPerHour int64) (*Calculator, error) {
	if ratePerLevel <= 0 {
		return nil, fmt.Errorf("rate per level must be positive, got %d", ratePerLevel)
	}
	if floorPerHour <= 0 {
		return nil, fmt.Errorf("floor rate must be positive, got %d", floorPerHour)
	}
	return &Calculator{ratePerLevel: ratePerLevel, floorPerHour: floorPerHour}, nil
}

// ComputeRate derives the rate from the summed contributing levels and an
// empire-wide bonus in percent:
//
//	rate = levels * ratePerLevel * (100 + bonus) / 100
func (c *Calculator) ComputeRate(levels int, bonusPercent int, policy ZeroCapacityPolicy) (Rate, error) {
	if levels < 0 || bonusPercent < 0 {
		return Rate{}, ErrNegativeInput
	}
	if levels == 0 {
		if policy == ZeroCapacityBlock {
			return Rate{}, ErrNoCapacity
		}
		return Rate{PerHour: c.floorPerHour}, nil
	}
	perHour := int64(levels) * c.ratePerLevel * int64(100+bonusPercent) / 100
	if perHour < 1 {
		perHour = 1
	}
	return Rate{PerHour: perHour}, nil
}

const maxEtaSeconds = math.MaxInt64 / int64(time.Second)

// ComputeEta returns the time needed to process work at rate, rounded up to whole seconds
func ComputeEta(work int64, rate Rate) (time.Duration, error) {
	if work < 0 {
		return 0, ErrNegativeInput
	}
	if rate.PerHour <= 0 {
		return 0, fmt.Errorf("rate must be positive, got %d", rate.PerHour)
	}
	if work > (math.MaxInt64-rate.PerHour)/3600 {
		return 0, ErrEtaOutOfRange
	}
	seconds := (work*3600 + rate.PerHour - 1) / rate.PerHour
	if seconds > maxEtaSeconds {
		return 0, ErrEtaOutOfRange
	}
	return time.Duration(seconds) * time.Second, nil
}

// SumContributingLevels adds the contributing levels of the assets for which
// provides returns true
func SumContributingLevels(assets []*Asset, provides func(itemKey string) bool) int {
	total := 0
	for _, a := range assets {
		if provides(a.ItemKey()) {
			total += a.ContributingLevel()
		}
	}
	return total
}
