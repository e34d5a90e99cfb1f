package empire

import (
	"fmt"
	"sort"
	"time"

	"github.com/andrescamacho/imperium/internal/domain/ledger"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// Flag is a named boolean modifier affecting derived values of an empire
type Flag string

const (
	FlagBaseAbandonedDiscount Flag = "base_abandoned_discount"
)

// MilliPerCredit is the resolution of the sub-credit remainder accumulator
const MilliPerCredit = 1000

// Empire is the aggregate root for a player's realm: balance, owned
// locations and empire-wide technology levels.
//
// Invariants:
//   - credits never go negative
//   - technology levels never decrease
//   - creditRemainder stays within [0, MilliPerCredit)
type Empire struct {
	id              shared.EmpireID
	actor           string
	name            string
	locations       map[shared.Coordinate]struct{}
	credits         int64
	creditRemainder int64
	energy          int64
	techLevels      map[string]int
	baseCount       int
	flags           map[Flag]bool
	lastPayoutAt    time.Time
	createdAt       time.Time
}

// NewEmpire creates an empire that has not been persisted yet (zero id)
func NewEmpire(actor, name string, locations []shared.Coordinate, createdAt time.Time) (*Empire, error) {
	if actor == "" {
		return nil, shared.NewValidationError("actor", "actor cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("name", "name cannot be empty")
	}

	e := &Empire{
		actor:        actor,
		name:         name,
		locations:    make(map[shared.Coordinate]struct{}, len(locations)),
		techLevels:   make(map[string]int),
		flags:        make(map[Flag]bool),
		lastPayoutAt: createdAt,
		createdAt:    createdAt,
	}
	for _, loc := range locations {
		e.locations[loc] = struct{}{}
	}
	e.baseCount = len(e.locations)
	return e, nil
}

// ReconstructEmpire rebuilds an empire from persistence
func ReconstructEmpire(
	id shared.EmpireID,
	actor string,
	name string,
	locations []shared.Coordinate,
	credits int64,
	creditRemainder int64,
	energy int64,
	techLevels map[string]int,
	baseCount int,
	flags map[Flag]bool,
	lastPayoutAt time.Time,
	createdAt time.Time,
) *Empire {
	e := &Empire{
		id:              id,
		actor:           actor,
		name:            name,
		locations:       make(map[shared.Coordinate]struct{}, len(locations)),
		credits:         credits,
		creditRemainder: creditRemainder,
		energy:          energy,
		techLevels:      make(map[string]int, len(techLevels)),
		baseCount:       baseCount,
		flags:           make(map[Flag]bool, len(flags)),
		lastPayoutAt:    lastPayoutAt,
		createdAt:       createdAt,
	}
	for _, loc := range locations {
		e.locations[loc] = struct{}{}
	}
	for k, v := range techLevels {
		e.techLevels[k] = v
	}
	for k, v := range flags {
		e.flags[k] = v
	}
	return e
}

// Getters

func (e *Empire) ID() shared.EmpireID      { return e.id }
func (e *Empire) Actor() string            { return e.actor }
func (e *Empire) Name() string             { return e.name }
func (e *Empire) Credits() int64           { return e.credits }
func (e *Empire) CreditRemainder() int64   { return e.creditRemainder }
func (e *Empire) Energy() int64            { return e.energy }
func (e *Empire) BaseCount() int           { return e.baseCount }
func (e *Empire) LastPayoutAt() time.Time  { return e.lastPayoutAt }
func (e *Empire) CreatedAt() time.Time     { return e.createdAt }
func (e *Empire) HasFlag(flag Flag) bool   { return e.flags[flag] }
func (e *Empire) TechLevel(key string) int { return e.techLevels[key] }

// Locations returns the owned coordinates in lexical order
func (e *Empire) Locations() []shared.Coordinate {
	out := make([]shared.Coordinate, 0, len(e.locations))
	for loc := range e.locations {
		out = append(out, loc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// TechLevels returns a copy of the technology level map
func (e *Empire) TechLevels() map[string]int {
	out := make(map[string]int, len(e.techLevels))
	for k, v := range e.techLevels {
		out[k] = v
	}
	return out
}

// Flags returns a copy of the flag set
func (e *Empire) Flags() map[Flag]bool {
	out := make(map[Flag]bool, len(e.flags))
	for k, v := range e.flags {
		out[k] = v
	}
	return out
}

// OwnsLocation checks whether the coordinate belongs to this empire
func (e *Empire) OwnsLocation(coord shared.Coordinate) bool {
	_, ok := e.locations[coord]
	return ok
}

// AdjustCredits applies a signed amount to the balance. A debit that would
// take the balance below zero fails with InsufficientFundsError and leaves
// the balance untouched.
func (e *Empire) AdjustCredits(amount int64) (before, after int64, err error) {
	before = e.credits
	after = before + amount
	if after < 0 {
		return before, before, ledger.NewInsufficientFundsError(-amount, before)
	}
	e.credits = after
	return before, after, nil
}

// AccrueMilli adds milli-credits to the remainder accumulator and returns the
// whole credits that became available. The caller posts them to the ledger.
func (e *Empire) AccrueMilli(milli int64) (int64, error) {
	if milli < 0 {
		return 0, fmt.Errorf("accrual cannot be negative: %d", milli)
	}
	total := e.creditRemainder + milli
	e.creditRemainder = total % MilliPerCredit
	return total / MilliPerCredit, nil
}

// RecordPayout marks the time up to which income has been accrued
func (e *Empire) RecordPayout(at time.Time) {
	if at.After(e.lastPayoutAt) {
		e.lastPayoutAt = at
	}
}

// RaiseTechLevel sets a technology to level unless it is already at or above it.
// Returns true when the level changed.
func (e *Empire) RaiseTechLevel(key string, level int) bool {
	if level <= e.techLevels[key] {
		return false
	}
	e.techLevels[key] = level
	return true
}

// SetFlag turns a flag on or off
func (e *Empire) SetFlag(flag Flag, on bool) {
	if on {
		e.flags[flag] = true
		return
	}
	delete(e.flags, flag)
}
