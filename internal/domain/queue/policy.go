package queue

import (
	"fmt"

	"github.com/andrescamacho/imperium/internal/domain/capacity"
	"github.com/andrescamacho/imperium/internal/domain/ledger"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// Submission identifies what a Start request asks for
type Submission struct {
	EmpireID    shared.EmpireID
	Location    shared.Coordinate
	ItemKey     string
	TargetLevel int
	// RequestedLevel is the level as sent by the client, 0 when it was left
	// to default. Retries of one submission always agree on it.
	RequestedLevel int
	RequestToken   string
}

// ReservationScope decides which submissions collide with each other
type ReservationScope int

const (
	// ScopeEmpireItem allows one pending entry per empire and item, regardless of level or location
	ScopeEmpireItem ReservationScope = iota
	// ScopeLocationItem allows one pending entry per empire, location and item
	ScopeLocationItem
	// ScopeSubmission collides only for retries of the same submission (same request token)
	ScopeSubmission
)

// TrackPolicy captures every rule that differs between tracks. The lifecycle
// manager is written once against this interface.
type TrackPolicy interface {
	Track() shared.Track
	IdentityKey(s Submission) string
	ReservationKey(s Submission) (string, error)
	ZeroCapacity() capacity.ZeroCapacityPolicy
	CancellableAfterStart() bool
	ChargeAtStart() bool
	SequentialLine() bool
	MultiLevel() bool
	ChargeType() ledger.TransactionType
	RefundType() ledger.TransactionType
}

// PolicyConfig describes a track's rules
type PolicyConfig struct {
	Track                 shared.Track
	Scope                 ReservationScope
	ZeroCapacity          capacity.ZeroCapacityPolicy
	CancellableAfterStart bool
	ChargeAtStart         bool
	SequentialLine        bool
	MultiLevel            bool
	ChargeType            ledger.TransactionType
	RefundType            ledger.TransactionType
}

type policy struct {
	cfg PolicyConfig
}

// NewPolicy builds a TrackPolicy from its configuration
func NewPolicy(cfg PolicyConfig) (TrackPolicy, error) {
	if !cfg.Track.IsValid() {
		return nil, fmt.Errorf("policy for unknown track %q", cfg.Track)
	}
	if !cfg.ChargeType.IsValid() || !cfg.RefundType.IsValid() {
		return nil, fmt.Errorf("policy for %s needs valid charge and refund types", cfg.Track)
	}
	return &policy{cfg: cfg}, nil
}

func (p *policy) Track() shared.Track                       { return p.cfg.Track }
func (p *policy) ZeroCapacity() capacity.ZeroCapacityPolicy { return p.cfg.ZeroCapacity }
func (p *policy) CancellableAfterStart() bool               { return p.cfg.CancellableAfterStart }
func (p *policy) ChargeAtStart() bool                       { return p.cfg.ChargeAtStart }
func (p *policy) SequentialLine() bool                      { return p.cfg.SequentialLine }
func (p *policy) MultiLevel() bool                          { return p.cfg.MultiLevel }
func (p *policy) ChargeType() ledger.TransactionType        { return p.cfg.ChargeType }
func (p *policy) RefundType() ledger.TransactionType        { return p.cfg.RefundType }

// IdentityKey names the logical thing being produced
func (p *policy) IdentityKey(s Submission) string {
	return fmt.Sprintf("%s:%s:%s:%s:%d", p.cfg.Track, s.EmpireID, s.Location, s.ItemKey, s.TargetLevel)
}

// ReservationKey derives the storage-level uniqueness key for a submission
func (p *policy) ReservationKey(s Submission) (string, error) {
	switch p.cfg.Scope {
	case ScopeEmpireItem:
		return fmt.Sprintf("%s:%s:%s", p.cfg.Track, s.EmpireID, s.ItemKey), nil
	case ScopeLocationItem:
		return fmt.Sprintf("%s:%s:%s:%s", p.cfg.Track, s.EmpireID, s.Location, s.ItemKey), nil
	case ScopeSubmission:
		if s.RequestToken == "" {
			return "", fmt.Errorf("%s reservations need a request token", p.cfg.Track)
		}
		return fmt.Sprintf("%s:%s:%s:%s:%d:%s", p.cfg.Track, s.EmpireID, s.Location, s.ItemKey, s.RequestedLevel, s.RequestToken), nil
	}
	return "", fmt.Errorf("unknown reservation scope %d", p.cfg.Scope)
}

// PolicySet resolves the policy of each track
type PolicySet struct {
	policies map[shared.Track]TrackPolicy
}

// NewPolicySet indexes policies by track; every track must be covered
func NewPolicySet(policies ...TrackPolicy) (*PolicySet, error) {
	set := &PolicySet{policies: make(map[shared.Track]TrackPolicy, len(policies))}
	for _, p := range policies {
		set.policies[p.Track()] = p
	}
	for _, track := range shared.AllTracks() {
		if _, ok := set.policies[track]; !ok {
			return nil, fmt.Errorf("no policy for track %s", track)
		}
	}
	return set, nil
}

// For returns the policy for track
func (s *PolicySet) For(track shared.Track) (TrackPolicy, error) {
	p, ok := s.policies[track]
	if !ok {
		return nil, shared.NewValidationError("track", fmt.Sprintf("unknown track %q", track))
	}
	return p, nil
}

// DefaultPolicyConfigs returns the standard rules of the four tracks
func DefaultPolicyConfigs() []PolicyConfig {
	return []PolicyConfig{
		{
			Track:                 shared.TrackTechnology,
			Scope:                 ScopeEmpireItem,
			ZeroCapacity:          capacity.ZeroCapacityBlock,
			CancellableAfterStart: true,
			ChargeAtStart:         true,
			MultiLevel:            true,
			ChargeType:            ledger.TransactionTypeResearchCharge,
			RefundType:            ledger.TransactionTypeResearchRefund,
		},
		{
			Track:                 shared.TrackStructures,
			Scope:                 ScopeSubmission,
			ZeroCapacity:          capacity.ZeroCapacityFloor,
			CancellableAfterStart: true,
			ChargeAtStart:         true,
			MultiLevel:            true,
			ChargeType:            ledger.TransactionTypeConstructionCharge,
			RefundType:            ledger.TransactionTypeConstructionRefund,
		},
		{
			Track:                 shared.TrackUnits,
			Scope:                 ScopeLocationItem,
			ZeroCapacity:          capacity.ZeroCapacityBlock,
			CancellableAfterStart: true,
			ChargeAtStart:         true,
			SequentialLine:        true,
			ChargeType:            ledger.TransactionTypeUnitProductionCharge,
			RefundType:            ledger.TransactionTypeUnitProductionRefund,
		},
		{
			Track:                 shared.TrackDefenses,
			Scope:                 ScopeLocationItem,
			ZeroCapacity:          capacity.ZeroCapacityFloor,
			CancellableAfterStart: false,
			ChargeAtStart:         true,
			ChargeType:            ledger.TransactionTypeDefenseCharge,
			RefundType:            ledger.TransactionTypeDefenseRefund,
		},
	}
}

// DefaultPolicySet builds the standard policies
func DefaultPolicySet() (*PolicySet, error) {
	configs := DefaultPolicyConfigs()
	policies := make([]TrackPolicy, 0, len(configs))
	for _, cfg := range configs {
		p, err := NewPolicy(cfg)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return NewPolicySet(policies...)
}
