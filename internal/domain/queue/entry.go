package queue

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// Entry is one unit of work on a track: researching a technology level,
// building or upgrading a structure, producing a unit or a defense.
//
// Invariants:
//   - status moves only pending -> completed or pending -> cancelled
//   - completesAt is nil until the entry is activated, then fixed
//   - chargedAmount is the exact amount debited; refunds return it unchanged
type Entry struct {
	id             string
	empireID       shared.EmpireID
	track          shared.Track
	location       shared.Coordinate
	itemKey        string
	targetLevel    int
	identityKey    string
	reservationKey string
	assetID        string
	status         Status
	startedAt      time.Time
	activatedAt    *time.Time
	completesAt    *time.Time
	charged        bool
	chargedAmount  int64
	completedAt    *time.Time
	cancelledAt    *time.Time
}

// NewEntryParams groups the values needed to open an entry
type NewEntryParams struct {
	EmpireID       shared.EmpireID
	Track          shared.Track
	Location       shared.Coordinate
	ItemKey        string
	TargetLevel    int
	IdentityKey    string
	ReservationKey string
	StartedAt      time.Time
}

// NewEntry creates a pending, not yet activated entry
func NewEntry(p NewEntryParams) (*Entry, error) {
	if p.EmpireID.IsZero() {
		return nil, fmt.Errorf("queue entry requires an empire")
	}
	if !p.Track.IsValid() {
		return nil, fmt.Errorf("queue entry has unknown track %q", p.Track)
	}
	if p.Location.IsZero() {
		return nil, fmt.Errorf("queue entry requires a location")
	}
	if p.ItemKey == "" {
		return nil, fmt.Errorf("queue entry requires an item key")
	}
	if p.TargetLevel < 1 {
		return nil, fmt.Errorf("queue entry target level must be at least 1, got %d", p.TargetLevel)
	}
	if p.ReservationKey == "" || p.IdentityKey == "" {
		return nil, fmt.Errorf("queue entry requires identity and reservation keys")
	}

	return &Entry{
		id:             uuid.NewString(),
		empireID:       p.EmpireID,
		track:          p.Track,
		location:       p.Location,
		itemKey:        p.ItemKey,
		targetLevel:    p.TargetLevel,
		identityKey:    p.IdentityKey,
		reservationKey: p.ReservationKey,
		status:         StatusPending,
		startedAt:      p.StartedAt,
	}, nil
}

// EntrySnapshot carries every persisted field; used by ReconstructEntry
type EntrySnapshot struct {
	ID             string
	EmpireID       shared.EmpireID
	Track          shared.Track
	Location       shared.Coordinate
	ItemKey        string
	TargetLevel    int
	IdentityKey    string
	ReservationKey string
	AssetID        string
	Status         Status
	StartedAt      time.Time
	ActivatedAt    *time.Time
	CompletesAt    *time.Time
	Charged        bool
	ChargedAmount  int64
	CompletedAt    *time.Time
	CancelledAt    *time.Time
}

// ReconstructEntry rebuilds an entry from persistence
func ReconstructEntry(s EntrySnapshot) *Entry {
	return &Entry{
		id:             s.ID,
		empireID:       s.EmpireID,
		track:          s.Track,
		location:       s.Location,
		itemKey:        s.ItemKey,
		targetLevel:    s.TargetLevel,
		identityKey:    s.IdentityKey,
		reservationKey: s.ReservationKey,
		assetID:        s.AssetID,
		status:         s.Status,
		startedAt:      s.StartedAt,
		activatedAt:    s.ActivatedAt,
		completesAt:    s.CompletesAt,
		charged:        s.Charged,
		chargedAmount:  s.ChargedAmount,
		completedAt:    s.CompletedAt,
		cancelledAt:    s.CancelledAt,
	}
}

// Snapshot exports every field for persistence
func (e *Entry) Snapshot() EntrySnapshot {
	return EntrySnapshot{
		ID:             e.id,
		EmpireID:       e.empireID,
		Track:          e.track,
		Location:       e.location,
		ItemKey:        e.itemKey,
		TargetLevel:    e.targetLevel,
		IdentityKey:    e.identityKey,
		ReservationKey: e.reservationKey,
		AssetID:        e.assetID,
		Status:         e.status,
		StartedAt:      e.startedAt,
		ActivatedAt:    e.activatedAt,
		CompletesAt:    e.completesAt,
		Charged:        e.charged,
		ChargedAmount:  e.chargedAmount,
		CompletedAt:    e.completedAt,
		CancelledAt:    e.cancelledAt,
	}
}

// Getters

func (e *Entry) ID() string                  { return e.id }
func (e *Entry) EmpireID() shared.EmpireID   { return e.empireID }
func (e *Entry) Track() shared.Track         { return e.track }
func (e *Entry) Location() shared.Coordinate { return e.location }
func (e *Entry) ItemKey() string             { return e.itemKey }
func (e *Entry) TargetLevel() int            { return e.targetLevel }
func (e *Entry) IdentityKey() string         { return e.identityKey }
func (e *Entry) ReservationKey() string      { return e.reservationKey }
func (e *Entry) AssetID() string             { return e.assetID }
func (e *Entry) Status() Status              { return e.status }
func (e *Entry) StartedAt() time.Time        { return e.startedAt }
func (e *Entry) ActivatedAt() *time.Time     { return e.activatedAt }
func (e *Entry) CompletesAt() *time.Time     { return e.completesAt }
func (e *Entry) IsCharged() bool             { return e.charged }
func (e *Entry) ChargedAmount() int64        { return e.chargedAmount }
func (e *Entry) CompletedAt() *time.Time     { return e.completedAt }
func (e *Entry) CancelledAt() *time.Time     { return e.cancelledAt }

// IsPending reports whether the entry can still change state
func (e *Entry) IsPending() bool {
	return e.status == StatusPending
}

// IsActive reports whether the entry has a completion time (it is being worked on)
func (e *Entry) IsActive() bool {
	return e.completesAt != nil
}

// IsDue reports whether a pending, active entry has reached its completion time
func (e *Entry) IsDue(now time.Time) bool {
	return e.IsPending() && e.completesAt != nil && !now.Before(*e.completesAt)
}

// Remaining returns the time left until completion; zero when due or not active
func (e *Entry) Remaining(now time.Time) time.Duration {
	if e.completesAt == nil || !now.Before(*e.completesAt) {
		return 0
	}
	return e.completesAt.Sub(now)
}

// AttachAsset links a structure entry to the asset it builds or upgrades
func (e *Entry) AttachAsset(assetID string) {
	e.assetID = assetID
}

// MarkCharged records the exact amount debited for this entry
func (e *Entry) MarkCharged(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("charged amount cannot be negative: %d", amount)
	}
	if e.charged {
		return NewInvalidStateError(e.id, e.status, "already charged")
	}
	e.charged = true
	e.chargedAmount = amount
	return nil
}

// Activate fixes the completion time once production capacity is assigned
func (e *Entry) Activate(at time.Time, eta time.Duration) error {
	if !e.IsPending() {
		return NewInvalidStateError(e.id, e.status, "cannot activate a finished entry")
	}
	if e.completesAt != nil {
		return NewInvalidStateError(e.id, e.status, "already active")
	}
	if eta < 0 {
		return fmt.Errorf("eta cannot be negative: %s", eta)
	}
	activated := at
	completes := at.Add(eta)
	e.activatedAt = &activated
	e.completesAt = &completes
	return nil
}

// Complete transitions a due entry to completed
func (e *Entry) Complete(now time.Time) error {
	if !e.IsPending() {
		return NewInvalidStateError(e.id, e.status, "cannot complete")
	}
	if !e.IsDue(now) {
		return NewInvalidStateError(e.id, e.status, "not yet due")
	}
	completed := now
	e.status = StatusCompleted
	e.completedAt = &completed
	return nil
}

// Cancel transitions a pending entry to cancelled
func (e *Entry) Cancel(now time.Time) error {
	if !e.IsPending() {
		return NewInvalidStateError(e.id, e.status, "cannot cancel")
	}
	cancelled := now
	e.status = StatusCancelled
	e.cancelledAt = &cancelled
	return nil
}
