package queue

import (
	"context"
	"time"

	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// EntryRepository defines persistence operations for queue entries. All
// tracks share one store tagged by track.
type EntryRepository interface {
	Create(ctx context.Context, entry *Entry) error
	Save(ctx context.Context, entry *Entry) error

	// FindByID returns a NotFoundError when the id is unknown
	FindByID(ctx context.Context, id string) (*Entry, error)

	// ListPending returns pending entries ordered by soonest completion,
	// not-yet-active entries last. A nil location lists the whole track.
	ListPending(ctx context.Context, empireID shared.EmpireID, track shared.Track, location *shared.Coordinate) ([]*Entry, error)

	// FindDue returns pending entries of any empire whose completion time has passed
	FindDue(ctx context.Context, now time.Time, limit int) ([]*Entry, error)

	// FindDueByEmpire returns an empire's due entries on every track
	FindDueByEmpire(ctx context.Context, empireID shared.EmpireID, now time.Time) ([]*Entry, error)

	// FindActiveOnLine returns the entry currently occupying a sequential
	// production line, or nil when the line is free
	FindActiveOnLine(ctx context.Context, empireID shared.EmpireID, track shared.Track, location shared.Coordinate) (*Entry, error)

	// FindNextDeferred returns the oldest pending entry on the line that has
	// not been activated yet, or nil
	FindNextDeferred(ctx context.Context, empireID shared.EmpireID, track shared.Track, location shared.Coordinate) (*Entry, error)
}

// ReservationRepository enforces "at most one pending entry per reservation
// key" at the storage level
type ReservationRepository interface {
	// Reserve claims key for entryID; ErrReservationConflict when already held
	Reserve(ctx context.Context, key, entryID string) error
	Release(ctx context.Context, key string) error
}
