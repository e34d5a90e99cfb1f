package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/imperium/internal/domain/queue"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// pendingOrder sorts by soonest completion with deferred (NULL) entries last.
// Portable across PostgreSQL and SQLite, which disagree on default NULL placement.
const pendingOrder = "completes_at IS NULL, completes_at ASC, started_at ASC, id ASC"

// GormQueueEntryRepository implements queue.EntryRepository using GORM
type GormQueueEntryRepository struct {
	db *gorm.DB
}

// NewGormQueueEntryRepository creates a new GORM queue entry repository
func NewGormQueueEntryRepository(db *gorm.DB) *GormQueueEntryRepository {
	return &GormQueueEntryRepository{db: db}
}

// Create persists a new entry
func (r *GormQueueEntryRepository) Create(ctx context.Context, entry *queue.Entry) error {
	model := entryToModel(entry)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create queue entry: %w", err)
	}
	return nil
}

// Save writes back every column of an existing entry
func (r *GormQueueEntryRepository) Save(ctx context.Context, entry *queue.Entry) error {
	model := entryToModel(entry)
	result := r.db.WithContext(ctx).Model(&QueueEntryModel{}).
		Where("id = ?", model.ID).
		Select("*").
		Updates(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save queue entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("queue entry", entry.ID())
	}
	return nil
}

// FindByID retrieves an entry by its ID
func (r *GormQueueEntryRepository) FindByID(ctx context.Context, id string) (*queue.Entry, error) {
	var model QueueEntryModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("queue entry", id)
		}
		return nil, fmt.Errorf("failed to find queue entry: %w", result.Error)
	}
	return modelToEntry(&model)
}

// ListPending retrieves the pending entries of a track
func (r *GormQueueEntryRepository) ListPending(ctx context.Context, empireID shared.EmpireID, track shared.Track, location *shared.Coordinate) ([]*queue.Entry, error) {
	query := r.db.WithContext(ctx).
		Where("empire_id = ? AND track = ? AND status = ?", empireID.Value(), track.String(), queue.StatusPending.String())
	if location != nil {
		query = query.Where("location = ?", location.String())
	}
	return r.findMany(query.Order(pendingOrder))
}

// FindDue retrieves pending entries of all empires whose completion time has passed
func (r *GormQueueEntryRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*queue.Entry, error) {
	query := r.db.WithContext(ctx).
		Where("status = ? AND completes_at IS NOT NULL AND completes_at <= ?", queue.StatusPending.String(), now).
		Order("completes_at ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	return r.findMany(query)
}

// FindDueByEmpire retrieves one empire's due entries on all tracks
func (r *GormQueueEntryRepository) FindDueByEmpire(ctx context.Context, empireID shared.EmpireID, now time.Time) ([]*queue.Entry, error) {
	query := r.db.WithContext(ctx).
		Where("empire_id = ? AND status = ? AND completes_at IS NOT NULL AND completes_at <= ?",
			empireID.Value(), queue.StatusPending.String(), now).
		Order("completes_at ASC, id ASC")
	return r.findMany(query)
}

// FindActiveOnLine retrieves the active entry of a production line, or nil
func (r *GormQueueEntryRepository) FindActiveOnLine(ctx context.Context, empireID shared.EmpireID, track shared.Track, location shared.Coordinate) (*queue.Entry, error) {
	query := r.db.WithContext(ctx).
		Where("empire_id = ? AND track = ? AND location = ? AND status = ? AND completes_at IS NOT NULL",
			empireID.Value(), track.String(), location.String(), queue.StatusPending.String()).
		Order("completes_at ASC")
	return r.findFirst(query)
}

// FindNextDeferred retrieves the oldest deferred entry of a production line, or nil
func (r *GormQueueEntryRepository) FindNextDeferred(ctx context.Context, empireID shared.EmpireID, track shared.Track, location shared.Coordinate) (*queue.Entry, error) {
	query := r.db.WithContext(ctx).
		Where("empire_id = ? AND track = ? AND location = ? AND status = ? AND completes_at IS NULL",
			empireID.Value(), track.String(), location.String(), queue.StatusPending.String()).
		Order("started_at ASC, id ASC")
	return r.findFirst(query)
}

func (r *GormQueueEntryRepository) findFirst(query *gorm.DB) (*queue.Entry, error) {
	var models []QueueEntryModel
	if err := query.Limit(1).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find queue entry: %w", err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	return modelToEntry(&models[0])
}

func (r *GormQueueEntryRepository) findMany(query *gorm.DB) ([]*queue.Entry, error) {
	var models []QueueEntryModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list queue entries: %w", err)
	}

	entries := make([]*queue.Entry, 0, len(models))
	for i := range models {
		entry, err := modelToEntry(&models[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func modelToEntry(model *QueueEntryModel) (*queue.Entry, error) {
	empireID, err := shared.NewEmpireID(model.EmpireID)
	if err != nil {
		return nil, fmt.Errorf("invalid empire ID in database: %w", err)
	}
	track, err := shared.ParseTrack(model.Track)
	if err != nil {
		return nil, fmt.Errorf("invalid track in database: %w", err)
	}
	location, err := shared.ParseCoordinate(model.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid location in database: %w", err)
	}
	status, err := queue.ParseStatus(model.Status)
	if err != nil {
		return nil, fmt.Errorf("invalid status in database: %w", err)
	}

	return queue.ReconstructEntry(queue.EntrySnapshot{
		ID:             model.ID,
		EmpireID:       empireID,
		Track:          track,
		Location:       location,
		ItemKey:        model.ItemKey,
		TargetLevel:    model.TargetLevel,
		IdentityKey:    model.IdentityKey,
		ReservationKey: model.ReservationKey,
		AssetID:        model.AssetID,
		Status:         status,
		StartedAt:      model.StartedAt,
		ActivatedAt:    model.ActivatedAt,
		CompletesAt:    model.CompletesAt,
		Charged:        model.Charged,
		ChargedAmount:  model.ChargedAmount,
		CompletedAt:    model.CompletedAt,
		CancelledAt:    model.CancelledAt,
	}), nil
}

func entryToModel(entry *queue.Entry) *QueueEntryModel {
	s := entry.Snapshot()
	return &QueueEntryModel{
		ID:             s.ID,
		EmpireID:       s.EmpireID.Value(),
		Track:          s.Track.String(),
		Location:       s.Location.String(),
		ItemKey:        s.ItemKey,
		TargetLevel:    s.TargetLevel,
		IdentityKey:    s.IdentityKey,
		ReservationKey: s.ReservationKey,
		AssetID:        s.AssetID,
		Status:         s.Status.String(),
		StartedAt:      s.StartedAt,
		ActivatedAt:    s.ActivatedAt,
		CompletesAt:    s.CompletesAt,
		Charged:        s.Charged,
		ChargedAmount:  s.ChargedAmount,
		CompletedAt:    s.CompletedAt,
		CancelledAt:    s.CancelledAt,
	}
}
