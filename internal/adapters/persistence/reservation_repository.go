package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/imperium/internal/domain/queue"
)

// GormReservationRepository implements queue.ReservationRepository on the
// queue_reservations primary key
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GORM reservation repository
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// Reserve inserts the key; a key that is already held yields queue.ErrReservationConflict
func (r *GormReservationRepository) Reserve(ctx context.Context, key, entryID string) error {
	model := &QueueReservationModel{
		ReservationKey: key,
		EntryID:        entryID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if IsDuplicateKeyErr(err) {
			return queue.ErrReservationConflict
		}
		return fmt.Errorf("failed to reserve %s: %w", key, err)
	}
	return nil
}

// Release deletes the key. Releasing a key that is not held is a no-op.
func (r *GormReservationRepository) Release(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Where("reservation_key = ?", key).Delete(&QueueReservationModel{}).Error; err != nil {
		return fmt.Errorf("failed to release %s: %w", key, err)
	}
	return nil
}
