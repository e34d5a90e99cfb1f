package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/andrescamacho/imperium/internal/application/common"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// GormUnitOfWork implements common.UnitOfWork with one database transaction
// per call and a row lock on the empire
type GormUnitOfWork struct {
	db     *gorm.DB
	reader common.Repositories
}

// NewGormUnitOfWork creates a unit of work over db
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{
		db:     db,
		reader: NewRepositories(db),
	}
}

// NewRepositories binds every repository to the same database session
func NewRepositories(db *gorm.DB) common.Repositories {
	return common.Repositories{
		Empires:      NewGormEmpireRepository(db),
		Transactions: NewGormTransactionRepository(db),
		Entries:      NewGormQueueEntryRepository(db),
		Reservations: NewGormReservationRepository(db),
		Assets:       NewGormCapacityAssetRepository(db),
		Holdings:     NewGormHoldingRepository(db),
	}
}

// WithinEmpire runs fn in a transaction holding the empire's row lock.
// Any error from fn rolls the transaction back.
func (u *GormUnitOfWork) WithinEmpire(ctx context.Context, empireID shared.EmpireID, fn common.EmpireWork) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := NewRepositories(tx)

		locked, err := repos.Empires.LockByID(ctx, empireID)
		if err != nil {
			return err
		}
		return fn(ctx, repos, locked)
	})
}

// Reader returns repositories reading committed state
func (u *GormUnitOfWork) Reader() common.Repositories {
	return u.reader
}
