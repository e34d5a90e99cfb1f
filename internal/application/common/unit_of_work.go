package common

import (
	"context"

	"github.com/andrescamacho/imperium/internal/domain/capacity"
	"github.com/andrescamacho/imperium/internal/domain/empire"
	"github.com/andrescamacho/imperium/internal/domain/inventory"
	"github.com/andrescamacho/imperium/internal/domain/ledger"
	"github.com/andrescamacho/imperium/internal/domain/queue"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// Repositories bundles the repositories bound to one database session
type Repositories struct {
	Empires      empire.Repository
	Transactions ledger.TransactionRepository
	Entries      queue.EntryRepository
	Reservations queue.ReservationRepository
	Assets       capacity.AssetRepository
	Holdings     inventory.HoldingRepository
}

// EmpireWork is the body of a unit of work. locked is the empire row loaded
// under lock; every repository in repos reads and writes through the same
// transaction.
type EmpireWork func(ctx context.Context, repos Repositories, locked *empire.Empire) error

// UnitOfWork runs multi-repository changes atomically.
//
// WithinEmpire serialises all work on one empire: it opens a transaction,
// locks the empire row and runs fn. A non-nil error from fn rolls back every
// write made through repos. Work on different empires proceeds in parallel.
type UnitOfWork interface {
	WithinEmpire(ctx context.Context, empireID shared.EmpireID, fn EmpireWork) error

	// Reader returns repositories for committed-state reads outside any unit of work
	Reader() Repositories
}
