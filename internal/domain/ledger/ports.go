package ledger

import (
	"context"

	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// TransactionRepository defines persistence operations for transactions.
// There is no update or delete: the ledger is append-only.
type TransactionRepository interface {
	// Append persists a new transaction
	Append(ctx context.Context, transaction *Transaction) error

	// NextSequence returns the sequence number the next transaction of the empire must use.
	// Callers hold the empire lock, so the value cannot be taken concurrently.
	NextSequence(ctx context.Context, empireID shared.EmpireID) (int64, error)

	// FindByEmpire retrieves transactions for an empire with optional filtering
	FindByEmpire(ctx context.Context, empireID shared.EmpireID, opts QueryOptions) ([]*Transaction, error)

	// CountByEmpire returns the count of transactions matching the criteria
	CountByEmpire(ctx context.Context, empireID shared.EmpireID, opts QueryOptions) (int, error)
}

// QueryOptions defines filtering and pagination options for transaction queries
type QueryOptions struct {
	Category        *Category
	TransactionType *TransactionType
	RelatedEntityID *string

	Limit  int
	Offset int

	// Ascending returns oldest first; the default is newest first
	Ascending bool
}

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

// DefaultQueryOptions returns default query options
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{
		Limit: DefaultHistoryLimit,
	}
}

// ClampHistoryLimit maps a requested page size into [1, MaxHistoryLimit].
// Zero means "not given" and yields the default.
func ClampHistoryLimit(limit int) int {
	switch {
	case limit == 0:
		return DefaultHistoryLimit
	case limit < 1:
		return 1
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}
