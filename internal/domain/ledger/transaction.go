package ledger

import (
	"fmt"
	"time"

	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// Transaction is the aggregate root representing one movement of credits.
// Transactions are append-only: once created they are never changed or deleted.
type Transaction struct {
	id                TransactionID
	empireID          shared.EmpireID
	sequence          int64 // position in the empire's ledger, starting at 1
	createdAt         time.Time
	transactionType   TransactionType
	category          Category
	amount            int64 // positive for income, negative for charges
	balanceBefore     int64
	balanceAfter      int64
	note              string
	relatedEntityType string // e.g. "queue_entry"
	relatedEntityID   string
}

// Reference points a transaction at the entity that caused it
type Reference struct {
	EntityType string
	EntityID   string
}

// NewTransaction creates a new transaction with validation
func NewTransaction(
	empireID shared.EmpireID,
	sequence int64,
	createdAt time.Time,
	transactionType TransactionType,
	amount int64,
	balanceBefore int64,
	note string,
	ref Reference,
) (*Transaction, error) {
	if empireID.IsZero() {
		return nil, &ErrInvalidTransaction{
			Field:  "empire_id",
			Reason: "empire_id cannot be zero",
		}
	}

	if sequence <= 0 {
		return nil, &ErrInvalidTransaction{
			Field:  "sequence",
			Reason: fmt.Sprintf("sequence must be positive, got %d", sequence),
		}
	}

	category, err := transactionType.ToCategory()
	if err != nil {
		return nil, &ErrInvalidTransaction{
			Field:  "transaction_type",
			Reason: err.Error(),
		}
	}

	t := &Transaction{
		id:                NewTransactionID(),
		empireID:          empireID,
		sequence:          sequence,
		createdAt:         createdAt,
		transactionType:   transactionType,
		category:          category,
		amount:            amount,
		balanceBefore:     balanceBefore,
		balanceAfter:      balanceBefore + amount,
		note:              note,
		relatedEntityType: ref.EntityType,
		relatedEntityID:   ref.EntityID,
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	return t, nil
}

// ReconstructTransaction reconstructs a transaction from persistence
// This bypasses validation and is used by the repository
func ReconstructTransaction(
	id TransactionID,
	empireID shared.EmpireID,
	sequence int64,
	createdAt time.Time,
	transactionType TransactionType,
	category Category,
	amount int64,
	balanceBefore int64,
	balanceAfter int64,
	note string,
	ref Reference,
) *Transaction {
	return &Transaction{
		id:                id,
		empireID:          empireID,
		sequence:          sequence,
		createdAt:         createdAt,
		transactionType:   transactionType,
		category:          category,
		amount:            amount,
		balanceBefore:     balanceBefore,
		balanceAfter:      balanceAfter,
		note:              note,
		relatedEntityType: ref.EntityType,
		relatedEntityID:   ref.EntityID,
	}
}

// Validate checks that the transaction satisfies all invariants
func (t *Transaction) Validate() error {
	if t.amount == 0 {
		return &ErrInvalidTransaction{
			Field:  "amount",
			Reason: "amount cannot be zero",
		}
	}

	if t.createdAt.IsZero() {
		return &ErrInvalidTransaction{
			Field:  "created_at",
			Reason: "created_at must be set",
		}
	}

	expected := t.balanceBefore + t.amount
	if t.balanceAfter != expected {
		return &ErrBalanceInvariantViolation{
			BalanceBefore: t.balanceBefore,
			Amount:        t.amount,
			BalanceAfter:  t.balanceAfter,
			Expected:      expected,
		}
	}

	if t.balanceAfter < 0 {
		return &ErrInvalidTransaction{
			Field:  "balance_after",
			Reason: fmt.Sprintf("balance cannot go negative (%d)", t.balanceAfter),
		}
	}

	return nil
}

// Getters (all fields are immutable)

func (t *Transaction) ID() TransactionID {
	return t.id
}

func (t *Transaction) EmpireID() shared.EmpireID {
	return t.empireID
}

func (t *Transaction) Sequence() int64 {
	return t.sequence
}

func (t *Transaction) CreatedAt() time.Time {
	return t.createdAt
}

func (t *Transaction) TransactionType() TransactionType {
	return t.transactionType
}

func (t *Transaction) Category() Category {
	return t.category
}

func (t *Transaction) Amount() int64 {
	return t.amount
}

func (t *Transaction) BalanceBefore() int64 {
	return t.balanceBefore
}

func (t *Transaction) BalanceAfter() int64 {
	return t.balanceAfter
}

func (t *Transaction) Note() string {
	return t.note
}

func (t *Transaction) Reference() Reference {
	return Reference{EntityType: t.relatedEntityType, EntityID: t.relatedEntityID}
}

// IsIncome returns true if the transaction added credits
func (t *Transaction) IsIncome() bool {
	return t.amount > 0
}

// IsExpense returns true if the transaction removed credits
func (t *Transaction) IsExpense() bool {
	return t.amount < 0
}

// String provides a human-readable representation
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction[%s, #%d, type=%s, amount=%d, balance=%d->%d]",
		t.id.String(), t.sequence, t.transactionType, t.amount, t.balanceBefore, t.balanceAfter)
}
