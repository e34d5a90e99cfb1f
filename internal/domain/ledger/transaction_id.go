package ledger

import (
	"fmt"

	"github.com/google/uuid"
)

// TransactionID identifies a ledger row
type TransactionID struct {
	value string
}

// NewTransactionID generates a fresh random identifier
func NewTransactionID() TransactionID {
	return TransactionID{value: uuid.NewString()}
}

// ParseTransactionID validates a stored or client-supplied identifier
func ParseTransactionID(raw string) (TransactionID, error) {
	if _, err := uuid.Parse(raw); err != nil {
		return TransactionID{}, fmt.Errorf("invalid transaction_id %q: %w", raw, err)
	}
	return TransactionID{value: raw}, nil
}

func (t TransactionID) String() string {
	return t.value
}

// IsZero checks if the TransactionID is the zero value (uninitialized)
func (t TransactionID) IsZero() bool {
	return t.value == ""
}
