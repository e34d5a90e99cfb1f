package ledger

import (
	"fmt"

	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// ErrInvalidTransaction represents validation errors for transactions
type ErrInvalidTransaction struct {
	Field  string
	Reason string
}

func (e *ErrInvalidTransaction) Error() string {
	return fmt.Sprintf("invalid transaction: %s - %s", e.Field, e.Reason)
}

// ErrBalanceInvariantViolation represents errors when balance calculations don't match
type ErrBalanceInvariantViolation struct {
	BalanceBefore int64
	Amount        int64
	BalanceAfter  int64
	Expected      int64
}

func (e *ErrBalanceInvariantViolation) Error() string {
	return fmt.Sprintf("balance invariant violated: balance_before=%d + amount=%d should equal balance_after=%d, but got %d",
		e.BalanceBefore, e.Amount, e.Expected, e.BalanceAfter)
}

// InsufficientFundsError is returned when a debit exceeds the current balance
type InsufficientFundsError struct {
	*shared.DomainError
	Required  int64
	Available int64
}

func NewInsufficientFundsError(required, available int64) *InsufficientFundsError {
	return &InsufficientFundsError{
		DomainError: shared.NewDomainError(shared.CodeInsufficientFunds,
			fmt.Sprintf("insufficient funds: need %d, have %d", required, available)),
		Required:  required,
		Available: available,
	}
}

// Reasons lets the API report the shortfall next to prerequisite failures
func (e *InsufficientFundsError) Reasons() []string {
	return []string{e.Message}
}
