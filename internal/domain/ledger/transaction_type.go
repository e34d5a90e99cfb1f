package ledger

import "fmt"

// TransactionType represents the reason credits moved
type TransactionType string

const (
	TransactionTypePayout               TransactionType = "payout"
	TransactionTypeConstructionCharge   TransactionType = "construction-charge"
	TransactionTypeConstructionRefund   TransactionType = "construction-refund"
	TransactionTypeResearchCharge       TransactionType = "research-charge"
	TransactionTypeResearchRefund       TransactionType = "research-refund"
	TransactionTypeUnitProductionCharge TransactionType = "unit-production-charge"
	TransactionTypeUnitProductionRefund TransactionType = "unit-production-refund"
	TransactionTypeDefenseCharge        TransactionType = "defense-charge"
	TransactionTypeDefenseRefund        TransactionType = "defense-refund"
	TransactionTypeColonizationCharge   TransactionType = "colonization-charge"
	TransactionTypeOther                TransactionType = "other"
)

// AllTransactionTypes returns all valid transaction types
func AllTransactionTypes() []TransactionType {
	return []TransactionType{
		TransactionTypePayout,
		TransactionTypeConstructionCharge,
		TransactionTypeConstructionRefund,
		TransactionTypeResearchCharge,
		TransactionTypeResearchRefund,
		TransactionTypeUnitProductionCharge,
		TransactionTypeUnitProductionRefund,
		TransactionTypeDefenseCharge,
		TransactionTypeDefenseRefund,
		TransactionTypeColonizationCharge,
		TransactionTypeOther,
	}
}

// String returns the string representation of the TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	_, ok := TypeToCategoryMap[t]
	return ok
}

// IsRefund reports whether the type returns a previous charge
func (t TransactionType) IsRefund() bool {
	switch t {
	case TransactionTypeConstructionRefund,
		TransactionTypeResearchRefund,
		TransactionTypeUnitProductionRefund,
		TransactionTypeDefenseRefund:
		return true
	default:
		return false
	}
}

// ToCategory maps the transaction type to its category
func (t TransactionType) ToCategory() (Category, error) {
	category, exists := TypeToCategoryMap[t]
	if !exists {
		return "", fmt.Errorf("unknown transaction type: %s", t)
	}
	return category, nil
}

// ParseTransactionType parses a string into a TransactionType
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid transaction type: %s", s)
	}
	return t, nil
}
