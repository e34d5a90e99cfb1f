package ledger

import "fmt"

// Category groups transaction types for reporting
type Category string

const (
	CategoryIncome       Category = "INCOME"
	CategoryConstruction Category = "CONSTRUCTION"
	CategoryResearch     Category = "RESEARCH"
	CategoryProduction   Category = "PRODUCTION"
	CategoryDefense      Category = "DEFENSE"
	CategoryColonization Category = "COLONIZATION"
	CategoryOther        Category = "OTHER"
)

// AllCategories returns all valid categories
func AllCategories() []Category {
	return []Category{
		CategoryIncome,
		CategoryConstruction,
		CategoryResearch,
		CategoryProduction,
		CategoryDefense,
		CategoryColonization,
		CategoryOther,
	}
}

// TypeToCategoryMap maps transaction types to their categories.
// Refunds share the category of the charge they return.
var TypeToCategoryMap = map[TransactionType]Category{
	TransactionTypePayout:               CategoryIncome,
	TransactionTypeConstructionCharge:   CategoryConstruction,
	TransactionTypeConstructionRefund:   CategoryConstruction,
	TransactionTypeResearchCharge:       CategoryResearch,
	TransactionTypeResearchRefund:       CategoryResearch,
	TransactionTypeUnitProductionCharge: CategoryProduction,
	TransactionTypeUnitProductionRefund: CategoryProduction,
	TransactionTypeDefenseCharge:        CategoryDefense,
	TransactionTypeDefenseRefund:        CategoryDefense,
	TransactionTypeColonizationCharge:   CategoryColonization,
	TransactionTypeOther:                CategoryOther,
}

func (c Category) String() string {
	return string(c)
}

// IsValid checks if the category is valid
func (c Category) IsValid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory parses a string into a Category
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid category: %s", s)
	}
	return c, nil
}
