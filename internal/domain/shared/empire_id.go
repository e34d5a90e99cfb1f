package shared

import "fmt"

// EmpireID is a value object representing an empire's unique identifier
type EmpireID struct {
	value int
}

// NewEmpireID creates a new EmpireID value object
func NewEmpireID(id int) (EmpireID, error) {
	if id <= 0 {
		return EmpireID{}, fmt.Errorf("empire_id must be positive")
	}
	return EmpireID{value: id}, nil
}

// MustNewEmpireID creates a new EmpireID value object, panicking if invalid
// Use this only when you're certain the ID is valid (e.g., from database)
func MustNewEmpireID(id int) EmpireID {
	empireID, err := NewEmpireID(id)
	if err != nil {
		panic(err)
	}
	return empireID
}

// Value returns the integer value of the EmpireID
func (e EmpireID) Value() int {
	return e.value
}

func (e EmpireID) String() string {
	return fmt.Sprintf("%d", e.value)
}

// Equals checks if two EmpireIDs are equal
func (e EmpireID) Equals(other EmpireID) bool {
	return e.value == other.value
}

// IsZero checks if the EmpireID is the zero value (uninitialized)
func (e EmpireID) IsZero() bool {
	return e.value == 0
}
