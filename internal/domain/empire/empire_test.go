package empire_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/imperium/internal/domain/empire"
	"github.com/andrescamacho/imperium/internal/domain/ledger"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

func newEmpire(credits int64) *empire.Empire {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return empire.ReconstructEmpire(shared.MustNewEmpireID(1), "actor-1", "Vega",
		[]shared.Coordinate{shared.MustParseCoordinate("A01:01:01:01")},
		credits, 0, 0, map[string]int{"energy": 2}, 1, nil, now, now)
}

func TestAdjustCredits_DebitWithinBalance(t *testing.T) {
	e := newEmpire(500)

	before, after, err := e.AdjustCredits(-300)

	require.NoError(t, err)
	assert.Equal(t, int64(500), before)
	assert.Equal(t, int64(200), after)
	assert.Equal(t, int64(200), e.Credits())
}

func TestAdjustCredits_InsufficientFundsLeavesBalance(t *testing.T) {
	e := newEmpire(100)

	_, _, err := e.AdjustCredits(-300)

	var insufficient *ledger.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(300), insufficient.Required)
	assert.Equal(t, int64(100), insufficient.Available)
	assert.Equal(t, int64(100), e.Credits())
	assert.Equal(t, shared.CodeInsufficientFunds, shared.CodeOf(err))
}

func TestAccrueMilli_CarriesRemainder(t *testing.T) {
	e := newEmpire(0)

	whole, err := e.AccrueMilli(2500)
	require.NoError(t, err)
	assert.Equal(t, int64(2), whole)
	assert.Equal(t, int64(500), e.CreditRemainder())

	whole, err = e.AccrueMilli(700)
	require.NoError(t, err)
	assert.Equal(t, int64(1), whole)
	assert.Equal(t, int64(200), e.CreditRemainder())

	_, err = e.AccrueMilli(-1)
	assert.Error(t, err)
}

func TestRaiseTechLevel_IsMonotone(t *testing.T) {
	e := newEmpire(0)

	assert.True(t, e.RaiseTechLevel("energy", 3))
	assert.False(t, e.RaiseTechLevel("energy", 1))
	assert.Equal(t, 3, e.TechLevel("energy"))
	assert.Equal(t, 0, e.TechLevel("lasers"))
}

func TestOwnsLocation(t *testing.T) {
	e := newEmpire(0)

	assert.True(t, e.OwnsLocation(shared.MustParseCoordinate("A01:01:01:01")))
	assert.False(t, e.OwnsLocation(shared.MustParseCoordinate("A01:01:01:02")))
}

func TestNewEmpire_Validates(t *testing.T) {
	_, err := empire.NewEmpire("", "Vega", nil, time.Now())
	assert.Error(t, err)

	e, err := empire.NewEmpire("actor-2", "Rigel", []shared.Coordinate{
		shared.MustParseCoordinate("B02:02:02:02"),
		shared.MustParseCoordinate("B02:02:02:03"),
	}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, e.BaseCount())
	assert.True(t, e.ID().IsZero())
	assert.Len(t, e.Locations(), 2)
}

func TestFlags(t *testing.T) {
	e := newEmpire(0)

	e.SetFlag(empire.FlagBaseAbandonedDiscount, true)
	assert.True(t, e.HasFlag(empire.FlagBaseAbandonedDiscount))

	e.SetFlag(empire.FlagBaseAbandonedDiscount, false)
	assert.False(t, e.HasFlag(empire.FlagBaseAbandonedDiscount))
}
