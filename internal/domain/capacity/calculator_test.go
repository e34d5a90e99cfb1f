package capacity_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/imperium/internal/domain/capacity"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

func newCalculator(t *testing.T) *capacity.Calculator {
	t.Helper()
	calc, err := capacity.NewCalculator(60, 30)
	require.NoError(t, err)
	return calc
}

func TestComputeRate(t *testing.T) {
	calc := newCalculator(t)

	tests := []struct {
		name    string
		levels  int
		bonus   int
		policy  capacity.ZeroCapacityPolicy
		want    int64
		wantErr error
	}{
		{"single level", 1, 0, capacity.ZeroCapacityBlock, 60, nil},
		{"three levels with bonus", 3, 10, capacity.ZeroCapacityBlock, 198, nil},
		{"zero levels floor", 0, 50, capacity.ZeroCapacityFloor, 30, nil},
		{"zero levels block", 0, 0, capacity.ZeroCapacityBlock, 0, capacity.ErrNoCapacity},
		{"negative levels", -1, 0, capacity.ZeroCapacityFloor, 0, capacity.ErrNegativeInput},
		{"negative bonus", 1, -5, capacity.ZeroCapacityFloor, 0, capacity.ErrNegativeInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, err := calc.ComputeRate(tt.levels, tt.bonus, tt.policy)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rate.PerHour)
		})
	}
}

func TestComputeEta_RoundsUpToWholeSeconds(t *testing.T) {
	eta, err := capacity.ComputeEta(7, capacity.Rate{PerHour: 60})
	require.NoError(t, err)
	assert.Equal(t, 420*time.Second, eta)

	eta, err = capacity.ComputeEta(1, capacity.Rate{PerHour: 7})
	require.NoError(t, err)
	assert.Equal(t, 515*time.Second, eta) // 3600/7 = 514.28...

	eta, err = capacity.ComputeEta(0, capacity.Rate{PerHour: 7})
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), eta)
}

func TestComputeEta_IsDeterministic(t *testing.T) {
	first, err := capacity.ComputeEta(12345, capacity.Rate{PerHour: 321})
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		again, err := capacity.ComputeEta(12345, capacity.Rate{PerHour: 321})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestComputeEta_RejectsBadInput(t *testing.T) {
	_, err := capacity.ComputeEta(-1, capacity.Rate{PerHour: 60})
	assert.ErrorIs(t, err, capacity.ErrNegativeInput)

	_, err = capacity.ComputeEta(10, capacity.Rate{})
	assert.Error(t, err)
}

func TestComputeEta_RejectsDurationsThatOverflow(t *testing.T) {
	_, err := capacity.ComputeEta(math.MaxInt64/1000, capacity.Rate{PerHour: 1})
	assert.ErrorIs(t, err, capacity.ErrEtaOutOfRange, "work*3600 overflows")

	// Fits int64 seconds but not a time.Duration
	_, err = capacity.ComputeEta(10_000_000, capacity.Rate{PerHour: 1})
	assert.ErrorIs(t, err, capacity.ErrEtaOutOfRange)

	eta, err := capacity.ComputeEta(2_000_000, capacity.Rate{PerHour: 1})
	require.NoError(t, err)
	assert.Equal(t, 2_000_000*time.Hour, eta)
}

func TestSumContributingLevels_CountsOnlyActiveAtPreUpgradeLevel(t *testing.T) {
	empireID := shared.MustNewEmpireID(1)
	loc := shared.MustParseCoordinate("A01:01:01:01")

	upgrading := capacity.NewActiveAsset(empireID, loc, "research_lab", 2)
	require.NoError(t, upgrading.BeginUpgrade())
	assets := []*capacity.Asset{
		capacity.NewActiveAsset(empireID, loc, "research_lab", 1),
		upgrading,
		capacity.NewPendingAsset(empireID, loc, "research_lab"),
		capacity.NewActiveAsset(empireID, loc, "shipyard", 4),
	}

	levels := capacity.SumContributingLevels(assets, func(key string) bool { return key == "research_lab" })

	assert.Equal(t, 3, levels)
}

func TestAsset_UpgradeLifecycle(t *testing.T) {
	asset := capacity.NewActiveAsset(shared.MustNewEmpireID(1), shared.MustParseCoordinate("A01:01:01:01"), "shipyard", 1)

	require.NoError(t, asset.BeginUpgrade())
	assert.Error(t, asset.BeginUpgrade())
	assert.Equal(t, 1, asset.ContributingLevel())

	require.NoError(t, asset.CompleteUpgrade(2))
	assert.Equal(t, 2, asset.Level())
	assert.False(t, asset.IsPendingUpgrade())

	pending := capacity.NewPendingAsset(shared.MustNewEmpireID(1), shared.MustParseCoordinate("A01:01:01:01"), "shipyard")
	assert.Error(t, pending.BeginUpgrade())
	require.NoError(t, pending.Activate())
	assert.Error(t, pending.Activate())
}
