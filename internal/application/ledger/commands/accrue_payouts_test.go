package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/imperium/internal/application/ledger/commands"
	"github.com/andrescamacho/imperium/internal/application/ledger/queries"
	"github.com/andrescamacho/imperium/test/helpers"
)

func accrue(t *testing.T, app *helpers.TestApp) *commands.AccruePayoutsResponse {
	t.Helper()
	resp, err := app.Mediator.Send(context.Background(), &commands.AccruePayoutsCommand{})
	require.NoError(t, err)
	return resp.(*commands.AccruePayoutsResponse)
}

func TestAccruePayouts_PaysFlatAndPerBaseIncome(t *testing.T) {
	app := helpers.NewTestApp(t, helpers.WithIncome(commands.IncomeRates{PerHour: 100, PerBasePerHour: 50}))
	alice := app.SeedEmpire(t, "alice", 1000, []string{"A01:02:03:04", "A01:02:03:05"})
	bob := app.SeedEmpire(t, "bob", 0, []string{"B05:06:07:08"})

	app.Clock.Advance(2 * time.Hour)
	resp := accrue(t, app)

	assert.Equal(t, 2, resp.Empires)
	assert.Equal(t, 0, resp.Failed)
	// alice: (100 + 2*50) * 2h, bob: (100 + 50) * 2h
	assert.Equal(t, int64(400+300), resp.Credited)
	assert.Equal(t, int64(1400), app.Credits(t, alice))
	assert.Equal(t, int64(300), app.Credits(t, bob))

	again := accrue(t, app)
	assert.Zero(t, again.Credited, "nothing accrues without time passing")

	verify, err := app.Mediator.Send(context.Background(), &queries.VerifyLedgerQuery{})
	require.NoError(t, err)
	for id, report := range verify.(*queries.VerifyLedgerResponse).Reports {
		assert.True(t, report.Consistent(), id)
	}
}

func TestAccruePayouts_CarriesFractionsBetweenRuns(t *testing.T) {
	app := helpers.NewTestApp(t, helpers.WithIncome(commands.IncomeRates{PerHour: 100}))
	id := app.SeedEmpire(t, "alice", 0, []string{"A01:02:03:04"})

	// 100 per hour is one credit every 36 seconds
	app.Clock.Advance(54 * time.Second)
	assert.Equal(t, int64(1), accrue(t, app).Credited)

	app.Clock.Advance(18 * time.Second)
	assert.Equal(t, int64(1), accrue(t, app).Credited, "the half credit left over completes a whole one")
	assert.Equal(t, int64(2), app.Credits(t, id))
}

func TestAccruePayouts_ZeroRatesPostNothing(t *testing.T) {
	app := helpers.NewTestApp(t)
	app.SeedEmpire(t, "alice", 500, []string{"A01:02:03:04"})

	app.Clock.Advance(24 * time.Hour)
	resp := accrue(t, app)
	assert.Equal(t, 1, resp.Empires)
	assert.Zero(t, resp.Credited)

	history, err := app.Mediator.Send(context.Background(), &queries.GetCreditHistoryQuery{Actor: "alice", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, history.(*queries.GetCreditHistoryResponse).Transactions, 1, "only the starting grant")
}
