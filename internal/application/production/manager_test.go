package production_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	empireCommands "github.com/andrescamacho/imperium/internal/application/empire/commands"
	ledgerQueries "github.com/andrescamacho/imperium/internal/application/ledger/queries"
	"github.com/andrescamacho/imperium/internal/application/production"
	"github.com/andrescamacho/imperium/internal/domain/catalog"
	"github.com/andrescamacho/imperium/internal/domain/shared"
	"github.com/andrescamacho/imperium/test/helpers"
)

const (
	actor   = "alice"
	homeLoc = "A01:02:03:04"
	farLoc  = "B05:06:07:08"
)

func lab(level int) empireCommands.StartingAsset {
	return empireCommands.StartingAsset{Location: homeLoc, ItemKey: helpers.ResearchLab, Level: level}
}

func start(app *helpers.TestApp, track shared.Track, item, location string) (*production.EntryView, error) {
	return app.Manager.Start(context.Background(), production.StartRequest{
		Actor:    actor,
		Track:    track,
		Location: location,
		ItemKey:  item,
	})
}

func startLevel(app *helpers.TestApp, track shared.Track, item, location string, level int) (*production.EntryView, error) {
	return app.Manager.Start(context.Background(), production.StartRequest{
		Actor:       actor,
		Track:       track,
		Location:    location,
		ItemKey:     item,
		TargetLevel: level,
	})
}

func history(t *testing.T, app *helpers.TestApp) *ledgerQueries.GetCreditHistoryResponse {
	t.Helper()
	resp, err := app.Mediator.Send(context.Background(), &ledgerQueries.GetCreditHistoryQuery{Actor: actor})
	require.NoError(t, err)
	return resp.(*ledgerQueries.GetCreditHistoryResponse)
}

func assertLedgerConsistent(t *testing.T, app *helpers.TestApp) {
	t.Helper()
	resp, err := app.Mediator.Send(context.Background(), &ledgerQueries.VerifyLedgerQuery{})
	require.NoError(t, err)
	assert.True(t, resp.(*ledgerQueries.VerifyLedgerResponse).Consistent(), "ledger replay must add up")
}

func TestStart_TechnologyDebitsAndSchedules(t *testing.T) {
	app := helpers.NewTestApp(t)
	id := app.SeedEmpire(t, actor, 500, []string{homeLoc}, lab(1))

	view, err := start(app, shared.TrackTechnology, helpers.EnergyTech, homeLoc)
	require.NoError(t, err)

	assert.Equal(t, int64(200), app.Credits(t, id))
	assert.Equal(t, int64(300), view.ChargedAmount)
	assert.Equal(t, "pending", view.Status)
	assert.Equal(t, 1, view.TargetLevel)
	assert.False(t, view.Deferred)

	// 600 work at 100 per hour
	require.NotNil(t, view.ETASeconds)
	assert.Equal(t, int64(6*3600), *view.ETASeconds)
	require.NotNil(t, view.CompletesAt)
	assert.True(t, view.CompletesAt.Equal(helpers.TestEpoch.Add(6*time.Hour)))

	h := history(t, app)
	assert.Equal(t, int64(200), h.Balance)
	require.Len(t, h.Transactions, 2)
	assert.Equal(t, "research-charge", h.Transactions[0].Type)
	assert.Equal(t, int64(-300), h.Transactions[0].Amount)
	assert.Equal(t, int64(500), h.Transactions[0].BalanceBefore)
	assert.Equal(t, int64(200), h.Transactions[0].BalanceAfter)
	assert.Equal(t, view.ID, h.Transactions[0].RelatedEntityID)

	assertLedgerConsistent(t, app)
}

func TestStart_InsufficientFundsLeavesNoTrace(t *testing.T) {
	app := helpers.NewTestApp(t)
	id := app.SeedEmpire(t, actor, 100, []string{homeLoc}, lab(1))

	_, err := start(app, shared.TrackTechnology, helpers.EnergyTech, homeLoc)
	require.Error(t, err)
	assert.Equal(t, shared.CodeInsufficientFunds, shared.CodeOf(err))

	assert.Equal(t, int64(100), app.Credits(t, id))
	assert.Len(t, history(t, app).Transactions, 1, "only the starting grant")

	queue, err := app.Manager.ListQueue(context.Background(), actor, shared.TrackTechnology, "")
	require.NoError(t, err)
	assert.Empty(t, queue)

	// The reservation was rolled back with everything else
	_, err = start(app, shared.TrackTechnology, helpers.EnergyTech, homeLoc)
	assert.Equal(t, shared.CodeInsufficientFunds, shared.CodeOf(err))
}

func TestCancel_DefenseIsLockedButTechnologyRefunds(t *testing.T) {
	app := helpers.NewTestApp(t)
	id := app.SeedEmpire(t, actor, 500, []string{homeLoc}, lab(1))
	ctx := context.Background()

	turret, err := start(app, shared.TrackDefenses, helpers.LaserTurret, homeLoc)
	require.NoError(t, err)
	_, err = app.Manager.Cancel(ctx, actor, shared.TrackDefenses, turret.ID)
	require.Error(t, err)
	assert.Equal(t, shared.CodeNotCancellableYet, shared.CodeOf(err))
	assert.Equal(t, int64(350), app.Credits(t, id))

	tech, err := start(app, shared.TrackTechnology, helpers.EnergyTech, homeLoc)
	require.NoError(t, err)
	assert.Equal(t, int64(50), app.Credits(t, id))

	app.Clock.Advance(time.Hour)
	result, err := app.Manager.Cancel(ctx, actor, shared.TrackTechnology, tech.ID)
	require.NoError(t, err)
	assert.Equal(t, tech.ID, result.CancelledID)
	assert.Equal(t, int64(300), result.RefundedAmount)
	assert.Equal(t, int64(350), app.Credits(t, id))

	h := history(t, app)
	assert.Equal(t, "research-refund", h.Transactions[0].Type)
	assert.Equal(t, int64(300), h.Transactions[0].Amount)

	assertLedgerConsistent(t, app)
}

func TestCancel_RefundsChargedAmountAfterPriceChange(t *testing.T) {
	app := helpers.NewTestApp(t)
	id := app.SeedEmpire(t, actor, 500, []string{homeLoc}, lab(1))

	view, err := start(app, shared.TrackTechnology, helpers.EnergyTech, homeLoc)
	require.NoError(t, err)

	require.NoError(t, app.Catalog.Upsert(&catalog.Item{
		Key: helpers.EnergyTech, Track: shared.TrackTechnology, Name: "Energy Technology",
		MaxLevel: 10, BaseCost: 900, BaseWork: 600,
	}))

	result, err := app.Manager.Cancel(context.Background(), actor, shared.TrackTechnology, view.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(300), result.RefundedAmount)
	assert.Equal(t, int64(500), app.Credits(t, id))
}

func TestStart_ConcurrentDuplicatesReserveOnce(t *testing.T) {
	app := helpers.NewTestApp(t)
	id := app.SeedEmpire(t, actor, 5000, []string{homeLoc}, lab(1))

	const attempts = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := start(app, shared.TrackTechnology, helpers.EnergyTech, homeLoc)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case shared.CodeOf(err) == shared.CodeAlreadyInProgress:
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicts)
	assert.Equal(t, int64(4700), app.Credits(t, id))

	queue, err := app.Manager.ListQueue(context.Background(), actor, shared.TrackTechnology, "")
	require.NoError(t, err)
	assert.Len(t, queue, 1)
}

func TestStart_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	app := helpers.NewTestApp(t)
	locations := []string{"A01:00:00:01", "A01:00:00:02", "A01:00:00:03", "A01:00:00:04", "A01:00:00:05"}
	id := app.SeedEmpire(t, actor, 500, locations)

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		succeeded    int
		insufficient int
	)
	for _, loc := range locations {
		wg.Add(1)
		go func(loc string) {
			defer wg.Done()
			_, err := start(app, shared.TrackDefenses, helpers.LaserTurret, loc)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case shared.CodeOf(err) == shared.CodeInsufficientFunds:
				insufficient++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(loc)
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 2, insufficient)
	assert.Equal(t, int64(50), app.Credits(t, id))
	assertLedgerConsistent(t, app)
}

func TestStart_TechnologyReservationSpansLevels(t *testing.T) {
	app := helpers.NewTestApp(t)
	app.SeedEmpire(t, actor, 5000, []string{homeLoc}, lab(1))

	_, err := start(app, shared.TrackTechnology, helpers.EnergyTech, homeLoc)
	require.NoError(t, err)

	_, err = app.Manager.Start(context.Background(), production.StartRequest{
		Actor: actor, Track: shared.TrackTechnology, Location: homeLoc,
		ItemKey: helpers.EnergyTech, TargetLevel: 2,
	})
	require.Error(t, err)
	assert.Equal(t, shared.CodeAlreadyInProgress, shared.CodeOf(err))
}

func TestStart_TechnologyCannotSkipLevels(t *testing.T) {
	app := helpers.NewTestApp(t)
	id := app.SeedEmpire(t, actor, 100000, []string{homeLoc}, lab(1))

	_, err := startLevel(app, shared.TrackTechnology, helpers.EnergyTech, homeLoc, 5)
	require.Error(t, err)
	assert.Equal(t, shared.CodePrerequisitesNotMet, shared.CodeOf(err))
	assert.Contains(t, shared.ReasonsOf(err), "energy_technology is at level 0, research level 1 first")
	assert.Equal(t, int64(100000), app.Credits(t, id))

	view, err := startLevel(app, shared.TrackTechnology, helpers.EnergyTech, homeLoc, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, view.TargetLevel)
}

func TestStart_RejectsBadInput(t *testing.T) {
	app := helpers.NewTestApp(t)
	app.SeedEmpire(t, actor, 500, []string{homeLoc}, lab(1))
	ctx := context.Background()

	tests := []struct {
		name string
		req  production.StartRequest
		code shared.ErrorCode
	}{
		{
			name: "malformed location",
			req:  production.StartRequest{Actor: actor, Track: shared.TrackTechnology, Location: "A1:2:3", ItemKey: helpers.EnergyTech},
			code: shared.CodeInvalidLocation,
		},
		{
			name: "location of nobody",
			req:  production.StartRequest{Actor: actor, Track: shared.TrackTechnology, Location: "Z99:99:99:99", ItemKey: helpers.EnergyTech},
			code: shared.CodeNotOwned,
		},
		{
			name: "unknown actor",
			req:  production.StartRequest{Actor: "mallory", Track: shared.TrackTechnology, Location: homeLoc, ItemKey: helpers.EnergyTech},
			code: shared.CodeNotFound,
		},
		{
			name: "item of another track",
			req:  production.StartRequest{Actor: actor, Track: shared.TrackUnits, Location: homeLoc, ItemKey: helpers.EnergyTech},
			code: shared.CodeValidationFailed,
		},
		{
			name: "level beyond single-level item",
			req:  production.StartRequest{Actor: actor, Track: shared.TrackDefenses, Location: homeLoc, ItemKey: helpers.LaserTurret, TargetLevel: 2},
			code: shared.CodeValidationFailed,
		},
		{
			name: "unmet technology prerequisite",
			req:  production.StartRequest{Actor: actor, Track: shared.TrackTechnology, Location: homeLoc, ItemKey: helpers.ComputerTech},
			code: shared.CodePrerequisitesNotMet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.Manager.Start(ctx, tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.code, shared.CodeOf(err))
		})
	}
}

func TestStart_ZeroCapacityBlocksTechnologyButFloorsDefense(t *testing.T) {
	app := helpers.NewTestApp(t)
	id := app.SeedEmpire(t, actor, 1000, []string{homeLoc})

	_, err := start(app, shared.TrackTechnology, helpers.EnergyTech, homeLoc)
	require.Error(t, err)
	assert.Equal(t, shared.CodePrerequisitesNotMet, shared.CodeOf(err))
	assert.Contains(t, shared.ReasonsOf(err), "no technology capacity at "+homeLoc)
	assert.Equal(t, int64(1000), app.Credits(t, id))

	view, err := start(app, shared.TrackDefenses, helpers.LaserTurret, homeLoc)
	require.NoError(t, err)
	// 300 work at the floor rate of 25 per hour
	require.NotNil(t, view.ETASeconds)
	assert.Equal(t, int64(12*3600), *view.ETASeconds)
}

func TestStart_EtaIsDeterministic(t *testing.T) {
	app := helpers.NewTestApp(t)
	app.SeedEmpire(t, actor, 1000, []string{homeLoc}, lab(2))
	app.SeedEmpire(t, "bob", 1000, []string{farLoc},
		empireCommands.StartingAsset{Location: farLoc, ItemKey: helpers.ResearchLab, Level: 2})

	first, err := start(app, shared.TrackTechnology, helpers.EnergyTech, homeLoc)
	require.NoError(t, err)
	second, err := app.Manager.Start(context.Background(), production.StartRequest{
		Actor: "bob", Track: shared.TrackTechnology, Location: farLoc, ItemKey: helpers.EnergyTech,
	})
	require.NoError(t, err)

	require.NotNil(t, first.ETASeconds)
	require.NotNil(t, second.ETASeconds)
	assert.Equal(t, *first.ETASeconds, *second.ETASeconds)
	// 600 work at 2 levels * 100 per hour
	assert.Equal(t, int64(3*3600), *first.ETASeconds)
}

func TestSettle_RaisesTechnologyAndUnlocksDependents(t *testing.T) {
	app := helpers.NewTestApp(t)
	id := app.SeedEmpire(t, actor, 2000, []string{homeLoc}, lab(1))
	ctx := context.Background()

	_, err := start(app, shared.TrackTechnology, helpers.EnergyTech, homeLoc)
	require.NoError(t, err)

	app.Clock.Advance(6 * time.Hour)
	queue, err := app.Manager.ListQueue(ctx, actor, shared.TrackTechnology, homeLoc)
	require.NoError(t, err)
	assert.Empty(t, queue)

	e, err := app.UoW.Reader().Empires.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, e.TechLevel(helpers.EnergyTech))

	// Prerequisite met and the reservation released
	view, err := start(app, shared.TrackTechnology, helpers.ComputerTech, homeLoc)
	require.NoError(t, err)
	assert.Equal(t, int64(400), view.ChargedAmount)

	// Target level defaults to the next level
	next, err := start(app, shared.TrackTechnology, helpers.EnergyTech, homeLoc)
	require.NoError(t, err)
	assert.Equal(t, 2, next.TargetLevel)
	assert.Equal(t, int64(600), next.ChargedAmount)
}

func TestSettle_SequentialUnitLine(t *testing.T) {
	app := helpers.NewTestApp(t)
	id := app.SeedEmpire(t, actor, 1000, []string{homeLoc},
		empireCommands.StartingAsset{Location: homeLoc, ItemKey: helpers.Shipyard, Level: 1})
	ctx := context.Background()

	fighter, err := start(app, shared.TrackUnits, helpers.LightFighter, homeLoc)
	require.NoError(t, err)
	require.NotNil(t, fighter.ETASeconds)
	assert.Equal(t, int64(2*3600), *fighter.ETASeconds)

	hauler, err := start(app, shared.TrackUnits, helpers.CargoHauler, homeLoc)
	require.NoError(t, err)
	assert.True(t, hauler.Deferred)
	assert.Nil(t, hauler.CompletesAt)
	assert.Nil(t, hauler.ETASeconds)
	assert.Equal(t, int64(150), hauler.ChargedAmount)
	assert.Equal(t, int64(750), app.Credits(t, id))

	queue, err := app.Manager.ListQueue(ctx, actor, shared.TrackUnits, homeLoc)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, fighter.ID, queue[0].ID)
	assert.Equal(t, hauler.ID, queue[1].ID)

	// Settling a little late still starts the next item when the line freed up
	app.Clock.Advance(2*time.Hour + 10*time.Minute)
	queue, err = app.Manager.ListQueue(ctx, actor, shared.TrackUnits, homeLoc)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, hauler.ID, queue[0].ID)
	require.NotNil(t, queue[0].CompletesAt)
	assert.True(t, queue[0].CompletesAt.Equal(helpers.TestEpoch.Add(5*time.Hour)))

	app.Clock.Advance(3 * time.Hour)
	settled, err := app.Manager.SettleDue(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, settled)

	coord := shared.MustParseCoordinate(homeLoc)
	holdings, err := app.UoW.Reader().Holdings.FindByLocation(ctx, id, coord)
	require.NoError(t, err)
	counts := map[string]int64{}
	for _, h := range holdings {
		counts[h.ItemKey] = h.Count
	}
	assert.Equal(t, map[string]int64{helpers.LightFighter: 1, helpers.CargoHauler: 1}, counts)
}

func TestCancel_ActiveUnitHandsLineToNext(t *testing.T) {
	app := helpers.NewTestApp(t)
	id := app.SeedEmpire(t, actor, 1000, []string{homeLoc},
		empireCommands.StartingAsset{Location: homeLoc, ItemKey: helpers.Shipyard, Level: 1})
	ctx := context.Background()

	fighter, err := start(app, shared.TrackUnits, helpers.LightFighter, homeLoc)
	require.NoError(t, err)
	hauler, err := start(app, shared.TrackUnits, helpers.CargoHauler, homeLoc)
	require.NoError(t, err)

	app.Clock.Advance(30 * time.Minute)
	result, err := app.Manager.Cancel(ctx, actor, shared.TrackUnits, fighter.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.RefundedAmount)
	assert.Equal(t, int64(850), app.Credits(t, id))

	queue, err := app.Manager.ListQueue(ctx, actor, shared.TrackUnits, "")
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, hauler.ID, queue[0].ID)
	assert.False(t, queue[0].Deferred)
	require.NotNil(t, queue[0].CompletesAt)
	assert.True(t, queue[0].CompletesAt.Equal(helpers.TestEpoch.Add(30*time.Minute+3*time.Hour)))
}

func TestCancel_TerminalEntriesAreImmutable(t *testing.T) {
	app := helpers.NewTestApp(t)
	id := app.SeedEmpire(t, actor, 1000, []string{homeLoc}, lab(1))
	ctx := context.Background()

	cancelled, err := start(app, shared.TrackTechnology, helpers.EnergyTech, homeLoc)
	require.NoError(t, err)
	_, err = app.Manager.Cancel(ctx, actor, shared.TrackTechnology, cancelled.ID)
	require.NoError(t, err)

	_, err = app.Manager.Cancel(ctx, actor, shared.TrackTechnology, cancelled.ID)
	require.Error(t, err)
	assert.Equal(t, shared.CodeInvalidState, shared.CodeOf(err))
	assert.Equal(t, int64(1000), app.Credits(t, id), "refund happens exactly once")

	done, err := start(app, shared.TrackTechnology, helpers.EnergyTech, homeLoc)
	require.NoError(t, err)
	app.Clock.Advance(6 * time.Hour)

	// Elapsed but not yet settled
	_, err = app.Manager.Cancel(ctx, actor, shared.TrackTechnology, done.ID)
	require.Error(t, err)
	assert.Equal(t, shared.CodeInvalidState, shared.CodeOf(err))

	settled, err := app.Manager.SettleDueForEmpire(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, settled)

	_, err = app.Manager.Cancel(ctx, actor, shared.TrackTechnology, done.ID)
	require.Error(t, err)
	assert.Equal(t, shared.CodeInvalidState, shared.CodeOf(err))

	ok, err := app.Manager.Settle(ctx, id, done.ID)
	require.NoError(t, err)
	assert.False(t, ok, "completed entries are not settled twice")
}

func TestCancel_HidesOtherEmpiresEntries(t *testing.T) {
	app := helpers.NewTestApp(t)
	app.SeedEmpire(t, actor, 1000, []string{homeLoc}, lab(1))
	app.SeedEmpire(t, "bob", 1000, []string{farLoc})
	ctx := context.Background()

	view, err := start(app, shared.TrackTechnology, helpers.EnergyTech, homeLoc)
	require.NoError(t, err)

	_, err = app.Manager.Cancel(ctx, "bob", shared.TrackTechnology, view.ID)
	assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))

	_, err = app.Manager.Cancel(ctx, actor, shared.TrackUnits, view.ID)
	assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))

	_, err = app.Manager.Cancel(ctx, actor, shared.TrackTechnology, "no-such-entry")
	assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))
}

func TestStructures_BuildUpgradeAndCancel(t *testing.T) {
	app := helpers.NewTestApp(t)
	id := app.SeedEmpire(t, actor, 2000, []string{homeLoc},
		empireCommands.StartingAsset{Location: homeLoc, ItemKey: helpers.ConstructionYard, Level: 1})
	ctx := context.Background()
	coord := shared.MustParseCoordinate(homeLoc)

	build, err := start(app, shared.TrackStructures, helpers.ResearchLab, homeLoc)
	require.NoError(t, err)
	assert.Equal(t, 1, build.TargetLevel)

	assets, err := app.UoW.Reader().Assets.FindByLocation(ctx, id, coord)
	require.NoError(t, err)
	require.Len(t, assets, 2)

	_, err = app.Manager.Cancel(ctx, actor, shared.TrackStructures, build.ID)
	require.NoError(t, err)
	assets, err = app.UoW.Reader().Assets.FindByLocation(ctx, id, coord)
	require.NoError(t, err)
	require.Len(t, assets, 1, "the inactive asset of a cancelled build is removed")

	upgrade, err := startLevel(app, shared.TrackStructures, helpers.ConstructionYard, homeLoc, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, upgrade.TargetLevel)
	assert.Equal(t, int64(225), upgrade.ChargedAmount)
	// 450 work at 100 per hour
	require.NotNil(t, upgrade.ETASeconds)
	assert.Equal(t, int64(16200), *upgrade.ETASeconds)

	app.Clock.Advance(16200 * time.Second)
	_, err = app.Manager.SettleDueForEmpire(ctx, id)
	require.NoError(t, err)

	assets, err = app.UoW.Reader().Assets.FindByLocation(ctx, id, coord)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, 2, assets[0].Level())
	assert.True(t, assets[0].IsActive())
	assert.False(t, assets[0].IsPendingUpgrade())
}

func TestStructures_RequestTokenMakesRetriesIdempotent(t *testing.T) {
	app := helpers.NewTestApp(t)
	id := app.SeedEmpire(t, actor, 2000, []string{homeLoc})
	ctx := context.Background()

	req := production.StartRequest{
		Actor: actor, Track: shared.TrackStructures, Location: homeLoc,
		ItemKey: helpers.Shipyard, RequestToken: "retry-1",
	}
	_, err := app.Manager.Start(ctx, req)
	require.NoError(t, err)

	_, err = app.Manager.Start(ctx, req)
	require.Error(t, err)
	assert.Equal(t, shared.CodeAlreadyInProgress, shared.CodeOf(err))
	assert.Equal(t, int64(1600), app.Credits(t, id))
}

func TestStructures_SameItemQueuesSeveralBuilds(t *testing.T) {
	app := helpers.NewTestApp(t)
	id := app.SeedEmpire(t, actor, 2000, []string{homeLoc},
		empireCommands.StartingAsset{Location: homeLoc, ItemKey: helpers.ConstructionYard, Level: 1})
	ctx := context.Background()
	coord := shared.MustParseCoordinate(homeLoc)

	first, err := start(app, shared.TrackStructures, helpers.ResearchLab, homeLoc)
	require.NoError(t, err)
	second, err := start(app, shared.TrackStructures, helpers.ResearchLab, homeLoc)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 1, first.TargetLevel)
	assert.Equal(t, 1, second.TargetLevel)
	assert.Equal(t, int64(1600), app.Credits(t, id))

	queue, err := app.Manager.ListQueue(ctx, actor, shared.TrackStructures, homeLoc)
	require.NoError(t, err)
	assert.Len(t, queue, 2)

	// 400 work at 100 per hour
	app.Clock.Advance(4 * time.Hour)
	settled, err := app.Manager.SettleDueForEmpire(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, settled)

	assets, err := app.UoW.Reader().Assets.FindByLocation(ctx, id, coord)
	require.NoError(t, err)
	labs := 0
	for _, a := range assets {
		if a.ItemKey() == helpers.ResearchLab {
			assert.True(t, a.IsActive())
			labs++
		}
	}
	assert.Equal(t, 2, labs)

	// Both labs contribute: 600 work at 2 * 100 per hour
	tech, err := start(app, shared.TrackTechnology, helpers.EnergyTech, homeLoc)
	require.NoError(t, err)
	require.NotNil(t, tech.ETASeconds)
	assert.Equal(t, int64(3*3600), *tech.ETASeconds)
}

func TestStructures_UpgradeNeedsTheLevelBelow(t *testing.T) {
	app := helpers.NewTestApp(t)
	app.SeedEmpire(t, actor, 5000, []string{homeLoc},
		empireCommands.StartingAsset{Location: homeLoc, ItemKey: helpers.ConstructionYard, Level: 1})

	_, err := startLevel(app, shared.TrackStructures, helpers.ResearchLab, homeLoc, 2)
	assert.Equal(t, shared.CodePrerequisitesNotMet, shared.CodeOf(err))
	assert.Contains(t, shared.ReasonsOf(err), "research_lab must be built at "+homeLoc+" before it can be upgraded")

	_, err = startLevel(app, shared.TrackStructures, helpers.ConstructionYard, homeLoc, 3)
	assert.Equal(t, shared.CodePrerequisitesNotMet, shared.CodeOf(err))
	assert.Contains(t, shared.ReasonsOf(err), "no construction_yard at level 2 at "+homeLoc+" to upgrade to 3")

	_, err = startLevel(app, shared.TrackStructures, helpers.ConstructionYard, homeLoc, 2)
	require.NoError(t, err)
	_, err = startLevel(app, shared.TrackStructures, helpers.ConstructionYard, homeLoc, 2)
	assert.Equal(t, shared.CodePrerequisitesNotMet, shared.CodeOf(err))
	assert.Contains(t, shared.ReasonsOf(err), "construction_yard at "+homeLoc+" is already being upgraded to level 2")
}
