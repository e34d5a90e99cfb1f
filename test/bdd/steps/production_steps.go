package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	empireQueries "github.com/andrescamacho/imperium/internal/application/empire/queries"
	"github.com/andrescamacho/imperium/internal/application/production"
	productionCommands "github.com/andrescamacho/imperium/internal/application/production/commands"
	productionQueries "github.com/andrescamacho/imperium/internal/application/production/queries"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// ProductionContext holds queue steps and the entries started in a scenario
type ProductionContext struct {
	world *World

	lastEntry  *production.EntryView
	lastCancel *production.CancelResult
	settled    int

	// entries maps item key to the most recent entry started for it
	entries map[string]*production.EntryView
}

// InitializeProductionScenario registers production queue steps
func InitializeProductionScenario(sc *godog.ScenarioContext, world *World) {
	c := &ProductionContext{world: world}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		c.lastEntry = nil
		c.lastCancel = nil
		c.settled = 0
		c.entries = make(map[string]*production.EntryView)
		return ctx, nil
	})

	// When steps
	sc.Step(`^"([^"]*)" starts "([^"]*)" on the (\w+) track at "([^"]*)"$`, c.starts)
	sc.Step(`^"([^"]*)" starts "([^"]*)" level (\d+) on the (\w+) track at "([^"]*)"$`, c.startsLevel)
	sc.Step(`^"([^"]*)" starts "([^"]*)" on the (\w+) track at "([^"]*)" with request token "([^"]*)"$`, c.startsWithToken)
	sc.Step(`^"([^"]*)" cancels the "([^"]*)" entry$`, c.cancels)
	sc.Step(`^"([^"]*)" cancels the "([^"]*)" entry of "([^"]*)"$`, c.cancelsEntryOf)
	sc.Step(`^the sweeper runs$`, c.theSweeperRuns)

	// Then steps
	sc.Step(`^the entry is charged (\d+) credits and completes in (\d+) seconds$`, c.theEntryIsCharged)
	sc.Step(`^the entry waits for the production line$`, c.theEntryWaits)
	sc.Step(`^the "([^"]*)" entry is (pending|completed|cancelled)$`, c.theEntryIs)
	sc.Step(`^the cancellation refunds (\d+) credits$`, c.theCancellationRefunds)
	sc.Step(`^the sweeper settled (\d+) entr(?:y|ies)$`, c.theSweeperSettled)
	sc.Step(`^the (\w+) queue of "([^"]*)" has (\d+) entr(?:y|ies)$`, c.theQueueHas)
	sc.Step(`^the rejection reasons include "([^"]*)"$`, c.theReasonsInclude)
	sc.Step(`^"([^"]*)" has technology "([^"]*)" at level (\d+)$`, c.hasTechnology)
	sc.Step(`^"([^"]*)" has structure "([^"]*)" at level (\d+) at "([^"]*)"$`, c.hasStructure)
	sc.Step(`^"([^"]*)" holds (\d+) "([^"]*)" at "([^"]*)"$`, c.holds)
}

func (c *ProductionContext) starts(actor, item, track, location string) error {
	return c.start(actor, item, track, location, 0, "")
}

func (c *ProductionContext) startsLevel(actor, item string, level int, track, location string) error {
	return c.start(actor, item, track, location, level, "")
}

func (c *ProductionContext) startsWithToken(actor, item, track, location, token string) error {
	return c.start(actor, item, track, location, 0, token)
}

func (c *ProductionContext) start(actor, item, track, location string, level int, token string) error {
	resp, err := c.world.app.Mediator.Send(context.Background(), &productionCommands.StartProductionCommand{
		Actor:        actor,
		Track:        shared.Track(track),
		Location:     location,
		ItemKey:      item,
		TargetLevel:  level,
		RequestToken: token,
	})
	c.world.lastErr = err
	if err != nil {
		c.lastEntry = nil
		return nil
	}

	c.lastEntry = resp.(*productionCommands.StartProductionResponse).Entry
	c.entries[item] = c.lastEntry
	return nil
}

func (c *ProductionContext) cancels(actor, item string) error {
	entry, ok := c.entries[item]
	if !ok {
		return fmt.Errorf("no %s entry was started in this scenario", item)
	}
	return c.cancel(actor, entry)
}

func (c *ProductionContext) cancelsEntryOf(actor, item, owner string) error {
	entry, ok := c.entries[item]
	if !ok {
		return fmt.Errorf("no %s entry of %s was started in this scenario", item, owner)
	}
	return c.cancel(actor, entry)
}

func (c *ProductionContext) cancel(actor string, entry *production.EntryView) error {
	resp, err := c.world.app.Mediator.Send(context.Background(), &productionCommands.CancelProductionCommand{
		Actor:   actor,
		Track:   shared.Track(entry.Track),
		EntryID: entry.ID,
	})
	c.world.lastErr = err
	if err != nil {
		c.lastCancel = nil
		return nil
	}
	c.lastCancel = resp.(*production.CancelResult)
	return nil
}

func (c *ProductionContext) theSweeperRuns() error {
	resp, err := c.world.app.Mediator.Send(context.Background(), &productionCommands.SettleDueCommand{})
	if err != nil {
		return err
	}
	c.settled = resp.(*productionCommands.SettleDueResponse).Settled
	return nil
}

func (c *ProductionContext) theEntryIsCharged(charged, seconds int) error {
	if c.lastEntry == nil {
		return fmt.Errorf("no entry was started: %v", c.world.lastErr)
	}
	if c.lastEntry.ChargedAmount != int64(charged) {
		return fmt.Errorf("expected charge %d, got %d", charged, c.lastEntry.ChargedAmount)
	}
	if c.lastEntry.ETASeconds == nil {
		return fmt.Errorf("expected an ETA of %d seconds, entry is waiting", seconds)
	}
	if *c.lastEntry.ETASeconds != int64(seconds) {
		return fmt.Errorf("expected ETA %d seconds, got %d", seconds, *c.lastEntry.ETASeconds)
	}
	return nil
}

func (c *ProductionContext) theEntryWaits() error {
	if c.lastEntry == nil {
		return fmt.Errorf("no entry was started: %v", c.world.lastErr)
	}
	if !c.lastEntry.Deferred || c.lastEntry.CompletesAt != nil {
		return fmt.Errorf("expected a waiting entry, got deferred=%t completesAt=%v", c.lastEntry.Deferred, c.lastEntry.CompletesAt)
	}
	return nil
}

func (c *ProductionContext) theEntryIs(item, status string) error {
	view, ok := c.entries[item]
	if !ok {
		return fmt.Errorf("no %s entry was started in this scenario", item)
	}
	entry, err := c.world.app.UoW.Reader().Entries.FindByID(context.Background(), view.ID)
	if err != nil {
		return err
	}
	if entry.Status().String() != status {
		return fmt.Errorf("expected %s entry to be %s, got %s", item, status, entry.Status())
	}
	return nil
}

func (c *ProductionContext) theCancellationRefunds(amount int) error {
	if c.lastCancel == nil {
		return fmt.Errorf("nothing was cancelled: %v", c.world.lastErr)
	}
	if c.lastCancel.RefundedAmount != int64(amount) {
		return fmt.Errorf("expected refund %d, got %d", amount, c.lastCancel.RefundedAmount)
	}
	return nil
}

func (c *ProductionContext) theSweeperSettled(count int) error {
	if c.settled != count {
		return fmt.Errorf("expected %d settled entries, got %d", count, c.settled)
	}
	return nil
}

func (c *ProductionContext) theQueueHas(track, actor string, count int) error {
	resp, err := c.world.app.Mediator.Send(context.Background(), &productionQueries.ListQueueQuery{
		Actor: actor,
		Track: shared.Track(track),
	})
	if err != nil {
		return err
	}
	queue := resp.(*productionQueries.ListQueueResponse).Queue
	if len(queue) != count {
		return fmt.Errorf("expected %d %s entries for %s, got %d", count, track, actor, len(queue))
	}
	return nil
}

func (c *ProductionContext) theReasonsInclude(reason string) error {
	for _, r := range shared.ReasonsOf(c.world.lastErr) {
		if strings.Contains(r, reason) {
			return nil
		}
	}
	return fmt.Errorf("no rejection reason contains %q (got %v)", reason, shared.ReasonsOf(c.world.lastErr))
}

func (c *ProductionContext) hasTechnology(actor, tech string, level int) error {
	resp, err := c.world.app.Mediator.Send(context.Background(), &empireQueries.GetEmpireQuery{Actor: actor})
	if err != nil {
		return err
	}
	got := resp.(*empireQueries.GetEmpireResponse).Empire.TechLevels[tech]
	if got != level {
		return fmt.Errorf("expected %s at level %d, got %d", tech, level, got)
	}
	return nil
}

func (c *ProductionContext) hasStructure(actor, item string, level int, location string) error {
	id, err := c.world.empireID(actor)
	if err != nil {
		return err
	}
	coord, err := shared.ParseCoordinate(location)
	if err != nil {
		return err
	}
	assets, err := c.world.app.UoW.Reader().Assets.FindByLocation(context.Background(), id, coord)
	if err != nil {
		return err
	}
	for _, asset := range assets {
		if asset.ItemKey() == item {
			if !asset.IsActive() || asset.Level() != level {
				return fmt.Errorf("expected active %s at level %d, got level %d active=%t", item, level, asset.Level(), asset.IsActive())
			}
			return nil
		}
	}
	return fmt.Errorf("%s has no %s at %s", actor, item, location)
}

func (c *ProductionContext) holds(actor string, count int, item, location string) error {
	id, err := c.world.empireID(actor)
	if err != nil {
		return err
	}
	coord, err := shared.ParseCoordinate(location)
	if err != nil {
		return err
	}
	holdings, err := c.world.app.UoW.Reader().Holdings.FindByLocation(context.Background(), id, coord)
	if err != nil {
		return err
	}
	for _, h := range holdings {
		if h.ItemKey == item {
			if h.Count != int64(count) {
				return fmt.Errorf("expected %d %s, got %d", count, item, h.Count)
			}
			return nil
		}
	}
	if count == 0 {
		return nil
	}
	return fmt.Errorf("%s holds no %s at %s", actor, item, location)
}
