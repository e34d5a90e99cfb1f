package steps

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cucumber/godog"

	empireCommands "github.com/andrescamacho/imperium/internal/application/empire/commands"
	ledgerCommands "github.com/andrescamacho/imperium/internal/application/ledger/commands"
	"github.com/andrescamacho/imperium/internal/domain/shared"
	"github.com/andrescamacho/imperium/test/helpers"
)

// World is the state shared by the step contexts of one scenario
type World struct {
	app     *helpers.TestApp
	empires map[string]shared.EmpireID

	// lastErr holds the error of the most recent command, nil on success
	lastErr error
}

// NewWorld creates an empty world; the Before hook fills it per scenario
func NewWorld() *World {
	return &World{}
}

func (w *World) reset(income ledgerCommands.IncomeRates) error {
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}
	w.app = helpers.NewTestAppWithDB(helpers.SharedTestDB, helpers.WithIncome(income))
	w.empires = make(map[string]shared.EmpireID)
	w.lastErr = nil
	return nil
}

func (w *World) empireID(actor string) (shared.EmpireID, error) {
	id, ok := w.empires[actor]
	if !ok {
		return shared.EmpireID{}, fmt.Errorf("empire %q was not registered in this scenario", actor)
	}
	return id, nil
}

// EmpireContext holds the steps that register empires and move the clock
type EmpireContext struct {
	world *World
}

// InitializeEmpireScenario registers the empire and clock steps
func InitializeEmpireScenario(sc *godog.ScenarioContext, world *World) {
	c := &EmpireContext{world: world}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		return ctx, world.reset(ledgerCommands.IncomeRates{})
	})

	// Given steps
	sc.Step(`^passive income of (\d+) credits per hour plus (\d+) per base$`, c.passiveIncome)
	sc.Step(`^an empire "([^"]*)" with (\d+) credits owning "([^"]*)"$`, c.anEmpireOwning)
	sc.Step(`^an empire "([^"]*)" with (\d+) credits owning "([^"]*)" with structures:$`, c.anEmpireOwningWithStructures)

	// When steps
	sc.Step(`^(\d+) hours? pass(?:es)?$`, c.hoursPass)
	sc.Step(`^(\d+) minutes? pass(?:es)?$`, c.minutesPass)

	// Then steps
	sc.Step(`^"([^"]*)" has (\d+) credits$`, c.hasCredits)
	sc.Step(`^the command fails with "([^"]*)"$`, c.theCommandFailsWith)
	sc.Step(`^the command succeeds$`, c.theCommandSucceeds)
}

func (c *EmpireContext) passiveIncome(perHour, perBase int) error {
	return c.world.reset(ledgerCommands.IncomeRates{
		PerHour:        int64(perHour),
		PerBasePerHour: int64(perBase),
	})
}

func (c *EmpireContext) anEmpireOwning(actor string, credits int, location string) error {
	return c.register(actor, int64(credits), location, nil)
}

func (c *EmpireContext) anEmpireOwningWithStructures(actor string, credits int, location string, table *godog.Table) error {
	var assets []empireCommands.StartingAsset
	for i, row := range table.Rows {
		if i == 0 {
			continue // header
		}
		if len(row.Cells) != 2 {
			return fmt.Errorf("structures table needs | item | level | columns")
		}
		level, err := strconv.Atoi(row.Cells[1].Value)
		if err != nil {
			return fmt.Errorf("invalid level %q: %w", row.Cells[1].Value, err)
		}
		assets = append(assets, empireCommands.StartingAsset{
			Location: location,
			ItemKey:  row.Cells[0].Value,
			Level:    level,
		})
	}
	return c.register(actor, int64(credits), location, assets)
}

func (c *EmpireContext) register(actor string, credits int64, location string, assets []empireCommands.StartingAsset) error {
	resp, err := c.world.app.Mediator.Send(context.Background(), &empireCommands.RegisterEmpireCommand{
		Actor:           actor,
		Name:            actor + " empire",
		Locations:       []string{location},
		StartingCredits: credits,
		StartingAssets:  assets,
	})
	if err != nil {
		return fmt.Errorf("failed to register %s: %w", actor, err)
	}

	id, err := shared.NewEmpireID(resp.(*empireCommands.RegisterEmpireResponse).EmpireID)
	if err != nil {
		return err
	}
	c.world.empires[actor] = id
	return nil
}

func (c *EmpireContext) hoursPass(hours int) error {
	c.world.app.Clock.Advance(time.Duration(hours) * time.Hour)
	return nil
}

func (c *EmpireContext) minutesPass(minutes int) error {
	c.world.app.Clock.Advance(time.Duration(minutes) * time.Minute)
	return nil
}

func (c *EmpireContext) hasCredits(actor string, expected int) error {
	id, err := c.world.empireID(actor)
	if err != nil {
		return err
	}
	e, err := c.world.app.UoW.Reader().Empires.FindByID(context.Background(), id)
	if err != nil {
		return err
	}
	if e.Credits() != int64(expected) {
		return fmt.Errorf("expected %s to have %d credits, got %d", actor, expected, e.Credits())
	}
	return nil
}

func (c *EmpireContext) theCommandFailsWith(code string) error {
	if c.world.lastErr == nil {
		return fmt.Errorf("expected the command to fail with %s, but it succeeded", code)
	}
	if got := string(shared.CodeOf(c.world.lastErr)); got != code {
		return fmt.Errorf("expected error code %s, got %q (%v)", code, got, c.world.lastErr)
	}
	return nil
}

func (c *EmpireContext) theCommandSucceeds() error {
	if c.world.lastErr != nil {
		return fmt.Errorf("expected success, got %v", c.world.lastErr)
	}
	return nil
}
