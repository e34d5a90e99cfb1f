package bdd

import (
	"os"
	"testing"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/imperium/test/bdd/steps"
	"github.com/andrescamacho/imperium/test/helpers"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/production", "features/ledger"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func InitializeScenario(sc *godog.ScenarioContext) {
	// Empire and clock steps are shared by every feature, so they go first
	world := steps.NewWorld()
	steps.InitializeEmpireScenario(sc, world)
	steps.InitializeProductionScenario(sc, world)
	steps.InitializeLedgerScenario(sc, world)
}

func TestMain(m *testing.M) {
	// One database for all scenarios; each scenario truncates it
	if err := helpers.InitializeSharedTestDB(); err != nil {
		panic("Failed to initialize shared test database: " + err.Error())
	}
	code := m.Run()
	_ = helpers.CloseSharedTestDB()
	os.Exit(code)
}
