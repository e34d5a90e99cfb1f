package helpers

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/andrescamacho/imperium/internal/adapters/persistence"
	empireApp "github.com/andrescamacho/imperium/internal/application/empire"
	empireCommands "github.com/andrescamacho/imperium/internal/application/empire/commands"
	ledgerCommands "github.com/andrescamacho/imperium/internal/application/ledger/commands"
	"github.com/andrescamacho/imperium/internal/application/mediator"
	"github.com/andrescamacho/imperium/internal/application/production"
	"github.com/andrescamacho/imperium/internal/application/setup"
	"github.com/andrescamacho/imperium/internal/domain/capacity"
	"github.com/andrescamacho/imperium/internal/domain/catalog"
	"github.com/andrescamacho/imperium/internal/domain/queue"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// TestEpoch is the start time of every test clock
var TestEpoch = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

// TestApp wires the real application stack over a test database
type TestApp struct {
	DB       *gorm.DB
	UoW      *persistence.GormUnitOfWork
	Clock    *shared.MockClock
	Catalog  *catalog.StaticCatalog
	Resolver *empireApp.Resolver
	Manager  *production.Manager
	Mediator mediator.Mediator
}

// AppOption adjusts the stack before it is wired
type AppOption func(*appOptions)

type appOptions struct {
	income   ledgerCommands.IncomeRates
	policies []queue.PolicyConfig
}

// WithIncome sets the passive income rates
func WithIncome(rates ledgerCommands.IncomeRates) AppOption {
	return func(o *appOptions) { o.income = rates }
}

// WithPolicies replaces the default track policies
func WithPolicies(configs ...queue.PolicyConfig) AppOption {
	return func(o *appOptions) { o.policies = configs }
}

// NewTestApp creates the stack over a fresh in-memory database
func NewTestApp(t *testing.T, opts ...AppOption) *TestApp {
	return NewTestAppWithDB(NewTestDB(t), opts...)
}

// NewTestAppWithDB creates the stack over an existing database
func NewTestAppWithDB(db *gorm.DB, opts ...AppOption) *TestApp {
	options := &appOptions{policies: queue.DefaultPolicyConfigs()}
	for _, opt := range opts {
		opt(options)
	}

	policies := make([]queue.TrackPolicy, 0, len(options.policies))
	for _, cfg := range options.policies {
		p, err := queue.NewPolicy(cfg)
		if err != nil {
			panic(err)
		}
		policies = append(policies, p)
	}
	policySet, err := queue.NewPolicySet(policies...)
	if err != nil {
		panic(err)
	}

	calculator, err := capacity.NewCalculator(TestRatePerLevel, TestFloorPerHour)
	if err != nil {
		panic(err)
	}

	clock := shared.NewMockClock(TestEpoch)
	cat := NewTestCatalog()
	uow := persistence.NewGormUnitOfWork(db)
	resolver := empireApp.NewResolver(uow.Reader().Empires)
	manager := production.NewManager(uow, resolver, cat, calculator, policySet, clock, zap.NewNop())

	med, err := setup.NewHandlerRegistry(uow, resolver, manager, options.income, clock).CreateConfiguredMediator()
	if err != nil {
		panic(err)
	}

	return &TestApp{
		DB:       db,
		UoW:      uow,
		Clock:    clock,
		Catalog:  cat,
		Resolver: resolver,
		Manager:  manager,
		Mediator: med,
	}
}

// SeedEmpire registers an empire owning locations with starting credits and
// active structures, and returns its id
func (a *TestApp) SeedEmpire(t *testing.T, actor string, credits int64, locations []string, assets ...empireCommands.StartingAsset) shared.EmpireID {
	t.Helper()

	resp, err := a.Mediator.Send(context.Background(), &empireCommands.RegisterEmpireCommand{
		Actor:           actor,
		Name:            actor + " empire",
		Locations:       locations,
		StartingCredits: credits,
		StartingAssets:  assets,
	})
	if err != nil {
		t.Fatalf("failed to seed empire %s: %v", actor, err)
	}

	id, err := shared.NewEmpireID(resp.(*empireCommands.RegisterEmpireResponse).EmpireID)
	if err != nil {
		t.Fatalf("seeded empire has invalid id: %v", err)
	}
	return id
}

// Credits reads the committed balance of an empire
func (a *TestApp) Credits(t *testing.T, id shared.EmpireID) int64 {
	t.Helper()

	e, err := a.UoW.Reader().Empires.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to load empire %s: %v", id, err)
	}
	return e.Credits()
}
