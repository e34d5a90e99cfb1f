package setup

import (
	"reflect"

	"github.com/andrescamacho/imperium/internal/application/common"
	empireApp "github.com/andrescamacho/imperium/internal/application/empire"
	empireCommands "github.com/andrescamacho/imperium/internal/application/empire/commands"
	empireQueries "github.com/andrescamacho/imperium/internal/application/empire/queries"
	ledgerCommands "github.com/andrescamacho/imperium/internal/application/ledger/commands"
	ledgerQueries "github.com/andrescamacho/imperium/internal/application/ledger/queries"
	ledgerServices "github.com/andrescamacho/imperium/internal/application/ledger/services"
	"github.com/andrescamacho/imperium/internal/application/mediator"
	"github.com/andrescamacho/imperium/internal/application/production"
	productionCommands "github.com/andrescamacho/imperium/internal/application/production/commands"
	productionQueries "github.com/andrescamacho/imperium/internal/application/production/queries"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// HandlerRegistry holds all application dependencies for handler creation
type HandlerRegistry struct {
	uow      common.UnitOfWork
	resolver *empireApp.Resolver
	manager  *production.Manager
	ledger   *ledgerServices.LedgerService
	income   ledgerCommands.IncomeRates
	clock    shared.Clock
}

// NewHandlerRegistry creates a new handler registry with required dependencies
func NewHandlerRegistry(
	uow common.UnitOfWork,
	resolver *empireApp.Resolver,
	manager *production.Manager,
	income ledgerCommands.IncomeRates,
	clock shared.Clock,
) *HandlerRegistry {
	// Default to real clock if not provided
	if clock == nil {
		clock = shared.NewRealClock()
	}

	return &HandlerRegistry{
		uow:      uow,
		resolver: resolver,
		manager:  manager,
		ledger:   ledgerServices.NewLedgerService(uow, clock),
		income:   income,
		clock:    clock,
	}
}

// RegisterEmpireHandlers registers RegisterEmpireCommand and GetEmpireQuery
func (r *HandlerRegistry) RegisterEmpireHandlers(m mediator.Mediator) error {
	if err := m.Register(
		reflect.TypeOf(&empireCommands.RegisterEmpireCommand{}),
		empireCommands.NewRegisterEmpireHandler(r.uow, r.clock),
	); err != nil {
		return err
	}

	return m.Register(
		reflect.TypeOf(&empireQueries.GetEmpireQuery{}),
		empireQueries.NewGetEmpireHandler(r.resolver),
	)
}

// RegisterLedgerHandlers registers all ledger command and query handlers with the mediator
//
// This method registers:
//   - AccruePayoutsCommand → AccruePayoutsHandler (passive income ticker)
//   - GetCreditHistoryQuery → GetCreditHistoryHandler (balance and recent transactions)
//   - VerifyLedgerQuery → VerifyLedgerHandler (replay audit)
func (r *HandlerRegistry) RegisterLedgerHandlers(m mediator.Mediator) error {
	if err := m.Register(
		reflect.TypeOf(&ledgerCommands.AccruePayoutsCommand{}),
		ledgerCommands.NewAccruePayoutsHandler(r.uow, r.income, r.clock),
	); err != nil {
		return err
	}

	if err := m.Register(
		reflect.TypeOf(&ledgerQueries.GetCreditHistoryQuery{}),
		ledgerQueries.NewGetCreditHistoryHandler(r.resolver, r.ledger),
	); err != nil {
		return err
	}

	return m.Register(
		reflect.TypeOf(&ledgerQueries.VerifyLedgerQuery{}),
		ledgerQueries.NewVerifyLedgerHandler(r.ledger, r.uow),
	)
}

// RegisterProductionHandlers registers the queue lifecycle handlers
//
// This method registers:
//   - StartProductionCommand → StartProductionHandler
//   - CancelProductionCommand → CancelProductionHandler
//   - SettleDueCommand → SettleDueHandler
//   - ListQueueQuery → ListQueueHandler
func (r *HandlerRegistry) RegisterProductionHandlers(m mediator.Mediator) error {
	if err := m.Register(
		reflect.TypeOf(&productionCommands.StartProductionCommand{}),
		productionCommands.NewStartProductionHandler(r.manager),
	); err != nil {
		return err
	}

	if err := m.Register(
		reflect.TypeOf(&productionCommands.CancelProductionCommand{}),
		productionCommands.NewCancelProductionHandler(r.manager),
	); err != nil {
		return err
	}

	if err := m.Register(
		reflect.TypeOf(&productionCommands.SettleDueCommand{}),
		productionCommands.NewSettleDueHandler(r.manager),
	); err != nil {
		return err
	}

	return m.Register(
		reflect.TypeOf(&productionQueries.ListQueueQuery{}),
		productionQueries.NewListQueueHandler(r.manager),
	)
}

// CreateConfiguredMediator creates a new mediator with every handler registered
// and the given middlewares installed in order
func (r *HandlerRegistry) CreateConfiguredMediator(middlewares ...mediator.Middleware) (mediator.Mediator, error) {
	m := mediator.NewMediator()

	for _, mw := range middlewares {
		if mw != nil {
			m.Use(mw)
		}
	}

	if err := r.RegisterEmpireHandlers(m); err != nil {
		return nil, err
	}
	if err := r.RegisterLedgerHandlers(m); err != nil {
		return nil, err
	}
	if err := r.RegisterProductionHandlers(m); err != nil {
		return nil, err
	}

	return m, nil
}
