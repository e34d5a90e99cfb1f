package cli

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	catalogLoader "github.com/andrescamacho/imperium/internal/adapters/catalog"
	"github.com/andrescamacho/imperium/internal/adapters/metrics"
	"github.com/andrescamacho/imperium/internal/adapters/persistence"
	empireApp "github.com/andrescamacho/imperium/internal/application/empire"
	ledgerCommands "github.com/andrescamacho/imperium/internal/application/ledger/commands"
	"github.com/andrescamacho/imperium/internal/application/mediator"
	"github.com/andrescamacho/imperium/internal/application/production"
	"github.com/andrescamacho/imperium/internal/application/setup"
	"github.com/andrescamacho/imperium/internal/domain/capacity"
	"github.com/andrescamacho/imperium/internal/domain/catalog"
	"github.com/andrescamacho/imperium/internal/domain/queue"
	"github.com/andrescamacho/imperium/internal/domain/shared"
	"github.com/andrescamacho/imperium/internal/infrastructure/config"
	"github.com/andrescamacho/imperium/internal/infrastructure/database"
	"github.com/andrescamacho/imperium/internal/infrastructure/logging"
)

// application holds the wired stack shared by every command
type application struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *gorm.DB
	catalog  *catalog.StaticCatalog
	manager  *production.Manager
	mediator mediator.Mediator
}

type bootOptions struct {
	// metrics registers collectors and the mediator middleware
	metrics bool
}

// bootstrap loads configuration and wires database, catalog, manager and
// mediator. The caller must Close the result.
func bootstrap(opts bootOptions) (*application, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	cat, err := catalogLoader.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	calculator, err := capacity.NewCalculator(cfg.Scheduler.RatePerLevel, cfg.Scheduler.FloorPerHour)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler rates: %w", err)
	}

	policies, err := queue.DefaultPolicySet()
	if err != nil {
		return nil, err
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var middlewares []mediator.Middleware
	if opts.metrics && cfg.Metrics.Enabled {
		mw, err := initMetrics()
		if err != nil {
			_ = database.Close(db)
			return nil, err
		}
		middlewares = append(middlewares, mw)
	}

	clock := shared.NewRealClock()
	uow := persistence.NewGormUnitOfWork(db)
	resolver := empireApp.NewResolver(uow.Reader().Empires)
	manager := production.NewManager(uow, resolver, cat, calculator, policies, clock, logger)

	income := ledgerCommands.IncomeRates{
		PerHour:        cfg.Economy.IncomePerHour,
		PerBasePerHour: cfg.Economy.IncomePerBase,
	}
	med, err := setup.NewHandlerRegistry(uow, resolver, manager, income, clock).CreateConfiguredMediator(middlewares...)
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to configure mediator: %w", err)
	}

	logger.Debug("application wired",
		zap.String("database", cfg.Database.Type),
		zap.String("catalog", cfg.Catalog.Path),
		zap.Bool("metrics", metrics.IsEnabled()))

	return &application{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		catalog:  cat,
		manager:  manager,
		mediator: med,
	}, nil
}

// initMetrics creates the registry, registers every collector and returns
// the mediator middleware timing each request
func initMetrics() (mediator.Middleware, error) {
	metrics.InitRegistry()

	commandCollector := metrics.NewCommandMetricsCollector()
	if err := commandCollector.Register(); err != nil {
		return nil, fmt.Errorf("failed to register command metrics: %w", err)
	}

	financial := metrics.NewFinancialMetricsCollector()
	if err := financial.Register(); err != nil {
		return nil, fmt.Errorf("failed to register ledger metrics: %w", err)
	}
	metrics.SetGlobalFinancialCollector(financial)

	productionCollector := metrics.NewProductionMetricsCollector()
	if err := productionCollector.Register(); err != nil {
		return nil, fmt.Errorf("failed to register production metrics: %w", err)
	}
	metrics.SetGlobalProductionCollector(productionCollector)

	return metrics.PrometheusMiddleware(commandCollector), nil
}

// Close releases the database and flushes the logger
func (a *application) Close() {
	if err := database.Close(a.db); err != nil {
		a.logger.Warn("failed to close database", zap.Error(err))
	}
	_ = a.logger.Sync()
}
