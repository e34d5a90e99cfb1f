package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/andrescamacho/imperium/internal/adapters/api"
	"github.com/andrescamacho/imperium/internal/adapters/lease"
	ledgerCommands "github.com/andrescamacho/imperium/internal/application/ledger/commands"
	"github.com/andrescamacho/imperium/internal/application/mediator"
	"github.com/andrescamacho/imperium/internal/application/production"
	"github.com/andrescamacho/imperium/internal/infrastructure/config"
	"github.com/andrescamacho/imperium/internal/infrastructure/database"
	"github.com/andrescamacho/imperium/internal/infrastructure/pidfile"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the queue sweeper and income accrual",
		Long: `Run the server process.

Three loops run until SIGINT or SIGTERM:
  - the HTTP API on server.host:server.port
  - the sweeper settling due queue entries every scheduler.sweep_interval
  - passive income accrual every economy.accrual_interval

When redis.enabled is set the sweeper only runs while this process holds
the shared lease, so several servers can share one database.

Examples:
  imperium serve
  imperium serve --migrate
  IMP_SERVER_PORT=9090 imperium serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply the schema before serving")

	return cmd
}

func runServe(migrate bool) error {
	app, err := bootstrap(bootOptions{metrics: true})
	if err != nil {
		return err
	}
	defer app.Close()
	logger := app.logger

	pf := pidfile.New(app.cfg.Server.PIDFile)
	if err := pf.Acquire(); err != nil {
		return fmt.Errorf("failed to acquire PID file lock: %w", err)
	}
	defer func() {
		if err := pf.Release(); err != nil {
			logger.Warn("failed to release PID file", zap.Error(err))
		}
	}()

	if migrate {
		if err := database.AutoMigrate(app.db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info("database schema applied")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweepLease, closeLease, err := newSweepLease(ctx, app.cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer closeLease()

	server := api.NewServer(app.mediator, app.cfg.Server, app.cfg.Auth, app.cfg.Metrics.Path, logger)
	sweeper := production.NewSweeper(app.manager, sweepLease,
		app.cfg.Scheduler.SweepInterval, app.cfg.Scheduler.SweepBatch, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx) })
	g.Go(func() error { return sweeper.Run(gctx) })
	g.Go(func() error {
		return runAccrual(gctx, app.mediator, app.cfg.Economy.AccrualInterval, logger)
	})

	logger.Info("imperium server started",
		zap.Int("port", app.cfg.Server.Port),
		zap.String("auth_mode", app.cfg.Auth.Mode),
		zap.Bool("shared_lease", app.cfg.Redis.Enabled))

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("imperium server stopped")
	return nil
}

// newSweepLease returns the Redis lease when enabled and a process-local one otherwise
func newSweepLease(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (production.Lease, func(), error) {
	if !cfg.Enabled {
		return lease.NewLocalLease(), func() {}, nil
	}

	client, err := lease.Connect(ctx, cfg.Addr, cfg.Password, cfg.DB, cfg.Timeout)
	if err != nil {
		return nil, nil, err
	}
	redisLease, err := lease.NewRedisLease(client, cfg.LeaseKey)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	logger.Info("sweep lease on redis", zap.String("addr", cfg.Addr), zap.String("key", cfg.LeaseKey))

	return redisLease, func() {
		if err := client.Close(); err != nil {
			logger.Warn("failed to close redis client", zap.Error(err))
		}
	}, nil
}

// runAccrual credits passive income every interval until ctx is cancelled
func runAccrual(ctx context.Context, med mediator.Mediator, interval time.Duration, logger *zap.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			resp, err := med.Send(ctx, &ledgerCommands.AccruePayoutsCommand{})
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Error("income accrual failed", zap.Error(err))
				continue
			}
			if out, ok := resp.(*ledgerCommands.AccruePayoutsResponse); ok && (out.Credited > 0 || out.Failed > 0) {
				logger.Debug("income accrued",
					zap.Int("empires", out.Empires),
					zap.Int64("credited", out.Credited),
					zap.Int("failed", out.Failed))
			}
		}
	}
}
