package production

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/andrescamacho/imperium/internal/adapters/metrics"
)

// DefaultSweepInterval is how often the background sweeper settles due entries.
// Queue listing settles on demand, so the sweeper only bounds staleness.
const DefaultSweepInterval = 5 * time.Second

// DefaultSweepBatch is the number of due entries loaded per sweep round
const DefaultSweepBatch = 100

// Lease grants one process the right to sweep. Several server processes
// can share a database; only the lease holder settles.
type Lease interface {
	// Acquire takes or renews the lease for ttl. false means another holder owns it.
	Acquire(ctx context.Context, ttl time.Duration) (bool, error)
	Release(ctx context.Context) error
}

// Sweeper periodically settles due entries of every empire
type Sweeper struct {
	manager  *Manager
	lease    Lease
	interval time.Duration
	batch    int
	logger   *zap.Logger
}

// NewSweeper creates a sweeper. A nil lease sweeps unconditionally.
func NewSweeper(manager *Manager, lease Lease, interval time.Duration, batch int, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if batch <= 0 {
		batch = DefaultSweepBatch
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		manager:  manager,
		lease:    lease,
		interval: interval,
		batch:    batch,
		logger:   logger.Named("sweeper"),
	}
}

// Run sweeps every interval until ctx is cancelled
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("sweeper started", zap.Duration("interval", s.interval), zap.Int("batch", s.batch))
	defer func() {
		if s.lease != nil {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := s.lease.Release(releaseCtx); err != nil {
				s.logger.Warn("failed to release sweep lease", zap.Error(err))
			}
		}
		s.logger.Info("sweeper stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				// A failed sweep is retried on the next tick
				s.logger.Error("sweep failed", zap.Error(err))
			}
		}
	}
}

// SweepOnce settles everything currently due, if this process holds the lease
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	if s.lease != nil {
		held, err := s.lease.Acquire(ctx, 3*s.interval)
		if err != nil {
			return 0, err
		}
		if !held {
			return 0, nil
		}
	}

	start := time.Now()
	settled, err := s.manager.SettleDue(ctx, s.batch)
	metrics.RecordSweep(settled, time.Since(start).Seconds())
	if settled > 0 {
		s.logger.Info("settled due entries", zap.Int("count", settled), zap.Duration("took", time.Since(start)))
	}
	return settled, err
}
