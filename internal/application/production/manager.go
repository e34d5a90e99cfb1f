package production

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/andrescamacho/imperium/internal/adapters/metrics"
	"github.com/andrescamacho/imperium/internal/application/common"
	empireApp "github.com/andrescamacho/imperium/internal/application/empire"
	"github.com/andrescamacho/imperium/internal/application/ledger/services"
	"github.com/andrescamacho/imperium/internal/domain/capacity"
	"github.com/andrescamacho/imperium/internal/domain/catalog"
	"github.com/andrescamacho/imperium/internal/domain/empire"
	"github.com/andrescamacho/imperium/internal/domain/ledger"
	"github.com/andrescamacho/imperium/internal/domain/queue"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

const relatedEntityType = "queue_entry"

// maxSettleRounds bounds how many times one settlement pass re-reads due
// entries; activating a deferred entry late can make it due immediately
const maxSettleRounds = 16

// StartRequest asks to put an item into production
type StartRequest struct {
	Actor        string
	Track        shared.Track
	Location     string
	ItemKey      string
	TargetLevel  int    // 0 picks the natural next level
	RequestToken string // optional client retry token (structures)
}

// Manager is the queue lifecycle manager: Start, Cancel and Settle for all
// four tracks. Track differences live in queue.TrackPolicy; everything that
// touches credits runs inside one UnitOfWork.WithinEmpire call.
type Manager struct {
	uow        common.UnitOfWork
	resolver   *empireApp.Resolver
	catalog    catalog.Catalog
	calculator *capacity.Calculator
	policies   *queue.PolicySet
	clock      shared.Clock
	logger     *zap.Logger
}

// NewManager creates a queue lifecycle manager
func NewManager(
	uow common.UnitOfWork,
	resolver *empireApp.Resolver,
	cat catalog.Catalog,
	calculator *capacity.Calculator,
	policies *queue.PolicySet,
	clock shared.Clock,
	logger *zap.Logger,
) *Manager {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		uow:        uow,
		resolver:   resolver,
		catalog:    cat,
		calculator: calculator,
		policies:   policies,
		clock:      clock,
		logger:     logger.Named("production"),
	}
}

// Start validates, charges and enqueues one item. Reservation, eligibility,
// debit and the new entry commit together or not at all.
func (m *Manager) Start(ctx context.Context, req StartRequest) (*EntryView, error) {
	view, err := m.start(ctx, req)
	if err != nil {
		if code := shared.CodeOf(err); code != "" {
			metrics.RecordStartRejected(req.Track.String(), string(code))
		}
		return nil, err
	}
	return view, nil
}

func (m *Manager) start(ctx context.Context, req StartRequest) (*EntryView, error) {
	policy, err := m.policies.For(req.Track)
	if err != nil {
		return nil, err
	}

	e, err := m.resolver.ResolveEmpire(ctx, req.Actor)
	if err != nil {
		return nil, err
	}

	coord, err := empireApp.ValidateLocation(req.Location)
	if err != nil {
		return nil, err
	}

	item, ok := m.catalog.Item(req.ItemKey)
	if !ok || item.Track != req.Track {
		return nil, shared.NewValidationError("itemKey", fmt.Sprintf("unknown %s item %q", req.Track, req.ItemKey))
	}
	if req.TargetLevel < 0 {
		return nil, shared.NewValidationError("targetLevel", "cannot be negative")
	}

	token := req.RequestToken
	if token == "" {
		token = uuid.NewString()
	}

	var (
		entry  *queue.Entry
		posted []*ledger.Transaction
		now    time.Time
	)
	err = m.uow.WithinEmpire(ctx, e.ID(), func(ctx context.Context, repos common.Repositories, locked *empire.Empire) error {
		if err := empireApp.AssertOwnership(locked, coord); err != nil {
			return err
		}
		now = m.clock.Now()

		assets, err := repos.Assets.FindByLocation(ctx, locked.ID(), coord)
		if err != nil {
			return fmt.Errorf("failed to load assets at %s: %w", coord, err)
		}

		target, err := resolveTargetLevel(locked, item, req.TargetLevel)
		if err != nil {
			return err
		}

		sub := queue.Submission{
			EmpireID:       locked.ID(),
			Location:       coord,
			ItemKey:        item.Key,
			TargetLevel:    target,
			RequestedLevel: req.TargetLevel,
			RequestToken:   token,
		}
		reservationKey, err := policy.ReservationKey(sub)
		if err != nil {
			return err
		}

		entry, err = queue.NewEntry(queue.NewEntryParams{
			EmpireID:       locked.ID(),
			Track:          req.Track,
			Location:       coord,
			ItemKey:        item.Key,
			TargetLevel:    target,
			IdentityKey:    policy.IdentityKey(sub),
			ReservationKey: reservationKey,
			StartedAt:      now,
		})
		if err != nil {
			return err
		}

		if err := repos.Reservations.Reserve(ctx, reservationKey, entry.ID()); err != nil {
			if errors.Is(err, queue.ErrReservationConflict) {
				return queue.NewAlreadyInProgressError(req.Track, item.Key, reservationKey)
			}
			return fmt.Errorf("failed to reserve %s: %w", reservationKey, err)
		}

		check, err := m.checkEligibility(locked, item, target, coord, assets)
		if err != nil {
			return err
		}
		rate, err := m.rateFor(locked, req.Track, assets, policy.ZeroCapacity())
		if errors.Is(err, capacity.ErrNoCapacity) {
			check.reasons = append(check.reasons, fmt.Sprintf("no %s capacity at %s", req.Track, coord))
		} else if err != nil {
			return err
		}
		if len(check.reasons) > 0 {
			return queue.NewPrerequisitesNotMetError(check.reasons)
		}

		if policy.ChargeAtStart() {
			tx, err := m.charge(ctx, repos, locked, entry, policy, now)
			if err != nil {
				return err
			}
			if tx != nil {
				posted = append(posted, tx)
			}
		}

		deferred := false
		if policy.SequentialLine() {
			active, err := repos.Entries.FindActiveOnLine(ctx, locked.ID(), req.Track, coord)
			if err != nil {
				return fmt.Errorf("failed to inspect production line: %w", err)
			}
			deferred = active != nil
		}
		if !deferred {
			tx, err := m.activateAt(ctx, repos, locked, entry, policy, rate, now)
			if err != nil {
				return err
			}
			if tx != nil {
				posted = append(posted, tx)
			}
		}

		if req.Track == shared.TrackStructures {
			if err := m.reserveAsset(ctx, repos, locked, entry, check.upgrade); err != nil {
				return err
			}
		}

		if err := repos.Entries.Create(ctx, entry); err != nil {
			return fmt.Errorf("failed to persist queue entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	services.RecordCommitted(posted...)
	view := ToEntryView(entry, now)
	var etaSeconds float64
	if view.ETASeconds != nil {
		etaSeconds = float64(*view.ETASeconds)
	}
	metrics.RecordStart(req.Track.String(), etaSeconds, view.Deferred)
	m.logger.Info("queue entry started",
		zap.String("entry_id", entry.ID()),
		zap.Stringer("empire_id", entry.EmpireID()),
		zap.Stringer("track", entry.Track()),
		zap.String("item", entry.ItemKey()),
		zap.Int("target_level", entry.TargetLevel()),
		zap.Int64("charged", entry.ChargedAmount()),
		zap.Bool("deferred", view.Deferred),
	)
	return view, nil
}

// Cancel withdraws a pending entry, refunds exactly what was charged and
// releases its reservation
func (m *Manager) Cancel(ctx context.Context, actor string, track shared.Track, entryID string) (*CancelResult, error) {
	policy, err := m.policies.For(track)
	if err != nil {
		return nil, err
	}

	e, err := m.resolver.ResolveEmpire(ctx, actor)
	if err != nil {
		return nil, err
	}

	result := &CancelResult{CancelledID: entryID}
	var posted []*ledger.Transaction
	err = m.uow.WithinEmpire(ctx, e.ID(), func(ctx context.Context, repos common.Repositories, locked *empire.Empire) error {
		entry, err := repos.Entries.FindByID(ctx, entryID)
		if err != nil {
			return err
		}
		// Entries of other empires or tracks are indistinguishable from missing ones
		if !entry.EmpireID().Equals(locked.ID()) || entry.Track() != track {
			return shared.NewNotFoundError("queue entry", entryID)
		}

		now := m.clock.Now()
		if !entry.IsPending() {
			return queue.NewInvalidStateError(entry.ID(), entry.Status(), "cannot cancel")
		}
		if entry.IsDue(now) {
			return queue.NewInvalidStateError(entry.ID(), entry.Status(), "already finished, awaiting settlement")
		}
		if entry.IsActive() && !policy.CancellableAfterStart() {
			return queue.NewNotCancellableYetError(entry.ID(), track)
		}

		wasActive := entry.IsActive()
		if err := entry.Cancel(now); err != nil {
			return err
		}

		if entry.IsCharged() && entry.ChargedAmount() > 0 {
			tx, err := services.Post(ctx, repos, locked, entry.ChargedAmount(), policy.RefundType(),
				fmt.Sprintf("refund %s %s L%d", track, entry.ItemKey(), entry.TargetLevel()),
				ledger.Reference{EntityType: relatedEntityType, EntityID: entry.ID()}, now)
			if err != nil {
				return err
			}
			posted = append(posted, tx)
			result.RefundedAmount = entry.ChargedAmount()
		}

		if track == shared.TrackStructures {
			if err := m.revertAsset(ctx, repos, entry); err != nil {
				return err
			}
		}

		if err := repos.Reservations.Release(ctx, entry.ReservationKey()); err != nil {
			return fmt.Errorf("failed to release reservation: %w", err)
		}
		if err := repos.Entries.Save(ctx, entry); err != nil {
			return fmt.Errorf("failed to save queue entry: %w", err)
		}

		if policy.SequentialLine() && wasActive {
			txs, err := m.activateNext(ctx, repos, locked, track, entry.Location(), now)
			if err != nil {
				return err
			}
			posted = append(posted, txs...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	services.RecordCommitted(posted...)
	metrics.RecordCancel(track.String(), result.RefundedAmount)
	m.logger.Info("queue entry cancelled",
		zap.String("entry_id", entryID),
		zap.Stringer("empire_id", e.ID()),
		zap.Stringer("track", track),
		zap.Int64("refunded", result.RefundedAmount),
	)
	return result, nil
}

// ListQueue settles the empire's due entries, then returns the pending
// entries of a track ordered by soonest completion, deferred entries last.
// An empty location lists every location of the empire.
func (m *Manager) ListQueue(ctx context.Context, actor string, track shared.Track, location string) ([]*EntryView, error) {
	if _, err := m.policies.For(track); err != nil {
		return nil, err
	}

	e, err := m.resolver.ResolveEmpire(ctx, actor)
	if err != nil {
		return nil, err
	}

	var filter *shared.Coordinate
	if location != "" {
		coord, err := empireApp.ValidateLocation(location)
		if err != nil {
			return nil, err
		}
		if err := empireApp.AssertOwnership(e, coord); err != nil {
			return nil, err
		}
		filter = &coord
	}

	if _, err := m.SettleDueForEmpire(ctx, e.ID()); err != nil {
		return nil, err
	}

	entries, err := m.uow.Reader().Entries.ListPending(ctx, e.ID(), track, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}

	now := m.clock.Now()
	views := make([]*EntryView, len(entries))
	for i, entry := range entries {
		views[i] = ToEntryView(entry, now)
	}
	return views, nil
}

// SettleDueForEmpire completes every due entry of one empire and returns how many were settled
func (m *Manager) SettleDueForEmpire(ctx context.Context, empireID shared.EmpireID) (int, error) {
	total := 0
	for round := 0; round < maxSettleRounds; round++ {
		due, err := m.uow.Reader().Entries.FindDueByEmpire(ctx, empireID, m.clock.Now())
		if err != nil {
			return total, fmt.Errorf("failed to find due entries: %w", err)
		}
		settled, err := m.settleAll(ctx, due)
		total += settled
		if err != nil {
			return total, err
		}
		if settled == 0 {
			break
		}
	}
	return total, nil
}

// SettleDue completes due entries of all empires, at most limit per round.
// Used by the background sweeper.
func (m *Manager) SettleDue(ctx context.Context, limit int) (int, error) {
	total := 0
	for round := 0; round < maxSettleRounds; round++ {
		due, err := m.uow.Reader().Entries.FindDue(ctx, m.clock.Now(), limit)
		if err != nil {
			return total, fmt.Errorf("failed to find due entries: %w", err)
		}
		settled, err := m.settleAll(ctx, due)
		total += settled
		if err != nil {
			return total, err
		}
		if settled == 0 || len(due) < limit {
			break
		}
	}
	return total, nil
}

func (m *Manager) settleAll(ctx context.Context, due []*queue.Entry) (int, error) {
	settled := 0
	for _, entry := range due {
		if err := ctx.Err(); err != nil {
			return settled, err
		}
		ok, err := m.Settle(ctx, entry.EmpireID(), entry.ID())
		if err != nil {
			return settled, err
		}
		if ok {
			settled++
		}
	}
	return settled, nil
}

// Settle completes one entry if it is still pending and due. It returns
// false without error when another caller settled or cancelled it first.
func (m *Manager) Settle(ctx context.Context, empireID shared.EmpireID, entryID string) (bool, error) {
	var (
		settled *queue.Entry
		posted  []*ledger.Transaction
		now     time.Time
	)
	err := m.uow.WithinEmpire(ctx, empireID, func(ctx context.Context, repos common.Repositories, locked *empire.Empire) error {
		entry, err := repos.Entries.FindByID(ctx, entryID)
		if err != nil {
			return err
		}
		now = m.clock.Now()
		if !entry.IsDue(now) {
			return nil
		}

		policy, err := m.policies.For(entry.Track())
		if err != nil {
			return err
		}

		if err := entry.Complete(now); err != nil {
			return err
		}
		if err := m.applyEffect(ctx, repos, locked, entry); err != nil {
			return err
		}
		if err := repos.Reservations.Release(ctx, entry.ReservationKey()); err != nil {
			return fmt.Errorf("failed to release reservation: %w", err)
		}
		if err := repos.Entries.Save(ctx, entry); err != nil {
			return fmt.Errorf("failed to save queue entry: %w", err)
		}

		if policy.SequentialLine() {
			// The line frees up at the moment the previous item finished
			txs, err := m.activateNext(ctx, repos, locked, entry.Track(), entry.Location(), *entry.CompletesAt())
			if err != nil {
				return err
			}
			posted = append(posted, txs...)
		}
		settled = entry
		return nil
	})
	if err != nil {
		return false, err
	}
	if settled == nil {
		return false, nil
	}

	services.RecordCommitted(posted...)
	metrics.RecordSettle(settled.Track().String(), now.Sub(*settled.CompletesAt()).Seconds())
	m.logger.Debug("queue entry settled",
		zap.String("entry_id", settled.ID()),
		zap.Stringer("empire_id", settled.EmpireID()),
		zap.Stringer("track", settled.Track()),
		zap.String("item", settled.ItemKey()),
		zap.Int("level", settled.TargetLevel()),
	)
	return true, nil
}

// charge debits the entry's cost at its target level and records the exact amount
func (m *Manager) charge(ctx context.Context, repos common.Repositories, locked *empire.Empire, entry *queue.Entry, policy queue.TrackPolicy, at time.Time) (*ledger.Transaction, error) {
	cost, err := m.catalog.Cost(entry.ItemKey(), entry.TargetLevel())
	if err != nil {
		return nil, err
	}
	if cost == 0 {
		return nil, entry.MarkCharged(0)
	}

	tx, err := services.Post(ctx, repos, locked, -cost, policy.ChargeType(),
		fmt.Sprintf("%s %s L%d", entry.Track(), entry.ItemKey(), entry.TargetLevel()),
		ledger.Reference{EntityType: relatedEntityType, EntityID: entry.ID()}, at)
	if err != nil {
		return nil, err
	}
	if err := entry.MarkCharged(cost); err != nil {
		return nil, err
	}
	return tx, nil
}

// activateAt assigns the completion time from rate. Entries of tracks that
// charge at activation are charged here.
func (m *Manager) activateAt(ctx context.Context, repos common.Repositories, locked *empire.Empire, entry *queue.Entry, policy queue.TrackPolicy, rate capacity.Rate, at time.Time) (*ledger.Transaction, error) {
	var tx *ledger.Transaction
	if !entry.IsCharged() {
		var err error
		if tx, err = m.charge(ctx, repos, locked, entry, policy, at); err != nil {
			return nil, err
		}
	}

	work, err := m.catalog.Work(entry.ItemKey(), entry.TargetLevel())
	if err != nil {
		return nil, err
	}
	eta, err := capacity.ComputeEta(work, rate)
	if err != nil {
		return nil, fmt.Errorf("failed to compute eta for %s: %w", entry.ItemKey(), err)
	}
	if err := entry.Activate(at, eta); err != nil {
		return nil, err
	}
	return tx, nil
}

// activateNext hands a freed sequential line to the oldest deferred entry.
// A deferred entry that can no longer be paid for is cancelled and the
// line moves on.
func (m *Manager) activateNext(ctx context.Context, repos common.Repositories, locked *empire.Empire, track shared.Track, location shared.Coordinate, at time.Time) ([]*ledger.Transaction, error) {
	policy, err := m.policies.For(track)
	if err != nil {
		return nil, err
	}

	var posted []*ledger.Transaction
	for {
		next, err := repos.Entries.FindNextDeferred(ctx, locked.ID(), track, location)
		if err != nil {
			return nil, fmt.Errorf("failed to find deferred entry: %w", err)
		}
		if next == nil {
			return posted, nil
		}

		assets, err := repos.Assets.FindByLocation(ctx, locked.ID(), location)
		if err != nil {
			return nil, fmt.Errorf("failed to load assets at %s: %w", location, err)
		}
		rate, err := m.rateFor(locked, track, assets, policy.ZeroCapacity())
		if errors.Is(err, capacity.ErrNoCapacity) {
			rate, err = m.rateFor(locked, track, assets, capacity.ZeroCapacityFloor)
		}
		if err != nil {
			return nil, err
		}

		tx, err := m.activateAt(ctx, repos, locked, next, policy, rate, at)
		var insufficient *ledger.InsufficientFundsError
		if errors.As(err, &insufficient) {
			m.logger.Warn("dropping deferred entry that can no longer be paid for",
				zap.String("entry_id", next.ID()), zap.Error(err))
			if err := next.Cancel(at); err != nil {
				return nil, err
			}
			if err := repos.Reservations.Release(ctx, next.ReservationKey()); err != nil {
				return nil, fmt.Errorf("failed to release reservation: %w", err)
			}
			if err := repos.Entries.Save(ctx, next); err != nil {
				return nil, fmt.Errorf("failed to save queue entry: %w", err)
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		if tx != nil {
			posted = append(posted, tx)
		}
		if err := repos.Entries.Save(ctx, next); err != nil {
			return nil, fmt.Errorf("failed to save queue entry: %w", err)
		}
		return posted, nil
	}
}

// rateFor sums the active capacity at the location for track and applies the
// empire's technology bonus
func (m *Manager) rateFor(locked *empire.Empire, track shared.Track, assets []*capacity.Asset, zero capacity.ZeroCapacityPolicy) (capacity.Rate, error) {
	levels := capacity.SumContributingLevels(assets, func(itemKey string) bool {
		item, ok := m.catalog.Item(itemKey)
		return ok && item.ProvidesTrack == track
	})
	return m.calculator.ComputeRate(levels, m.bonusPercent(locked, track), zero)
}

// bonusPercent adds up the speed bonus every researched technology grants on track
func (m *Manager) bonusPercent(locked *empire.Empire, track shared.Track) int {
	bonus := 0
	for _, tech := range m.catalog.Items(shared.TrackTechnology) {
		if pct := tech.SpeedBonusPct[track]; pct > 0 {
			bonus += pct * locked.TechLevel(tech.Key)
		}
	}
	return bonus
}
