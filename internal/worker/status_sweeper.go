package worker

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/xuantoan98/event-ticketing-backend/internal/domain"
)

// EventStatusStore is the slice of the event repository the sweeper needs.
type EventStatusStore interface {
	CloseEnded(ctx context.Context, now time.Time) (int64, error)
	StartDue(ctx context.Context, now time.Time) (int64, error)
}

// StatusSweeper periodically re-evaluates every non-terminal event's status
// against the clock: past-end events become CLOSED, due CREATE events become
// PROCESS. Cancelled events are never touched. Sweep failures are logged and
// swallowed; the next tick retries. The sweeper holds no lock across replicas:
// both transitions are idempotent, so overlapping sweeps from several
// instances are tolerated.
type StatusSweeper struct {
	store    EventStatusStore
	logger   *slog.Logger
	interval time.Duration
	clock    func() time.Time
	inFlight atomic.Bool
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewStatusSweeper(store EventStatusStore, logger *slog.Logger, interval time.Duration) *StatusSweeper {
	return &StatusSweeper{
		store:    store,
		logger:   logger,
		interval: interval,
		clock:    time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *StatusSweeper) WithClock(clock func() time.Time) *StatusSweeper {
	s.clock = clock
	return s
}

// Start runs the sweep loop until the context is cancelled or Stop is called.
// It blocks; run it in its own goroutine.
func (s *StatusSweeper) Start(ctx context.Context) {
	s.logger.Info("status sweeper started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("status sweeper stopped", "reason", "context cancelled")
			return
		case <-s.stopCh:
			s.logger.Info("status sweeper stopped", "reason", "stop requested")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// Stop signals the loop to exit and waits for it to drain.
func (s *StatusSweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// RunOnce executes a single sweep at the current clock instant. If a previous
// sweep is still in flight the tick is skipped; sweeps on one instance never
// overlap. Safe to call directly in tests.
func (s *StatusSweeper) RunOnce(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Warn("status sweep skipped: previous sweep still running")
		return
	}
	defer s.inFlight.Store(false)

	now := s.clock().UTC()

	closed, err := s.store.CloseEnded(ctx, now)
	if err != nil {
		s.logger.Error("status sweep: closing ended events failed", "err", err)
	} else if closed > 0 {
		s.logger.Info("status sweep: events closed", "count", closed)
	}

	started, err := s.store.StartDue(ctx, now)
	if err != nil {
		s.logger.Error("status sweep: starting due events failed", "err", err)
	} else if started > 0 {
		s.logger.Info("status sweep: events moved to process", "count", started)
	}
}

// compile-time check that the full repository satisfies the store slice.
var _ EventStatusStore = (domain.EventRepository)(nil)
