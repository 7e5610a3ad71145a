package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"trustgate/internal/metrics"
)

type Ticker interface {
	Tick(ctx context.Context) (Summary, error)
}

// Scheduler owns the reconciliation cadence. At most one tick runs at a
// time in this process, and with a Lease at most one across replicas.
type Scheduler struct {
	cron     *cron.Cron
	runner   Ticker
	lease    Lease
	interval time.Duration
	metrics  *metrics.Metrics
	log      zerolog.Logger

	running sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewScheduler(runner Ticker, lease Lease, interval time.Duration, m *metrics.Metrics, log zerolog.Logger) *Scheduler {
	log = log.With().Str("component", "scheduler").Logger()
	cl := cronLogger{log: log}

	c := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:     c,
		runner:   runner,
		lease:    lease,
		interval: interval,
		metrics:  m,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Scheduler) Start() error {
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, func() { s.Run(s.ctx) }); err != nil {
		return fmt.Errorf("schedule reconcile: %w", err)
	}
	s.cron.Start()
	s.log.Info().Dur("interval", s.interval).Msg("reconcile scheduler started")
	return nil
}

// Trigger starts a tick now without waiting for the next interval. It is a
// no-op while a tick is already running.
func (s *Scheduler) Trigger() {
	go s.Run(s.ctx)
}

// Run performs one tick unless another is in progress, reporting whether
// it ran.
func (s *Scheduler) Run(ctx context.Context) bool {
	if !s.running.TryLock() {
		s.metrics.IncrementTickSkipped()
		return false
	}
	defer s.running.Unlock()

	tickCtx := ctx
	if s.lease != nil {
		held, release, err := s.lease.Acquire(ctx)
		if errors.Is(err, ErrLeaseHeld) {
			s.metrics.IncrementTickSkipped()
			s.log.Debug().Msg("reconcile lease held elsewhere, skipping tick")
			return false
		}
		if err != nil {
			s.log.Error().Err(err).Msg("reconcile lease unavailable, skipping tick")
			return false
		}
		defer release()
		tickCtx = held
	}

	_, err := s.runner.Tick(tickCtx)
	if cause := context.Cause(tickCtx); errors.Is(cause, ErrLeaseLost) {
		s.log.Warn().Err(cause).Msg("reconcile lease lost, tick cut short")
		return true
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		s.log.Error().Err(err).Msg("reconcile tick failed")
	}
	return true
}

// Stop cancels an in-flight tick and waits up to timeout for it to return.
func (s *Scheduler) Stop(timeout time.Duration) {
	s.cancel()
	done := s.cron.Stop()

	select {
	case <-done.Done():
	case <-time.After(timeout):
		s.log.Warn().Msg("reconcile tick still running at shutdown")
	}
}

type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
