/*
scheduler.go - Automated pay run scheduler

PURPOSE:
  Periodically checks whether the most recent fully elapsed pay period has
  a pay run and, if not, computes a draft one so payroll is ready for an
  admin to review and finalize.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs one check immediately on start
  - Only creates drafts; finalizing stays a manual admin step
  - Skips periods that already have a run (draft or finalized)

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewPayRunScheduler(svc, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: CreatePayRun endpoint (manual run)
  - payroll/service.go: DuePeriod, RunPeriod
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nightwatch/nursepay/payroll"
	"github.com/nightwatch/nursepay/shifts"
)

// PayRunScheduler creates draft pay runs for elapsed periods.
type PayRunScheduler struct {
	Service       *payroll.Service
	Logger        *zap.Logger
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewPayRunScheduler creates a new scheduler.
func NewPayRunScheduler(svc *payroll.Service, logger *zap.Logger) *PayRunScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PayRunScheduler{
		Service:       svc,
		Logger:        logger.Named("scheduler"),
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler.
func (ps *PayRunScheduler) Start() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if !ps.Enabled {
		ps.Logger.Info("disabled, not starting")
		return
	}
	if ps.ticker != nil {
		return
	}

	ps.ticker = time.NewTicker(ps.CheckInterval)
	ps.wg.Add(1)

	go ps.run()

	ps.Logger.Info("started", zap.Duration("interval", ps.CheckInterval))
}

// Stop stops the scheduler and waits for an in-flight check.
func (ps *PayRunScheduler) Stop() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.ticker != nil {
		ps.ticker.Stop()
		close(ps.stop)
		ps.wg.Wait()
		ps.ticker = nil
		ps.stop = make(chan struct{})
		ps.Logger.Info("stopped")
	}
}

func (ps *PayRunScheduler) run() {
	defer ps.wg.Done()

	// Run immediately on start
	ps.checkAndProcess()

	for {
		select {
		case <-ps.ticker.C:
			ps.checkAndProcess()
		case <-ps.stop:
			return
		}
	}
}

// checkAndProcess runs payroll for the last elapsed period if it has no run.
// It returns the period it ran, if any.
func (ps *PayRunScheduler) checkAndProcess() (shifts.PayPeriod, bool) {
	ctx := context.Background()
	today := ps.Service.Today()

	period, due, err := ps.Service.DuePeriod(ctx, today)
	if err != nil {
		ps.Logger.Error("checking due period", zap.Error(err))
		return shifts.PayPeriod{}, false
	}
	if !due {
		ps.Logger.Debug("nothing due", zap.Stringer("today", today))
		return period, false
	}

	run, _, err := ps.Service.RunPeriod(ctx, period.Start)
	if err != nil {
		ps.Logger.Error("running payroll", zap.Stringer("period", period), zap.Error(err))
		return period, false
	}

	ps.Logger.Info("draft pay run created",
		zap.String("run_id", run.ID),
		zap.Stringer("period", period),
		zap.Int("nurses", run.NurseCount),
	)
	return period, true
}

// RunNow triggers an immediate check (for testing/admin).
func (ps *PayRunScheduler) RunNow() (shifts.PayPeriod, bool) {
	return ps.checkAndProcess()
}
