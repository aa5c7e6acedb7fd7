package worker

import (
	"context"
	"sync"
	"time"

	"github.com/taskreel/lifecycle/internal/lifecycle"
	"github.com/taskreel/lifecycle/internal/logger"
)

// DailyCheckWorker runs the lifecycle daily check once per day at a
// configured UTC hour. The check itself handles idempotency, so an
// early or repeated trigger costs a scan but never double-logs.
type DailyCheckWorker struct {
	lifecycle lifecycle.Service
	hourUTC   int
	timer     *time.Timer
	shutdown  chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
}

// NewDailyCheckWorker creates a new DailyCheckWorker firing at hourUTC.
func NewDailyCheckWorker(lifecycleSvc lifecycle.Service, hourUTC int) *DailyCheckWorker {
	return &DailyCheckWorker{
		lifecycle: lifecycleSvc,
		hourUTC:   hourUTC,
		shutdown:  make(chan struct{}),
	}
}

// Start schedules the first check
func (w *DailyCheckWorker) Start() {
	w.scheduleNext()
}

// scheduleNext calculates the time until the next run and arms the timer
func (w *DailyCheckWorker) scheduleNext() {
	duration := w.timeUntilNextCheck()
	log := logger.FromContext(context.Background())

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}

	// Two-stage scheduling to prevent tight-loop rescheduling caused by
	// early timer triggers
	if duration > 1*time.Hour {
		// Stage 1: Long-range standby. Wake up 45 minutes before the run.
		waitDuration := duration - 45*time.Minute
		w.timer = time.AfterFunc(waitDuration, func() {
			w.scheduleNext()
		})
		w.mu.Unlock()

		log.Info(LogMsgDailyCheckStandby, "next_check_at", time.Now().UTC().Add(waitDuration))
		return
	}

	// Stage 2: Final approach. Schedule the actual run.
	w.timer = time.AfterFunc(duration, func() {
		select {
		case <-w.shutdown:
			return
		default:
		}

		// Jitter protection: if the timer fired early, reschedule for
		// the remaining time instead of running twice.
		rem := w.timeUntilNextCheck()
		if rem > 10*time.Second && rem < 23*time.Hour {
			w.scheduleNext()
			return
		}

		w.executeCheck()
		w.scheduleNext()
	})
	w.mu.Unlock()

	log.Info(LogMsgDailyCheckApproach, "next_run_at", time.Now().UTC().Add(duration))
}

// executeCheck performs the daily check in a tracked goroutine
func (w *DailyCheckWorker) executeCheck() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ctx := context.Background()
		log := logger.FromContext(ctx)
		log.Info(LogMsgDailyCheckStarting)

		result, err := w.lifecycle.RunDailyCheck(ctx)
		if err != nil {
			log.Error(LogMsgDailyCheckFailed, "error", err)
			return
		}

		log.Info(LogMsgDailyCheckCompleted,
			"users_checked", result.UsersChecked,
			"inactivity_events", result.InactivityEventsLogged,
			"transitions", result.StageTransitions)
	}()
}

// TriggerNow runs the check immediately, outside the schedule.
func (w *DailyCheckWorker) TriggerNow(ctx context.Context) (*lifecycle.DailyCheckResult, error) {
	logger.FromContext(ctx).Info(LogMsgDailyCheckManualTrigger)
	return w.lifecycle.RunDailyCheck(ctx)
}

// Shutdown cancels the pending timer and waits for an in-flight check
func (w *DailyCheckWorker) Shutdown(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info("Shutting down daily check worker")

	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("Daily check worker shutdown complete")
		return nil
	case <-ctx.Done():
		log.Warn("Daily check worker shutdown timeout, a check may still be running")
		return ctx.Err()
	}
}

// timeUntilNextCheck calculates the duration until the next run hour in UTC
func (w *DailyCheckWorker) timeUntilNextCheck() time.Duration {
	now := time.Now().UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), w.hourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
