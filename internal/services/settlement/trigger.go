package settlement

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/markethub/settlement-service/internal/domain/ports"
	"github.com/markethub/settlement-service/pkg/timeutil"
)

// ErrRunInProgress is returned when a trigger arrives while a settlement
// run is already executing in this process. Only one run may be active for
// the single job instance.
var ErrRunInProgress = errors.New("settlement job is already running")

// ErrFutureDate is returned when a trigger names a target date after today
var ErrFutureDate = errors.New("target date must not be in the future")

// Trigger guards and launches settlement runs. It is the entry point for
// the cron endpoint and manual re-runs.
type Trigger struct {
	orchestrator *Orchestrator
	running      atomic.Bool
	logger       ports.Logger
}

// NewTrigger creates a trigger around the orchestrator
func NewTrigger(orchestrator *Orchestrator, logger ports.Logger) *Trigger {
	return &Trigger{orchestrator: orchestrator, logger: logger}
}

// Run validates the target date, takes the single-run guard and executes
// the batch synchronously. Callers for the scheduled path pass yesterday's
// date; manual triggers may pass any past or current date.
func (t *Trigger) Run(ctx context.Context, targetDate time.Time) (*RunSummary, error) {
	today := timeutil.StartOfDay(timeutil.Now())
	if timeutil.StartOfDay(targetDate).After(today) {
		return nil, fmt.Errorf("%w: %s", ErrFutureDate, timeutil.FormatDate(targetDate))
	}

	if !t.running.CompareAndSwap(false, true) {
		t.logger.Warn("settlement trigger rejected, run in progress",
			ports.String("target_date", timeutil.FormatDate(targetDate)))
		return nil, ErrRunInProgress
	}
	defer t.running.Store(false)

	return t.orchestrator.Run(ctx, targetDate)
}

// IsRunning reports whether a run is currently active in this process
func (t *Trigger) IsRunning() bool {
	return t.running.Load()
}
