package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/markethub/settlement-service/internal/domain"
	"github.com/markethub/settlement-service/internal/domain/models"
	"github.com/markethub/settlement-service/internal/domain/ports"
	"github.com/markethub/settlement-service/pkg/timeutil"
)

// ExecutionTracker owns the JobExecution lifecycle for settlement runs:
// the duplicate-run short-circuit, retry after a failed run, and the final
// status transition. The execution record is threaded through the
// orchestrator as an explicit value, never held as shared state.
type ExecutionTracker struct {
	db         ports.DBPort
	execRepo   ports.JobExecutionRepository
	sellerRepo ports.SellerRepository
	logger     ports.Logger
}

// NewExecutionTracker creates an execution tracker
func NewExecutionTracker(
	db ports.DBPort,
	execRepo ports.JobExecutionRepository,
	sellerRepo ports.SellerRepository,
	logger ports.Logger,
) *ExecutionTracker {
	return &ExecutionTracker{
		db:         db,
		execRepo:   execRepo,
		sellerRepo: sellerRepo,
		logger:     logger,
	}
}

// Begin resolves the run record for (jobName, targetDate):
//
//   - an existing COMPLETED record short-circuits the run (nil, false, nil
//     with alreadyCompleted=true): job-level idempotency
//   - an existing FAILED or PARTIALLY_FAILED record is deleted and replaced
//     by a fresh STARTED record; per-seller idempotency keeps the retry safe
//   - otherwise a STARTED record is created with the current count of
//     eligible sellers
func (t *ExecutionTracker) Begin(ctx context.Context, jobName string, targetDate time.Time) (exec *models.JobExecution, alreadyCompleted bool, err error) {
	executionDate := timeutil.StartOfDay(targetDate)

	existing, err := t.execRepo.FindByNameAndDate(ctx, nil, jobName, executionDate)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("find job execution: %w", err)
	}

	if existing != nil {
		if existing.Status == models.JobCompleted {
			t.logger.Warn("job already completed for date",
				ports.String("job_name", jobName),
				ports.String("execution_date", timeutil.FormatDate(executionDate)))
			return nil, true, nil
		}

		t.logger.Info("re-running job for date",
			ports.String("job_name", jobName),
			ports.String("execution_date", timeutil.FormatDate(executionDate)),
			ports.String("previous_status", string(existing.Status)))

		if err := t.execRepo.Delete(ctx, nil, existing.ID); err != nil {
			return nil, false, fmt.Errorf("delete stale job execution: %w", err)
		}
	}

	totalSellers, err := t.sellerRepo.CountActive(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("count active sellers: %w", err)
	}

	exec = models.NewJobExecution(jobName, executionDate, int(totalSellers))
	if err := t.execRepo.Create(ctx, nil, exec); err != nil {
		return nil, false, fmt.Errorf("create job execution: %w", err)
	}

	t.logger.Info("job execution started",
		ports.String("job_name", jobName),
		ports.String("execution_date", timeutil.FormatDate(executionDate)),
		ports.Int("total_sellers", int(totalSellers)))

	return exec, false, nil
}

// Complete transitions the record to COMPLETED or PARTIALLY_FAILED from
// the run's success and failure counts and persists it
func (t *ExecutionTracker) Complete(ctx context.Context, exec *models.JobExecution, successCount, failureCount int, errorMessages []string) error {
	exec.Complete(successCount, failureCount)
	for _, msg := range errorMessages {
		exec.AppendError(msg)
	}

	if err := t.execRepo.Update(ctx, nil, exec); err != nil {
		return fmt.Errorf("update job execution: %w", err)
	}

	t.logger.Info("job execution finished",
		ports.String("job_name", exec.JobName),
		ports.String("status", string(exec.Status)),
		ports.Int("success", exec.SuccessCount),
		ports.Int("failure", exec.FailureCount),
		ports.Float64("success_rate", exec.SuccessRate()),
		ports.Int("duration_seconds", int(exec.ExecutionTimeSeconds())))

	return nil
}

// Fail transitions the record to FAILED with the aggregated error message
// and persists it. Used when an error escapes the orchestrator loop itself.
func (t *ExecutionTracker) Fail(ctx context.Context, exec *models.JobExecution, errorMessage string) error {
	exec.Fail(errorMessage)

	if err := t.execRepo.Update(ctx, nil, exec); err != nil {
		return fmt.Errorf("update failed job execution: %w", err)
	}

	t.logger.Error("job execution failed",
		ports.String("job_name", exec.JobName),
		ports.String("execution_date", timeutil.FormatDate(exec.ExecutionDate)),
		ports.String("message", errorMessage))

	return nil
}
