package ports

import (
	"context"
	"time"

	"github.com/markethub/settlement-service/internal/domain/models"
)

// JobExecutionRepository persists batch run audit records, unique per
// (job_name, execution_date).
type JobExecutionRepository interface {
	// FindByNameAndDate returns the run record for one job and target date,
	// ErrNotFound when absent
	FindByNameAndDate(ctx context.Context, db DBTX, jobName string, executionDate time.Time) (*models.JobExecution, error)

	// Create inserts a new execution record
	Create(ctx context.Context, db DBTX, execution *models.JobExecution) error

	// Update persists status, counters and completion time
	Update(ctx context.Context, db DBTX, execution *models.JobExecution) error

	// Delete removes a stale record so a failed date can be retried
	Delete(ctx context.Context, db DBTX, id string) error
}
