package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/markethub/settlement-service/internal/domain"
	"github.com/markethub/settlement-service/internal/domain/models"
	"github.com/markethub/settlement-service/internal/domain/ports"
)

// JobExecutionRepository implements ports.JobExecutionRepository
type JobExecutionRepository struct {
	baseRepo
}

// NewJobExecutionRepository creates a job execution repository
func NewJobExecutionRepository(db ports.DBPort) *JobExecutionRepository {
	return &JobExecutionRepository{baseRepo{pool: db.GetDB()}}
}

const jobExecutionColumns = `id, job_name, execution_date, status,
	total_sellers, success_count, failure_count, error_message,
	started_at, completed_at`

// FindByNameAndDate returns the run record for one job and target date
func (r *JobExecutionRepository) FindByNameAndDate(ctx context.Context, db ports.DBTX, jobName string, executionDate time.Time) (*models.JobExecution, error) {
	row := r.exec(db).QueryRow(ctx, `
		SELECT `+jobExecutionColumns+`
		FROM job_executions
		WHERE job_name = $1 AND execution_date = $2`,
		jobName, dateFromTime(executionDate))

	exec, err := scanJobExecution(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return exec, nil
}

// Create inserts a new execution record
func (r *JobExecutionRepository) Create(ctx context.Context, db ports.DBTX, execution *models.JobExecution) error {
	_, err := r.exec(db).Exec(ctx, `
		INSERT INTO job_executions (
			id, job_name, execution_date, status,
			total_sellers, success_count, failure_count, error_message, started_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		execution.ID, execution.JobName, dateFromTime(execution.ExecutionDate),
		string(execution.Status), execution.TotalSellers, execution.SuccessCount,
		execution.FailureCount, nullText(execution.ErrorMessage), execution.StartedAt)
	if err != nil {
		return fmt.Errorf("create job execution: %w", err)
	}
	return nil
}

// Update persists status, counters and completion time
func (r *JobExecutionRepository) Update(ctx context.Context, db ports.DBTX, execution *models.JobExecution) error {
	tag, err := r.exec(db).Exec(ctx, `
		UPDATE job_executions
		SET status = $2, total_sellers = $3, success_count = $4,
		    failure_count = $5, error_message = $6, completed_at = $7
		WHERE id = $1`,
		execution.ID, string(execution.Status), execution.TotalSellers,
		execution.SuccessCount, execution.FailureCount,
		nullText(execution.ErrorMessage), nullableTime(execution.CompletedAt))
	if err != nil {
		return fmt.Errorf("update job execution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a stale record so a failed date can be retried
func (r *JobExecutionRepository) Delete(ctx context.Context, db ports.DBTX, id string) error {
	_, err := r.exec(db).Exec(ctx, `DELETE FROM job_executions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete job execution: %w", err)
	}
	return nil
}

func scanJobExecution(row pgx.Row) (*models.JobExecution, error) {
	var exec models.JobExecution
	var status string
	var executionDate pgtype.Date
	var errorMessage pgtype.Text
	var completedAt pgtype.Timestamptz

	err := row.Scan(&exec.ID, &exec.JobName, &executionDate, &status,
		&exec.TotalSellers, &exec.SuccessCount, &exec.FailureCount, &errorMessage,
		&exec.StartedAt, &completedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan job execution: %w", err)
	}

	exec.ExecutionDate = timeFromDate(executionDate)
	exec.Status = models.JobStatus(status)
	exec.ErrorMessage = errorMessage.String
	exec.CompletedAt = timePtr(completedAt)
	return &exec, nil
}
