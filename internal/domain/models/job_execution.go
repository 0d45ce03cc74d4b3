package models

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the terminal-state machine of a batch run.
// STARTED is the only non-terminal state.
type JobStatus string

const (
	JobStarted         JobStatus = "STARTED"
	JobCompleted       JobStatus = "COMPLETED"
	JobFailed          JobStatus = "FAILED"
	JobPartiallyFailed JobStatus = "PARTIALLY_FAILED"
)

// DailySettlementJobName identifies the daily settlement batch in job_executions
const DailySettlementJobName = "daily-settlement-job"

// JobExecution is the audit row tracking one invocation of a batch job for
// one target date, unique per (job_name, execution_date).
type JobExecution struct {
	ID            string
	JobName       string
	ExecutionDate time.Time // date, midnight UTC
	Status        JobStatus

	TotalSellers int
	SuccessCount int
	FailureCount int
	ErrorMessage string

	StartedAt   time.Time
	CompletedAt *time.Time
}

// NewJobExecution creates a STARTED execution record for the given date
func NewJobExecution(jobName string, executionDate time.Time, totalSellers int) *JobExecution {
	return &JobExecution{
		ID:            uuid.New().String(),
		JobName:       jobName,
		ExecutionDate: executionDate,
		Status:        JobStarted,
		TotalSellers:  totalSellers,
		StartedAt:     time.Now().UTC(),
	}
}

// Complete transitions the run to COMPLETED, or PARTIALLY_FAILED when any
// seller failed. Both are terminal.
func (e *JobExecution) Complete(successCount, failureCount int) {
	if failureCount > 0 {
		e.Status = JobPartiallyFailed
	} else {
		e.Status = JobCompleted
	}
	e.SuccessCount = successCount
	e.FailureCount = failureCount
	now := time.Now().UTC()
	e.CompletedAt = &now
}

// Fail transitions the run to FAILED with the aggregated error message
func (e *JobExecution) Fail(errorMessage string) {
	e.Status = JobFailed
	e.ErrorMessage = errorMessage
	now := time.Now().UTC()
	e.CompletedAt = &now
}

// AppendError accumulates a per-seller failure message on the record
func (e *JobExecution) AppendError(msg string) {
	if e.ErrorMessage == "" {
		e.ErrorMessage = msg
		return
	}
	e.ErrorMessage += "\n" + msg
}

// IsRunning reports whether the record is still in its initial state
func (e *JobExecution) IsRunning() bool {
	return e.Status == JobStarted
}

// IsTerminal reports whether the record reached a final status
func (e *JobExecution) IsTerminal() bool {
	return e.Status == JobCompleted || e.Status == JobFailed || e.Status == JobPartiallyFailed
}

// SuccessRate returns successCount/totalSellers as a percentage,
// zero when no sellers were eligible
func (e *JobExecution) SuccessRate() float64 {
	if e.TotalSellers == 0 {
		return 0
	}
	return float64(e.SuccessCount) / float64(e.TotalSellers) * 100
}

// ExecutionTimeSeconds returns the run duration, zero while incomplete
func (e *JobExecution) ExecutionTimeSeconds() int64 {
	if e.CompletedAt == nil {
		return 0
	}
	return int64(e.CompletedAt.Sub(e.StartedAt).Seconds())
}
