package settlement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/markethub/settlement-service/internal/domain/models"
	"github.com/markethub/settlement-service/internal/domain/ports"
	"github.com/markethub/settlement-service/pkg/observability"
	"github.com/markethub/settlement-service/pkg/timeutil"
)

// DefaultChunkSize is the number of sellers processed and committed per
// transaction
const DefaultChunkSize = 100

// Orchestrator drives the daily settlement run: it reads active sellers in
// fixed-size chunks, processes each seller, writes the successful drafts
// transactionally per chunk, and records outcomes with the skip and
// execution trackers. No single seller failure ever aborts the run.
type Orchestrator struct {
	db         ports.DBPort
	sellerRepo ports.SellerRepository
	processor  *Processor
	writer     *ChunkWriter
	tracker    *ExecutionTracker
	chunkSize  int
	logger     ports.Logger
}

// NewOrchestrator creates an orchestrator with the given chunk size;
// non-positive sizes fall back to DefaultChunkSize
func NewOrchestrator(
	db ports.DBPort,
	sellerRepo ports.SellerRepository,
	processor *Processor,
	writer *ChunkWriter,
	tracker *ExecutionTracker,
	chunkSize int,
	logger ports.Logger,
) *Orchestrator {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Orchestrator{
		db:         db,
		sellerRepo: sellerRepo,
		processor:  processor,
		writer:     writer,
		tracker:    tracker,
		chunkSize:  chunkSize,
		logger:     logger,
	}
}

// RunSummary reports the outcome of one settlement run
type RunSummary struct {
	JobName       string
	TargetDate    time.Time
	Status        models.JobStatus
	TotalSellers  int
	SuccessCount  int
	FailureCount  int
	SkippedEvents []SkipEvent
	Duration      time.Duration

	// AlreadyCompleted is true when the run was short-circuited because a
	// COMPLETED execution record already existed for the date.
	AlreadyCompleted bool
}

// Run executes the daily settlement batch for targetDate. Per-seller
// failures become skip events; only failures of the run machinery itself
// (seller paging, execution bookkeeping) abort the run and mark it FAILED.
// Cancellation of ctx is honored between chunks, never mid-chunk.
func (o *Orchestrator) Run(ctx context.Context, targetDate time.Time) (*RunSummary, error) {
	started := time.Now()
	jobName := models.DailySettlementJobName

	o.logger.Info("settlement run starting",
		ports.String("job_name", jobName),
		ports.String("target_date", timeutil.FormatDate(targetDate)),
		ports.Int("chunk_size", o.chunkSize))

	exec, alreadyCompleted, err := o.tracker.Begin(ctx, jobName, targetDate)
	if err != nil {
		return nil, fmt.Errorf("begin execution: %w", err)
	}
	if alreadyCompleted {
		observability.RecordJobRun(jobName, "SKIPPED_DUPLICATE", time.Since(started))
		return &RunSummary{
			JobName:          jobName,
			TargetDate:       timeutil.StartOfDay(targetDate),
			Status:           models.JobCompleted,
			AlreadyCompleted: true,
			Duration:         time.Since(started),
		}, nil
	}

	skips := NewSkipTracker(o.logger)
	writeCount, loopErr := o.runChunks(ctx, targetDate, jobName, skips)

	if loopErr != nil {
		msg := loopErr.Error()
		if skipMsgs := skips.ErrorMessages(); len(skipMsgs) > 0 {
			msg = msg + "\n" + strings.Join(skipMsgs, "\n")
		}
		if failErr := o.tracker.Fail(ctx, exec, msg); failErr != nil {
			o.logger.Error("recording failed execution state failed", ports.Err(failErr))
		}
		observability.RecordJobRun(jobName, string(models.JobFailed), time.Since(started))
		return nil, loopErr
	}

	failureCount := skips.ErrorSkipCount()
	if err := o.tracker.Complete(ctx, exec, writeCount, failureCount, skips.ErrorMessages()); err != nil {
		return nil, fmt.Errorf("complete execution: %w", err)
	}

	summary := &RunSummary{
		JobName:       jobName,
		TargetDate:    exec.ExecutionDate,
		Status:        exec.Status,
		TotalSellers:  exec.TotalSellers,
		SuccessCount:  writeCount,
		FailureCount:  failureCount,
		SkippedEvents: skips.Events(),
		Duration:      time.Since(started),
	}
	observability.RecordJobRun(jobName, string(exec.Status), summary.Duration)

	o.logger.Info("settlement run finished",
		ports.String("job_name", jobName),
		ports.String("status", string(summary.Status)),
		ports.Int("success", summary.SuccessCount),
		ports.Int("failure", summary.FailureCount),
		ports.Int("skipped_events", len(summary.SkippedEvents)))

	return summary, nil
}

// runChunks pages through active sellers and returns the number of
// settlements written. Errors returned here abort the whole run.
func (o *Orchestrator) runChunks(ctx context.Context, targetDate time.Time, jobName string, skips *SkipTracker) (int, error) {
	writeCount := 0
	offset := int32(0)

	for {
		// Stop signal between chunks; a mid-chunk cancel is not supported.
		if err := ctx.Err(); err != nil {
			return writeCount, fmt.Errorf("run cancelled: %w", err)
		}

		sellers, err := o.sellerRepo.ListActive(ctx, nil, int32(o.chunkSize), offset)
		if err != nil {
			return writeCount, fmt.Errorf("list active sellers (offset %d): %w", offset, err)
		}
		if len(sellers) == 0 {
			return writeCount, nil
		}

		written := o.processChunk(ctx, sellers, targetDate, jobName, skips)
		writeCount += written

		if len(sellers) < o.chunkSize {
			return writeCount, nil
		}
		offset += int32(len(sellers))
	}
}

// processChunk processes one page of sellers and writes the successful
// drafts in a single transaction. Returns the number written; every failure
// is converted to a skip event, never an error.
func (o *Orchestrator) processChunk(ctx context.Context, sellers []models.Seller, targetDate time.Time, jobName string, skips *SkipTracker) int {
	drafts := make([]*Draft, 0, len(sellers))

	for i := range sellers {
		outcome := o.processor.Process(ctx, sellers[i], targetDate)

		switch outcome.Kind {
		case OutcomeSettled:
			drafts = append(drafts, outcome.Draft)
		case OutcomeAlreadyExists:
			skips.RecordError(sellers[i], outcome.Err)
			observability.RecordSellerSkipped(jobName, string(SkipAlreadyExists))
		case OutcomeNoData:
			// Not a failure, not even a skip event.
		case OutcomeFailed:
			skips.RecordError(sellers[i], outcome.Err)
			observability.RecordSellerSkipped(jobName, string(ReasonForError(outcome.Err)))
		}
	}

	if len(drafts) == 0 {
		return 0
	}

	writeStarted := time.Now()
	if err := o.writer.Write(ctx, drafts); err != nil {
		// The chunk rolled back; every seller in it failed.
		for _, d := range drafts {
			skips.RecordError(d.Seller, err)
			observability.RecordSellerSkipped(jobName, string(SkipWriteError))
		}
		observability.RecordSettlementWriteFailed(jobName, len(drafts))
		return 0
	}
	observability.RecordChunkWriteDuration(jobName, time.Since(writeStarted))

	payoutSum := drafts[0].Settlement.PayoutAmount
	for _, d := range drafts[1:] {
		payoutSum = payoutSum.Add(d.Settlement.PayoutAmount)
	}
	observability.RecordSettlementWritten(jobName, len(drafts), payoutSum)

	return len(drafts)
}
