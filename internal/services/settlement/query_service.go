package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/markethub/settlement-service/internal/domain/models"
	"github.com/markethub/settlement-service/internal/domain/ports"
	"github.com/markethub/settlement-service/pkg/timeutil"
)

// QueryService serves settlement lookups and per-date statistics for the
// admin API. Reads only; the batch pipeline is the sole writer.
type QueryService struct {
	settlementRepo ports.SettlementRepository
	execRepo       ports.JobExecutionRepository
	logger         ports.Logger
}

// NewQueryService creates a settlement query service
func NewQueryService(settlementRepo ports.SettlementRepository, execRepo ports.JobExecutionRepository, logger ports.Logger) *QueryService {
	return &QueryService{
		settlementRepo: settlementRepo,
		execRepo:       execRepo,
		logger:         logger,
	}
}

// GetSettlement returns one settlement with its items
func (s *QueryService) GetSettlement(ctx context.Context, id string) (*models.Settlement, error) {
	stl, err := s.settlementRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("get settlement %s: %w", id, err)
	}
	return stl, nil
}

// ListSellerSettlements returns a seller's settlements, newest first
func (s *QueryService) ListSellerSettlements(ctx context.Context, sellerID string, limit, offset int32) ([]models.Settlement, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	settlements, err := s.settlementRepo.ListBySeller(ctx, nil, sellerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list settlements for seller %s: %w", sellerID, err)
	}
	return settlements, nil
}

// ListByDate returns all settlements whose daily period matches the date,
// narrowed to one status when status is non-empty
func (s *QueryService) ListByDate(ctx context.Context, date time.Time, status models.SettlementStatus, limit, offset int32) ([]models.Settlement, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	day := timeutil.StartOfDay(date)
	settlements, err := s.settlementRepo.ListByPeriod(ctx, nil, day, day, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list settlements for %s: %w", timeutil.FormatDate(day), err)
	}
	return settlements, nil
}

// Statistics aggregates settlement totals for one settlement date
func (s *QueryService) Statistics(ctx context.Context, date time.Time) (*ports.SettlementStatistics, error) {
	day := timeutil.StartOfDay(date)
	stats, err := s.settlementRepo.Statistics(ctx, nil, day, day)
	if err != nil {
		return nil, fmt.Errorf("settlement statistics for %s: %w", timeutil.FormatDate(day), err)
	}
	return stats, nil
}

// GetJobExecution returns the daily settlement run record for a date
func (s *QueryService) GetJobExecution(ctx context.Context, date time.Time) (*models.JobExecution, error) {
	day := timeutil.StartOfDay(date)
	exec, err := s.execRepo.FindByNameAndDate(ctx, nil, models.DailySettlementJobName, day)
	if err != nil {
		return nil, fmt.Errorf("job execution for %s: %w", timeutil.FormatDate(day), err)
	}
	return exec, nil
}
