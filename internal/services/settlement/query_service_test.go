package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/markethub/settlement-service/internal/domain"
	"github.com/markethub/settlement-service/internal/domain/models"
	"github.com/markethub/settlement-service/internal/domain/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestQueryService_ListSellerSettlements_ClampsLimit(t *testing.T) {
	settlementRepo := new(MockSettlementRepository)
	execRepo := new(MockJobExecutionRepository)
	svc := NewQueryService(settlementRepo, execRepo, nopLogger{})

	settlementRepo.On("ListBySeller", mock.Anything, nil, "seller-1", int32(50), int32(0)).
		Return([]models.Settlement{}, nil).Twice()

	_, err := svc.ListSellerSettlements(context.Background(), "seller-1", 0, 0)
	require.NoError(t, err)

	_, err = svc.ListSellerSettlements(context.Background(), "seller-1", 500, 0)
	require.NoError(t, err)

	settlementRepo.AssertExpectations(t)
}

func TestQueryService_ListByDate_UsesDailyPeriod(t *testing.T) {
	settlementRepo := new(MockSettlementRepository)
	execRepo := new(MockJobExecutionRepository)
	svc := NewQueryService(settlementRepo, execRepo, nopLogger{})

	day := time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)
	settlementRepo.On("ListByPeriod", mock.Anything, nil, day, day, models.SettlementStatus(""), int32(50), int32(0)).
		Return([]models.Settlement{}, nil)

	// A mid-day timestamp is truncated to its settlement date.
	_, err := svc.ListByDate(context.Background(), day.Add(13*time.Hour), "", 0, 0)

	require.NoError(t, err)
	settlementRepo.AssertExpectations(t)
}

func TestQueryService_ListByDate_PassesStatusFilter(t *testing.T) {
	settlementRepo := new(MockSettlementRepository)
	execRepo := new(MockJobExecutionRepository)
	svc := NewQueryService(settlementRepo, execRepo, nopLogger{})

	day := time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)
	settlementRepo.On("ListByPeriod", mock.Anything, nil, day, day, models.SettlementPending, int32(50), int32(0)).
		Return([]models.Settlement{}, nil)

	_, err := svc.ListByDate(context.Background(), day, models.SettlementPending, 0, 0)

	require.NoError(t, err)
	settlementRepo.AssertExpectations(t)
}

func TestQueryService_GetSettlement_NotFoundPassesThrough(t *testing.T) {
	settlementRepo := new(MockSettlementRepository)
	execRepo := new(MockJobExecutionRepository)
	svc := NewQueryService(settlementRepo, execRepo, nopLogger{})

	settlementRepo.On("GetByID", mock.Anything, nil, "missing").
		Return(nil, domain.ErrNotFound)

	stl, err := svc.GetSettlement(context.Background(), "missing")

	assert.Nil(t, stl)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQueryService_Statistics(t *testing.T) {
	settlementRepo := new(MockSettlementRepository)
	execRepo := new(MockJobExecutionRepository)
	svc := NewQueryService(settlementRepo, execRepo, nopLogger{})

	day := time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)
	want := &ports.SettlementStatistics{
		TotalCount:  3,
		PaidCount:   1,
		TotalPayout: mustDec(t, "320.40"),
	}
	settlementRepo.On("Statistics", mock.Anything, nil, day, day).Return(want, nil)

	got, err := svc.Statistics(context.Background(), day)

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestQueryService_GetJobExecution(t *testing.T) {
	settlementRepo := new(MockSettlementRepository)
	execRepo := new(MockJobExecutionRepository)
	svc := NewQueryService(settlementRepo, execRepo, nopLogger{})

	day := time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)
	exec := models.NewJobExecution(models.DailySettlementJobName, day, 10)
	execRepo.On("FindByNameAndDate", mock.Anything, nil, models.DailySettlementJobName, day).
		Return(exec, nil)

	got, err := svc.GetJobExecution(context.Background(), day)

	require.NoError(t, err)
	assert.Equal(t, exec, got)
}
