package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/markethub/settlement-service/internal/domain"
	"github.com/markethub/settlement-service/internal/domain/models"
	"github.com/markethub/settlement-service/internal/domain/ports"
	"github.com/markethub/settlement-service/internal/services/settlement"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockSettlementRepository mocks the settlement repository
type MockSettlementRepository struct {
	mock.Mock
}

func (m *MockSettlementRepository) FindByIdempotencyKey(ctx context.Context, db ports.DBTX, sellerID string, cycleType models.CycleType, periodStart, periodEnd time.Time) (*models.Settlement, error) {
	args := m.Called(ctx, db, sellerID, cycleType, periodStart, periodEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) SaveAll(ctx context.Context, tx ports.DBTX, settlements []*models.Settlement) error {
	args := m.Called(ctx, tx, settlements)
	return args.Error(0)
}

func (m *MockSettlementRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*models.Settlement, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) ListBySeller(ctx context.Context, db ports.DBTX, sellerID string, limit, offset int32) ([]models.Settlement, error) {
	args := m.Called(ctx, db, sellerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) ListByPeriod(ctx context.Context, db ports.DBTX, periodStart, periodEnd time.Time, status models.SettlementStatus, limit, offset int32) ([]models.Settlement, error) {
	args := m.Called(ctx, db, periodStart, periodEnd, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) Statistics(ctx context.Context, db ports.DBTX, periodStart, periodEnd time.Time) (*ports.SettlementStatistics, error) {
	args := m.Called(ctx, db, periodStart, periodEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.SettlementStatistics), args.Error(1)
}

// MockJobExecutionRepository mocks the job execution repository
type MockJobExecutionRepository struct {
	mock.Mock
}

func (m *MockJobExecutionRepository) FindByNameAndDate(ctx context.Context, db ports.DBTX, jobName string, executionDate time.Time) (*models.JobExecution, error) {
	args := m.Called(ctx, db, jobName, executionDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JobExecution), args.Error(1)
}

func (m *MockJobExecutionRepository) Create(ctx context.Context, db ports.DBTX, execution *models.JobExecution) error {
	args := m.Called(ctx, db, execution)
	return args.Error(0)
}

func (m *MockJobExecutionRepository) Update(ctx context.Context, db ports.DBTX, execution *models.JobExecution) error {
	args := m.Called(ctx, db, execution)
	return args.Error(0)
}

func (m *MockJobExecutionRepository) Delete(ctx context.Context, db ports.DBTX, id string) error {
	args := m.Called(ctx, db, id)
	return args.Error(0)
}

// nopLogger discards everything
type nopLogger struct{}

func (nopLogger) Info(string, ...ports.Field)  {}
func (nopLogger) Error(string, ...ports.Field) {}
func (nopLogger) Warn(string, ...ports.Field)  {}
func (nopLogger) Debug(string, ...ports.Field) {}

func newTestRouter(settlementRepo *MockSettlementRepository, execRepo *MockJobExecutionRepository) *chi.Mux {
	queries := settlement.NewQueryService(settlementRepo, execRepo, nopLogger{})
	handler := NewSettlementHandler(queries, zap.NewNop())

	router := chi.NewRouter()
	router.Route("/admin", handler.Routes)
	return router
}

func TestSettlementHandler_GetSettlement(t *testing.T) {
	settlementRepo := new(MockSettlementRepository)
	execRepo := new(MockJobExecutionRepository)
	router := newTestRouter(settlementRepo, execRepo)

	day := time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)
	stl := models.NewSettlement("seller-1", models.CycleDaily, day, day)
	stl.GrossSalesAmount = decimal.RequireFromString("150.00")
	stl.PayoutAmount = decimal.RequireFromString("106.80")
	stl.Items = []models.SettlementItem{
		models.NewSaleItem("item-1", decimal.RequireFromString("150.00"), decimal.RequireFromString("0.1000"), decimal.RequireFromString("15.00")),
	}

	settlementRepo.On("GetByID", mock.Anything, nil, stl.ID).Return(stl, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/settlements/"+stl.ID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp SettlementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, stl.ID, resp.ID)
	assert.Equal(t, "106.80", resp.PayoutAmount)
	assert.Equal(t, "2025-11-20", resp.PeriodStart)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "SALE", resp.Items[0].ItemType)
}

func TestSettlementHandler_GetSettlement_NotFound(t *testing.T) {
	settlementRepo := new(MockSettlementRepository)
	execRepo := new(MockJobExecutionRepository)
	router := newTestRouter(settlementRepo, execRepo)

	settlementRepo.On("GetByID", mock.Anything, nil, "missing").
		Return(nil, domain.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/admin/settlements/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSettlementHandler_ListByDate_RequiresDate(t *testing.T) {
	router := newTestRouter(new(MockSettlementRepository), new(MockJobExecutionRepository))

	req := httptest.NewRequest(http.MethodGet, "/admin/settlements", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettlementHandler_ListByDate_StatusFilter(t *testing.T) {
	settlementRepo := new(MockSettlementRepository)
	execRepo := new(MockJobExecutionRepository)
	router := newTestRouter(settlementRepo, execRepo)

	day := time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)
	settlementRepo.On("ListByPeriod", mock.Anything, nil, day, day, models.SettlementPaid, int32(50), int32(0)).
		Return([]models.Settlement{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/settlements?date=2025-11-20&status=PAID", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	settlementRepo.AssertExpectations(t)

	req = httptest.NewRequest(http.MethodGet, "/admin/settlements?date=2025-11-20&status=BOGUS", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettlementHandler_Statistics(t *testing.T) {
	settlementRepo := new(MockSettlementRepository)
	execRepo := new(MockJobExecutionRepository)
	router := newTestRouter(settlementRepo, execRepo)

	day := time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)
	settlementRepo.On("Statistics", mock.Anything, nil, day, day).Return(&ports.SettlementStatistics{
		TotalCount:      3,
		PendingCount:    2,
		PaidCount:       1,
		TotalGrossSales: decimal.RequireFromString("450.00"),
		TotalPayout:     decimal.RequireFromString("320.40"),
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/settlements/statistics?date=2025-11-20", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatisticsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.TotalCount)
	assert.Equal(t, "450.00", resp.TotalGrossSales)
	assert.Equal(t, "320.40", resp.TotalPayout)
	assert.Equal(t, "2025-11-20", resp.Date)
}

func TestSettlementHandler_GetJobExecution(t *testing.T) {
	settlementRepo := new(MockSettlementRepository)
	execRepo := new(MockJobExecutionRepository)
	router := newTestRouter(settlementRepo, execRepo)

	day := time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)
	exec := models.NewJobExecution(models.DailySettlementJobName, day, 10)
	exec.Complete(8, 2)
	execRepo.On("FindByNameAndDate", mock.Anything, nil, models.DailySettlementJobName, day).
		Return(exec, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/jobs/daily-settlement?date=2025-11-20", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp JobExecutionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "PARTIALLY_FAILED", resp.Status)
	assert.Equal(t, 8, resp.SuccessCount)
	assert.InDelta(t, 80.0, resp.SuccessRate, 0.001)
}
