package cron

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/markethub/settlement-service/internal/domain/models"
	"github.com/markethub/settlement-service/internal/domain/ports"
	"github.com/markethub/settlement-service/internal/services/settlement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testCronSecret = "test-secret"

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

// newShortCircuitTrigger builds a trigger whose runs short-circuit on an
// already COMPLETED execution record, so no repositories beyond the
// execution repo are touched.
func newShortCircuitTrigger(execRepo *MockJobExecutionRepository) *settlement.Trigger {
	logger := nopLogger{}
	tracker := settlement.NewExecutionTracker(nil, execRepo, nil, logger)
	orchestrator := settlement.NewOrchestrator(nil, nil, nil, nil, tracker, 10, logger)
	return settlement.NewTrigger(orchestrator, logger)
}

func TestSettlementHandler_RunSettlement_RejectsNonPost(t *testing.T) {
	handler := NewSettlementHandler(nil, zap.NewNop(), testCronSecret)

	req := httptest.NewRequest(http.MethodGet, "/cron/settlements/run", nil)
	rec := httptest.NewRecorder()

	handler.RunSettlement(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSettlementHandler_RunSettlement_RequiresSecret(t *testing.T) {
	handler := NewSettlementHandler(nil, zap.NewNop(), testCronSecret)

	req := httptest.NewRequest(http.MethodPost, "/cron/settlements/run", nil)
	rec := httptest.NewRecorder()

	handler.RunSettlement(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSettlementHandler_RunSettlement_AcceptsBearerToken(t *testing.T) {
	execRepo := new(MockJobExecutionRepository)
	done := models.NewJobExecution(models.DailySettlementJobName, time.Now().UTC(), 5)
	done.Complete(5, 0)
	execRepo.On("FindByNameAndDate", mock.Anything, nil, models.DailySettlementJobName, mock.Anything).
		Return(done, nil)

	handler := NewSettlementHandler(newShortCircuitTrigger(execRepo), zap.NewNop(), testCronSecret)

	req := httptest.NewRequest(http.MethodPost, "/cron/settlements/run", nil)
	req.Header.Set("Authorization", "Bearer "+testCronSecret)
	rec := httptest.NewRecorder()

	handler.RunSettlement(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSettlementHandler_RunSettlement_InvalidDate(t *testing.T) {
	handler := NewSettlementHandler(nil, zap.NewNop(), testCronSecret)

	body := bytes.NewBufferString(`{"target_date": "20-11-2025"}`)
	req := httptest.NewRequest(http.MethodPost, "/cron/settlements/run", body)
	req.Header.Set("X-Cron-Secret", testCronSecret)
	rec := httptest.NewRecorder()

	handler.RunSettlement(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettlementHandler_RunSettlement_FutureDate(t *testing.T) {
	trigger := settlement.NewTrigger(nil, nopLogger{})
	handler := NewSettlementHandler(trigger, zap.NewNop(), testCronSecret)

	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	body := bytes.NewBufferString(`{"target_date": "` + tomorrow + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/cron/settlements/run", body)
	req.Header.Set("X-Cron-Secret", testCronSecret)
	rec := httptest.NewRecorder()

	handler.RunSettlement(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettlementHandler_RunSettlement_AlreadyCompletedDate(t *testing.T) {
	execRepo := new(MockJobExecutionRepository)
	done := models.NewJobExecution(models.DailySettlementJobName, time.Now().UTC(), 5)
	done.Complete(5, 0)
	execRepo.On("FindByNameAndDate", mock.Anything, nil, models.DailySettlementJobName, mock.Anything).
		Return(done, nil)

	handler := NewSettlementHandler(newShortCircuitTrigger(execRepo), zap.NewNop(), testCronSecret)

	req := httptest.NewRequest(http.MethodPost, "/cron/settlements/run", nil)
	req.Header.Set("X-Cron-Secret", testCronSecret)
	rec := httptest.NewRecorder()

	handler.RunSettlement(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp RunSettlementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.AlreadyCompleted)
	assert.Equal(t, models.DailySettlementJobName, resp.JobName)
}

func TestSettlementHandler_HealthCheck(t *testing.T) {
	trigger := settlement.NewTrigger(nil, nopLogger{})
	handler := NewSettlementHandler(trigger, zap.NewNop(), testCronSecret)

	req := httptest.NewRequest(http.MethodGet, "/cron/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
