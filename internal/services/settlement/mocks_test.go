package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/markethub/settlement-service/internal/domain/models"
	"github.com/markethub/settlement-service/internal/domain/ports"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockDBPort mocks the database port
type MockDBPort struct {
	mock.Mock
}

func (m *MockDBPort) GetDB() *pgxpool.Pool {
	return nil
}

func (m *MockDBPort) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	// Execute the function with nil transaction for testing
	return fn(ctx, nil)
}

func (m *MockDBPort) WithReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return fn(ctx, nil)
}

// MockSellerRepository mocks the seller repository
type MockSellerRepository struct {
	mock.Mock
}

func (m *MockSellerRepository) ListActive(ctx context.Context, db ports.DBTX, limit, offset int32) ([]models.Seller, error) {
	args := m.Called(ctx, db, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Seller), args.Error(1)
}

func (m *MockSellerRepository) CountActive(ctx context.Context, db ports.DBTX) (int64, error) {
	args := m.Called(ctx, db)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSellerRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*models.Seller, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Seller), args.Error(1)
}

// MockOrderRepository mocks the order repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) ListSettlementTargetOrdersWithItems(ctx context.Context, db ports.DBTX, sellerID string, periodStart, periodEnd time.Time) ([]models.Order, error) {
	args := m.Called(ctx, db, sellerID, periodStart, periodEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

// MockRefundRepository mocks the refund repository
type MockRefundRepository struct {
	mock.Mock
}

func (m *MockRefundRepository) ListCompletedRefunds(ctx context.Context, db ports.DBTX, sellerID string, periodStart, periodEnd time.Time) ([]models.Refund, error) {
	args := m.Called(ctx, db, sellerID, periodStart, periodEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Refund), args.Error(1)
}

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

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid decimal %q: %v", s, err)
	}
	return d
}

func activeSeller(id, code, rate string, t *testing.T) models.Seller {
	return models.Seller{
		ID:             id,
		SellerCode:     code,
		SellerName:     "Seller " + code,
		CommissionRate: mustDec(t, rate),
		Status:         models.SellerActive,
	}
}
