package ports

import (
	"context"
	"time"

	"github.com/markethub/settlement-service/internal/domain/models"
	"github.com/shopspring/decimal"
)

// SettlementRepository defines the interface for settlement persistence
type SettlementRepository interface {
	// FindByIdempotencyKey looks up the settlement identified by
	// (seller_id, cycle_type, period_start, period_end), ignoring cancelled
	// settlements. Returns ErrNotFound when absent.
	FindByIdempotencyKey(ctx context.Context, db DBTX, sellerID string, cycleType models.CycleType, periodStart, periodEnd time.Time) (*models.Settlement, error)

	// SaveAll inserts the settlements and their attached items. Callers run
	// this inside one transaction so a chunk commits or rolls back whole.
	SaveAll(ctx context.Context, tx DBTX, settlements []*models.Settlement) error

	// GetByID returns a settlement with its items, ErrNotFound when absent
	GetByID(ctx context.Context, db DBTX, id string) (*models.Settlement, error)

	// ListBySeller returns the seller's settlements, newest period first
	ListBySeller(ctx context.Context, db DBTX, sellerID string, limit, offset int32) ([]models.Settlement, error)

	// ListByPeriod returns all settlements whose period matches the given day,
	// optionally narrowed to one status (empty status means all)
	ListByPeriod(ctx context.Context, db DBTX, periodStart, periodEnd time.Time, status models.SettlementStatus, limit, offset int32) ([]models.Settlement, error)

	// Statistics aggregates settlements for one settlement day
	Statistics(ctx context.Context, db DBTX, periodStart, periodEnd time.Time) (*SettlementStatistics, error)
}

// SettlementStatistics is the per-day aggregate view used by the admin API
type SettlementStatistics struct {
	TotalCount       int64
	PendingCount     int64
	ConfirmedCount   int64
	PaidCount        int64
	CancelledCount   int64
	TotalGrossSales  decimal.Decimal
	TotalRefund      decimal.Decimal
	TotalCommission  decimal.Decimal
	TotalTax         decimal.Decimal
	TotalPayout      decimal.Decimal
}
