package ports

import (
	"context"
	"time"

	"github.com/markethub/settlement-service/internal/domain/models"
)

// OrderRepository reads settlement-target orders. Orders are never written
// by this service.
type OrderRepository interface {
	// ListSettlementTargetOrdersWithItems returns the seller's orders in
	// CONFIRMED, SHIPPED or DELIVERED status whose order date falls inside
	// [periodStart, periodEnd], each with its line items loaded.
	ListSettlementTargetOrdersWithItems(ctx context.Context, db DBTX, sellerID string, periodStart, periodEnd time.Time) ([]models.Order, error)
}
