package ports

import (
	"context"
	"time"

	"github.com/markethub/settlement-service/internal/domain/models"
)

// RefundRepository reads completed refunds. Refunds are never written by
// this service.
type RefundRepository interface {
	// ListCompletedRefunds returns the seller's COMPLETED refunds whose
	// refunded-at timestamp falls inside [periodStart, periodEnd].
	ListCompletedRefunds(ctx context.Context, db DBTX, sellerID string, periodStart, periodEnd time.Time) ([]models.Refund, error)
}
