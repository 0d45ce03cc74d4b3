package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/markethub/settlement-service/internal/domain/models"
	"github.com/markethub/settlement-service/internal/domain/ports"
)

// RefundRepository implements ports.RefundRepository. Refunds are read-only
// marketplace data; this repository never writes.
type RefundRepository struct {
	baseRepo
}

// NewRefundRepository creates a refund repository
func NewRefundRepository(db ports.DBPort) *RefundRepository {
	return &RefundRepository{baseRepo{pool: db.GetDB()}}
}

// ListCompletedRefunds returns the seller's COMPLETED refunds whose
// refunded-at timestamp falls inside the period
func (r *RefundRepository) ListCompletedRefunds(ctx context.Context, db ports.DBTX, sellerID string, periodStart, periodEnd time.Time) ([]models.Refund, error) {
	rows, err := r.exec(db).Query(ctx, `
		SELECT r.id, r.order_item_id, o.seller_id, r.refund_type, r.refund_amount,
		       r.refund_quantity, r.refund_reason, r.refund_status, r.refunded_at, r.created_at
		FROM refunds r
		JOIN order_items oi ON oi.id = r.order_item_id
		JOIN orders o ON o.id = oi.order_id
		WHERE o.seller_id = $1
		  AND r.refund_status = $2
		  AND r.refunded_at BETWEEN $3 AND $4
		ORDER BY r.refunded_at, r.id`,
		sellerID, string(models.RefundCompleted), periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("list completed refunds: %w", err)
	}
	defer rows.Close()

	var refunds []models.Refund
	for rows.Next() {
		var rf models.Refund
		var refundType, status string
		var amount pgtype.Numeric
		var refundedAt pgtype.Timestamptz

		if err := rows.Scan(&rf.ID, &rf.OrderItemID, &rf.SellerID, &refundType, &amount,
			&rf.RefundQty, &rf.RefundReason, &status, &refundedAt, &rf.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan refund: %w", err)
		}
		rf.RefundType = models.RefundType(refundType)
		rf.RefundStatus = models.RefundStatus(status)
		rf.RefundedAt = timePtr(refundedAt)
		if rf.RefundAmount, err = decimalFromNumeric(amount); err != nil {
			return nil, fmt.Errorf("refund %s amount: %w", rf.ID, err)
		}

		refunds = append(refunds, rf)
	}
	return refunds, rows.Err()
}
