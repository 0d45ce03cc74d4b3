package fixtures

import (
	"time"

	"github.com/google/uuid"
	"github.com/markethub/settlement-service/internal/domain/models"
	"github.com/shopspring/decimal"
)

// RefundBuilder provides a fluent API for building test refunds.
type RefundBuilder struct {
	refund models.Refund
}

// NewRefund creates a new completed refund builder with sensible defaults.
func NewRefund() *RefundBuilder {
	now := time.Now().UTC()
	return &RefundBuilder{
		refund: models.Refund{
			ID:           uuid.New().String(),
			OrderItemID:  uuid.New().String(),
			SellerID:     uuid.New().String(),
			RefundType:   models.RefundPartial,
			RefundAmount: decimal.RequireFromString("10.00"),
			RefundQty:    1,
			RefundReason: "customer request",
			RefundStatus: models.RefundCompleted,
			RefundedAt:   &now,
			CreatedAt:    now,
		},
	}
}

func (b *RefundBuilder) WithID(id string) *RefundBuilder {
	b.refund.ID = id
	return b
}

func (b *RefundBuilder) WithSellerID(sellerID string) *RefundBuilder {
	b.refund.SellerID = sellerID
	return b
}

func (b *RefundBuilder) WithOrderItemID(orderItemID string) *RefundBuilder {
	b.refund.OrderItemID = orderItemID
	return b
}

func (b *RefundBuilder) WithAmount(amount string) *RefundBuilder {
	b.refund.RefundAmount = decimal.RequireFromString(amount)
	return b
}

func (b *RefundBuilder) WithType(refundType models.RefundType) *RefundBuilder {
	b.refund.RefundType = refundType
	return b
}

func (b *RefundBuilder) WithStatus(status models.RefundStatus) *RefundBuilder {
	b.refund.RefundStatus = status
	return b
}

func (b *RefundBuilder) WithRefundedAt(ts time.Time) *RefundBuilder {
	b.refund.RefundedAt = &ts
	return b
}

// Build returns the constructed refund.
func (b *RefundBuilder) Build() models.Refund {
	return b.refund
}
