package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RefundStatus represents the processing state of a refund
type RefundStatus string

const (
	RefundRequested RefundStatus = "REQUESTED"
	RefundApproved  RefundStatus = "APPROVED"
	RefundCompleted RefundStatus = "COMPLETED"
	RefundRejected  RefundStatus = "REJECTED"
)

// RefundType distinguishes full from partial refunds
type RefundType string

const (
	RefundFull    RefundType = "FULL"
	RefundPartial RefundType = "PARTIAL"
)

// Refund is a buyer refund against an order item. Only COMPLETED refunds
// participate in settlement, where they appear as negated REFUND items.
type Refund struct {
	ID           string
	OrderItemID  string
	SellerID     string
	RefundType   RefundType
	RefundAmount decimal.Decimal
	RefundQty    int32
	RefundReason string
	RefundStatus RefundStatus
	RefundedAt   *time.Time

	CreatedAt time.Time
}
