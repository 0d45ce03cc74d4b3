package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementStatus represents the lifecycle state of a settlement
type SettlementStatus string

const (
	SettlementPending   SettlementStatus = "PENDING"
	SettlementConfirmed SettlementStatus = "CONFIRMED"
	SettlementPaid      SettlementStatus = "PAID"
	SettlementCancelled SettlementStatus = "CANCELLED"
)

// CycleType represents the settlement period granularity
type CycleType string

const (
	CycleDaily CycleType = "DAILY"
)

// Settlement is the computed payout record for one seller over one period.
// At most one non-cancelled settlement may exist per
// (seller_id, cycle_type, period_start, period_end); the batch pipeline
// creates settlements in PENDING and never mutates them afterwards.
type Settlement struct {
	ID       string
	SellerID string

	CycleType   CycleType
	PeriodStart time.Time // date, midnight UTC
	PeriodEnd   time.Time // date, midnight UTC

	// All amounts carry exactly 2 fractional digits, rounded HALF_UP.
	GrossSalesAmount decimal.Decimal
	RefundAmount     decimal.Decimal
	CommissionRate   decimal.Decimal
	CommissionAmount decimal.Decimal
	TaxAmount        decimal.Decimal
	AdjustmentAmount decimal.Decimal
	PayoutAmount     decimal.Decimal

	Status SettlementStatus

	// Post-settlement lifecycle timestamps; set by the confirmation and
	// disbursement flows, never by the batch pipeline.
	ConfirmedAt  *time.Time
	PaidAt       *time.Time
	CancelledAt  *time.Time
	CancelReason string

	// Version is the optimistic lock counter for out-of-band mutation.
	Version int64

	Items []SettlementItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSettlement creates a PENDING settlement for the given seller and period
func NewSettlement(sellerID string, cycleType CycleType, periodStart, periodEnd time.Time) *Settlement {
	return &Settlement{
		ID:          uuid.New().String(),
		SellerID:    sellerID,
		CycleType:   cycleType,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Status:      SettlementPending,
	}
}

// AttachItems links the items to this settlement by setting the owning
// back-reference. It is the one-time attach step performed immediately
// before persistence.
func (s *Settlement) AttachItems(items []SettlementItem) {
	for i := range items {
		items[i].SettlementID = s.ID
	}
	s.Items = items
}

// SettlementItemType classifies a settlement line
type SettlementItemType string

const (
	ItemSale       SettlementItemType = "SALE"
	ItemRefund     SettlementItemType = "REFUND"
	ItemAdjustment SettlementItemType = "ADJUSTMENT"
)

// SettlementSource identifies the record a settlement line was derived from
type SettlementSource string

const (
	SourceOrderItem SettlementSource = "ORDER_ITEM"
	SourceRefund    SettlementSource = "REFUND"
	SourceManual    SettlementSource = "MANUAL"
)

// SettlementItem is one line contributing to a settlement's totals.
// REFUND items carry negated gross/commission amounts so the item sum
// participates directly in the settlement aggregates.
type SettlementItem struct {
	ID           string
	SettlementID string

	ItemType   SettlementItemType
	SourceType SettlementSource
	SourceID   string

	GrossAmount      decimal.Decimal
	CommissionRate   decimal.Decimal
	CommissionAmount decimal.Decimal
	NetAmount        decimal.Decimal
	Description      string

	CreatedAt time.Time
}

// NewSaleItem builds a SALE line for one order item
func NewSaleItem(orderItemID string, amount, commissionRate, commissionAmount decimal.Decimal) SettlementItem {
	return SettlementItem{
		ID:               uuid.New().String(),
		ItemType:         ItemSale,
		SourceType:       SourceOrderItem,
		SourceID:         orderItemID,
		GrossAmount:      amount,
		CommissionRate:   commissionRate,
		CommissionAmount: commissionAmount,
		NetAmount:        amount.Sub(commissionAmount),
		Description:      "sale settlement",
	}
}

// NewRefundItem builds a REFUND line for one completed refund.
// Gross and commission are negated so totals net out.
func NewRefundItem(refundID string, refundAmount, commissionRate, commissionAmount decimal.Decimal) SettlementItem {
	gross := refundAmount.Neg()
	commission := commissionAmount.Neg()
	return SettlementItem{
		ID:               uuid.New().String(),
		ItemType:         ItemRefund,
		SourceType:       SourceRefund,
		SourceID:         refundID,
		GrossAmount:      gross,
		CommissionRate:   commissionRate,
		CommissionAmount: commission,
		NetAmount:        gross.Add(commission),
		Description:      "refund deduction",
	}
}

// NewAdjustmentItem builds a MANUAL adjustment line. The batch pipeline
// never produces these; they are reserved for manual entries.
func NewAdjustmentItem(description string, amount decimal.Decimal) SettlementItem {
	return SettlementItem{
		ID:               uuid.New().String(),
		ItemType:         ItemAdjustment,
		SourceType:       SourceManual,
		GrossAmount:      decimal.Zero,
		CommissionRate:   decimal.Zero,
		CommissionAmount: decimal.Zero,
		NetAmount:        amount,
		Description:      description,
	}
}

// IsRefund reports whether the line is a refund deduction
func (i *SettlementItem) IsRefund() bool {
	return i.ItemType == ItemRefund
}
