package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the fulfillment state of an order
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// SettlementTargetStatuses are the order statuses that qualify for settlement
var SettlementTargetStatuses = []OrderStatus{OrderConfirmed, OrderShipped, OrderDelivered}

// Order is a purchase placed with a seller. Orders are read-only input to
// the settlement pipeline; the relation to its items is ID-based and the
// items are loaded alongside the order by the repository.
type Order struct {
	ID          string
	OrderNo     string
	SellerID    string
	OrderStatus OrderStatus
	OrderDate   time.Time
	TotalAmount decimal.Decimal
	ShippingFee decimal.Decimal

	Items []OrderItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem is a single line of an order. TotalAmount is the settled line
// total (unit price times quantity) and is the basis for SALE settlement items.
type OrderItem struct {
	ID          string
	OrderID     string
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int32
	TotalAmount decimal.Decimal
	IsRefunded  bool

	CreatedAt time.Time
}
