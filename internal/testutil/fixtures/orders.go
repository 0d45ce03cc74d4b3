package fixtures

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/markethub/settlement-service/internal/domain/models"
	"github.com/shopspring/decimal"
)

// OrderBuilder provides a fluent API for building test orders with items.
type OrderBuilder struct {
	order models.Order
}

// NewOrder creates a new order builder with sensible defaults.
func NewOrder() *OrderBuilder {
	id := uuid.New().String()
	return &OrderBuilder{
		order: models.Order{
			ID:          id,
			OrderNo:     "ORD-" + id[:8],
			SellerID:    uuid.New().String(),
			OrderStatus: models.OrderDelivered,
			OrderDate:   time.Now().UTC(),
			TotalAmount: decimal.Zero,
			ShippingFee: decimal.Zero,
			CreatedAt:   time.Now().UTC(),
			UpdatedAt:   time.Now().UTC(),
		},
	}
}

func (b *OrderBuilder) WithID(id string) *OrderBuilder {
	b.order.ID = id
	return b
}

func (b *OrderBuilder) WithSellerID(sellerID string) *OrderBuilder {
	b.order.SellerID = sellerID
	return b
}

func (b *OrderBuilder) WithStatus(status models.OrderStatus) *OrderBuilder {
	b.order.OrderStatus = status
	return b
}

func (b *OrderBuilder) WithOrderDate(date time.Time) *OrderBuilder {
	b.order.OrderDate = date
	return b
}

// WithItem appends a line item and keeps the order total in sync.
func (b *OrderBuilder) WithItem(productName, unitPrice string, quantity int32) *OrderBuilder {
	price := decimal.RequireFromString(unitPrice)
	total := price.Mul(decimal.NewFromInt32(quantity))
	b.order.Items = append(b.order.Items, models.OrderItem{
		ID:          uuid.New().String(),
		OrderID:     b.order.ID,
		ProductName: productName,
		UnitPrice:   price,
		Quantity:    quantity,
		TotalAmount: total,
		CreatedAt:   time.Now().UTC(),
	})
	b.order.TotalAmount = b.order.TotalAmount.Add(total)
	return b
}

// Build returns the constructed order.
func (b *OrderBuilder) Build() models.Order {
	if len(b.order.Items) == 0 {
		// An order always ships with at least one line.
		b.WithItem(fmt.Sprintf("product-%s", b.order.ID[:8]), "10.00", 1)
	}
	return b.order
}
