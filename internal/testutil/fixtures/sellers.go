package fixtures

import (
	"time"

	"github.com/google/uuid"
	"github.com/markethub/settlement-service/internal/domain/models"
	"github.com/shopspring/decimal"
)

// SellerBuilder provides a fluent API for building test sellers.
type SellerBuilder struct {
	seller models.Seller
}

// NewSeller creates a new seller builder with sensible defaults.
func NewSeller() *SellerBuilder {
	return &SellerBuilder{
		seller: models.Seller{
			ID:             uuid.New().String(),
			SellerCode:     "SEL-001",
			SellerName:     "Test Seller",
			CommissionRate: decimal.RequireFromString("0.1000"),
			Status:         models.SellerActive,
			CreatedAt:      time.Now().UTC(),
			UpdatedAt:      time.Now().UTC(),
		},
	}
}

func (b *SellerBuilder) WithID(id string) *SellerBuilder {
	b.seller.ID = id
	return b
}

func (b *SellerBuilder) WithCode(code string) *SellerBuilder {
	b.seller.SellerCode = code
	return b
}

func (b *SellerBuilder) WithName(name string) *SellerBuilder {
	b.seller.SellerName = name
	return b
}

func (b *SellerBuilder) WithCommissionRate(rate string) *SellerBuilder {
	b.seller.CommissionRate = decimal.RequireFromString(rate)
	return b
}

func (b *SellerBuilder) WithStatus(status models.SellerStatus) *SellerBuilder {
	b.seller.Status = status
	return b
}

// Build returns the constructed seller.
func (b *SellerBuilder) Build() models.Seller {
	return b.seller
}
