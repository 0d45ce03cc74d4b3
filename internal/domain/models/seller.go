package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SellerStatus represents the marketplace status of a seller
type SellerStatus string

const (
	SellerActive    SellerStatus = "ACTIVE"
	SellerInactive  SellerStatus = "INACTIVE"
	SellerSuspended SellerStatus = "SUSPENDED"
)

// Seller is a marketplace seller eligible for payout settlement.
// The settlement pipeline treats sellers as read-only input.
type Seller struct {
	ID         string
	SellerCode string // unique business code
	SellerName string

	// CommissionRate is the marketplace take rate (0.1000 = 10%),
	// stored with 4 fractional digits.
	CommissionRate decimal.Decimal

	Status SellerStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive reports whether the seller participates in settlement runs
func (s *Seller) IsActive() bool {
	return s.Status == SellerActive
}
