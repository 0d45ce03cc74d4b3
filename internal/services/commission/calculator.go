package commission

import "github.com/shopspring/decimal"

// Amount calculation rules:
//   - decimal arithmetic throughout (never binary floating point)
//   - HALF_UP rounding (banking standard)
//   - every result carries exactly 2 fractional digits
const decimalScale = 2

var taxRate = decimal.NewFromFloat(0.10) // VAT: 10% of commission

// Calculator provides the pure settlement arithmetic. Every method is
// total: nil-pointer inputs are treated as zero and no method can fail.
type Calculator struct{}

// NewCalculator creates a Calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Commission computes amount * rate, rounded to 2 decimals.
// A nil amount or rate yields zero.
func (c *Calculator) Commission(amount, rate *decimal.Decimal) decimal.Decimal {
	if amount == nil || rate == nil {
		return zero()
	}
	return amount.Mul(*rate).Round(decimalScale)
}

// Tax computes the VAT on a commission amount (10%)
func (c *Calculator) Tax(commissionAmount *decimal.Decimal) decimal.Decimal {
	if commissionAmount == nil {
		return zero()
	}
	return commissionAmount.Mul(taxRate).Round(decimalScale)
}

// NetAmount computes gross minus deduction; a nil gross yields zero and a
// nil deduction deducts nothing
func (c *Calculator) NetAmount(gross, deduction *decimal.Decimal) decimal.Decimal {
	if gross == nil {
		return zero()
	}
	d := decimal.Zero
	if deduction != nil {
		d = *deduction
	}
	return gross.Sub(d).Round(decimalScale)
}

// Payout computes netSales - commission - tax + adjustment, each operand
// nil-safe zero
func (c *Calculator) Payout(netSales, commission, tax, adjustment *decimal.Decimal) decimal.Decimal {
	net := valueOrZero(netSales)
	comm := valueOrZero(commission)
	t := valueOrZero(tax)
	adj := valueOrZero(adjustment)

	return net.Sub(comm).Sub(t).Add(adj).Round(decimalScale)
}

// Sum adds the given amounts, skipping nils, normalized to 2 decimals
func (c *Calculator) Sum(amounts ...*decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, amount := range amounts {
		if amount != nil {
			total = total.Add(*amount)
		}
	}
	return total.Round(decimalScale)
}

// SumValues adds the given amounts, normalized to 2 decimals
func (c *Calculator) SumValues(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount)
	}
	return total.Round(decimalScale)
}

// Normalize rounds an amount to 2 decimals HALF_UP; nil yields zero
func (c *Calculator) Normalize(amount *decimal.Decimal) decimal.Decimal {
	if amount == nil {
		return zero()
	}
	return amount.Round(decimalScale)
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func zero() decimal.Decimal {
	return decimal.Zero.Round(decimalScale)
}
