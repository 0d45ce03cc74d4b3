package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/markethub/settlement-service/internal/domain"
	"github.com/markethub/settlement-service/internal/domain/models"
	"github.com/markethub/settlement-service/internal/domain/ports"
	"github.com/markethub/settlement-service/internal/services/commission"
	"github.com/markethub/settlement-service/pkg/timeutil"
	"github.com/shopspring/decimal"
)

// Processor computes one seller's settlement for a target date. It only
// produces data; persistence belongs to the ChunkWriter.
type Processor struct {
	db             ports.DBPort
	settlementRepo ports.SettlementRepository
	orderRepo      ports.OrderRepository
	refundRepo     ports.RefundRepository
	calc           *commission.Calculator
	logger         ports.Logger
}

// NewProcessor creates a settlement processor
func NewProcessor(
	db ports.DBPort,
	settlementRepo ports.SettlementRepository,
	orderRepo ports.OrderRepository,
	refundRepo ports.RefundRepository,
	calc *commission.Calculator,
	logger ports.Logger,
) *Processor {
	return &Processor{
		db:             db,
		settlementRepo: settlementRepo,
		orderRepo:      orderRepo,
		refundRepo:     refundRepo,
		calc:           calc,
		logger:         logger,
	}
}

// Process computes the seller's daily settlement:
//
//  1. idempotency check against the (seller, DAILY, date, date) key
//  2. fetch settlement-target orders and completed refunds for the day
//  3. no data at all -> OutcomeNoData
//  4. compute amounts and build Settlement(PENDING) plus its items
//
// Fetch or computation failures come back as OutcomeFailed wrapping a
// ProcessingError with the seller identity.
func (p *Processor) Process(ctx context.Context, seller models.Seller, targetDate time.Time) Outcome {
	periodStart := timeutil.StartOfDay(targetDate)
	periodEnd := periodStart

	p.logger.Debug("processing seller",
		ports.String("seller_code", seller.SellerCode),
		ports.String("target_date", timeutil.FormatDate(targetDate)))

	// Idempotency check. An existing non-cancelled settlement for the key
	// means this seller is already settled for the day.
	existing, err := p.settlementRepo.FindByIdempotencyKey(ctx, nil, seller.ID, models.CycleDaily, periodStart, periodEnd)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return p.failed(seller, fmt.Errorf("idempotency check: %w", err))
	}
	if existing != nil {
		p.logger.Info("settlement already exists, skipping seller",
			ports.String("seller_code", seller.SellerCode),
			ports.String("status", string(existing.Status)))
		return Outcome{
			Kind: OutcomeAlreadyExists,
			Err: &domain.AlreadyExistsError{
				SellerID:    seller.ID,
				SellerCode:  seller.SellerCode,
				PeriodStart: timeutil.FormatDate(periodStart),
				PeriodEnd:   timeutil.FormatDate(periodEnd),
				Status:      string(existing.Status),
			},
		}
	}

	windowStart, windowEnd := timeutil.DayWindow(targetDate)

	orders, err := p.orderRepo.ListSettlementTargetOrdersWithItems(ctx, nil, seller.ID, windowStart, windowEnd)
	if err != nil {
		return p.failed(seller, fmt.Errorf("fetch orders: %w", err))
	}

	refunds, err := p.refundRepo.ListCompletedRefunds(ctx, nil, seller.ID, windowStart, windowEnd)
	if err != nil {
		return p.failed(seller, fmt.Errorf("fetch refunds: %w", err))
	}

	if len(orders) == 0 && len(refunds) == 0 {
		p.logger.Debug("no settlement target data for seller",
			ports.String("seller_code", seller.SellerCode))
		return Outcome{Kind: OutcomeNoData}
	}

	amounts := p.calculateAmounts(orders, refunds, seller.CommissionRate)

	stl := models.NewSettlement(seller.ID, models.CycleDaily, periodStart, periodEnd)
	stl.GrossSalesAmount = amounts.grossSales
	stl.RefundAmount = amounts.refund
	stl.CommissionRate = seller.CommissionRate
	stl.CommissionAmount = amounts.commission
	stl.TaxAmount = amounts.tax
	stl.AdjustmentAmount = amounts.adjustment
	stl.PayoutAmount = amounts.payout

	items := p.buildItems(orders, refunds, seller.CommissionRate)

	p.logger.Info("settlement computed",
		ports.String("seller_code", seller.SellerCode),
		ports.String("gross_sales", amounts.grossSales.StringFixed(2)),
		ports.String("refund", amounts.refund.StringFixed(2)),
		ports.String("commission", amounts.commission.StringFixed(2)),
		ports.String("tax", amounts.tax.StringFixed(2)),
		ports.String("payout", amounts.payout.StringFixed(2)),
		ports.Int("items", len(items)))

	return Outcome{Kind: OutcomeSettled, Draft: &Draft{
		Seller:     seller,
		Settlement: stl,
		Items:      items,
	}}
}

func (p *Processor) failed(seller models.Seller, err error) Outcome {
	p.logger.Error("settlement processing failed",
		ports.String("seller_code", seller.SellerCode),
		ports.Err(err))
	return Outcome{Kind: OutcomeFailed, Err: &domain.ProcessingError{
		SellerID:   seller.ID,
		SellerCode: seller.SellerCode,
		Err:        err,
	}}
}

type settlementAmounts struct {
	grossSales decimal.Decimal
	refund     decimal.Decimal
	commission decimal.Decimal
	tax        decimal.Decimal
	adjustment decimal.Decimal
	payout     decimal.Decimal
}

// calculateAmounts applies the settlement formula:
//
//	netSales   = grossSales - refund
//	commission = netSales * rate
//	tax        = commission * 10%
//	payout     = netSales - commission - tax + adjustment
func (p *Processor) calculateAmounts(orders []models.Order, refunds []models.Refund, rate decimal.Decimal) settlementAmounts {
	var lineTotals []decimal.Decimal
	for i := range orders {
		for j := range orders[i].Items {
			lineTotals = append(lineTotals, orders[i].Items[j].TotalAmount)
		}
	}
	grossSales := p.calc.SumValues(lineTotals...)

	var refundTotals []decimal.Decimal
	for i := range refunds {
		refundTotals = append(refundTotals, refunds[i].RefundAmount)
	}
	refundTotal := p.calc.SumValues(refundTotals...)

	netSales := p.calc.NetAmount(&grossSales, &refundTotal)
	comm := p.calc.Commission(&netSales, &rate)
	tax := p.calc.Tax(&comm)

	// Adjustment stays zero in the batch path; reserved for manual entries.
	adjustment := p.calc.Normalize(nil)

	payout := p.calc.Payout(&netSales, &comm, &tax, &adjustment)

	return settlementAmounts{
		grossSales: p.calc.Normalize(&grossSales),
		refund:     p.calc.Normalize(&refundTotal),
		commission: comm,
		tax:        tax,
		adjustment: adjustment,
		payout:     payout,
	}
}

// buildItems produces one SALE line per order item and one REFUND line per
// refund; refunds carry negated amounts
func (p *Processor) buildItems(orders []models.Order, refunds []models.Refund, rate decimal.Decimal) []models.SettlementItem {
	var items []models.SettlementItem

	for i := range orders {
		for j := range orders[i].Items {
			line := &orders[i].Items[j]
			lineCommission := p.calc.Commission(&line.TotalAmount, &rate)
			items = append(items, models.NewSaleItem(line.ID, line.TotalAmount, rate, lineCommission))
		}
	}

	for i := range refunds {
		r := &refunds[i]
		refundCommission := p.calc.Commission(&r.RefundAmount, &rate)
		items = append(items, models.NewRefundItem(r.ID, r.RefundAmount, rate, refundCommission))
	}

	return items
}
