package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/markethub/settlement-service/internal/domain"
	"github.com/markethub/settlement-service/internal/domain/models"
	"github.com/markethub/settlement-service/internal/domain/ports"
)

// ErrDuplicateSettlement is returned when an insert races another writer
// on the settlement idempotency key
var ErrDuplicateSettlement = errors.New("duplicate settlement for idempotency key")

// SettlementRepository implements ports.SettlementRepository
type SettlementRepository struct {
	baseRepo
}

// NewSettlementRepository creates a settlement repository
func NewSettlementRepository(db ports.DBPort) *SettlementRepository {
	return &SettlementRepository{baseRepo{pool: db.GetDB()}}
}

const settlementColumns = `id, seller_id, cycle_type, period_start, period_end,
	gross_sales_amount, refund_amount, commission_rate, commission_amount,
	tax_amount, adjustment_amount, payout_amount, status,
	confirmed_at, paid_at, cancelled_at, cancel_reason, version, created_at, updated_at`

// FindByIdempotencyKey looks up the settlement for
// (seller_id, cycle_type, period_start, period_end), ignoring cancelled rows
func (r *SettlementRepository) FindByIdempotencyKey(ctx context.Context, db ports.DBTX, sellerID string, cycleType models.CycleType, periodStart, periodEnd time.Time) (*models.Settlement, error) {
	row := r.exec(db).QueryRow(ctx, `
		SELECT `+settlementColumns+`
		FROM settlements
		WHERE seller_id = $1 AND cycle_type = $2 AND period_start = $3 AND period_end = $4
		  AND status <> $5`,
		sellerID, string(cycleType), dateFromTime(periodStart), dateFromTime(periodEnd),
		string(models.SettlementCancelled))

	stl, err := scanSettlement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return stl, nil
}

// SaveAll inserts the settlements and their attached items. It is meant to
// run inside the chunk transaction passed by the caller, so a failure rolls
// back the whole chunk. A unique violation on the idempotency key surfaces
// as ErrDuplicateSettlement.
func (r *SettlementRepository) SaveAll(ctx context.Context, tx ports.DBTX, settlements []*models.Settlement) error {
	if len(settlements) == 0 {
		return nil
	}
	db := r.exec(tx)

	for _, stl := range settlements {
		gross, err := numericFromDecimal(stl.GrossSalesAmount)
		if err != nil {
			return err
		}
		refund, err := numericFromDecimal(stl.RefundAmount)
		if err != nil {
			return err
		}
		rate, err := numericFromDecimal(stl.CommissionRate)
		if err != nil {
			return err
		}
		commissionAmt, err := numericFromDecimal(stl.CommissionAmount)
		if err != nil {
			return err
		}
		tax, err := numericFromDecimal(stl.TaxAmount)
		if err != nil {
			return err
		}
		adjustment, err := numericFromDecimal(stl.AdjustmentAmount)
		if err != nil {
			return err
		}
		payout, err := numericFromDecimal(stl.PayoutAmount)
		if err != nil {
			return err
		}

		_, err = db.Exec(ctx, `
			INSERT INTO settlements (
				id, seller_id, cycle_type, period_start, period_end,
				gross_sales_amount, refund_amount, commission_rate, commission_amount,
				tax_amount, adjustment_amount, payout_amount, status, version
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			stl.ID, stl.SellerID, string(stl.CycleType),
			dateFromTime(stl.PeriodStart), dateFromTime(stl.PeriodEnd),
			gross, refund, rate, commissionAmt, tax, adjustment, payout,
			string(stl.Status), stl.Version)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return fmt.Errorf("%w: seller %s", ErrDuplicateSettlement, stl.SellerID)
			}
			return fmt.Errorf("insert settlement for seller %s: %w", stl.SellerID, err)
		}

		for i := range stl.Items {
			item := &stl.Items[i]
			if err := r.insertItem(ctx, db, item); err != nil {
				return err
			}
		}
	}

	return nil
}

func (r *SettlementRepository) insertItem(ctx context.Context, db ports.DBTX, item *models.SettlementItem) error {
	gross, err := numericFromDecimal(item.GrossAmount)
	if err != nil {
		return err
	}
	rate, err := numericFromDecimal(item.CommissionRate)
	if err != nil {
		return err
	}
	commissionAmt, err := numericFromDecimal(item.CommissionAmount)
	if err != nil {
		return err
	}
	net, err := numericFromDecimal(item.NetAmount)
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx, `
		INSERT INTO settlement_items (
			id, settlement_id, item_type, source_type, source_id,
			gross_amount, commission_rate, commission_amount, net_amount, description
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		item.ID, item.SettlementID, string(item.ItemType), string(item.SourceType),
		nullText(item.SourceID), gross, rate, commissionAmt, net, item.Description)
	if err != nil {
		return fmt.Errorf("insert settlement item %s: %w", item.ID, err)
	}
	return nil
}

// GetByID returns a settlement with its items, domain.ErrNotFound when absent
func (r *SettlementRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*models.Settlement, error) {
	row := r.exec(db).QueryRow(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE id = $1`, id)

	stl, err := scanSettlement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	items, err := r.listItems(ctx, db, id)
	if err != nil {
		return nil, err
	}
	stl.Items = items
	return stl, nil
}

func (r *SettlementRepository) listItems(ctx context.Context, db ports.DBTX, settlementID string) ([]models.SettlementItem, error) {
	rows, err := r.exec(db).Query(ctx, `
		SELECT id, settlement_id, item_type, source_type, source_id,
		       gross_amount, commission_rate, commission_amount, net_amount, description, created_at
		FROM settlement_items
		WHERE settlement_id = $1
		ORDER BY id`,
		settlementID)
	if err != nil {
		return nil, fmt.Errorf("list settlement items: %w", err)
	}
	defer rows.Close()

	var items []models.SettlementItem
	for rows.Next() {
		var item models.SettlementItem
		var itemType, sourceType string
		var sourceID pgtype.Text
		var gross, rate, commissionAmt, net pgtype.Numeric

		if err := rows.Scan(&item.ID, &item.SettlementID, &itemType, &sourceType, &sourceID,
			&gross, &rate, &commissionAmt, &net, &item.Description, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan settlement item: %w", err)
		}
		item.ItemType = models.SettlementItemType(itemType)
		item.SourceType = models.SettlementSource(sourceType)
		item.SourceID = sourceID.String
		if item.GrossAmount, err = decimalFromNumeric(gross); err != nil {
			return nil, err
		}
		if item.CommissionRate, err = decimalFromNumeric(rate); err != nil {
			return nil, err
		}
		if item.CommissionAmount, err = decimalFromNumeric(commissionAmt); err != nil {
			return nil, err
		}
		if item.NetAmount, err = decimalFromNumeric(net); err != nil {
			return nil, err
		}

		items = append(items, item)
	}
	return items, rows.Err()
}

// ListBySeller returns the seller's settlements, newest period first
func (r *SettlementRepository) ListBySeller(ctx context.Context, db ports.DBTX, sellerID string, limit, offset int32) ([]models.Settlement, error) {
	rows, err := r.exec(db).Query(ctx, `
		SELECT `+settlementColumns+`
		FROM settlements
		WHERE seller_id = $1
		ORDER BY period_start DESC, created_at DESC
		LIMIT $2 OFFSET $3`,
		sellerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list settlements by seller: %w", err)
	}
	defer rows.Close()

	return collectSettlements(rows)
}

// ListByPeriod returns settlements whose period matches [periodStart, periodEnd],
// narrowed to one status when status is non-empty
func (r *SettlementRepository) ListByPeriod(ctx context.Context, db ports.DBTX, periodStart, periodEnd time.Time, status models.SettlementStatus, limit, offset int32) ([]models.Settlement, error) {
	rows, err := r.exec(db).Query(ctx, `
		SELECT `+settlementColumns+`
		FROM settlements
		WHERE period_start = $1 AND period_end = $2
		  AND ($3 = '' OR status = $3)
		ORDER BY seller_id
		LIMIT $4 OFFSET $5`,
		dateFromTime(periodStart), dateFromTime(periodEnd), string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list settlements by period: %w", err)
	}
	defer rows.Close()

	return collectSettlements(rows)
}

// Statistics aggregates settlements for one settlement day
func (r *SettlementRepository) Statistics(ctx context.Context, db ports.DBTX, periodStart, periodEnd time.Time) (*ports.SettlementStatistics, error) {
	row := r.exec(db).QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'PENDING'),
		       COUNT(*) FILTER (WHERE status = 'CONFIRMED'),
		       COUNT(*) FILTER (WHERE status = 'PAID'),
		       COUNT(*) FILTER (WHERE status = 'CANCELLED'),
		       COALESCE(SUM(gross_sales_amount), 0),
		       COALESCE(SUM(refund_amount), 0),
		       COALESCE(SUM(commission_amount), 0),
		       COALESCE(SUM(tax_amount), 0),
		       COALESCE(SUM(payout_amount), 0)
		FROM settlements
		WHERE period_start = $1 AND period_end = $2`,
		dateFromTime(periodStart), dateFromTime(periodEnd))

	var stats ports.SettlementStatistics
	var gross, refund, commissionAmt, tax, payout pgtype.Numeric
	if err := row.Scan(&stats.TotalCount, &stats.PendingCount, &stats.ConfirmedCount,
		&stats.PaidCount, &stats.CancelledCount,
		&gross, &refund, &commissionAmt, &tax, &payout); err != nil {
		return nil, fmt.Errorf("settlement statistics: %w", err)
	}

	var err error
	if stats.TotalGrossSales, err = decimalFromNumeric(gross); err != nil {
		return nil, err
	}
	if stats.TotalRefund, err = decimalFromNumeric(refund); err != nil {
		return nil, err
	}
	if stats.TotalCommission, err = decimalFromNumeric(commissionAmt); err != nil {
		return nil, err
	}
	if stats.TotalTax, err = decimalFromNumeric(tax); err != nil {
		return nil, err
	}
	if stats.TotalPayout, err = decimalFromNumeric(payout); err != nil {
		return nil, err
	}

	return &stats, nil
}

func collectSettlements(rows pgx.Rows) ([]models.Settlement, error) {
	var settlements []models.Settlement
	for rows.Next() {
		stl, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		settlements = append(settlements, *stl)
	}
	return settlements, rows.Err()
}

func scanSettlement(row pgx.Row) (*models.Settlement, error) {
	var stl models.Settlement
	var cycleType, status string
	var periodStart, periodEnd pgtype.Date
	var gross, refund, rate, commissionAmt, tax, adjustment, payout pgtype.Numeric
	var confirmedAt, paidAt, cancelledAt pgtype.Timestamptz
	var cancelReason pgtype.Text

	err := row.Scan(&stl.ID, &stl.SellerID, &cycleType, &periodStart, &periodEnd,
		&gross, &refund, &rate, &commissionAmt, &tax, &adjustment, &payout, &status,
		&confirmedAt, &paidAt, &cancelledAt, &cancelReason, &stl.Version,
		&stl.CreatedAt, &stl.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan settlement: %w", err)
	}

	stl.CycleType = models.CycleType(cycleType)
	stl.Status = models.SettlementStatus(status)
	stl.PeriodStart = timeFromDate(periodStart)
	stl.PeriodEnd = timeFromDate(periodEnd)
	stl.ConfirmedAt = timePtr(confirmedAt)
	stl.PaidAt = timePtr(paidAt)
	stl.CancelledAt = timePtr(cancelledAt)
	stl.CancelReason = cancelReason.String

	if stl.GrossSalesAmount, err = decimalFromNumeric(gross); err != nil {
		return nil, err
	}
	if stl.RefundAmount, err = decimalFromNumeric(refund); err != nil {
		return nil, err
	}
	if stl.CommissionRate, err = decimalFromNumeric(rate); err != nil {
		return nil, err
	}
	if stl.CommissionAmount, err = decimalFromNumeric(commissionAmt); err != nil {
		return nil, err
	}
	if stl.TaxAmount, err = decimalFromNumeric(tax); err != nil {
		return nil, err
	}
	if stl.AdjustmentAmount, err = decimalFromNumeric(adjustment); err != nil {
		return nil, err
	}
	if stl.PayoutAmount, err = decimalFromNumeric(payout); err != nil {
		return nil, err
	}

	return &stl, nil
}
