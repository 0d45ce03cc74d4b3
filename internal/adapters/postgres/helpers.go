package postgres

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/markethub/settlement-service/internal/domain/ports"
	"github.com/shopspring/decimal"
)

// exec picks the transaction when one is supplied, otherwise the pool
func (r *baseRepo) exec(db ports.DBTX) ports.DBTX {
	if db != nil {
		return db
	}
	return r.pool
}

// baseRepo holds the shared pool handle for the repositories in this package
type baseRepo struct {
	pool ports.DBTX
}

// numericFromDecimal converts a decimal.Decimal to pgtype.Numeric
func numericFromDecimal(d decimal.Decimal) (pgtype.Numeric, error) {
	n := pgtype.Numeric{}
	if err := n.Scan(d.String()); err != nil {
		return n, fmt.Errorf("convert decimal %s: %w", d.String(), err)
	}
	return n, nil
}

// decimalFromNumeric converts pgtype.Numeric to decimal.Decimal
func decimalFromNumeric(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Zero, nil
	}
	str, err := n.MarshalJSON()
	if err != nil {
		return decimal.Zero, fmt.Errorf("marshal numeric: %w", err)
	}
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}
	return decimal.NewFromString(string(str))
}

// dateFromTime converts a UTC midnight time to pgtype.Date
func dateFromTime(t time.Time) pgtype.Date {
	return pgtype.Date{Time: t.UTC(), Valid: true}
}

// timeFromDate converts a pgtype.Date to a UTC midnight time
func timeFromDate(d pgtype.Date) time.Time {
	y, m, day := d.Time.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// nullableTime converts a *time.Time to pgtype.Timestamptz
func nullableTime(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: t.UTC(), Valid: true}
}

// timePtr converts a pgtype.Timestamptz to *time.Time
func timePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	utc := t.Time.UTC()
	return &utc
}

// nullText creates a pgtype.Text, invalid for the empty string
func nullText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}
