package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/markethub/settlement-service/internal/domain"
	"github.com/markethub/settlement-service/internal/domain/models"
	"github.com/markethub/settlement-service/internal/domain/ports"
)

// SellerRepository implements ports.SellerRepository with raw pgx queries
type SellerRepository struct {
	baseRepo
}

// NewSellerRepository creates a seller repository
func NewSellerRepository(db ports.DBPort) *SellerRepository {
	return &SellerRepository{baseRepo{pool: db.GetDB()}}
}

const sellerColumns = `id, seller_code, seller_name, commission_rate, status, created_at, updated_at`

// ListActive returns one page of ACTIVE sellers ordered by ID so the batch
// sees a stable sequence across pages
func (r *SellerRepository) ListActive(ctx context.Context, db ports.DBTX, limit, offset int32) ([]models.Seller, error) {
	rows, err := r.exec(db).Query(ctx, `
		SELECT `+sellerColumns+`
		FROM sellers
		WHERE status = $1
		ORDER BY id
		LIMIT $2 OFFSET $3`,
		string(models.SellerActive), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list active sellers: %w", err)
	}
	defer rows.Close()

	var sellers []models.Seller
	for rows.Next() {
		s, err := scanSeller(rows)
		if err != nil {
			return nil, err
		}
		sellers = append(sellers, s)
	}
	return sellers, rows.Err()
}

// CountActive returns the number of ACTIVE sellers
func (r *SellerRepository) CountActive(ctx context.Context, db ports.DBTX) (int64, error) {
	var count int64
	err := r.exec(db).QueryRow(ctx,
		`SELECT COUNT(*) FROM sellers WHERE status = $1`,
		string(models.SellerActive)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active sellers: %w", err)
	}
	return count, nil
}

// GetByID returns a single seller, domain.ErrNotFound when absent
func (r *SellerRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*models.Seller, error) {
	row := r.exec(db).QueryRow(ctx,
		`SELECT `+sellerColumns+` FROM sellers WHERE id = $1`, id)

	s, err := scanSeller(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func scanSeller(row pgx.Row) (models.Seller, error) {
	var s models.Seller
	var rate pgtype.Numeric
	var status string

	if err := row.Scan(&s.ID, &s.SellerCode, &s.SellerName, &rate, &status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s, err
		}
		return s, fmt.Errorf("scan seller: %w", err)
	}

	parsed, err := decimalFromNumeric(rate)
	if err != nil {
		return s, fmt.Errorf("seller %s commission rate: %w", s.ID, err)
	}
	s.CommissionRate = parsed
	s.Status = models.SellerStatus(status)
	return s, nil
}
