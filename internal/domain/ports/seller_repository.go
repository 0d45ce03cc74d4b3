package ports

import (
	"context"

	"github.com/markethub/settlement-service/internal/domain/models"
)

// SellerRepository supplies the sellers eligible for a settlement run.
// Pages are ordered by seller ID so a run sees a stable sequence.
type SellerRepository interface {
	// ListActive returns one page of ACTIVE sellers ordered by ID
	ListActive(ctx context.Context, db DBTX, limit, offset int32) ([]models.Seller, error)

	// CountActive returns the number of ACTIVE sellers
	CountActive(ctx context.Context, db DBTX) (int64, error)

	// GetByID returns a single seller, ErrNotFound when absent
	GetByID(ctx context.Context, db DBTX, id string) (*models.Seller, error)
}
