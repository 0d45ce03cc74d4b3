package settlement

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/markethub/settlement-service/internal/domain"
	"github.com/markethub/settlement-service/internal/domain/models"
	"github.com/markethub/settlement-service/internal/domain/ports"
)

// ChunkWriter persists a chunk of settlement drafts inside a single
// transaction. One bad record rolls back only its own chunk; earlier chunks
// stay committed.
type ChunkWriter struct {
	db             ports.DBPort
	settlementRepo ports.SettlementRepository
	logger         ports.Logger
}

// NewChunkWriter creates a chunk writer
func NewChunkWriter(db ports.DBPort, settlementRepo ports.SettlementRepository, logger ports.Logger) *ChunkWriter {
	return &ChunkWriter{
		db:             db,
		settlementRepo: settlementRepo,
		logger:         logger,
	}
}

// Write attaches each draft's items to its settlement and saves the whole
// chunk transactionally. An empty chunk is a no-op success. Failures come
// back as a WriteError covering every settlement in the chunk.
func (w *ChunkWriter) Write(ctx context.Context, drafts []*Draft) error {
	if len(drafts) == 0 {
		return nil
	}

	settlements := make([]*models.Settlement, 0, len(drafts))
	for _, d := range drafts {
		d.Settlement.AttachItems(d.Items)
		settlements = append(settlements, d.Settlement)

		w.logger.Debug("prepared settlement for write",
			ports.String("seller_code", d.Seller.SellerCode),
			ports.String("payout", d.Settlement.PayoutAmount.StringFixed(2)),
			ports.Int("sale_items", d.SaleItemCount()),
			ports.Int("refund_items", d.RefundItemCount()))
	}

	err := w.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return w.settlementRepo.SaveAll(ctx, tx, settlements)
	})
	if err != nil {
		return &domain.WriteError{ChunkSize: len(settlements), Err: err}
	}

	w.logger.Info("settlement chunk written",
		ports.Int("settlements", len(settlements)))

	// Drop the item slices now that they are persisted so a long run over
	// many sellers does not accumulate every chunk's working set.
	for _, d := range drafts {
		d.Items = nil
		d.Settlement.Items = nil
	}

	return nil
}
