package settlement

import (
	"github.com/markethub/settlement-service/internal/domain/models"
)

// Draft carries one computed settlement and its not-yet-attached items
// between the processor and the chunk writer. The items are linked to the
// settlement (back-reference set) only at write time.
type Draft struct {
	Seller     models.Seller
	Settlement *models.Settlement
	Items      []models.SettlementItem
}

// SaleItemCount returns the number of SALE lines in the draft
func (d *Draft) SaleItemCount() int {
	n := 0
	for i := range d.Items {
		if d.Items[i].ItemType == models.ItemSale {
			n++
		}
	}
	return n
}

// RefundItemCount returns the number of REFUND lines in the draft
func (d *Draft) RefundItemCount() int {
	n := 0
	for i := range d.Items {
		if d.Items[i].ItemType == models.ItemRefund {
			n++
		}
	}
	return n
}

// OutcomeKind discriminates the per-seller processing result
type OutcomeKind int

const (
	// OutcomeSettled means a settlement draft was produced
	OutcomeSettled OutcomeKind = iota
	// OutcomeAlreadyExists means the idempotency guard tripped; the seller
	// is skipped without counting as a failure
	OutcomeAlreadyExists
	// OutcomeNoData means the seller had no qualifying orders or refunds;
	// not an error and not even a skip event
	OutcomeNoData
	// OutcomeFailed means fetching or computing failed for this seller
	OutcomeFailed
)

// Outcome is the discriminated per-seller result consumed by the
// orchestrator, so "already exists" is ordinary control flow rather than
// an error side channel.
type Outcome struct {
	Kind  OutcomeKind
	Draft *Draft // set when Kind == OutcomeSettled
	Err   error  // set when Kind == OutcomeAlreadyExists or OutcomeFailed
}
