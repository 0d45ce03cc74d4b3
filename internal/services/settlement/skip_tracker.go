package settlement

import (
	"sync"
	"time"

	"github.com/markethub/settlement-service/internal/domain"
	"github.com/markethub/settlement-service/internal/domain/models"
	"github.com/markethub/settlement-service/internal/domain/ports"
)

// SkipReason classifies why a seller was excluded from a run
type SkipReason string

const (
	SkipAlreadyExists   SkipReason = "ALREADY_EXISTS"
	SkipProcessingError SkipReason = "PROCESSING_ERROR"
	SkipWriteError      SkipReason = "WRITE_ERROR"
	SkipUnknown         SkipReason = "UNKNOWN"
)

// SkipEvent records one skipped seller for monitoring. Events live for a
// single job run and are never persisted.
type SkipEvent struct {
	SellerID   string
	SellerCode string
	SellerName string
	Reason     SkipReason
	Message    string
	SkippedAt  time.Time
}

// SkipTracker collects skip events for one run. Appends are safe for
// concurrent use should chunk processing ever be parallelized.
type SkipTracker struct {
	mu     sync.Mutex
	events []SkipEvent
	logger ports.Logger
}

// NewSkipTracker creates an empty tracker
func NewSkipTracker(logger ports.Logger) *SkipTracker {
	return &SkipTracker{logger: logger}
}

// ReasonForError maps an error to its skip classification
func ReasonForError(err error) SkipReason {
	switch {
	case domain.IsAlreadyExists(err):
		return SkipAlreadyExists
	case domain.IsProcessingError(err):
		return SkipProcessingError
	case domain.IsWriteError(err):
		return SkipWriteError
	default:
		return SkipUnknown
	}
}

// RecordError classifies err and records a skip event for the seller.
// AlreadyExists is informational; everything else is an error skip.
func (t *SkipTracker) RecordError(seller models.Seller, err error) {
	t.record(seller, ReasonForError(err), err.Error())
}

func (t *SkipTracker) record(seller models.Seller, reason SkipReason, message string) {
	event := SkipEvent{
		SellerID:   seller.ID,
		SellerCode: seller.SellerCode,
		SellerName: seller.SellerName,
		Reason:     reason,
		Message:    message,
		SkippedAt:  time.Now().UTC(),
	}

	t.mu.Lock()
	t.events = append(t.events, event)
	t.mu.Unlock()

	if reason == SkipAlreadyExists {
		t.logger.Info("seller skipped",
			ports.String("seller_code", seller.SellerCode),
			ports.String("reason", string(reason)))
		return
	}
	t.logger.Error("seller skipped",
		ports.String("seller_code", seller.SellerCode),
		ports.String("reason", string(reason)),
		ports.String("message", message))
}

// Events returns a copy of the recorded events
func (t *SkipTracker) Events() []SkipEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]SkipEvent, len(t.events))
	copy(out, t.events)
	return out
}

// ErrorSkipCount returns the number of skips that count toward the job's
// failure count. ALREADY_EXISTS skips are excluded.
func (t *SkipTracker) ErrorSkipCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for i := range t.events {
		if t.events[i].Reason != SkipAlreadyExists {
			n++
		}
	}
	return n
}

// ErrorMessages returns the messages of all error skips, in append order
func (t *SkipTracker) ErrorMessages() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var msgs []string
	for i := range t.events {
		if t.events[i].Reason != SkipAlreadyExists {
			msgs = append(msgs, t.events[i].Message)
		}
	}
	return msgs
}

// Clear discards all events
func (t *SkipTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = nil
}
