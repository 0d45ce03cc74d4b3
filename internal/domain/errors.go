package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is the sentinel returned by repositories when a lookup
// matches no row. Callers that treat absence as a normal outcome test
// for it with errors.Is.
var ErrNotFound = errors.New("not found")

// AlreadyExistsError signals that the per-seller idempotency guard
// tripped: a settlement already exists for the (seller, cycle, period)
// key. This is an expected business outcome, not a defect, and is never
// counted as a failure.
type AlreadyExistsError struct {
	SellerID    string
	SellerCode  string
	PeriodStart string
	PeriodEnd   string
	Status      string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("settlement already exists: seller=%s, period=%s~%s, status=%s",
		e.SellerCode, e.PeriodStart, e.PeriodEnd, e.Status)
}

// ProcessingError wraps a data-fetch or computation failure for a single
// seller. It carries the seller identity so the skip event can name the
// seller it excluded.
type ProcessingError struct {
	SellerID   string
	SellerCode string
	Err        error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("settlement processing failed for seller %s: %v", e.SellerCode, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// WriteError wraps a persistence failure for one chunk. Every seller in
// the affected chunk is counted as failed.
type WriteError struct {
	ChunkSize int
	Err       error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("settlement chunk write failed (%d settlements): %v", e.ChunkSize, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// IsAlreadyExists reports whether err is the idempotency-guard outcome
func IsAlreadyExists(err error) bool {
	var target *AlreadyExistsError
	return errors.As(err, &target)
}

// IsProcessingError reports whether err is a per-seller processing failure
func IsProcessingError(err error) bool {
	var target *ProcessingError
	return errors.As(err, &target)
}

// IsWriteError reports whether err is a chunk persistence failure
func IsWriteError(err error) bool {
	var target *WriteError
	return errors.As(err, &target)
}
