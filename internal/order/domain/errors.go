package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("invalid_transition")

	// ErrNothingToUpdate rejects a transition to the order's current status.
	ErrNothingToUpdate = errors.New("nothing_to_update")

	// ErrTransitionConflict is returned when a concurrent transition won the
	// compare-and-swap on (order id, expected status).
	ErrTransitionConflict = errors.New("transition_conflict")

	ErrEmptyNote          = errors.New("empty_note")
	ErrPaymentNotUploaded = errors.New("payment_not_uploaded")

	ErrNotFound     = errors.New("not_found")
	ErrInvalidStore = errors.New("invalid_store")
	ErrInvalidID    = errors.New("invalid_id")
)

// InvalidTransitionError carries the attempted source/target pair so the
// caller can build a precise message. The order is left unchanged.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
