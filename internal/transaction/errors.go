package transaction

import "errors"

var (
	// ErrNotFound is returned when a transaction does not exist, or exists
	// but is not visible to the caller. The two cases are deliberately
	// indistinguishable.
	ErrNotFound = errors.New("transaction not found")

	// ErrForbidden is returned when the caller's role or ownership check
	// fails, or the requested status is outside the caller's allowed set.
	ErrForbidden = errors.New("access denied")

	// ErrInvalidTransition is returned for a semantically invalid status
	// change, e.g. submitting a non-draft transaction for review.
	ErrInvalidTransition = errors.New("invalid status transition")
)
