/*
errors.go - Centralized error types for the loan engine

All errors here are recoverable and user-facing; none are fatal to the
process. Derivations are total over well-formed input - malformed rows are
excluded from computation rather than aborting it - so these errors only
surface on the write path and in the deadline engine.

Domain packages and handlers match with errors.Is / errors.As:

    var tooFar *ledger.DeadlineTooFarError
    if errors.As(err, &tooFar) {
        // tooFar.Max is the latest allowed due date
    }
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDuration is returned for a non-positive requested loan length.
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrDeadlineTooFar is returned when a requested due date exceeds the
	// maximum horizon. Wrapped by DeadlineTooFarError, which carries the
	// latest allowed date.
	ErrDeadlineTooFar = errors.New("deadline exceeds maximum horizon")

	// ErrDeadlineInPast is returned when an explicitly entered due date
	// precedes today.
	ErrDeadlineInPast = errors.New("deadline is in the past")

	// ErrInvalidDateFormat is returned when a transaction date fails the
	// YYYY-MM-DD shape validation.
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrNoOutstandingLoan is returned when a returned transaction is
	// submitted with no matching open taken for that (student, book) pair.
	// This is a conflict, not a validation error: the request is well-formed
	// but inconsistent with ledger state.
	ErrNoOutstandingLoan = errors.New("no outstanding loan")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DeadlineTooFarError tells the caller the latest date it could have asked for.
type DeadlineTooFarError struct {
	Requested Date
	Max       Date
}

func (e *DeadlineTooFarError) Error() string {
	return fmt.Sprintf("deadline %s exceeds maximum horizon (latest allowed: %s)", e.Requested, e.Max)
}

func (e *DeadlineTooFarError) Unwrap() error { return ErrDeadlineTooFar }

// NoOutstandingLoanError identifies the pair that has nothing to return.
type NoOutstandingLoanError struct {
	StudentID int64
	BookID    int64
}

func (e *NoOutstandingLoanError) Error() string {
	return fmt.Sprintf("no outstanding loan for student %d, book %d", e.StudentID, e.BookID)
}

func (e *NoOutstandingLoanError) Unwrap() error { return ErrNoOutstandingLoan }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDuration) ||
		errors.Is(err, ErrDeadlineTooFar) ||
		errors.Is(err, ErrDeadlineInPast) ||
		errors.Is(err, ErrInvalidDateFormat)
}

// IsConflict reports whether the error is a well-formed request that
// conflicts with ledger state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrNoOutstandingLoan)
}
