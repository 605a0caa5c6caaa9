/*
errors.go - Centralized error types

PURPOSE:
  All error types in one place for consistency and discoverability.
  The pure composer core never returns these for data a caller can
  legitimately produce (overflow and range normalisation are return values).
  They are used at the edges: parsing, persistence, sessions and the API.

ERROR CATEGORIES:
  1. Input errors - Malformed dates, unknown leave types, bad config
  2. State errors - Empty cart, non-cancellable request
  3. Lookup errors - Missing employees, requests, sessions
  4. Access errors - Missing or invalid identity

SEE ALSO:
  - api/handlers.go: Maps these to HTTP status codes
  - store/sqlite/sqlite.go: Returns the lookup errors
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned when a date string is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidRange is returned by strict validation of persisted ranges.
	// Interactive ranges are normalised instead.
	ErrInvalidRange = errors.New("invalid range")

	// ErrUnknownLeaveType is returned when a leave type id is not configured for the org.
	ErrUnknownLeaveType = errors.New("unknown leave type")

	// ErrEntityNotFound is returned when a referenced employee or request doesn't exist.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrSessionNotFound is returned when a composer session expired or never existed.
	ErrSessionNotFound = errors.New("composer session not found")

	// ErrEmptyCart is returned when submitting a cart without items.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrRequestNotCancellable is returned when a request is no longer pending.
	ErrRequestNotCancellable = errors.New("request is not pending")

	// ErrUnauthorized is returned when the caller's identity is missing or not allowed.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidConfig is returned when an org configuration document is rejected.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// OverflowError describes days that could not be covered by any balance.
// It is informational: callers that want to warn a user can build one from an
// allocation result.
type OverflowError struct {
	Requested Amount
	Overflow  Amount
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("%v of %v days exceed available balances", e.Overflow.Value, e.Requested.Value)
}

// ValidationError names the field of a document that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrUnknownLeaveType) ||
		errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrInvalidConfig)
}

// IsConflict returns true if the request conflicts with current state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrRequestNotCancellable)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntityNotFound) ||
		errors.Is(err, ErrSessionNotFound)
}
