package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned by the scope resolver before any data access.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFoundOrForbidden deliberately conflates a missing record with a
	// record the caller's scope does not cover, so a denied caller cannot
	// probe for existence.
	ErrNotFoundOrForbidden = errors.New("record not found")

	// ErrConversionBlocked means the pre-survey work item is already linked
	// to a downstream job and can no longer be converted.
	ErrConversionBlocked = errors.New("work item already linked to a job")

	// ErrMissingBillingInfo means no billing address is on file for the
	// customer an invoice is being raised against.
	ErrMissingBillingInfo = errors.New("customer has no billing address")

	// ErrOverReceipt means a receipt would push cumulative received quantity
	// past the ordered quantity for a purchase order line.
	ErrOverReceipt = errors.New("received quantity exceeds ordered quantity")

	// ErrVersionConflict means an optimistic-lock check failed: the record
	// changed since the caller read it.
	ErrVersionConflict = errors.New("record was modified concurrently")

	// ErrIllegalTransition means a status change not present in the entity's
	// transition table was requested.
	ErrIllegalTransition = errors.New("illegal status transition")
)

// ValidationError carries a field-level error map for user-correctable input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// NewValidation builds a ValidationError for a single field.
func NewValidation(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// AsValidation extracts a ValidationError from an error chain.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// ExternalServiceError wraps a failure from storage, mail or rendering.
// Artifact-critical steps treat it as fatal; notification steps log and move on.
type ExternalServiceError struct {
	Op  string
	Err error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("external service %s: %v", e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// External wraps err as an ExternalServiceError for the given operation.
func External(op string, err error) error {
	return &ExternalServiceError{Op: op, Err: err}
}

// IsExternal reports whether err is (or wraps) an ExternalServiceError.
func IsExternal(err error) bool {
	var ee *ExternalServiceError
	return errors.As(err, &ee)
}
