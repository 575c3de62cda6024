// Package lifecycle enforces the service-request state machine and the
// ownership and role rules around it. Every API handler that touches a
// service request calls through the Engine in this package.
package lifecycle

import "errors"

// Denials are deliberately split: ErrUnauthorized means the caller has
// no usable identity at all, ErrForbidden means the identity is valid
// but lacks the privilege. Handlers must not conflate the two.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("service request not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrConflict is returned when a conditional status update loses a
	// race against a concurrent edit; the caller may retry.
	ErrConflict = errors.New("request was modified concurrently")
	// ErrStoreUnavailable wraps backing-store failures. It is retryable
	// by the caller and maps to a 503.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError reports a missing or malformed field in a request
// payload. The message is safe to surface to clients.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func errValidation(msg string) error { return &ValidationError{Message: msg} }
