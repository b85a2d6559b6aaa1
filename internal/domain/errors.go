package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a domain error for transport mapping and user messaging.
type ErrorCode string

const (
	CodeValidation    ErrorCode = "validation"
	CodeNotFound      ErrorCode = "not_found"
	CodeConflict      ErrorCode = "conflict"
	CodeInvalidState  ErrorCode = "invalid_state"
	CodeUnauthorized  ErrorCode = "unauthorized"
	CodeForbidden     ErrorCode = "forbidden"
	CodeConfiguration ErrorCode = "configuration"
	CodePayment       ErrorCode = "payment"
	CodeUnavailable   ErrorCode = "unavailable"
)

// Error is a tagged domain error. External-service failures are classified
// into one of these exactly once at the boundary that observed them; call
// sites branch on Code, never on message text.
type Error struct {
	Code    ErrorCode
	Message string
	// Retryable marks transient failures the caller may reasonably retry.
	Retryable bool
	cause     error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// WithCause attaches an underlying error for wrapping chains.
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

// NewValidationError reports malformed user input. Handled locally by
// re-prompting, never surfaced as a system failure.
func NewValidationError(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s not found: %s", entity, id)}
}

// NewConflictError reports a concurrent-modification or uniqueness conflict.
func NewConflictError(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// NewInvalidStateError reports a disallowed state transition.
func NewInvalidStateError(from, to string) *Error {
	return &Error{Code: CodeInvalidState, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

// NewUnauthorizedError reports a failed or missing authentication.
func NewUnauthorizedError(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

// NewForbiddenError reports an authenticated but disallowed action.
func NewForbiddenError(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

// NewConfigurationError reports a corrupt or out-of-bounds configuration.
// Fatal, never retried; surfaced to users as "contact support".
func NewConfigurationError(msg string) *Error {
	return &Error{Code: CodeConfiguration, Message: msg}
}

// NewPaymentError reports a payment rejection. Declines and timeouts are
// retryable; everything else is terminal for the attempt.
func NewPaymentError(msg string, retryable bool) *Error {
	return &Error{Code: CodePayment, Message: msg, Retryable: retryable}
}

// NewUnavailableError reports a transient I/O failure against an external
// service, eligible for bounded retry with backoff.
func NewUnavailableError(msg string) *Error {
	return &Error{Code: CodeUnavailable, Message: msg, Retryable: true}
}

// CodeOf extracts the ErrorCode from err, or empty string for untagged errors.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsRetryable reports whether err is a tagged transient failure.
func IsRetryable(err error) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Retryable
	}
	return false
}
