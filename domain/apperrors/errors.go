// Package apperrors defines the typed error taxonomy shared by all services.
// Every failure a caller can act on is classified by Kind and carries a
// stable machine-readable Code; the HTTP boundary maps kinds to status codes.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for boundary handling
type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindUnauthorized      Kind = "unauthorized"
	KindNotFound          Kind = "not_found"
	KindState             Kind = "state_error"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindUpstream          Kind = "upstream_error"
	KindSignature         Kind = "signature_error"
)

// Error is a typed application error with a stable machine-readable code and
// optional structured details for the caller.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetails attaches structured details and returns the error
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// New creates a typed error
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Newf creates a typed error with a formatted message
func Newf(kind Kind, code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a typed error wrapping an underlying cause
func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// Validation is shorthand for a validation error
func Validation(code, format string, args ...any) *Error {
	return Newf(KindValidation, code, format, args...)
}

// NotFound is shorthand for a not-found error
func NotFound(code, format string, args ...any) *Error {
	return Newf(KindNotFound, code, format, args...)
}

// State is shorthand for an invalid-state error
func State(code, format string, args ...any) *Error {
	return Newf(KindState, code, format, args...)
}

// InsufficientFunds reports a balance that cannot cover the requested amount
func InsufficientFunds(format string, args ...any) *Error {
	return Newf(KindInsufficientFunds, "insufficient_funds", format, args...)
}

// Unauthorized reports a missing or rejected identity
func Unauthorized(message string) *Error {
	return New(KindUnauthorized, "unauthorized", message)
}

// Upstream reports a payment-provider failure
func Upstream(message string, err error) *Error {
	return Wrap(KindUpstream, "upstream_error", message, err)
}

// Signature reports a webhook signature verification failure
func Signature(message string) *Error {
	return New(KindSignature, "signature_error", message)
}

// KindOf returns the Kind of err if it is (or wraps) an *Error, else ""
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// As extracts the typed error from err, or nil
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
