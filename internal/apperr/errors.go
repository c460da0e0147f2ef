// Package apperr defines the service error taxonomy and its HTTP mapping.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a failure. The zero value is Internal so that foreign
// errors never leak as a client error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindInsufficientFunds
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindInsufficientFunds:
		return "insufficient_funds"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindInsufficientFunds:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) code() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindConflict:
		return "CONFLICT"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindNotFound:
		return "NOT_FOUND"
	case KindInsufficientFunds:
		return "INSUFFICIENT_FUNDS"
	default:
		return "INTERNAL_ERROR"
	}
}

// Error is a classified failure carrying a short human-readable message.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Code: kind.code(), Message: msg}
}

func Validation(msg string) *Error { return newError(KindValidation, msg) }

// InvalidAmount is a validation failure for a numeric amount.
func InvalidAmount(msg string) *Error {
	e := newError(KindValidation, msg)
	e.Code = "INVALID_AMOUNT"
	return e
}

func Conflict(msg string) *Error          { return newError(KindConflict, msg) }
func Unauthorized(msg string) *Error      { return newError(KindUnauthorized, msg) }
func Forbidden(msg string) *Error         { return newError(KindForbidden, msg) }
func NotFound(msg string) *Error          { return newError(KindNotFound, msg) }
func InsufficientFunds(msg string) *Error { return newError(KindInsufficientFunds, msg) }

// Internal wraps a storage or transport failure. The cause is kept for logs
// and never shown to callers.
func Internal(cause error) *Error {
	e := newError(KindInternal, "internal server error")
	e.cause = cause
	return e
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// From classifies err, wrapping unclassified errors as Internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
