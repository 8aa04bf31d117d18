// Package apierror provides the error taxonomy and the JSON envelope used by
// every failed request. Services return *Error values; handlers render them
// through a single helper so internal details never leak outside debug mode.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error and decides its HTTP status.
type Kind string

const (
	KindValidation       Kind = "validation_error"
	KindAuthentication   Kind = "authentication_error"
	KindPermissionDenied Kind = "permission_denied"
	KindNotFound         Kind = "not_found"
	KindInternal         Kind = "internal_error"
)

// Status maps a Kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindAuthentication:
		return http.StatusBadRequest
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is the typed error returned by the service layer.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Validation builds a field-level validation error.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// Field is shorthand for a validation error on a single field.
func Field(field, msg string) *Error {
	return Validation("Validation failed", map[string]string{field: msg})
}

func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

func PermissionDenied(message string) *Error {
	return &Error{Kind: KindPermissionDenied, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Internal wraps an unexpected failure; the cause is only exposed in debug mode.
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Cause: cause}
}

// As extracts an *Error from err. Unknown errors become Internal.
func As(err error) *Error {
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return Internal("Internal server error", err)
}

// Envelope is the canonical body for all 4xx/5xx responses.
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Error   string            `json:"error,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func New(msg string) *Envelope {
	return &Envelope{Success: false, Message: msg}
}

// Render converts err into a status code and envelope. debug controls whether
// the underlying cause text is included.
func Render(err error, debug bool) (int, *Envelope) {
	e := As(err)
	env := &Envelope{Success: false, Message: e.Message, Errors: e.Fields}
	if debug && e.Cause != nil {
		env.Error = e.Cause.Error()
	}
	return e.Kind.Status(), env
}
