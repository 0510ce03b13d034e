// Package apperr defines the error taxonomy shared by handlers and middleware.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an error class.
type Code string

const (
	CodeValidation      Code = "VALIDATION_ERROR"
	CodePayloadTooLarge Code = "PAYLOAD_TOO_LARGE"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeRateLimited     Code = "RATE_LIMITED"
	CodeUpstream        Code = "UPSTREAM_FAILURE"
	CodeInternal        Code = "INTERNAL_ERROR"
)

// Error is a service error carrying a user-facing message and an HTTP status.
// The wrapped cause, if any, is for logs only and never reaches the caller.
type Error struct {
	Code       Code
	Message    string
	HTTPStatus int
	Details    map[string]any
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// WithDetails attaches a key/value pair for the response body.
func (e *Error) WithDetails(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Validation is a 400 for malformed or out-of-bounds input.
func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Message: message, HTTPStatus: http.StatusBadRequest}
}

// PayloadTooLarge is a 413 for oversized payloads.
func PayloadTooLarge(message string) *Error {
	return &Error{Code: CodePayloadTooLarge, Message: message, HTTPStatus: http.StatusRequestEntityTooLarge}
}

// Unauthenticated is a 401 for a missing credential.
func Unauthenticated(message string) *Error {
	return &Error{Code: CodeUnauthenticated, Message: message, HTTPStatus: http.StatusUnauthorized}
}

// Unauthorized is a 403 for an invalid or expired credential.
func Unauthorized(message string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message, HTTPStatus: http.StatusForbidden}
}

// RateLimited is a 429.
func RateLimited(limit int, window string) *Error {
	e := &Error{
		Code:       CodeRateLimited,
		Message:    "Too many requests. Please try again later.",
		HTTPStatus: http.StatusTooManyRequests,
	}
	return e.WithDetails("limit", limit).WithDetails("window", window)
}

// Upstream is a 500 for a collaborator failure. The message is fixed and
// generic; cause is kept for logging only.
func Upstream(cause error) *Error {
	return &Error{
		Code:       CodeUpstream,
		Message:    "Service temporarily unavailable. Please try again later.",
		HTTPStatus: http.StatusInternalServerError,
		cause:      cause,
	}
}

// Internal is a 500 with a fixed message.
func Internal(message string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: message, HTTPStatus: http.StatusInternalServerError, cause: cause}
}

// Get returns err as *Error if it is one, unwrapping as needed.
func Get(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
