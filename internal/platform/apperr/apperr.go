// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr carries failures from storage and services up to the two
places that show them: JSON error envelopes from the server and toasts or
form messages in the browser-facing request layer.

Two vocabularies meet here:

  - Code: the wire identifier of an [AppError] ("CONFLICT", "AUTH_REQUIRED").
  - Kind: the closed set of failure classes users can see. Every Kind is also
    a valid Code, and any other code falls back to its status class.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Codes that have no user-facing Kind of their own.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeConflict     = "CONFLICT"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL_ERROR"
)

// AppError is an error with a status, a wire code and a message safe to show.
//
// Cause is kept for server logs only. It never reaches the response body.
type AppError struct {
	Code       string       `json:"code"`
	Message    string       `json:"error"`
	HTTPStatus int          `json:"-"`
	Cause      error        `json:"-"`
	Details    []FieldError `json:"details,omitempty"`
}

// FieldError is one failed form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Cause }

// Kind classifies the error into the shared taxonomy.
func (e *AppError) Kind() Kind {
	if _, known := kindMessages[Kind(e.Code)]; known {
		return Kind(e.Code)
	}
	return KindForStatus(e.HTTPStatus)
}

func newError(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// # Constructors

// NotFound reports a missing resource by name, e.g. NotFound("Booking")
// reads "Booking not found".
func NotFound(resource string) *AppError {
	return newError(http.StatusNotFound, CodeNotFound, resource+" not found")
}

// Unauthorized rejects bad credentials. The message stays generic so it
// cannot be used to probe which emails exist.
func Unauthorized(msg string) *AppError {
	return newError(http.StatusUnauthorized, CodeUnauthorized, msg)
}

// AuthRequired rejects a request that carries no live session.
func AuthRequired() *AppError {
	return newError(http.StatusUnauthorized, string(KindAuthRequired), KindAuthRequired.Message())
}

// ProfileNotFound reports a session whose user has no profile row.
func ProfileNotFound() *AppError {
	return newError(http.StatusNotFound, string(KindProfileNotFound), KindProfileNotFound.Message())
}

// InvalidRole rejects a role outside client and provider.
func InvalidRole(role string) *AppError {
	return newError(http.StatusBadRequest, string(KindInvalidRole), fmt.Sprintf("Unknown role %q", role))
}

// Conflict reports a unique-constraint violation such as a taken email.
func Conflict(msg string) *AppError {
	return newError(http.StatusConflict, CodeConflict, msg)
}

// ValidationError rejects form input, listing each failed field.
func ValidationError(msg string, details ...FieldError) *AppError {
	err := newError(http.StatusBadRequest, string(KindValidationFailed), msg)
	err.Details = details
	return err
}

// RateLimited tells the client how long to back off.
func RateLimited(retryAfterSeconds int) *AppError {
	return newError(http.StatusTooManyRequests, CodeRateLimited,
		fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds))
}

// Internal hides cause behind a generic 500 message.
func Internal(cause error) *AppError {
	err := newError(http.StatusInternalServerError, CodeInternal, "An unexpected error occurred")
	err.Cause = cause
	return err
}

// # Inspection

// As returns the first [*AppError] in err's chain, or nil.
func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsAppError reports whether err's chain holds an [*AppError].
func IsAppError(err error) bool {
	return As(err) != nil
}

// IsCode reports whether err's chain holds an [*AppError] with code.
func IsCode(err error, code string) bool {
	appErr := As(err)
	return appErr != nil && appErr.Code == code
}
