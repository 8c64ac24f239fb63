// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for Personae.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct tagged with a closed [Kind], a machine-readable Code and a
    client-safe message.
  - Variants: ValidationError{field,message}, NotFoundError{resource,id} and
    DuplicateVoteError are all AppError values distinguished by Kind.
  - Mapping: The HTTP boundary switches on Kind; it never inspects messages.

Every error that leaves the service layer should be an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// # Error Kinds

// Kind is the closed set of error categories understood by the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
	KindRateLimited
	KindUnprocessable
	KindUnavailable
)

// Status maps a [Kind] to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUnprocessable:
		return http.StatusUnprocessableEntity
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// AppError is the canonical error type for the Personae API.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Kind is the error category used for dispatch at the boundary.
	Kind Kind `json:"-"`
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "DUPLICATE_VOTE").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// Resource and ResourceID identify the missing entity for NOT_FOUND errors.
	Resource   string `json:"-"`
	ResourceID string `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// HTTPStatus returns the status code derived from the error's [Kind].
func (e *AppError) HTTPStatus() int { return e.Kind.Status() }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Comment") // Returns "Comment not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Kind:     KindNotFound,
		Code:     "NOT_FOUND",
		Message:  resource + " not found",
		Resource: resource,
	}
}

// NotFoundID creates a 404 [AppError] that also records the missing identifier.
func NotFoundID(resource, id string) *AppError {
	err := NotFound(resource)
	err.ResourceID = id
	return err
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Kind:    KindUnauthorized,
		Code:    "UNAUTHORIZED",
		Message: msg,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Kind:    KindForbidden,
		Code:    "FORBIDDEN",
		Message: msg,
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Kind:    KindConflict,
		Code:    "CONFLICT",
		Message: msg,
	}
}

// DuplicateVote creates a 409 [AppError] raised when the storage layer rejects a
// second vote for the same (comment, voter, system) key.
//
// Normal submissions turn repeated votes into updates; this is only reported
// when the uniqueness constraint itself fires during a race.
func DuplicateVote(commentID, system string) *AppError {
	return &AppError{
		Kind:       KindConflict,
		Code:       "DUPLICATE_VOTE",
		Message:    fmt.Sprintf("A %s vote for this comment is already being recorded", system),
		Resource:   "Vote",
		ResourceID: commentID,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Code:    "VALIDATION_ERROR",
		Message: msg,
		Details: details,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Kind:    KindRateLimited,
		Code:    "RATE_LIMITED",
		Message: fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
	}
}

// Unprocessable creates a 422 [AppError] for semantically invalid input.
func Unprocessable(msg string) *AppError {
	return &AppError{
		Kind:    KindUnprocessable,
		Code:    "UNPROCESSABLE",
		Message: msg,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Kind:    KindInternal,
		Code:    "INTERNAL_ERROR",
		Message: "An unexpected error occurred",
		Cause:   cause,
	}
}

// ServiceUnavailable creates a 503 [AppError].
func ServiceUnavailable(msg string) *AppError {
	return &AppError{
		Kind:    KindUnavailable,
		Code:    "SERVICE_UNAVAILABLE",
		Message: msg,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// IsKind reports whether err carries an [*AppError] of the given kind.
func IsKind(err error, kind Kind) bool {
	ae := As(err)
	return ae != nil && ae.Kind == kind
}
