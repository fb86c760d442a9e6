// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import "errors"

// ErrorType represents the semantic category of an error
type ErrorType int

const (
	ErrorTypeValidation      ErrorType = iota // Input validation errors
	ErrorTypeNotFound                         // Resource not found; drives fallthrough to the next resolver strategy
	ErrorTypeTransient                        // Rate-limit or server errors; retried with backoff, then treated as not found
	ErrorTypeUnauthenticated                  // Expired or unrefreshable credential; fatal for the holder's batch
	ErrorTypeTimeout                          // Cycle- or item-level timeout; the item is retried next cycle
	ErrorTypeConflict                         // Resource conflict errors
	ErrorTypeInternal                         // Internal errors
	ErrorTypeUnavailable                      // Service unavailable errors
)

// DomainError represents an error with semantic type information
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error // underlying error for wrapping
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// GetErrorType returns the semantic type of an error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ErrorTypeInternal // default fallback
}

// Error constructors for different types
func NewValidationError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeValidation, Message: message, Err: errors.Join(err...)}
}

func NewNotFoundError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeNotFound, Message: message, Err: errors.Join(err...)}
}

func NewTransientError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeTransient, Message: message, Err: errors.Join(err...)}
}

func NewUnauthenticatedError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeUnauthenticated, Message: message, Err: errors.Join(err...)}
}

func NewTimeoutError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeTimeout, Message: message, Err: errors.Join(err...)}
}

func NewConflictError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeConflict, Message: message, Err: errors.Join(err...)}
}

func NewInternalError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeInternal, Message: message, Err: errors.Join(err...)}
}

func NewUnavailableError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeUnavailable, Message: message, Err: errors.Join(err...)}
}

// IsNotFound reports whether the error is an expected not-found condition.
func IsNotFound(err error) bool {
	return GetErrorType(err) == ErrorTypeNotFound
}

// IsUnauthenticated reports whether the error is a credential failure. These
// are the only errors that cross the resolver boundary.
func IsUnauthenticated(err error) bool {
	return GetErrorType(err) == ErrorTypeUnauthenticated
}

// Sentinel errors shared across services and repositories.
var (
	// ErrServiceUnavailable is returned when a required dependency has not
	// been initialized.
	ErrServiceUnavailable = NewUnavailableError("service unavailable")
	// ErrMeetingNotFound is returned when a meeting record does not exist.
	ErrMeetingNotFound = NewNotFoundError("meeting not found")
	// ErrTokenNotFound is returned when no stored credential exists for a user.
	ErrTokenNotFound = NewNotFoundError("user token not found")
	// ErrMinutesNotFound is returned when no minutes exist for a meeting.
	ErrMinutesNotFound = NewNotFoundError("minutes not found")
	// ErrUnmarshal is returned when a stored entry cannot be decoded.
	ErrUnmarshal = NewInternalError("unmarshal error")
	// ErrRevisionMismatch is returned on optimistic-concurrency conflicts.
	ErrRevisionMismatch = NewConflictError("revision mismatch")
)
