package errors

import (
	"errors"
	"fmt"
)

// Error types for the recommendation core
type ErrorType string

const (
	ErrorTypeValidation       ErrorType = "validation"
	ErrorTypeNotFound         ErrorType = "not_found"
	ErrorTypeInsufficientData ErrorType = "insufficient_data"
	ErrorTypePersistence      ErrorType = "persistence"
	ErrorTypeInternal         ErrorType = "internal"
	ErrorTypeTimeout          ErrorType = "timeout"
)

// AppError represents a structured application error
type AppError struct {
	Type      ErrorType              `json:"type"`
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Cause     error                  `json:"-"`
	Retryable bool                   `json:"retryable"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// Error constructors

func NewValidationError(code, message string) *AppError {
	return &AppError{
		Type:      ErrorTypeValidation,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// NewNotFoundError marks a missing entity. Inside the recommenders these are
// recovered locally with default profiles/estimates and never surfaced.
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:      ErrorTypeNotFound,
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("%s not found", resource),
		Retryable: false,
	}
}

// NewInsufficientDataError marks a statistical operation that lacks the
// minimum sample count. Callers return empty/neutral results on it.
func NewInsufficientDataError(operation string, have, need int) *AppError {
	return &AppError{
		Type:      ErrorTypeInsufficientData,
		Code:      "INSUFFICIENT_DATA",
		Message:   fmt.Sprintf("%s requires %d data points, have %d", operation, need, have),
		Retryable: false,
		Details:   map[string]interface{}{"have": have, "need": need},
	}
}

// NewPersistenceError marks a best-effort store failure. Recommendation
// responses are still returned when one occurs.
func NewPersistenceError(message string) *AppError {
	return &AppError{
		Type:      ErrorTypePersistence,
		Code:      "PERSISTENCE_FAILED",
		Message:   message,
		Retryable: true,
	}
}

func NewInternalError(message string) *AppError {
	return &AppError{
		Type:      ErrorTypeInternal,
		Code:      "INTERNAL_ERROR",
		Message:   message,
		Retryable: true,
	}
}

func NewTimeoutError(operation string) *AppError {
	return &AppError{
		Type:      ErrorTypeTimeout,
		Code:      "OPERATION_TIMEOUT",
		Message:   fmt.Sprintf("%s timed out", operation),
		Retryable: true,
	}
}

// Predefined common errors
var (
	ErrInvalidContext  = NewValidationError("INVALID_CONTEXT", "audit context failed validation")
	ErrAuditorNotFound = NewNotFoundError("auditor")
	ErrModelNotFound   = NewNotFoundError("scoring model")
)

// Wrap wraps an error with a message using fmt.Errorf with %w
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsType checks if an error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// IsNotFound reports whether the error is a not-found AppError.
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsInsufficientData reports whether the error marks a too-small sample.
func IsInsufficientData(err error) bool {
	return IsType(err, ErrorTypeInsufficientData)
}
