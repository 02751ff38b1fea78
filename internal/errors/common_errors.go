package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"fnocli/internal/strength"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeInsufficientHistory ErrorType = "INSUFFICIENT_HISTORY"
	ErrTypeNetwork             ErrorType = "NETWORK"
	ErrTypeParsing             ErrorType = "PARSING"
	ErrTypeStorage             ErrorType = "STORAGE"
	ErrTypeValidation          ErrorType = "VALIDATION"
	ErrTypeNotFound            ErrorType = "NOT_FOUND"
	ErrTypeConfig              ErrorType = "CONFIG"
	ErrTypeInternal            ErrorType = "INTERNAL"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// HTTPStatus returns the response status for the error type
func (e *AppError) HTTPStatus() int {
	switch e.Type {
	case ErrTypeValidation, ErrTypeConfig:
		return http.StatusBadRequest
	case ErrTypeNotFound:
		return http.StatusNotFound
	case ErrTypeInsufficientHistory:
		return http.StatusUnprocessableEntity
	case ErrTypeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewNetworkError creates a network-related error
func NewNetworkError(message string, cause error) *AppError {
	return NewAppError(ErrTypeNetwork, message, cause)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// FromDomain classifies an error returned by the strength packages. AppErrors
// pass through unchanged and unknown errors become INTERNAL.
func FromDomain(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var ih *strength.InsufficientHistoryError
	switch {
	case errors.As(err, &ih):
		return NewAppError(ErrTypeInsufficientHistory, "not enough prior observations to compute thresholds", err).
			WithContext("key", ih.Key.String()).
			WithContext("have", ih.Have).
			WithContext("need", ih.Need)
	case errors.Is(err, strength.ErrInsufficientHistory):
		return NewAppError(ErrTypeInsufficientHistory, "not enough prior observations to compute thresholds", err)
	case errors.Is(err, strength.ErrNotFound):
		return NewAppError(ErrTypeNotFound, "no observation for the requested date", err)
	case errors.Is(err, strength.ErrInvalidConfig):
		return NewAppError(ErrTypeConfig, "invalid classifier configuration", err)
	case errors.Is(err, strength.ErrDuplicateObservation):
		return NewAppError(ErrTypeStorage, "history contains duplicate observations", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return NewAppError(ErrTypeInternal, "operation cancelled", err)
	}
	return NewAppError(ErrTypeInternal, "unexpected error", err)
}
