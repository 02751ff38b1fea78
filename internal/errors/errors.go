package errors

import (
	"fmt"
	"net/http"
)

// API error codes carried in the error_code problem extension
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeInsufficientHistory = "INSUFFICIENT_HISTORY"
	CodeRateLimitExceeded   = "RATE_LIMIT_EXCEEDED"
	CodeFileSystem          = "FILESYSTEM_ERROR"
	CodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
)

// codeTypes maps an error code onto its problem type. Codes missing here
// render as TypeInternal.
var codeTypes = map[string]string{
	CodeInvalidRequest:      TypeValidation,
	CodeValidationFailed:    TypeValidation,
	CodeNotFound:            TypeNotFound,
	CodeConflict:            TypeConflict,
	CodeInsufficientHistory: TypeInsufficientHistory,
	CodeRateLimitExceeded:   TypeRateLimit,
	CodeServiceUnavailable:  TypeServiceDown,
}

// APIError is an error raised by a handler that already knows the status it
// should answer with.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// ProblemType returns the problem type URI for the error code
func (e *APIError) ProblemType() string {
	if t, ok := codeTypes[e.ErrorCode]; ok {
		return t
	}
	return TypeInternal
}

// ValidationError names one offending request field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the details payload of a multi-field validation failure
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message}
}

func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message, Details: details}
}

// ErrRateLimitExceeded is returned once a client exhausts its token bucket
var ErrRateLimitExceeded = New(http.StatusTooManyRequests, CodeRateLimitExceeded, "Rate limit exceeded")

// InvalidRequestWithError reports a request that could not be decoded
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format", err.Error())
}

// NewValidationError is a 400 without field details
func NewValidationError(message string) *APIError {
	return New(http.StatusBadRequest, CodeValidationFailed, message)
}

// ErrValidation reports a single bad field
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed",
		ValidationError{Field: field, Message: message})
}

// NewValidationErrors reports every bad field of a request at once
func NewValidationErrors(errs []ValidationError) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed",
		ValidationErrors{Errors: errs})
}

// FileSystemError wraps a failure to read or write under the data directory
func FileSystemError(operation string, err error) *APIError {
	return NewWithDetails(http.StatusInternalServerError, CodeFileSystem,
		fmt.Sprintf("File system error during %s", operation), err.Error())
}
