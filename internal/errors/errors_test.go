package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIErrorProblemType(t *testing.T) {
	tests := []struct {
		err  *APIError
		want string
	}{
		{InvalidRequestWithError(errors.New("unexpected EOF")), TypeValidation},
		{ErrValidation("date", "must be YYYY-MM-DD"), TypeValidation},
		{New(http.StatusConflict, CodeConflict, "busy"), TypeConflict},
		{ErrRateLimitExceeded, TypeRateLimit},
		{FileSystemError("export", errors.New("disk full")), TypeInternal},
		{New(http.StatusTeapot, "TEAPOT", "short and stout"), TypeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.err.ErrorCode, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.ProblemType())
		})
	}
}

func TestValidationDetails(t *testing.T) {
	err := NewValidationErrors([]ValidationError{{Field: "window", Message: "too small"}})
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "Request validation failed", err.Error())

	details, ok := err.Details.(ValidationErrors)
	if assert.True(t, ok) {
		assert.Equal(t, "window", details.Errors[0].Field)
	}
}
