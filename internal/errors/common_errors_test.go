package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fnocli/internal/strength"
)

func TestAppError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewNetworkError("download failed", cause)

	assert.Equal(t, "[NETWORK] download failed: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus())

	plain := NewAppValidationError("bad date")
	assert.Equal(t, "[VALIDATION] bad date", plain.Error())
	assert.Nil(t, plain.Unwrap())

	plain.WithContext("field", "date")
	assert.Equal(t, "date", plain.Context["field"])
}

func TestAppErrorHTTPStatus(t *testing.T) {
	tests := []struct {
		err    *AppError
		status int
	}{
		{NewAppValidationError("x"), http.StatusBadRequest},
		{NewConfigError("x", nil), http.StatusBadRequest},
		{NewNotFoundError("observation"), http.StatusNotFound},
		{NewAppError(ErrTypeInsufficientHistory, "x", nil), http.StatusUnprocessableEntity},
		{NewNetworkError("x", nil), http.StatusBadGateway},
		{NewParsingError("x", nil), http.StatusInternalServerError},
		{NewStorageError("x", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Type), func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus())
		})
	}
}

func TestFromDomain(t *testing.T) {
	key := strength.Key{Institution: strength.FII, Segment: strength.PutOptions}
	ih := &strength.InsufficientHistoryError{
		Key:  key,
		AsOf: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Have: 7,
		Need: 20,
	}

	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"insufficient typed", fmt.Errorf("classify: %w", ih), ErrTypeInsufficientHistory},
		{"insufficient sentinel", strength.ErrInsufficientHistory, ErrTypeInsufficientHistory},
		{"not found", fmt.Errorf("lookup: %w", strength.ErrNotFound), ErrTypeNotFound},
		{"invalid config", strength.ErrInvalidConfig, ErrTypeConfig},
		{"duplicate", strength.ErrDuplicateObservation, ErrTypeStorage},
		{"cancelled", context.Canceled, ErrTypeInternal},
		{"unknown", errors.New("boom"), ErrTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromDomain(tt.err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.want, appErr.Type)
			assert.ErrorIs(t, appErr, tt.err)
		})
	}

	appErr := FromDomain(ih)
	assert.Equal(t, "FII/PUT_OPTIONS", appErr.Context["key"])
	assert.Equal(t, 7, appErr.Context["have"])
	assert.Equal(t, 20, appErr.Context["need"])

	assert.Nil(t, FromDomain(nil))

	existing := NewParsingError("bad row", nil)
	assert.Same(t, existing, FromDomain(fmt.Errorf("wrap: %w", existing)))
}
