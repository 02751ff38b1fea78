package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fnocli/internal/config"
	apierrors "fnocli/internal/errors"
	"fnocli/internal/services"
)

type readyFlag bool

func (f readyFlag) Ready() bool { return bool(f) }

func TestHealthHandler(t *testing.T) {
	paths := &config.Paths{DataDir: t.TempDir()}

	tests := []struct {
		name           string
		ready          bool
		handlerFunc    func(*HealthHandler) http.HandlerFunc
		expectedStatus int
		expectedField  string
		expectedValue  string
	}{
		{
			name:           "health check",
			handlerFunc:    func(h *HealthHandler) http.HandlerFunc { return h.HealthCheck },
			expectedStatus: http.StatusOK,
			expectedField:  "status",
			expectedValue:  "ok",
		},
		{
			name:           "ready after first run",
			ready:          true,
			handlerFunc:    func(h *HealthHandler) http.HandlerFunc { return h.ReadinessCheck },
			expectedStatus: http.StatusOK,
			expectedField:  "status",
			expectedValue:  "ready",
		},
		{
			name:           "not ready before first run",
			handlerFunc:    func(h *HealthHandler) http.HandlerFunc { return h.ReadinessCheck },
			expectedStatus: http.StatusServiceUnavailable,
			expectedField:  "status",
			expectedValue:  "not_ready",
		},
		{
			name:           "liveness",
			handlerFunc:    func(h *HealthHandler) http.HandlerFunc { return h.LivenessCheck },
			expectedStatus: http.StatusOK,
			expectedField:  "status",
			expectedValue:  "alive",
		},
		{
			name:           "version",
			handlerFunc:    func(h *HealthHandler) http.HandlerFunc { return h.Version },
			expectedStatus: http.StatusOK,
			expectedField:  "version",
			expectedValue:  "v1.0.0-test",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := services.NewHealthService("v1.0.0-test", paths, readyFlag(tt.ready), nil)
			handler := NewHealthHandler(svc, nil)

			rec := httptest.NewRecorder()
			tt.handlerFunc(handler)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedValue, body[tt.expectedField])
		})
	}
}

func TestMetricsHandler(t *testing.T) {
	paths := &config.Paths{DataDir: t.TempDir()}
	health := services.NewHealthService("v1.0.0-test", paths, nil, nil)
	errorHandler := apierrors.NewErrorHandler(nil, false)

	t.Run("stats", func(t *testing.T) {
		h := NewMetricsHandler(nil, health, nil, errorHandler)
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var stats services.SystemStats
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
		assert.Equal(t, 0, stats.TotalFiles)
		assert.NotEmpty(t, stats.GoVersion)
	})

	t.Run("prometheus disabled", func(t *testing.T) {
		h := NewMetricsHandler(nil, health, nil, errorHandler)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("prometheus enabled", func(t *testing.T) {
		prom := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("# HELP up\n"))
		})
		h := NewMetricsHandler(prom, health, nil, errorHandler)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "# HELP")
	})
}
