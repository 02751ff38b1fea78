package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "fnocli/internal/errors"
	"fnocli/internal/services"
)

// MetricsHandler serves the Prometheus scrape endpoint and data directory
// statistics
type MetricsHandler struct {
	prometheus   http.Handler
	health       *services.HealthService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewMetricsHandler creates a new metrics handler. prometheus may be nil when
// metrics export is disabled.
func NewMetricsHandler(prometheus http.Handler, health *services.HealthService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *MetricsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MetricsHandler{
		prometheus:   prometheus,
		health:       health,
		logger:       logger.With(slog.String("handler", "metrics")),
		errorHandler: errorHandler,
	}
}

// Routes sets up the stats routes
func (h *MetricsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetStats)
	return r
}

// ServeHTTP serves GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.prometheus == nil {
		h.errorHandler.NotFound(w, r)
		return
	}
	h.prometheus.ServeHTTP(w, r)
}

// GetStats handles GET /api/v1/stats
func (h *MetricsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.health.SystemStats(r.Context())
	if err != nil {
		h.logger.WarnContext(r.Context(), "failed to collect system stats",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.FileSystemError("stats", err))
		return
	}
	render.JSON(w, r, stats)
}
