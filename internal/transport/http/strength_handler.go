package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "fnocli/internal/errors"
	customMiddleware "fnocli/internal/middleware"
	"fnocli/internal/services"
	"fnocli/internal/strength"
	api "fnocli/pkg/contracts/api/v1"
)

// StrengthServiceInterface defines the strength operations the handler needs
type StrengthServiceInterface interface {
	Refresh(ctx context.Context) (*services.Run, error)
	Latest() (*services.Run, error)
	Results(ctx context.Context, q services.ResultQuery) ([]strength.Result, error)
	Thresholds(ctx context.Context, inst strength.Institution, seg strength.Segment, date time.Time) (services.ThresholdsView, error)
}

// ReportExporter writes the reports of a run
type ReportExporter interface {
	Export(ctx context.Context, run *services.Run) ([]string, error)
}

// StrengthHandler handles strength classification requests with RFC 7807 errors
type StrengthHandler struct {
	service      StrengthServiceInterface
	reports      ReportExporter
	validator    *customMiddleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewStrengthHandler creates a new strength handler. reports may be nil, in
// which case refresh requests asking for an export are rejected.
func NewStrengthHandler(service StrengthServiceInterface, reports ReportExporter, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *StrengthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StrengthHandler{
		service:      service,
		reports:      reports,
		validator:    customMiddleware.NewValidator(),
		logger:       logger.With(slog.String("component", "strength_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the strength routes
func (h *StrengthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetStrength)
	r.Get("/thresholds", h.GetThresholds)
	r.With(customMiddleware.TraceOperation("strength.refresh")).Post("/refresh", h.Refresh)

	return r
}

// GetStrength handles GET /api/v1/strength
func (h *StrengthHandler) GetStrength(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := api.StrengthRequest{
		Date:        query.Get("date"),
		Institution: query.Get("institution"),
		Segment:     query.Get("segment"),
	}
	if v := query.Get("all_dates"); v != "" {
		all, err := strconv.ParseBool(v)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("all_dates", "all_dates must be true or false"))
			return
		}
		req.AllDates = all
	}
	if err := h.validator.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	q := services.ResultQuery{AllDates: req.AllDates}
	q.Date, _ = parseDate(req.Date)
	q.Institution, _ = parseInstitution(req.Institution)
	q.Segment, _ = parseSegment(req.Segment)

	run, err := h.service.Latest()
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	results, err := h.service.Results(r.Context(), q)
	if err != nil {
		h.logger.DebugContext(r.Context(), "strength query failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("date", req.Date),
			slog.String("error", err.Error()),
		)
		h.handleServiceError(w, r, err)
		return
	}

	asOf := run.LatestDate()
	if !q.Date.IsZero() {
		asOf = q.Date
	}

	resp := api.StrengthResponse{
		RunID:   run.ID,
		AsOf:    formatDate(asOf),
		Count:   len(results),
		Results: make([]api.StrengthResult, 0, len(results)),
	}
	for _, res := range results {
		resp.Results = append(resp.Results, toStrengthResult(res))
	}
	render.JSON(w, r, resp)
}

// GetThresholds handles GET /api/v1/strength/thresholds
func (h *StrengthHandler) GetThresholds(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := api.ThresholdsRequest{
		Date:        query.Get("date"),
		Institution: query.Get("institution"),
		Segment:     query.Get("segment"),
	}
	if err := h.validator.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	date, _ := parseDate(req.Date)
	inst, _ := parseInstitution(req.Institution)
	seg, _ := parseSegment(req.Segment)

	view, err := h.service.Thresholds(r.Context(), inst, seg, date)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, api.ThresholdsResponse{
		Date:        formatDate(view.Date),
		Institution: string(view.Institution),
		Segment:     string(view.Segment),
		WindowSize:  view.WindowSize,
		OIHigh:      view.Thresholds.OIHigh,
		OILow:       view.Thresholds.OILow,
		ChangeHigh:  view.Thresholds.ChangeHigh,
		ChangeLow:   view.Thresholds.ChangeLow,
	})
}

// Refresh handles POST /api/v1/strength/refresh
func (h *StrengthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req api.RefreshRequest
	if r.ContentLength > 0 {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
	}
	if req.Export && h.reports == nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("export", "report export is not configured"))
		return
	}

	h.logger.InfoContext(r.Context(), "strength refresh requested",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Bool("export", req.Export),
	)

	run, err := h.service.Refresh(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	resp := toRefreshResponse(run)
	if req.Export {
		written, err := h.reports.Export(r.Context(), run)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.FileSystemError("report export", err))
			return
		}
		resp.Exported = written
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp)
}

// handleServiceError maps service sentinels to API errors and lets the
// error handler classify everything else
func (h *StrengthHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNoRun):
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusServiceUnavailable,
			apierrors.CodeServiceUnavailable,
			"No strength run available yet; trigger a refresh",
		))
	case errors.Is(err, services.ErrRefreshInProgress):
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusConflict,
			apierrors.CodeConflict,
			"A strength refresh is already running",
		))
	case errors.Is(err, services.ErrNoInput):
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusNotFound,
			apierrors.CodeNotFound,
			"No participant data found to classify",
			err.Error(),
		))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}

func toStrengthResult(r strength.Result) api.StrengthResult {
	out := api.StrengthResult{
		Date:        formatDate(r.Date),
		Institution: string(r.Institution),
		Segment:     string(r.Segment),
		Strength:    r.Label.String(),
		NetOI:       r.NetOI,
		OIChange:    r.OIChange,
	}
	if r.Segment != strength.NetOptions {
		out.OIStrength = r.OIStrength.String()
		out.ChangeStrength = r.ChangeStrength.String()
		out.OIHigh = r.Thresholds.OIHigh
		out.OILow = r.Thresholds.OILow
		out.ChangeHigh = r.Thresholds.ChangeHigh
		out.ChangeLow = r.Thresholds.ChangeLow
		out.WindowSize = r.WindowSize
	}
	return out
}

func toRefreshResponse(run *services.Run) api.RefreshResponse {
	resp := api.RefreshResponse{
		RunID:      run.ID,
		Source:     run.Source,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Dates:      make([]string, 0, len(run.Dates)),
		Results:    len(run.Results),
	}
	for _, d := range run.Dates {
		resp.Dates = append(resp.Dates, formatDate(d))
	}
	for _, s := range run.Skipped {
		resp.Skipped = append(resp.Skipped, api.SkippedRequest{
			Date:        formatDate(s.Date),
			Institution: string(s.Institution),
			Segment:     string(s.Segment),
			Reason:      s.Reason,
		})
	}
	for _, rep := range run.Accuracy {
		for _, inst := range strength.Institutions {
			c, ok := rep.Counts[inst]
			if !ok {
				continue
			}
			resp.Accuracy = append(resp.Accuracy, api.AccuracySummary{
				FlatThreshold: rep.FlatThreshold,
				Institution:   string(inst),
				Correct:       c.Correct,
				Wrong:         c.Wrong,
				Indecisive:    c.Indecisive,
				Accuracy:      c.Accuracy(),
			})
		}
	}
	return resp
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(customMiddleware.DateLayout, s)
}

func parseInstitution(s string) (strength.Institution, error) {
	if s == "" {
		return "", nil
	}
	return strength.ParseInstitution(s)
}

func parseSegment(s string) (strength.Segment, error) {
	if s == "" {
		return "", nil
	}
	return strength.ParseSegment(s)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(customMiddleware.DateLayout)
}
