package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"fnocli/internal/accuracy"
	"fnocli/internal/config"
	"fnocli/internal/dataprocessing"
	"fnocli/internal/infrastructure"
	"fnocli/internal/strength"
)

// HistorySource loads participant data. dataprocessing.Loader implements it.
type HistorySource interface {
	LoadHistory(ctx context.Context, path string) (*strength.History, error)
	LoadParticipantDir(ctx context.Context, dir string) ([]dataprocessing.RawRow, error)
	BuildHistory(ctx context.Context, rows []dataprocessing.RawRow) (*strength.History, error)
}

// StrengthServiceConfig holds the inputs and parameters of a run
type StrengthServiceConfig struct {
	// HistoryCSV is the raw rows CSV; when it does not exist the
	// participant reports in ParticipantDir are parsed instead
	HistoryCSV     string
	ParticipantDir string
	// IndexCSV holds index closes for accuracy scoring; optional
	IndexCSV       string
	Strength       strength.Config
	Institutions   []strength.Institution
	LastDays       int
	Workers        int
	FlatThresholds []float64
}

// StrengthServiceConfigFrom builds the service configuration from the
// application config and resolved paths
func StrengthServiceConfigFrom(cfg *config.Config, paths *config.Paths) (StrengthServiceConfig, error) {
	sc, err := cfg.StrengthConfig()
	if err != nil {
		return StrengthServiceConfig{}, err
	}
	insts, err := cfg.Institutions()
	if err != nil {
		return StrengthServiceConfig{}, err
	}
	return StrengthServiceConfig{
		HistoryCSV:     paths.HistoryCSV,
		ParticipantDir: paths.DownloadsDir,
		IndexCSV:       paths.IndexCSV,
		Strength:       sc,
		Institutions:   insts,
		LastDays:       cfg.Analysis.LastDays,
		Workers:        cfg.Analysis.Workers,
		FlatThresholds: cfg.Analysis.FlatThresholds,
	}, nil
}

// Skip records a request the batch could not classify
type Skip struct {
	Date        time.Time            `json:"date"`
	Institution strength.Institution `json:"institution"`
	Segment     strength.Segment     `json:"segment"`
	Reason      string               `json:"reason"`
	Error       string               `json:"error"`
}

// Run is the outcome of one refresh
type Run struct {
	ID         string            `json:"id"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Source     string            `json:"source"`
	Dates      []time.Time       `json:"dates"`
	Results    []strength.Result `json:"results"`
	Skipped    []Skip            `json:"skipped,omitempty"`
	Accuracy   []accuracy.Report `json:"accuracy,omitempty"`
	Config     strength.Config   `json:"config"`
}

// LatestDate returns the most recent date covered by the run
func (r *Run) LatestDate() time.Time {
	if len(r.Dates) == 0 {
		return time.Time{}
	}
	return r.Dates[len(r.Dates)-1]
}

// ResultQuery filters results. Zero fields match everything; a zero Date
// selects the latest date of the run.
type ResultQuery struct {
	Date        time.Time
	Institution strength.Institution
	Segment     strength.Segment
	AllDates    bool
}

// ThresholdsView is the threshold computation behind one classification
type ThresholdsView struct {
	Date        time.Time            `json:"date"`
	Institution strength.Institution `json:"institution"`
	Segment     strength.Segment     `json:"segment"`
	WindowSize  int                  `json:"window_size"`
	Thresholds  strength.Thresholds  `json:"thresholds"`
}

// StrengthService runs and serves strength classifications
type StrengthService struct {
	source  HistorySource
	cfg     StrengthServiceConfig
	metrics *infrastructure.StrengthMetrics
	tracer  trace.Tracer
	logger  *slog.Logger

	refreshMu  sync.Mutex
	mu         sync.RWMutex
	classifier *strength.Classifier
	latest     *Run
}

// NewStrengthService creates a strength service. metrics may be nil.
func NewStrengthService(source HistorySource, cfg StrengthServiceConfig, metrics *infrastructure.StrengthMetrics, logger *slog.Logger) *StrengthService {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Institutions) == 0 {
		cfg.Institutions = strength.Institutions
	}
	if cfg.Workers <= 0 {
		cfg.Workers = strength.DefaultWorkers
	}
	if cfg.LastDays <= 0 {
		cfg.LastDays = config.DefaultLastDays
	}
	return &StrengthService{
		source:  source,
		cfg:     cfg,
		metrics: metrics,
		tracer:  otel.Tracer(infrastructure.MeterName),
		logger:  infrastructure.WithComponent(logger, "strength_service"),
	}
}

// Refresh reloads the history and classifies the last configured days.
// Only one refresh runs at a time; a concurrent call gets
// ErrRefreshInProgress.
func (s *StrengthService) Refresh(ctx context.Context) (*Run, error) {
	if !s.refreshMu.TryLock() {
		return nil, ErrRefreshInProgress
	}
	defer s.refreshMu.Unlock()

	ctx, span := s.tracer.Start(ctx, "strength.refresh")
	defer span.End()

	run := &Run{
		ID:        infrastructure.NewID(),
		StartedAt: time.Now(),
		Config:    s.cfg.Strength,
	}
	ctx = infrastructure.WithRunID(ctx, run.ID)
	s.logger.InfoContext(ctx, "strength refresh started",
		"last_days", s.cfg.LastDays,
		"workers", s.cfg.Workers,
	)

	history, source, err := s.loadHistory(ctx)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	run.Source = source

	classifier, err := strength.NewClassifier(history, s.cfg.Strength)
	if err != nil {
		return nil, fmt.Errorf("create classifier: %w", err)
	}

	run.Dates = history.LastDates(s.cfg.LastDays)
	reqs := strength.Requests(history, run.Dates, s.cfg.Institutions, strength.Segments)
	span.SetAttributes(
		attribute.Int("strength.requests", len(reqs)),
		attribute.Int("strength.dates", len(run.Dates)),
	)

	start := time.Now()
	outcomes, err := strength.Analyze(ctx, classifier, reqs, s.cfg.Workers)
	infrastructure.RecordBatch(ctx, s.metrics, time.Since(start), len(reqs), err == nil)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("analyze: %w", err)
	}

	results, failed := strength.Split(outcomes)
	run.Skipped = s.recordSkips(ctx, failed)
	for _, r := range results {
		infrastructure.RecordClassification(ctx, s.metrics, string(r.Institution), string(r.Segment), r.Label.String())
	}
	run.Results = append(results, strength.DeriveNetOptions(results)...)
	run.Accuracy = s.evaluateAccuracy(ctx, results)
	run.FinishedAt = time.Now()

	s.mu.Lock()
	s.classifier = classifier
	s.latest = run
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "strength refresh completed",
		"source", run.Source,
		"results", len(run.Results),
		"skipped", len(run.Skipped),
		"duration", run.FinishedAt.Sub(run.StartedAt).String(),
	)
	return run, nil
}

// Latest returns the most recent run
func (s *StrengthService) Latest() (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, ErrNoRun
	}
	return s.latest, nil
}

// Results returns results matching q. A date outside the latest run is
// classified on demand against the loaded history, so requests for older
// days surface ErrNotFound or ErrInsufficientHistory from the engine.
func (s *StrengthService) Results(ctx context.Context, q ResultQuery) ([]strength.Result, error) {
	s.mu.RLock()
	run, classifier := s.latest, s.classifier
	s.mu.RUnlock()
	if run == nil {
		return nil, ErrNoRun
	}

	date := strength.NormalizeDate(q.Date)
	if q.Date.IsZero() {
		date = run.LatestDate()
	}

	if !q.AllDates && !containsDate(run.Dates, date) {
		return s.classifyOnDemand(ctx, classifier, date, q)
	}

	var out []strength.Result
	for _, r := range run.Results {
		if !q.AllDates && !r.Date.Equal(date) {
			continue
		}
		if q.Institution != "" && r.Institution != q.Institution {
			continue
		}
		if q.Segment != "" && r.Segment != q.Segment {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Thresholds returns the percentile cut-offs for a series as of date. A
// zero date means the latest date of the run.
func (s *StrengthService) Thresholds(ctx context.Context, inst strength.Institution, seg strength.Segment, date time.Time) (ThresholdsView, error) {
	s.mu.RLock()
	run, classifier := s.latest, s.classifier
	s.mu.RUnlock()
	if run == nil {
		return ThresholdsView{}, ErrNoRun
	}
	if seg == strength.NetOptions {
		return ThresholdsView{}, fmt.Errorf("%w: %s is derived and has no thresholds", strength.ErrNotFound, seg)
	}

	if date.IsZero() {
		date = run.LatestDate()
	}
	date = strength.NormalizeDate(date)

	th, n, err := classifier.Thresholds(inst, seg, date)
	if err != nil {
		s.logger.DebugContext(ctx, "thresholds unavailable",
			"institution", inst,
			"segment", seg,
			"date", date.Format("2006-01-02"),
			"error", err,
		)
		return ThresholdsView{}, err
	}
	return ThresholdsView{
		Date:        date,
		Institution: inst,
		Segment:     seg,
		WindowSize:  n,
		Thresholds:  th,
	}, nil
}

// Ready reports whether a run has completed
func (s *StrengthService) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest != nil
}

func (s *StrengthService) classifyOnDemand(ctx context.Context, classifier *strength.Classifier, date time.Time, q ResultQuery) ([]strength.Result, error) {
	insts := s.cfg.Institutions
	if q.Institution != "" {
		insts = []strength.Institution{q.Institution}
	}

	segs := strength.Segments
	switch q.Segment {
	case "":
	case strength.NetOptions:
		segs = []strength.Segment{strength.CallOptions, strength.PutOptions}
	default:
		segs = []strength.Segment{q.Segment}
	}

	var results []strength.Result
	var firstErr error
	for _, inst := range insts {
		for _, seg := range segs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			res, err := classifier.Classify(inst, seg, date)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			results = append(results, res)
		}
	}

	net := strength.DeriveNetOptions(results)
	if q.Segment == strength.NetOptions {
		results = net
	} else if q.Segment == "" {
		results = append(results, net...)
	}

	if len(results) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

func (s *StrengthService) loadHistory(ctx context.Context) (*strength.History, string, error) {
	if s.cfg.HistoryCSV != "" && config.FileExists(s.cfg.HistoryCSV) {
		h, err := s.source.LoadHistory(ctx, s.cfg.HistoryCSV)
		if err != nil {
			return nil, "", fmt.Errorf("load history %s: %w", s.cfg.HistoryCSV, err)
		}
		return h, s.cfg.HistoryCSV, nil
	}

	if s.cfg.ParticipantDir == "" {
		return nil, "", ErrNoInput
	}
	if _, err := os.Stat(s.cfg.ParticipantDir); os.IsNotExist(err) {
		return nil, "", fmt.Errorf("%w: %s", ErrNoInput, s.cfg.ParticipantDir)
	}

	rows, err := s.source.LoadParticipantDir(ctx, s.cfg.ParticipantDir)
	if errors.Is(err, dataprocessing.ErrNoParticipantFiles) {
		return nil, "", fmt.Errorf("%w: %s", ErrNoInput, s.cfg.ParticipantDir)
	}
	if err != nil {
		return nil, "", fmt.Errorf("load participant files: %w", err)
	}
	h, err := s.source.BuildHistory(ctx, rows)
	if err != nil {
		return nil, "", err
	}
	return h, s.cfg.ParticipantDir, nil
}

func (s *StrengthService) recordSkips(ctx context.Context, failed []strength.Outcome) []Skip {
	skips := make([]Skip, 0, len(failed))
	for _, o := range failed {
		reason := skipReason(o.Err)
		infrastructure.RecordSkip(ctx, s.metrics, string(o.Request.Segment), reason)
		skips = append(skips, Skip{
			Date:        o.Request.Date,
			Institution: o.Request.Institution,
			Segment:     o.Request.Segment,
			Reason:      reason,
			Error:       o.Err.Error(),
		})
	}
	if len(skips) > 0 {
		s.logger.WarnContext(ctx, "classification requests skipped",
			"count", len(skips),
			"first", skips[0].Error,
		)
	}
	return skips
}

func (s *StrengthService) evaluateAccuracy(ctx context.Context, results []strength.Result) []accuracy.Report {
	if s.cfg.IndexCSV == "" || !config.FileExists(s.cfg.IndexCSV) {
		return nil
	}
	closes, err := dataprocessing.LoadCloses(s.cfg.IndexCSV)
	if err != nil {
		s.logger.WarnContext(ctx, "index closes unavailable, skipping accuracy",
			"path", s.cfg.IndexCSV,
			"error", err,
		)
		return nil
	}
	return accuracy.EvaluateThresholds(results, closes, s.cfg.FlatThresholds)
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, strength.ErrInsufficientHistory):
		return "insufficient_history"
	case errors.Is(err, strength.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func containsDate(dates []time.Time, d time.Time) bool {
	for _, v := range dates {
		if v.Equal(d) {
			return true
		}
	}
	return false
}
