// Package services implements the business logic layer between the HTTP
// handlers and the strength engine.
//
// StrengthService loads participant history, runs batch classification
// over the most recent trading days, derives the net options view, scores
// prediction accuracy against index closes and keeps the latest run in
// memory for the API. Requests for dates outside the latest run are
// classified on demand against the loaded history.
//
// HealthService reports liveness, readiness and version information.
//
// Services take their dependencies through constructors and log with the
// injected *slog.Logger:
//
//	svc := services.NewStrengthService(loader, cfg, metrics, logger)
//	run, err := svc.Refresh(ctx)
package services
