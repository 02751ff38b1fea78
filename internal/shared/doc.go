// Package shared holds helpers used by more than one package that do not
// belong to any domain layer.
//
// The testutil subpackage provides a capturing slog handler so tests can
// assert on structured log output:
//
//	logger, handler := testutil.NewTestLogger(t)
//	svc := services.NewStrengthService(loader, cfg, nil, logger)
//	...
//	testutil.AssertLogContains(t, handler, slog.LevelWarn, "skipped request")
//
// Nothing here may import a domain package, so every package can depend
// on it without cycles.
package shared
