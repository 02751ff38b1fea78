package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"fnocli/internal/config"
	"fnocli/internal/exporter"
	"fnocli/internal/infrastructure"
)

type exportStep struct {
	name string
	fn   func() (string, error)
}

// ReportService writes the CSV and workbook reports of a run
type ReportService struct {
	paths      *config.Paths
	strength   *exporter.StrengthExporter
	accuracy   *exporter.AccuracyExporter
	workbook   *exporter.WorkbookExporter
	logger     *slog.Logger
	dailyDir   string
	writeDaily bool
}

// NewReportService creates a report service writing under paths.ReportsDir.
// When daily is set, one CSV per trading day is also written to the daily
// subdirectory.
func NewReportService(paths *config.Paths, daily bool, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		paths:      paths,
		strength:   exporter.NewStrengthExporter(paths, logger),
		accuracy:   exporter.NewAccuracyExporter(paths, logger),
		workbook:   exporter.NewWorkbookExporter(paths, logger),
		logger:     infrastructure.WithComponent(logger, "report_service"),
		dailyDir:   filepath.Join(paths.ReportsDir, "daily"),
		writeDaily: daily,
	}
}

// Export writes every report for run and returns the files written
func (rs *ReportService) Export(ctx context.Context, run *Run) ([]string, error) {
	if run == nil {
		return nil, ErrNoRun
	}

	var written []string
	steps := []exportStep{
		{"strength", func() (string, error) {
			return rs.strength.ExportResults(run.Results, rs.paths.StrengthReportCSV)
		}},
		{"thresholds", func() (string, error) {
			return rs.strength.ExportThresholds(run.Results, rs.paths.ThresholdsReportCSV)
		}},
		{"net_options", func() (string, error) {
			return rs.strength.ExportNetOptions(run.Results, rs.paths.NetOptionsReportCSV)
		}},
		{"workbook", func() (string, error) {
			return rs.workbook.ExportWorkbook(run.Results, run.Accuracy, rs.paths.StrengthWorkbook)
		}},
	}
	if len(run.Accuracy) > 0 {
		steps = append(steps, exportStep{"accuracy", func() (string, error) {
			return rs.accuracy.ExportAccuracy(run.Accuracy, rs.paths.AccuracyReportCSV)
		}})
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		path, err := step.fn()
		if err != nil {
			return written, fmt.Errorf("export %s report: %w", step.name, err)
		}
		written = append(written, path)
	}

	if rs.writeDaily {
		daily, err := rs.strength.ExportDailyReports(run.Results, rs.dailyDir, nil)
		written = append(written, daily...)
		if err != nil {
			return written, fmt.Errorf("export daily reports: %w", err)
		}
	}

	rs.logger.InfoContext(ctx, "reports exported",
		"run_id", run.ID,
		"files", len(written),
	)
	return written, nil
}
