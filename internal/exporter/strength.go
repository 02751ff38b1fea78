package exporter

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"fnocli/internal/config"
	"fnocli/internal/strength"
)

// StrengthHeaders are the columns of the strength report
var StrengthHeaders = []string{"Date", "Participant", "Segment", "Strength", "Net OI", "OI Change"}

// ThresholdHeaders are the columns of the thresholds report
var ThresholdHeaders = []string{
	"Date", "Participant", "Segment", "Window",
	"OI High", "OI Low", "Change High", "Change Low",
	"OI Strength", "Change Strength", "Strength",
}

// StrengthExporter handles strength report generation
type StrengthExporter struct {
	csvWriter *CSVWriter
	logger    *slog.Logger
}

// NewStrengthExporter creates a new strength report exporter
func NewStrengthExporter(paths *config.Paths, logger *slog.Logger) *StrengthExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &StrengthExporter{
		csvWriter: NewCSVWriter(paths, logger),
		logger:    logger,
	}
}

// ExportResults writes every result to a single CSV ordered by date,
// participant and segment
func (e *StrengthExporter) ExportResults(results []strength.Result, outputPath string) (string, error) {
	sorted := SortResults(results)

	records := make([][]string, 0, len(sorted))
	for _, r := range sorted {
		records = append(records, resultToCSVRow(r))
	}

	return e.csvWriter.WriteCSV(outputPath, WriteOptions{
		Headers: StrengthHeaders,
		Records: records,
	})
}

// ExportDailyReports writes one strength CSV per trading day. Days listed in
// existing are skipped.
func (e *StrengthExporter) ExportDailyReports(results []strength.Result, outputDir string, existing map[string]bool) ([]string, error) {
	byDate := make(map[string][]strength.Result)
	for _, r := range results {
		key := DailyReportKey(r.Date)
		byDate[key] = append(byDate[key], r)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	var written []string
	for _, dateKey := range dates {
		if existing[dateKey] {
			continue
		}

		day := SortResults(byDate[dateKey])
		records := make([][]string, 0, len(day))
		for _, r := range day {
			records = append(records, resultToCSVRow(r))
		}

		path, err := e.csvWriter.WriteReport(filepath.Join(outputDir, DailyReportName(dateKey)), StrengthHeaders, records)
		if err != nil {
			return written, fmt.Errorf("daily report %s: %w", dateKey, err)
		}
		written = append(written, path)
	}

	e.logger.Info("daily strength reports exported",
		slog.Int("days", len(dates)),
		slog.Int("written", len(written)))
	return written, nil
}

// ExportThresholds writes the percentile thresholds and component labels
// behind each classification. Derived net options rows carry no thresholds
// and are left out.
func (e *StrengthExporter) ExportThresholds(results []strength.Result, outputPath string) (string, error) {
	var records [][]string
	for _, r := range SortResults(results) {
		if r.Segment == strength.NetOptions {
			continue
		}
		records = append(records, []string{
			formatDate(r.Date),
			string(r.Institution),
			r.Segment.DisplayName(),
			strconv.Itoa(r.WindowSize),
			formatFloat(r.Thresholds.OIHigh),
			formatFloat(r.Thresholds.OILow),
			formatFloat(r.Thresholds.ChangeHigh),
			formatFloat(r.Thresholds.ChangeLow),
			r.OIStrength.String(),
			r.ChangeStrength.String(),
			r.Label.String(),
		})
	}

	return e.csvWriter.WriteReport(outputPath, ThresholdHeaders, records)
}

// ExportNetOptions writes the derived net options view in the strength layout
func (e *StrengthExporter) ExportNetOptions(results []strength.Result, outputPath string) (string, error) {
	var records [][]string
	for _, r := range SortResults(results) {
		if r.Segment != strength.NetOptions {
			continue
		}
		records = append(records, resultToCSVRow(r))
	}
	return e.csvWriter.WriteReport(outputPath, StrengthHeaders, records)
}

// DailyReportName returns the file name of the strength report for a day
// key in 2006_01_02 form
func DailyReportName(dateKey string) string {
	return fmt.Sprintf("strength_%s.csv", dateKey)
}

// DailyReportKey returns the day key used by DailyReportName
func DailyReportKey(t time.Time) string {
	return t.Format("2006_01_02")
}

// SortResults returns a copy of results ordered by date, participant report
// order and segment report order
func SortResults(results []strength.Result) []strength.Result {
	sorted := make([]strength.Result, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Institution != b.Institution {
			return institutionRank(a.Institution) < institutionRank(b.Institution)
		}
		return segmentRank(a.Segment) < segmentRank(b.Segment)
	})
	return sorted
}

func resultToCSVRow(r strength.Result) []string {
	return []string{
		formatDate(r.Date),
		string(r.Institution),
		r.Segment.DisplayName(),
		r.Label.String(),
		formatInt(r.NetOI),
		formatInt(r.OIChange),
	}
}

func institutionRank(inst strength.Institution) int {
	for i, v := range strength.Institutions {
		if v == inst {
			return i
		}
	}
	return len(strength.Institutions)
}

func segmentRank(seg strength.Segment) int {
	for i, v := range strength.Segments {
		if v == seg {
			return i
		}
	}
	if seg == strength.NetOptions {
		return len(strength.Segments)
	}
	return len(strength.Segments) + 1
}
