package dataprocessing

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fnocli/internal/accuracy"
	"fnocli/internal/files"
	"fnocli/internal/strength"
)

// Loader reads participant data from disk and builds classifier input
type Loader struct {
	logger    *slog.Logger
	processor *PivotProcessor
}

// NewLoader creates a loader. A nil logger falls back to slog.Default().
func NewLoader(opts ProcessingOptions, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger, processor: NewPivotProcessor(opts)}
}

// LoadHistory reads a raw rows CSV and returns the pivoted history
func (l *Loader) LoadHistory(ctx context.Context, path string) (*strength.History, error) {
	rows, err := LoadRawRows(path)
	if err != nil {
		return nil, err
	}
	return l.BuildHistory(ctx, rows)
}

// BuildHistory pivots rows into a history store
func (l *Loader) BuildHistory(ctx context.Context, rows []RawRow) (*strength.History, error) {
	obs, stats, err := l.processor.ProcessWithStats(rows)
	if err != nil {
		return nil, fmt.Errorf("pivot rows: %w", err)
	}

	l.logger.InfoContext(ctx, "pivoted participant rows",
		"input_rows", stats.InputRows,
		"observations", stats.Observations,
		"series", stats.SeriesCount,
		"dates", stats.DatesProcessed,
		"skipped_cash", stats.SkippedCash,
		"skipped_filter", stats.SkippedFilter,
	)

	h, err := strength.NewHistory(obs)
	if err != nil {
		return nil, fmt.Errorf("build history: %w", err)
	}
	return h, nil
}

// ErrNoParticipantFiles is returned when a directory holds no participant
// OI reports
var ErrNoParticipantFiles = errors.New("no participant files found")

// LoadParticipantDir parses every participant OI report in dir (CSV or
// xlsx, named fao_participant_oi_DDMMYYYY). Unreadable files are logged and
// skipped.
func (l *Loader) LoadParticipantDir(ctx context.Context, dir string) ([]RawRow, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("participant directory does not exist: %s", dir)
	}

	found, err := files.NewDiscovery("").FindDated(dir, ParticipantFileDate)
	if err != nil {
		return nil, fmt.Errorf("read participant directory: %w", err)
	}

	if len(found) == 0 {
		return nil, fmt.Errorf("%w in directory: %s", ErrNoParticipantFiles, dir)
	}
	l.logger.InfoContext(ctx, "found participant files", "dir", dir, "count", len(found))

	var rows []RawRow
	for _, f := range found {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during participant loading: %w", ctx.Err())
		default:
		}

		positions, err := l.LoadParticipantFile(f.Path)
		if err != nil {
			l.logger.WarnContext(ctx, "failed to load participant file",
				"file", f.Name,
				"error", err,
			)
			continue
		}
		rows = append(rows, PositionsToRawRows(positions)...)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no valid participant data loaded from %s", dir)
	}
	return rows, nil
}

// LoadParticipantFile parses a single participant OI report
func (l *Loader) LoadParticipantFile(path string) ([]ParticipantPosition, error) {
	date, err := ParticipantFileDate(path)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ParseWorkbook(path, date)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open participant file: %w", err)
	}
	defer file.Close()

	return ParseParticipantOI(file, date)
}

// LoadCloses reads index closes from a CSV with date and close columns
func LoadCloses(path string) ([]accuracy.Close, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open closes file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read closes CSV: %w", err)
	}

	var closes []accuracy.Close
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, fmt.Errorf("closes line %d: expected 2 columns, got %d", i+1, len(rec))
		}
		if i == 0 && isHeaderRow(rec) {
			continue
		}
		date, err := ParseDate(rec[0])
		if err != nil {
			return nil, fmt.Errorf("closes line %d: %w", i+1, err)
		}
		value, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(rec[1]), ",", ""), 64)
		if err != nil {
			return nil, fmt.Errorf("closes line %d: parse close: %w", i+1, err)
		}
		closes = append(closes, accuracy.Close{Date: date, Value: value})
	}
	return closes, nil
}
