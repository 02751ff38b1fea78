package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"fnocli/internal/config"
	"fnocli/internal/files"
)

// utf8BOM is written ahead of CSV content so Excel detects UTF-8
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter renders report tables and places them under the configured
// report or download directories.
type CSVWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{paths: paths, logger: logger}
}

// WriteOptions configures a single table write
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool
}

// WriteCSV renders the table and replaces filePath with it in one rename, so
// readers polling the reports directory never observe a half written file.
// It returns the resolved path.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) (string, error) {
	fullPath := w.ResolvePath(filePath)

	body, err := encodeTable(options)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", filepath.Base(fullPath), err)
	}
	if err := files.WriteFileAtomic(fullPath, body); err != nil {
		return "", err
	}

	w.logger.Debug("CSV written",
		slog.String("path", fullPath),
		slog.Int("rows", len(options.Records)),
		slog.Int("bytes", len(body)))
	return fullPath, nil
}

// WriteReport writes a BOM prefixed table meant to be opened in a spreadsheet
func (w *CSVWriter) WriteReport(filePath string, headers []string, records [][]string) (string, error) {
	return w.WriteCSV(filePath, WriteOptions{Headers: headers, Records: records, BOMPrefix: true})
}

func encodeTable(options WriteOptions) ([]byte, error) {
	var buf bytes.Buffer
	if options.BOMPrefix {
		buf.Write(utf8BOM)
	}

	cw := csv.NewWriter(&buf)
	if len(options.Headers) > 0 {
		if err := cw.Write(options.Headers); err != nil {
			return nil, err
		}
	}
	for i, record := range options.Records {
		if len(options.Headers) > 0 && len(record) != len(options.Headers) {
			return nil, fmt.Errorf("row %d has %d fields, want %d", i, len(record), len(options.Headers))
		}
		if err := cw.Write(record); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ResolvePath places relative paths under the reports directory. A
// "downloads/" prefix targets the downloads directory instead.
func (w *CSVWriter) ResolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil {
		return filePath
	}
	if rest, ok := strings.CutPrefix(filepath.ToSlash(filePath), "downloads/"); ok {
		return w.paths.GetDownloadPath(rest)
	}
	return w.paths.GetReportPath(filePath)
}
