package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"fnocli/internal/accuracy"
)

const (
	indexCloseFilePrefix = "ind_close_all_"

	// DefaultIndexName is the index the accuracy back-test scores against
	DefaultIndexName = "Nifty 50"
)

// ErrIndexNotFound is returned when a daily index file has no row for the
// requested index
var ErrIndexNotFound = errors.New("index not found in report")

// IndexCloseFileName returns the archive name of the daily index snapshot,
// e.g. ind_close_all_28082020.csv.
func IndexCloseFileName(date time.Time) string {
	return indexCloseFilePrefix + date.Format(participantDateLayout) + ".csv"
}

// IndexCloseFileDate extracts the trading date from a daily index file name
func IndexCloseFileDate(name string) (time.Time, error) {
	base := strings.ToLower(filepath.Base(name))
	if !strings.HasPrefix(base, indexCloseFilePrefix) {
		return time.Time{}, fmt.Errorf("not an index close file: %s", name)
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(base, indexCloseFilePrefix), filepath.Ext(base))
	date, err := time.Parse(participantDateLayout, stamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date from %s: %w", name, err)
	}
	return date, nil
}

// ParseIndexClose reads a daily index snapshot (Index Name, Index Date, ...,
// Closing Index Value, ...) and returns the close of index. Names are
// matched case-insensitively.
func ParseIndexClose(r io.Reader, index string) (accuracy.Close, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return accuracy.Close{}, fmt.Errorf("read header: %w", err)
	}
	nameCol, dateCol, closeCol := -1, -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "index name":
			nameCol = i
		case "index date":
			dateCol = i
		case "closing index value":
			closeCol = i
		}
	}
	if nameCol < 0 || dateCol < 0 || closeCol < 0 {
		return accuracy.Close{}, fmt.Errorf("missing index name, date or close column in header %v", header)
	}

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return accuracy.Close{}, fmt.Errorf("read index row: %w", err)
		}
		if len(rec) <= closeCol || len(rec) <= dateCol || !strings.EqualFold(strings.TrimSpace(rec[nameCol]), index) {
			continue
		}
		date, err := ParseDate(rec[dateCol])
		if err != nil {
			return accuracy.Close{}, err
		}
		value, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(rec[closeCol]), ",", ""), 64)
		if err != nil {
			return accuracy.Close{}, fmt.Errorf("parse close of %s: %w", index, err)
		}
		return accuracy.Close{Date: date, Value: value}, nil
	}
	return accuracy.Close{}, fmt.Errorf("%w: %s", ErrIndexNotFound, index)
}

// LoadIndexCloseFile parses one daily index snapshot from disk
func LoadIndexCloseFile(path, index string) (accuracy.Close, error) {
	file, err := os.Open(path)
	if err != nil {
		return accuracy.Close{}, fmt.Errorf("open index file: %w", err)
	}
	defer file.Close()
	return ParseIndexClose(file, index)
}

// SaveCloses writes closes sorted by date as a date,close CSV readable by
// LoadCloses
func SaveCloses(path string, closes []accuracy.Close) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	sorted := append([]accuracy.Close(nil), closes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create closes file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"date", "close"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, c := range sorted {
		if err := w.Write([]string{c.Date.Format("2006-01-02"), strconv.FormatFloat(c.Value, 'f', 2, 64)}); err != nil {
			return fmt.Errorf("write close: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
