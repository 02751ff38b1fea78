package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"fnocli/internal/strength"
)

// RawRowsHeader is the header written and expected for raw row CSV files
var RawRowsHeader = []string{"date", "institution", "trade_type", "net_oi"}

// ReadRawRows parses raw rows from CSV. A header row is optional.
func ReadRawRows(r io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV records: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty CSV file")
	}

	var dataStart int
	if isHeaderRow(records[0]) {
		dataStart = 1
	}

	rows := make([]RawRow, 0, len(records)-dataStart)
	for i := dataStart; i < len(records); i++ {
		row, err := parseRawRecord(records[i], i+1)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadRawRows reads raw rows from a CSV file
func LoadRawRows(path string) ([]RawRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CSV file: %w", err)
	}
	defer file.Close()

	rows, err := ReadRawRows(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

// WriteRawRows writes rows as CSV ordered by date, institution and trade type
func WriteRawRows(w io.Writer, rows []RawRow) error {
	sorted := make([]RawRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		if sorted[i].Institution != sorted[j].Institution {
			return sorted[i].Institution < sorted[j].Institution
		}
		return sorted[i].TradeType < sorted[j].TradeType
	})

	writer := csv.NewWriter(w)
	if err := writer.Write(RawRowsHeader); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for _, row := range sorted {
		record := []string{
			row.Date.Format("2006-01-02"),
			string(row.Institution),
			row.TradeType,
			strconv.FormatInt(row.NetOI, 10),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write CSV record: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// SaveRawRows writes rows to a CSV file, creating parent directories
func SaveRawRows(path string, rows []RawRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create CSV file: %w", err)
	}
	defer file.Close()

	return WriteRawRows(file, rows)
}

func parseRawRecord(record []string, lineNum int) (RawRow, error) {
	if len(record) < 4 {
		return RawRow{}, fmt.Errorf("insufficient columns in record (line %d): expected 4, got %d", lineNum, len(record))
	}

	date, err := ParseDate(record[0])
	if err != nil {
		return RawRow{}, fmt.Errorf("parse date (line %d): %w", lineNum, err)
	}

	inst, err := strength.ParseInstitution(record[1])
	if err != nil {
		return RawRow{}, fmt.Errorf("parse institution (line %d): %w", lineNum, err)
	}

	tradeType := strings.ToUpper(strings.TrimSpace(record[2]))
	if tradeType != TradeTypeCash {
		if _, err := strength.ParseSegment(tradeType); err != nil {
			return RawRow{}, fmt.Errorf("parse trade type (line %d): %w", lineNum, err)
		}
	}

	net, err := ParseQuantity(record[3])
	if err != nil {
		return RawRow{}, fmt.Errorf("parse net_oi (line %d): %w", lineNum, err)
	}

	return RawRow{Date: date, Institution: inst, TradeType: tradeType, NetOI: net}, nil
}

// ParseDate parses the date layouts found in NSE files and exports
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	layouts := []string{
		"2006-01-02",
		"02-01-2006",
		"02/01/2006",
		"02-Jan-2006",
		"Jan 02, 2006",
		"02012006",
		"2006-01-02 15:04:05",
		time.RFC3339,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return strength.NormalizeDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %q", s)
}

// ParseQuantity parses a contract count such as "1,23,456", " 42 " or "1.5e3".
// Fractional values are truncated.
func ParseQuantity(s string) (int64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	s = strings.Trim(s, `"`)
	if s == "" {
		return 0, fmt.Errorf("empty quantity")
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	return int64(f), nil
}

func isHeaderRow(record []string) bool {
	if len(record) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(record[0]))
	if strings.Contains(first, "date") {
		return true
	}
	_, err := ParseDate(record[0])
	return err != nil
}
