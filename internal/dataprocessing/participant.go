package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"fnocli/internal/strength"
)

const (
	participantFilePrefix = "fao_participant_oi_"
	participantDateLayout = "02012006"
)

// ParticipantPosition is one participant's row of the NSE participant-wise
// open interest report, in contracts.
type ParticipantPosition struct {
	Date             time.Time            `json:"date"`
	Institution      strength.Institution `json:"institution"`
	FutureIndexLong  int64                `json:"future_index_long"`
	FutureIndexShort int64                `json:"future_index_short"`
	FutureStockLong  int64                `json:"future_stock_long"`
	FutureStockShort int64                `json:"future_stock_short"`
	CallLong         int64                `json:"call_long"`
	PutLong          int64                `json:"put_long"`
	CallShort        int64                `json:"call_short"`
	PutShort         int64                `json:"put_short"`
}

// RawRows returns the LONG minus SHORT net rows for the position
func (p ParticipantPosition) RawRows() []RawRow {
	return []RawRow{
		{Date: p.Date, Institution: p.Institution, TradeType: TradeTypeFutureIndex, NetOI: p.FutureIndexLong - p.FutureIndexShort},
		{Date: p.Date, Institution: p.Institution, TradeType: TradeTypeFutureStock, NetOI: p.FutureStockLong - p.FutureStockShort},
		{Date: p.Date, Institution: p.Institution, TradeType: TradeTypeCall, NetOI: p.CallLong - p.CallShort},
		{Date: p.Date, Institution: p.Institution, TradeType: TradeTypePut, NetOI: p.PutLong - p.PutShort},
	}
}

// PositionsToRawRows flattens positions into raw rows
func PositionsToRawRows(positions []ParticipantPosition) []RawRow {
	rows := make([]RawRow, 0, len(positions)*4)
	for _, p := range positions {
		rows = append(rows, p.RawRows()...)
	}
	return rows
}

// ParticipantFileName returns the NSE archive file name for a trading date
func ParticipantFileName(date time.Time) string {
	return participantFilePrefix + date.Format(participantDateLayout) + ".csv"
}

// ParticipantFileDate extracts the trading date from an NSE participant OI
// file name such as fao_participant_oi_28082020.csv.
func ParticipantFileDate(name string) (time.Time, error) {
	base := strings.ToLower(filepath.Base(name))
	if !strings.HasPrefix(base, participantFilePrefix) {
		return time.Time{}, fmt.Errorf("not a participant OI file: %s", name)
	}
	stamp := strings.TrimPrefix(base, participantFilePrefix)
	stamp = strings.TrimSuffix(stamp, filepath.Ext(stamp))
	date, err := time.Parse(participantDateLayout, stamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date from %s: %w", name, err)
	}
	return date, nil
}

// ParseParticipantOI parses an NSE participant-wise open interest CSV.
// When date is zero it is taken from the report title ("... as on Aug 28, 2020").
func ParseParticipantOI(r io.Reader, date time.Time) ([]ParticipantPosition, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read participant CSV: %w", err)
	}
	return parseParticipantRecords(records, date)
}

// parseParticipantRecords extracts positions from the report grid. Rows are
// matched on their first cell (Client, DII, FII, Pro); the TOTAL row and
// anything else is ignored.
func parseParticipantRecords(records [][]string, date time.Time) ([]ParticipantPosition, error) {
	if date.IsZero() {
		for _, rec := range records {
			if len(rec) == 0 {
				continue
			}
			if d, ok := titleDate(rec[0]); ok {
				date = d
				break
			}
		}
		if date.IsZero() {
			return nil, fmt.Errorf("participant report has no date")
		}
	}
	date = strength.NormalizeDate(date)

	var positions []ParticipantPosition
	for i, rec := range records {
		if len(rec) == 0 {
			continue
		}
		inst, err := strength.ParseInstitution(rec[0])
		if err != nil {
			continue
		}
		if len(rec) < 9 {
			return nil, fmt.Errorf("participant row %d (%s): expected at least 9 columns, got %d", i+1, inst, len(rec))
		}

		values := make([]int64, 8)
		for j := range values {
			v, err := ParseQuantity(rec[j+1])
			if err != nil {
				return nil, fmt.Errorf("participant row %d (%s) column %d: %w", i+1, inst, j+2, err)
			}
			values[j] = v
		}

		positions = append(positions, ParticipantPosition{
			Date:             date,
			Institution:      inst,
			FutureIndexLong:  values[0],
			FutureIndexShort: values[1],
			FutureStockLong:  values[2],
			FutureStockShort: values[3],
			CallLong:         values[4],
			PutLong:          values[5],
			CallShort:        values[6],
			PutShort:         values[7],
		})
	}

	if len(positions) == 0 {
		return nil, fmt.Errorf("no participant rows found")
	}
	return positions, nil
}

func titleDate(cell string) (time.Time, bool) {
	lower := strings.ToLower(cell)
	idx := strings.LastIndex(lower, "as on")
	if idx < 0 {
		return time.Time{}, false
	}
	rest := strings.TrimSpace(cell[idx+len("as on"):])
	for _, layout := range []string{"Jan 02, 2006", "Jan 2, 2006", "02-Jan-2006", "02-01-2006"} {
		if t, err := time.Parse(layout, rest); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
