package dataprocessing

import (
	"time"

	"fnocli/internal/strength"
)

// Trade types as they appear in raw participant rows
const (
	TradeTypeFutureIndex = "FUTURE-INDEX"
	TradeTypeFutureStock = "FUTURE-STOCK"
	TradeTypeCall        = "CALL"
	TradeTypePut         = "PUT"
	TradeTypeCash        = "CASH"
)

// RawRow is one net position row: LONG minus SHORT for a participant and
// trade type on a date.
type RawRow struct {
	Date        time.Time            `json:"date"`
	Institution strength.Institution `json:"institution"`
	TradeType   string               `json:"trade_type"`
	NetOI       int64                `json:"net_oi"`
}

// Processor turns raw rows into classifier observations
type Processor interface {
	Process(rows []RawRow) ([]strength.Observation, error)
}

// ProcessingOptions configures pivoting behaviour
type ProcessingOptions struct {
	// Institutions limits output to these participants; empty keeps all
	Institutions []strength.Institution

	// KeepStockFutures keeps FUTURE-STOCK rows, which the index
	// classification does not need
	KeepStockFutures bool
}

// DefaultOptions returns default processing options
func DefaultOptions() ProcessingOptions {
	return ProcessingOptions{
		KeepStockFutures: true,
	}
}

// PivotStatistics summarises a pivot run
type PivotStatistics struct {
	InputRows      int
	Observations   int
	SkippedCash    int
	SkippedFilter  int
	SeriesCount    int
	DatesProcessed int
}
