package strength

import (
	"fmt"
	"strings"
	"time"
)

// Window represents the lookback length used for percentile thresholds
type Window int

const (
	// Window20 represents a 20-session lookback
	Window20 Window = 20
	// Window60 represents a 60-session lookback
	Window60 Window = 60
	// Window120 represents a 120-session lookback
	Window120 Window = 120
)

// String returns the string representation of the window
func (w Window) String() string {
	return fmt.Sprintf("%dd", int(w))
}

// Days returns the number of trading sessions in the window
func (w Window) Days() int {
	return int(w)
}

// Institution identifies a market participant category
type Institution string

const (
	FII    Institution = "FII"
	DII    Institution = "DII"
	PRO    Institution = "PRO"
	CLIENT Institution = "CLIENT"
)

// Institutions lists every participant category in report order
var Institutions = []Institution{FII, DII, PRO, CLIENT}

// ParseInstitution normalises a participant name as found in NSE files
func ParseInstitution(s string) (Institution, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FII", "FPI":
		return FII, nil
	case "DII":
		return DII, nil
	case "PRO":
		return PRO, nil
	case "CLIENT":
		return CLIENT, nil
	}
	return "", fmt.Errorf("unknown institution %q", s)
}

// Segment is a derivatives market segment
type Segment string

const (
	IndexFutures Segment = "INDEX_FUTURES"
	StockFutures Segment = "STOCK_FUTURES"
	CallOptions  Segment = "CALL_OPTIONS"
	PutOptions   Segment = "PUT_OPTIONS"
	// NetOptions is derived from CALL_OPTIONS and PUT_OPTIONS and never stored
	NetOptions Segment = "NET_OPTIONS"
)

// Segments lists the stored segments in report order
var Segments = []Segment{IndexFutures, StockFutures, CallOptions, PutOptions}

// ParseSegment accepts the canonical names and the trade_type aliases used in
// raw participant exports (FUTURE-INDEX, CALL, PUT_OI, ...).
func ParseSegment(s string) (Segment, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INDEX_FUTURES", "FUTURE-INDEX", "FUTURE_INDEX", "INDEX FUTURES":
		return IndexFutures, nil
	case "STOCK_FUTURES", "FUTURE-STOCK", "FUTURE_STOCK", "STOCK FUTURES":
		return StockFutures, nil
	case "CALL_OPTIONS", "CALL", "CALL_OI", "CALL OPTIONS":
		return CallOptions, nil
	case "PUT_OPTIONS", "PUT", "PUT_OI", "PUT OPTIONS":
		return PutOptions, nil
	case "NET_OPTIONS", "NET OPTIONS":
		return NetOptions, nil
	}
	return "", fmt.Errorf("unknown segment %q", s)
}

// DisplayName returns the human readable segment name used in reports
func (s Segment) DisplayName() string {
	switch s {
	case IndexFutures:
		return "Index Futures"
	case StockFutures:
		return "Stock Futures"
	case CallOptions:
		return "Call Options"
	case PutOptions:
		return "Put Options"
	case NetOptions:
		return "Net Options"
	default:
		return string(s)
	}
}

// Key identifies one series in the history store
type Key struct {
	Institution Institution
	Segment     Segment
}

func (k Key) String() string {
	return string(k.Institution) + "/" + string(k.Segment)
}

// Observation is one day's positioning for an institution in a segment
type Observation struct {
	Date        time.Time   `json:"date"`
	Institution Institution `json:"institution"`
	Segment     Segment     `json:"segment"`
	NetOI       int64       `json:"net_oi"`
	OIChange    int64       `json:"oi_change"`
}

// Key returns the series key of the observation
func (o Observation) Key() Key {
	return Key{Institution: o.Institution, Segment: o.Segment}
}

// NormalizeDate truncates t to its calendar day in UTC
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Thresholds holds the percentile cut-offs derived from one lookback window.
// OI thresholds are computed on |net_oi|, change thresholds on |oi_change|.
type Thresholds struct {
	OIHigh     float64 `json:"oi_high"`
	OILow      float64 `json:"oi_low"`
	ChangeHigh float64 `json:"change_high"`
	ChangeLow  float64 `json:"change_low"`
}

// Result is the classification of one observation
type Result struct {
	Date           time.Time   `json:"date"`
	Institution    Institution `json:"institution"`
	Segment        Segment     `json:"segment"`
	NetOI          int64       `json:"net_oi"`
	OIChange       int64       `json:"oi_change"`
	Thresholds     Thresholds  `json:"thresholds"`
	WindowSize     int         `json:"window_size"`
	OIStrength     Label       `json:"oi_strength"`
	ChangeStrength Label       `json:"change_strength"`
	Label          Label       `json:"strength"`
}

// Key returns the series key of the result
func (r Result) Key() Key {
	return Key{Institution: r.Institution, Segment: r.Segment}
}
