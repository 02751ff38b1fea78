package api

import (
	"time"
)

// StrengthResult is one classification as served over the API
type StrengthResult struct {
	Date           string  `json:"date"`
	Institution    string  `json:"institution"`
	Segment        string  `json:"segment"`
	Strength       string  `json:"strength"`
	NetOI          int64   `json:"net_oi"`
	OIChange       int64   `json:"oi_change"`
	OIStrength     string  `json:"oi_strength,omitempty"`
	ChangeStrength string  `json:"change_strength,omitempty"`
	OIHigh         float64 `json:"oi_high,omitempty"`
	OILow          float64 `json:"oi_low,omitempty"`
	ChangeHigh     float64 `json:"change_high,omitempty"`
	ChangeLow      float64 `json:"change_low,omitempty"`
	WindowSize     int     `json:"window_size,omitempty"`
}

// StrengthResponse lists results of the latest run
type StrengthResponse struct {
	RunID   string           `json:"run_id"`
	AsOf    string           `json:"as_of"`
	Count   int              `json:"count"`
	Results []StrengthResult `json:"results"`
}

// ThresholdsResponse carries the cut-offs behind one classification
type ThresholdsResponse struct {
	Date        string  `json:"date"`
	Institution string  `json:"institution"`
	Segment     string  `json:"segment"`
	WindowSize  int     `json:"window_size"`
	OIHigh      float64 `json:"oi_high"`
	OILow       float64 `json:"oi_low"`
	ChangeHigh  float64 `json:"change_high"`
	ChangeLow   float64 `json:"change_low"`
}

// SkippedRequest describes a classification the run could not produce
type SkippedRequest struct {
	Date        string `json:"date"`
	Institution string `json:"institution"`
	Segment     string `json:"segment"`
	Reason      string `json:"reason"`
}

// AccuracySummary is the per participant hit rate at one flat band
type AccuracySummary struct {
	FlatThreshold float64 `json:"flat_threshold"`
	Institution   string  `json:"institution"`
	Correct       int     `json:"correct"`
	Wrong         int     `json:"wrong"`
	Indecisive    int     `json:"indecisive"`
	Accuracy      float64 `json:"accuracy"`
}

// RefreshResponse summarises a completed run
type RefreshResponse struct {
	RunID      string            `json:"run_id"`
	Source     string            `json:"source"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Dates      []string          `json:"dates"`
	Results    int               `json:"results"`
	Skipped    []SkippedRequest  `json:"skipped,omitempty"`
	Accuracy   []AccuracySummary `json:"accuracy,omitempty"`
	Exported   []string          `json:"exported,omitempty"`
}
