// Package api contains API contract definitions for the strength service.
// Version v1 represents the current stable API version.
package api

// StrengthRequest selects classified results. An empty date means the latest
// date of the most recent run.
type StrengthRequest struct {
	Date        string `json:"date" query:"date" validate:"omitempty,isodate"`
	Institution string `json:"institution" query:"institution" validate:"omitempty,institution"`
	Segment     string `json:"segment" query:"segment" validate:"omitempty,segment"`
	AllDates    bool   `json:"all_dates" query:"all_dates"`
}

// ThresholdsRequest selects the percentile cut-offs of one series
type ThresholdsRequest struct {
	Date        string `json:"date" query:"date" validate:"omitempty,isodate"`
	Institution string `json:"institution" query:"institution" validate:"required,institution"`
	Segment     string `json:"segment" query:"segment" validate:"required,segment"`
}

// RefreshRequest triggers a new run. The body is optional.
type RefreshRequest struct {
	Export bool `json:"export"`
}
