package services

import "errors"

var (
	// ErrNoRun is returned when results are requested before the first refresh
	ErrNoRun = errors.New("no strength run available")
	// ErrRefreshInProgress is returned when a refresh is requested while one is running
	ErrRefreshInProgress = errors.New("strength refresh already in progress")
	// ErrNoInput is returned when neither a history CSV nor participant files exist
	ErrNoInput = errors.New("no participant input found")
)
