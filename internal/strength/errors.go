package strength

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInsufficientHistory is returned when a lookback window holds fewer
	// observations than the configured minimum.
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrNotFound is returned when no observation exists for a key and date.
	ErrNotFound = errors.New("observation not found")
	// ErrDuplicateObservation is returned when two observations share a key and date.
	ErrDuplicateObservation = errors.New("duplicate observation")
	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid strength config")
)

// InsufficientHistoryError carries the window details behind ErrInsufficientHistory
type InsufficientHistoryError struct {
	Key  Key
	AsOf time.Time
	Have int
	Need int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("%s: %s as of %s has %d prior observations, need %d",
		ErrInsufficientHistory, e.Key, e.AsOf.Format("2006-01-02"), e.Have, e.Need)
}

// Is makes errors.Is(err, ErrInsufficientHistory) match
func (e *InsufficientHistoryError) Is(target error) bool {
	return target == ErrInsufficientHistory
}
