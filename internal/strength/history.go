package strength

import (
	"fmt"
	"sort"
	"time"
)

// History is an immutable store of per-institution, per-segment series.
// It is safe for concurrent readers.
type History struct {
	series map[Key][]Observation
	dates  []time.Time
	count  int
}

// NewHistory groups observations into date-ordered series. Dates are
// normalised to calendar days; a repeated (date, institution, segment)
// triple is rejected.
func NewHistory(obs []Observation) (*History, error) {
	h := &History{series: make(map[Key][]Observation)}
	seen := make(map[time.Time]bool)

	for _, o := range obs {
		o.Date = NormalizeDate(o.Date)
		h.series[o.Key()] = append(h.series[o.Key()], o)
		if !seen[o.Date] {
			seen[o.Date] = true
			h.dates = append(h.dates, o.Date)
		}
	}

	for key, s := range h.series {
		sort.SliceStable(s, func(i, j int) bool {
			return s[i].Date.Before(s[j].Date)
		})
		for i := 1; i < len(s); i++ {
			if s[i].Date.Equal(s[i-1].Date) {
				return nil, fmt.Errorf("%w: %s on %s", ErrDuplicateObservation, key, s[i].Date.Format("2006-01-02"))
			}
		}
		h.count += len(s)
	}

	sort.Slice(h.dates, func(i, j int) bool {
		return h.dates[i].Before(h.dates[j])
	})

	return h, nil
}

// Append returns a new History holding the receiver's observations plus obs.
// The receiver is left unchanged.
func (h *History) Append(obs ...Observation) (*History, error) {
	all := make([]Observation, 0, h.count+len(obs))
	for _, s := range h.series {
		all = append(all, s...)
	}
	all = append(all, obs...)
	return NewHistory(all)
}

// Len returns the total number of observations
func (h *History) Len() int {
	return h.count
}

// Keys returns every series key, sorted by institution then segment
func (h *History) Keys() []Key {
	keys := make([]Key, 0, len(h.series))
	for k := range h.series {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Institution != keys[j].Institution {
			return keys[i].Institution < keys[j].Institution
		}
		return keys[i].Segment < keys[j].Segment
	})
	return keys
}

// Dates returns every distinct trading date in ascending order
func (h *History) Dates() []time.Time {
	out := make([]time.Time, len(h.dates))
	copy(out, h.dates)
	return out
}

// LastDates returns up to n most recent trading dates in ascending order
func (h *History) LastDates(n int) []time.Time {
	if n <= 0 {
		return nil
	}
	if n > len(h.dates) {
		n = len(h.dates)
	}
	out := make([]time.Time, n)
	copy(out, h.dates[len(h.dates)-n:])
	return out
}

// Series returns a copy of the series for key, oldest first
func (h *History) Series(key Key) []Observation {
	s := h.series[key]
	out := make([]Observation, len(s))
	copy(out, s)
	return out
}

// Observation returns the observation for the key on date
func (h *History) Observation(inst Institution, seg Segment, date time.Time) (Observation, error) {
	key := Key{Institution: inst, Segment: seg}
	s := h.series[key]
	date = NormalizeDate(date)

	i := sort.Search(len(s), func(i int) bool {
		return !s[i].Date.Before(date)
	})
	if i < len(s) && s[i].Date.Equal(date) {
		return s[i], nil
	}
	return Observation{}, fmt.Errorf("%w: %s on %s", ErrNotFound, key, date.Format("2006-01-02"))
}

// Window returns up to size observations strictly preceding asOf, oldest
// first. The as-of day is never part of its own window. Fewer than
// minHistory prior observations yields an *InsufficientHistoryError.
func (h *History) Window(inst Institution, seg Segment, asOf time.Time, size, minHistory int) ([]Observation, error) {
	key := Key{Institution: inst, Segment: seg}
	s := h.series[key]
	asOf = NormalizeDate(asOf)

	end := sort.Search(len(s), func(i int) bool {
		return !s[i].Date.Before(asOf)
	})
	start := end - size
	if start < 0 {
		start = 0
	}

	if end-start < minHistory {
		return nil, &InsufficientHistoryError{Key: key, AsOf: asOf, Have: end - start, Need: minHistory}
	}

	out := make([]Observation, end-start)
	copy(out, s[start:end])
	return out, nil
}
