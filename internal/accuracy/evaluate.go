package accuracy

import (
	"sort"
	"time"

	"fnocli/internal/strength"
)

// DefaultFlatThresholds are the flat bands, in percent, reports are run at
var DefaultFlatThresholds = []float64{0.2, 0.3, 0.4}

// Close is one index closing level
type Close struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"close"`
}

// Counts tallies judged predictions for one institution
type Counts struct {
	Correct    int `json:"correct"`
	Wrong      int `json:"wrong"`
	Indecisive int `json:"indecisive"`
}

// Accuracy returns the share of decided predictions that were correct, in percent
func (c Counts) Accuracy() float64 {
	decided := c.Correct + c.Wrong
	if decided == 0 {
		return 0
	}
	return float64(c.Correct) / float64(decided) * 100
}

// Report is the outcome of one evaluation run
type Report struct {
	FlatThreshold float64                         `json:"flat_threshold"`
	Days          int                             `json:"days"`
	Counts        map[strength.Institution]Counts `json:"counts"`
}

type pairKey struct {
	date time.Time
	inst strength.Institution
}

// Evaluate compares every institution's CALL/PUT view on a date with the
// index move to the next trading date of the results. The next date comes
// from the participant calendar, not the close series, and a day is skipped
// when either date has no close. Institutions without both option results
// are not counted.
func Evaluate(results []strength.Result, closes []Close, flat float64) Report {
	report := Report{FlatThreshold: flat, Counts: make(map[strength.Institution]Counts)}

	closeOn := make(map[time.Time]float64, len(closes))
	for _, c := range closes {
		closeOn[strength.NormalizeDate(c.Date)] = c.Value
	}

	next := nextDates(results)

	calls := make(map[pairKey]strength.Label)
	puts := make(map[pairKey]strength.Label)
	for _, r := range results {
		k := pairKey{strength.NormalizeDate(r.Date), r.Institution}
		switch r.Segment {
		case strength.CallOptions:
			calls[k] = r.Label
		case strength.PutOptions:
			puts[k] = r.Label
		}
	}

	keys := make([]pairKey, 0, len(calls))
	for k := range calls {
		if _, ok := puts[k]; ok {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if !keys[i].date.Equal(keys[j].date) {
			return keys[i].date.Before(keys[j].date)
		}
		return keys[i].inst < keys[j].inst
	})

	days := make(map[time.Time]bool)
	for _, k := range keys {
		nextDate, ok := next[k.date]
		if !ok {
			continue
		}
		today, ok := closeOn[k.date]
		if !ok || today == 0 {
			continue
		}
		tomorrow, ok := closeOn[nextDate]
		if !ok {
			continue
		}
		change := (tomorrow - today) / today * 100
		days[k.date] = true

		counts := report.Counts[k.inst]
		correct, decided := Expect(k.inst, calls[k], puts[k]).Judge(change, flat)
		switch {
		case !decided:
			counts.Indecisive++
		case correct:
			counts.Correct++
		default:
			counts.Wrong++
		}
		report.Counts[k.inst] = counts
	}
	report.Days = len(days)

	return report
}

// nextDates maps each result date onto the following result date
func nextDates(results []strength.Result) map[time.Time]time.Time {
	seen := make(map[time.Time]bool)
	dates := make([]time.Time, 0)
	for _, r := range results {
		d := strength.NormalizeDate(r.Date)
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})

	next := make(map[time.Time]time.Time, len(dates))
	for i := 0; i+1 < len(dates); i++ {
		next[dates[i]] = dates[i+1]
	}
	return next
}

// EvaluateThresholds runs Evaluate once per flat band
func EvaluateThresholds(results []strength.Result, closes []Close, flats []float64) []Report {
	if len(flats) == 0 {
		flats = DefaultFlatThresholds
	}
	reports := make([]Report, 0, len(flats))
	for _, f := range flats {
		reports = append(reports, Evaluate(results, closes, f))
	}
	return reports
}
