package dataprocessing

import (
	"fmt"
	"sort"
	"time"

	"fnocli/internal/strength"
)

// PivotProcessor converts raw participant rows into per-segment
// observations with day-over-day changes.
type PivotProcessor struct {
	opts ProcessingOptions
}

// NewPivotProcessor creates a new pivot processor
func NewPivotProcessor(opts ProcessingOptions) *PivotProcessor {
	return &PivotProcessor{opts: opts}
}

// Process implements Processor
func (p *PivotProcessor) Process(rows []RawRow) ([]strength.Observation, error) {
	obs, _, err := p.ProcessWithStats(rows)
	return obs, err
}

// ProcessWithStats pivots rows and reports what was kept and skipped.
//
// Rows are grouped by institution and segment, ordered by date, and each
// observation's change is the difference from the previous row of the same
// series. The first row of a series has a change of 0. CASH rows are
// dropped. Two rows for the same date, institution and trade type are an error.
func (p *PivotProcessor) ProcessWithStats(rows []RawRow) ([]strength.Observation, PivotStatistics, error) {
	stats := PivotStatistics{InputRows: len(rows)}

	allowed := make(map[strength.Institution]bool)
	for _, inst := range p.opts.Institutions {
		allowed[inst] = true
	}

	type rowKey struct {
		key  strength.Key
		date time.Time
	}
	seen := make(map[rowKey]bool)
	grouped := make(map[strength.Key][]strength.Observation)
	dates := make(map[time.Time]bool)

	for _, row := range rows {
		if row.TradeType == TradeTypeCash {
			stats.SkippedCash++
			continue
		}
		if len(allowed) > 0 && !allowed[row.Institution] {
			stats.SkippedFilter++
			continue
		}

		seg, err := strength.ParseSegment(row.TradeType)
		if err != nil {
			return nil, stats, fmt.Errorf("row for %s on %s: %w", row.Institution, row.Date.Format("2006-01-02"), err)
		}
		if seg == strength.StockFutures && !p.opts.KeepStockFutures {
			stats.SkippedFilter++
			continue
		}

		date := strength.NormalizeDate(row.Date)
		key := strength.Key{Institution: row.Institution, Segment: seg}
		rk := rowKey{key: key, date: date}
		if seen[rk] {
			return nil, stats, fmt.Errorf("%w: %s on %s", strength.ErrDuplicateObservation, key, date.Format("2006-01-02"))
		}
		seen[rk] = true
		dates[date] = true

		grouped[key] = append(grouped[key], strength.Observation{
			Date:        date,
			Institution: row.Institution,
			Segment:     seg,
			NetOI:       row.NetOI,
		})
	}

	var out []strength.Observation
	for _, series := range grouped {
		sort.Slice(series, func(i, j int) bool {
			return series[i].Date.Before(series[j].Date)
		})
		for i := range series {
			if i > 0 {
				series[i].OIChange = series[i].NetOI - series[i-1].NetOI
			}
		}
		out = append(out, series...)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].Institution != out[j].Institution {
			return out[i].Institution < out[j].Institution
		}
		return out[i].Segment < out[j].Segment
	})

	stats.Observations = len(out)
	stats.SeriesCount = len(grouped)
	stats.DatesProcessed = len(dates)
	return out, stats, nil
}
