package dataprocessing

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fnocli/internal/strength"
)

func d(i int) time.Time {
	return time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func TestPivotProcessor(t *testing.T) {
	rows := []RawRow{
		{Date: d(1), Institution: strength.FII, TradeType: TradeTypeFutureIndex, NetOI: 150},
		{Date: d(0), Institution: strength.FII, TradeType: TradeTypeFutureIndex, NetOI: 100},
		{Date: d(2), Institution: strength.FII, TradeType: TradeTypeFutureIndex, NetOI: 90},
		{Date: d(0), Institution: strength.FII, TradeType: TradeTypePut, NetOI: -20},
		{Date: d(1), Institution: strength.FII, TradeType: TradeTypePut, NetOI: 10},
		{Date: d(0), Institution: strength.FII, TradeType: TradeTypeCash, NetOI: 999},
		{Date: d(0), Institution: strength.DII, TradeType: TradeTypeCall, NetOI: 5},
	}

	obs, stats, err := NewPivotProcessor(DefaultOptions()).ProcessWithStats(rows)
	require.NoError(t, err)

	assert.Equal(t, 7, stats.InputRows)
	assert.Equal(t, 6, stats.Observations)
	assert.Equal(t, 1, stats.SkippedCash)
	assert.Equal(t, 3, stats.SeriesCount)
	assert.Equal(t, 3, stats.DatesProcessed)

	h, err := strength.NewHistory(obs)
	require.NoError(t, err)

	fut := h.Series(strength.Key{Institution: strength.FII, Segment: strength.IndexFutures})
	require.Len(t, fut, 3)
	assert.Equal(t, []int64{0, 50, -60}, []int64{fut[0].OIChange, fut[1].OIChange, fut[2].OIChange})

	put := h.Series(strength.Key{Institution: strength.FII, Segment: strength.PutOptions})
	require.Len(t, put, 2)
	assert.Equal(t, int64(0), put[0].OIChange)
	assert.Equal(t, int64(30), put[1].OIChange)

	// output is ordered by date, institution, segment
	assert.Equal(t, d(0), obs[0].Date)
	assert.Equal(t, strength.DII, obs[0].Institution)
}

func TestPivotProcessorFilters(t *testing.T) {
	rows := []RawRow{
		{Date: d(0), Institution: strength.FII, TradeType: TradeTypeFutureStock, NetOI: 1},
		{Date: d(0), Institution: strength.FII, TradeType: TradeTypeCall, NetOI: 1},
		{Date: d(0), Institution: strength.DII, TradeType: TradeTypeCall, NetOI: 1},
	}

	opts := ProcessingOptions{Institutions: []strength.Institution{strength.FII}}
	obs, stats, err := NewPivotProcessor(opts).ProcessWithStats(rows)
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, strength.CallOptions, obs[0].Segment)
	assert.Equal(t, 2, stats.SkippedFilter)
}

func TestPivotProcessorErrors(t *testing.T) {
	t.Run("duplicate row", func(t *testing.T) {
		_, err := NewPivotProcessor(DefaultOptions()).Process([]RawRow{
			{Date: d(0), Institution: strength.FII, TradeType: TradeTypeCall, NetOI: 1},
			{Date: d(0), Institution: strength.FII, TradeType: "CALL_OPTIONS", NetOI: 2},
		})
		assert.True(t, errors.Is(err, strength.ErrDuplicateObservation))
	})

	t.Run("unknown trade type", func(t *testing.T) {
		_, err := NewPivotProcessor(DefaultOptions()).Process([]RawRow{
			{Date: d(0), Institution: strength.FII, TradeType: "SWAP", NetOI: 1},
		})
		assert.Error(t, err)
	})
}
