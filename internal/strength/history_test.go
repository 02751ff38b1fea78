package strength

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHistory(t *testing.T) {
	t.Run("sorts and groups", func(t *testing.T) {
		obs := []Observation{
			{Date: day(2), Institution: FII, Segment: IndexFutures, NetOI: 3},
			{Date: day(0), Institution: FII, Segment: IndexFutures, NetOI: 1},
			{Date: day(1), Institution: DII, Segment: CallOptions, NetOI: 9},
			{Date: day(1), Institution: FII, Segment: IndexFutures, NetOI: 2},
		}

		h, err := NewHistory(obs)
		require.NoError(t, err)
		assert.Equal(t, 4, h.Len())
		assert.Equal(t, []time.Time{day(0), day(1), day(2)}, h.Dates())
		assert.Equal(t, []Key{
			{Institution: DII, Segment: CallOptions},
			{Institution: FII, Segment: IndexFutures},
		}, h.Keys())

		s := h.Series(Key{Institution: FII, Segment: IndexFutures})
		require.Len(t, s, 3)
		assert.Equal(t, []int64{1, 2, 3}, []int64{s[0].NetOI, s[1].NetOI, s[2].NetOI})
	})

	t.Run("normalises dates", func(t *testing.T) {
		ist := time.FixedZone("IST", 5*3600+1800)
		h, err := NewHistory([]Observation{
			{Date: time.Date(2024, 3, 5, 15, 30, 0, 0, ist), Institution: PRO, Segment: PutOptions, NetOI: 7},
		})
		require.NoError(t, err)

		o, err := h.Observation(PRO, PutOptions, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, int64(7), o.NetOI)
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		_, err := NewHistory([]Observation{
			{Date: day(0), Institution: FII, Segment: IndexFutures, NetOI: 1},
			{Date: day(0), Institution: FII, Segment: IndexFutures, NetOI: 2},
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDuplicateObservation))
	})

	t.Run("same date different segment is fine", func(t *testing.T) {
		_, err := NewHistory([]Observation{
			{Date: day(0), Institution: FII, Segment: CallOptions},
			{Date: day(0), Institution: FII, Segment: PutOptions},
		})
		assert.NoError(t, err)
	})
}

func TestHistoryWindow(t *testing.T) {
	netOI := make([]int64, 80)
	for i := range netOI {
		netOI[i] = int64(i)
	}
	h := mustHistory(series(FII, IndexFutures, netOI, nil))

	t.Run("excludes the as-of day", func(t *testing.T) {
		w, err := h.Window(FII, IndexFutures, day(30), 60, 20)
		require.NoError(t, err)
		require.Len(t, w, 30)
		assert.Equal(t, day(0), w[0].Date)
		assert.Equal(t, day(29), w[len(w)-1].Date)
	})

	t.Run("caps at window size", func(t *testing.T) {
		w, err := h.Window(FII, IndexFutures, day(79), 60, 20)
		require.NoError(t, err)
		require.Len(t, w, 60)
		assert.Equal(t, day(19), w[0].Date)
		assert.Equal(t, day(78), w[59].Date)
	})

	t.Run("as-of date after the last observation", func(t *testing.T) {
		w, err := h.Window(FII, IndexFutures, day(200), 60, 20)
		require.NoError(t, err)
		require.Len(t, w, 60)
		assert.Equal(t, day(79), w[59].Date)
	})

	t.Run("insufficient history", func(t *testing.T) {
		_, err := h.Window(FII, IndexFutures, day(10), 60, 20)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInsufficientHistory))

		var ih *InsufficientHistoryError
		require.True(t, errors.As(err, &ih))
		assert.Equal(t, 10, ih.Have)
		assert.Equal(t, 20, ih.Need)
		assert.Equal(t, Key{Institution: FII, Segment: IndexFutures}, ih.Key)
	})

	t.Run("unknown key has no history", func(t *testing.T) {
		_, err := h.Window(CLIENT, PutOptions, day(50), 60, 20)
		assert.True(t, errors.Is(err, ErrInsufficientHistory))
	})

	t.Run("returned window is a copy", func(t *testing.T) {
		w, err := h.Window(FII, IndexFutures, day(30), 60, 20)
		require.NoError(t, err)
		w[0].NetOI = -1

		again, err := h.Window(FII, IndexFutures, day(30), 60, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(0), again[0].NetOI)
	})
}

func TestHistoryObservation(t *testing.T) {
	h := mustHistory(series(DII, StockFutures, []int64{5, 6, 7}, []int64{0, 1, 1}))

	o, err := h.Observation(DII, StockFutures, day(1))
	require.NoError(t, err)
	assert.Equal(t, int64(6), o.NetOI)
	assert.Equal(t, int64(1), o.OIChange)

	_, err = h.Observation(DII, StockFutures, day(5))
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = h.Observation(FII, StockFutures, day(1))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestHistoryAppend(t *testing.T) {
	h := mustHistory(series(FII, CallOptions, []int64{1, 2}, nil))

	next, err := h.Append(Observation{Date: day(2), Institution: FII, Segment: CallOptions, NetOI: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, next.Len())
	assert.Equal(t, 2, h.Len())

	_, err = h.Append(Observation{Date: day(1), Institution: FII, Segment: CallOptions, NetOI: 9})
	assert.True(t, errors.Is(err, ErrDuplicateObservation))
}

func TestHistoryLastDates(t *testing.T) {
	h := mustHistory(series(FII, CallOptions, []int64{1, 2, 3, 4}, nil))

	assert.Equal(t, []time.Time{day(2), day(3)}, h.LastDates(2))
	assert.Len(t, h.LastDates(10), 4)
	assert.Nil(t, h.LastDates(0))
}
