package strength

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchHistory() *History {
	return mustHistory(
		series(FII, IndexFutures, constant(30, 1000), constant(30, 100)),
		series(FII, CallOptions, constant(30, 500), constant(30, 50)),
		series(DII, IndexFutures, constant(10, 1000), constant(10, 100)),
	)
}

func TestRequests(t *testing.T) {
	h := batchHistory()
	reqs := Requests(h, []time.Time{day(25), day(29)}, []Institution{FII, DII}, []Segment{IndexFutures, CallOptions})

	// DII has no CALL_OPTIONS series
	require.Len(t, reqs, 6)
	assert.Equal(t, Request{Institution: FII, Segment: IndexFutures, Date: day(25)}, reqs[0])
	assert.Equal(t, Request{Institution: DII, Segment: IndexFutures, Date: day(29)}, reqs[5])
}

func TestAnalyze(t *testing.T) {
	h := batchHistory()
	c, err := NewClassifier(h, DefaultConfig())
	require.NoError(t, err)

	reqs := []Request{
		{Institution: FII, Segment: IndexFutures, Date: day(29)},
		{Institution: DII, Segment: IndexFutures, Date: day(9)},
		{Institution: FII, Segment: CallOptions, Date: day(29)},
		{Institution: FII, Segment: CallOptions, Date: day(45)},
	}

	outcomes, err := Analyze(context.Background(), c, reqs, 2)
	require.NoError(t, err)
	require.Len(t, outcomes, len(reqs))

	for i, o := range outcomes {
		assert.Equal(t, reqs[i], o.Request)
	}

	assert.NoError(t, outcomes[0].Err)
	assert.Equal(t, StrongBullish, outcomes[0].Result.Label)
	assert.True(t, errors.Is(outcomes[1].Err, ErrInsufficientHistory))
	assert.NoError(t, outcomes[2].Err)
	assert.True(t, errors.Is(outcomes[3].Err, ErrNotFound))

	results, failed := Split(outcomes)
	assert.Len(t, results, 2)
	assert.Len(t, failed, 2)
}

func TestAnalyzeMatchesSequential(t *testing.T) {
	h := batchHistory()
	c, err := NewClassifier(h, DefaultConfig())
	require.NoError(t, err)

	reqs := Requests(h, h.LastDates(10), Institutions, Segments)
	outcomes, err := Analyze(context.Background(), c, reqs, 8)
	require.NoError(t, err)

	for _, o := range outcomes {
		res, err := c.Classify(o.Request.Institution, o.Request.Segment, o.Request.Date)
		assert.Equal(t, err, o.Err)
		assert.Equal(t, res, o.Result)
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	h := batchHistory()
	c, err := NewClassifier(h, DefaultConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Analyze(ctx, c, Requests(h, h.Dates(), Institutions, Segments), 2)
	assert.ErrorIs(t, err, context.Canceled)
}
