package strength

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyEndToEnd(t *testing.T) {
	netOI, changes := exampleWindow()
	netOI = append(netOI, 600000)
	changes = append(changes, 5000)
	h := mustHistory(series(FII, IndexFutures, netOI, changes))

	c, err := NewClassifier(h, DefaultConfig())
	require.NoError(t, err)

	res, err := c.Classify(FII, IndexFutures, day(21))
	require.NoError(t, err)

	assert.Equal(t, 21, res.WindowSize)
	assert.InDelta(t, 500000, res.Thresholds.OIHigh, 1e-6)
	assert.InDelta(t, 200000, res.Thresholds.OILow, 1e-6)
	assert.InDelta(t, 50000, res.Thresholds.ChangeHigh, 1e-6)
	assert.InDelta(t, 10000, res.Thresholds.ChangeLow, 1e-6)

	assert.Equal(t, StrongBullish, res.OIStrength)
	assert.Equal(t, TierMild, res.ChangeStrength.Tier)
	assert.Equal(t, MildBullish, res.Label)
	assert.Equal(t, "MILD BULLISH", res.Label.String())
}

func TestClassifyObservation(t *testing.T) {
	th := Thresholds{OIHigh: 500000, OILow: 200000, ChangeHigh: 50000, ChangeLow: 10000}
	c := &Classifier{cfg: DefaultConfig()}

	tests := []struct {
		name     string
		seg      Segment
		netOI    int64
		change   int64
		oiTier   Tier
		chTier   Tier
		expected Label
	}{
		{"strong and strong", IndexFutures, 700000, 60000, TierStrong, TierStrong, StrongBullish},
		{"strong oi mild change", IndexFutures, 600000, 5000, TierStrong, TierMild, MildBullish},
		{"medium oi strong change", IndexFutures, -300000, 80000, TierMedium, TierStrong, MediumBearish},
		{"mild oi", IndexFutures, 100000, 80000, TierMild, TierStrong, MildBullish},
		{"oi on high boundary", IndexFutures, 500000, 50000, TierStrong, TierStrong, StrongBullish},
		{"oi on low boundary", IndexFutures, 200000, 10000, TierMedium, TierMedium, MediumBullish},
		{"bearish change ignored under min", CallOptions, 600000, -60000, TierStrong, TierStrong, StrongBullish},
		{"put inverts positive oi", PutOptions, 600000, 60000, TierStrong, TierStrong, StrongBearish},
		{"put inverts negative oi", PutOptions, -600000, 60000, TierStrong, TierStrong, StrongBullish},
		{"zero oi is indecisive", IndexFutures, 0, 60000, TierMild, TierStrong, IndecisiveLabel},
		{"zero oi and zero change", IndexFutures, 0, 0, TierMild, TierMild, IndecisiveLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.ClassifyObservation(Observation{
				Date:        day(0),
				Institution: FII,
				Segment:     tt.seg,
				NetOI:       tt.netOI,
				OIChange:    tt.change,
			}, th)

			assert.Equal(t, tt.oiTier, res.OIStrength.Tier)
			assert.Equal(t, tt.chTier, res.ChangeStrength.Tier)
			assert.Equal(t, tt.expected, res.Label)
		})
	}
}

func TestClassifyTieBreaksUpward(t *testing.T) {
	obs := series(PRO, IndexFutures, constant(31, 1000), constant(31, 100))
	h := mustHistory(obs)
	c, err := NewClassifier(h, DefaultConfig())
	require.NoError(t, err)

	res, err := c.Classify(PRO, IndexFutures, day(30))
	require.NoError(t, err)
	assert.Equal(t, TierStrong, res.OIStrength.Tier)
	assert.Equal(t, TierStrong, res.ChangeStrength.Tier)
	assert.Equal(t, StrongBullish, res.Label)
}

func TestClassifyZeroOverride(t *testing.T) {
	netOI := append(constant(25, 0), 0)
	changes := append(constant(25, 0), 0)
	h := mustHistory(series(DII, CallOptions, netOI, changes))
	c, err := NewClassifier(h, DefaultConfig())
	require.NoError(t, err)

	res, err := c.Classify(DII, CallOptions, day(25))
	require.NoError(t, err)
	assert.Equal(t, IndecisiveLabel, res.Label)
	assert.Equal(t, "INDECISIVE", res.Label.String())
}

func TestClassifyPutInversion(t *testing.T) {
	netOI, changes := exampleWindow()
	netOI = append(netOI, 600000)
	changes = append(changes, 60000)
	h := mustHistory(
		series(FII, CallOptions, netOI, changes),
		series(FII, PutOptions, netOI, changes),
	)
	c, err := NewClassifier(h, DefaultConfig())
	require.NoError(t, err)

	call, err := c.Classify(FII, CallOptions, day(21))
	require.NoError(t, err)
	put, err := c.Classify(FII, PutOptions, day(21))
	require.NoError(t, err)

	assert.Equal(t, call.Label.Tier, put.Label.Tier)
	assert.Equal(t, Bullish, call.Label.Direction)
	assert.Equal(t, Bearish, put.Label.Direction)
}

func TestClassifyErrors(t *testing.T) {
	h := mustHistory(series(CLIENT, IndexFutures, constant(11, 100), constant(11, 10)))
	c, err := NewClassifier(h, DefaultConfig())
	require.NoError(t, err)

	t.Run("insufficient history", func(t *testing.T) {
		_, err := c.Classify(CLIENT, IndexFutures, day(10))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInsufficientHistory))
	})

	t.Run("missing observation", func(t *testing.T) {
		_, err := c.Classify(CLIENT, IndexFutures, day(40))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("smaller minimum accepts the window", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MinHistory = 10
		c, err := NewClassifier(h, cfg)
		require.NoError(t, err)

		res, err := c.Classify(CLIENT, IndexFutures, day(10))
		require.NoError(t, err)
		assert.Equal(t, 10, res.WindowSize)
	})
}

func TestClassifyJointOptionsPool(t *testing.T) {
	call := series(FII, CallOptions, constant(21, 100), constant(21, 10))
	put := series(FII, PutOptions, constant(21, 900), constant(21, 90))
	h := mustHistory(call, put)

	cfg := DefaultConfig()
	cfg.Pool = PoolJointOptions
	c, err := NewClassifier(h, cfg)
	require.NoError(t, err)

	res, err := c.Classify(FII, CallOptions, day(20))
	require.NoError(t, err)
	assert.Equal(t, 40, res.WindowSize)
	assert.InDelta(t, 900, res.Thresholds.OIHigh, 1e-9)
	assert.InDelta(t, 100, res.Thresholds.OILow, 1e-9)
	assert.Equal(t, TierMedium, res.OIStrength.Tier)

	t.Run("futures keep their own pool", func(t *testing.T) {
		h := mustHistory(call, put, series(FII, IndexFutures, constant(21, 5), constant(21, 1)))
		c, err := NewClassifier(h, cfg)
		require.NoError(t, err)

		res, err := c.Classify(FII, IndexFutures, day(20))
		require.NoError(t, err)
		assert.Equal(t, 20, res.WindowSize)
	})

	t.Run("missing partner propagates", func(t *testing.T) {
		c, err := NewClassifier(mustHistory(call), cfg)
		require.NoError(t, err)

		_, err = c.Classify(FII, CallOptions, day(20))
		assert.True(t, errors.Is(err, ErrInsufficientHistory))
	})
}

func TestClassifyParticipantPool(t *testing.T) {
	fiiCall := series(FII, CallOptions, constant(21, 100), constant(21, 10))
	proPut := series(PRO, PutOptions, constant(21, 900), constant(21, 90))
	diiCall := series(DII, CallOptions, constant(21, 5), constant(21, 1))
	fiiFut := series(FII, IndexFutures, constant(21, 5), constant(21, 1))
	proFut := series(PRO, IndexFutures, constant(21, 50), constant(21, 10))
	h := mustHistory(fiiCall, proPut, diiCall, fiiFut, proFut)

	cfg := DefaultConfig()
	cfg.Pool = PoolParticipants
	c, err := NewClassifier(h, cfg)
	require.NoError(t, err)

	t.Run("options pool across participants", func(t *testing.T) {
		res, err := c.Classify(FII, CallOptions, day(20))
		require.NoError(t, err)
		assert.Equal(t, 40, res.WindowSize)
		assert.InDelta(t, 900, res.Thresholds.OIHigh, 1e-9)
		assert.InDelta(t, 100, res.Thresholds.OILow, 1e-9)
		assert.InDelta(t, 90, res.Thresholds.ChangeHigh, 1e-9)
		assert.Equal(t, TierMedium, res.OIStrength.Tier)

		put, n, err := c.Thresholds(PRO, PutOptions, day(20))
		require.NoError(t, err)
		assert.Equal(t, 40, n)
		assert.Equal(t, res.Thresholds, put)
	})

	t.Run("institution outside the pool adds its own window", func(t *testing.T) {
		res, err := c.Classify(DII, CallOptions, day(20))
		require.NoError(t, err)
		assert.Equal(t, 60, res.WindowSize)
		assert.InDelta(t, 900, res.Thresholds.OIHigh, 1e-9)
		assert.InDelta(t, 100, res.Thresholds.OILow, 1e-9)
		assert.Equal(t, TierMild, res.OIStrength.Tier)
	})

	t.Run("futures pool separately from options", func(t *testing.T) {
		res, err := c.Classify(FII, IndexFutures, day(20))
		require.NoError(t, err)
		assert.Equal(t, 40, res.WindowSize)
		assert.InDelta(t, 50, res.Thresholds.OIHigh, 1e-9)
		assert.InDelta(t, 5, res.Thresholds.OILow, 1e-9)
		assert.Equal(t, TierMedium, res.OIStrength.Tier)
	})

	t.Run("own history still required", func(t *testing.T) {
		_, _, err := c.Thresholds(CLIENT, CallOptions, day(20))
		assert.True(t, errors.Is(err, ErrInsufficientHistory))
	})
}

func TestClassifyDirectionalMode(t *testing.T) {
	th := Thresholds{OIHigh: 500000, OILow: 200000, ChangeHigh: 50000, ChangeLow: 10000}
	cfg := DefaultConfig()
	cfg.Combine = CombineDirectional
	c := &Classifier{cfg: cfg}

	res := c.ClassifyObservation(Observation{Segment: IndexFutures, NetOI: 100000, OIChange: -80000}, th)
	assert.Equal(t, MildBullish, res.OIStrength)
	assert.Equal(t, StrongBearish, res.ChangeStrength)
	assert.Equal(t, MediumBearish, res.Label)

	res = c.ClassifyObservation(Observation{Segment: IndexFutures, NetOI: 600000, OIChange: -60000}, th)
	assert.Equal(t, IndecisiveLabel, res.Label)

	res = c.ClassifyObservation(Observation{Segment: IndexFutures, NetOI: 600000, OIChange: 0}, th)
	assert.Equal(t, MildBullish, res.Label)
}

func TestNewClassifier(t *testing.T) {
	h := mustHistory()

	_, err := NewClassifier(nil, DefaultConfig())
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.OIPercentiles = Percentiles{High: 40, Low: 80}
	_, err = NewClassifier(h, cfg)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = NewClassifier(h, DefaultConfig())
	assert.NoError(t, err)
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, TierStrong, TierFor(10, 10, 5))
	assert.Equal(t, TierMedium, TierFor(5, 10, 5))
	assert.Equal(t, TierMild, TierFor(4.99, 10, 5))
	assert.Equal(t, TierStrong, TierFor(0, 0, 0))
}

func TestDirectionOf(t *testing.T) {
	assert.Equal(t, Bullish, DirectionOf(1, false))
	assert.Equal(t, Bearish, DirectionOf(-1, false))
	assert.Equal(t, Indecisive, DirectionOf(0, false))
	assert.Equal(t, Bearish, DirectionOf(1, true))
	assert.Equal(t, Bullish, DirectionOf(-1, true))
	assert.Equal(t, Indecisive, DirectionOf(0, true))
}
