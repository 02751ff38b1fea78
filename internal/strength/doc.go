// Package strength classifies daily institutional derivatives positioning
// into categorical strength labels such as STRONG BULLISH or MILD BEARISH.
//
// # Core Components
//
// The engine works on per-institution, per-segment series of daily
// observations (net open interest and its day-over-day change):
//
//  1. History: an immutable, date-ordered store that serves lookback windows
//  2. Percentile engine: interpolated percentile thresholds over a window
//  3. Classifier: OI tier, change tier, direction and truth-table combination
//
// # Classification
//
// For an as-of date the classifier takes up to 60 prior observations (the
// as-of day is excluded) and computes the 80th and 40th percentiles of
// |net_oi| and the 80th and 20th percentiles of |oi_change|. Today's values
// are bucketed as STRONG (at or above the high cut-off), MEDIUM (at or above
// the low cut-off) or MILD. Direction follows the sign of net_oi and is
// inverted for put segments. The final tier is the weaker of the OI and
// change tiers. A day with zero net OI and zero change is INDECISIVE.
//
// # Architecture
//
//   - types.go: Institutions, segments, observations and results
//   - label.go: Tier, direction and label types
//   - config.go: Classifier parameters and validation
//   - history.go: History store and lookback windows
//   - percentile.go: Percentile methods and threshold computation
//   - classifier.go: Per-observation classification
//   - truth_table.go: Min-tier and directional combination tables
//   - net_options.go: CALL x PUT net options view
//   - batch.go: Concurrent batch analysis
//
// # Usage Example
//
//	h, err := strength.NewHistory(observations)
//	if err != nil {
//	    return err
//	}
//
//	c, err := strength.NewClassifier(h, strength.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//
//	res, err := c.Classify(strength.FII, strength.IndexFutures, date)
//	if errors.Is(err, strength.ErrInsufficientHistory) {
//	    // skip this key for now
//	}
//	fmt.Println(res.Label) // e.g. MILD BULLISH
package strength
