package strength

import (
	"context"
	"fmt"
)

// Example_classify walks one FII index futures day through the classifier
func Example_classify() {
	netOI, changes := exampleWindow()
	netOI = append(netOI, 600000)
	changes = append(changes, 5000)

	h, err := NewHistory(series(FII, IndexFutures, netOI, changes))
	if err != nil {
		fmt.Println(err)
		return
	}

	c, err := NewClassifier(h, DefaultConfig())
	if err != nil {
		fmt.Println(err)
		return
	}

	res, err := c.Classify(FII, IndexFutures, day(21))
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("OI: %s (p80 %.0f, p40 %.0f)\n", res.OIStrength, res.Thresholds.OIHigh, res.Thresholds.OILow)
	fmt.Printf("Change: %s (p80 %.0f, p20 %.0f)\n", res.ChangeStrength, res.Thresholds.ChangeHigh, res.Thresholds.ChangeLow)
	fmt.Printf("Final: %s\n", res.Label)
	// Output:
	// OI: STRONG BULLISH (p80 500000, p40 200000)
	// Change: MILD BULLISH (p80 50000, p20 10000)
	// Final: MILD BULLISH
}

// Example_batch classifies the latest session for every series
func Example_batch() {
	h, _ := NewHistory(append(
		series(PRO, CallOptions, constant(25, 1000), constant(25, 100)),
		series(PRO, PutOptions, constant(25, 1000), constant(25, 100))...,
	))
	c, _ := NewClassifier(h, DefaultConfig())

	outcomes, err := Analyze(context.Background(), c, Requests(h, h.LastDates(1), Institutions, Segments), 2)
	if err != nil {
		fmt.Println(err)
		return
	}

	results, _ := Split(outcomes)
	for _, r := range results {
		fmt.Printf("%s %s: %s\n", r.Institution, r.Segment.DisplayName(), r.Label)
	}
	for _, r := range DeriveNetOptions(results) {
		fmt.Printf("%s %s: %s\n", r.Institution, r.Segment.DisplayName(), r.Label)
	}
	// Output:
	// PRO Call Options: STRONG BULLISH
	// PRO Put Options: STRONG BEARISH
	// PRO Net Options: VOLATILE
}
