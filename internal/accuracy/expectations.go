package accuracy

import (
	"fnocli/internal/strength"
)

// Expectation is the index move implied by an institution's options view
type Expectation string

const (
	ExpectNone       Expectation = ""
	ExpectUp         Expectation = "UP"
	ExpectDown       Expectation = "DOWN"
	ExpectFlat       Expectation = "FLAT"
	ExpectNeutral    Expectation = "NEUTRAL"
	ExpectFlatOrUp   Expectation = "FLAT OR UP"
	ExpectFlatOrDown Expectation = "FLAT OR DOWN"
	ExpectVolatile   Expectation = "VOLATILE"
)

// Judge reports whether a next-session move of changePct percent meets the
// expectation given a flat band of ±flat percent. ok is false for ExpectNone.
func (e Expectation) Judge(changePct, flat float64) (correct, ok bool) {
	abs := changePct
	if abs < 0 {
		abs = -abs
	}
	switch e {
	case ExpectUp:
		return changePct > 0, true
	case ExpectDown:
		return changePct < 0, true
	case ExpectFlat, ExpectNeutral:
		return abs <= flat, true
	case ExpectFlatOrUp:
		return changePct >= -flat, true
	case ExpectFlatOrDown:
		return changePct <= flat, true
	case ExpectVolatile:
		return abs > flat, true
	}
	return false, false
}

type expectation struct {
	client Expectation
	other  Expectation
}

type callPut struct {
	call, put strength.Label
}

var (
	sBull = strength.StrongBullish
	mBull = strength.MediumBullish
	lBull = strength.MildBullish
	sBear = strength.StrongBearish
	mBear = strength.MediumBearish
	lBear = strength.MildBearish
	indec = strength.IndecisiveLabel
)

// expectations maps final (CALL, PUT) labels to the expected next-session
// index move. Retail (CLIENT) positioning is read contrarian.
var expectations = map[callPut]expectation{
	{indec, mBear}: {ExpectFlatOrUp, ExpectDown},
	{indec, mBull}: {ExpectFlatOrDown, ExpectFlatOrUp},
	{indec, sBear}: {ExpectFlatOrUp, ExpectDown},
	{indec, sBull}: {ExpectDown, ExpectFlatOrUp},

	{mBear, indec}: {ExpectFlatOrUp, ExpectDown},
	{mBear, mBear}: {ExpectFlatOrUp, ExpectDown},
	{mBear, mBull}: {ExpectVolatile, ExpectNeutral},
	{mBear, lBear}: {ExpectFlatOrUp, ExpectFlatOrDown},
	{mBear, lBull}: {ExpectFlatOrUp, ExpectFlatOrDown},
	{mBear, sBear}: {ExpectFlatOrUp, ExpectDown},
	{mBear, sBull}: {ExpectDown, ExpectFlatOrUp},

	{mBull, indec}: {ExpectFlatOrDown, ExpectUp},
	{mBull, mBear}: {ExpectFlat, ExpectNeutral},
	{mBull, mBull}: {ExpectFlatOrDown, ExpectUp},
	{mBull, lBear}: {ExpectFlatOrDown, ExpectUp},
	{mBull, lBull}: {ExpectFlatOrDown, ExpectUp},
	{mBull, sBear}: {ExpectFlatOrUp, ExpectDown},
	{mBull, sBull}: {ExpectDown, ExpectFlatOrUp},

	{lBear, mBear}: {ExpectFlatOrUp, ExpectFlatOrDown},
	{lBear, mBull}: {ExpectFlatOrDown, ExpectFlatOrUp},
	{lBear, sBear}: {ExpectFlatOrUp, ExpectDown},
	{lBear, sBull}: {ExpectDown, ExpectFlatOrUp},

	{lBull, mBear}: {ExpectFlatOrUp, ExpectDown},
	{lBull, mBull}: {ExpectFlatOrDown, ExpectFlatOrUp},
	{lBull, lBull}: {ExpectFlatOrDown, ExpectUp},
	{lBull, sBear}: {ExpectFlatOrUp, ExpectDown},
	{lBull, sBull}: {ExpectDown, ExpectFlatOrUp},

	{sBear, indec}: {ExpectFlatOrUp, ExpectFlatOrDown},
	{sBear, mBear}: {ExpectUp, ExpectFlatOrDown},
	{sBear, mBull}: {ExpectFlatOrUp, ExpectFlatOrDown},
	{sBear, lBear}: {ExpectUp, ExpectFlatOrDown},
	{sBear, lBull}: {ExpectUp, ExpectFlatOrDown},
	{sBear, sBear}: {ExpectUp, ExpectDown},
	{sBear, sBull}: {ExpectVolatile, ExpectNeutral},

	{sBull, indec}: {ExpectFlatOrDown, ExpectUp},
	{sBull, mBear}: {ExpectFlatOrDown, ExpectUp},
	{sBull, mBull}: {ExpectFlatOrDown, ExpectUp},
	{sBull, lBear}: {ExpectFlatOrDown, ExpectUp},
	{sBull, lBull}: {ExpectFlatOrDown, ExpectUp},
	{sBull, sBear}: {ExpectFlat, ExpectVolatile},
	{sBull, sBull}: {ExpectDown, ExpectUp},
}

// Expect returns the expected index move for an institution's final CALL and
// PUT labels. Combinations without a view yield ExpectNone.
func Expect(inst strength.Institution, call, put strength.Label) Expectation {
	e := expectations[callPut{call, put}]
	if inst == strength.CLIENT {
		return e.client
	}
	return e.other
}
