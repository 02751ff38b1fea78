package strength

import (
	"sort"
	"time"
)

// netOptionsTable maps (call label, put label) to the combined options view.
// Put labels are already direction-inverted, so a BEARISH put means put
// writing pressure is bearish for the index. Opposing medium or strong
// readings resolve to VOLATILE (call bullish, put bearish) or NEUTRAL.
var netOptionsTable = map[labelPair]Label{
	{MediumBullish, IndecisiveLabel}: MediumBullish,
	{MediumBullish, MediumBearish}:   VolatileLabel,
	{MediumBullish, MediumBullish}:   MediumBullish,
	{MediumBullish, StrongBearish}:   MediumBearish,
	{MediumBullish, StrongBullish}:   StrongBullish,
	{MediumBullish, MildBearish}:     MediumBullish,
	{MediumBullish, MildBullish}:     MediumBullish,

	{MediumBearish, IndecisiveLabel}: MediumBearish,
	{MediumBearish, MediumBearish}:   MediumBearish,
	{MediumBearish, MediumBullish}:   NeutralLabel,
	{MediumBearish, StrongBearish}:   StrongBearish,
	{MediumBearish, StrongBullish}:   StrongBullish,
	{MediumBearish, MildBearish}:     MediumBearish,
	{MediumBearish, MildBullish}:     MediumBearish,

	{StrongBullish, IndecisiveLabel}: StrongBullish,
	{StrongBullish, MediumBearish}:   MediumBullish,
	{StrongBullish, MediumBullish}:   StrongBullish,
	{StrongBullish, StrongBearish}:   VolatileLabel,
	{StrongBullish, StrongBullish}:   StrongBullish,
	{StrongBullish, MildBearish}:     StrongBullish,
	{StrongBullish, MildBullish}:     StrongBullish,

	{StrongBearish, IndecisiveLabel}: StrongBearish,
	{StrongBearish, MediumBearish}:   StrongBearish,
	{StrongBearish, MediumBullish}:   MediumBearish,
	{StrongBearish, StrongBearish}:   StrongBearish,
	{StrongBearish, StrongBullish}:   NeutralLabel,
	{StrongBearish, MildBearish}:     StrongBearish,
	{StrongBearish, MildBullish}:     StrongBearish,

	{MildBullish, IndecisiveLabel}: IndecisiveLabel,
	{MildBullish, MediumBearish}:   MildBearish,
	{MildBullish, MediumBullish}:   MediumBullish,
	{MildBullish, StrongBearish}:   StrongBearish,
	{MildBullish, StrongBullish}:   StrongBullish,
	{MildBullish, MildBearish}:     IndecisiveLabel,
	{MildBullish, MildBullish}:     MildBullish,

	{MildBearish, IndecisiveLabel}: IndecisiveLabel,
	{MildBearish, MediumBearish}:   MediumBearish,
	{MildBearish, MediumBullish}:   MediumBullish,
	{MildBearish, StrongBearish}:   StrongBearish,
	{MildBearish, StrongBullish}:   StrongBullish,
	{MildBearish, MildBearish}:     IndecisiveLabel,
	{MildBearish, MildBullish}:     IndecisiveLabel,
}

// CombineNetOptions merges the final CALL and PUT labels of one institution.
// Unlisted pairs, including every indecisive call, are INDECISIVE.
func CombineNetOptions(call, put Label) Label {
	if l, ok := netOptionsTable[labelPair{call, put}]; ok {
		return l
	}
	return IndecisiveLabel
}

// NetOptionsResult builds the derived NET_OPTIONS result from a CALL and PUT
// result of the same institution and date.
func NetOptionsResult(call, put Result) Result {
	window := call.WindowSize
	if put.WindowSize < window {
		window = put.WindowSize
	}
	return Result{
		Date:        call.Date,
		Institution: call.Institution,
		Segment:     NetOptions,
		NetOI:       call.NetOI - put.NetOI,
		OIChange:    call.OIChange - put.OIChange,
		WindowSize:  window,
		Label:       CombineNetOptions(call.Label, put.Label),
	}
}

// DeriveNetOptions pairs CALL and PUT results by institution and date and
// returns one NET_OPTIONS result per complete pair, ordered by date then
// institution.
func DeriveNetOptions(results []Result) []Result {
	type pairKey struct {
		date time.Time
		inst Institution
	}
	calls := make(map[pairKey]Result)
	puts := make(map[pairKey]Result)
	for _, r := range results {
		k := pairKey{NormalizeDate(r.Date), r.Institution}
		switch r.Segment {
		case CallOptions:
			calls[k] = r
		case PutOptions:
			puts[k] = r
		}
	}

	var out []Result
	for k, call := range calls {
		put, ok := puts[k]
		if !ok {
			continue
		}
		out = append(out, NetOptionsResult(call, put))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Institution < out[j].Institution
	})
	return out
}
