package strength

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineNetOptions(t *testing.T) {
	tests := []struct {
		call     Label
		put      Label
		expected Label
	}{
		{MediumBullish, MediumBearish, VolatileLabel},
		{StrongBullish, StrongBearish, VolatileLabel},
		{MediumBearish, MediumBullish, NeutralLabel},
		{StrongBearish, StrongBullish, NeutralLabel},
		{StrongBullish, IndecisiveLabel, StrongBullish},
		{MildBullish, IndecisiveLabel, IndecisiveLabel},
		{MildBullish, MildBearish, IndecisiveLabel},
		{MildBullish, MildBullish, MildBullish},
		{MildBullish, MediumBearish, MildBearish},
		{MediumBullish, StrongBearish, MediumBearish},
		{IndecisiveLabel, StrongBearish, IndecisiveLabel},
		{IndecisiveLabel, IndecisiveLabel, IndecisiveLabel},
	}

	for _, tt := range tests {
		t.Run(tt.call.String()+" x "+tt.put.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, CombineNetOptions(tt.call, tt.put))
		})
	}
}

func TestDeriveNetOptions(t *testing.T) {
	results := []Result{
		{Date: day(1), Institution: FII, Segment: CallOptions, NetOI: 500, OIChange: 50, WindowSize: 60, Label: StrongBullish},
		{Date: day(1), Institution: FII, Segment: PutOptions, NetOI: 200, OIChange: 80, WindowSize: 59, Label: StrongBearish},
		{Date: day(0), Institution: DII, Segment: CallOptions, NetOI: 10, Label: MediumBullish},
		{Date: day(0), Institution: DII, Segment: PutOptions, NetOI: 20, Label: MediumBullish},
		{Date: day(0), Institution: PRO, Segment: CallOptions, NetOI: 10, Label: MediumBullish},
		{Date: day(0), Institution: PRO, Segment: IndexFutures, NetOI: 10, Label: MediumBullish},
	}

	net := DeriveNetOptions(results)
	require.Len(t, net, 2)

	assert.Equal(t, DII, net[0].Institution)
	assert.Equal(t, MediumBullish, net[0].Label)
	assert.Equal(t, int64(-10), net[0].NetOI)

	assert.Equal(t, FII, net[1].Institution)
	assert.Equal(t, NetOptions, net[1].Segment)
	assert.Equal(t, VolatileLabel, net[1].Label)
	assert.Equal(t, int64(300), net[1].NetOI)
	assert.Equal(t, int64(-30), net[1].OIChange)
	assert.Equal(t, 59, net[1].WindowSize)
}
