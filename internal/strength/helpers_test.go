package strength

import (
	"time"
)

var baseDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func day(i int) time.Time {
	return baseDate.AddDate(0, 0, i)
}

// series builds consecutive daily observations starting at baseDate
func series(inst Institution, seg Segment, netOI, changes []int64) []Observation {
	obs := make([]Observation, len(netOI))
	for i := range netOI {
		var ch int64
		if i < len(changes) {
			ch = changes[i]
		}
		obs[i] = Observation{
			Date:        day(i),
			Institution: inst,
			Segment:     seg,
			NetOI:       netOI[i],
			OIChange:    ch,
		}
	}
	return obs
}

// constant returns n copies of v
func constant(n int, v int64) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// exampleWindow returns 21 net OI and change values whose linear 80th/40th
// percentiles of |net_oi| are 500,000/200,000 and whose 80th/20th
// percentiles of |oi_change| are 50,000/10,000.
func exampleWindow() ([]int64, []int64) {
	netOI := make([]int64, 21)
	changes := make([]int64, 21)
	for i := 0; i < 21; i++ {
		switch {
		case i <= 8:
			netOI[i] = int64(i) * 25000
		case i <= 16:
			netOI[i] = 200000 + int64(i-8)*37500
		default:
			netOI[i] = 500000 + int64(i-16)*100000
		}

		switch {
		case i <= 4:
			changes[i] = int64(i) * 2500
		case i <= 15:
			changes[i] = 10000 + int64(i-4)*3000
		case i == 16:
			changes[i] = 50000
		default:
			changes[i] = 50000 + int64(i-16)*10000
		}
	}
	return netOI, changes
}

func mustHistory(obs ...[]Observation) *History {
	var all []Observation
	for _, o := range obs {
		all = append(all, o...)
	}
	h, err := NewHistory(all)
	if err != nil {
		panic(err)
	}
	return h
}
