package strength

import (
	"math"
	"sort"
)

// Percentile returns the p-th percentile (0-100) of values. The input slice
// is not modified. An empty input yields 0 and a single value is returned as is.
func Percentile(values []float64, p float64, method Method) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return percentileSorted(sorted, p, method)
}

// percentileSorted reads the p-th percentile off an ascending slice
func percentileSorted(sorted []float64, p float64, method Method) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	if p < 0 {
		p = 0
	}
	pos := p / 100 * float64(n-1)
	lo := int(math.Floor(pos))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lo)

	switch method {
	case MethodLower:
		return sorted[lo]
	case MethodNearest:
		if frac >= 0.5 {
			return sorted[lo+1]
		}
		return sorted[lo]
	default:
		if frac == 0 {
			return sorted[lo]
		}
		return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
	}
}

// ComputeThresholds derives the OI and change cut-offs from a window.
// Percentiles are taken over absolute values.
func ComputeThresholds(window []Observation, cfg Config) Thresholds {
	oi := make([]float64, len(window))
	change := make([]float64, len(window))
	for i, o := range window {
		oi[i] = absFloat(o.NetOI)
		change[i] = absFloat(o.OIChange)
	}
	return thresholdsFromAbs(oi, change, cfg)
}

// ThresholdsFromValues derives cut-offs from raw signed values
func ThresholdsFromValues(netOI, oiChange []int64, cfg Config) Thresholds {
	oi := make([]float64, len(netOI))
	for i, v := range netOI {
		oi[i] = absFloat(v)
	}
	change := make([]float64, len(oiChange))
	for i, v := range oiChange {
		change[i] = absFloat(v)
	}
	return thresholdsFromAbs(oi, change, cfg)
}

func thresholdsFromAbs(oi, change []float64, cfg Config) Thresholds {
	sort.Float64s(oi)
	sort.Float64s(change)
	return Thresholds{
		OIHigh:     percentileSorted(oi, cfg.OIPercentiles.High, cfg.Method),
		OILow:      percentileSorted(oi, cfg.OIPercentiles.Low, cfg.Method),
		ChangeHigh: percentileSorted(change, cfg.ChangePercentiles.High, cfg.Method),
		ChangeLow:  percentileSorted(change, cfg.ChangePercentiles.Low, cfg.Method),
	}
}

func absFloat(v int64) float64 {
	return math.Abs(float64(v))
}
