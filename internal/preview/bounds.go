package preview

import (
	"math"
	"slices"
)

const (
	lowPercentile  = 0.5  // Percent of finite pixels mapped below the first color
	highPercentile = 99.5 // Percent of finite pixels mapped below the last color

	// Below this many finite pixels the full data range is used.
	minimumSampleCount = 20
)

// Bounds is the intensity range mapped onto a color gradient.
type Bounds struct {
	Min    float64 // Low percentile intensity
	Max    float64 // High percentile intensity
	Median float64 // Median intensity
	Count  int     // Number of finite samples
}

// PercentileBounds computes color bounds of an intensity map, ignoring NaN
// and infinite values. The range is never empty.
func PercentileBounds(values []float64) Bounds {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return Bounds{Min: 0, Max: 1}
	}
	slices.Sort(finite)

	b := Bounds{
		Min:    finite[0],
		Max:    finite[len(finite)-1],
		Median: percentile(finite, 50),
		Count:  len(finite),
	}
	if len(finite) >= minimumSampleCount {
		b.Min = percentile(finite, lowPercentile)
		b.Max = percentile(finite, highPercentile)
	}

	// Ensure a non-empty range
	if b.Max <= b.Min {
		margin := math.Max(math.Abs(b.Min)*0.1, 0.5)
		b.Min -= margin
		b.Max += margin
	}
	return b
}

// percentile interpolates linearly between the closest ranks of sorted data.
func percentile(sorted []float64, p float64) float64 {
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := min(lo+1, len(sorted)-1)
	return sorted[lo] + (rank-float64(lo))*(sorted[hi]-sorted[lo])
}
