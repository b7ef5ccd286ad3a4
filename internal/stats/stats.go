// Package stats implements the pure price-statistics functions used by the
// monitoring engine. No state, no I/O.
package stats

import "math"

// AnomalyDropThreshold is the drop percentage at and above which a price is
// considered anomalous. Fixed tunable, inclusive boundary.
const AnomalyDropThreshold = 25.0

// Mean returns the arithmetic mean of the series, 0 for an empty series.
func Mean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	var sum float64
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}

// StdDev returns the population standard deviation (divide by N, not N-1).
// Returns 0 for empty or singleton input.
func StdDev(series []float64) float64 {
	if len(series) < 2 {
		return 0
	}
	mean := Mean(series)
	var variance float64
	for _, v := range series {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(series))
	return math.Sqrt(variance)
}

// DealScore maps the current price against the history onto a 0-10 scale.
// z = (mean - price) / stddev; score = clamp(5 + 2z, 0, 10) rounded to one
// decimal. A price at the mean scores exactly 5; cheaper scores higher.
// Returns 0 when the history is too short (< 3 samples) or flat (stddev 0).
func DealScore(price float64, history []float64) float64 {
	if len(history) < 3 {
		return 0
	}

	mean := Mean(history)
	stdDev := StdDev(history)
	if stdDev == 0 {
		return 0
	}

	z := (mean - price) / stdDev
	score := 5 + z*2

	score = math.Max(0, math.Min(10, score))
	return math.Round(score*10) / 10
}

// DropPercent returns how far below the mean the current price sits, as a
// percentage of the mean. 0 if the mean is 0.
func DropPercent(mean, price float64) float64 {
	if mean == 0 {
		return 0
	}
	return (mean - price) / mean * 100
}

// IsAnomaly reports whether the drop is large enough to alert on.
func IsAnomaly(dropPercent float64) bool {
	return dropPercent >= AnomalyDropThreshold
}

// Merged is the result of folding one batch of fares into a route aggregate.
type Merged struct {
	Min        float64
	Max        float64
	Avg        float64
	SampleSize int
}

// MergeBatch folds a batch summary (batchMin/batchMax/batchAvg) into the
// existing aggregate using the weighted-average formula
// (avg0*n0 + avg1) / (n0 + 1). The sample size grows by one per batch, not
// per fare, so the aggregate stays O(1) to update.
func MergeBatch(existing Merged, batchMin, batchMax, batchAvg float64) Merged {
	if existing.SampleSize == 0 {
		return Merged{Min: batchMin, Max: batchMax, Avg: batchAvg, SampleSize: 1}
	}
	n := existing.SampleSize
	return Merged{
		Min:        math.Min(existing.Min, batchMin),
		Max:        math.Max(existing.Max, batchMax),
		Avg:        (existing.Avg*float64(n) + batchAvg) / float64(n+1),
		SampleSize: n + 1,
	}
}
