// Package stats provides the descriptive statistics used by the report
// engine: totals, population standard deviation, coefficient of variation
// and an index-based least-squares trend.
package stats

import "math"

// Sum adds all values.
func Sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Sum(values) / float64(len(values))
}

// StdDev returns the population standard deviation (divide by N). These are
// dashboard descriptives over the full period range, not a sample estimate.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := Mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}

// CV returns the coefficient of variation relative to |mean|, 0 when the
// mean is 0 so an all-zero series never produces NaN.
func CV(values []float64) float64 {
	m := Mean(values)
	if m == 0 {
		return 0
	}
	return StdDev(values) / math.Abs(m)
}

// Regression fits y = slope*x + intercept by ordinary least squares with the
// slice index as x. Fewer than 2 points cannot fit a line and yield {0, 0}.
func Regression(values []float64) (slope, intercept float64) {
	n := float64(len(values))
	if n < 2 {
		return 0, 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, 0
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
