package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStdDevIsPopulation(t *testing.T) {
	// Population std dev of {2, 4, 4, 4, 5, 5, 7, 9} is exactly 2.
	got := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 2.0, got, 1e-12)
}

func TestCVZeroGuard(t *testing.T) {
	assert.Equal(t, 0.0, CV([]float64{0, 0, 0, 0}))
	assert.Equal(t, 0.0, CV(nil))
}

func TestCV(t *testing.T) {
	assert.InDelta(t, 0.5, CV([]float64{5, 15}), 1e-12) // mean 10, stddev 5
}

func TestRegression(t *testing.T) {
	slope, intercept := Regression([]float64{3, 5, 7, 9})
	assert.InDelta(t, 2.0, slope, 1e-12)
	assert.InDelta(t, 3.0, intercept, 1e-12)
}

func TestRegressionUnderTwoPoints(t *testing.T) {
	slope, intercept := Regression([]float64{42})
	assert.Zero(t, slope)
	assert.Zero(t, intercept)

	slope, intercept = Regression(nil)
	assert.Zero(t, slope)
	assert.Zero(t, intercept)
}

func TestMeanAndSumEmpty(t *testing.T) {
	assert.Zero(t, Mean(nil))
	assert.Zero(t, Sum(nil))
}
