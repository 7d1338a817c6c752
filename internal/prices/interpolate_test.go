package prices

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func ptr(v float64) *float64 { return &v }

func TestInterpolateLinearGap(t *testing.T) {
	points := []PricePoint{
		{Date: day(1), Price: ptr(10)},
		{Date: day(2)},
		{Date: day(3)},
		{Date: day(4)},
		{Date: day(5), Price: ptr(20)},
	}

	got := Interpolate(points)
	require.Len(t, got, 5)

	assert.Equal(t, 10.0, got[0].Price)
	assert.False(t, got[0].Interpolated)
	assert.InDelta(t, 12.5, got[1].Price, 1e-12)
	assert.InDelta(t, 15.0, got[2].Price, 1e-12)
	assert.True(t, got[2].Interpolated)
	assert.InDelta(t, 17.5, got[3].Price, 1e-12)
	assert.Equal(t, 20.0, got[4].Price)
	assert.False(t, got[4].Interpolated)
}

func TestInterpolateFillColumns(t *testing.T) {
	got := Interpolate([]PricePoint{
		{Date: day(1), Price: ptr(10)},
		{Date: day(4), Price: ptr(40)},
	})
	require.Len(t, got, 4)

	// Anchor day: both fills hold the anchor itself.
	assert.Equal(t, 10.0, got[0].ForwardFill)
	assert.Equal(t, 10.0, got[0].BackwardFill)
	// Gap days: forward keeps the left anchor, backward the right.
	assert.Equal(t, 10.0, got[1].ForwardFill)
	assert.Equal(t, 40.0, got[1].BackwardFill)
	assert.Equal(t, 10.0, got[2].ForwardFill)
	assert.Equal(t, 40.0, got[2].BackwardFill)
}

func TestInterpolateNoTrailingFill(t *testing.T) {
	got := Interpolate([]PricePoint{
		{Date: day(1), Price: ptr(10)},
		{Date: day(3), Price: ptr(30)},
	})

	// The final anchor emits only itself; nothing past day 3.
	require.Len(t, got, 3)
	assert.Equal(t, day(3), got[len(got)-1].Date)

	series := NewSeries(got)
	_, ok := series.At(day(4))
	assert.False(t, ok)
}

func TestInterpolateSingleAnchor(t *testing.T) {
	got := Interpolate([]PricePoint{{Date: day(7), Price: ptr(12)}})

	require.Len(t, got, 1)
	assert.Equal(t, 12.0, got[0].Price)
	assert.False(t, got[0].Interpolated)
}

func TestInterpolateEmpty(t *testing.T) {
	assert.Empty(t, Interpolate(nil))
	assert.Empty(t, Interpolate([]PricePoint{{Date: day(1)}}))
}

func TestSeriesLookupNormalizesTime(t *testing.T) {
	series := NewSeries(Interpolate([]PricePoint{
		{Date: day(1), Price: ptr(10)},
		{Date: day(2), Price: ptr(11)},
	}))

	price, ok := series.At(time.Date(2024, time.January, 2, 15, 30, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 11.0, price)
}
