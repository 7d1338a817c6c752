package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salespulse/salespulse/internal/periods"
)

type tsRow struct {
	key  string
	date time.Time
	qty  float64
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestProcessTimeSeriesDense(t *testing.T) {
	rows := []tsRow{
		{key: "alpha", date: day(2024, time.January, 15), qty: 10},
		{key: "alpha", date: day(2024, time.March, 2), qty: 20},
		{key: "beta", date: day(2024, time.April, 9), qty: 5},
	}

	groups := ProcessTimeSeries(rows, periods.Month,
		func(r tsRow) time.Time { return r.date },
		0.0,
		func(r tsRow) string { return r.key },
		func(r tsRow) float64 { return r.qty },
	)

	require.Len(t, groups, 2)
	// Every group spans the global Jan..Apr range, even beta with a single
	// April row.
	for _, g := range groups {
		require.Len(t, g.Series, 4, "group %s", g.Key)
		assert.Equal(t, day(2024, time.January, 1), g.Series[0].PeriodStart)
		assert.Equal(t, day(2024, time.April, 1), g.Series[3].PeriodStart)
	}

	assert.Equal(t, "alpha", groups[0].Key)
	assert.Equal(t, "beta", groups[1].Key)

	alpha := groups[0].Series
	assert.Equal(t, 10.0, alpha[0].Value)
	assert.Equal(t, 0.0, alpha[1].Value)
	assert.Equal(t, 20.0, alpha[2].Value)
	assert.Equal(t, 0.0, alpha[3].Value)

	beta := groups[1].Series
	assert.Equal(t, 0.0, beta[0].Value)
	assert.Equal(t, 5.0, beta[3].Value)
}

func TestProcessTimeSeriesEmpty(t *testing.T) {
	groups := ProcessTimeSeries(nil, periods.Month,
		func(r tsRow) time.Time { return r.date },
		0.0,
		func(r tsRow) string { return r.key },
		func(r tsRow) float64 { return r.qty },
	)
	assert.Nil(t, groups)
}

func TestProcessTimeSeriesQuarters(t *testing.T) {
	rows := []tsRow{
		{key: "alpha", date: day(2023, time.November, 20), qty: 3},
		{key: "alpha", date: day(2024, time.February, 1), qty: 7},
	}
	groups := ProcessTimeSeries(rows, periods.Quarter,
		func(r tsRow) time.Time { return r.date },
		0.0,
		func(r tsRow) string { return r.key },
		func(r tsRow) float64 { return r.qty },
	)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Series, 2)
	assert.Equal(t, day(2023, time.October, 1), groups[0].Series[0].PeriodStart)
	assert.Equal(t, day(2024, time.January, 1), groups[0].Series[1].PeriodStart)
}
