package periods

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStart(t *testing.T) {
	at := date(2024, time.August, 17)

	assert.Equal(t, date(2024, time.August, 1), Start(at, Month))
	assert.Equal(t, date(2024, time.July, 1), Start(at, Quarter))
	assert.Equal(t, date(2024, time.January, 1), Start(at, Year))
}

func TestAllMonths(t *testing.T) {
	got := All(date(2024, time.January, 15), date(2024, time.April, 2), Month)

	require.Len(t, got, 4)
	assert.Equal(t, date(2024, time.January, 1), got[0])
	assert.Equal(t, date(2024, time.April, 1), got[3])
}

func TestAllQuartersAcrossYears(t *testing.T) {
	got := All(date(2023, time.November, 30), date(2024, time.May, 1), Quarter)

	require.Len(t, got, 3)
	assert.Equal(t, date(2023, time.October, 1), got[0])
	assert.Equal(t, date(2024, time.January, 1), got[1])
	assert.Equal(t, date(2024, time.April, 1), got[2])
}

func TestAllReversedRangeIsEmpty(t *testing.T) {
	assert.Empty(t, All(date(2024, time.May, 1), date(2024, time.January, 1), Month))
}

func TestAllSinglePeriod(t *testing.T) {
	got := All(date(2024, time.March, 3), date(2024, time.March, 28), Year)

	require.Len(t, got, 1)
	assert.Equal(t, date(2024, time.January, 1), got[0])
}

func TestMonthsBetween(t *testing.T) {
	cases := []struct {
		name     string
		earlier  time.Time
		later    time.Time
		expected int
	}{
		{"exact year", date(2023, time.June, 15), date(2024, time.June, 15), 12},
		{"one day short of a year", date(2023, time.June, 15), date(2024, time.June, 14), 11},
		{"same day", date(2024, time.June, 15), date(2024, time.June, 15), 0},
		{"partial month", date(2024, time.January, 31), date(2024, time.February, 28), 0},
		{"reversed is negative", date(2024, time.June, 1), date(2024, time.March, 1), -3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, MonthsBetween(tc.earlier, tc.later))
		})
	}
}

func TestParse(t *testing.T) {
	g, err := Parse("quarter")
	require.NoError(t, err)
	assert.Equal(t, Quarter, g)

	_, err = Parse("week")
	assert.ErrorIs(t, err, ErrInvalidGranularity)
}
