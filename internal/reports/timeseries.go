package reports

import (
	"time"

	"github.com/salespulse/salespulse/internal/periods"
)

// SeriesPoint is one bucket of a dense series.
type SeriesPoint[V any] struct {
	PeriodStart time.Time `json:"periodStart"`
	Value       V         `json:"value"`
}

// SeriesGroup pairs a grouping key with its dense series.
type SeriesGroup[K comparable, V any] struct {
	Key    K
	Series []SeriesPoint[V]
}

// ProcessTimeSeries folds raw grouped rows into one dense series per key.
//
// The period range spans the min and max of dateOf across ALL rows, not per
// group, so every group's series has identical length and aligned
// boundaries; buckets without data hold defaultValue. Groups come out in
// first-seen key order, each series ascending by period start. Zero input
// rows yield a nil result, never a placeholder group.
func ProcessTimeSeries[T any, K comparable, V any](
	rows []T,
	granularity periods.Granularity,
	dateOf func(T) time.Time,
	defaultValue V,
	keyOf func(T) K,
	valueOf func(T) V,
) []SeriesGroup[K, V] {
	if len(rows) == 0 {
		return nil
	}

	minDate := dateOf(rows[0])
	maxDate := minDate
	for _, row := range rows[1:] {
		d := dateOf(row)
		if d.Before(minDate) {
			minDate = d
		}
		if d.After(maxDate) {
			maxDate = d
		}
	}
	allPeriods := periods.All(minDate, maxDate, granularity)

	grouped := make(map[K]map[time.Time]V)
	var order []K
	for _, row := range rows {
		key := keyOf(row)
		series, ok := grouped[key]
		if !ok {
			series = make(map[time.Time]V, len(allPeriods))
			for _, p := range allPeriods {
				series[p] = defaultValue
			}
			grouped[key] = series
			order = append(order, key)
		}
		series[periods.Start(dateOf(row), granularity)] = valueOf(row)
	}

	out := make([]SeriesGroup[K, V], 0, len(order))
	for _, key := range order {
		series := make([]SeriesPoint[V], 0, len(allPeriods))
		for _, p := range allPeriods {
			series = append(series, SeriesPoint[V]{PeriodStart: p, Value: grouped[key][p]})
		}
		out = append(out, SeriesGroup[K, V]{Key: key, Series: series})
	}
	return out
}
