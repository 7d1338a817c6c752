// Package periods implements the calendar-bucket arithmetic shared by the
// reporting engine. All bucket boundaries are midnight UTC.
package periods

import (
	"errors"
	"time"
)

// Granularity selects the width of a calendar bucket.
type Granularity string

const (
	// Month buckets start on day 1 of each month.
	Month Granularity = "month"
	// Quarter buckets start on Jan/Apr/Jul/Oct 1.
	Quarter Granularity = "quarter"
	// Year buckets start on Jan 1.
	Year Granularity = "year"
)

// ErrInvalidGranularity indicates an unsupported granularity token.
var ErrInvalidGranularity = errors.New("periods: invalid granularity")

// Parse converts a request token into a Granularity.
func Parse(s string) (Granularity, error) {
	switch Granularity(s) {
	case Month, Quarter, Year:
		return Granularity(s), nil
	}
	return "", ErrInvalidGranularity
}

// Start returns the first instant of the bucket containing t.
func Start(t time.Time, g Granularity) time.Time {
	t = t.UTC()
	switch g {
	case Quarter:
		q := (int(t.Month()) - 1) / 3
		return time.Date(t.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
	case Year:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

// Next returns the start of the bucket following the one containing t.
func Next(t time.Time, g Granularity) time.Time {
	start := Start(t, g)
	switch g {
	case Quarter:
		return start.AddDate(0, 3, 0)
	case Year:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}

// All returns every bucket start between the buckets containing from and to,
// inclusive of both ends, strictly ascending. Returns nil when from > to.
func All(from, to time.Time, g Granularity) []time.Time {
	if from.After(to) {
		return nil
	}
	last := Start(to, g)
	var out []time.Time
	for p := Start(from, g); !p.After(last); p = Next(p, g) {
		out = append(out, p)
	}
	return out
}

// MonthsBetween returns the number of whole calendar months from earlier to
// later. A partial trailing month does not count: exactly-one-month gaps
// count as 1, one day short of a month counts as 0.
func MonthsBetween(earlier, later time.Time) int {
	earlier, later = earlier.UTC(), later.UTC()
	if later.Before(earlier) {
		return -MonthsBetween(later, earlier)
	}
	months := (later.Year()-earlier.Year())*12 + int(later.Month()) - int(earlier.Month())
	if months > 0 && later.Day() < earlier.Day() {
		months--
	}
	return months
}
