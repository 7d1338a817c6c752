// Package prices turns the sparse daily methanol price series into a dense
// one. Gaps between two known prices are linearly interpolated day by day;
// dates past the final known price are not filled at all, so the dense
// series is bounded strictly by real observations.
package prices

import (
	"sort"
	"time"
)

// PricePoint is a raw anchor row. Price is nil on non-trading days.
type PricePoint struct {
	Date  time.Time
	Price *float64
}

// InterpolatedPoint is one day of the dense series.
type InterpolatedPoint struct {
	Date         time.Time
	Price        float64
	ForwardFill  float64
	BackwardFill float64
	Interpolated bool
}

// Interpolate produces one point per calendar day from the first to the last
// non-nil anchor. ForwardFill holds the left anchor across a gap,
// BackwardFill the right one. The final anchor emits only itself.
func Interpolate(points []PricePoint) []InterpolatedPoint {
	anchors := make([]PricePoint, 0, len(points))
	for _, p := range points {
		if p.Price != nil {
			anchors = append(anchors, PricePoint{Date: midnight(p.Date), Price: p.Price})
		}
	}
	sort.Slice(anchors, func(i, j int) bool { return anchors[i].Date.Before(anchors[j].Date) })

	var out []InterpolatedPoint
	for i, a := range anchors {
		price := *a.Price
		if i == len(anchors)-1 {
			out = append(out, InterpolatedPoint{
				Date:         a.Date,
				Price:        price,
				ForwardFill:  price,
				BackwardFill: price,
			})
			break
		}
		next := anchors[i+1]
		nextPrice := *next.Price
		span := float64(daysBetween(a.Date, next.Date))
		for d := a.Date; d.Before(next.Date); d = d.AddDate(0, 0, 1) {
			elapsed := float64(daysBetween(a.Date, d))
			point := InterpolatedPoint{
				Date:         d,
				Price:        price + (nextPrice-price)*elapsed/span,
				ForwardFill:  price,
				BackwardFill: nextPrice,
				Interpolated: !d.Equal(a.Date),
			}
			if d.Equal(a.Date) {
				point.BackwardFill = price
			}
			out = append(out, point)
		}
	}
	return out
}

// Series provides date-keyed lookup of the dense price curve.
type Series struct {
	byDay map[time.Time]float64
}

// NewSeries indexes interpolated points by day.
func NewSeries(points []InterpolatedPoint) *Series {
	byDay := make(map[time.Time]float64, len(points))
	for _, p := range points {
		byDay[midnight(p.Date)] = p.Price
	}
	return &Series{byDay: byDay}
}

// At reports the price for a day. Days outside the interpolated range,
// including any date after the last known anchor, are not found.
func (s *Series) At(date time.Time) (float64, bool) {
	price, ok := s.byDay[midnight(date)]
	return price, ok
}

// Len returns the number of covered days.
func (s *Series) Len() int {
	return len(s.byDay)
}

func midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
