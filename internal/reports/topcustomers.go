package reports

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/salespulse/salespulse/internal/stats"
)

// TopCustomers computes the main report: one row per customer group with a
// dense period series and summary statistics, sorted by total quantity
// descending. An empty ledger slice yields an empty result, never an error.
func (s *Service) TopCustomers(ctx context.Context, filter TopCustomersFilter) ([]CustomerReportRow, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		rows, err := s.repo.TopCustomerRows(ctx, filter)
		if err != nil {
			return nil, err
		}
		return buildCustomerReport(rows, filter), nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]CustomerReportRow), nil
	}

	key, err := s.cache.BuildKey(ctx, keyTopCustomers(filter)...)
	if err != nil {
		return nil, err
	}
	var report []CustomerReportRow
	if err := s.cache.FetchJSON(ctx, key, &report, loader); err != nil {
		return nil, err
	}
	return report, nil
}

func buildCustomerReport(rows []TopCustomerAgg, filter TopCustomersFilter) []CustomerReportRow {
	groups := ProcessTimeSeries(
		rows,
		filter.Period,
		func(r TopCustomerAgg) time.Time { return r.Period },
		PeriodValue{},
		func(r TopCustomerAgg) GroupKey { return r.Key },
		func(r TopCustomerAgg) PeriodValue {
			v := PeriodValue{Qty: r.Qty, Amount: r.Amount}
			if r.Qty > 0 {
				v.Rate = ptr(r.Amount / r.Qty)
				if r.DeltaAmount != nil {
					v.Delta = ptr(*r.DeltaAmount / r.Qty)
				}
			}
			return v
		},
	)

	report := make([]CustomerReportRow, 0, len(groups))
	for _, group := range groups {
		report = append(report, summarizeGroup(group))
	}
	sort.SliceStable(report, func(i, j int) bool {
		return report[i].TotalQty > report[j].TotalQty
	})
	return report
}

func summarizeGroup(group SeriesGroup[GroupKey, PeriodValue]) CustomerReportRow {
	qtys := make([]float64, 0, len(group.Series))
	amounts := make([]float64, 0, len(group.Series))
	var rates, deltas []float64
	var totalDeltaAmount float64
	for _, p := range group.Series {
		qtys = append(qtys, p.Value.Qty)
		amounts = append(amounts, p.Value.Amount)
		if p.Value.Rate != nil {
			rates = append(rates, *p.Value.Rate)
		}
		if p.Value.Delta != nil {
			deltas = append(deltas, *p.Value.Delta)
			totalDeltaAmount += *p.Value.Delta * p.Value.Qty
		}
	}

	row := CustomerReportRow{
		GroupKey:         group.Key,
		Series:           group.Series,
		TotalQty:         stats.Sum(qtys),
		AvgQty:           stats.Mean(qtys),
		StdDevQty:        stats.StdDev(qtys),
		CvQty:            stats.CV(qtys),
		TotalAmount:      stats.Sum(amounts),
		StdDevRate:       stats.StdDev(rates),
		TotalDeltaAmount: totalDeltaAmount,
		StdDevDelta:      stats.StdDev(deltas),
	}
	row.SlopeQty, row.InterceptQty = stats.Regression(qtys)
	row.SlopeDelta, row.InterceptDelta = stats.Regression(deltas)

	// Amount-weighted averages: the naive mean of per-period ratios would
	// overweight thin periods.
	if row.TotalQty > 0 {
		row.AvgRate = ptr(row.TotalAmount / row.TotalQty)
		row.AvgDelta = ptr(totalDeltaAmount / row.TotalQty)
	}
	if row.AvgDelta != nil && *row.AvgDelta != 0 {
		row.CvDelta = row.StdDevDelta / math.Abs(*row.AvgDelta)
	}
	return row
}
