package reports

import (
	"context"
	"sort"
	"time"

	"github.com/salespulse/salespulse/internal/periods"
)

// statusTiers are the inactivity thresholds in months, largest first. A
// customer lands in the largest tier not exceeding their gap; 0 is current.
var statusTiers = []int{24, 12, 9, 6, 3}

// LostCustomers classifies every consignee by months since their last
// invoice, measured against the ledger's global max invoice date, and
// attaches a gap-filled monthly quantity history over the global date range
// so sparklines align across customers.
func (s *Service) LostCustomers(ctx context.Context, filter LostCustomersFilter) ([]LostCustomerRow, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		rows, err := s.repo.LostCustomerRows(ctx, filter)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return []LostCustomerRow{}, nil
		}
		span, err := s.repo.InvoiceDateRange(ctx)
		if err != nil {
			return nil, err
		}
		return buildLostCustomerReport(rows, span), nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]LostCustomerRow), nil
	}

	key, err := s.cache.BuildKey(ctx, keyLostCustomers(filter)...)
	if err != nil {
		return nil, err
	}
	var report []LostCustomerRow
	if err := s.cache.FetchJSON(ctx, key, &report, loader); err != nil {
		return nil, err
	}
	return report, nil
}

func buildLostCustomerReport(rows []InvoiceQty, span DateRange) []LostCustomerRow {
	months := periods.All(span.From, span.To, periods.Month)

	type accumulator struct {
		lastInvDate time.Time
		totalQty    float64
		byMonth     map[time.Time]float64
	}
	accs := make(map[string]*accumulator)
	var order []string
	for _, row := range rows {
		acc, ok := accs[row.Consignee]
		if !ok {
			acc = &accumulator{byMonth: make(map[time.Time]float64)}
			accs[row.Consignee] = acc
			order = append(order, row.Consignee)
		}
		if row.InvDate.After(acc.lastInvDate) {
			acc.lastInvDate = row.InvDate
		}
		acc.totalQty += row.Qty
		acc.byMonth[periods.Start(row.InvDate, periods.Month)] += row.Qty
	}

	report := make([]LostCustomerRow, 0, len(order))
	for _, consignee := range order {
		acc := accs[consignee]
		gap := periods.MonthsBetween(acc.lastInvDate, span.To)

		status := 0
		for _, tier := range statusTiers {
			if gap >= tier {
				status = tier
				break
			}
		}

		history := make([]MonthQty, 0, len(months))
		var activeSum float64
		activeMonths := 0
		for _, m := range months {
			qty := acc.byMonth[m]
			history = append(history, MonthQty{Date: m, Qty: qty})
			if qty > 0 {
				activeSum += qty
				activeMonths++
			}
		}
		var avgActive float64
		if activeMonths > 0 {
			avgActive = activeSum / float64(activeMonths)
		}

		report = append(report, LostCustomerRow{
			Consignee:              consignee,
			LastInvDate:            acc.lastInvDate,
			MonthsSinceLastInvoice: gap,
			Status:                 status,
			TotalQty:               acc.totalQty,
			AvgActiveMonthQty:      avgActive,
			History:                history,
		})
	}
	sort.SliceStable(report, func(i, j int) bool {
		return report[i].TotalQty > report[j].TotalQty
	})
	return report
}
