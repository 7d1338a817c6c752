package reports

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salespulse/salespulse/internal/periods"
	"github.com/salespulse/salespulse/internal/prices"
)

// stubRepo satisfies Repository with canned rows for engine tests.
type stubRepo struct {
	topRows      []TopCustomerAgg
	lostRows     []InvoiceQty
	patternRows  []ContractLine
	invoiceSpan  DateRange
	contractSpan DateRange
	err          error

	topCalls int
}

func (s *stubRepo) TopCustomerRows(ctx context.Context, filter TopCustomersFilter) ([]TopCustomerAgg, error) {
	s.topCalls++
	return s.topRows, s.err
}

func (s *stubRepo) LostCustomerRows(ctx context.Context, filter LostCustomersFilter) ([]InvoiceQty, error) {
	return s.lostRows, s.err
}

func (s *stubRepo) BuyingPatternRows(ctx context.Context, filter BuyingPatternFilter) ([]ContractLine, error) {
	return s.patternRows, s.err
}

func (s *stubRepo) InvoiceDateRange(ctx context.Context) (DateRange, error) {
	if s.invoiceSpan == (DateRange{}) {
		return DateRange{}, ErrNoData
	}
	return s.invoiceSpan, s.err
}

func (s *stubRepo) ContractLiftingSpan(ctx context.Context) (DateRange, error) {
	if s.contractSpan == (DateRange{}) {
		return DateRange{}, ErrNoData
	}
	return s.contractSpan, s.err
}

// stubPrices serves a series interpolated from fixed anchors.
type stubPrices struct {
	anchors []prices.PricePoint
}

func (s *stubPrices) SeriesBetween(ctx context.Context, from, to time.Time) (*prices.Series, error) {
	return prices.NewSeries(prices.Interpolate(s.anchors)), nil
}

func acmeKey() GroupKey {
	return GroupKey{Consignee: "Acme Chemicals"}
}

func TestTopCustomersWeightedRate(t *testing.T) {
	repo := &stubRepo{topRows: []TopCustomerAgg{
		{Key: acmeKey(), Period: day(2024, time.January, 1), Qty: 10, Amount: 1000},
		{Key: acmeKey(), Period: day(2024, time.March, 1), Qty: 20, Amount: 2200},
		{Key: GroupKey{Consignee: "Beta Resins"}, Period: day(2024, time.April, 1), Qty: 5, Amount: 600},
	}}
	svc := NewService(repo, &stubPrices{}, nil)

	report, err := svc.TopCustomers(context.Background(), TopCustomersFilter{Period: periods.Month})
	require.NoError(t, err)
	require.Len(t, report, 2)

	// Sorted by total quantity descending.
	acme := report[0]
	assert.Equal(t, "Acme Chemicals", acme.Consignee)
	require.Len(t, acme.Series, 4)

	assert.Equal(t, 30.0, acme.TotalQty)
	assert.Equal(t, 3200.0, acme.TotalAmount)
	// Amount-weighted: 3200/30, not the naive mean of 100 and 110.
	require.NotNil(t, acme.AvgRate)
	assert.InDelta(t, 106.6667, *acme.AvgRate, 1e-3)

	// Rate is nil for empty buckets, so only two enter the rate stats.
	assert.Nil(t, acme.Series[1].Value.Rate)
	require.NotNil(t, acme.Series[0].Value.Rate)
	assert.InDelta(t, 100.0, *acme.Series[0].Value.Rate, 1e-9)
	assert.InDelta(t, 5.0, acme.StdDevRate, 1e-9)

	assert.Equal(t, 7.5, acme.AvgQty)
}

func TestTopCustomersDeltaStats(t *testing.T) {
	repo := &stubRepo{topRows: []TopCustomerAgg{
		{Key: acmeKey(), Period: day(2024, time.January, 1), Qty: 10, Amount: 1000, DeltaAmount: ptr(200.0)},
		{Key: acmeKey(), Period: day(2024, time.February, 1), Qty: 20, Amount: 2000, DeltaAmount: ptr(-100.0)},
	}}
	svc := NewService(repo, &stubPrices{}, nil)

	report, err := svc.TopCustomers(context.Background(), TopCustomersFilter{Period: periods.Month})
	require.NoError(t, err)
	require.Len(t, report, 1)

	row := report[0]
	// Per-period deltas are 20 and -5; the total re-weights them by qty.
	assert.InDelta(t, 20*10+(-5)*20, row.TotalDeltaAmount, 1e-9)
	require.NotNil(t, row.AvgDelta)
	assert.InDelta(t, 100.0/30.0, *row.AvgDelta, 1e-9)
	assert.InDelta(t, 12.5, row.StdDevDelta, 1e-9)
}

func TestTopCustomersEmpty(t *testing.T) {
	svc := NewService(&stubRepo{}, &stubPrices{}, nil)
	report, err := svc.TopCustomers(context.Background(), TopCustomersFilter{Period: periods.Month})
	require.NoError(t, err)
	assert.Empty(t, report)
}

func TestTopCustomersCached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute)

	repo := &stubRepo{topRows: []TopCustomerAgg{
		{Key: acmeKey(), Period: day(2024, time.January, 1), Qty: 10, Amount: 1000},
	}}
	svc := NewService(repo, &stubPrices{}, cache)
	filter := TopCustomersFilter{Period: periods.Month}

	first, err := svc.TopCustomers(context.Background(), filter)
	require.NoError(t, err)
	second, err := svc.TopCustomers(context.Background(), filter)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.topCalls, "second call must hit the cache")
	assert.Equal(t, first, second)

	// A version bump invalidates without deleting keys.
	require.NoError(t, cache.Bump(context.Background()))
	_, err = svc.TopCustomers(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.topCalls)
}
