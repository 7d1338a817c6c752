package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salespulse/salespulse/internal/prices"
)

func patternPrices() *stubPrices {
	p300, p310 := 300.0, 310.0
	return &stubPrices{anchors: []prices.PricePoint{
		{Date: day(2024, time.January, 1), Price: &p300},
		{Date: day(2024, time.January, 11), Price: &p310},
	}}
}

func TestBuyingPatternGain(t *testing.T) {
	repo := &stubRepo{
		contractSpan: DateRange{From: day(2024, time.January, 1), To: day(2024, time.January, 11)},
		patternRows: []ContractLine{
			{Consignee: "Acme Chemicals", ContractDate: day(2024, time.January, 1), InvDate: day(2024, time.January, 3), Qty: 10},
			{Consignee: "Acme Chemicals", ContractDate: day(2024, time.January, 1), InvDate: day(2024, time.January, 6), Qty: 5},
		},
	}
	svc := NewService(repo, patternPrices(), nil)

	result, err := svc.CustomerBuyingPattern(context.Background(), BuyingPatternFilter{})
	require.NoError(t, err)
	require.Len(t, result.Contracts, 1)
	assert.Zero(t, result.SkippedContracts)
	assert.Zero(t, result.SkippedLiftings)

	c := result.Contracts[0]
	assert.Equal(t, "Acme Chemicals", c.Consignee)
	assert.Equal(t, 300.0, c.ContractMethanolPrice)
	assert.Equal(t, 15.0, c.ContractQty)
	assert.Equal(t, day(2024, time.January, 3), c.FirstLiftingDate)
	assert.Equal(t, day(2024, time.January, 6), c.FinalLiftingDate)
	require.Len(t, c.Liftings, 2)

	// Anchors ramp one currency unit per day, so Jan 3 prices at 302 and
	// Jan 6 at 305. Gain per lifting is qty*(price-300)/2*1000.
	assert.InDelta(t, 302.0, c.Liftings[0].MethanolPrice, 1e-9)
	assert.InDelta(t, 10*2*500+5*5*500, c.Gain, 1e-6)
}

func TestBuyingPatternSplitsContracts(t *testing.T) {
	repo := &stubRepo{
		contractSpan: DateRange{From: day(2024, time.January, 1), To: day(2024, time.January, 11)},
		patternRows: []ContractLine{
			{Consignee: "Acme Chemicals", ContractDate: day(2024, time.January, 1), InvDate: day(2024, time.January, 2), Qty: 1},
			{Consignee: "Acme Chemicals", ContractDate: day(2024, time.January, 5), InvDate: day(2024, time.January, 8), Qty: 2},
			{Consignee: "Beta Resins", ContractDate: day(2024, time.January, 5), InvDate: day(2024, time.January, 9), Qty: 3},
		},
	}
	svc := NewService(repo, patternPrices(), nil)

	result, err := svc.CustomerBuyingPattern(context.Background(), BuyingPatternFilter{})
	require.NoError(t, err)
	require.Len(t, result.Contracts, 3)
	assert.Equal(t, day(2024, time.January, 1), result.Contracts[0].ContractDate)
	assert.Equal(t, day(2024, time.January, 5), result.Contracts[1].ContractDate)
	assert.Equal(t, "Beta Resins", result.Contracts[2].Consignee)
}

func TestBuyingPatternSkipsUnpriced(t *testing.T) {
	repo := &stubRepo{
		contractSpan: DateRange{From: day(2024, time.January, 1), To: day(2024, time.February, 10)},
		patternRows: []ContractLine{
			// Priced contract with one lifting past the final anchor.
			{Consignee: "Acme Chemicals", ContractDate: day(2024, time.January, 1), InvDate: day(2024, time.January, 3), Qty: 10},
			{Consignee: "Acme Chemicals", ContractDate: day(2024, time.January, 1), InvDate: day(2024, time.February, 5), Qty: 4},
			// Contract signed after the final anchor: no signing price.
			{Consignee: "Beta Resins", ContractDate: day(2024, time.February, 1), InvDate: day(2024, time.February, 8), Qty: 7},
		},
	}
	svc := NewService(repo, patternPrices(), nil)

	result, err := svc.CustomerBuyingPattern(context.Background(), BuyingPatternFilter{})
	require.NoError(t, err)
	require.Len(t, result.Contracts, 1)
	assert.Equal(t, 1, result.SkippedContracts)
	assert.Equal(t, 1, result.SkippedLiftings)

	c := result.Contracts[0]
	assert.Equal(t, 10.0, c.ContractQty, "unpriced lifting must not enter totals")
	require.Len(t, c.Liftings, 1)
}

func TestBuyingPatternEmpty(t *testing.T) {
	svc := NewService(&stubRepo{}, patternPrices(), nil)
	result, err := svc.CustomerBuyingPattern(context.Background(), BuyingPatternFilter{})
	require.NoError(t, err)
	assert.Equal(t, []Contract{}, result.Contracts)
}
