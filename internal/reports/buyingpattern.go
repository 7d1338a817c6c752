package reports

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/salespulse/salespulse/internal/prices"
)

// gainScale converts a per-kg methanol price delta into the per-tonne
// contract margin convention used commercially: half the delta per unit,
// scaled to currency units. Do not simplify without domain confirmation.
const gainScale = 1.0 / 2.0 * 1000.0

// CustomerBuyingPattern reconstructs per-contract lifting timelines joined
// against the interpolated methanol series. Contracts signed on a date the
// series does not cover are skipped and counted, as are liftings on
// uncovered dates; a substituted zero price would corrupt the gain metric.
func (s *Service) CustomerBuyingPattern(ctx context.Context, filter BuyingPatternFilter) (BuyingPatternResult, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		var rows []ContractLine
		var span DateRange
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			rows, err = s.repo.BuyingPatternRows(gctx, filter)
			return err
		})
		g.Go(func() error {
			var err error
			span, err = s.repo.ContractLiftingSpan(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			if errors.Is(err, ErrNoData) {
				return BuyingPatternResult{Contracts: []Contract{}}, nil
			}
			return nil, err
		}
		if len(rows) == 0 {
			return BuyingPatternResult{Contracts: []Contract{}}, nil
		}

		series, err := s.prices.SeriesBetween(ctx, span.From, span.To)
		if err != nil {
			return nil, err
		}
		return reconstructContracts(rows, series), nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return BuyingPatternResult{}, err
		}
		return value.(BuyingPatternResult), nil
	}

	key, err := s.cache.BuildKey(ctx, keyBuyingPattern(filter)...)
	if err != nil {
		return BuyingPatternResult{}, err
	}
	var result BuyingPatternResult
	if err := s.cache.FetchJSON(ctx, key, &result, loader); err != nil {
		return BuyingPatternResult{}, err
	}
	return result, nil
}

// reconstructContracts scans lifting rows ordered by (consignee, contract
// date, invoice date), opening a new contract whenever that pair changes.
func reconstructContracts(rows []ContractLine, series *prices.Series) BuyingPatternResult {
	result := BuyingPatternResult{Contracts: []Contract{}}

	var current *Contract
	currentSkipped := false
	for _, row := range rows {
		sameContract := current != nil && !currentSkipped &&
			current.Consignee == row.Consignee && current.ContractDate.Equal(row.ContractDate)
		newPair := current == nil ||
			current.Consignee != row.Consignee || !current.ContractDate.Equal(row.ContractDate)
		if currentSkipped && !newPair {
			// Later liftings of a contract we could not price.
			continue
		}

		if !sameContract {
			signingPrice, ok := series.At(row.ContractDate)
			if !ok {
				current = &Contract{Consignee: row.Consignee, ContractDate: row.ContractDate}
				currentSkipped = true
				result.SkippedContracts++
				continue
			}
			currentSkipped = false
			result.Contracts = append(result.Contracts, Contract{
				Consignee:             row.Consignee,
				ContractDate:          row.ContractDate,
				ContractMethanolPrice: signingPrice,
				FirstLiftingDate:      row.InvDate,
				FinalLiftingDate:      row.InvDate,
				Liftings:              []Lifting{},
			})
			current = &result.Contracts[len(result.Contracts)-1]
		}

		liftingPrice, ok := series.At(row.InvDate)
		if !ok {
			result.SkippedLiftings++
			continue
		}
		current.Liftings = append(current.Liftings, Lifting{
			Date:          row.InvDate,
			Qty:           row.Qty,
			MethanolPrice: liftingPrice,
		})
		current.ContractQty += row.Qty
		current.Gain += row.Qty * (liftingPrice - current.ContractMethanolPrice) * gainScale
		current.FinalLiftingDate = row.InvDate
	}
	return result
}
