package reports

import (
	"context"
	"time"

	"github.com/salespulse/salespulse/internal/prices"
)

// TopCustomerAgg is one server-side aggregated bucket: a group key and
// period with summed quantity, amount and benchmark delta amount.
// DeltaAmount is nil when no interpolated methanol price covers the
// contract dates behind the bucket.
type TopCustomerAgg struct {
	Key         GroupKey
	Period      time.Time
	Qty         float64
	Amount      float64
	DeltaAmount *float64
}

// InvoiceQty is a per-invoice-date quantity for one consignee.
type InvoiceQty struct {
	Consignee string
	InvDate   time.Time
	Qty       float64
}

// ContractLine is one aggregated lifting row of the buying-pattern scan.
type ContractLine struct {
	Consignee    string
	ContractDate time.Time
	InvDate      time.Time
	Qty          float64
}

// Repository is the push-down query port the engine runs against.
type Repository interface {
	TopCustomerRows(ctx context.Context, filter TopCustomersFilter) ([]TopCustomerAgg, error)
	LostCustomerRows(ctx context.Context, filter LostCustomersFilter) ([]InvoiceQty, error)
	BuyingPatternRows(ctx context.Context, filter BuyingPatternFilter) ([]ContractLine, error)
	// InvoiceDateRange returns the global min/max invoice date.
	InvoiceDateRange(ctx context.Context) (DateRange, error)
	// ContractLiftingSpan returns min contract date to max invoice date.
	ContractLiftingSpan(ctx context.Context) (DateRange, error)
}

// PriceSource provides the dense interpolated methanol series.
type PriceSource interface {
	SeriesBetween(ctx context.Context, from, to time.Time) (*prices.Series, error)
}

// Service coordinates report computation with the cache layer. It is
// stateless per request; concurrent calls share nothing mutable.
type Service struct {
	repo   Repository
	prices PriceSource
	cache  *Cache
}

// NewService wires the report engine.
func NewService(repo Repository, priceSource PriceSource, cache *Cache) *Service {
	return &Service{repo: repo, prices: priceSource, cache: cache}
}

// SalesDateRange exposes the ledger's global invoice date span.
func (s *Service) SalesDateRange(ctx context.Context) (DateRange, error) {
	return s.repo.InvoiceDateRange(ctx)
}

func ptr(v float64) *float64 {
	return &v
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
