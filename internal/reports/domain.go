// Package reports implements the sales-analytics report engine: dense
// period time series per customer group, descriptive statistics, contract
// buying-pattern timelines and lost-customer classification.
package reports

import (
	"errors"
	"strings"
	"time"

	"github.com/salespulse/salespulse/internal/periods"
)

// CategoryFilterPrefix marks a product filter that targets a normalized
// product category instead of an exact raw description.
const CategoryFilterPrefix = "C:"

// Channel filter tokens. Dealer-known means the consignee bills for goods
// shipped to somebody else through the Dealer channel; dealer-unknown means
// the dealer is invoiced and receives the goods themselves.
const (
	ChannelsAll           = "all"
	ChannelsDealerKnown   = "dealer-known"
	ChannelsDealerUnknown = "dealer-unknown"
)

// ErrNoData indicates the ledger holds no invoice rows at all.
var ErrNoData = errors.New("reports: no data")

// GroupKey identifies one report group. Dimensions excluded from the
// requested grouping stay at their zero value so rows roll up to the
// consignee level.
type GroupKey struct {
	Plant       int    `json:"plant"`
	DistChannel string `json:"distChannelDescription"`
	Recipient   string `json:"recipientName"`
	Consignee   string `json:"consigneeName"`
}

// Grouping controls which dimensions are broken out.
type Grouping struct {
	Recipient   bool
	DistChannel bool
	Plant       bool
}

// ParseGrouping reads the comma-separated grouping request parameter.
func ParseGrouping(s string) Grouping {
	var g Grouping
	for _, tok := range strings.Split(s, ",") {
		switch strings.TrimSpace(tok) {
		case "recipient":
			g.Recipient = true
		case "distChannel":
			g.DistChannel = true
		case "plant":
			g.Plant = true
		}
	}
	return g
}

// PeriodValue carries the per-bucket metrics of a customer series. Rate and
// Delta are nil for buckets with no quantity; a ratio over zero volume has
// no meaning and must not skew the statistics as a fake zero.
type PeriodValue struct {
	Qty    float64  `json:"qty"`
	Amount float64  `json:"amount"`
	Rate   *float64 `json:"rate"`
	Delta  *float64 `json:"delta"`
}

// TopCustomersFilter scopes the main report.
type TopCustomersFilter struct {
	From     *time.Time
	To       *time.Time
	Product  string
	Period   periods.Granularity
	Grouping string
	Channels string
}

// CustomerReportRow is one group of the top-customers report.
type CustomerReportRow struct {
	GroupKey
	Series []SeriesPoint[PeriodValue] `json:"series"`

	TotalQty     float64 `json:"totalQty"`
	AvgQty       float64 `json:"avgQty"`
	StdDevQty    float64 `json:"stdDevQty"`
	CvQty        float64 `json:"cvQty"`
	SlopeQty     float64 `json:"slopeQty"`
	InterceptQty float64 `json:"interceptQty"`

	TotalAmount float64  `json:"totalAmount"`
	AvgRate     *float64 `json:"avgRate"`
	StdDevRate  float64  `json:"stdDevRate"`

	TotalDeltaAmount float64  `json:"totalDeltaAmount"`
	AvgDelta         *float64 `json:"avgDelta"`
	StdDevDelta      float64  `json:"stdDevDelta"`
	CvDelta          float64  `json:"cvDelta"`
	SlopeDelta       float64  `json:"slopeDelta"`
	InterceptDelta   float64  `json:"interceptDelta"`
}

// LostCustomersFilter scopes the lost-customer report.
type LostCustomersFilter struct {
	Product string
}

// MonthQty is one month of a customer's quantity history.
type MonthQty struct {
	Date time.Time `json:"date"`
	Qty  float64   `json:"qty"`
}

// LostCustomerRow classifies a consignee by invoice inactivity.
type LostCustomerRow struct {
	Consignee              string     `json:"consigneeName"`
	LastInvDate            time.Time  `json:"lastInvDate"`
	MonthsSinceLastInvoice int        `json:"monthsSinceLastInvoice"`
	Status                 int        `json:"status"`
	TotalQty               float64    `json:"totalQty"`
	AvgActiveMonthQty      float64    `json:"avgActiveMonthQty"`
	History                []MonthQty `json:"history"`
}

// BuyingPatternFilter scopes the contract timeline report.
type BuyingPatternFilter struct {
	From    *time.Time
	To      *time.Time
	Product string
}

// Lifting is one invoice drawn against a contract.
type Lifting struct {
	Date          time.Time `json:"date"`
	Qty           float64   `json:"qty"`
	MethanolPrice float64   `json:"methanolPrice"`
}

// Contract is a reconstructed buying-pattern timeline for one
// (consignee, contract date) pair.
type Contract struct {
	Consignee             string    `json:"consigneeName"`
	ContractDate          time.Time `json:"contractDate"`
	ContractQty           float64   `json:"contractQty"`
	ContractMethanolPrice float64   `json:"contractMethanolPrice"`
	Gain                  float64   `json:"gain"`
	FirstLiftingDate      time.Time `json:"firstLiftingDate"`
	FinalLiftingDate      time.Time `json:"finalLiftingDate"`
	Liftings              []Lifting `json:"invoices"`
}

// BuyingPatternResult carries the reconstructed contracts plus counts of
// items dropped for missing benchmark prices; a silent zero price would
// corrupt every gain figure, so gaps are skipped and reported instead.
type BuyingPatternResult struct {
	Contracts        []Contract `json:"contracts"`
	SkippedContracts int        `json:"skippedContracts"`
	SkippedLiftings  int        `json:"skippedLiftings"`
}

// DateRange is an inclusive date span.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// IsCategoryFilter reports whether a product filter targets a category.
func IsCategoryFilter(product string) bool {
	return strings.HasPrefix(product, CategoryFilterPrefix)
}

// CategoryOf strips the category prefix from a product filter.
func CategoryOf(product string) string {
	return strings.TrimPrefix(product, CategoryFilterPrefix)
}
