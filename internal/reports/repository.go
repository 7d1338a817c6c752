package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgRepository provides PostgreSQL backed report queries. Aggregation that
// collapses row counts (period bucketing, group sums, the benchmark delta)
// is pushed into SQL; series shaping and statistics stay in Go.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository constructs a repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// methanolInterpolatedCTE densifies the sparse methanol anchors to one
// price per day. Each anchor pairs with its successor via LEAD and emits a
// linear ramp over the gap; the last anchor emits only itself, so days past
// it carry no price.
const methanolInterpolatedCTE = `
price_anchors AS (
	SELECT date,
	       daily_price,
	       LEAD(date) OVER (ORDER BY date) AS next_date,
	       LEAD(daily_price) OVER (ORDER BY date) AS next_price
	FROM methanol_prices
	WHERE daily_price IS NOT NULL
),
methanol_interpolated AS (
	SELECT gs.day::date AS date,
	       CASE
	           WHEN a.next_date IS NULL THEN a.daily_price
	           ELSE a.daily_price + (a.next_price - a.daily_price)
	                * (gs.day::date - a.date)::float8 / (a.next_date - a.date)::float8
	       END AS price
	FROM price_anchors a
	CROSS JOIN LATERAL generate_series(
	    a.date::timestamp,
	    COALESCE(a.next_date - 1, a.date)::timestamp,
	    interval '1 day'
	) AS gs(day)
)`

// queryBuilder accumulates positional arguments for dynamically assembled
// statements.
type queryBuilder struct {
	args []any
}

func (b *queryBuilder) add(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// rawConditions renders the shared WHERE fragment over sales_invoices_raw
// aliased fr: date bounds, exact material filter and channel restriction.
// Category filters are applied against the derived join, not here.
func (b *queryBuilder) rawConditions(filter TopCustomersFilter) []string {
	conds := []string{"fr.basic_amount IS NOT NULL", "fr.contract_date IS NOT NULL"}
	if filter.From != nil {
		conds = append(conds, "fr.inv_date >= "+b.add(*filter.From))
	}
	if filter.To != nil {
		conds = append(conds, "fr.inv_date <= "+b.add(*filter.To))
	}
	if filter.Product != "" && !IsCategoryFilter(filter.Product) {
		conds = append(conds, "fr.material_description = "+b.add(filter.Product))
	}
	switch filter.Channels {
	case ChannelsDealerKnown:
		conds = append(conds, "fr.dist_channel_description = 'Dealer'", "fr.recipient_name <> fr.consignee_name")
	case ChannelsDealerUnknown:
		conds = append(conds, "fr.dist_channel_description = 'Dealer'", "fr.recipient_name = fr.consignee_name")
	}
	return conds
}

// TopCustomerRows aggregates invoice lines into (group, period) buckets.
// Category filters switch the quantity and rate columns to their normalized
// counterparts so mixed concentrations become comparable.
func (r *PgRepository) TopCustomerRows(ctx context.Context, filter TopCustomersFilter) ([]TopCustomerAgg, error) {
	b := &queryBuilder{}
	grouping := ParseGrouping(filter.Grouping)

	plantCol, channelCol, recipientCol := "0", "''", "''"
	if grouping.Plant {
		plantCol = "fr.plant"
	}
	if grouping.DistChannel {
		channelCol = "fr.dist_channel_description"
	}
	if grouping.Recipient {
		recipientCol = "fr.recipient_name"
	}

	qtyCol, rateCol := "fr.qty", "fr.basic_rate"
	derivedJoin := ""
	category := IsCategoryFilter(filter.Product)
	if category {
		qtyCol, rateCol = "d.norm_qty", "d.norm_basic_rate"
		derivedJoin = "JOIN sales_invoices_derived d ON d.raw_id = fr.id AND d.product_category = " + b.add(CategoryOf(filter.Product))
	}

	conds := b.rawConditions(filter)
	periodArg := b.add(string(filter.Period))

	var sb strings.Builder
	sb.WriteString("WITH ")
	sb.WriteString(methanolInterpolatedCTE)
	fmt.Fprintf(&sb, `
SELECT %s AS plant,
       %s AS dist_channel,
       %s AS recipient,
       fr.consignee_name,
       date_trunc(%s, fr.inv_date) AS period,
       SUM(%s)::float8 AS qty,
       SUM(%s * %s)::float8 AS amount,
       SUM((%s - mi.price * 500) * %s)::float8 AS delta_amount
FROM sales_invoices_raw fr
%s
LEFT JOIN methanol_interpolated mi ON mi.date = fr.contract_date
WHERE %s AND %s IS NOT NULL
GROUP BY 1, 2, 3, 4, 5
ORDER BY 4, 5`,
		plantCol, channelCol, recipientCol, periodArg,
		qtyCol, qtyCol, rateCol, rateCol, qtyCol,
		derivedJoin, strings.Join(conds, " AND "), rateCol)

	rows, err := r.pool.Query(ctx, sb.String(), b.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TopCustomerAgg
	for rows.Next() {
		var agg TopCustomerAgg
		if err := rows.Scan(&agg.Key.Plant, &agg.Key.DistChannel, &agg.Key.Recipient, &agg.Key.Consignee,
			&agg.Period, &agg.Qty, &agg.Amount, &agg.DeltaAmount); err != nil {
			return nil, err
		}
		out = append(out, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LostCustomerRows returns per consignee, per invoice date quantity sums.
// The monthly fold happens in Go so the dense history uses the same period
// machinery as every other report.
func (r *PgRepository) LostCustomerRows(ctx context.Context, filter LostCustomersFilter) ([]InvoiceQty, error) {
	b := &queryBuilder{}

	qtyCol := "fr.qty"
	derivedJoin := ""
	conds := []string{"fr.qty IS NOT NULL"}
	if filter.Product != "" {
		if IsCategoryFilter(filter.Product) {
			qtyCol = "d.norm_qty"
			derivedJoin = "JOIN sales_invoices_derived d ON d.raw_id = fr.id AND d.product_category = " + b.add(CategoryOf(filter.Product))
		} else {
			conds = append(conds, "fr.material_description = "+b.add(filter.Product))
		}
	}

	query := fmt.Sprintf(`SELECT fr.consignee_name, fr.inv_date, SUM(%s)::float8
FROM sales_invoices_raw fr
%s
WHERE %s
GROUP BY 1, 2
ORDER BY 1, 2`, qtyCol, derivedJoin, strings.Join(conds, " AND "))

	rows, err := r.pool.Query(ctx, query, b.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []InvoiceQty
	for rows.Next() {
		var iq InvoiceQty
		if err := rows.Scan(&iq.Consignee, &iq.InvDate, &iq.Qty); err != nil {
			return nil, err
		}
		out = append(out, iq)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// BuyingPatternRows returns per lifting-date quantity sums ordered by
// consignee, contract date and invoice date; the service folds consecutive
// rows of one pair into a contract timeline.
func (r *PgRepository) BuyingPatternRows(ctx context.Context, filter BuyingPatternFilter) ([]ContractLine, error) {
	b := &queryBuilder{}
	conds := []string{"fr.contract_date IS NOT NULL", "fr.qty IS NOT NULL"}
	if filter.From != nil {
		conds = append(conds, "fr.inv_date >= "+b.add(*filter.From))
	}
	if filter.To != nil {
		conds = append(conds, "fr.inv_date <= "+b.add(*filter.To))
	}

	qtyCol := "fr.qty"
	derivedJoin := ""
	if filter.Product != "" {
		if IsCategoryFilter(filter.Product) {
			qtyCol = "d.norm_qty"
			derivedJoin = "JOIN sales_invoices_derived d ON d.raw_id = fr.id AND d.product_category = " + b.add(CategoryOf(filter.Product))
		} else {
			conds = append(conds, "fr.material_description = "+b.add(filter.Product))
		}
	}

	query := fmt.Sprintf(`SELECT fr.consignee_name, fr.contract_date, fr.inv_date, SUM(%s)::float8
FROM sales_invoices_raw fr
%s
WHERE %s
GROUP BY 1, 2, 3
ORDER BY 1, 2, 3`, qtyCol, derivedJoin, strings.Join(conds, " AND "))

	rows, err := r.pool.Query(ctx, query, b.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ContractLine
	for rows.Next() {
		var line ContractLine
		if err := rows.Scan(&line.Consignee, &line.ContractDate, &line.InvDate, &line.Qty); err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// InvoiceDateRange returns the global min and max invoice date.
func (r *PgRepository) InvoiceDateRange(ctx context.Context) (DateRange, error) {
	var from, to *time.Time
	err := r.pool.QueryRow(ctx, `SELECT MIN(inv_date), MAX(inv_date) FROM sales_invoices_raw`).Scan(&from, &to)
	if err != nil {
		return DateRange{}, err
	}
	if from == nil || to == nil {
		return DateRange{}, ErrNoData
	}
	return DateRange{From: *from, To: *to}, nil
}

// ContractLiftingSpan returns the widest span a contract timeline can
// touch: earliest signing to latest lifting.
func (r *PgRepository) ContractLiftingSpan(ctx context.Context) (DateRange, error) {
	var from, to *time.Time
	err := r.pool.QueryRow(ctx, `SELECT MIN(contract_date), MAX(inv_date) FROM sales_invoices_raw WHERE contract_date IS NOT NULL`).Scan(&from, &to)
	if err != nil {
		return DateRange{}, err
	}
	if from == nil || to == nil {
		return DateRange{}, ErrNoData
	}
	return DateRange{From: *from, To: *to}, nil
}
