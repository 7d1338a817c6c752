package classify

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/salespulse/salespulse/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for derived rows.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListRawAfter returns up to limit raw records with id > afterID, ascending
// by id. Numeric columns come back as text and are parsed into decimals to
// keep the norm columns exact.
func (r *Repository) ListRawAfter(ctx context.Context, afterID int64, limit int) ([]RawRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, material_description, qty::text,
basic_rate::text, net_realisation_per_unit::text
FROM sales_invoices_raw WHERE id > $1 ORDER BY id LIMIT $2`, afterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []RawRecord
	for rows.Next() {
		var rec RawRecord
		var qty string
		var rate, nr *string
		if err := rows.Scan(&rec.ID, &rec.MaterialDescription, &qty, &rate, &nr); err != nil {
			return nil, err
		}
		if rec.Qty, err = decimal.NewFromString(qty); err != nil {
			return nil, fmt.Errorf("classify: raw %d qty: %w", rec.ID, err)
		}
		if rec.BasicRate, err = parseOptional(rate); err != nil {
			return nil, fmt.Errorf("classify: raw %d basic_rate: %w", rec.ID, err)
		}
		if rec.NetRealisationPerUnit, err = parseOptional(nr); err != nil {
			return nil, fmt.Errorf("classify: raw %d net_realisation_per_unit: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// UpsertDerived writes one batch of derived rows in a single transaction,
// replacing any previous classification of the same raw records. A re-run
// or resume never duplicates or loses data, and a failed batch leaves no
// partial writes behind.
func (r *Repository) UpsertDerived(ctx context.Context, rows []DerivedRow) error {
	const query = `INSERT INTO sales_invoices_derived
(raw_id, product_category, normalization_factor, norm_qty, norm_basic_rate, norm_net_realisation_per_unit)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (raw_id) DO UPDATE SET
product_category = excluded.product_category,
normalization_factor = excluded.normalization_factor,
norm_qty = excluded.norm_qty,
norm_basic_rate = excluded.norm_basic_rate,
norm_net_realisation_per_unit = excluded.norm_net_realisation_per_unit`
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, row := range rows {
			_, err := tx.Exec(ctx, query,
				row.RawID,
				row.ProductCategory,
				row.NormalizationFactor.String(),
				row.NormQty.String(),
				optionalString(row.NormBasicRate),
				optionalString(row.NormNetRealisationPerUnit),
			)
			if err != nil {
				return fmt.Errorf("classify: upsert raw %d: %w", row.RawID, err)
			}
		}
		return nil
	})
}

func parseOptional(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func optionalString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
