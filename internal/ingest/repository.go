package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository provides PostgreSQL backed persistence for ingest runs.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertInvoice writes one invoice line keyed by internal_ref_no, so
// re-ingesting an export updates rows in place.
func (r *Repository) UpsertInvoice(ctx context.Context, rec InvoiceRecord) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO sales_invoices_raw (
	internal_ref_no, consignee, consignee_name, consignee_city,
	recipient_name, recipient_city, plant, dist_channel,
	dist_channel_description, division, material_code, material_description,
	hsn_code, uom, qty, basic_rate, basic_amount, invoice_value,
	net_realisation, net_realisation_per_unit, inv_date, contract_date,
	contract_no, so_date, gst_tax_inv_no, gst_tax_inv_date
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
	$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
ON CONFLICT (internal_ref_no) DO UPDATE SET
	consignee = EXCLUDED.consignee,
	consignee_name = EXCLUDED.consignee_name,
	consignee_city = EXCLUDED.consignee_city,
	recipient_name = EXCLUDED.recipient_name,
	recipient_city = EXCLUDED.recipient_city,
	plant = EXCLUDED.plant,
	dist_channel = EXCLUDED.dist_channel,
	dist_channel_description = EXCLUDED.dist_channel_description,
	division = EXCLUDED.division,
	material_code = EXCLUDED.material_code,
	material_description = EXCLUDED.material_description,
	hsn_code = EXCLUDED.hsn_code,
	uom = EXCLUDED.uom,
	qty = EXCLUDED.qty,
	basic_rate = EXCLUDED.basic_rate,
	basic_amount = EXCLUDED.basic_amount,
	invoice_value = EXCLUDED.invoice_value,
	net_realisation = EXCLUDED.net_realisation,
	net_realisation_per_unit = EXCLUDED.net_realisation_per_unit,
	inv_date = EXCLUDED.inv_date,
	contract_date = EXCLUDED.contract_date,
	contract_no = EXCLUDED.contract_no,
	so_date = EXCLUDED.so_date,
	gst_tax_inv_no = EXCLUDED.gst_tax_inv_no,
	gst_tax_inv_date = EXCLUDED.gst_tax_inv_date`,
		rec.InternalRefNo, rec.Consignee, rec.ConsigneeName, rec.ConsigneeCity,
		rec.RecipientName, rec.RecipientCity, rec.Plant, rec.DistChannel,
		rec.DistChannelDescription, rec.Division, rec.MaterialCode, rec.MaterialDescription,
		rec.HsnCode, rec.Uom, decimalArg(rec.Qty), decimalArg(rec.BasicRate),
		decimalArg(rec.BasicAmount), decimalArg(rec.InvoiceValue),
		decimalArg(rec.NetRealisation), decimalArg(rec.NetRealisationPerUnit),
		rec.InvDate, rec.ContractDate, rec.ContractNo, rec.SoDate,
		rec.GstTaxInvNo, rec.GstTaxInvDate)
	return describePgError(err)
}

// UpsertMethanolPrice writes one daily price keyed by date.
func (r *Repository) UpsertMethanolPrice(ctx context.Context, rec PriceRecord) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO methanol_prices (date, daily_price)
VALUES ($1, $2)
ON CONFLICT (date) DO UPDATE SET daily_price = EXCLUDED.daily_price`,
		rec.Date, decimalArg(rec.Price))
	return describePgError(err)
}

func decimalArg(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

// describePgError surfaces the database detail and constraint name on
// failed writes; the bare pg error code is useless in a run log.
func describePgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		detail := pgErr.Message
		if pgErr.Detail != "" {
			detail += "; " + pgErr.Detail
		}
		if pgErr.ConstraintName != "" {
			detail += " (constraint " + pgErr.ConstraintName + ")"
		}
		return fmt.Errorf("ingest: %s: %s", pgErr.Code, detail)
	}
	return err
}
