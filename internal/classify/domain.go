package classify

import "github.com/shopspring/decimal"

// RawRecord is the slice of a raw invoice line the deriver needs.
type RawRecord struct {
	ID                    int64
	MaterialDescription   string
	Qty                   decimal.Decimal
	BasicRate             *decimal.Decimal
	NetRealisationPerUnit *decimal.Decimal
}

// DerivedRow is the persisted classification of one raw record, keyed by
// RawID for idempotent upsert.
type DerivedRow struct {
	RawID                     int64
	ProductCategory           string
	NormalizationFactor       decimal.Decimal
	NormQty                   decimal.Decimal
	NormBasicRate             *decimal.Decimal
	NormNetRealisationPerUnit *decimal.Decimal
}

// Derive computes the derived row for a raw record. Quantities scale up by
// the factor, per-unit money values scale down, so a 43% formaldehyde tonne
// compares fairly against the 37% reference grade.
func Derive(record RawRecord) DerivedRow {
	c := Classify(record.MaterialDescription)
	factor := decimal.NewFromFloat(c.Factor)

	row := DerivedRow{
		RawID:               record.ID,
		ProductCategory:     c.Category,
		NormalizationFactor: factor,
		NormQty:             record.Qty.Mul(factor),
	}
	if record.BasicRate != nil {
		rate := record.BasicRate.Div(factor)
		row.NormBasicRate = &rate
	}
	if record.NetRealisationPerUnit != nil {
		nr := record.NetRealisationPerUnit.Div(factor)
		row.NormNetRealisationPerUnit = &nr
	}
	return row
}
