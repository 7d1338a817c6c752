package ingest

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceRecord is one parsed invoice line ready for upsert.
type InvoiceRecord struct {
	InternalRefNo int64

	Consignee     *string
	ConsigneeName *string
	ConsigneeCity *string
	RecipientName *string
	RecipientCity *string

	Plant                  *int
	DistChannel            *string
	DistChannelDescription *string
	Division               *string

	MaterialCode        *string
	MaterialDescription *string
	HsnCode             *string
	Uom                 *string

	Qty                   *decimal.Decimal
	BasicRate             *decimal.Decimal
	BasicAmount           *decimal.Decimal
	InvoiceValue          *decimal.Decimal
	NetRealisation        *decimal.Decimal
	NetRealisationPerUnit *decimal.Decimal

	InvDate       *time.Time
	ContractDate  *time.Time
	ContractNo    *string
	SoDate        *time.Time
	GstTaxInvNo   *string
	GstTaxInvDate *time.Time
}

// invoiceHeaders maps record fields to the CSV export's column names. The
// export misspells "Recipient"; the headers here must match it verbatim.
const (
	colInternalRefNo = "Internal Ref no"
	colConsignee     = "Consignee"
	colConsigneeName = "Consignee Name"
	colConsigneeCity = "Consignee City"
	colRecipientName = "Reciepient Name"
	colRecipientCity = "Reciepient City"
	colPlant         = "Plant"
	colDistChannel   = "Dist. Channel"
	colDistChanDesc  = "Dist. Chan Description"
	colDivision      = "Division"
	colMaterialCode  = "Material Code"
	colMaterialDesc  = "Material Des."
	colHsnCode       = "HSN Code"
	colUom           = "UOM"
	colQty           = "Qty"
	colBasicRate     = "Basic Rate"
	colBasicAmount   = "Basic Amount"
	colInvoiceValue  = "Invoice Value"
	colNetReal       = "Net Realisation"
	colNetRealUnit   = "Net Reali./MT"
	colInvDate       = "Inv. Date"
	colContractDate  = "Contract Date"
	colContractNo    = "Contract No."
	colSoDate        = "S.O. Date"
	colGstTaxInvNo   = "GST Tax Inv no"
	colGstTaxInvDate = "GST Tax Inv Date"
)

// requiredInvoiceFields names the columns a row must carry to be uploaded.
var requiredInvoiceFields = []string{
	colInternalRefNo, colConsignee, colConsigneeName, colConsigneeCity,
	colRecipientName, colPlant, colDistChannel, colDistChanDesc,
	colMaterialCode, colMaterialDesc, colUom, colQty,
	colBasicRate, colBasicAmount, colInvDate, colGstTaxInvNo, colGstTaxInvDate,
}

// csvRow is one record keyed by trimmed header name.
type csvRow map[string]string

func (r csvRow) field(name string) *string {
	return cleanField(r[name])
}

// parseInvoiceRecord maps and transforms one CSV row. Transform failures
// abort the record, not the run.
func parseInvoiceRecord(row csvRow) (InvoiceRecord, error) {
	var rec InvoiceRecord

	ref, err := parseInt(row.field(colInternalRefNo))
	if err != nil {
		return rec, fmt.Errorf("column %q: %w", colInternalRefNo, err)
	}
	if ref != nil {
		rec.InternalRefNo = int64(*ref)
	}

	rec.Consignee = row.field(colConsignee)
	rec.ConsigneeName = row.field(colConsigneeName)
	rec.ConsigneeCity = row.field(colConsigneeCity)
	rec.RecipientName = row.field(colRecipientName)
	rec.RecipientCity = row.field(colRecipientCity)
	rec.DistChannel = row.field(colDistChannel)
	rec.DistChannelDescription = row.field(colDistChanDesc)
	rec.Division = row.field(colDivision)
	rec.MaterialCode = row.field(colMaterialCode)
	rec.HsnCode = row.field(colHsnCode)
	rec.Uom = row.field(colUom)
	rec.ContractNo = row.field(colContractNo)
	rec.GstTaxInvNo = row.field(colGstTaxInvNo)

	if md := row.field(colMaterialDesc); md != nil {
		canon := CanonicalMaterial(*md)
		rec.MaterialDescription = &canon
	}

	if rec.Plant, err = parseInt(row.field(colPlant)); err != nil {
		return rec, fmt.Errorf("column %q: %w", colPlant, err)
	}
	if rec.Qty, err = parseNumber(row.field(colQty)); err != nil {
		return rec, fmt.Errorf("column %q: %w", colQty, err)
	}
	if rec.BasicRate, err = parseNumber(row.field(colBasicRate)); err != nil {
		return rec, fmt.Errorf("column %q: %w", colBasicRate, err)
	}
	if rec.BasicAmount, err = parseNumber(row.field(colBasicAmount)); err != nil {
		return rec, fmt.Errorf("column %q: %w", colBasicAmount, err)
	}
	if rec.InvoiceValue, err = parseNumber(row.field(colInvoiceValue)); err != nil {
		return rec, fmt.Errorf("column %q: %w", colInvoiceValue, err)
	}
	if rec.NetRealisation, err = parseNumber(row.field(colNetReal)); err != nil {
		return rec, fmt.Errorf("column %q: %w", colNetReal, err)
	}
	if rec.NetRealisationPerUnit, err = parseNumber(row.field(colNetRealUnit)); err != nil {
		return rec, fmt.Errorf("column %q: %w", colNetRealUnit, err)
	}
	if rec.InvDate, err = parseDate(row.field(colInvDate)); err != nil {
		return rec, fmt.Errorf("column %q: %w", colInvDate, err)
	}
	if rec.ContractDate, err = parseDate(row.field(colContractDate)); err != nil {
		return rec, fmt.Errorf("column %q: %w", colContractDate, err)
	}
	if rec.SoDate, err = parseDate(row.field(colSoDate)); err != nil {
		return rec, fmt.Errorf("column %q: %w", colSoDate, err)
	}
	if rec.GstTaxInvDate, err = parseDate(row.field(colGstTaxInvDate)); err != nil {
		return rec, fmt.Errorf("column %q: %w", colGstTaxInvDate, err)
	}
	return rec, nil
}

// missingFields lists the required columns absent from a row.
func missingFields(row csvRow) []string {
	var missing []string
	for _, name := range requiredInvoiceFields {
		if row.field(name) == nil {
			missing = append(missing, name)
		}
	}
	return missing
}

// PriceRecord is one parsed methanol price row. Price stays nil on
// non-trading days.
type PriceRecord struct {
	Date  time.Time
	Price *decimal.Decimal
}

func parsePriceRecord(row csvRow) (PriceRecord, error) {
	var rec PriceRecord
	date, err := parseDate(row.field("Date"))
	if err != nil {
		return rec, fmt.Errorf("column \"Date\": %w", err)
	}
	if date == nil {
		return rec, fmt.Errorf("ingest: price row has no date")
	}
	rec.Date = *date
	if rec.Price, err = parseNumber(row.field("Price")); err != nil {
		return rec, fmt.Errorf("column \"Price\": %w", err)
	}
	return rec, nil
}
