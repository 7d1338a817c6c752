// Package export serialises report results for download.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/salespulse/salespulse/internal/reports"
)

// Amounts use Indian digit grouping (1,23,45,678.90) to match the ledger's
// commercial reporting conventions.
var amountPrinter = message.NewPrinter(language.MustParse("en-IN"))

// WriteTopCustomersCSV serialises the top-customers report. Each series
// bucket becomes one row so the file opens cleanly in a spreadsheet.
func WriteTopCustomersCSV(w io.Writer, rows []reports.CustomerReportRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{
		"Consignee", "Recipient", "Dist Channel", "Plant",
		"Period", "Qty", "Amount", "Rate", "Delta",
		"Total Qty", "Total Amount", "Avg Rate", "CV Qty", "Slope Qty", "Total Delta Amount",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		for _, point := range row.Series {
			record := []string{
				row.Consignee,
				row.Recipient,
				row.DistChannel,
				strconv.Itoa(row.Plant),
				point.PeriodStart.Format("2006-01-02"),
				formatFloat(point.Value.Qty),
				formatAmount(point.Value.Amount),
				formatOptional(point.Value.Rate),
				formatOptional(point.Value.Delta),
				formatFloat(row.TotalQty),
				formatAmount(row.TotalAmount),
				formatOptional(row.AvgRate),
				formatFloat(row.CvQty),
				formatFloat(row.SlopeQty),
				formatAmount(row.TotalDeltaAmount),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteLostCustomersCSV serialises the lost-customer classification, one
// row per consignee without the monthly history.
func WriteLostCustomersCSV(w io.Writer, rows []reports.LostCustomerRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{
		"Consignee", "Last Invoice", "Months Inactive", "Status", "Total Qty", "Avg Active Month Qty",
	}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			row.Consignee,
			row.LastInvDate.Format("2006-01-02"),
			strconv.Itoa(row.MonthsSinceLastInvoice),
			strconv.Itoa(row.Status),
			formatFloat(row.TotalQty),
			formatFloat(row.AvgActiveMonthQty),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatAmount(v float64) string {
	return amountPrinter.Sprintf("%.2f", v)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
