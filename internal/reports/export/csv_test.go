package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salespulse/salespulse/internal/reports"
)

func TestWriteTopCustomersCSV(t *testing.T) {
	rate := 106.67
	rows := []reports.CustomerReportRow{
		{
			GroupKey: reports.GroupKey{Consignee: "Acme Chemicals"},
			Series: []reports.SeriesPoint[reports.PeriodValue]{
				{
					PeriodStart: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
					Value:       reports.PeriodValue{Qty: 10, Amount: 1234567.5, Rate: &rate},
				},
				{
					PeriodStart: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
					Value:       reports.PeriodValue{},
				},
			},
			TotalQty:    10,
			TotalAmount: 1234567.5,
			AvgRate:     &rate,
		},
	}

	buf := &bytes.Buffer{}
	require.NoError(t, WriteTopCustomersCSV(buf, rows))

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus one row per bucket")

	first := records[1]
	assert.Equal(t, "Acme Chemicals", first[0])
	assert.Equal(t, "2024-01-01", first[4])
	assert.Equal(t, "12,34,567.50", first[6], "amounts use Indian grouping")
	assert.Equal(t, "106.67", first[7])
	// Empty bucket: rate column blank, never a fake zero.
	assert.Equal(t, "", records[2][7])
}

func TestWriteLostCustomersCSV(t *testing.T) {
	rows := []reports.LostCustomerRow{
		{
			Consignee:              "Dormant Dist",
			LastInvDate:            time.Date(2023, time.June, 20, 0, 0, 0, 0, time.UTC),
			MonthsSinceLastInvoice: 12,
			Status:                 12,
			TotalQty:               40,
			AvgActiveMonthQty:      40,
		},
	}
	buf := &bytes.Buffer{}
	require.NoError(t, WriteLostCustomersCSV(buf, rows))

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Dormant Dist", "2023-06-20", "12", "12", "40.00", "40.00"}, records[1])
}
