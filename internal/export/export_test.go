package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sales-dashboard/internal/models"
)

func sampleRows() []models.Transaction {
	rows := []models.Transaction{
		{
			Date: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), Region: "Norte", Category: "Electronica",
			Channel: "Online", Salesperson: "Ana", Product: "Laptop", Units: 2,
			Sales: decimal.NewFromInt(1200), Cost: decimal.NewFromInt(900), Target: decimal.NewFromInt(1000), Customer: "C001",
		},
		{
			Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Region: "Sur", Category: "Hogar",
			Channel: "Tienda", Salesperson: "Luis", Product: "Regalo", Units: 1,
			Sales: decimal.Zero, Cost: decimal.NewFromInt(20), Target: decimal.NewFromInt(600), Customer: "C002",
		},
	}
	for i := range rows {
		rows[i].Derive()
	}
	return rows
}

func TestWrite(t *testing.T) {
	kpis := models.KPISet{
		TotalSales:      decimal.NewFromInt(1200),
		TotalProfit:     decimal.NewFromInt(280),
		AvgMargin:       decimal.NewFromInt(25),
		TotalUnits:      3,
		UniqueCustomers: 2,
		TotalTarget:     decimal.NewFromInt(1600),
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleRows(), kpis))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{TransactionsSheet, SummarySheet}, f.GetSheetList())

	rows, err := f.GetRows(TransactionsSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "Customer", rows[0][12])
	assert.Equal(t, []string{"2024-01-15", "Norte", "Electronica", "Online", "Ana", "Laptop", "2", "1200", "900", "300", "25", "1000", "C001"}, rows[1])

	// Rows without sales leave the margin cell blank.
	assert.Equal(t, "-20", rows[2][9])
	assert.Equal(t, "", rows[2][10])

	summary, err := f.GetRows(SummarySheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Total Sales", "1200"}, summary[1])
	assert.Equal(t, []string{"Unique Customers", "2"}, summary[5])
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil, models.KPISet{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(TransactionsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
