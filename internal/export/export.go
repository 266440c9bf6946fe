// Package export writes the filtered transaction table as an XLSX workbook.
package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"sales-dashboard/internal/models"
)

const (
	TransactionsSheet = "Transactions"
	SummarySheet      = "Summary"
	ContentType       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var transactionHeader = []any{
	"Date", "Region", "Category", "Channel", "Salesperson", "Product",
	"Units", "Sales", "Cost", "Profit", "Margin %", "Monthly Target", "Customer",
}

var moneyFormat = "$#,##0.00"

// Write renders rows and their KPIs into a workbook and writes it to w.
func Write(w io.Writer, rows []models.Transaction, kpis models.KPISet) error {
	f, err := Workbook(rows, kpis)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Workbook builds the export in memory. Callers must Close the file.
func Workbook(rows []models.Transaction, kpis models.KPISet) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), TransactionsSheet); err != nil {
		f.Close()
		return nil, err
	}

	if err := writeTransactions(f, rows); err != nil {
		f.Close()
		return nil, fmt.Errorf("transactions sheet: %w", err)
	}
	if err := writeSummary(f, kpis); err != nil {
		f.Close()
		return nil, fmt.Errorf("summary sheet: %w", err)
	}
	return f, nil
}

func writeTransactions(f *excelize.File, rows []models.Transaction) error {
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFormat})
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(TransactionsSheet, "A1", &transactionHeader); err != nil {
		return err
	}
	if err := f.SetRowStyle(TransactionsSheet, 1, 1, header); err != nil {
		return err
	}

	for i := range rows {
		tx := &rows[i]
		var margin any
		if tx.MarginPct.Valid {
			margin = toFloat(tx.MarginPct.Decimal)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			tx.Date.Format("2006-01-02"), tx.Region, tx.Category, tx.Channel, tx.Salesperson, tx.Product,
			tx.Units, toFloat(tx.Sales), toFloat(tx.Cost), toFloat(tx.Profit), margin, toFloat(tx.Target), tx.Customer,
		}
		if err := f.SetSheetRow(TransactionsSheet, cell, &values); err != nil {
			return err
		}
	}

	if len(rows) > 0 {
		last := len(rows) + 1
		if err := f.SetCellStyle(TransactionsSheet, "H2", fmt.Sprintf("J%d", last), money); err != nil {
			return err
		}
		if err := f.SetCellStyle(TransactionsSheet, "L2", fmt.Sprintf("L%d", last), money); err != nil {
			return err
		}
		if err := f.AutoFilter(TransactionsSheet, fmt.Sprintf("A1:M%d", last), nil); err != nil {
			return err
		}
	}
	return f.SetColWidth(TransactionsSheet, "A", "M", 14)
}

func writeSummary(f *excelize.File, kpis models.KPISet) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}
	rows := [][]any{
		{"Metric", "Value"},
		{"Total Sales", toFloat(kpis.TotalSales)},
		{"Total Profit", toFloat(kpis.TotalProfit)},
		{"Avg Margin %", toFloat(kpis.AvgMargin)},
		{"Units Sold", kpis.TotalUnits},
		{"Unique Customers", kpis.UniqueCustomers},
		{"Total Target", toFloat(kpis.TotalTarget)},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SummarySheet, "A", "A", 20)
}

func toFloat(d decimal.Decimal) float64 {
	v, _ := d.Float64()
	return v
}
