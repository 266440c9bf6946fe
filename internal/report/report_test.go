package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/models"
)

func testDashboard() *models.Dashboard {
	return &models.Dashboard{
		RowCount: 1250,
		KPIs: models.KPISet{
			TotalSales:      decimal.NewFromInt(2155),
			TotalProfit:     decimal.NewFromInt(550),
			AvgMargin:       decimal.RequireFromString("22.5"),
			TotalUnits:      13,
			UniqueCustomers: 4,
		},
		GoalSummary: models.GoalSummary{Status: models.GoalBelow},
		MonthlySales: []models.GroupTotal{
			{Key: "2024-01", Sales: decimal.NewFromInt(1280)},
			{Key: "2024-02", Sales: decimal.NewFromInt(750)},
		},
		Salespeople: []models.SalespersonRank{
			{Name: "Ana", TotalSales: decimal.NewFromInt(1325), TotalProfit: decimal.NewFromInt(350)},
			{Name: "Luis", TotalSales: decimal.NewFromInt(80), TotalProfit: decimal.NewFromInt(-30)},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("markdown")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)

	_, err = ParseFormat("html")
	assert.Error(t, err)
}

func TestWrite_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "Sales Analytics Pro", testDashboard(), FormatText))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "=== Sales Analytics Pro ===\n1,250 transactions"))
	assert.Contains(t, out, "-- KPIs --")
	assert.Contains(t, out, "Total Sales")
	assert.Contains(t, out, "$2,155")
	assert.Contains(t, out, "22.5%")
	assert.Contains(t, out, "+--")
	assert.Contains(t, out, "-$30")
	assert.Contains(t, out, "below")

	// Sections without groups print the placeholder instead of a table.
	assert.Contains(t, out, "-- Sales by Region --\n"+charts.NoDataText())
	assert.Less(t, strings.Index(out, "2024-01"), strings.Index(out, "2024-02"))
	assert.Less(t, strings.Index(out, "Ana"), strings.Index(out, "Luis"))
}

func TestWrite_Markdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "Sales Analytics Pro", testDashboard(), FormatMarkdown))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "# Sales Analytics Pro\n"))
	assert.Contains(t, out, "## Monthly Sales")
	assert.NotContains(t, out, "+--")
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "$2,155") {
			assert.True(t, strings.HasPrefix(line, "|"), line)
		}
	}
}
