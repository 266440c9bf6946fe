package charts

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/models"
)

func totals(pairs ...any) []models.GroupTotal {
	out := make([]models.GroupTotal, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, models.GroupTotal{
			Key:   pairs[i].(string),
			Sales: decimal.NewFromInt(int64(pairs[i+1].(int))),
		})
	}
	return out
}

func TestMonthlySales(t *testing.T) {
	r := NewRenderer(DefaultTheme)

	panel, err := r.MonthlySales(totals("2024-01", 1200, "2024-02", 800))
	require.NoError(t, err)
	assert.False(t, panel.Empty)
	assert.Equal(t, "monthly-sales", panel.ID)
	assert.True(t, strings.HasPrefix(string(panel.SVG), "<svg"))
	assert.Contains(t, string(panel.SVG), "2024-01")
}

func TestBarChart_EmptyAndZero(t *testing.T) {
	r := NewRenderer(DefaultTheme)

	panel, err := r.MonthlySales(nil)
	require.NoError(t, err)
	assert.True(t, panel.Empty)
	assert.Empty(t, panel.SVG)

	panel, err = r.ProductSales(totals("Silla", 0, "Mesa", 0))
	require.NoError(t, err)
	assert.True(t, panel.Empty)
}

func TestSalespersonPerformance_NegativeProfit(t *testing.T) {
	r := NewRenderer(DefaultTheme)

	panel, err := r.SalespersonPerformance([]models.SalespersonRank{
		{Name: "Ana", TotalSales: decimal.NewFromInt(500), TotalProfit: decimal.NewFromInt(-120)},
		{Name: "Luis", TotalSales: decimal.NewFromInt(300), TotalProfit: decimal.NewFromInt(90)},
	})
	require.NoError(t, err)
	assert.False(t, panel.Empty)
	assert.Contains(t, string(panel.SVG), "Ana")
}

func TestDonut(t *testing.T) {
	r := NewRenderer(DefaultTheme)

	panel, err := r.RegionSales(totals("Norte", 600, "Sur", 400, "Este", 0))
	require.NoError(t, err)
	assert.False(t, panel.Empty)
	assert.Contains(t, string(panel.SVG), "Norte")
	assert.NotContains(t, string(panel.SVG), "Este")

	panel, err = r.ChannelSales(totals("Online", 0))
	require.NoError(t, err)
	assert.True(t, panel.Empty)
}

func TestLabelsAreEscaped(t *testing.T) {
	r := NewRenderer(DefaultTheme)

	panel, err := r.ProductSales(totals("<script>x</script>", 10))
	require.NoError(t, err)
	assert.NotContains(t, string(panel.SVG), "<script>")
	assert.Contains(t, string(panel.SVG), "&lt;script&gt;")
}

func TestAchievement(t *testing.T) {
	r := NewRenderer(DefaultTheme)

	panel, err := r.Achievement([]models.Achievement{
		{Salesperson: "Ana", AchievementPct: decimal.NewFromInt(120)},
		{Salesperson: "Luis", AchievementPct: decimal.NewFromInt(85)},
		{Salesperson: "Eva", AchievementPct: decimal.NewFromInt(10)},
	})
	require.NoError(t, err)
	assert.Contains(t, string(panel.SVG), "Ana")

	panel, err = r.Achievement(nil)
	require.NoError(t, err)
	assert.True(t, panel.Empty)
}

func TestPanels(t *testing.T) {
	r := NewRenderer(DefaultTheme)
	dash := &models.Dashboard{
		MonthlySales: totals("2024-01", 10),
		RegionSales:  totals("Norte", 10),
		ProductSales: totals("Silla", 10),
		ChannelSales: totals("Online", 10),
		Salespeople: []models.SalespersonRank{
			{Name: "Ana", TotalSales: decimal.NewFromInt(10), TotalProfit: decimal.NewFromInt(4)},
		},
	}

	panels, err := r.Panels(dash)
	require.NoError(t, err)
	require.Len(t, panels, 6)

	ids := make([]string, len(panels))
	for i, p := range panels {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{
		"monthly-sales", "region-sales", "product-sales",
		"salesperson-performance", "channel-sales", "achievement",
	}, ids)
	assert.True(t, panels[5].Empty)
	assert.False(t, panels[0].Empty)
}
