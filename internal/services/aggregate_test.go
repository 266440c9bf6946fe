package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s, got %s", want, got)
}

// twoRowTable is the reference table: region X sells 100 at cost 60, region Y
// sells 50 at cost 50, both with a target of 80.
func twoRowTable() *dataset.Table {
	return dataset.NewTable([]models.Transaction{
		{
			Date: day("2024-01-15"), Region: "X", Category: "Hogar", Channel: "Online",
			Salesperson: "Ana", Product: "Lampara", Units: 2, Customer: "C1",
			Sales: d("100"), Cost: d("60"), Target: d("80"),
		},
		{
			Date: day("2024-02-03"), Region: "Y", Category: "Hogar", Channel: "Tienda",
			Salesperson: "Luis", Product: "Silla", Units: 3, Customer: "C2",
			Sales: d("50"), Cost: d("50"), Target: d("80"),
		},
	})
}

func sampleTable() *dataset.Table {
	regions := []string{"Norte", "Sur", "Este"}
	categories := []string{"Electronica", "Hogar"}
	channels := []string{"Online", "Tienda"}
	people := []string{"Ana", "Luis", "Eva", "Marco"}

	rows := make([]models.Transaction, 0, 48)
	for i := 0; i < 48; i++ {
		rows = append(rows, models.Transaction{
			Date:        day("2024-01-05").AddDate(0, i%6, i%20),
			Region:      regions[i%len(regions)],
			Category:    categories[i%len(categories)],
			Channel:     channels[(i/2)%len(channels)],
			Salesperson: people[i%len(people)],
			Product:     fmt.Sprintf("P%d", i%5),
			Units:       1 + i%4,
			Sales:       decimal.NewFromInt(int64(100 + 17*i)),
			Cost:        decimal.NewFromInt(int64(60 + 11*i)),
			Target:      decimal.NewFromInt(int64(500 + 100*(i%3))),
			Customer:    fmt.Sprintf("C%02d", i%9),
		})
	}
	return dataset.NewTable(rows)
}

func allSelected(t *dataset.Table) models.Selection {
	return DefaultSelection(t)
}

func TestDerivedColumns(t *testing.T) {
	table := sampleTable()
	for _, tx := range table.Rows() {
		assert.True(t, tx.Profit.Equal(tx.Sales.Sub(tx.Cost)))
		require.True(t, tx.MarginPct.Valid)
		want := tx.Profit.Div(tx.Sales).Mul(decimal.NewFromInt(100)).RoundBank(1)
		assert.True(t, want.Equal(tx.MarginPct.Decimal))
		assert.Equal(t, tx.Date.Format("2006-01"), tx.Month)
	}
}

func TestComputeKPIs_ReferenceExample(t *testing.T) {
	table := twoRowTable()

	kpis := ComputeKPIs(table)
	assertDecimal(t, "150", kpis.TotalSales)
	assertDecimal(t, "40", kpis.TotalProfit)
	assertDecimal(t, "20", kpis.AvgMargin)
	assertDecimal(t, "160", kpis.TotalTarget)
	assert.Equal(t, 5, kpis.TotalUnits)
	assert.Equal(t, 2, kpis.UniqueCustomers)

	sel := allSelected(table)
	sel.Regions = []string{"X"}
	onlyX := ComputeKPIs(Filter(table, sel))
	assertDecimal(t, "100", onlyX.TotalSales)
	assertDecimal(t, "40", onlyX.TotalProfit)
	assertDecimal(t, "40", onlyX.AvgMargin)
}

func TestComputeKPIs_EmptySelection(t *testing.T) {
	table := twoRowTable()
	sel := allSelected(table)
	sel.Regions = nil

	view := Filter(table, sel)
	assert.Equal(t, 0, view.Len())

	kpis := ComputeKPIs(view)
	assert.True(t, kpis.TotalSales.IsZero())
	assert.True(t, kpis.TotalProfit.IsZero())
	assert.True(t, kpis.AvgMargin.IsZero())
	assert.True(t, kpis.TotalTarget.IsZero())
	assert.Equal(t, 0, kpis.TotalUnits)
	assert.Equal(t, 0, kpis.UniqueCustomers)
}

func TestComputeKPIs_SkipsZeroSalesMargin(t *testing.T) {
	table := dataset.NewTable([]models.Transaction{
		{Date: day("2024-01-01"), Sales: d("100"), Cost: d("75"), Customer: "A"},
		{Date: day("2024-01-02"), Sales: d("0"), Cost: d("20"), Customer: "A"},
	})

	kpis := ComputeKPIs(table)
	assertDecimal(t, "25", kpis.AvgMargin)
	assertDecimal(t, "5", kpis.TotalProfit)
	assert.Equal(t, 1, kpis.UniqueCustomers)

	onlyZero := dataset.NewTable([]models.Transaction{
		{Date: day("2024-01-02"), Sales: d("0"), Cost: d("20")},
	})
	assert.True(t, ComputeKPIs(onlyZero).AvgMargin.IsZero())
}

func TestFilter_AllValuesIsNoop(t *testing.T) {
	table := sampleTable()
	filtered := Filter(table, allSelected(table))

	require.Equal(t, table.Len(), filtered.Len())

	want, got := ComputeKPIs(table), ComputeKPIs(filtered)
	assert.True(t, want.TotalSales.Equal(got.TotalSales))
	assert.True(t, want.TotalProfit.Equal(got.TotalProfit))
	assert.True(t, want.AvgMargin.Equal(got.AvgMargin))
	assert.True(t, want.TotalTarget.Equal(got.TotalTarget))
	assert.Equal(t, want.TotalUnits, got.TotalUnits)
	assert.Equal(t, want.UniqueCustomers, got.UniqueCustomers)
}

func TestFilter_IsConjunction(t *testing.T) {
	table := sampleTable()
	sel := allSelected(table)
	sel.Regions = []string{"Norte"}
	sel.Channels = []string{"Online"}

	view := Filter(table, sel)
	require.Positive(t, view.Len())
	for _, tx := range view.Rows() {
		assert.Equal(t, "Norte", tx.Region)
		assert.Equal(t, "Online", tx.Channel)
	}

	for _, dim := range models.FilterDimensions {
		empty := allSelected(table)
		empty.Set(dim, []string{})
		assert.Equal(t, 0, Filter(table, empty).Len(), "empty %s selection", dim)
	}

	unknown := allSelected(table)
	unknown.Regions = []string{"Atlantida"}
	assert.Equal(t, 0, Filter(table, unknown).Len())
}

func TestAggregateBy_MatchesFilterThenSum(t *testing.T) {
	table := sampleTable()

	for _, dim := range models.FilterDimensions {
		t.Run(string(dim), func(t *testing.T) {
			groups := AggregateBy(table, dim)
			require.Len(t, groups, len(table.Distinct(dim)))

			for _, g := range groups {
				sel := allSelected(table)
				sel.Set(dim, []string{g.Key})
				want := ComputeKPIs(Filter(table, sel)).TotalSales
				assert.True(t, want.Equal(g.Sales), "%s=%s: want %s, got %s", dim, g.Key, want, g.Sales)
			}
		})
	}
}

func TestAggregateBy_MonthIsChronological(t *testing.T) {
	table := dataset.NewTable([]models.Transaction{
		{Date: day("2024-02-03"), Sales: d("10")},
		{Date: day("2023-12-30"), Sales: d("5")},
		{Date: day("2024-01-15"), Sales: d("10")},
		{Date: day("2024-02-20"), Sales: d("1")},
	})

	months := AggregateBy(table, models.DimMonth)
	require.Len(t, months, 3)
	assert.Equal(t, "2023-12", months[0].Key)
	assert.Equal(t, "2024-01", months[1].Key)
	assert.Equal(t, "2024-02", months[2].Key)
	assertDecimal(t, "11", months[2].Sales)
}

func TestAggregateBy_TwoMonthsEqualSales(t *testing.T) {
	table := dataset.NewTable([]models.Transaction{
		{Date: day("2024-02-03"), Sales: d("50")},
		{Date: day("2024-01-15"), Sales: d("50")},
	})

	months := AggregateBy(table, models.DimMonth)
	require.Len(t, months, 2)
	assert.Equal(t, []string{"2024-01", "2024-02"}, []string{months[0].Key, months[1].Key})
}

func TestAggregateBy_Empty(t *testing.T) {
	groups := AggregateBy(dataset.NewTable(nil), models.DimRegion)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestSortBySales(t *testing.T) {
	in := []models.GroupTotal{
		{Key: "a", Sales: d("30")},
		{Key: "b", Sales: d("10")},
		{Key: "c", Sales: d("30")},
		{Key: "d", Sales: d("20")},
	}
	out := SortBySales(in)

	keys := make([]string, len(out))
	for i, g := range out {
		keys[i] = g.Key
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, keys)
	assert.Equal(t, "a", in[0].Key, "input must not be reordered")
}

func TestRankSalespeople(t *testing.T) {
	table := sampleTable()
	ranks := RankSalespeople(table)
	require.Len(t, ranks, 4)

	for i := 1; i < len(ranks); i++ {
		assert.True(t, ranks[i-1].TotalSales.GreaterThanOrEqual(ranks[i].TotalSales))
	}

	total := decimal.Zero
	for _, r := range ranks {
		total = total.Add(r.TotalSales)
	}
	assert.True(t, total.Equal(ComputeKPIs(table).TotalSales))
}

func TestRankSalespeople_TiesKeepFirstAppearance(t *testing.T) {
	rows := []models.Transaction{
		{Date: day("2024-01-01"), Salesperson: "Eva", Sales: d("50"), Cost: d("10")},
		{Date: day("2024-01-01"), Salesperson: "Ana", Sales: d("80"), Cost: d("10")},
		{Date: day("2024-01-01"), Salesperson: "Luis", Sales: d("30"), Cost: d("10")},
		{Date: day("2024-01-01"), Salesperson: "Luis", Sales: d("20"), Cost: d("10")},
	}

	ranks := RankSalespeople(dataset.NewTable(rows))
	names := []string{ranks[0].Name, ranks[1].Name, ranks[2].Name}
	assert.Equal(t, []string{"Ana", "Eva", "Luis"}, names)
	assertDecimal(t, "30", ranks[2].TotalProfit)

	rows[0], rows[2] = rows[2], rows[0]
	ranks = RankSalespeople(dataset.NewTable(rows))
	names = []string{ranks[0].Name, ranks[1].Name, ranks[2].Name}
	assert.Equal(t, []string{"Ana", "Luis", "Eva"}, names)
}

func TestGoalProgress(t *testing.T) {
	table := twoRowTable()

	progress := GoalProgress(table, []string{"Ana", "Luis"})
	assertDecimal(t, "80", progress.TargetBaseline)
	assertDecimal(t, "100", progress.ProgressPct)

	half := dataset.NewTable([]models.Transaction{
		{Date: day("2024-01-01"), Salesperson: "Ana", Sales: d("40"), Target: d("100")},
		{Date: day("2024-01-02"), Salesperson: "Ana", Sales: d("10"), Target: d("300")},
	})
	progress = GoalProgress(half, []string{"Ana"})
	assertDecimal(t, "200", progress.TargetBaseline)
	assertDecimal(t, "25", progress.ProgressPct)
}

func TestGoalProgress_BaselineIsRowWeighted(t *testing.T) {
	table := dataset.NewTable([]models.Transaction{
		{Date: day("2024-01-01"), Salesperson: "Ana", Sales: d("1"), Target: d("100")},
		{Date: day("2024-01-02"), Salesperson: "Ana", Sales: d("1"), Target: d("100")},
		{Date: day("2024-01-03"), Salesperson: "Ana", Sales: d("1"), Target: d("100")},
		{Date: day("2024-01-04"), Salesperson: "Luis", Sales: d("1"), Target: d("500")},
	})

	progress := GoalProgress(table, []string{"Ana", "Luis"})
	assertDecimal(t, "200", progress.TargetBaseline)
}

func TestGoalProgress_NeverExceeds100(t *testing.T) {
	table := dataset.NewTable([]models.Transaction{
		{Date: day("2024-01-01"), Salesperson: "Ana", Sales: d("1000000"), Target: d("1")},
	})
	progress := GoalProgress(table, []string{"Ana"})
	assertDecimal(t, "100", progress.ProgressPct)

	table = sampleTable()
	for _, name := range table.Distinct(models.DimSalesperson) {
		p := GoalProgress(table, []string{name})
		assert.True(t, p.ProgressPct.LessThanOrEqual(decimal.NewFromInt(100)))
	}
}

func TestGoalProgress_Degenerate(t *testing.T) {
	table := twoRowTable()

	none := GoalProgress(table, nil)
	assert.True(t, none.ProgressPct.IsZero())
	assert.True(t, none.TargetBaseline.IsZero())

	unknown := GoalProgress(table, []string{"Nadie"})
	assert.True(t, unknown.ProgressPct.IsZero())

	zeroTarget := dataset.NewTable([]models.Transaction{
		{Date: day("2024-01-01"), Salesperson: "Ana", Sales: d("10"), Target: d("0")},
	})
	p := GoalProgress(zeroTarget, []string{"Ana"})
	assert.True(t, p.ProgressPct.IsZero())
	assert.True(t, p.TargetBaseline.IsZero())
}

func TestSalespersonAchievement(t *testing.T) {
	table := dataset.NewTable([]models.Transaction{
		{Date: day("2024-01-01"), Salesperson: "Ana", Sales: d("150"), Target: d("100")},
		{Date: day("2024-01-01"), Salesperson: "Luis", Sales: d("40"), Target: d("80")},
		{Date: day("2024-01-01"), Salesperson: "Eva", Sales: d("10"), Target: d("0")},
		{Date: day("2024-01-01"), Salesperson: "Marco", Sales: d("99"), Target: d("99")},
	})

	got := SalespersonAchievement(table, []string{"Luis", "Ana", "Eva", "Marco"}, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "Luis", got[0].Salesperson)
	assertDecimal(t, "50", got[0].AchievementPct)
	assert.Equal(t, "Ana", got[1].Salesperson)
	assertDecimal(t, "150", got[1].AchievementPct)
	assert.Equal(t, "Eva", got[2].Salesperson)
	assert.True(t, got[2].AchievementPct.IsZero())

	missing := SalespersonAchievement(table, []string{"Nadie"}, 3)
	require.Len(t, missing, 1)
	assert.True(t, missing[0].AchievementPct.IsZero())

	assert.Empty(t, SalespersonAchievement(table, []string{"Ana"}, 0))
	assert.Empty(t, SalespersonAchievement(table, nil, 3))
}

func TestGoalSummary(t *testing.T) {
	tests := []struct {
		name   string
		sales  string
		target string
		rate   string
		status models.GoalStatus
	}{
		{"exceeded", "120", "100", "120", models.GoalExceeded},
		{"exactly on target", "100", "100", "100", models.GoalExceeded},
		{"close", "80", "100", "80", models.GoalClose},
		{"below", "79", "100", "79", models.GoalBelow},
		{"no target", "50", "0", "0", models.GoalBelow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := dataset.NewTable([]models.Transaction{
				{Date: day("2024-01-01"), Sales: d(tt.sales), Target: d(tt.target)},
			})
			summary := GoalSummary(table)
			assertDecimal(t, tt.target, summary.TotalTarget)
			assertDecimal(t, tt.rate, summary.AchievementRate)
			assert.Equal(t, tt.status, summary.Status)
		})
	}
}

func TestTransactions_Pagination(t *testing.T) {
	table := sampleTable()

	page := Transactions(table, 10, 5)
	require.Len(t, page, 5)
	assert.Equal(t, table.Rows()[10], page[0])

	tail := Transactions(table, table.Len()-2, 50)
	assert.Len(t, tail, 2)

	assert.Empty(t, Transactions(table, table.Len(), 10))
	assert.Empty(t, Transactions(table, 0, 0))
	assert.Len(t, Transactions(table, -3, 4), 4)
}

func TestResolveSelection(t *testing.T) {
	table := twoRowTable()

	all := ResolveSelection(table, models.FilterRequest{})
	assert.Equal(t, DefaultSelection(table), all)

	sel := ResolveSelection(table, models.FilterRequest{
		Regions:  []string{"Y"},
		Channels: []string{},
	})
	assert.Equal(t, []string{"Y"}, sel.Regions)
	assert.Equal(t, []string{}, sel.Channels)
	assert.Equal(t, []string{"Ana", "Luis"}, sel.Salespeople)
	assert.Equal(t, 0, Filter(table, sel).Len())
}

func BenchmarkDashboardPass(b *testing.B) {
	table := sampleTable()
	sel := allSelected(table)
	sel.Regions = []string{"Norte", "Sur"}

	for b.Loop() {
		view := Filter(table, sel)
		_ = ComputeKPIs(view)
		_ = AggregateBy(view, models.DimMonth)
		_ = AggregateBy(view, models.DimProduct)
		_ = RankSalespeople(view)
		_ = GoalProgress(view, sel.Salespeople)
	}
}

func BenchmarkFilter(b *testing.B) {
	table := sampleTable()
	sel := allSelected(table)

	for b.Loop() {
		_ = Filter(table, sel)
	}
}
