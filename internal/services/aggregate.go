package services

import (
	"slices"

	"github.com/shopspring/decimal"

	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/models"
)

// DashboardAchievementLimit is how many salespeople the goal panel lists.
const DashboardAchievementLimit = 3

var (
	hundred       = decimal.NewFromInt(100)
	closeToTarget = decimal.NewFromInt(80)
)

// Filter keeps rows whose region, category, channel and salesperson are all
// selected. An empty set for any dimension selects nothing.
func Filter(t *dataset.Table, sel models.Selection) *dataset.Table {
	sets := make(map[models.Dimension]map[string]struct{}, len(models.FilterDimensions))
	for _, d := range models.FilterDimensions {
		sets[d] = toSet(sel.Values(d))
	}
	return t.Where(func(tx *models.Transaction) bool {
		for _, d := range models.FilterDimensions {
			if _, ok := sets[d][tx.Value(d)]; !ok {
				return false
			}
		}
		return true
	})
}

// ComputeKPIs sums the headline metrics. The average margin skips rows
// without an applicable margin and is zero when no row has one.
func ComputeKPIs(t *dataset.Table) models.KPISet {
	kpis := models.KPISet{
		TotalSales:  decimal.Zero,
		TotalProfit: decimal.Zero,
		AvgMargin:   decimal.Zero,
		TotalTarget: decimal.Zero,
	}
	customers := make(map[string]struct{})
	marginSum := decimal.Zero
	margins := 0

	rows := t.Rows()
	for i := range rows {
		tx := &rows[i]
		kpis.TotalSales = kpis.TotalSales.Add(tx.Sales)
		kpis.TotalProfit = kpis.TotalProfit.Add(tx.Profit)
		kpis.TotalUnits += tx.Units
		kpis.TotalTarget = kpis.TotalTarget.Add(tx.Target)
		customers[tx.Customer] = struct{}{}
		if tx.MarginPct.Valid {
			marginSum = marginSum.Add(tx.MarginPct.Decimal)
			margins++
		}
	}

	kpis.UniqueCustomers = len(customers)
	if margins > 0 {
		kpis.AvgMargin = marginSum.Div(decimal.NewFromInt(int64(margins)))
	}
	return kpis
}

// AggregateBy sums sales per value of d, ordered by key. For DimMonth the
// "YYYY-MM" keys sort chronologically.
func AggregateBy(t *dataset.Table, d models.Dimension) []models.GroupTotal {
	totals := make(map[string]decimal.Decimal)
	rows := t.Rows()
	for i := range rows {
		key := rows[i].Value(d)
		totals[key] = totals[key].Add(rows[i].Sales)
	}

	out := make([]models.GroupTotal, 0, len(totals))
	for key, sales := range totals {
		out = append(out, models.GroupTotal{Key: key, Sales: sales})
	}
	slices.SortFunc(out, func(a, b models.GroupTotal) int {
		switch {
		case a.Key < b.Key:
			return -1
		case a.Key > b.Key:
			return 1
		}
		return 0
	})
	return out
}

// SortBySales orders totals ascending by sales, keeping key order for ties.
func SortBySales(totals []models.GroupTotal) []models.GroupTotal {
	out := slices.Clone(totals)
	slices.SortStableFunc(out, func(a, b models.GroupTotal) int {
		return a.Sales.Cmp(b.Sales)
	})
	return out
}

// RankSalespeople orders salespeople by total sales, highest first. Ties keep
// the order in which the salespeople first appear in the table.
func RankSalespeople(t *dataset.Table) []models.SalespersonRank {
	index := make(map[string]int)
	ranks := make([]models.SalespersonRank, 0)

	rows := t.Rows()
	for i := range rows {
		tx := &rows[i]
		idx, ok := index[tx.Salesperson]
		if !ok {
			idx = len(ranks)
			index[tx.Salesperson] = idx
			ranks = append(ranks, models.SalespersonRank{
				Name:        tx.Salesperson,
				TotalSales:  decimal.Zero,
				TotalProfit: decimal.Zero,
			})
		}
		ranks[idx].TotalSales = ranks[idx].TotalSales.Add(tx.Sales)
		ranks[idx].TotalProfit = ranks[idx].TotalProfit.Add(tx.Profit)
	}

	slices.SortStableFunc(ranks, func(a, b models.SalespersonRank) int {
		return b.TotalSales.Cmp(a.TotalSales)
	})
	return ranks
}

// GoalProgress compares the selected salespeople's sales with the mean
// monthly target of their rows. The mean is row-weighted, so a salesperson
// with more transactions weighs more in the baseline.
func GoalProgress(t *dataset.Table, selected []string) models.GoalProgress {
	progress := models.GoalProgress{ProgressPct: decimal.Zero, TargetBaseline: decimal.Zero}
	if len(selected) == 0 {
		return progress
	}

	people := toSet(selected)
	sales, targets := decimal.Zero, decimal.Zero
	n := 0
	rows := t.Rows()
	for i := range rows {
		if _, ok := people[rows[i].Salesperson]; !ok {
			continue
		}
		sales = sales.Add(rows[i].Sales)
		targets = targets.Add(rows[i].Target)
		n++
	}
	if n == 0 {
		return progress
	}

	progress.TargetBaseline = targets.Div(decimal.NewFromInt(int64(n)))
	if progress.TargetBaseline.IsPositive() {
		progress.ProgressPct = decimal.Min(hundred, sales.Div(progress.TargetBaseline).Mul(hundred))
	}
	return progress
}

// SalespersonAchievement reports sales against mean target for the first
// limit names of salespeople, in the given order.
func SalespersonAchievement(t *dataset.Table, salespeople []string, limit int) []models.Achievement {
	if limit < 0 {
		limit = 0
	}
	names := salespeople[:min(limit, len(salespeople))]

	type acc struct {
		sales, targets decimal.Decimal
		n              int64
	}
	wanted := make(map[string]*acc, len(names))
	for _, name := range names {
		wanted[name] = &acc{sales: decimal.Zero, targets: decimal.Zero}
	}

	rows := t.Rows()
	for i := range rows {
		a, ok := wanted[rows[i].Salesperson]
		if !ok {
			continue
		}
		a.sales = a.sales.Add(rows[i].Sales)
		a.targets = a.targets.Add(rows[i].Target)
		a.n++
	}

	out := make([]models.Achievement, 0, len(names))
	for _, name := range names {
		a := wanted[name]
		pct := decimal.Zero
		if a.n > 0 {
			mean := a.targets.Div(decimal.NewFromInt(a.n))
			if mean.IsPositive() {
				pct = a.sales.Div(mean).Mul(hundred)
			}
		}
		out = append(out, models.Achievement{Salesperson: name, AchievementPct: pct})
	}
	return out
}

// GoalSummary compares total sales against the summed monthly targets.
func GoalSummary(t *dataset.Table) models.GoalSummary {
	kpis := ComputeKPIs(t)
	summary := models.GoalSummary{
		TotalTarget:     kpis.TotalTarget,
		AchievementRate: decimal.Zero,
	}
	if kpis.TotalTarget.IsPositive() {
		summary.AchievementRate = kpis.TotalSales.Div(kpis.TotalTarget).Mul(hundred)
	}

	switch {
	case summary.AchievementRate.GreaterThanOrEqual(hundred):
		summary.Status = models.GoalExceeded
	case summary.AchievementRate.GreaterThanOrEqual(closeToTarget):
		summary.Status = models.GoalClose
	default:
		summary.Status = models.GoalBelow
	}
	return summary
}

// Transactions returns up to limit rows starting at offset.
func Transactions(t *dataset.Table, offset, limit int) []models.Transaction {
	rows := t.Rows()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) || limit <= 0 {
		return []models.Transaction{}
	}
	end := min(offset+limit, len(rows))
	return slices.Clone(rows[offset:end])
}

// DefaultSelection selects every value of every filter dimension.
func DefaultSelection(t *dataset.Table) models.Selection {
	var sel models.Selection
	for _, d := range models.FilterDimensions {
		sel.Set(d, t.Distinct(d))
	}
	return sel
}

// ResolveSelection fills dimensions the request left unspecified with every
// available value. Explicitly empty dimensions stay empty.
func ResolveSelection(t *dataset.Table, req models.FilterRequest) models.Selection {
	var sel models.Selection
	for _, d := range models.FilterDimensions {
		values := req.Values(d)
		if values == nil {
			values = t.Distinct(d)
		}
		sel.Set(d, slices.Clone(values))
	}
	return sel
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
