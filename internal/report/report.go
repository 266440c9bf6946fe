// Package report prints a dashboard snapshot as plain text or markdown
// tables.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/format"
	"sales-dashboard/internal/models"
)

type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatMarkdown:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown report format %q, must be text or markdown", s)
	}
}

type section struct {
	title   string
	header  []string
	rows    [][]string
	numeric []int // right-aligned columns
}

// Write renders every section of d to w.
func Write(w io.Writer, title string, d *models.Dashboard, f Format) error {
	if f == FormatMarkdown {
		if _, err := fmt.Fprintf(w, "# %s\n\n%s transactions\n\n", title, format.Int(d.RowCount)); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(w, "=== %s ===\n%s transactions\n\n", title, format.Int(d.RowCount)); err != nil {
			return err
		}
	}

	for _, s := range sections(d) {
		if err := writeSection(w, s, f); err != nil {
			return err
		}
	}
	return nil
}

func sections(d *models.Dashboard) []section {
	kpis := section{
		title:   "KPIs",
		header:  []string{"Metric", "Value"},
		numeric: []int{1},
		rows: [][]string{
			{"Total Sales", format.Currency(d.KPIs.TotalSales)},
			{"Total Profit", format.Currency(d.KPIs.TotalProfit)},
			{"Avg Margin", format.Percent(d.KPIs.AvgMargin)},
			{"Units Sold", format.Int(d.KPIs.TotalUnits)},
			{"Unique Customers", format.Int(d.KPIs.UniqueCustomers)},
		},
	}

	goal := section{
		title:   "Goal",
		header:  []string{"Metric", "Value"},
		numeric: []int{1},
		rows: [][]string{
			{"Goal Progress", format.Percent(d.Goal.ProgressPct)},
			{"Target Baseline", format.Currency(d.Goal.TargetBaseline)},
			{"Total Target", format.Currency(d.GoalSummary.TotalTarget)},
			{"Achievement Rate", format.Percent(d.GoalSummary.AchievementRate)},
			{"Status", string(d.GoalSummary.Status)},
		},
	}

	achievement := section{title: "Salesperson Achievement", header: []string{"Salesperson", "Achievement"}, numeric: []int{1}}
	for _, a := range d.Achievements {
		achievement.rows = append(achievement.rows, []string{a.Salesperson, format.Percent(a.AchievementPct)})
	}

	ranking := section{title: "Salesperson Ranking", header: []string{"#", "Salesperson", "Sales", "Profit"}, numeric: []int{0, 2, 3}}
	for i, r := range d.Salespeople {
		ranking.rows = append(ranking.rows, []string{
			strconv.Itoa(i + 1), r.Name, format.Currency(r.TotalSales), format.Currency(r.TotalProfit),
		})
	}

	return []section{
		kpis,
		goal,
		totals("Monthly Sales", "Month", d.MonthlySales),
		totals("Sales by Region", "Region", d.RegionSales),
		totals("Sales by Channel", "Channel", d.ChannelSales),
		totals("Sales by Product", "Product", d.ProductSales),
		ranking,
		achievement,
	}
}

func totals(title, key string, groups []models.GroupTotal) section {
	s := section{title: title, header: []string{key, "Sales"}, numeric: []int{1}}
	for _, g := range groups {
		s.rows = append(s.rows, []string{g.Key, format.Currency(g.Sales)})
	}
	return s
}

func writeSection(w io.Writer, s section, f Format) error {
	heading := fmt.Sprintf("-- %s --\n", s.title)
	if f == FormatMarkdown {
		heading = fmt.Sprintf("## %s\n\n", s.title)
	}
	if _, err := io.WriteString(w, heading); err != nil {
		return err
	}

	if len(s.rows) == 0 {
		_, err := io.WriteString(w, charts.NoDataText()+"\n\n")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(s.header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	align := make([]int, len(s.header))
	for i := range align {
		align[i] = tablewriter.ALIGN_LEFT
	}
	for _, i := range s.numeric {
		align[i] = tablewriter.ALIGN_RIGHT
	}
	table.SetColumnAlignment(align)

	if f == FormatMarkdown {
		table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
		table.SetCenterSeparator("|")
	}

	table.AppendBulk(s.rows)
	table.Render()

	_, err := io.WriteString(w, "\n")
	return err
}
