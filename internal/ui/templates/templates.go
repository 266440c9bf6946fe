// Package templates holds the dashboard page and the fragments the SSE
// endpoints patch into it.
package templates

import (
	"context"
	"encoding/json"
	"html/template"
	"io"
	"math"
	"slices"
	"time"

	"github.com/a-h/templ"
	"github.com/shopspring/decimal"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/format"
	"sales-dashboard/internal/models"
)

// Fragment element ids. SSE patches replace these elements by id.
const (
	IDFilterSummary = "filter-summary"
	IDKPIs          = "kpis"
	IDGoal          = "goal"
	IDCharts        = "charts"
	IDTable         = "transactions"
)

// Gauge bands and the threshold marker, in percent.
const (
	gaugeThreshold = 90
	gaugeRadius    = 80.0
	gaugeCX        = 100.0
	gaugeCY        = 100.0
)

// Page is everything the full dashboard render needs.
type Page struct {
	Title     string
	Subtitle  string
	Version   string
	DataFile  string
	Dashboard *models.Dashboard
	Panels    []charts.Panel
}

var funcs = template.FuncMap{
	"currency":    format.Currency,
	"percent":     format.Percent,
	"nullPercent": format.NullPercent,
	"int":         format.Int,
	"date":        func(t time.Time) string { return t.Format("2006-01-02") },
	"year":        func(t time.Time) int { return t.Year() },
	"noData":      charts.NoDataText,
	"gaugeArc":    gaugeArc,
	"gaugeMark":   gaugeMark,
	"statusLabel": statusLabel,
	"selected":    slices.Contains[[]string, string],
	"count":       func(values []string) int { return len(values) },
}

var tmpl = template.Must(template.New("dashboard").Funcs(funcs).Parse(pageTemplate))

// Dashboard renders the whole page.
func Dashboard(p Page) templ.Component {
	return execute("page", pageView{Page: p, Signals: signalsJSON(p.Dashboard)})
}

// FilterSummary renders the sidebar's selection counts.
func FilterSummary(d *models.Dashboard) templ.Component {
	return execute("filterSummary", d)
}

func KPIs(d *models.Dashboard) templ.Component {
	return execute("kpis", d)
}

// Goal renders the gauge, goal KPIs and per-salesperson achievement.
func Goal(d *models.Dashboard) templ.Component {
	return execute("goal", d)
}

func Charts(panels []charts.Panel) templ.Component {
	return execute("charts", panels)
}

func Table(d *models.Dashboard) templ.Component {
	return execute("table", d)
}

func execute(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return tmpl.ExecuteTemplate(w, name, data)
	})
}

type pageView struct {
	Page
	Signals string
}

// Summary is the small status signal patched after every recomputation.
type Summary struct {
	Rows        int     `json:"rows"`
	ComputeMs   float64 `json:"computeMs"`
	GeneratedAt string  `json:"generatedAt"`
}

func SummaryOf(d *models.Dashboard) Summary {
	return Summary{
		Rows:        d.RowCount,
		ComputeMs:   float64(d.ComputeElapsed.Microseconds()) / 1000,
		GeneratedAt: d.GeneratedAt.UTC().Format(time.RFC3339),
	}
}

// signalsJSON seeds the client's signals with the rendered selection. The
// filter arrays are never null so the selects always bind to a list.
func signalsJSON(d *models.Dashboard) string {
	filters := struct {
		Regions     []string `json:"regions"`
		Categories  []string `json:"categories"`
		Channels    []string `json:"channels"`
		Salespeople []string `json:"salespeople"`
	}{
		Regions:     nonNil(d.Selection.Regions),
		Categories:  nonNil(d.Selection.Categories),
		Channels:    nonNil(d.Selection.Channels),
		Salespeople: nonNil(d.Selection.Salespeople),
	}
	b, err := json.Marshal(map[string]any{"filters": filters, "summary": SummaryOf(d)})
	if err != nil {
		return "{}"
	}
	return string(b)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func statusLabel(s models.GoalStatus) string {
	switch s {
	case models.GoalExceeded:
		return "Target Exceeded!"
	case models.GoalClose:
		return "Close to Target"
	default:
		return "Below Target"
	}
}

// gaugePoint maps a percentage onto the gauge's upper semicircle.
func gaugePoint(pct float64) (float64, float64) {
	pct = math.Max(0, math.Min(100, pct))
	angle := math.Pi * (1 - pct/100)
	return gaugeCX + gaugeRadius*math.Cos(angle), gaugeCY - gaugeRadius*math.Sin(angle)
}

// gaugeArc returns an SVG path from the start of the dial to pct.
func gaugeArc(from, to any) string {
	x0, y0 := gaugePoint(toFloat(from))
	x1, y1 := gaugePoint(toFloat(to))
	return "M" + ftoa(x0) + "," + ftoa(y0) + " A" + ftoa(gaugeRadius) + "," + ftoa(gaugeRadius) + " 0 0 1 " + ftoa(x1) + "," + ftoa(y1)
}

// gaugeMark returns the threshold tick as x1,y1,x2,y2.
func gaugeMark() []string {
	angle := math.Pi * (1 - float64(gaugeThreshold)/100)
	inner, outer := gaugeRadius-14, gaugeRadius+14
	return []string{
		ftoa(gaugeCX + inner*math.Cos(angle)), ftoa(gaugeCY - inner*math.Sin(angle)),
		ftoa(gaugeCX + outer*math.Cos(angle)), ftoa(gaugeCY - outer*math.Sin(angle)),
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case decimal.Decimal:
		f, _ := n.Float64()
		return f
	case int:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}

func ftoa(f float64) string {
	return decimal.NewFromFloat(f).StringFixed(2)
}
