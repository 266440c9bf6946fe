// Package charts renders the dashboard panels as inline SVG.
package charts

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"math"

	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"sales-dashboard/internal/format"
	"sales-dashboard/internal/models"
)

const (
	width      = 720
	height     = 360
	donutSize  = 360
	noDataText = "No data for the current selection"
)

// Theme is the dashboard palette, as hex colors.
type Theme struct {
	Primary     string
	Secondary   string
	Background  string
	SecondaryBG string
	Text        string
	Success     string
	Warning     string
	Danger      string
}

var DefaultTheme = Theme{
	Primary:     "#6C63FF",
	Secondary:   "#00D4AA",
	Background:  "#0F1117",
	SecondaryBG: "#1E1E2E",
	Text:        "#FAFAFA",
	Success:     "#00D4AA",
	Warning:     "#FFA500",
	Danger:      "#FF4444",
}

// Slice colors for donuts, after the theme's own two.
var extraSlices = []string{"#FFA500", "#FF4444", "#4EA8DE", "#F15BB5", "#9B5DE5", "#FEE440"}

// Panel is one rendered chart. Empty panels carry no SVG.
type Panel struct {
	ID    string
	Title string
	SVG   template.HTML
	Empty bool
}

// Renderer draws panels with a theme.
type Renderer struct {
	theme Theme
}

func NewRenderer(theme Theme) *Renderer {
	return &Renderer{theme: theme}
}

// Panels renders the six dashboard charts in page order.
func (r *Renderer) Panels(d *models.Dashboard) ([]Panel, error) {
	renders := []func() (Panel, error){
		func() (Panel, error) { return r.MonthlySales(d.MonthlySales) },
		func() (Panel, error) { return r.RegionSales(d.RegionSales) },
		func() (Panel, error) { return r.ProductSales(d.ProductSales) },
		func() (Panel, error) { return r.SalespersonPerformance(d.Salespeople) },
		func() (Panel, error) { return r.ChannelSales(d.ChannelSales) },
		func() (Panel, error) { return r.Achievement(d.Achievements) },
	}

	panels := make([]Panel, 0, len(renders))
	for _, render := range renders {
		p, err := render()
		if err != nil {
			return nil, err
		}
		panels = append(panels, p)
	}
	return panels, nil
}

func (r *Renderer) MonthlySales(totals []models.GroupTotal) (Panel, error) {
	bars := make([]chart.Value, 0, len(totals))
	for _, t := range totals {
		bars = append(bars, chart.Value{Label: t.Key, Value: toFloat(t.Sales)})
	}
	return r.bars("monthly-sales", "Monthly Sales Trend", bars)
}

func (r *Renderer) RegionSales(totals []models.GroupTotal) (Panel, error) {
	return r.donut("region-sales", "Sales by Region", totals)
}

// ProductSales expects totals already ordered by ascending sales.
func (r *Renderer) ProductSales(totals []models.GroupTotal) (Panel, error) {
	bars := make([]chart.Value, 0, len(totals))
	for _, t := range totals {
		bars = append(bars, chart.Value{Label: t.Key, Value: toFloat(t.Sales)})
	}
	return r.bars("product-sales", "Sales by Product", bars)
}

// SalespersonPerformance draws sales and profit side by side per person.
func (r *Renderer) SalespersonPerformance(ranks []models.SalespersonRank) (Panel, error) {
	sales := chart.Style{FillColor: drawing.ColorFromHex(r.theme.Primary), StrokeColor: drawing.ColorFromHex(r.theme.Primary)}
	profit := chart.Style{FillColor: drawing.ColorFromHex(r.theme.Secondary), StrokeColor: drawing.ColorFromHex(r.theme.Secondary)}

	bars := make([]chart.Value, 0, 2*len(ranks))
	for _, rank := range ranks {
		bars = append(bars,
			chart.Value{Label: rank.Name, Value: toFloat(rank.TotalSales), Style: sales},
			chart.Value{Value: toFloat(rank.TotalProfit), Style: profit},
		)
	}
	return r.bars("salesperson-performance", "Sales vs Profit by Salesperson", bars)
}

func (r *Renderer) ChannelSales(totals []models.GroupTotal) (Panel, error) {
	return r.donut("channel-sales", "Sales by Channel", totals)
}

// Achievement colors each salesperson's bar by how close they are to target.
func (r *Renderer) Achievement(achievements []models.Achievement) (Panel, error) {
	bars := make([]chart.Value, 0, len(achievements))
	for _, a := range achievements {
		color := r.theme.Danger
		switch {
		case a.AchievementPct.GreaterThanOrEqual(decimal.NewFromInt(100)):
			color = r.theme.Success
		case a.AchievementPct.GreaterThanOrEqual(decimal.NewFromInt(80)):
			color = r.theme.Warning
		}
		c := drawing.ColorFromHex(color)
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%s (%s)", a.Salesperson, format.Percent(a.AchievementPct)),
			Value: toFloat(a.AchievementPct),
			Style: chart.Style{FillColor: c, StrokeColor: c},
		})
	}

	return r.barChart("achievement", "Salesperson Achievement", bars, func(v any) string {
		if f, ok := v.(float64); ok {
			return fmt.Sprintf("%.0f%%", f)
		}
		return ""
	})
}

func (r *Renderer) bars(id, title string, bars []chart.Value) (Panel, error) {
	return r.barChart(id, title, bars, func(v any) string {
		if f, ok := v.(float64); ok {
			return format.Compact(f)
		}
		return ""
	})
}

func (r *Renderer) barChart(id, title string, bars []chart.Value, yFormat chart.ValueFormatter) (Panel, error) {
	panel := Panel{ID: id, Title: title}

	lo, hi := 0.0, 0.0
	for i := range bars {
		lo = math.Min(lo, bars[i].Value)
		hi = math.Max(hi, bars[i].Value)
		bars[i].Label = html.EscapeString(bars[i].Label)
		if bars[i].Style.FillColor.IsZero() {
			c := drawing.ColorFromHex(r.theme.Primary)
			bars[i].Style = chart.Style{FillColor: c, StrokeColor: c}
		}
	}
	// go-chart rejects an empty bar set and a zero-height value range.
	if len(bars) == 0 || hi == lo {
		panel.Empty = true
		return panel, nil
	}

	pad := (hi - lo) * 0.1
	if hi > 0 {
		hi += pad
	}
	if lo < 0 {
		lo -= pad
	}

	text := drawing.ColorFromHex(r.theme.Text)
	bc := chart.BarChart{
		Width:        width,
		Height:       height,
		BarWidth:     barWidth(len(bars)),
		UseBaseValue: true,
		BaseValue:    0,
		Background: chart.Style{
			FillColor: drawing.ColorFromHex(r.theme.SecondaryBG),
			Padding:   chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16},
		},
		Canvas: chart.Style{FillColor: drawing.ColorFromHex(r.theme.SecondaryBG)},
		XAxis:  chart.Style{FontColor: text, StrokeColor: text, FontSize: 8},
		YAxis: chart.YAxis{
			Style:          chart.Style{FontColor: text, StrokeColor: text, FontSize: 8},
			Range:          &chart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: yFormat,
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.SVG, &buf); err != nil {
		return panel, fmt.Errorf("render %s chart: %w", id, err)
	}
	panel.SVG = template.HTML(buf.String())
	return panel, nil
}

func (r *Renderer) donut(id, title string, totals []models.GroupTotal) (Panel, error) {
	panel := Panel{ID: id, Title: title}

	palette := append([]string{r.theme.Primary, r.theme.Secondary}, extraSlices...)
	values := make([]chart.Value, 0, len(totals))
	for _, t := range totals {
		v := toFloat(t.Sales)
		// Slices need a positive share of the whole.
		if v <= 0 {
			continue
		}
		c := drawing.ColorFromHex(palette[len(values)%len(palette)])
		values = append(values, chart.Value{
			Label: html.EscapeString(t.Key),
			Value: v,
			Style: chart.Style{FillColor: c, StrokeColor: drawing.ColorFromHex(r.theme.SecondaryBG), FontColor: drawing.ColorFromHex(r.theme.Text)},
		})
	}
	if len(values) == 0 {
		panel.Empty = true
		return panel, nil
	}

	dc := chart.DonutChart{
		Width:      donutSize,
		Height:     donutSize,
		Background: chart.Style{FillColor: drawing.ColorFromHex(r.theme.SecondaryBG)},
		Canvas:     chart.Style{FillColor: drawing.ColorFromHex(r.theme.SecondaryBG)},
		SliceStyle: chart.Style{
			FontSize:    9,
			FillColor:   drawing.ColorFromHex(r.theme.SecondaryBG),
			StrokeColor: drawing.ColorFromHex(r.theme.SecondaryBG),
		},
		Values: values,
	}

	var buf bytes.Buffer
	if err := dc.Render(chart.SVG, &buf); err != nil {
		return panel, fmt.Errorf("render %s chart: %w", id, err)
	}
	panel.SVG = template.HTML(buf.String())
	return panel, nil
}

// NoDataText is shown in place of an empty panel.
func NoDataText() string {
	return noDataText
}

func barWidth(n int) int {
	switch {
	case n <= 4:
		return 80
	case n <= 12:
		return 40
	default:
		return 20
	}
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
