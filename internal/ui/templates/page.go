package templates

const pageTemplate = `
{{define "page"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"></script>
<style>
:root{--primary:#6C63FF;--secondary:#00D4AA;--bg:#0F1117;--bg2:#1E1E2E;--text:#FAFAFA;--warning:#FFA500;--danger:#FF4444}
*{box-sizing:border-box}
body{margin:0;font-family:system-ui,sans-serif;background:var(--bg);color:var(--text);display:flex;min-height:100vh}
aside{width:280px;padding:1.25rem;background:var(--bg2)}
aside label{display:block;margin:1rem 0 .25rem;font-weight:600}
aside select{width:100%;min-height:6rem;background:var(--bg);color:var(--text);border:1px solid #333;border-radius:6px}
main{flex:1;padding:1.5rem;overflow-x:auto}
header h1{margin:0;color:var(--primary)}
header p{margin:.25rem 0 1.5rem;opacity:.7}
.cards{display:grid;grid-template-columns:repeat(5,1fr);gap:1rem;margin-bottom:1.5rem}
.card{background:var(--bg2);border-radius:10px;padding:1rem}
.card span{display:block;font-size:.8rem;opacity:.7}
.card strong{font-size:1.4rem}
.goal{display:grid;grid-template-columns:260px 1fr 1fr;gap:1rem;background:var(--bg2);border-radius:10px;padding:1rem;margin-bottom:1.5rem}
.status-exceeded{color:var(--secondary)}.status-close{color:var(--warning)}.status-below{color:var(--danger)}
.panels{display:grid;grid-template-columns:repeat(2,1fr);gap:1rem;margin-bottom:1.5rem}
.panel{background:var(--bg2);border-radius:10px;padding:1rem;overflow:hidden}
.panel svg{max-width:100%;height:auto}
.empty{padding:3rem 0;text-align:center;opacity:.6}
table{width:100%;border-collapse:collapse;background:var(--bg2);border-radius:10px}
th,td{padding:.5rem .75rem;text-align:left;border-bottom:1px solid #2a2a3a}
td.num{text-align:right}
footer{margin-top:2rem;font-size:.8rem;opacity:.6}
</style>
</head>
<body data-signals="{{.Signals}}">
<aside>
<h2>Filters</h2>
<form data-on:change="@get('/sse/refresh')">
{{$sel := .Dashboard.Selection}}{{$opts := .Dashboard.Options}}
<label for="f-region">Region</label>
<select id="f-region" multiple data-bind="filters.regions">{{range $opts.Regions}}
<option value="{{.}}"{{if selected $sel.Regions .}} selected{{end}}>{{.}}</option>{{end}}
</select>
<label for="f-category">Category</label>
<select id="f-category" multiple data-bind="filters.categories">{{range $opts.Categories}}
<option value="{{.}}"{{if selected $sel.Categories .}} selected{{end}}>{{.}}</option>{{end}}
</select>
<label for="f-channel">Channel</label>
<select id="f-channel" multiple data-bind="filters.channels">{{range $opts.Channels}}
<option value="{{.}}"{{if selected $sel.Channels .}} selected{{end}}>{{.}}</option>{{end}}
</select>
<label for="f-salesperson">Salesperson</label>
<select id="f-salesperson" multiple data-bind="filters.salespeople">{{range $opts.Salespeople}}
<option value="{{.}}"{{if selected $sel.Salespeople .}} selected{{end}}>{{.}}</option>{{end}}
</select>
</form>
{{template "filterSummary" .Dashboard}}
<p><small>Recomputed in <span data-text="$summary.computeMs"></span> ms</small></p>
</aside>
<main>
<header>
<h1>{{.Title}} - {{year .Dashboard.GeneratedAt}}</h1>
<p>{{.Subtitle}}</p>
</header>
{{template "kpis" .Dashboard}}
{{template "goal" .Dashboard}}
{{template "charts" .Panels}}
{{template "table" .Dashboard}}
<footer>{{.Title}} v{{.Version}} | Generated {{date .Dashboard.GeneratedAt}} | Data: {{.DataFile}}</footer>
</main>
</body>
</html>
{{end}}

{{define "filterSummary"}}<div id="filter-summary">
<h3>Filter Summary</h3>
<ul>
<li>Regions: {{count .Selection.Regions}} selected</li>
<li>Categories: {{count .Selection.Categories}} selected</li>
<li>Channels: {{count .Selection.Channels}} selected</li>
<li>Salespeople: {{count .Selection.Salespeople}} selected</li>
</ul>
<p>{{int .RowCount}} transactions</p>
</div>{{end}}

{{define "kpis"}}<section id="kpis" class="cards">
<div class="card"><span>Total Sales</span><strong>{{currency .KPIs.TotalSales}}</strong></div>
<div class="card"><span>Total Profit</span><strong>{{currency .KPIs.TotalProfit}}</strong></div>
<div class="card"><span>Avg Margin</span><strong>{{percent .KPIs.AvgMargin}}</strong></div>
<div class="card"><span>Units Sold</span><strong>{{int .KPIs.TotalUnits}}</strong></div>
<div class="card"><span>Unique Customers</span><strong>{{int .KPIs.UniqueCustomers}}</strong></div>
</section>{{end}}

{{define "goal"}}<section id="goal" class="goal">
<div>
<h3>Goal Progress</h3>
<svg viewBox="0 0 200 125" width="240" role="img" aria-label="Goal progress {{percent .Goal.ProgressPct}}">
<path d="{{gaugeArc 0 50}}" fill="none" stroke="#FF4444" stroke-opacity=".35" stroke-width="14"/>
<path d="{{gaugeArc 50 80}}" fill="none" stroke="#FFA500" stroke-opacity=".35" stroke-width="14"/>
<path d="{{gaugeArc 80 100}}" fill="none" stroke="#00D4AA" stroke-opacity=".35" stroke-width="14"/>
<path d="{{gaugeArc 0 .Goal.ProgressPct}}" fill="none" stroke="#6C63FF" stroke-width="8"/>
{{with gaugeMark}}<line x1="{{index . 0}}" y1="{{index . 1}}" x2="{{index . 2}}" y2="{{index . 3}}" stroke="#FAFAFA" stroke-width="3"/>{{end}}
<text x="100" y="95" text-anchor="middle" fill="#FAFAFA" font-size="22">{{percent .Goal.ProgressPct}}</text>
<text x="100" y="120" text-anchor="middle" fill="#FAFAFA" font-size="10">Target: {{currency .Goal.TargetBaseline}}</text>
</svg>
</div>
<div>
<div class="card"><span>Total Target</span><strong>{{currency .GoalSummary.TotalTarget}}</strong></div>
<div class="card"><span>Achievement Rate</span><strong>{{percent .GoalSummary.AchievementRate}}</strong></div>
<p class="status-{{.GoalSummary.Status}}">{{statusLabel .GoalSummary.Status}}</p>
</div>
<div>
<h3>Salesperson Performance</h3>
{{if .Achievements}}<ul>{{range .Achievements}}
<li>{{.Salesperson}}: {{percent .AchievementPct}}</li>{{end}}
</ul>{{else}}<p>Select salespeople to see details</p>{{end}}
</div>
</section>{{end}}

{{define "charts"}}<section id="charts" class="panels">{{range .}}
<div class="panel" id="panel-{{.ID}}">
<h3>{{.Title}}</h3>
{{if .Empty}}<p class="empty">{{noData}}</p>{{else}}{{.SVG}}{{end}}
</div>{{end}}
</section>{{end}}

{{define "table"}}<section id="transactions">
<h3>Transactions</h3>
<table>
<thead><tr><th>Date</th><th>Salesperson</th><th>Product</th><th>Region</th><th>Units</th><th>Sales</th><th>Profit</th><th>Margin %</th></tr></thead>
<tbody>{{range .Transactions}}
<tr><td>{{date .Date}}</td><td>{{.Salesperson}}</td><td>{{.Product}}</td><td>{{.Region}}</td><td class="num">{{int .Units}}</td><td class="num">{{currency .Sales}}</td><td class="num">{{currency .Profit}}</td><td class="num">{{nullPercent .MarginPct}}</td></tr>{{else}}
<tr><td colspan="8" class="empty">{{noData}}</td></tr>{{end}}
</tbody>
</table>
<p><small>Showing {{len .Transactions}} of {{int .RowCount}} rows</small></p>
</section>{{end}}
`
