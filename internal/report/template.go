package report

// dashboardTemplate is the HTML page served at the API root. Styles live
// in the embedded web/static assets.
const dashboardTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<link rel="stylesheet" href="/static/dashboard.css">
</head>
<body>
<div class="header">
  <div class="header-left">
    <h1>{{.Title}}</h1>
    <p class="muted">Cycle {{.View.CycleID}}</p>
  </div>
  <div class="header-right">
    <p class="muted">{{datetime .View.RenderedAt}}</p>
  </div>
</div>

<h2>Forecast</h2>
<form class="filters" method="get" action="/">
  <label>From <input type="date" name="from" value="{{.From}}"></label>
  <label>To <input type="date" name="to" value="{{.To}}"></label>
  <label>Indicator
    <select name="indicator">
    {{range .Indicators}}<option value="{{.}}"{{if eq . $.Indicator}} selected{{end}}>{{.}}</option>{{end}}
    </select>
  </label>
  <button type="submit">Apply</button>
</form>
{{if .Indicator}}
<div class="chart-container"><img alt="{{.Indicator}}" src="{{.ChartURL}}"></div>
<p><a href="{{.ExportURL}}">Download filtered CSV</a> · <a href="/api/v1/forecast/correlation.png">Correlation heatmap</a></p>
{{end}}
<div class="alert {{.View.Alert.Severity}}">{{.View.Alert.Headline}} {{.View.Alert.Detail}}</div>

<h2>Live Market</h2>
<div class="grid">
  <div class="card"><div class="label">10Y Treasury Yield</div><div class="value">{{yieldq .View.Snapshot.Yield}}</div></div>
  <div class="card"><div class="label">30Y Fixed Mortgage</div><div class="value">{{rateq .View.Snapshot.Rate}}</div></div>
  <div class="card"><div class="label">Forecast 10Y Yield</div><div class="value">{{optpct .View.ForecastYield}}</div></div>
</div>

<h2>Refinancing Guidance</h2>
{{with .View.Guidance}}
<p>Spread: <strong>{{pct .Spread}}</strong> ({{.SpreadBand}})</p>
{{range .Messages}}<div class="alert {{.Severity}}"><strong>{{.Headline}}</strong> {{.Detail}}</div>{{end}}
{{else}}
<p class="muted">Guidance is not available for this cycle.</p>
{{end}}

<h2>Local Labor Market</h2>
{{if .Places.Places}}
<table>
<thead><tr><th>Place</th><th>Population</th><th>Unemployed</th><th>Rate</th></tr></thead>
<tbody>
{{range .Places.Places}}<tr><td>{{.Name}}</td><td>{{count .Population}}</td><td>{{count .Unemployed}}</td><td>{{pct .Rate}}</td></tr>{{end}}
</tbody>
</table>
{{else}}
<p class="muted">No place data.</p>
{{end}}
{{if .Counties.Counties}}
<table>
<thead><tr><th>County</th><th>Period</th><th>Rate</th></tr></thead>
<tbody>
{{range .Counties.Counties}}<tr><td>{{.County}}</td><td>{{period .}}</td><td>{{pct .Rate}}</td></tr>{{end}}
</tbody>
</table>
{{end}}

{{if .Warnings}}
<h2>Warnings</h2>
<ul class="warnings">
{{range .Warnings}}<li><span class="badge">{{.Section}}{{if .Source}}/{{.Source}}{{end}}</span> {{.Message}}</li>{{end}}
</ul>
{{end}}

<p class="muted disclaimer">Informational only. Not financial advice.</p>
</body>
</html>
`
