package report

import (
	"fmt"
	"html/template"
	"io"
	"net/url"

	"github.com/seenimoa/mortgagewatch/internal/dashboard"
	"github.com/seenimoa/mortgagewatch/internal/market"
	"github.com/seenimoa/mortgagewatch/pkg/models"
	"github.com/seenimoa/mortgagewatch/pkg/utils"
)

// Page is everything the HTML dashboard shows.
type Page struct {
	View       dashboard.View
	Places     dashboard.PlacesView
	Counties   dashboard.CountiesView
	Indicators []string
	Indicator  string
	From       string // yyyy-mm-dd, may be empty
	To         string
}

type pageData struct {
	Page
	Title     string
	ChartURL  string
	ExportURL string
	Warnings  []market.Warning
}

var funcs = template.FuncMap{
	"pct":      utils.FormatPercent,
	"count":    utils.FormatCount,
	"datetime": utils.FormatDateTimeET,
	"optpct":   optPercent,
	"yieldq":   yieldLine,
	"rateq":    rateLine,
	"period": func(c models.CountyUnemployment) string {
		return c.Period().Format("Jan 2006")
	},
}

var pageTmpl = template.Must(template.New("dashboard").Funcs(funcs).Parse(dashboardTemplate))

// WriteHTML renders the dashboard page.
func WriteHTML(w io.Writer, p Page) error {
	q := url.Values{}
	if p.From != "" {
		q.Set("from", p.From)
	}
	if p.To != "" {
		q.Set("to", p.To)
	}
	export := "/api/v1/forecast/export.csv"
	if len(q) > 0 {
		export += "?" + q.Encode()
	}
	q.Set("indicator", p.Indicator)

	data := pageData{
		Page:      p,
		Title:     "Mortgage Rate Dashboard",
		ChartURL:  "/api/v1/forecast/chart.png?" + q.Encode(),
		ExportURL: export,
	}
	data.Warnings = append(data.Warnings, p.View.Warnings...)
	data.Warnings = append(data.Warnings, p.Places.Warnings...)
	data.Warnings = append(data.Warnings, p.Counties.Warnings...)

	if err := pageTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	return nil
}
