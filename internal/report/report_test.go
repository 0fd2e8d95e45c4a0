package report

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/mortgagewatch/internal/dashboard"
	"github.com/seenimoa/mortgagewatch/internal/guidance"
	"github.com/seenimoa/mortgagewatch/internal/market"
	"github.com/seenimoa/mortgagewatch/pkg/models"
)

func sampleView(t *testing.T) dashboard.View {
	t.Helper()
	snap := models.MarketSnapshot{
		Yield: &models.YieldQuote{Value: 3.8, Source: "yfinance"},
		Rate:  &models.RateQuote{Value: 6.5, Source: "mnd"},
	}
	g, err := guidance.Evaluate(4.5, snap)
	require.NoError(t, err)
	alert, _ := guidance.ForecastAlert(4.5)
	fy := 4.5
	row := models.ForecastRow{Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}
	return dashboard.View{
		CycleID:       uuid.New(),
		RenderedAt:    time.Date(2025, 2, 3, 15, 0, 0, 0, time.UTC),
		ForecastRow:   &row,
		ForecastYield: &fy,
		Snapshot:      snap,
		Guidance:      &g,
		Alert:         alert,
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleView(t)))

	out := buf.String()
	assert.Contains(t, out, "2025-02-01")
	assert.Contains(t, out, "4.50%")
	assert.Contains(t, out, "6.50% (mnd)")
	assert.Contains(t, out, "Spread: 2.70% (elevated)")
	assert.NotContains(t, out, "WARNINGS")
}

func TestWriteTextDegraded(t *testing.T) {
	v := dashboard.View{
		Alert: guidance.Message{Severity: guidance.SeverityInfo, Headline: "pending"},
		Warnings: []market.Warning{
			{Section: market.SectionRate, Source: "mnd", Message: "selector matched nothing"},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, v))

	out := buf.String()
	assert.Contains(t, out, "unavailable")
	assert.Contains(t, out, "Not available for this cycle")
	assert.Contains(t, out, "[rate/mnd] selector matched nothing")
}

func TestWriteLaborText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlacesText(&buf, dashboard.PlacesView{
		Places: []models.PlaceUnemployment{
			{Name: "Queens County, New York", Population: 1200000, Unemployed: 41000, Rate: 3.42},
			{Name: "Hamilton County, New York", Rate: math.NaN()},
		},
	}))
	assert.Contains(t, buf.String(), "3.42%")
	assert.Contains(t, buf.String(), "n/a")

	buf.Reset()
	require.NoError(t, WriteCountiesText(&buf, dashboard.CountiesView{
		Counties: []models.CountyUnemployment{{County: "Kings", Year: 2025, Month: time.March, Rate: 5.1}},
	}))
	assert.Contains(t, buf.String(), "2025-03")
}

func TestWriteHTML(t *testing.T) {
	page := Page{
		View:       sampleView(t),
		Indicators: []string{"30Y_Mortgage_Rate", "10Y_Treasury_Yield"},
		Indicator:  "10Y_Treasury_Yield",
		From:       "2025-01-01",
		Places: dashboard.PlacesView{
			Places: []models.PlaceUnemployment{{Name: "Kings County, New York", Rate: 3.91}},
			Warnings: []market.Warning{
				{Section: market.SectionPlaceLabor, Source: "census", Message: "<b>boom</b>"},
			},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, page))

	out := buf.String()
	assert.Contains(t, out, "Mortgage Rate Dashboard")
	assert.Contains(t, out, `<option value="10Y_Treasury_Yield" selected>`)
	assert.Contains(t, out, "/api/v1/forecast/chart.png?from=2025-01-01&amp;indicator=10Y_Treasury_Yield")
	assert.Contains(t, out, "/api/v1/forecast/export.csv?from=2025-01-01")
	assert.Contains(t, out, "Kings County, New York")
	assert.Contains(t, out, "&lt;b&gt;boom&lt;/b&gt;", "messages must be escaped")
}
