package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/seenimoa/mortgagewatch/internal/dashboard"
	"github.com/seenimoa/mortgagewatch/internal/guidance"
	"github.com/seenimoa/mortgagewatch/internal/market"
	"github.com/seenimoa/mortgagewatch/pkg/models"
	"github.com/seenimoa/mortgagewatch/pkg/utils"
)

var (
	line     = strings.Repeat("═", 60)
	thinLine = strings.Repeat("─", 60)
)

// WriteText renders a dashboard view as a plain-text summary.
func WriteText(w io.Writer, v dashboard.View) error {
	var sb strings.Builder

	sb.WriteString(line + "\n")
	sb.WriteString("  Mortgage Rate Dashboard\n")
	sb.WriteString(fmt.Sprintf("  Rendered: %s | Cycle: %s\n", utils.FormatDateTimeET(v.RenderedAt), v.CycleID))
	sb.WriteString(line + "\n")

	// Forecast
	sb.WriteString("\n  ■ FORECAST\n")
	if v.ForecastRow != nil {
		sb.WriteString(fmt.Sprintf("    Row date:            %s\n", utils.FormatDate(v.ForecastRow.Date)))
	}
	sb.WriteString(fmt.Sprintf("    Forecast 10Y yield:  %s\n", optPercent(v.ForecastYield)))
	sb.WriteString(fmt.Sprintf("    [%s] %s\n", v.Alert.Severity, joinMessage(v.Alert)))
	sb.WriteString(thinLine + "\n")

	// Live market
	sb.WriteString("\n  ■ LIVE MARKET\n")
	sb.WriteString(fmt.Sprintf("    10Y Treasury yield:  %s\n", yieldLine(v.Snapshot.Yield)))
	sb.WriteString(fmt.Sprintf("    30Y fixed mortgage:  %s\n", rateLine(v.Snapshot.Rate)))
	sb.WriteString(thinLine + "\n")

	// Guidance
	sb.WriteString("\n  ★ REFINANCING GUIDANCE\n")
	if v.Guidance == nil {
		sb.WriteString("    Not available for this cycle.\n")
	} else {
		g := v.Guidance
		sb.WriteString(fmt.Sprintf("    Spread: %s (%s)\n", utils.FormatPercent(g.Spread), g.SpreadBand))
		for _, m := range g.Messages() {
			sb.WriteString(fmt.Sprintf("    [%s] %s\n", m.Severity, joinMessage(m)))
		}
	}
	sb.WriteString(thinLine + "\n")

	writeWarnings(&sb, v.Warnings)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString("  Informational only. Not financial advice.\n")
	sb.WriteString(line + "\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// WritePlacesText renders the place unemployment table.
func WritePlacesText(w io.Writer, v dashboard.PlacesView) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  %-40s %12s %12s %8s\n", "Place", "Population", "Unemployed", "Rate"))
	sb.WriteString(thinLine + "\n")
	for _, p := range v.Places {
		sb.WriteString(fmt.Sprintf("  %-40s %12s %12s %8s\n",
			p.Name, utils.FormatCount(p.Population), utils.FormatCount(p.Unemployed), utils.FormatPercent(p.Rate)))
	}
	writeWarnings(&sb, v.Warnings)
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteCountiesText renders the county time series, one line per month.
func WriteCountiesText(w io.Writer, v dashboard.CountiesView) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  %-16s %-8s %8s\n", "County", "Period", "Rate"))
	sb.WriteString(thinLine + "\n")
	for _, c := range v.Counties {
		sb.WriteString(fmt.Sprintf("  %-16s %-8s %8s\n", c.County, c.Period().Format("2006-01"), utils.FormatPercent(c.Rate)))
	}
	writeWarnings(&sb, v.Warnings)
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeWarnings(sb *strings.Builder, warnings []market.Warning) {
	if len(warnings) == 0 {
		return
	}
	sb.WriteString("\n  ■ WARNINGS\n")
	for _, w := range warnings {
		src := w.Section
		if w.Source != "" {
			src += "/" + w.Source
		}
		sb.WriteString(fmt.Sprintf("    [%s] %s\n", src, w.Message))
	}
}

func joinMessage(m guidance.Message) string {
	if m.Detail == "" {
		return m.Headline
	}
	return m.Headline + " " + m.Detail
}

func optPercent(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return utils.FormatPercent(*v)
}

func yieldLine(q *models.YieldQuote) string {
	if q == nil {
		return "unavailable"
	}
	return fmt.Sprintf("%s (%s)", utils.FormatPercent(q.Value), q.Source)
}

func rateLine(q *models.RateQuote) string {
	if q == nil {
		return "unavailable"
	}
	return fmt.Sprintf("%s (%s)", utils.FormatPercent(q.Value), q.Source)
}
