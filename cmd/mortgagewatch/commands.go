package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/mortgagewatch/api"
	"github.com/seenimoa/mortgagewatch/internal/config"
	"github.com/seenimoa/mortgagewatch/internal/forecast"
	"github.com/seenimoa/mortgagewatch/internal/provider"
	"github.com/seenimoa/mortgagewatch/internal/report"
	"github.com/seenimoa/mortgagewatch/pkg/utils"
)

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration, API keys and provider coverage",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, deps, err := newDashboard()
		if err != nil {
			return err
		}

		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  mortgagewatch - System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Time (ET):     %s\n", utils.FormatDateTimeET(utils.NowET()))
		if f := cfg.File(); f != "" {
			fmt.Printf("  Config file:   %s\n", f)
		}
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    Rate source:   %s\n", cfg.Rate.Provider)
		fmt.Printf("    Yield source:  %s\n", cfg.Yield.Provider)
		fmt.Printf("    Forecast:      %s (yield column %s)\n", cfg.Forecast.Path, cfg.Forecast.YieldColumn)
		fmt.Printf("    Cache TTL:     quotes %s, labor %s\n", cfg.Cache.QuoteTTL, cfg.Cache.LaborTTL)
		fmt.Printf("    API Server:    %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Println()

		fmt.Println("  Providers:")
		for _, m := range api.ModelStatus(deps.Registry) {
			def := m.Default
			if def == "" {
				def = "none"
			}
			fmt.Printf("    %-20s default %-10s available %s\n", m.Model, def, strings.Join(m.Providers, ", "))
		}
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "not set"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.EnvVar, k.Masked)
			} else if k.Required {
				status = "not set (required by its provider)"
			}
			fmt.Printf("    %-20s %s\n", k.Name+":", status)
		}
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

// --- Snapshot Command ---

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch the live mortgage rate and 10-year Treasury yield",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, _, err := newDashboard()
		if err != nil {
			return err
		}
		view := d.Snapshot(cmd.Context())
		if asJSON(cmd) {
			return printJSON(view)
		}
		yield, rate := "unavailable", "unavailable"
		if q := view.Snapshot.Yield; q != nil {
			yield = fmt.Sprintf("%s (%s)", utils.FormatPercent(q.Value), q.Source)
		}
		if q := view.Snapshot.Rate; q != nil {
			rate = fmt.Sprintf("%s (%s)", utils.FormatPercent(q.Value), q.Source)
		}
		fmt.Printf("  10Y Treasury yield:  %s\n", yield)
		fmt.Printf("  30Y fixed mortgage:  %s\n", rate)
		for _, w := range view.Warnings {
			fmt.Printf("  warning [%s/%s]: %s\n", w.Section, w.Source, w.Message)
		}
		return nil
	},
}

// --- Guidance Command ---

var guidanceCmd = &cobra.Command{
	Use:   "guidance",
	Short: "Run one dashboard cycle and print refinancing guidance",
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := dateFlag(cmd, "date")
		if err != nil {
			return err
		}
		d, _, err := newDashboard()
		if err != nil {
			return err
		}
		view := d.Render(cmd.Context(), at)
		if asJSON(cmd) {
			return printJSON(view)
		}
		return report.WriteText(os.Stdout, view)
	},
}

func init() {
	guidanceCmd.Flags().String("date", "", "forecast date to evaluate (default: row nearest today)")
}

// --- Forecast Commands ---

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Inspect and export the forecast dataset",
}

var forecastIndicatorsCmd = &cobra.Command{
	Use:   "indicators",
	Short: "List forecast indicators and the date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadForecast()
		if err != nil {
			return err
		}
		if asJSON(cmd) {
			from, to, _ := ds.Bounds()
			return printJSON(map[string]any{
				"indicators":   ds.Indicators(),
				"yield_column": ds.YieldColumn(),
				"has_yield":    ds.HasYield(),
				"from":         utils.FormatDate(from),
				"to":           utils.FormatDate(to),
			})
		}
		if from, to, ok := ds.Bounds(); ok {
			fmt.Printf("  %d rows, %s to %s\n", ds.Len(), utils.FormatDate(from), utils.FormatDate(to))
		}
		for _, ind := range ds.Indicators() {
			marker := ""
			if ind == ds.YieldColumn() {
				marker = "  (yield)"
			}
			fmt.Printf("  %s%s\n", ind, marker)
		}
		return nil
	},
}

var forecastShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print one indicator over a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := filteredForecast(cmd)
		if err != nil {
			return err
		}
		indicator, _ := cmd.Flags().GetString("indicator")
		if indicator == "" {
			indicator = ds.YieldColumn()
		}
		points, err := ds.Series(indicator)
		if err != nil {
			return err
		}
		if asJSON(cmd) {
			return printJSON(points)
		}
		fmt.Printf("  %-12s %s\n", "Date", indicator)
		for _, p := range points {
			fmt.Printf("  %-12s %.2f\n", utils.FormatDate(p.Date), p.Value)
		}
		return nil
	},
}

var forecastExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the filtered forecast rows as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := filteredForecast(cmd)
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("output")
		return writeOutput(out, ds.WriteCSV)
	},
}

var forecastChartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render one indicator as a PNG line chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := filteredForecast(cmd)
		if err != nil {
			return err
		}
		indicator, _ := cmd.Flags().GetString("indicator")
		if indicator == "" {
			indicator = ds.YieldColumn()
		}
		points, err := ds.Series(indicator)
		if err != nil {
			return err
		}
		png, err := report.LineChartPNG(indicator+" Over Time", points, report.DefaultChartConfig())
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("output")
		return writeOutput(out, func(w io.Writer) error {
			_, err := w.Write(png)
			return err
		})
	},
}

var forecastCorrelationCmd = &cobra.Command{
	Use:   "correlation",
	Short: "Print the indicator correlation matrix",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadForecast()
		if err != nil {
			return err
		}
		m := ds.Correlation()
		if out, _ := cmd.Flags().GetString("png"); out != "" {
			png, err := report.HeatmapPNG("Indicator Correlation", m.Indicators, m.Values, report.DefaultChartConfig())
			if err != nil {
				return err
			}
			return os.WriteFile(out, png, 0o644)
		}
		if asJSON(cmd) {
			return printJSON(m)
		}
		for i, name := range m.Indicators {
			fmt.Printf("  %2d %-28s", i+1, name)
			for _, v := range m.Values[i] {
				if math.IsNaN(v) {
					fmt.Printf(" %6s", "n/a")
					continue
				}
				fmt.Printf(" %6.2f", v)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{forecastShowCmd, forecastExportCmd, forecastChartCmd} {
		c.Flags().String("from", "", "first date to include (inclusive)")
		c.Flags().String("to", "", "last date to include (inclusive)")
	}
	forecastShowCmd.Flags().String("indicator", "", "indicator column (default: the yield column)")
	forecastChartCmd.Flags().String("indicator", "", "indicator column (default: the yield column)")
	forecastExportCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	forecastChartCmd.Flags().StringP("output", "o", "chart.png", "output PNG file")
	forecastCorrelationCmd.Flags().String("png", "", "write a heatmap PNG to this file")

	forecastCmd.AddCommand(forecastIndicatorsCmd, forecastShowCmd, forecastExportCmd, forecastChartCmd, forecastCorrelationCmd)
}

// --- Labor Commands ---

var laborCmd = &cobra.Command{
	Use:   "labor",
	Short: "Local unemployment statistics",
}

var laborPlacesCmd = &cobra.Command{
	Use:   "places [name fragment...]",
	Short: "Unemployment rate by place from the Census ACS",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, _, err := newDashboard()
		if err != nil {
			return err
		}
		view := d.PlaceLabor(cmd.Context(), args)
		if asJSON(cmd) {
			return printJSON(view)
		}
		return report.WritePlacesText(os.Stdout, view)
	},
}

var laborCountiesCmd = &cobra.Command{
	Use:   "counties",
	Short: "Monthly county unemployment from BLS",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, _, err := newDashboard()
		if err != nil {
			return err
		}
		raw, _ := cmd.Flags().GetString("series")
		view := d.CountyLabor(cmd.Context(), provider.DecodeSeries(raw))
		if asJSON(cmd) {
			return printJSON(view)
		}
		return report.WriteCountiesText(os.Stdout, view)
	},
}

func init() {
	laborCountiesCmd.Flags().String("series", "", `ordered "County=SeriesID" pairs, comma-separated`)
	laborCmd.AddCommand(laborPlacesCmd, laborCountiesCmd)
}

// --- Helpers ---

func loadForecast() (*forecast.Dataset, error) {
	return forecast.Load(cfg.Forecast.Path, cfg.Forecast.YieldColumn)
}

func filteredForecast(cmd *cobra.Command) (*forecast.Dataset, error) {
	ds, err := loadForecast()
	if err != nil {
		return nil, err
	}
	from, err := dateFlag(cmd, "from")
	if err != nil {
		return nil, err
	}
	to, err := dateFlag(cmd, "to")
	if err != nil {
		return nil, err
	}
	return ds.Filter(from, to), nil
}

func dateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := utils.ParseDate(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", name, err)
	}
	return t, nil
}

func asJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
