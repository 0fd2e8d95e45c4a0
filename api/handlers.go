package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/seenimoa/mortgagewatch/internal/forecast"
	"github.com/seenimoa/mortgagewatch/internal/market"
	"github.com/seenimoa/mortgagewatch/internal/provider"
	"github.com/seenimoa/mortgagewatch/internal/report"
	"github.com/seenimoa/mortgagewatch/pkg/utils"
)

// ExportFileName is the download name of the filtered CSV export.
const ExportFileName = "filtered_mortgage_data.csv"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, map[string]any{
		"status":  "ok",
		"version": Version,
		"uptime":  time.Since(s.started).Round(time.Second).String(),
		"time_et": utils.FormatDateTimeET(utils.NowET()),
	})
}

// ── Live market and guidance ──

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeData(w, s.dash.Snapshot(r.Context()))
}

// handleGuidance runs one render cycle. ?date selects the forecast row;
// without it the row nearest now is used.
func (s *Server) handleGuidance(w http.ResponseWriter, r *http.Request) {
	at, err := optionalDate(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "date", err.Error())
		return
	}
	writeData(w, s.dash.Render(r.Context(), at))
}

// ── Forecast dataset ──

// ForecastResponse is the body of GET /api/v1/forecast.
type ForecastResponse struct {
	Indicators []string `json:"indicators"`
	Rows       any      `json:"rows"`
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.filteredForecast(w, r)
	if !ok {
		return
	}
	writeData(w, ForecastResponse{Indicators: ds.Indicators(), Rows: ds.Rows()})
}

// IndicatorsResponse is the body of GET /api/v1/forecast/indicators.
type IndicatorsResponse struct {
	Indicators  []string `json:"indicators"`
	YieldColumn string   `json:"yield_column"`
	HasYield    bool     `json:"has_yield"`
	From        string   `json:"from,omitempty"`
	To          string   `json:"to,omitempty"`
	Rows        int      `json:"rows"`
}

func (s *Server) handleForecastIndicators(w http.ResponseWriter, r *http.Request) {
	ds, err := s.dash.Forecast()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, market.SectionForecast, err.Error())
		return
	}
	resp := IndicatorsResponse{
		Indicators:  ds.Indicators(),
		YieldColumn: ds.YieldColumn(),
		HasYield:    ds.HasYield(),
		Rows:        ds.Len(),
	}
	if from, to, ok := ds.Bounds(); ok {
		resp.From, resp.To = utils.FormatDate(from), utils.FormatDate(to)
	}
	writeData(w, resp)
}

func (s *Server) handleForecastExport(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.filteredForecast(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := ds.WriteCSV(&buf); err != nil {
		writeError(w, http.StatusInternalServerError, market.SectionForecast, err.Error())
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportFileName))
	writeBytes(w, "text/csv; charset=utf-8", buf.Bytes())
}

// handleForecastChart renders ?indicator (default: the yield column).
func (s *Server) handleForecastChart(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.filteredForecast(w, r)
	if !ok {
		return
	}
	indicator := r.URL.Query().Get("indicator")
	if indicator == "" {
		indicator = defaultIndicator(ds)
	}
	points, err := ds.Series(indicator)
	if err != nil {
		writeError(w, http.StatusNotFound, market.SectionForecast, err.Error())
		return
	}
	png, err := report.LineChartPNG(indicator+" Over Time", points, report.DefaultChartConfig())
	if errors.Is(err, report.ErrNoPoints) {
		writeError(w, http.StatusNotFound, market.SectionForecast, "no data points for "+indicator)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, market.SectionForecast, err.Error())
		return
	}
	writeBytes(w, "image/png", png)
}

func (s *Server) handleForecastCorrelation(w http.ResponseWriter, r *http.Request) {
	ds, err := s.dash.Forecast()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, market.SectionForecast, err.Error())
		return
	}
	writeData(w, ds.Correlation())
}

func (s *Server) handleForecastCorrelationChart(w http.ResponseWriter, r *http.Request) {
	ds, err := s.dash.Forecast()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, market.SectionForecast, err.Error())
		return
	}
	m := ds.Correlation()
	cfg := report.DefaultChartConfig()
	cfg.Height = 600
	png, err := report.HeatmapPNG("Indicator Correlation", m.Indicators, m.Values, cfg)
	if err != nil {
		writeError(w, http.StatusNotFound, market.SectionForecast, err.Error())
		return
	}
	writeBytes(w, "image/png", png)
}

// filteredForecast applies ?from and ?to. It writes the error response and
// returns false on failure.
func (s *Server) filteredForecast(w http.ResponseWriter, r *http.Request) (*forecast.Dataset, bool) {
	ds, err := s.dash.Forecast()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, market.SectionForecast, err.Error())
		return nil, false
	}
	from, err := optionalDate(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "from", err.Error())
		return nil, false
	}
	to, err := optionalDate(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "to", err.Error())
		return nil, false
	}
	return ds.Filter(from, to), true
}

func defaultIndicator(ds *forecast.Dataset) string {
	if ds.HasYield() {
		return ds.YieldColumn()
	}
	if ind := ds.Indicators(); len(ind) > 0 {
		return ind[0]
	}
	return ""
}

// ── Labor statistics ──

// handleLaborPlaces accepts ?filter=Queens,Kings.
func (s *Server) handleLaborPlaces(w http.ResponseWriter, r *http.Request) {
	filter := provider.SplitList(r.URL.Query().Get("filter"))
	writeData(w, s.dash.PlaceLabor(r.Context(), filter))
}

// handleLaborCounties accepts ?series=Queens=LAUCN...,Kings=LAUCN....
func (s *Server) handleLaborCounties(w http.ResponseWriter, r *http.Request) {
	series := provider.DecodeSeries(r.URL.Query().Get("series"))
	writeData(w, s.dash.CountyLabor(r.Context(), series))
}

// ── HTML dashboard ──

func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	page := report.Page{
		From:      strings.TrimSpace(q.Get("from")),
		To:        strings.TrimSpace(q.Get("to")),
		Indicator: q.Get("indicator"),
	}
	to, err := optionalDate(r, "to")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if ds, err := s.dash.Forecast(); err == nil {
		page.Indicators = ds.Indicators()
		if page.Indicator == "" {
			page.Indicator = defaultIndicator(ds)
		}
	}

	page.View = s.dash.Render(ctx, to)
	page.Places = s.dash.PlaceLabor(ctx, nil)
	page.Counties = s.dash.CountyLabor(ctx, nil)

	var buf bytes.Buffer
	if err := report.WriteHTML(&buf, page); err != nil {
		log.WithError(err).Error("dashboard page failed")
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}
	writeBytes(w, "text/html; charset=utf-8", buf.Bytes())
}

func optionalDate(r *http.Request, name string) (time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return time.Time{}, nil
	}
	t, err := utils.ParseDate(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return t, nil
}
