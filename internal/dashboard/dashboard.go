// Package dashboard runs one render cycle: it picks the forecast row for a
// date, takes a live market snapshot, evaluates guidance and gathers every
// warning raised along the way into a single View.
package dashboard

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/seenimoa/mortgagewatch/internal/forecast"
	"github.com/seenimoa/mortgagewatch/internal/guidance"
	"github.com/seenimoa/mortgagewatch/internal/market"
	"github.com/seenimoa/mortgagewatch/pkg/models"
)

// ErrNoForecast is returned when the forecast dataset could not be loaded.
var ErrNoForecast = errors.New("forecast dataset not loaded")

// LaborSource supplies the two labor statistics tables.
type LaborSource interface {
	FetchPlaceLaborStats(ctx context.Context, filter []string) ([]models.PlaceUnemployment, error)
	FetchCountyLaborTimeseries(ctx context.Context, series []models.CountySeries) ([]models.CountyUnemployment, error)
}

// View is the result of one render cycle.
type View struct {
	CycleID       uuid.UUID             `json:"cycle_id"`
	RenderedAt    time.Time             `json:"rendered_at"`
	ForecastRow   *models.ForecastRow   `json:"forecast_row,omitempty"`
	ForecastYield *float64              `json:"forecast_yield"`
	Snapshot      models.MarketSnapshot `json:"snapshot"`
	Guidance      *guidance.Guidance    `json:"guidance,omitempty"`
	Alert         guidance.Message      `json:"alert"`
	Warnings      []market.Warning      `json:"warnings"`
}

// SnapshotView is a live market snapshot on its own.
type SnapshotView struct {
	CycleID  uuid.UUID             `json:"cycle_id"`
	Snapshot models.MarketSnapshot `json:"snapshot"`
	Warnings []market.Warning      `json:"warnings"`
}

// PlacesView is the place unemployment table of one cycle.
type PlacesView struct {
	CycleID  uuid.UUID                  `json:"cycle_id"`
	Places   []models.PlaceUnemployment `json:"places"`
	Warnings []market.Warning           `json:"warnings"`
}

// CountiesView is the county unemployment time series of one cycle.
type CountiesView struct {
	CycleID  uuid.UUID                   `json:"cycle_id"`
	Counties []models.CountyUnemployment `json:"counties"`
	Warnings []market.Warning            `json:"warnings"`
}

// Dashboard composes the forecast, market and labor layers.
type Dashboard struct {
	dataset    *forecast.Dataset
	datasetErr error
	snapshots  *market.Reconciler
	labor      LaborSource
	newID      func() uuid.UUID
	now        func() time.Time
}

// New creates a dashboard. dataset may be nil, in which case datasetErr
// explains why and every render carries a forecast warning.
func New(dataset *forecast.Dataset, datasetErr error, snapshots *market.Reconciler, labor LaborSource) *Dashboard {
	if dataset == nil && datasetErr == nil {
		datasetErr = ErrNoForecast
	}
	return &Dashboard{
		dataset:    dataset,
		datasetErr: datasetErr,
		snapshots:  snapshots,
		labor:      labor,
		newID:      uuid.New,
		now:        time.Now,
	}
}

// Forecast returns the loaded dataset or the reason it is missing.
func (d *Dashboard) Forecast() (*forecast.Dataset, error) {
	if d.dataset == nil {
		return nil, d.datasetErr
	}
	return d.dataset, nil
}

// Render runs one cycle for the forecast row nearest to at. A zero at
// selects the row nearest the current time. The alert always reads the
// latest row. Render never fails; degraded sections are listed
// in View.Warnings.
func (d *Dashboard) Render(ctx context.Context, at time.Time) View {
	view := View{CycleID: d.newID(), RenderedAt: d.now()}
	collector := &market.Collector{}
	rep := market.Tee{collector, market.LogReporter{}}
	logger := log.WithField("cycle_id", view.CycleID)

	forecastYield := math.NaN()
	alertYield := math.NaN()
	switch {
	case d.dataset == nil:
		rep.Report(market.Warning{Section: market.SectionForecast, Message: d.datasetErr.Error()})
	case d.dataset.Len() == 0:
		rep.Report(market.Warning{Section: market.SectionForecast, Message: "forecast dataset has no rows"})
	default:
		if at.IsZero() {
			at = d.now()
		}
		row, _ := d.dataset.Nearest(at)
		view.ForecastRow = &row
		forecastYield = d.dataset.Yield(row)
		if latest, ok := d.dataset.Latest(); ok {
			alertYield = d.dataset.Yield(latest)
		}
		if !d.dataset.HasYield() {
			rep.Report(market.Warning{
				Section: market.SectionForecast,
				Message: "forecast has no " + d.dataset.YieldColumn() + " column",
			})
		}
	}
	if !math.IsNaN(forecastYield) {
		v := forecastYield
		view.ForecastYield = &v
	}
	view.Alert, _ = guidance.ForecastAlert(alertYield)

	view.Snapshot = d.snapshots.WithReporter(rep).GetLiveSnapshot(ctx)

	g, err := guidance.Evaluate(forecastYield, view.Snapshot)
	if err != nil {
		rep.Report(market.Warning{Section: market.SectionGuidance, Message: err.Error()})
	} else {
		view.Guidance = &g
	}

	view.Warnings = collector.Warnings()
	logger.WithFields(log.Fields{
		"guidance": view.Guidance != nil,
		"warnings": len(view.Warnings),
	}).Debug("render cycle completed")
	return view
}

// Snapshot takes a live market snapshot without touching the forecast.
func (d *Dashboard) Snapshot(ctx context.Context) SnapshotView {
	view := SnapshotView{CycleID: d.newID()}
	collector := &market.Collector{}
	view.Snapshot = d.snapshots.WithReporter(market.Tee{collector, market.LogReporter{}}).GetLiveSnapshot(ctx)
	view.Warnings = collector.Warnings()
	return view
}

// PlaceLabor fetches the place unemployment table. A nil filter uses the
// configured places.
func (d *Dashboard) PlaceLabor(ctx context.Context, filter []string) PlacesView {
	view := PlacesView{CycleID: d.newID()}
	places, err := d.labor.FetchPlaceLaborStats(ctx, filter)
	if err != nil {
		view.Warnings = report(market.SectionPlaceLabor, err)
		return view
	}
	view.Places = places
	return view
}

// CountyLabor fetches the county unemployment time series. A nil series
// list uses the configured series.
func (d *Dashboard) CountyLabor(ctx context.Context, series []models.CountySeries) CountiesView {
	view := CountiesView{CycleID: d.newID()}
	counties, err := d.labor.FetchCountyLaborTimeseries(ctx, series)
	if err != nil {
		view.Warnings = report(market.SectionCountyLabor, err)
		return view
	}
	view.Counties = counties
	return view
}

func report(section string, err error) []market.Warning {
	w := market.NewWarning(section, err)
	market.LogReporter{}.Report(w)
	return []market.Warning{w}
}
