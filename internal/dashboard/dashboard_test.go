package dashboard

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/mortgagewatch/internal/config"
	"github.com/seenimoa/mortgagewatch/internal/forecast"
	"github.com/seenimoa/mortgagewatch/internal/guidance"
	"github.com/seenimoa/mortgagewatch/internal/market"
	"github.com/seenimoa/mortgagewatch/internal/provider"
	"github.com/seenimoa/mortgagewatch/pkg/models"
)

const csvData = `Date,30Y_Mortgage_Rate,10Y_Treasury_Yield
2025-01-01,6.90,4.50
2025-02-01,6.85,4.40
2025-03-01,6.70,3.40
`

type stubQuotes struct {
	rate     float64
	yield    float64
	rateErr  error
	yieldErr error
}

func (s stubQuotes) FetchMortgageRate(ctx context.Context) (models.RateQuote, error) {
	if s.rateErr != nil {
		return models.RateQuote{}, s.rateErr
	}
	return models.RateQuote{Value: s.rate, Source: "stub"}, nil
}

func (s stubQuotes) FetchTreasuryYield(ctx context.Context) (models.YieldQuote, error) {
	if s.yieldErr != nil {
		return models.YieldQuote{}, s.yieldErr
	}
	return models.YieldQuote{Value: s.yield, Source: "stub"}, nil
}

type stubLabor struct {
	places    []models.PlaceUnemployment
	counties  []models.CountyUnemployment
	err       error
	gotSeries []models.CountySeries
}

func (s *stubLabor) FetchPlaceLaborStats(ctx context.Context, filter []string) ([]models.PlaceUnemployment, error) {
	return s.places, s.err
}

func (s *stubLabor) FetchCountyLaborTimeseries(ctx context.Context, series []models.CountySeries) ([]models.CountyUnemployment, error) {
	s.gotSeries = series
	return s.counties, s.err
}

func newDashboard(t *testing.T, data string, quotes stubQuotes) *Dashboard {
	t.Helper()
	var ds *forecast.Dataset
	if data != "" {
		var err error
		ds, err = forecast.Parse(strings.NewReader(data), "10Y_Treasury_Yield")
		require.NoError(t, err)
	}
	rec := market.NewReconciler(quotes, quotes, market.Tee{})
	return New(ds, nil, rec, &stubLabor{})
}

func TestRenderFullCycle(t *testing.T) {
	d := newDashboard(t, csvData, stubQuotes{rate: 6.5, yield: 3.8})

	view := d.Render(context.Background(), time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC))

	assert.NotEqual(t, uuid.Nil, view.CycleID)
	require.NotNil(t, view.ForecastRow)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), view.ForecastRow.Date)
	require.NotNil(t, view.ForecastYield)
	assert.Equal(t, 4.40, *view.ForecastYield)

	require.NotNil(t, view.Guidance)
	assert.Equal(t, guidance.BandStable, view.Guidance.YieldBand)
	assert.Equal(t, 2.70, view.Guidance.Spread)
	assert.Equal(t, guidance.SpreadElevated, view.Guidance.SpreadBand)

	// Alert follows the latest row, not the selected one.
	assert.Equal(t, guidance.SeveritySuccess, view.Alert.Severity)
	assert.Empty(t, view.Warnings)
}

func TestRenderZeroDateUsesRowNearestNow(t *testing.T) {
	now := time.Now().UTC()
	data := "Date,30Y_Mortgage_Rate,10Y_Treasury_Yield\n" +
		now.AddDate(0, 0, -1).Format("2006-01-02") + ",6.10,3.90\n" +
		now.AddDate(3, 0, 0).Format("2006-01-02") + ",7.20,5.60\n"
	d := newDashboard(t, data, stubQuotes{rate: 6.0, yield: 4.5})

	view := d.Render(context.Background(), time.Time{})
	require.NotNil(t, view.ForecastYield)
	assert.Equal(t, 3.90, *view.ForecastYield)
	require.NotNil(t, view.Guidance)
	assert.Equal(t, guidance.BandFavorable, view.Guidance.YieldBand)

	// Alert still reads the last row.
	assert.Equal(t, guidance.SeverityWarning, view.Alert.Severity)
}

func TestRenderZeroDateUsesInjectedClock(t *testing.T) {
	d := newDashboard(t, csvData, stubQuotes{rate: 6.0, yield: 4.5})
	d.now = func() time.Time { return time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC) }

	view := d.Render(context.Background(), time.Time{})
	require.NotNil(t, view.ForecastRow)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), view.ForecastRow.Date)
	require.NotNil(t, view.Guidance)
	assert.Equal(t, guidance.BandStable, view.Guidance.YieldBand)
	assert.Equal(t, guidance.SeveritySuccess, view.Alert.Severity)
}

func TestRenderPartialSnapshotStillReturnsView(t *testing.T) {
	rateErr := provider.NewFetchError("mnd", provider.ErrNotFound, errors.New("selector matched nothing"))
	d := newDashboard(t, csvData, stubQuotes{yield: 4.1, rateErr: rateErr})

	view := d.Render(context.Background(), time.Time{})

	require.NotNil(t, view.Snapshot.Yield)
	assert.Nil(t, view.Snapshot.Rate)
	assert.Nil(t, view.Guidance)
	require.Len(t, view.Warnings, 2)
	assert.Equal(t, market.SectionRate, view.Warnings[0].Section)
	assert.Equal(t, "mnd", view.Warnings[0].Source)
	assert.Equal(t, market.SectionGuidance, view.Warnings[1].Section)
}

func TestRenderWithoutDataset(t *testing.T) {
	d := newDashboard(t, "", stubQuotes{rate: 6.5, yield: 4.0})

	view := d.Render(context.Background(), time.Time{})
	assert.Nil(t, view.ForecastRow)
	assert.Nil(t, view.ForecastYield)
	assert.Nil(t, view.Guidance)
	assert.NotNil(t, view.Snapshot.Rate)
	assert.Contains(t, view.Alert.Headline, "once")

	sections := make([]string, 0, len(view.Warnings))
	for _, w := range view.Warnings {
		sections = append(sections, w.Section)
	}
	assert.Equal(t, []string{market.SectionForecast, market.SectionGuidance}, sections)

	_, err := d.Forecast()
	assert.ErrorIs(t, err, ErrNoForecast)
}

func TestRenderWithoutYieldColumn(t *testing.T) {
	d := newDashboard(t, "Date,30Y_Mortgage_Rate\n2025-01-01,6.9\n", stubQuotes{rate: 6.5, yield: 4.0})

	view := d.Render(context.Background(), time.Time{})
	require.NotNil(t, view.ForecastRow)
	assert.Nil(t, view.ForecastYield)
	assert.Nil(t, view.Guidance)
	require.NotEmpty(t, view.Warnings)
	assert.Equal(t, market.SectionForecast, view.Warnings[0].Section)
}

func TestRenderCycleIDsDiffer(t *testing.T) {
	d := newDashboard(t, csvData, stubQuotes{rate: 6.5, yield: 4.0})
	a := d.Render(context.Background(), time.Time{})
	b := d.Render(context.Background(), time.Time{})
	assert.NotEqual(t, a.CycleID, b.CycleID)
}

func TestLaborViews(t *testing.T) {
	labor := &stubLabor{
		places: []models.PlaceUnemployment{{Name: "Queens County, New York", Rate: 3.41}},
		counties: []models.CountyUnemployment{
			{County: "Queens", SeriesID: "LAUCN360810000000003", Year: 2025, Month: time.January, Rate: 4.2},
		},
	}
	d := New(nil, nil, market.NewReconciler(stubQuotes{}, stubQuotes{}, market.Tee{}), labor)

	places := d.PlaceLabor(context.Background(), []string{"Queens"})
	assert.Len(t, places.Places, 1)
	assert.Empty(t, places.Warnings)

	series := []models.CountySeries{{County: "Queens", SeriesID: "LAUCN360810000000003"}}
	counties := d.CountyLabor(context.Background(), series)
	assert.Len(t, counties.Counties, 1)
	assert.Equal(t, series, labor.gotSeries)
}

func TestLaborFailureBecomesWarning(t *testing.T) {
	labor := &stubLabor{err: provider.NewFetchError("bls", provider.ErrSchemaMismatch, errors.New("no Results.series"))}
	d := New(nil, nil, market.NewReconciler(stubQuotes{}, stubQuotes{}, market.Tee{}), labor)

	view := d.CountyLabor(context.Background(), nil)
	assert.Nil(t, view.Counties)
	require.Len(t, view.Warnings, 1)
	assert.Equal(t, market.SectionCountyLabor, view.Warnings[0].Section)
	assert.Equal(t, "bls", view.Warnings[0].Source)
	assert.Equal(t, "schema_mismatch", view.Warnings[0].Kind)

	places := d.PlaceLabor(context.Background(), nil)
	require.Len(t, places.Warnings, 1)
	assert.Equal(t, market.SectionPlaceLabor, places.Warnings[0].Section)
}

func TestNewFromConfigMissingForecastIsNotFatal(t *testing.T) {
	for _, k := range []string{"MORTGAGEWATCH_FRED_API_KEY", "FRED_API_KEY"} {
		t.Setenv(k, "")
	}
	cfg, err := config.LoadFromFile(writeConfig(t, "forecast:\n  path: "+filepath.Join(t.TempDir(), "missing.csv")+"\n"))
	require.NoError(t, err)

	d, deps, err := NewFromConfig(cfg)
	require.NoError(t, err)
	require.NotNil(t, deps.Registry)
	require.NotNil(t, deps.Cache)

	_, err = d.Forecast()
	assert.Error(t, err)
}

func TestSnapshotView(t *testing.T) {
	yieldErr := provider.NewFetchError("yfinance", provider.ErrNetwork, context.DeadlineExceeded)
	d := newDashboard(t, csvData, stubQuotes{rate: 6.5, yieldErr: yieldErr})

	view := d.Snapshot(context.Background())
	assert.NotNil(t, view.Snapshot.Rate)
	assert.Nil(t, view.Snapshot.Yield)
	require.Len(t, view.Warnings, 1)
	assert.Equal(t, market.SectionYield, view.Warnings[0].Section)
	assert.Equal(t, "network", view.Warnings[0].Kind)
}
