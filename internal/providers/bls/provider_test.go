package bls

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/seenimoa/mortgagewatch/internal/infra"
	"github.com/seenimoa/mortgagewatch/internal/provider"
	"github.com/seenimoa/mortgagewatch/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }

func newTestProvider(t *testing.T, opts Options, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts.URL = srv.URL
	opts.Client = infra.NewClient(time.Second, "")
	if opts.Now == nil {
		opts.Now = fixedNow
	}
	return New(opts)
}

func fetchCounties(t *testing.T, p *Provider, params provider.QueryParams) ([]models.CountyUnemployment, error) {
	t.Helper()
	res, err := p.Fetcher(provider.ModelCountyUnemployment).Fetch(context.Background(), params)
	if err != nil {
		return nil, err
	}
	return res.Data.([]models.CountyUnemployment), nil
}

func TestRequestCarriesAllSeriesInOrder(t *testing.T) {
	var got blsRequest
	p := newTestProvider(t, Options{}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"status":"REQUEST_SUCCEEDED","Results":{"series":[]}}`))
	})
	require.NoError(t, p.Init(map[string]string{credAPIKey: "bls-key"}))

	// An empty series list for five requested ids cannot be labeled.
	_, err := fetchCounties(t, p, nil)
	assert.ErrorIs(t, err, provider.ErrSchemaMismatch)

	assert.Equal(t, []string{
		"LAUCN360810000000003",
		"LAUCN360470000000003",
		"LAUCN360610000000003",
		"LAUCN360050000000003",
		"LAUCN360850000000003",
	}, got.SeriesID)
	assert.Equal(t, "2024", got.StartYear)
	assert.Equal(t, "2025", got.EndYear)
	assert.Equal(t, "bls-key", got.RegistrationKey)
}

func TestPositionalMatchAndM13Discarded(t *testing.T) {
	body := `{"status":"REQUEST_SUCCEEDED","message":[],"Results":{"series":[
		{"seriesID":"S1","data":[
			{"year":"2024","period":"M13","periodName":"Annual","value":"5.1"},
			{"year":"2024","period":"M12","periodName":"December","value":"4.6"},
			{"year":"2024","period":"M11","periodName":"November","value":"4.8"}
		]},
		{"seriesID":"S2","data":[
			{"year":"2024","period":"M12","periodName":"December","value":"6.2"},
			{"year":"2024","period":"M13","periodName":"Annual","value":"6.0"}
		]}
	]}}`
	p := newTestProvider(t, Options{}, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})

	series := []models.CountySeries{
		{County: "Bronx", SeriesID: "S1"},
		{County: "Queens", SeriesID: "S2"},
	}
	rows, err := fetchCounties(t, p, provider.QueryParams{
		provider.ParamSeries:    provider.EncodeSeries(series),
		provider.ParamStartYear: "2023",
		provider.ParamEndYear:   "2024",
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, models.CountyUnemployment{County: "Bronx", SeriesID: "S1", Year: 2024, Month: time.December, Rate: 4.6}, rows[0])
	assert.Equal(t, models.CountyUnemployment{County: "Bronx", SeriesID: "S1", Year: 2024, Month: time.November, Rate: 4.8}, rows[1])
	assert.Equal(t, models.CountyUnemployment{County: "Queens", SeriesID: "S2", Year: 2024, Month: time.December, Rate: 6.2}, rows[2])
	for _, r := range rows {
		assert.NotEqual(t, 5.1, r.Rate)
		assert.NotEqual(t, 6.0, r.Rate)
	}
}

func TestUnpublishedValueSkipped(t *testing.T) {
	p := newTestProvider(t, Options{Series: []models.CountySeries{{County: "Kings", SeriesID: "S1"}}},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"REQUEST_SUCCEEDED","Results":{"series":[{"seriesID":"S1","data":[
				{"year":"2025","period":"M01","value":"-"},
				{"year":"2024","period":"M12","value":"5.0"}
			]}]}}`))
		})

	rows, err := fetchCounties(t, p, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Kings", rows[0].County)
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), rows[0].Period())
}

func TestMissingSeriesIsSchemaMismatch(t *testing.T) {
	p := newTestProvider(t, Options{}, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"REQUEST_SUCCEEDED","Results":{}}`))
	})

	_, err := fetchCounties(t, p, nil)
	assert.ErrorIs(t, err, provider.ErrSchemaMismatch)
	assert.Equal(t, "bls", provider.SourceOf(err))
}

func TestSeriesCountMismatchIsSchemaMismatch(t *testing.T) {
	p := newTestProvider(t, Options{}, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"REQUEST_SUCCEEDED","Results":{"series":[
			{"seriesID":"S2","data":[{"year":"2024","period":"M01","value":"5.0"}]}
		]}}`))
	})
	series := []models.CountySeries{
		{County: "Queens", SeriesID: "S1"},
		{County: "Kings", SeriesID: "S2"},
	}

	rows, err := fetchCounties(t, p, provider.QueryParams{provider.ParamSeries: provider.EncodeSeries(series)})
	assert.ErrorIs(t, err, provider.ErrSchemaMismatch)
	assert.Nil(t, rows)
}

func TestSeriesIDMismatchIsSchemaMismatch(t *testing.T) {
	p := newTestProvider(t, Options{}, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"REQUEST_SUCCEEDED","Results":{"series":[
			{"seriesID":"S2","data":[{"year":"2024","period":"M01","value":"6.0"}]},
			{"seriesID":"S1","data":[{"year":"2024","period":"M01","value":"5.0"}]}
		]}}`))
	})
	series := []models.CountySeries{
		{County: "Queens", SeriesID: "S1"},
		{County: "Kings", SeriesID: "S2"},
	}

	_, err := fetchCounties(t, p, provider.QueryParams{provider.ParamSeries: provider.EncodeSeries(series)})
	assert.ErrorIs(t, err, provider.ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "want S1")
}

func TestFailedStatusIsNoData(t *testing.T) {
	p := newTestProvider(t, Options{}, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"REQUEST_NOT_PROCESSED","message":["daily threshold reached"],"Results":{}}`))
	})

	_, err := fetchCounties(t, p, nil)
	assert.ErrorIs(t, err, provider.ErrNoData)
	assert.Contains(t, err.Error(), "daily threshold")
}

func TestBadYearParam(t *testing.T) {
	p := newTestProvider(t, Options{}, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := fetchCounties(t, p, provider.QueryParams{provider.ParamStartYear: "last year"})
	assert.ErrorIs(t, err, provider.ErrParse)
}

func TestYearRange(t *testing.T) {
	p := New(Options{Now: fixedNow})
	s, e := p.yearRange(0, 0)
	assert.Equal(t, [2]int{2024, 2025}, [2]int{s, e})

	s, e = p.yearRange(2020, 2022)
	assert.Equal(t, [2]int{2020, 2022}, [2]int{s, e})

	s, e = p.yearRange(2023, 2021)
	assert.Equal(t, [2]int{2020, 2021}, [2]int{s, e})

	p = New(Options{Now: fixedNow, StartYear: 2019, EndYear: 2021})
	s, e = p.yearRange(0, 0)
	assert.Equal(t, [2]int{2019, 2021}, [2]int{s, e})
}

func TestMonthOf(t *testing.T) {
	m, ok := monthOf("M01")
	assert.True(t, ok)
	assert.Equal(t, time.January, m)

	for _, p := range []string{"M13", "M00", "Q01", "A01", "", "M1"} {
		_, ok := monthOf(p)
		assert.False(t, ok, p)
	}
}
