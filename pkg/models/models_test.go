package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── MarketSnapshot ──

func TestMarketSnapshotComplete(t *testing.T) {
	full := MarketSnapshot{Yield: &YieldQuote{Value: 4.1}, Rate: &RateQuote{Value: 6.8}}
	assert.True(t, full.Complete())
	assert.Empty(t, full.Missing())

	partial := MarketSnapshot{Rate: &RateQuote{Value: 6.8}}
	assert.False(t, partial.Complete())
	assert.Equal(t, []string{"yield"}, partial.Missing())

	empty := MarketSnapshot{}
	assert.Equal(t, []string{"yield", "rate"}, empty.Missing())
}

func TestMarketSnapshotJSONAbsentFieldsAreNull(t *testing.T) {
	data, err := json.Marshal(MarketSnapshot{Yield: &YieldQuote{Value: 4.25, Source: "yfinance"}})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded["rate"])
	assert.NotNil(t, decoded["yield"])
}

// ── PlaceUnemployment ──

func TestPlaceUnemploymentUndefinedRateEncodesNull(t *testing.T) {
	p := PlaceUnemployment{Name: "Nowhere", Population: 0, Unemployed: 10, Rate: math.NaN(), Year: 2022}
	assert.False(t, p.HasRate())

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rate":null`)
	assert.Contains(t, string(data), `"name":"Nowhere"`)
}

func TestPlaceUnemploymentDefinedRate(t *testing.T) {
	p := PlaceUnemployment{Name: "Queens County, New York", Population: 1000, Unemployed: 52, Rate: 5.2}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rate":5.2`)
}

// ── CountyUnemployment ──

func TestCountyUnemploymentPeriod(t *testing.T) {
	c := CountyUnemployment{County: "Kings", Year: 2024, Month: time.March, Rate: 5.1}
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), c.Period())
}

// ── ForecastRow ──

func TestForecastRowValue(t *testing.T) {
	row := ForecastRow{
		Date:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Values: map[string]float64{"10Y_Treasury_Yield": 4.4, "CPI": math.NaN()},
	}

	v, ok := row.Value("10Y_Treasury_Yield")
	assert.True(t, ok)
	assert.InDelta(t, 4.4, v, 1e-9)

	_, ok = row.Value("CPI")
	assert.False(t, ok)

	_, ok = row.Value("Missing")
	assert.False(t, ok)
}

func TestForecastRowJSON(t *testing.T) {
	row := ForecastRow{
		Date:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Values: map[string]float64{"A": 1.5, "B": math.NaN()},
	}
	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2025-06-30","values":{"A":1.5,"B":null}}`, string(data))
}
