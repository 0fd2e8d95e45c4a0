package models

import (
	"encoding/json"
	"math"
	"time"
)

// --- Labor statistics ---

// PlaceUnemployment is one geography row from the census-style API.
// Rate is NaN when population is zero or missing.
type PlaceUnemployment struct {
	Name       string  `json:"name"` // e.g. "Queens County, New York"
	Population float64 `json:"population"`
	Unemployed float64 `json:"unemployed"`
	Rate       float64 `json:"rate"` // percent, 2 decimals
	Year       int     `json:"year"` // survey vintage
}

// HasRate reports whether the unemployment rate could be derived.
func (p PlaceUnemployment) HasRate() bool {
	return !math.IsNaN(p.Rate) && !math.IsInf(p.Rate, 0)
}

// MarshalJSON encodes an undefined rate as null.
func (p PlaceUnemployment) MarshalJSON() ([]byte, error) {
	type alias PlaceUnemployment
	out := struct {
		alias
		Rate *float64 `json:"rate"`
	}{alias: alias(p)}
	if p.HasRate() {
		r := p.Rate
		out.Rate = &r
	}
	return json.Marshal(out)
}

// CountySeries binds a county label to a labor-statistics series ID.
// Callers pass these as an ordered slice; responses are matched by position.
type CountySeries struct {
	County   string `json:"county"    mapstructure:"county"`
	SeriesID string `json:"series_id" mapstructure:"series_id"`
}

// CountyUnemployment is one monthly data point from the labor time-series API.
type CountyUnemployment struct {
	County   string     `json:"county"`
	SeriesID string     `json:"series_id"`
	Year     int        `json:"year"`
	Month    time.Month `json:"month"`
	Rate     float64    `json:"rate"` // percent
}

// Period returns the first day of the record's month.
func (c CountyUnemployment) Period() time.Time {
	return time.Date(c.Year, c.Month, 1, 0, 0, 0, 0, time.UTC)
}
