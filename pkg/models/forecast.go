package models

import (
	"encoding/json"
	"math"
	"time"
)

// ForecastRow is one dated record of the pre-computed forecast table.
// Cells that were empty or non-numeric hold NaN.
type ForecastRow struct {
	Date   time.Time          `json:"date"`
	Values map[string]float64 `json:"values"`
}

// Value returns the named indicator and whether it holds a number.
func (r ForecastRow) Value(indicator string) (float64, bool) {
	v, ok := r.Values[indicator]
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// MarshalJSON encodes NaN cells as null.
func (r ForecastRow) MarshalJSON() ([]byte, error) {
	values := make(map[string]*float64, len(r.Values))
	for k, v := range r.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			values[k] = nil
			continue
		}
		v := v
		values[k] = &v
	}
	return json.Marshal(struct {
		Date   string              `json:"date"`
		Values map[string]*float64 `json:"values"`
	}{
		Date:   r.Date.Format("2006-01-02"),
		Values: values,
	})
}

// SeriesPoint is one (date, value) pair of a single indicator.
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}
