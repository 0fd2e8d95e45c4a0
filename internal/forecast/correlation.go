package forecast

import (
	"encoding/json"
	"math"
)

// Matrix is a symmetric correlation matrix over indicators.
// Undefined coefficients hold NaN.
type Matrix struct {
	Indicators []string
	Values     [][]float64
}

// At returns the coefficient for a pair of indicators.
func (m Matrix) At(a, b string) (float64, bool) {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return math.NaN(), false
	}
	return m.Values[i][j], true
}

func (m Matrix) index(name string) int {
	for i, n := range m.Indicators {
		if n == name {
			return i
		}
	}
	return -1
}

// MarshalJSON encodes NaN coefficients as null.
func (m Matrix) MarshalJSON() ([]byte, error) {
	values := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		values[i] = make([]*float64, len(row))
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			v := v
			values[i][j] = &v
		}
	}
	return json.Marshal(struct {
		Indicators []string     `json:"indicators"`
		Values     [][]*float64 `json:"values"`
	}{m.Indicators, values})
}

// Correlation returns the Pearson matrix across all indicators. Each pair
// uses only the rows where both cells are present.
func (d *Dataset) Correlation() Matrix {
	n := len(d.columns)
	cols := make([][]float64, n)
	for i, c := range d.columns {
		cols[i] = make([]float64, len(d.rows))
		for k, r := range d.rows {
			v, ok := r.Values[c]
			if !ok {
				v = math.NaN()
			}
			cols[i][k] = v
		}
	}

	m := Matrix{Indicators: d.Indicators(), Values: make([][]float64, n)}
	for i := range m.Values {
		m.Values[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			r := pearson(cols[i], cols[j])
			if i == j && !math.IsNaN(r) {
				r = 1
			}
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

// pearson computes the correlation over pairwise-complete observations.
// It returns NaN with fewer than two pairs or zero variance.
func pearson(a, b []float64) float64 {
	var n, sumA, sumB, sumAB, sumA2, sumB2 float64
	for i := range a {
		if i >= len(b) || math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		n++
		sumA += a[i]
		sumB += b[i]
		sumAB += a[i] * b[i]
		sumA2 += a[i] * a[i]
		sumB2 += b[i] * b[i]
	}
	if n < 2 {
		return math.NaN()
	}

	num := n*sumAB - sumA*sumB
	den := math.Sqrt((n*sumA2 - sumA*sumA) * (n*sumB2 - sumB*sumB))
	if den == 0 || math.IsNaN(den) {
		return math.NaN()
	}
	return num / den
}
