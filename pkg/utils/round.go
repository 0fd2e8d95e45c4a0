package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds x half away from zero to two decimal places using decimal
// arithmetic, so 2.675 becomes 2.68 rather than the binary-float 2.67.
// NaN and ±Inf are returned unchanged.
func Round2(x float64) float64 {
	return RoundTo(x, 2)
}

// RoundTo rounds x to the given number of decimal places.
func RoundTo(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f, _ := decimal.NewFromFloat(x).Round(places).Float64()
	return f
}

// Percent returns round(part/whole*100, 2), or NaN when whole is zero,
// negative or not finite.
func Percent(part, whole float64) float64 {
	if whole <= 0 || math.IsNaN(whole) || math.IsInf(whole, 0) || math.IsNaN(part) || math.IsInf(part, 0) {
		return math.NaN()
	}
	return Round2(decimal.NewFromFloat(part).Div(decimal.NewFromFloat(whole)).Mul(decimal.NewFromInt(100)).InexactFloat64())
}

// Spread returns round(a-b, 2) computed in decimal.
func Spread(a, b float64) float64 {
	if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return math.NaN()
	}
	f, _ := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Round(2).Float64()
	return f
}
