// Package utils provides formatting, rounding and date helpers shared by
// the acquisition core and the rendering hosts.
package utils

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatPercent formats a percentage with two decimals, e.g. 6.75 → "6.75%".
// NaN renders as "n/a".
func FormatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", v)
}

// FormatCount formats a whole number with thousands separators,
// e.g. 2405464 → "2,405,464".
func FormatCount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	negative := v < 0
	s := strconv.FormatInt(int64(math.Abs(math.Round(v))), 10)

	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if negative {
		return "-" + b.String()
	}
	return b.String()
}

// ParsePercent parses a human-formatted percentage such as " 6.75% " or
// "6.750 %" into 6.75. Thousands separators are ignored.
func ParsePercent(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	return ParseNumber(s)
}

// ErrNotFinite is returned for NaN and infinite values, which strconv
// accepts but no quote can hold.
var ErrNotFinite = errors.New("value is not a finite number")

// ParseNumber parses a finite float. "NaN", "Inf" and "Infinity" are
// rejected.
func ParseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("parse %q: %w", s, ErrNotFinite)
	}
	return v, nil
}

// MaskKey masks a credential for display, keeping the first and last three
// characters.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
