// Package models defines the plain data values exchanged between the
// acquisition core and the rendering hosts.
package models

import "time"

// --- Live quotes ---

// RateQuote is a point-in-time 30-year fixed mortgage rate, in percent.
type RateQuote struct {
	Value  float64   `json:"value"`  // e.g. 6.75
	Source string    `json:"source"` // provider name, e.g. "mnd", "fred"
	AsOf   time.Time `json:"as_of"`
}

// YieldQuote is a point-in-time 10-year benchmark yield, in percent.
type YieldQuote struct {
	Value  float64   `json:"value"`
	Symbol string    `json:"symbol,omitempty"` // e.g. "^TNX", "DGS10"
	Source string    `json:"source"`
	AsOf   time.Time `json:"as_of"`
}

// MarketSnapshot is the possibly-partial set of live quotes describing
// current market conditions. A nil field means that source failed.
type MarketSnapshot struct {
	Yield   *YieldQuote `json:"yield"`
	Rate    *RateQuote  `json:"rate"`
	TakenAt time.Time   `json:"taken_at"`
}

// Complete reports whether both quotes are present.
func (s MarketSnapshot) Complete() bool {
	return s.Yield != nil && s.Rate != nil
}

// Missing returns the names of the absent fields ("yield", "rate").
func (s MarketSnapshot) Missing() []string {
	var out []string
	if s.Yield == nil {
		out = append(out, "yield")
	}
	if s.Rate == nil {
		out = append(out, "rate")
	}
	return out
}
