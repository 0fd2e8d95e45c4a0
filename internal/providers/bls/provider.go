// Package bls implements the Bureau of Labor Statistics Public Data API
// provider. It reads monthly county unemployment rates from the Local Area
// Unemployment Statistics (LAUS) series in a single batched request.
//
// A registration key is optional; without one the API allows fewer series
// and a shorter year span per request.
// Docs: https://www.bls.gov/developers/api_signature_v2.htm
package bls

import (
	"time"

	"github.com/seenimoa/mortgagewatch/internal/infra"
	"github.com/seenimoa/mortgagewatch/internal/provider"
	"github.com/seenimoa/mortgagewatch/pkg/models"
)

const (
	providerName = "bls"
	credAPIKey   = "api_key"

	// DefaultURL is the v2 time-series endpoint.
	DefaultURL = "https://api.bls.gov/publicAPI/v2/timeseries/data/"

	statusSucceeded = "REQUEST_SUCCEEDED"
)

// DefaultSeries are the LAUS unemployment-rate series for the five
// New York City counties.
func DefaultSeries() []models.CountySeries {
	return []models.CountySeries{
		{County: "Queens", SeriesID: "LAUCN360810000000003"},
		{County: "Kings", SeriesID: "LAUCN360470000000003"},
		{County: "New York", SeriesID: "LAUCN360610000000003"},
		{County: "Bronx", SeriesID: "LAUCN360050000000003"},
		{County: "Richmond", SeriesID: "LAUCN360850000000003"},
	}
}

// Options configures the provider. Zero values select the defaults: the
// NYC series over the previous and current calendar year.
type Options struct {
	URL       string
	StartYear int
	EndYear   int
	Series    []models.CountySeries
	Client    *infra.Client
	Now       func() time.Time
}

// Provider implements provider.Provider for the BLS API.
type Provider struct {
	provider.BaseProvider
	opts Options
}

// New creates the provider and registers its fetcher.
func New(opts Options) *Provider {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if len(opts.Series) == 0 {
		opts.Series = DefaultSeries()
	}
	if opts.Client == nil {
		opts.Client = infra.NewClient(0, "")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Bureau of Labor Statistics - Local Area Unemployment Statistics",
			"https://www.bls.gov/lau/",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "BLS registration key from data.bls.gov/registrationEngine",
					Required:    false,
					EnvVar:      "BLS_API_KEY",
				},
			},
		),
		opts: opts,
	}
	p.RegisterFetcher(newCountyUnemploymentFetcher(p))
	return p
}

// yearRange resolves the request window. Zero years select
// [current-1, current].
func (p *Provider) yearRange(start, end int) (int, int) {
	if end == 0 {
		end = p.opts.EndYear
	}
	if end == 0 {
		end = p.opts.Now().Year()
	}
	if start == 0 {
		start = p.opts.StartYear
	}
	if start == 0 || start > end {
		start = end - 1
	}
	return start, end
}
