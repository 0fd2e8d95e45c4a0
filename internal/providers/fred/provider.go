// Package fred implements the FRED (Federal Reserve Economic Data) provider.
// It serves the weekly 30-year fixed mortgage average (MORTGAGE30US) and the
// daily 10-year constant-maturity Treasury yield (DGS10).
//
// Requires a free API key from https://fred.stlouisfed.org/docs/api/api_key.html
// Docs: https://fred.stlouisfed.org/docs/api/fred/
package fred

import (
	"context"
	"net/url"

	"github.com/seenimoa/mortgagewatch/internal/infra"
	"github.com/seenimoa/mortgagewatch/internal/provider"
)

const (
	providerName = "fred"
	credAPIKey   = "api_key"
	paramAPIKey  = "_fred_api_key"

	// DefaultBaseURL is the FRED API root.
	DefaultBaseURL = "https://api.stlouisfed.org/fred"
	// DefaultRateSeries is the Freddie Mac 30-year fixed rate average.
	DefaultRateSeries = "MORTGAGE30US"
	// DefaultYieldSeries is the 10-year Treasury constant maturity rate.
	DefaultYieldSeries = "DGS10"
)

// Options configures the provider. Zero values select the defaults.
type Options struct {
	BaseURL     string
	RateSeries  string
	YieldSeries string
	Client      *infra.Client
}

// Provider implements provider.Provider for FRED.
type Provider struct {
	provider.BaseProvider
	apiKey string
}

// New creates a new FRED provider and registers its fetchers.
func New(opts Options) *Provider {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.RateSeries == "" {
		opts.RateSeries = DefaultRateSeries
	}
	if opts.YieldSeries == "" {
		opts.YieldSeries = DefaultYieldSeries
	}
	if opts.Client == nil {
		opts.Client = infra.NewClient(0, "")
	}

	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Federal Reserve Economic Data - mortgage rate and Treasury yield series",
			"https://fred.stlouisfed.org",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "FRED API key from fred.stlouisfed.org",
					Required:    true,
					EnvVar:      "FRED_API_KEY",
				},
			},
		),
	}

	src := &seriesSource{baseURL: opts.BaseURL, client: opts.Client}
	p.RegisterFetcher(newMortgageRateFetcher(src, opts.RateSeries))
	p.RegisterFetcher(newTreasuryYieldFetcher(src, opts.YieldSeries))
	return p
}

// Init stores the API key.
func (p *Provider) Init(credentials map[string]string) error {
	if err := p.BaseProvider.Init(credentials); err != nil {
		return err
	}
	p.apiKey = credentials[credAPIKey]
	return nil
}

// Fetcher overrides BaseProvider.Fetcher to return a wrapper that
// auto-injects the FRED API key into query params before delegating.
func (p *Provider) Fetcher(model provider.ModelType) provider.Fetcher {
	inner := p.BaseProvider.Fetcher(model)
	if inner == nil {
		return nil
	}
	return &apiKeyInjector{inner: inner, apiKey: &p.apiKey}
}

// apiKeyInjector wraps a Fetcher and injects the FRED API key.
type apiKeyInjector struct {
	inner  provider.Fetcher
	apiKey *string
}

func (w *apiKeyInjector) ModelType() provider.ModelType { return w.inner.ModelType() }
func (w *apiKeyInjector) Description() string           { return w.inner.Description() }
func (w *apiKeyInjector) RequiredParams() []string      { return w.inner.RequiredParams() }
func (w *apiKeyInjector) OptionalParams() []string      { return w.inner.OptionalParams() }

func (w *apiKeyInjector) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	enriched := make(provider.QueryParams, len(params)+1)
	for k, v := range params {
		enriched[k] = v
	}
	enriched[paramAPIKey] = *w.apiKey
	return w.inner.Fetch(ctx, enriched)
}

// --- Shared helpers ---

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

// observationsURL builds the newest-first observations query for a series.
func observationsURL(baseURL, seriesID, apiKey string) string {
	q := url.Values{}
	q.Set("series_id", seriesID)
	q.Set("sort_order", "desc")
	q.Set("limit", "5")
	q.Set("api_key", apiKey)
	q.Set("file_type", "json")
	return baseURL + "/series/observations?" + q.Encode()
}
