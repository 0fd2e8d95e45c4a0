// Package yfinance implements the Yahoo Finance data provider.
// It wraps the public v8 chart API to read the latest daily close of the
// 10-year Treasury benchmark (^TNX). No API key is required.
package yfinance

import (
	"fmt"
	"net/url"

	"github.com/seenimoa/mortgagewatch/internal/infra"
	"github.com/seenimoa/mortgagewatch/internal/provider"
)

const (
	providerName = "yfinance"

	// DefaultBaseURL is the Yahoo Finance query host.
	DefaultBaseURL = "https://query1.finance.yahoo.com"
	// DefaultSymbol is the CBOE 10-year Treasury yield index.
	DefaultSymbol = "^TNX"
)

// Options configures the provider. Zero values select the defaults.
type Options struct {
	BaseURL string
	Symbol  string
	// Divisor converts the quoted close into percent. ^TNX is quoted in
	// percent on the chart API, so the default is 1.
	Divisor float64
	Client  *infra.Client
}

// Provider implements provider.Provider for Yahoo Finance.
type Provider struct {
	provider.BaseProvider
}

// New creates a new YFinance provider and registers its fetcher.
func New(opts Options) *Provider {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Symbol == "" {
		opts.Symbol = DefaultSymbol
	}
	if opts.Divisor <= 0 {
		opts.Divisor = 1
	}
	if opts.Client == nil {
		opts.Client = infra.NewClient(0, "")
	}

	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Yahoo Finance - free market data",
			"https://finance.yahoo.com",
			nil, // no credentials required
		),
	}
	p.RegisterFetcher(newTreasuryYieldFetcher(opts))
	return p
}

// --- Shared helpers ---

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

// chartURL builds a five-day daily chart query for symbol.
func chartURL(baseURL, symbol string) string {
	return fmt.Sprintf("%s/v8/finance/chart/%s?range=5d&interval=1d", baseURL, url.PathEscape(symbol))
}
