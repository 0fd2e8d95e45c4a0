// Package mnd implements the Mortgage News Daily rate provider. It scrapes
// the current 30-year fixed rate from the public rate page.
package mnd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/mortgagewatch/internal/infra"
	"github.com/seenimoa/mortgagewatch/internal/provider"
	"github.com/seenimoa/mortgagewatch/pkg/models"
	"github.com/seenimoa/mortgagewatch/pkg/utils"
)

const (
	providerName = "mnd"

	// DefaultURL is the 30-year fixed rate page.
	DefaultURL = "https://www.mortgagenewsdaily.com/mortgage-rates/30-year-fixed"
	// DefaultSelector locates the headline rate on that page.
	DefaultSelector = "div.value"
)

// Options configures the scraper. Zero values select the defaults.
type Options struct {
	URL      string
	Selector string
	Client   *infra.Client
}

// Provider implements provider.Provider for Mortgage News Daily.
type Provider struct {
	provider.BaseProvider
}

// New creates the provider and registers its fetcher.
func New(opts Options) *Provider {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Selector == "" {
		opts.Selector = DefaultSelector
	}
	if opts.Client == nil {
		opts.Client = infra.NewClient(0, "")
	}

	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Mortgage News Daily - daily 30-year fixed rate index",
			"https://www.mortgagenewsdaily.com",
			nil,
		),
	}
	p.RegisterFetcher(&mortgageRateFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelMortgageRate,
			"Current 30-year fixed rate scraped from Mortgage News Daily",
			nil, nil,
		),
		url:      opts.URL,
		selector: opts.Selector,
		client:   opts.Client,
	})
	return p
}

// --- MortgageRate fetcher ---

type mortgageRateFetcher struct {
	provider.BaseFetcher
	url      string
	selector string
	client   *infra.Client
}

func (f *mortgageRateFetcher) Fetch(ctx context.Context, _ provider.QueryParams) (*provider.FetchResult, error) {
	doc, err := f.fetchPage(ctx)
	if err != nil {
		return nil, err
	}

	sel := doc.Find(f.selector).First()
	if sel.Length() == 0 {
		return nil, provider.Errorf(providerName, provider.ErrNotFound, "no element matches %q", f.selector)
	}

	text := strings.TrimSpace(sel.Text())
	v, err := utils.ParsePercent(text)
	if err != nil {
		return nil, provider.NewFetchError(providerName, provider.ErrParse, err)
	}

	return provider.NewResult(models.RateQuote{
		Value:  v,
		Source: providerName,
		AsOf:   time.Now(),
	}), nil
}

func (f *mortgageRateFetcher) fetchPage(ctx context.Context) (*goquery.Document, error) {
	body, _, err := f.client.DoGet(ctx, f.url, map[string]string{
		"Accept": "text/html,application/xhtml+xml",
	})
	if err != nil {
		return nil, provider.Classify(providerName, err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		// A read that dies mid-body is still a transport failure.
		if infra.IsTimeout(err) {
			return nil, provider.Classify(providerName, err)
		}
		return nil, provider.NewFetchError(providerName, provider.ErrParse, fmt.Errorf("parse HTML: %w", err))
	}
	return doc, nil
}
