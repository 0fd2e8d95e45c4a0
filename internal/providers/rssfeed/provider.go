// Package rssfeed implements a mortgage rate provider backed by an RSS or
// Atom feed. The first item that quotes a percentage supplies the rate.
package rssfeed

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/mortgagewatch/internal/infra"
	"github.com/seenimoa/mortgagewatch/internal/provider"
	"github.com/seenimoa/mortgagewatch/pkg/models"
	"github.com/seenimoa/mortgagewatch/pkg/utils"
)

const providerName = "rssfeed"

var percentRe = regexp.MustCompile(`(\d{1,2}\.\d{1,3})\s*%`)

// Options configures the feed reader. URL is required.
type Options struct {
	URL    string
	Client *infra.Client
}

// Provider implements provider.Provider for a rate feed.
type Provider struct {
	provider.BaseProvider
}

// New creates the provider and registers its fetcher.
func New(opts Options) *Provider {
	if opts.Client == nil {
		opts.Client = infra.NewClient(0, "")
	}
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Mortgage rate headlines from an RSS/Atom feed",
			opts.URL,
			nil,
		),
	}
	p.RegisterFetcher(&mortgageRateFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelMortgageRate,
			"First percentage quoted in the configured rate feed",
			nil, nil,
		),
		url:    opts.URL,
		client: opts.Client,
		parser: gofeed.NewParser(),
	})
	return p
}

type mortgageRateFetcher struct {
	provider.BaseFetcher
	url    string
	client *infra.Client
	parser *gofeed.Parser
}

func (f *mortgageRateFetcher) Fetch(ctx context.Context, _ provider.QueryParams) (*provider.FetchResult, error) {
	body, _, err := f.client.DoGet(ctx, f.url, map[string]string{
		"Accept": "application/rss+xml, application/atom+xml, application/xml",
	})
	if err != nil {
		return nil, provider.Classify(providerName, err)
	}
	defer body.Close()

	feed, err := f.parser.Parse(body)
	if err != nil {
		if infra.IsTimeout(err) {
			return nil, provider.Classify(providerName, err)
		}
		return nil, provider.NewFetchError(providerName, provider.ErrParse, err)
	}
	if len(feed.Items) == 0 {
		return nil, provider.Errorf(providerName, provider.ErrNoData, "feed %q has no items", feed.Title)
	}

	for _, item := range feed.Items {
		v, ok := firstPercent(item.Title)
		if !ok {
			v, ok = firstPercent(cleanHTML(item.Description))
		}
		if !ok {
			continue
		}
		q := models.RateQuote{Value: v, Source: providerName, AsOf: time.Now()}
		if item.PublishedParsed != nil {
			q.AsOf = *item.PublishedParsed
		}
		return provider.NewResult(q), nil
	}
	return nil, provider.Errorf(providerName, provider.ErrNotFound, "no item quotes a rate")
}

func firstPercent(s string) (float64, bool) {
	m := percentRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := utils.ParseNumber(m[1])
	if err != nil {
		return 0, false
	}
	return v, true
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
