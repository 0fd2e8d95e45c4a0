package yfinance

import (
	"context"
	"time"

	"github.com/seenimoa/mortgagewatch/internal/infra"
	"github.com/seenimoa/mortgagewatch/internal/provider"
	"github.com/seenimoa/mortgagewatch/pkg/models"
)

// --- TreasuryYield fetcher ---

type treasuryYieldFetcher struct {
	provider.BaseFetcher
	baseURL string
	symbol  string
	divisor float64
	client  *infra.Client
}

func newTreasuryYieldFetcher(opts Options) *treasuryYieldFetcher {
	return &treasuryYieldFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelTreasuryYield,
			"Latest daily close of the 10-year Treasury yield index from Yahoo Finance",
			nil,
			[]string{provider.ParamSymbol},
		),
		baseURL: opts.BaseURL,
		symbol:  opts.Symbol,
		divisor: opts.Divisor,
		client:  opts.Client,
	}
}

func (f *treasuryYieldFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := f.symbol
	if s := params[provider.ParamSymbol]; s != "" {
		symbol = s
	}

	var resp yfChartResponse
	if err := f.client.GetJSON(ctx, chartURL(f.baseURL, symbol), jsonHeaders(), &resp); err != nil {
		return nil, provider.Classify(providerName, err)
	}
	if e := resp.Chart.Error; e != nil {
		return nil, provider.Errorf(providerName, provider.ErrNoData, "%s: %s", e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, provider.Errorf(providerName, provider.ErrNoData, "empty chart for %s", symbol)
	}

	r := resp.Chart.Result[0]
	closes := r.Indicators.Quote[0].Close
	for i := len(closes) - 1; i >= 0; i-- {
		c := closes[i]
		if c == nil {
			continue
		}
		q := models.YieldQuote{
			Value:  *c / f.divisor,
			Symbol: symbol,
			Source: providerName,
			AsOf:   time.Now(),
		}
		if i < len(r.Timestamp) {
			q.AsOf = time.Unix(r.Timestamp[i], 0).UTC()
		}
		return provider.NewResult(q), nil
	}
	return nil, provider.Errorf(providerName, provider.ErrNoData, "no close for %s", symbol)
}
