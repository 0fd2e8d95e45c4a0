package fred

import (
	"context"
	"time"

	"github.com/seenimoa/mortgagewatch/internal/infra"
	"github.com/seenimoa/mortgagewatch/internal/provider"
	"github.com/seenimoa/mortgagewatch/pkg/models"
	"github.com/seenimoa/mortgagewatch/pkg/utils"
)

// seriesSource reads the newest observation of a FRED series.
type seriesSource struct {
	baseURL string
	client  *infra.Client
}

type observation struct {
	date  time.Time
	value float64
}

// latest returns the newest non-missing observation among the last five.
func (s *seriesSource) latest(ctx context.Context, seriesID, apiKey string) (observation, error) {
	var resp fredObservationsResponse
	err := s.client.GetJSON(ctx, observationsURL(s.baseURL, seriesID, apiKey), jsonHeaders(), &resp)
	if err != nil {
		return observation{}, provider.Classify(providerName, err)
	}

	for _, o := range resp.Observations {
		if o.Value == "." || o.Value == "" {
			continue
		}
		v, err := utils.ParseNumber(o.Value)
		if err != nil {
			return observation{}, provider.Errorf(providerName, provider.ErrParse, "%s value %q: %v", seriesID, o.Value, err)
		}
		d, err := time.Parse("2006-01-02", o.Date)
		if err != nil {
			return observation{}, provider.Errorf(providerName, provider.ErrParse, "%s date %q: %v", seriesID, o.Date, err)
		}
		return observation{date: d, value: v}, nil
	}
	return observation{}, provider.Errorf(providerName, provider.ErrNoData, "no observations for %s", seriesID)
}

// ---- MortgageRate fetcher ----

type mortgageRateFetcher struct {
	provider.BaseFetcher
	src    *seriesSource
	series string
}

func newMortgageRateFetcher(src *seriesSource, series string) *mortgageRateFetcher {
	return &mortgageRateFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelMortgageRate,
			"Latest 30-year fixed mortgage average from FRED",
			nil,
			[]string{provider.ParamSymbol}, // series_id override
		),
		src:    src,
		series: series,
	}
}

func (f *mortgageRateFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	series := f.series
	if s := params[provider.ParamSymbol]; s != "" {
		series = s
	}
	obs, err := f.src.latest(ctx, series, params[paramAPIKey])
	if err != nil {
		return nil, err
	}
	return provider.NewResult(models.RateQuote{
		Value:  obs.value,
		Source: providerName,
		AsOf:   obs.date,
	}), nil
}

// ---- TreasuryYield fetcher ----

type treasuryYieldFetcher struct {
	provider.BaseFetcher
	src    *seriesSource
	series string
}

func newTreasuryYieldFetcher(src *seriesSource, series string) *treasuryYieldFetcher {
	return &treasuryYieldFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelTreasuryYield,
			"Latest 10-year Treasury constant maturity yield from FRED",
			nil,
			[]string{provider.ParamSymbol},
		),
		src:    src,
		series: series,
	}
}

// Fetch returns the yield in percent; FRED publishes these series unscaled.
func (f *treasuryYieldFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	series := f.series
	if s := params[provider.ParamSymbol]; s != "" {
		series = s
	}
	obs, err := f.src.latest(ctx, series, params[paramAPIKey])
	if err != nil {
		return nil, err
	}
	return provider.NewResult(models.YieldQuote{
		Value:  obs.value,
		Symbol: series,
		Source: providerName,
		AsOf:   obs.date,
	}), nil
}
