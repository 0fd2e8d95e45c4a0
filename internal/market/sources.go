// Package market exposes typed live-indicator sources over the provider
// registry and reconciles rate and yield into a market snapshot.
package market

import (
	"context"
	"fmt"
	"time"

	"github.com/seenimoa/mortgagewatch/internal/infra"
	"github.com/seenimoa/mortgagewatch/internal/provider"
	"github.com/seenimoa/mortgagewatch/pkg/models"
)

// Fetcher routes a model request to a provider. *provider.Registry
// satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, model provider.ModelType, params provider.QueryParams) (*provider.FetchResult, error)
}

// Sources wraps a Fetcher with typed calls and optional expiry caching.
type Sources struct {
	fetcher  Fetcher
	cache    *infra.Cache
	quoteTTL time.Duration
	laborTTL time.Duration
}

// Option configures Sources.
type Option func(*Sources)

// WithCache memoizes successful results: quotes for quoteTTL and labor
// statistics for laborTTL. Failures are never cached.
func WithCache(c *infra.Cache, quoteTTL, laborTTL time.Duration) Option {
	return func(s *Sources) {
		s.cache = c
		s.quoteTTL = quoteTTL
		s.laborTTL = laborTTL
	}
}

// NewSources creates typed sources over f.
func NewSources(f Fetcher, opts ...Option) *Sources {
	s := &Sources{
		fetcher:  f,
		quoteTTL: time.Hour,
		laborTTL: 24 * time.Hour,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// FetchMortgageRate returns the current 30-year fixed rate in percent.
func (s *Sources) FetchMortgageRate(ctx context.Context) (models.RateQuote, error) {
	return fetchTyped[models.RateQuote](ctx, s, provider.ModelMortgageRate, nil, s.quoteTTL)
}

// FetchTreasuryYield returns the latest 10-year yield in percent.
func (s *Sources) FetchTreasuryYield(ctx context.Context) (models.YieldQuote, error) {
	return fetchTyped[models.YieldQuote](ctx, s, provider.ModelTreasuryYield, nil, s.quoteTTL)
}

// FetchPlaceLaborStats returns unemployment by place, keeping places whose
// name contains any filter fragment. A nil filter uses the configured places.
func (s *Sources) FetchPlaceLaborStats(ctx context.Context, filter []string) ([]models.PlaceUnemployment, error) {
	params := provider.QueryParams{}
	if len(filter) > 0 {
		params[provider.ParamPlaces] = provider.JoinList(filter)
	}
	return fetchTyped[[]models.PlaceUnemployment](ctx, s, provider.ModelPlaceUnemployment, params, s.laborTTL)
}

// FetchCountyLaborTimeseries returns monthly unemployment per county for the
// given ordered series. A nil slice uses the configured series.
func (s *Sources) FetchCountyLaborTimeseries(ctx context.Context, series []models.CountySeries) ([]models.CountyUnemployment, error) {
	params := provider.QueryParams{}
	if len(series) > 0 {
		params[provider.ParamSeries] = provider.EncodeSeries(series)
	}
	return fetchTyped[[]models.CountyUnemployment](ctx, s, provider.ModelCountyUnemployment, params, s.laborTTL)
}

func fetchTyped[T any](ctx context.Context, s *Sources, model provider.ModelType, params provider.QueryParams, ttl time.Duration) (T, error) {
	v, _, err := infra.Memoize(s.cache, provider.CacheKey(model, params), ttl, func() (T, error) {
		var zero T
		res, err := s.fetcher.Fetch(ctx, model, params)
		if err != nil {
			return zero, err
		}
		data, ok := res.Data.(T)
		if !ok {
			return zero, fmt.Errorf("provider %q returned %T for %s", res.Provider, res.Data, model)
		}
		return data, nil
	})
	return v, err
}
