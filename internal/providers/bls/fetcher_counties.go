package bls

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/mortgagewatch/internal/provider"
	"github.com/seenimoa/mortgagewatch/pkg/models"
	"github.com/seenimoa/mortgagewatch/pkg/utils"
)

// ---- CountyUnemployment fetcher ----

type countyUnemploymentFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newCountyUnemploymentFetcher(p *Provider) *countyUnemploymentFetcher {
	return &countyUnemploymentFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelCountyUnemployment,
			"Monthly county unemployment rates from BLS LAUS series",
			nil,
			[]string{provider.ParamSeries, provider.ParamStartYear, provider.ParamEndYear},
		),
		p: p,
	}
}

// Fetch posts every series in one request. Response series are matched to
// the requested counties by position.
func (f *countyUnemploymentFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	series := f.p.opts.Series
	if v := params[provider.ParamSeries]; v != "" {
		series = provider.DecodeSeries(v)
	}

	start, err := yearParam(params, provider.ParamStartYear)
	if err != nil {
		return nil, err
	}
	end, err := yearParam(params, provider.ParamEndYear)
	if err != nil {
		return nil, err
	}
	start, end = f.p.yearRange(start, end)

	req := blsRequest{
		StartYear:       strconv.Itoa(start),
		EndYear:         strconv.Itoa(end),
		RegistrationKey: f.p.Credential(credAPIKey),
	}
	for _, s := range series {
		req.SeriesID = append(req.SeriesID, s.SeriesID)
	}

	var resp blsResponse
	if err := f.p.opts.Client.PostJSON(ctx, f.p.opts.URL, req, nil, &resp); err != nil {
		return nil, provider.Classify(providerName, err)
	}

	records, err := flatten(resp, series)
	if err != nil {
		return nil, err
	}
	return provider.NewResult(records), nil
}

func flatten(resp blsResponse, requested []models.CountySeries) ([]models.CountyUnemployment, error) {
	if resp.Results == nil || resp.Results.Series == nil {
		if resp.Status != "" && resp.Status != statusSucceeded {
			return nil, provider.Errorf(providerName, provider.ErrNoData, "%s: %s", resp.Status, strings.Join(resp.Message, "; "))
		}
		return nil, provider.Errorf(providerName, provider.ErrSchemaMismatch, "response has no Results.series")
	}
	got := *resp.Results.Series
	if len(got) == 0 && resp.Status != statusSucceeded {
		return nil, provider.Errorf(providerName, provider.ErrNoData, "%s: %s", resp.Status, strings.Join(resp.Message, "; "))
	}

	if len(got) != len(requested) {
		return nil, provider.Errorf(providerName, provider.ErrSchemaMismatch, "requested %d series, got %d", len(requested), len(got))
	}

	var out []models.CountyUnemployment
	for i, s := range got {
		county := requested[i]
		if s.SeriesID != "" && s.SeriesID != county.SeriesID {
			return nil, provider.Errorf(providerName, provider.ErrSchemaMismatch, "series %d is %s, want %s", i, s.SeriesID, county.SeriesID)
		}
		for _, d := range s.Data {
			month, ok := monthOf(d.Period)
			if !ok {
				continue
			}
			year, err := strconv.Atoi(d.Year)
			if err != nil {
				return nil, provider.Errorf(providerName, provider.ErrParse, "%s year %q: %v", s.SeriesID, d.Year, err)
			}
			// "-" marks a month the series has not published.
			rate, err := utils.ParseNumber(d.Value)
			if err != nil {
				continue
			}
			out = append(out, models.CountyUnemployment{
				County:   county.County,
				SeriesID: county.SeriesID,
				Year:     year,
				Month:    month,
				Rate:     rate,
			})
		}
	}
	return out, nil
}

// monthOf maps "M01".."M12" to a month. M13 (annual average) and
// non-monthly periods report false.
func monthOf(period string) (time.Month, bool) {
	if len(period) != 3 || period[0] != 'M' {
		return 0, false
	}
	n, err := strconv.Atoi(period[1:])
	if err != nil || n < 1 || n > 12 {
		return 0, false
	}
	return time.Month(n), true
}

func yearParam(params provider.QueryParams, key string) (int, error) {
	v := params[key]
	if v == "" {
		return 0, nil
	}
	y, err := strconv.Atoi(v)
	if err != nil || y < 1900 {
		return 0, provider.Errorf(providerName, provider.ErrParse, "%s %q is not a year", key, v)
	}
	return y, nil
}
