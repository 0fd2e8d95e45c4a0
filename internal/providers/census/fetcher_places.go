package census

import (
	"context"
	"math"
	"strings"

	"github.com/seenimoa/mortgagewatch/internal/provider"
	"github.com/seenimoa/mortgagewatch/pkg/models"
	"github.com/seenimoa/mortgagewatch/pkg/utils"
)

// ---- PlaceUnemployment fetcher ----

type placeUnemploymentFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newPlaceUnemploymentFetcher(p *Provider) *placeUnemploymentFetcher {
	return &placeUnemploymentFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelPlaceUnemployment,
			"Unemployment rate per place from ACS population and unemployed counts",
			nil,
			[]string{provider.ParamPlaces},
		),
		p: p,
	}
}

// Fetch issues one query and keeps rows whose NAME contains any of the
// requested place fragments (case-insensitive). An empty filter keeps all rows.
func (f *placeUnemploymentFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	filter := f.p.opts.Places
	if v := params[provider.ParamPlaces]; v != "" {
		filter = provider.SplitList(v)
	}

	// The API answers with a JSON array of rows; the first row is the header.
	var table [][]any
	if err := f.p.opts.Client.GetJSON(ctx, f.p.queryURL(), map[string]string{"Accept": "application/json"}, &table); err != nil {
		return nil, provider.Classify(providerName, err)
	}

	rows, err := f.parse(table, filter)
	if err != nil {
		return nil, err
	}
	return provider.NewResult(rows), nil
}

func (f *placeUnemploymentFetcher) parse(table [][]any, filter []string) ([]models.PlaceUnemployment, error) {
	if len(table) == 0 {
		return nil, provider.Errorf(providerName, provider.ErrSchemaMismatch, "empty response, header row missing")
	}

	header := make(map[string]int, len(table[0]))
	for i, h := range table[0] {
		if s, ok := h.(string); ok {
			header[s] = i
		}
	}
	nameIdx, ok1 := header["NAME"]
	popIdx, ok2 := header[f.p.opts.PopulationVar]
	unempIdx, ok3 := header[f.p.opts.UnemployedVar]
	if !ok1 || !ok2 || !ok3 {
		return nil, provider.Errorf(providerName, provider.ErrSchemaMismatch,
			"header %v lacks NAME, %s or %s", table[0], f.p.opts.PopulationVar, f.p.opts.UnemployedVar)
	}

	needles := make([]string, 0, len(filter))
	for _, p := range filter {
		if p = strings.TrimSpace(p); p != "" {
			needles = append(needles, strings.ToLower(p))
		}
	}

	out := make([]models.PlaceUnemployment, 0, len(table)-1)
	for _, row := range table[1:] {
		if len(row) != len(table[0]) {
			continue
		}
		name, _ := row[nameIdx].(string)
		if !matches(name, needles) {
			continue
		}
		pop, okPop := cellFloat(row[popIdx])
		unemp, okUnemp := cellFloat(row[unempIdx])
		rate := math.NaN()
		if okPop && okUnemp {
			rate = utils.Percent(unemp, pop)
		}
		out = append(out, models.PlaceUnemployment{
			Name:       name,
			Population: pop,
			Unemployed: unemp,
			Rate:       rate,
			Year:       f.p.opts.Year,
		})
	}
	return out, nil
}

func matches(name string, needles []string) bool {
	if len(needles) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

// cellFloat reads a numeric cell. The API quotes numbers as strings and
// uses null or negative sentinels for suppressed estimates; those report
// false and read as zero.
func cellFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case string:
		parsed, err := utils.ParseNumber(x)
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = x
	default:
		return 0, false
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
