// Package census implements the U.S. Census Bureau API provider.
// It derives unemployment rates per place from the American Community Survey
// (ACS) five-year estimates: total population (B01003_001E) and civilian
// unemployed (B23025_005E).
//
// An API key is optional for low request volumes.
// Docs: https://www.census.gov/data/developers/data-sets/acs-5year.html
package census

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/seenimoa/mortgagewatch/internal/infra"
	"github.com/seenimoa/mortgagewatch/internal/provider"
)

const (
	providerName = "census"
	credAPIKey   = "api_key"

	DefaultBaseURL       = "https://api.census.gov/data"
	DefaultYear          = 2022
	DefaultDataset       = "acs/acs5"
	DefaultState         = "36" // New York
	DefaultGeography     = "county:*"
	DefaultPopulationVar = "B01003_001E"
	DefaultUnemployedVar = "B23025_005E"
)

// Options configures the query. Zero values select the defaults.
type Options struct {
	BaseURL       string
	Year          int
	Dataset       string
	State         string
	Geography     string
	PopulationVar string
	UnemployedVar string
	// Places is the default name filter when a query names none.
	Places []string
	Client *infra.Client
}

func (o *Options) applyDefaults() {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.Year == 0 {
		o.Year = DefaultYear
	}
	if o.Dataset == "" {
		o.Dataset = DefaultDataset
	}
	if o.State == "" {
		o.State = DefaultState
	}
	if o.Geography == "" {
		o.Geography = DefaultGeography
	}
	if o.PopulationVar == "" {
		o.PopulationVar = DefaultPopulationVar
	}
	if o.UnemployedVar == "" {
		o.UnemployedVar = DefaultUnemployedVar
	}
	if o.Client == nil {
		o.Client = infra.NewClient(0, "")
	}
}

// Provider implements provider.Provider for the Census API.
type Provider struct {
	provider.BaseProvider
	opts Options
}

// New creates the provider and registers its fetcher.
func New(opts Options) *Provider {
	opts.applyDefaults()
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"U.S. Census Bureau - American Community Survey estimates",
			"https://www.census.gov/data/developers.html",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "Census API key from api.census.gov/data/key_signup.html",
					Required:    false,
					EnvVar:      "CENSUS_API_KEY",
				},
			},
		),
		opts: opts,
	}
	p.RegisterFetcher(newPlaceUnemploymentFetcher(p))
	return p
}

// queryURL builds the fixed column query for every geography of one state.
func (p *Provider) queryURL() string {
	q := url.Values{}
	q.Set("get", strings.Join([]string{"NAME", p.opts.PopulationVar, p.opts.UnemployedVar}, ","))
	q.Set("for", p.opts.Geography)
	q.Set("in", "state:"+p.opts.State)
	if key := p.Credential(credAPIKey); key != "" {
		q.Set("key", key)
	}
	return strings.TrimRight(p.opts.BaseURL, "/") + "/" + strconv.Itoa(p.opts.Year) + "/" + p.opts.Dataset + "?" + q.Encode()
}
