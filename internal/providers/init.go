// Package providers builds the concrete data providers from configuration
// and registers them with a provider registry.
package providers

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/seenimoa/mortgagewatch/internal/config"
	"github.com/seenimoa/mortgagewatch/internal/infra"
	"github.com/seenimoa/mortgagewatch/internal/provider"
	"github.com/seenimoa/mortgagewatch/internal/providers/bls"
	"github.com/seenimoa/mortgagewatch/internal/providers/census"
	"github.com/seenimoa/mortgagewatch/internal/providers/fred"
	"github.com/seenimoa/mortgagewatch/internal/providers/mnd"
	"github.com/seenimoa/mortgagewatch/internal/providers/rssfeed"
	"github.com/seenimoa/mortgagewatch/internal/providers/yfinance"
)

// RegisterAllTo creates every provider the configuration can support,
// registers it, and makes the configured rate and yield providers the
// defaults for their models. FRED is only registered when its key is set;
// selecting it without a key leaves that model without a provider, which
// callers see as an unavailable source rather than a startup failure.
func RegisterAllTo(reg *provider.Registry, cfg *config.Config) error {
	client := infra.NewClient(cfg.HTTP.Timeout, cfg.HTTP.UserAgent)

	// --- Keyless sources ---
	if err := register(reg, mnd.New(mnd.Options{
		URL:      cfg.Rate.MND.URL,
		Selector: cfg.Rate.MND.Selector,
		Client:   client,
	}), nil); err != nil {
		return err
	}

	if cfg.Rate.Feed.URL != "" {
		if err := register(reg, rssfeed.New(rssfeed.Options{URL: cfg.Rate.Feed.URL, Client: client}), nil); err != nil {
			return err
		}
	}

	if err := register(reg, yfinance.New(yfinance.Options{
		BaseURL: cfg.Yield.URL,
		Symbol:  cfg.Yield.Symbol,
		Divisor: cfg.Yield.Divisor,
		Client:  client,
	}), nil); err != nil {
		return err
	}

	// --- Optional keys ---
	c := cfg.Labor.Census
	if err := register(reg, census.New(census.Options{
		BaseURL:       c.URL,
		Year:          c.Year,
		Dataset:       c.Dataset,
		State:         c.State,
		Geography:     c.Geography,
		PopulationVar: c.PopulationVar,
		UnemployedVar: c.UnemployedVar,
		Places:        c.Places,
		Client:        client,
	}), map[string]string{"api_key": cfg.Keys.Census}); err != nil {
		return err
	}

	b := cfg.Labor.BLS
	if err := register(reg, bls.New(bls.Options{
		URL:       b.URL,
		StartYear: b.StartYear,
		EndYear:   b.EndYear,
		Series:    b.Series,
		Client:    client,
	}), map[string]string{"api_key": cfg.Keys.BLS}); err != nil {
		return err
	}

	// --- Required key ---
	if cfg.Keys.FRED != "" {
		if err := register(reg, fred.New(fred.Options{
			BaseURL:     cfg.FRED.URL,
			RateSeries:  cfg.Rate.FREDSeries,
			YieldSeries: cfg.Yield.FREDSeries,
			Client:      client,
		}), map[string]string{"api_key": cfg.Keys.FRED}); err != nil {
			return err
		}
	}

	selectDefault(reg, provider.ModelMortgageRate, cfg.Rate.Provider)
	selectDefault(reg, provider.ModelTreasuryYield, cfg.Yield.Provider)
	return nil
}

func register(reg *provider.Registry, p provider.Provider, creds map[string]string) error {
	if err := p.Init(creds); err != nil {
		return err
	}
	if err := reg.Register(p); err != nil {
		return fmt.Errorf("register %s: %w", p.Info().Name, err)
	}
	return nil
}

// selectDefault points model at the configured provider. When that provider
// is not registered the model is left with no default so fetches fail
// instead of silently using a different source.
func selectDefault(reg *provider.Registry, model provider.ModelType, name string) {
	if err := reg.SetDefault(model, name); err != nil {
		log.WithFields(log.Fields{
			"model":    model,
			"provider": name,
		}).Warn("configured provider unavailable: ", err)
		reg.ClearDefault(model)
	}
}
