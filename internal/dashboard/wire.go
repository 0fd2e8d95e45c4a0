package dashboard

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/seenimoa/mortgagewatch/internal/config"
	"github.com/seenimoa/mortgagewatch/internal/forecast"
	"github.com/seenimoa/mortgagewatch/internal/infra"
	"github.com/seenimoa/mortgagewatch/internal/market"
	"github.com/seenimoa/mortgagewatch/internal/provider"
	"github.com/seenimoa/mortgagewatch/internal/providers"
)

// Deps are the long-lived pieces a host needs besides the Dashboard.
type Deps struct {
	Registry *provider.Registry
	Cache    *infra.Cache
}

// NewFromConfig wires providers, the adapter cache, the reconciler and the
// forecast dataset. A forecast file that fails to load is not fatal; the
// error is kept and surfaces as a warning on every render.
func NewFromConfig(cfg *config.Config) (*Dashboard, Deps, error) {
	reg := provider.NewRegistry()
	if err := providers.RegisterAllTo(reg, cfg); err != nil {
		return nil, Deps{}, fmt.Errorf("register providers: %w", err)
	}

	cache := infra.NewCache(cfg.Cache.QuoteTTL)
	sources := market.NewSources(reg, market.WithCache(cache, cfg.Cache.QuoteTTL, cfg.Cache.LaborTTL))
	rec := market.NewReconciler(sources, sources, nil)

	ds, err := forecast.Load(cfg.Forecast.Path, cfg.Forecast.YieldColumn)
	if err != nil {
		log.WithError(err).Warn("forecast dataset unavailable")
	}

	return New(ds, err, rec, sources), Deps{Registry: reg, Cache: cache}, nil
}
