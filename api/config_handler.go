package api

import (
	"net/http"
	"sort"

	"github.com/seenimoa/mortgagewatch/internal/config"
	"github.com/seenimoa/mortgagewatch/internal/provider"
)

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config     *config.Config `json:"config"`
	ConfigFile string         `json:"config_file,omitempty"` // path to the active config file
}

// handleGetConfig returns the running configuration. API keys are never
// part of it.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeData(w, ConfigResponse{
		Config:     s.cfg,
		ConfigFile: s.cfg.File(),
	})
}

// handleGetConfigKeys returns the masked status of every API key.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	writeData(w, config.CheckAPIKeys(s.cfg))
}

// ProviderStatus describes one model and the providers that can serve it.
type ProviderStatus struct {
	Model     provider.ModelType `json:"model"`
	Default   string             `json:"default,omitempty"`
	Providers []string           `json:"providers"`
}

// ProvidersResponse is the body of GET /api/v1/providers.
type ProvidersResponse struct {
	Providers []provider.ProviderInfo `json:"providers"`
	Models    []ProviderStatus        `json:"models"`
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	writeData(w, ProvidersResponse{
		Providers: s.registry.List(),
		Models:    ModelStatus(s.registry),
	})
}

// ModelStatus lists every model with its default and candidate providers.
func ModelStatus(reg *provider.Registry) []ProviderStatus {
	coverage := reg.ModelCoverage()
	out := make([]ProviderStatus, 0, len(provider.AllModels()))
	for _, m := range provider.AllModels() {
		names := coverage[m]
		sort.Strings(names)
		def, _ := reg.DefaultProvider(m)
		out = append(out, ProviderStatus{Model: m, Default: def, Providers: names})
	}
	return out
}
