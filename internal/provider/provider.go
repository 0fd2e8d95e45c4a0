// Package provider implements the provider abstraction layer.
// It defines a Provider interface, a Fetcher interface, and a central registry
// that routes data requests to the provider configured for each model type.
package provider

import (
	"context"
	"fmt"
	"time"
)

// ProviderCredential describes a credential a provider may need.
type ProviderCredential struct {
	Name        string `json:"name"`        // e.g., "api_key"
	Description string `json:"description"` // e.g., "FRED API key from fred.stlouisfed.org"
	Required    bool   `json:"required"`
	EnvVar      string `json:"env_var"` // environment variable name, e.g., "FRED_API_KEY"
}

// ProviderInfo holds metadata about a registered provider.
type ProviderInfo struct {
	Name        string               `json:"name"`        // e.g., "fred", "yfinance"
	Description string               `json:"description"` // human-readable description
	Website     string               `json:"website"`
	Credentials []ProviderCredential `json:"credentials"`
	Models      []ModelType          `json:"models"` // supported model types
}

// Provider is the interface that all data providers must implement.
// Each provider registers one Fetcher per model type it can serve.
type Provider interface {
	// Info returns metadata about this provider.
	Info() ProviderInfo

	// Init initializes the provider with credentials. Called once before
	// registration. Returns an error if required credentials are missing.
	Init(credentials map[string]string) error

	// Fetcher returns the fetcher for the given model type, or nil if unsupported.
	Fetcher(model ModelType) Fetcher

	// SupportedModels returns all model types this provider can fetch.
	SupportedModels() []ModelType
}

// QueryParams is the generic query parameter map passed to fetchers.
// Common keys include:
//   - "symbol"     : instrument or series ID (e.g., "^TNX", "DGS10")
//   - "places"     : comma-separated place-name fragments
//   - "series"     : ordered "county=seriesID" pairs, comma-separated
//   - "start_year" : first year of a time-series window
//   - "end_year"   : last year of a time-series window
//   - "provider"   : override provider name
//
// Each fetcher defines which keys it requires/supports.
type QueryParams map[string]string

// QueryParamKey constants for commonly used query parameters.
const (
	ParamSymbol    = "symbol"
	ParamPlaces    = "places"
	ParamSeries    = "series"
	ParamStartYear = "start_year"
	ParamEndYear   = "end_year"
	ParamProvider  = "provider"
)

// FetchResult wraps a fetcher result with metadata.
type FetchResult struct {
	Provider  string    `json:"provider"`   // which provider returned this data
	Model     ModelType `json:"model"`      // the model type
	Data      any       `json:"data"`       // the fetched data (typed per model)
	FetchedAt time.Time `json:"fetched_at"` // when the data was fetched
}

// NewResult wraps data fetched now.
func NewResult(data any) *FetchResult {
	return &FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
	}
}

// Fetcher is the interface for fetching a specific data type.
// Each Fetcher handles a single model type and performs exactly one
// upstream request per Fetch call.
type Fetcher interface {
	// ModelType returns the model type this fetcher handles.
	ModelType() ModelType

	// Description returns a human-readable description of what this fetcher does.
	Description() string

	// RequiredParams returns the parameter keys this fetcher requires.
	RequiredParams() []string

	// OptionalParams returns the parameter keys this fetcher optionally accepts.
	OptionalParams() []string

	// Fetch retrieves data for the given query parameters.
	// The returned data type depends on the model:
	//   - MortgageRate       → models.RateQuote
	//   - TreasuryYield      → models.YieldQuote
	//   - PlaceUnemployment  → []models.PlaceUnemployment
	//   - CountyUnemployment → []models.CountyUnemployment
	//
	// Errors are *FetchError values.
	Fetch(ctx context.Context, params QueryParams) (*FetchResult, error)
}

// ErrProviderNotFound is returned when a requested provider is not registered.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return fmt.Sprintf("provider %q not found", e.Name)
}

// ErrModelNotSupported is returned when a provider doesn't support a model type.
type ErrModelNotSupported struct {
	Provider string
	Model    ModelType
}

func (e *ErrModelNotSupported) Error() string {
	return fmt.Sprintf("provider %q does not support model %q", e.Provider, e.Model)
}

// ErrMissingParam is returned when a required query parameter is missing.
type ErrMissingParam struct {
	Param string
}

func (e *ErrMissingParam) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Param)
}

// ErrInvalidCredentials is returned when provider credentials are invalid.
type ErrInvalidCredentials struct {
	Provider string
	Detail   string
}

func (e *ErrInvalidCredentials) Error() string {
	return fmt.Sprintf("invalid credentials for provider %q: %s", e.Provider, e.Detail)
}

// ValidateParams checks that all required parameters are present in params.
func ValidateParams(params QueryParams, required []string) error {
	for _, key := range required {
		if v, ok := params[key]; !ok || v == "" {
			return &ErrMissingParam{Param: key}
		}
	}
	return nil
}
