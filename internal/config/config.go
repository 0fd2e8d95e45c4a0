// Package config handles configuration loading for mortgagewatch.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/seenimoa/mortgagewatch/pkg/models"
)

// EnvPrefix prefixes every environment override, e.g. MORTGAGEWATCH_RATE_PROVIDER.
const EnvPrefix = "MORTGAGEWATCH"

// Config represents the complete application configuration.
type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"     yaml:"http"`
	Rate     RateConfig     `mapstructure:"rate"     yaml:"rate"`
	Yield    YieldConfig    `mapstructure:"yield"    yaml:"yield"`
	FRED     FREDConfig     `mapstructure:"fred"     yaml:"fred"`
	Labor    LaborConfig    `mapstructure:"labor"    yaml:"labor"`
	Forecast ForecastConfig `mapstructure:"forecast" yaml:"forecast"`
	Cache    CacheConfig    `mapstructure:"cache"    yaml:"cache"`
	API      APIConfig      `mapstructure:"api"      yaml:"api"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`

	// Keys are read from the environment only, never from files.
	Keys APIKeys `mapstructure:"-" yaml:"-" json:"-"`

	file string
}

// File returns the config file that was read, or "" when only defaults
// and the environment were used.
func (c *Config) File() string { return c.file }

// HTTPConfig holds outbound HTTP settings shared by every adapter.
type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"    yaml:"timeout"` // single attempt per source
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// RateConfig selects and configures the mortgage rate source.
type RateConfig struct {
	Provider   string     `mapstructure:"provider"    yaml:"provider"` // "mnd", "fred", "rssfeed"
	MND        MNDConfig  `mapstructure:"mnd"         yaml:"mnd"`
	Feed       FeedConfig `mapstructure:"feed"        yaml:"feed"`
	FREDSeries string     `mapstructure:"fred_series" yaml:"fred_series"`
}

// MNDConfig holds the scrape target.
type MNDConfig struct {
	URL      string `mapstructure:"url"      yaml:"url"`
	Selector string `mapstructure:"selector" yaml:"selector"`
}

// FeedConfig holds the RSS/Atom rate feed location.
type FeedConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// YieldConfig selects and configures the 10-year yield source.
type YieldConfig struct {
	Provider   string  `mapstructure:"provider"    yaml:"provider"` // "yfinance" or "fred"
	URL        string  `mapstructure:"url"         yaml:"url"`      // yfinance query host
	Symbol     string  `mapstructure:"symbol"      yaml:"symbol"`
	Divisor    float64 `mapstructure:"divisor"     yaml:"divisor"` // quoted value / divisor = percent
	FREDSeries string  `mapstructure:"fred_series" yaml:"fred_series"`
}

// FREDConfig holds the FRED API root.
type FREDConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// LaborConfig holds both labor statistics sources.
type LaborConfig struct {
	Census CensusConfig `mapstructure:"census" yaml:"census"`
	BLS    BLSConfig    `mapstructure:"bls"    yaml:"bls"`
}

// CensusConfig describes the fixed ACS query.
type CensusConfig struct {
	URL           string   `mapstructure:"url"            yaml:"url"`
	Year          int      `mapstructure:"year"           yaml:"year"`
	Dataset       string   `mapstructure:"dataset"        yaml:"dataset"`
	State         string   `mapstructure:"state"          yaml:"state"` // FIPS code
	Geography     string   `mapstructure:"geography"      yaml:"geography"`
	PopulationVar string   `mapstructure:"population_var" yaml:"population_var"`
	UnemployedVar string   `mapstructure:"unemployed_var" yaml:"unemployed_var"`
	Places        []string `mapstructure:"places"         yaml:"places"`
}

// BLSConfig describes the county series request. An empty Series list
// selects the five New York City counties.
type BLSConfig struct {
	URL       string                `mapstructure:"url"        yaml:"url"`
	StartYear int                   `mapstructure:"start_year" yaml:"start_year"`
	EndYear   int                   `mapstructure:"end_year"   yaml:"end_year"`
	Series    []models.CountySeries `mapstructure:"series"     yaml:"series"`
}

// ForecastConfig locates the forecast dataset.
type ForecastConfig struct {
	Path        string `mapstructure:"path"         yaml:"path"`
	YieldColumn string `mapstructure:"yield_column" yaml:"yield_column"`
}

// CacheConfig holds expiry windows for the adapter cache.
type CacheConfig struct {
	QuoteTTL        time.Duration `mapstructure:"quote_ttl"        yaml:"quote_ttl"`
	LaborTTL        time.Duration `mapstructure:"labor_ttl"        yaml:"labor_ttl"`
	CleanupSchedule string        `mapstructure:"cleanup_schedule" yaml:"cleanup_schedule"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// APIKeys holds upstream credentials.
type APIKeys struct {
	FRED   string
	Census string
	BLS    string
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.mortgagewatch/config.yaml (home directory)
//  3. /etc/mortgagewatch/config.yaml (system)
//
// Environment variables override config file values.
// Format: MORTGAGEWATCH_<SECTION>_<KEY>, e.g., MORTGAGEWATCH_YIELD_PROVIDER
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".mortgagewatch"))
	v.AddConfigPath("/etc/mortgagewatch")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.file = v.ConfigFileUsed()
	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Outbound HTTP
	v.SetDefault("http.timeout", "10s")
	v.SetDefault("http.user_agent", "")

	// Rate source
	v.SetDefault("rate.provider", "mnd")
	v.SetDefault("rate.mnd.url", "https://www.mortgagenewsdaily.com/mortgage-rates/30-year-fixed")
	v.SetDefault("rate.mnd.selector", "div.value")
	v.SetDefault("rate.feed.url", "")
	v.SetDefault("rate.fred_series", "MORTGAGE30US")

	// Yield source
	v.SetDefault("yield.provider", "yfinance")
	v.SetDefault("yield.url", "https://query1.finance.yahoo.com")
	v.SetDefault("yield.symbol", "^TNX")
	v.SetDefault("yield.divisor", 1.0)
	v.SetDefault("yield.fred_series", "DGS10")

	v.SetDefault("fred.url", "https://api.stlouisfed.org/fred")

	// Labor statistics
	v.SetDefault("labor.census.url", "https://api.census.gov/data")
	v.SetDefault("labor.census.year", 2022)
	v.SetDefault("labor.census.dataset", "acs/acs5")
	v.SetDefault("labor.census.state", "36")
	v.SetDefault("labor.census.geography", "county:*")
	v.SetDefault("labor.census.population_var", "B01003_001E")
	v.SetDefault("labor.census.unemployed_var", "B23025_005E")
	v.SetDefault("labor.census.places", []string{"Queens", "Kings", "New York County", "Bronx", "Richmond"})
	v.SetDefault("labor.bls.url", "https://api.bls.gov/publicAPI/v2/timeseries/data/")
	v.SetDefault("labor.bls.start_year", 0) // 0 = previous calendar year
	v.SetDefault("labor.bls.end_year", 0)   // 0 = current calendar year

	// Forecast dataset
	v.SetDefault("forecast.path", "Mortgage_Rate_Indicators_Forecast.csv")
	v.SetDefault("forecast.yield_column", "10Y_Treasury_Yield")

	// Cache
	v.SetDefault("cache.quote_ttl", "1h")
	v.SetDefault("cache.labor_ttl", "24h")
	v.SetDefault("cache.cleanup_schedule", "@every 10m")

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate rejects settings no adapter can run with.
func (c *Config) Validate() error {
	switch c.Rate.Provider {
	case "mnd", "fred":
	case "rssfeed":
		if c.Rate.Feed.URL == "" {
			return fmt.Errorf("rate.feed.url is required when rate.provider is rssfeed")
		}
	default:
		return fmt.Errorf("unknown rate.provider %q (want mnd, fred or rssfeed)", c.Rate.Provider)
	}
	switch c.Yield.Provider {
	case "yfinance", "fred":
	default:
		return fmt.Errorf("unknown yield.provider %q (want yfinance or fred)", c.Yield.Provider)
	}
	if c.Yield.Divisor <= 0 {
		return fmt.Errorf("yield.divisor must be positive, got %v", c.Yield.Divisor)
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %v", c.HTTP.Timeout)
	}
	return nil
}

// overrideFromEnv reads credentials from the environment. The prefixed
// variable wins over the provider's conventional name.
func overrideFromEnv(cfg *Config) {
	cfg.Keys.FRED = firstEnv(EnvPrefix+"_FRED_API_KEY", "FRED_API_KEY")
	cfg.Keys.Census = firstEnv(EnvPrefix+"_CENSUS_API_KEY", "CENSUS_API_KEY")
	cfg.Keys.BLS = firstEnv(EnvPrefix+"_BLS_API_KEY", "BLS_API_KEY")
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
