package config

import (
	"os"

	"github.com/seenimoa/mortgagewatch/pkg/utils"
)

// KeyStatus represents the status of an API key.
type KeyStatus struct {
	Name     string `json:"name"`
	EnvVar   string `json:"env_var,omitempty"` // variable the key was read from
	IsSet    bool   `json:"is_set"`
	Required bool   `json:"required"`         // the source is unusable without it
	Masked   string `json:"masked,omitempty"` // e.g., "abc...xyz"
}

// CheckAPIKeys returns the status of every upstream credential.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	return []KeyStatus{
		checkKey("FRED API Key", cfg.Keys.FRED, true, EnvPrefix+"_FRED_API_KEY", "FRED_API_KEY"),
		checkKey("Census API Key", cfg.Keys.Census, false, EnvPrefix+"_CENSUS_API_KEY", "CENSUS_API_KEY"),
		checkKey("BLS API Key", cfg.Keys.BLS, false, EnvPrefix+"_BLS_API_KEY", "BLS_API_KEY"),
	}
}

// checkKey reports whether a key is set and which variable supplied it.
func checkKey(name, value string, required bool, envVars ...string) KeyStatus {
	status := KeyStatus{
		Name:     name,
		IsSet:    value != "",
		Required: required,
	}
	if value == "" {
		return status
	}
	for _, e := range envVars {
		if os.Getenv(e) == value {
			status.EnvVar = e
			break
		}
	}
	status.Masked = utils.MaskKey(value)
	return status
}
