package config

import (
	"github.com/caarlos0/env/v11"
)

// parseEnv overlays Config with values from STRATA_* environment variables.
// Unset variables leave the corresponding fields untouched.
// Panics on malformed values (caller should recover if desired).
func parseEnv(cfg *Config) {
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}
}
