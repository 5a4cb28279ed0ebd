package config

import "time"

// Environment names recognised in Config.Environment.
const (
	EnvLocal      = "local"
	EnvProduction = "production"
)

const (
	localOrigin      = "http://localhost:5173"
	productionOrigin = "https://app.stratahr.io"
)

// Config holds runtime settings for the Strata client.
//
// Fields:
//   - BackendURL: base URL of the hosted backend (auth + REST).
//   - AnonKey: public API key sent with every backend request.
//   - Environment: "local" or "production"; selects the web origin used for
//     auth redirect URLs.
//   - StoreDSN: SQLite DSN of the persistent local store.
//   - HTTPTimeout: per-request timeout for backend round-trips.
type Config struct {
	BackendURL  string        `env:"STRATA_BACKEND_URL"`
	AnonKey     string        `env:"STRATA_ANON_KEY"`
	Environment string        `env:"STRATA_ENV"`
	StoreDSN    string        `env:"STRATA_STORE_DSN"`
	HTTPTimeout time.Duration `env:"STRATA_HTTP_TIMEOUT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BackendURL = "http://127.0.0.1:54321"
	c.Environment = EnvLocal
	c.StoreDSN = "strata.db"
	c.HTTPTimeout = 10 * time.Second
}

// SiteOrigin returns the web origin auth redirects should land on:
// the local dev origin during development, the fixed production URL otherwise.
func (c *Config) SiteOrigin() string {
	if c.Environment == EnvProduction {
		return productionOrigin
	}
	return localOrigin
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), environment variables, and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
