package config

import (
	"encoding/json"
	"os"

	"github.com/stratahr/strata-client/internal/flagx"
	"github.com/stratahr/strata-client/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify the HTTP timeout either as a string like
// "10s" or as integer nanoseconds.
type JsonConfig struct {
	BackendURL  string         `json:"backend_url"`
	AnonKey     string         `json:"anon_key"`
	Environment string         `json:"environment"`
	StoreDSN    string         `json:"store_dsn"`
	HTTPTimeout timex.Duration `json:"http_timeout"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file path is taken from the -c/-config flags via flagx.JsonConfigFlags;
// when neither is present no JSON is loaded. Fields absent from the file keep
// their current values. Panics on read or unmarshal errors (caller should
// recover if desired).
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.BackendURL != "" {
		cfg.BackendURL = jc.BackendURL
	}
	if jc.AnonKey != "" {
		cfg.AnonKey = jc.AnonKey
	}
	if jc.Environment != "" {
		cfg.Environment = jc.Environment
	}
	if jc.StoreDSN != "" {
		cfg.StoreDSN = jc.StoreDSN
	}
	if jc.HTTPTimeout.Duration != 0 {
		cfg.HTTPTimeout = jc.HTTPTimeout.Duration
	}
}
