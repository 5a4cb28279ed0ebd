package config

import (
	"flag"
	"os"

	"github.com/stratahr/strata-client/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-u string   base URL of the backend (default from Config)
//	-k string   anon API key
//	-e string   environment: local or production
//	-d string   SQLite DSN of the local store
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-u", "-k", "-e", "-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BackendURL, "u", cfg.BackendURL, "base URL of the backend")
	fs.StringVar(&cfg.AnonKey, "k", cfg.AnonKey, "anon API key")
	fs.StringVar(&cfg.Environment, "e", cfg.Environment, "environment: local or production")
	fs.StringVar(&cfg.StoreDSN, "d", cfg.StoreDSN, "SQLite DSN of the local store")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
