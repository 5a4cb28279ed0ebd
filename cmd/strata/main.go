package main

import (
	"context"
	"log"

	"github.com/stratahr/strata-client/internal/cli"
	"github.com/stratahr/strata-client/internal/config"

	_ "modernc.org/sqlite"
)

func main() {
	cfg := config.LoadConfig()

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(context.Background())
}
