// Package cli is the interactive shell for the Strata client: sign in, see
// who you are, hand off to OAuth, sign out.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/stratahr/strata-client/internal/auth"
	"github.com/stratahr/strata-client/internal/backend"
	"github.com/stratahr/strata-client/internal/config"
	"github.com/stratahr/strata-client/internal/logging"
	"github.com/stratahr/strata-client/internal/roles"
	"github.com/stratahr/strata-client/internal/session"
	"github.com/stratahr/strata-client/internal/store"
	"github.com/stratahr/strata-client/internal/store/metadata"
)

type App struct {
	config *config.Config
	auth   *auth.Service
	sync   *session.Synchronizer
	reader *bufio.Reader

	db          *sql.DB
	unsubscribe func()
}

// NewApp wires the whole client together: local store, backend client, role
// resolver, synchronizer, auth service. The synchronizer is subscribed to
// auth-state events and the startup session check runs before this returns,
// so callers may already see a provisional user.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	log := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	db, err := store.Open(ctx, c.StoreDSN)
	if err != nil {
		return nil, err
	}

	meta := metadata.NewSQLiteRepository(db)
	tokens := store.NewTokenStore(meta)
	api := backend.NewHTTPClient(c.BackendURL, c.AnonKey, c.HTTPTimeout, tokens, log.With("component", "backend"))
	resolver := roles.NewResolver(api, log.With("component", "roles"))
	cache := session.NewCache(meta, log.With("component", "cache"))
	sync := session.New(api, resolver, cache, log.With("component", "session"))
	authSvc := auth.NewService(api, tokens, cache, resolver, sync, c, log.With("component", "auth"))

	app := &App{
		config: c,
		auth:   authSvc,
		sync:   sync,
		reader: bufio.NewReader(os.Stdin),
		db:     db,
	}
	app.unsubscribe = sync.Subscribe()
	sync.Start(ctx)

	return app, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	_ = a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.sync.CurrentUser() != nil
}
