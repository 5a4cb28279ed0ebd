// Package store owns the persistent local state of the client: a small
// SQLite database holding serialized session tokens and the cached user
// snapshot under fixed keys.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/stratahr/strata-client/internal/store/migrations"
)

// Open opens (creating if needed) the local store at dsn and applies pending
// migrations. The caller is responsible for importing a sqlite driver
// registered under the name "sqlite".
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate local store: %w", err)
	}
	return db, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}
