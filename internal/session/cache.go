package session

import (
	"context"
	"encoding/json"

	"github.com/stratahr/strata-client/internal/logging"
	"github.com/stratahr/strata-client/internal/store/metadata"
)

// snapshotKey is the fixed metadata key holding the serialized user snapshot.
const snapshotKey = "current_user"

// Cache persists the last known user snapshot so a restarting client can
// present a plausible role before the authoritative resolution lands.
// All failures are logged and absorbed; a broken cache must never take the
// synchronizer down.
type Cache struct {
	meta metadata.Repository
	log  logging.Logger
}

func NewCache(meta metadata.Repository, log logging.Logger) *Cache {
	return &Cache{meta: meta, log: log}
}

// Read returns the cached snapshot, or nil when nothing usable is stored.
// Absent, malformed, and role-less snapshots all read as "nothing cached".
func (c *Cache) Read(ctx context.Context) *User {
	raw, err := c.meta.Get(ctx, snapshotKey)
	if err != nil {
		c.log.Warn(ctx, "user snapshot read failed", "error", err)
		return nil
	}
	if raw == nil {
		return nil
	}

	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		c.log.Warn(ctx, "user snapshot unreadable, ignoring", "error", err)
		return nil
	}
	if len(u.Roles) == 0 {
		c.log.Warn(ctx, "user snapshot has no roles, ignoring")
		return nil
	}
	return &u
}

// Write replaces the cached snapshot wholesale. Snapshots without roles are
// refused to preserve the cache invariant.
func (c *Cache) Write(ctx context.Context, u *User) {
	if u == nil || len(u.Roles) == 0 {
		return
	}
	raw, err := json.Marshal(u)
	if err != nil {
		c.log.Warn(ctx, "user snapshot encode failed", "error", err)
		return
	}
	if err := c.meta.Set(ctx, snapshotKey, raw); err != nil {
		c.log.Warn(ctx, "user snapshot write failed", "error", err)
	}
}

func (c *Cache) Clear(ctx context.Context) {
	if err := c.meta.Delete(ctx, snapshotKey); err != nil {
		c.log.Warn(ctx, "user snapshot clear failed", "error", err)
	}
}
