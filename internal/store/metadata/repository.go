// Package metadata is a key-value repository over the local store's
// metadata table. Values are opaque blobs; callers own serialization.
package metadata

import "context"

type Repository interface {
	// Get returns the value under key, or (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
