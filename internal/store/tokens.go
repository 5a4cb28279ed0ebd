package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stratahr/strata-client/internal/backend"
	"github.com/stratahr/strata-client/internal/store/metadata"
)

// sessionTokensKey is the fixed metadata key holding the serialized raw
// session tokens.
const sessionTokensKey = "session"

// TokenStore persists the backend's raw session tokens in the local store.
// It satisfies backend.TokenStore.
type TokenStore struct {
	meta metadata.Repository
}

func NewTokenStore(meta metadata.Repository) *TokenStore {
	return &TokenStore{meta: meta}
}

var _ backend.TokenStore = (*TokenStore)(nil)

func (s *TokenStore) Load(ctx context.Context) (*backend.TokenRecord, error) {
	raw, err := s.meta.Get(ctx, sessionTokensKey)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var rec backend.TokenRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode session tokens: %w", err)
	}
	if rec.AccessToken == "" {
		return nil, errors.New("stored session tokens carry no access token")
	}
	return &rec, nil
}

func (s *TokenStore) Save(ctx context.Context, rec *backend.TokenRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session tokens: %w", err)
	}
	return s.meta.Set(ctx, sessionTokensKey, raw)
}

func (s *TokenStore) Clear(ctx context.Context) error {
	return s.meta.Delete(ctx, sessionTokensKey)
}
