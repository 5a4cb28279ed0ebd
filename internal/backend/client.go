// Package backend wraps the hosted backend-as-a-service: GoTrue-style auth
// endpoints and a PostgREST-style tabular query surface. The rest of the
// client treats it as an opaque service; decision logic lives elsewhere.
package backend

import "context"

// Row is a single decoded result row. Result elements may also be plain
// strings depending on the source shape; see QueryBuilder.Do.
type Row = map[string]any

// SignUpOptions carries optional parameters for SignUp.
type SignUpOptions struct {
	// EmailRedirectTo is where the confirmation email link lands.
	EmailRedirectTo string
}

// OAuthOptions carries optional parameters for SignInWithOAuth.
type OAuthOptions struct {
	RedirectTo string
}

// ResetPasswordOptions carries optional parameters for ResetPasswordForEmail.
type ResetPasswordOptions struct {
	RedirectTo string
}

// AuthStateHandler receives auth lifecycle notifications. session is nil for
// events that end a session.
type AuthStateHandler func(event AuthEvent, session *Session)

// QueryExecutor executes queries assembled by a QueryBuilder. Implemented by
// the HTTP client and by test fakes.
type QueryExecutor interface {
	ExecSelect(ctx context.Context, q Query) ([]any, error)
	ExecInsert(ctx context.Context, table string, rows []Row) error
}

// Client is the full backend surface consumed by the rest of the module.
//
// Contract:
//   - GetSession returns the current session, restoring and refreshing it
//     from the local token record when needed; (nil, nil) when no session.
//   - SignInWithPassword exchanges credentials for a session and persists
//     the raw tokens locally.
//   - SignUp registers a new account; confirmation is out-of-band.
//   - SignOut revokes the session server-side and clears local tokens.
//   - SignInWithOAuth returns the provider redirect URL to hand off to.
//   - ResetPasswordForEmail requests a password-reset email.
//   - OnAuthStateChange subscribes to auth lifecycle events; the returned
//     func unsubscribes.
//   - From starts a tabular query against the given table.
type Client interface {
	QueryExecutor

	GetSession(ctx context.Context) (*Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string, opts SignUpOptions) error
	SignOut(ctx context.Context) error
	SignInWithOAuth(ctx context.Context, provider string, opts OAuthOptions) (string, error)
	ResetPasswordForEmail(ctx context.Context, email string, opts ResetPasswordOptions) error
	OnAuthStateChange(handler AuthStateHandler) (unsubscribe func())
	From(table string) *QueryBuilder
}

// TokenRecord is the raw session token state persisted locally, exactly as
// received from the backend.
type TokenRecord struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// TokenStore persists the TokenRecord between runs.
//
// Load returns (nil, nil) when nothing is stored.
type TokenStore interface {
	Load(ctx context.Context) (*TokenRecord, error)
	Save(ctx context.Context, rec *TokenRecord) error
	Clear(ctx context.Context) error
}
