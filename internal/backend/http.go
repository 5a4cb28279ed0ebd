package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/stratahr/strata-client/internal/logging"
)

// HTTPClient talks to the hosted backend over its REST surface: auth under
// /auth/v1, tabular queries under /rest/v1. It keeps the active session in
// memory, mirrors its raw tokens into a TokenStore, and emits auth-state
// events on its own lifecycle transitions.
type HTTPClient struct {
	baseURL string
	anonKey string
	http    *http.Client
	tokens  TokenStore
	log     logging.Logger

	events broadcaster

	mu      sync.Mutex
	session *Session
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL, anonKey string, timeout time.Duration, tokens TokenStore, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log,
	}
}

// tokenResponse is the backend's token-grant payload.
type tokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
	ExpiresAt    int64       `json:"expires_at"`
	User         SessionUser `json:"user"`
}

func (c *HTTPClient) currentSession() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

func (c *HTTPClient) setSession(s *Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
}

// GetSession returns the active session, rebuilding it from the persisted
// token record and refreshing an expired access token when needed.
// Returns (nil, nil) when there is no session to restore.
func (c *HTTPClient) GetSession(ctx context.Context) (*Session, error) {
	sess := c.currentSession()
	if sess == nil {
		rec, err := c.tokens.Load(ctx)
		if err != nil {
			c.log.Warn(ctx, "stored session tokens unreadable, discarding", "error", err)
			_ = c.tokens.Clear(ctx)
			return nil, nil
		}
		if rec == nil {
			return nil, nil
		}
		sess, err = sessionFromRecord(rec)
		if err != nil {
			c.log.Warn(ctx, "stored session tokens invalid, discarding", "error", err)
			_ = c.tokens.Clear(ctx)
			return nil, nil
		}
	}

	if sess.Expired(time.Now()) {
		refreshed, err := c.refresh(ctx, sess.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("refresh session: %w", err)
		}
		return refreshed, nil
	}

	c.setSession(sess)
	return sess, nil
}

func (c *HTTPClient) refresh(ctx context.Context, refreshToken string) (*Session, error) {
	var tr tokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/v1/token",
		url.Values{"grant_type": {"refresh_token"}},
		map[string]string{"refresh_token": refreshToken}, c.anonKey, &tr)
	if err != nil {
		return nil, err
	}

	sess, err := c.adoptTokenResponse(ctx, &tr)
	if err != nil {
		return nil, err
	}
	c.events.emit(EventTokenRefreshed, sess)
	return sess, nil
}

// adoptTokenResponse turns a grant response into the active session and
// persists its raw tokens.
func (c *HTTPClient) adoptTokenResponse(ctx context.Context, tr *tokenResponse) (*Session, error) {
	expiresAt := tr.ExpiresAt
	if expiresAt == 0 {
		expiresAt = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second).Unix()
	}

	user := tr.User
	if user.ID == "" {
		parsed, err := userFromAccessToken(tr.AccessToken)
		if err != nil {
			return nil, err
		}
		user = parsed
	}

	sess := &Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    time.Unix(expiresAt, 0),
		User:         user,
	}
	c.setSession(sess)

	rec := &TokenRecord{AccessToken: sess.AccessToken, RefreshToken: sess.RefreshToken, ExpiresAt: expiresAt}
	if err := c.tokens.Save(ctx, rec); err != nil {
		c.log.Warn(ctx, "failed to persist session tokens", "error", err)
	}
	return sess, nil
}

func (c *HTTPClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var tr tokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/v1/token",
		url.Values{"grant_type": {"password"}},
		map[string]string{"email": email, "password": password}, c.anonKey, &tr)
	if err != nil {
		return nil, err
	}

	sess, err := c.adoptTokenResponse(ctx, &tr)
	if err != nil {
		return nil, err
	}
	c.events.emit(EventSignedIn, sess)
	return sess, nil
}

func (c *HTTPClient) SignUp(ctx context.Context, email, password string, opts SignUpOptions) error {
	q := url.Values{}
	if opts.EmailRedirectTo != "" {
		q.Set("redirect_to", opts.EmailRedirectTo)
	}
	return c.doJSON(ctx, http.MethodPost, "/auth/v1/signup", q,
		map[string]string{"email": email, "password": password}, c.anonKey, nil)
}

// SignOut revokes the session server-side (best effort) and always discards
// local session state. No-op when there is no session at all.
func (c *HTTPClient) SignOut(ctx context.Context) error {
	sess := c.currentSession()
	if sess == nil {
		if rec, err := c.tokens.Load(ctx); err != nil || rec == nil {
			return nil
		}
		restored, _ := c.GetSession(ctx)
		sess = restored
	}

	var revokeErr error
	if sess != nil {
		revokeErr = c.doJSON(ctx, http.MethodPost, "/auth/v1/logout", nil, nil, sess.AccessToken, nil)
	}

	c.setSession(nil)
	if err := c.tokens.Clear(ctx); err != nil {
		c.log.Warn(ctx, "failed to clear session tokens", "error", err)
	}
	c.events.emit(EventSignedOut, nil)
	return revokeErr
}

// SignInWithOAuth builds the provider authorization URL the caller should
// redirect the user to. No request is made here; the flow continues in the
// user agent.
func (c *HTTPClient) SignInWithOAuth(ctx context.Context, provider string, opts OAuthOptions) (string, error) {
	if provider == "" {
		return "", fmt.Errorf("oauth provider is required")
	}
	q := url.Values{"provider": {provider}}
	if opts.RedirectTo != "" {
		q.Set("redirect_to", opts.RedirectTo)
	}
	return c.baseURL + "/auth/v1/authorize?" + q.Encode(), nil
}

func (c *HTTPClient) ResetPasswordForEmail(ctx context.Context, email string, opts ResetPasswordOptions) error {
	q := url.Values{}
	if opts.RedirectTo != "" {
		q.Set("redirect_to", opts.RedirectTo)
	}
	return c.doJSON(ctx, http.MethodPost, "/auth/v1/recover", q,
		map[string]string{"email": email}, c.anonKey, nil)
}

func (c *HTTPClient) OnAuthStateChange(handler AuthStateHandler) func() {
	return c.events.subscribe(handler)
}

func (c *HTTPClient) From(table string) *QueryBuilder {
	return NewQuery(c, table)
}

// ExecSelect runs a select against /rest/v1. Queries run with the session's
// access token when one is active, so row-level policies apply to the user.
func (c *HTTPClient) ExecSelect(ctx context.Context, q Query) ([]any, error) {
	vals := url.Values{"select": {q.Columns}}
	for _, f := range q.Filters {
		vals.Set(f.Column, "eq."+f.Value)
	}

	var rows []any
	if err := c.doJSON(ctx, http.MethodGet, "/rest/v1/"+q.Table, vals, nil, c.queryToken(), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *HTTPClient) ExecInsert(ctx context.Context, table string, rows []Row) error {
	return c.doJSON(ctx, http.MethodPost, "/rest/v1/"+table, nil, rows, c.queryToken(), nil)
}

func (c *HTTPClient) queryToken() string {
	if sess := c.currentSession(); sess != nil {
		return sess.AccessToken
	}
	return c.anonKey
}

// doJSON performs one round-trip: JSON request body (if any), bearer auth,
// JSON response decoded into out (if non-nil). Non-2xx responses become
// *APIError; 401 additionally matches ErrUnauthorized.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, query url.Values, body any, bearer string, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost && strings.HasPrefix(path, "/rest/") {
		req.Header.Set("Prefer", "return=minimal")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var payload struct {
		Msg         string `json:"msg"`
		Message     string `json:"message"`
		Description string `json:"error_description"`
		ErrorField  string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(raw, &payload)

	msg := payload.Msg
	for _, alt := range []string{payload.Message, payload.Description, payload.ErrorField} {
		if msg == "" {
			msg = alt
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}

	apiErr := &APIError{Status: resp.StatusCode, Message: msg}
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr)
	}
	return apiErr
}
