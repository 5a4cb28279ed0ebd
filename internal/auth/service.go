// Package auth exposes the user-facing authentication operations: sign-in,
// sign-up, sign-out, the OAuth handoff, and password reset. Each one is a
// thin wrapper over the backend client; the interesting state handling lives
// in the session synchronizer.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stratahr/strata-client/internal/backend"
	"github.com/stratahr/strata-client/internal/config"
	"github.com/stratahr/strata-client/internal/logging"
	"github.com/stratahr/strata-client/internal/session"
	"github.com/stratahr/strata-client/internal/shared"
)

const minPasswordLen = 6

const prefetchTimeout = 15 * time.Second

// RoleResolver yields the authoritative role set and organization for a
// user; both calls are total.
type RoleResolver interface {
	Resolve(ctx context.Context, userID string) []string
	OrganizationID(ctx context.Context, userID string) string
}

// CurrentUserClearer drops the process-wide current user. Satisfied by
// *session.Synchronizer.
type CurrentUserClearer interface {
	Reset()
}

// Service implements the auth operations exposed to the application.
type Service struct {
	backend  backend.Client
	tokens   backend.TokenStore
	cache    *session.Cache
	resolver RoleResolver
	users    CurrentUserClearer
	cfg      *config.Config
	log      logging.Logger
}

func NewService(b backend.Client, tokens backend.TokenStore, cache *session.Cache,
	resolver RoleResolver, users CurrentUserClearer, cfg *config.Config, log logging.Logger) *Service {
	return &Service{backend: b, tokens: tokens, cache: cache, resolver: resolver, users: users, cfg: cfg, log: log}
}

// SignIn authenticates with email/password. Stale local state and any
// pre-existing backend session are cleared first so the new session starts
// clean. On success the user's roles are pre-fetched into the snapshot cache
// in the background; the current-user update itself rides on the sign-in
// auth-state event, not on this call.
func (s *Service) SignIn(ctx context.Context, email, password string) error {
	s.clearLocal(ctx)
	if err := s.backend.SignOut(ctx); err != nil {
		s.log.Debug(ctx, "pre-sign-in session clear failed", "error", err)
	}

	sess, err := s.backend.SignInWithPassword(ctx, email, password)
	if err != nil {
		s.log.Error(ctx, "sign-in failed", "email", email, "error", err)
		return fmt.Errorf("sign in: %w", err)
	}

	go s.prefetchRoles(sess.User)
	return nil
}

// SignUp registers a new account. Credentials are validated locally before
// the backend is involved; confirmation happens out-of-band via the email
// link, so no local session or cache entry is created here.
func (s *Service) SignUp(ctx context.Context, email, password string) error {
	if !strings.Contains(email, "@") {
		return shared.ErrorInvalidEmailFormat
	}
	if len(password) < minPasswordLen {
		return shared.ErrorInvalidPasswordFormat
	}

	opts := backend.SignUpOptions{EmailRedirectTo: s.cfg.SiteOrigin() + "/auth/callback"}
	if err := s.backend.SignUp(ctx, email, password, opts); err != nil {
		s.log.Error(ctx, "sign-up failed", "email", email, "error", err)
		return fmt.Errorf("sign up: %w", err)
	}
	return nil
}

// SignOut never fails observably: every internal error is swallowed so the
// caller is always left signed out locally, current user included.
func (s *Service) SignOut(ctx context.Context) {
	s.clearLocal(ctx)

	if sess, err := s.backend.GetSession(ctx); err == nil && sess != nil {
		if err := s.backend.SignOut(ctx); err != nil {
			s.log.Warn(ctx, "backend sign-out failed", "error", err)
		}
	}

	s.users.Reset()
}

// SignInWithGoogle clears local state and returns the provider redirect URL
// the caller should hand the user agent to.
func (s *Service) SignInWithGoogle(ctx context.Context) (string, error) {
	s.clearLocal(ctx)
	if err := s.backend.SignOut(ctx); err != nil {
		s.log.Debug(ctx, "pre-oauth session clear failed", "error", err)
	}

	redirectURL, err := s.backend.SignInWithOAuth(ctx, "google",
		backend.OAuthOptions{RedirectTo: s.cfg.SiteOrigin() + "/auth/callback"})
	if err != nil {
		s.log.Error(ctx, "oauth start failed", "error", err)
		return "", fmt.Errorf("start oauth: %w", err)
	}
	return redirectURL, nil
}

// ResetPassword asks the backend to send a password-reset email.
func (s *Service) ResetPassword(ctx context.Context, email string) error {
	opts := backend.ResetPasswordOptions{RedirectTo: s.cfg.SiteOrigin() + "/reset-password"}
	if err := s.backend.ResetPasswordForEmail(ctx, email, opts); err != nil {
		s.log.Error(ctx, "password reset request failed", "email", email, "error", err)
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

func (s *Service) clearLocal(ctx context.Context) {
	if err := s.tokens.Clear(ctx); err != nil {
		s.log.Warn(ctx, "failed to clear local tokens", "error", err)
	}
	s.cache.Clear(ctx)
}

// prefetchRoles warms the snapshot cache after a successful sign-in. It runs
// detached: failures are logged and never surface to the sign-in caller.
func (s *Service) prefetchRoles(su backend.SessionUser) {
	ctx, cancel := context.WithTimeout(context.Background(), prefetchTimeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			s.log.Error(ctx, "role pre-fetch panicked", "user_id", su.ID, "panic", p)
		}
	}()

	resolved := s.resolver.Resolve(ctx, su.ID)
	org := s.resolver.OrganizationID(ctx, su.ID)
	s.cache.Write(ctx, &session.User{ID: su.ID, Email: su.Email, Roles: resolved, OrganizationID: org})
}
