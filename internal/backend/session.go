package backend

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionUser is the identity the backend attaches to a session.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the backend-owned session construct. The module never builds
// one from scratch, only observes what the backend returns.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         SessionUser
}

// Expired reports whether the access token is past (or within a small margin
// of) its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt.Add(-expiryMargin))
}

const expiryMargin = 30 * time.Second

// tokenClaims is the subset of access-token claims the client reads.
type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// userFromAccessToken recovers the session identity from a persisted access
// token. The signature is NOT verified here: verification is the backend's
// job, the client only needs the claims it issued.
func userFromAccessToken(token string) (SessionUser, error) {
	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return SessionUser{}, fmt.Errorf("parse access token: %w", err)
	}
	if claims.Subject == "" {
		return SessionUser{}, fmt.Errorf("access token carries no subject")
	}
	return SessionUser{ID: claims.Subject, Email: claims.Email}, nil
}

// sessionFromRecord rebuilds a Session from the persisted token record.
func sessionFromRecord(rec *TokenRecord) (*Session, error) {
	user, err := userFromAccessToken(rec.AccessToken)
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken:  rec.AccessToken,
		RefreshToken: rec.RefreshToken,
		ExpiresAt:    time.Unix(rec.ExpiresAt, 0),
		User:         user,
	}, nil
}
