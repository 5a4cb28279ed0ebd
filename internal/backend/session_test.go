package backend

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeAccessToken(t *testing.T, sub, email string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestUserFromAccessToken(t *testing.T) {
	tok := makeAccessToken(t, "u-1", "a@b.c")

	user, err := userFromAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, SessionUser{ID: "u-1", Email: "a@b.c"}, user)
}

func TestUserFromAccessToken_Garbage(t *testing.T) {
	_, err := userFromAccessToken("not-a-jwt")
	assert.Error(t, err)

	noSub, signErr := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "a@b.c"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, signErr)
	_, err = userFromAccessToken(noSub)
	assert.Error(t, err, "a token without a subject is unusable")
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()

	fresh := &Session{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, fresh.Expired(now))

	past := &Session{ExpiresAt: now.Add(-time.Minute)}
	assert.True(t, past.Expired(now))

	// within the refresh margin counts as expired
	closeToExpiry := &Session{ExpiresAt: now.Add(10 * time.Second)}
	assert.True(t, closeToExpiry.Expired(now))

	noExpiry := &Session{}
	assert.False(t, noExpiry.Expired(now))
}
