package security

import (
	"net/http"
	"testing"
	"time"

	"notekeeper/cmd/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUser = &entity.User{ID: 1234567890123, Username: "alice", Email: "alice@example.com"}

func TestSessionRoundTrip(t *testing.T) {
	issuer := NewSessionIssuer([]byte("secret"), time.Hour)

	token, err := issuer.Issue(testUser)
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "1234567890123", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID)
}

func TestSessionExpired(t *testing.T) {
	issuer := NewSessionIssuer([]byte("secret"), time.Hour)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
		UserID:           "1",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestSessionWrongSecret(t *testing.T) {
	token, err := NewSessionIssuer([]byte("right"), time.Hour).Issue(testUser)
	require.NoError(t, err)

	_, err = NewSessionIssuer([]byte("wrong"), time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionRejectsMissingExpiry(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{UserID: "1"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewSessionIssuer([]byte("secret"), time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionMalformed(t *testing.T) {
	_, err := NewSessionIssuer([]byte("secret"), time.Hour).Parse("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestDefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultSessionTTL, NewSessionIssuer([]byte("s"), 0).TTL())
}

func TestCookies(t *testing.T) {
	issuer := NewSessionIssuer([]byte("secret"), 24*time.Hour)

	cookie := issuer.Cookie("abc")
	assert.Equal(t, SessionCookieName, cookie.Name)
	assert.Equal(t, "abc", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 86400, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)

	cleared := ClearCookie()
	assert.Equal(t, SessionCookieName, cleared.Name)
	assert.Empty(t, cleared.Value)
	assert.Equal(t, -1, cleared.MaxAge)
	assert.True(t, cleared.Expires.Before(time.Now()))
	assert.Equal(t, http.SameSiteLaxMode, cleared.SameSite)
}
