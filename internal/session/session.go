// Package session issues the signed-in session a completed registration ends
// with. The signed token is the server-side credential; the userId and
// userName cookies are plain values the frontend reads to render the account
// header.
package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	derrors "instadoc/pkg/domain-errors"
)

// Cookie names. TokenCookie is HttpOnly; the other two are frontend-readable.
const (
	TokenCookie    = "session"
	UserIDCookie   = "userId"
	UserNameCookie = "userName"
)

// DefaultTTL matches the cookie lifetime of the account session.
const DefaultTTL = 7 * 24 * time.Hour

// Claims carried in the session token.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens with a shared HMAC key.
type Manager struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

type Option func(*Manager)

// WithTTL overrides the session lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.ttl = ttl }
}

// WithClock overrides token timestamps. For tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(signingKey []byte, opts ...Option) *Manager {
	m := &Manager{key: signingKey, ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL reports the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a session token for the identity.
func (m *Manager) Issue(identityID, displayName string) (string, error) {
	now := m.now()
	claims := Claims{
		Name: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identityID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// Parse verifies a session token and returns its claims.
func (m *Manager) Parse(token string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.key, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return Claims{}, derrors.Wrap(err, derrors.CodeUnauthorized, "invalid session")
	}
	return claims, nil
}

// SetCookies writes the session cookies a completed registration leaves in
// the browser. Only the signed token is HttpOnly; userId and userName stay
// script-readable on purpose.
func (m *Manager) SetCookies(w http.ResponseWriter, token, identityID, displayName string) {
	maxAge := int(m.ttl / time.Second)

	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     UserIDCookie,
		Value:    identityID,
		Path:     "/",
		MaxAge:   maxAge,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     UserNameCookie,
		Value:    displayName,
		Path:     "/",
		MaxAge:   maxAge,
		SameSite: http.SameSiteLaxMode,
	})
}
