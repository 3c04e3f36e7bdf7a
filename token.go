package scoreline

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenStore holds the bearer token attached to outgoing requests. It is
// safe for concurrent use. The transport clears it when the service answers
// 401, independent of how the caller handles the error.
type TokenStore struct {
	mu    sync.RWMutex
	token string
	now   func() time.Time
}

// NewTokenStore returns an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{now: time.Now}
}

// Set replaces the stored token.
func (s *TokenStore) Set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Get returns the stored token, or "" when none is set. Tokens that parse as
// JWTs with an expiry in the past are dropped instead of being sent, saving
// a round trip that is guaranteed to come back 401. Signature validation is
// the server's job; the parse here is unverified by design of the client.
func (s *TokenStore) Get() string {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token == "" || !s.expired(token) {
		return token
	}

	s.mu.Lock()
	if s.token == token {
		s.token = ""
	}
	s.mu.Unlock()
	return ""
}

// Clear drops the stored token.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

func (s *TokenStore) expired(token string) bool {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		// Opaque (non-JWT) tokens pass through untouched.
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(s.now())
}
