// Package admin authorizes privileged operations. There is exactly one admin
// principal system-wide; a session is nothing but a TTL-bearing key whose
// existence means "authenticated".
package admin

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"boda-web/internal/apperr"
	"boda-web/internal/kv"
)

const (
	sessionKeyPrefix = "session:"
	sessionTTL       = 24 * time.Hour
	tokenBytes       = 32
)

// SessionStore mints and validates admin session tokens.
type SessionStore struct {
	kv kv.Store

	// adminKey is compared in constant time against login candidates. When
	// adminKeyHash is set it takes precedence and the candidate is checked
	// with bcrypt instead, leaving no plaintext secret in the environment.
	adminKey     string
	adminKeyHash string
}

func NewSessionStore(store kv.Store, adminKey, adminKeyHash string) *SessionStore {
	return &SessionStore{kv: store, adminKey: adminKey, adminKeyHash: adminKeyHash}
}

// Login checks the candidate key and, on success, mints a 256-bit random
// session token stored with a 24-hour TTL. The caller sets it as an HTTP-only
// cookie.
func (s *SessionStore) Login(ctx context.Context, candidate string) (string, error) {
	if !s.keyMatches(candidate) {
		return "", apperr.ErrUnauthorized
	}

	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	token := hex.EncodeToString(buf)

	if err := s.kv.SetTTL(ctx, sessionKeyPrefix+token, []byte("1"), sessionTTL); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Validate reports whether the token names a live session and, if so, slides
// its expiration forward another 24 hours.
func (s *SessionStore) Validate(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	ok, err := s.kv.Exists(ctx, sessionKeyPrefix+token)
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	if !ok {
		return false, nil
	}
	if err := s.kv.Expire(ctx, sessionKeyPrefix+token, sessionTTL); err != nil {
		return false, fmt.Errorf("refresh session: %w", err)
	}
	return true, nil
}

// Logout removes the session. Deleting an unknown token is a no-op.
func (s *SessionStore) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.kv.Del(ctx, sessionKeyPrefix+token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) keyMatches(candidate string) bool {
	if s.adminKeyHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.adminKeyHash), []byte(candidate)) == nil
	}
	if s.adminKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.adminKey), []byte(candidate)) == 1
}
