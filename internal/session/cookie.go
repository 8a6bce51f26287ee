package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/filebox/internal/crypto"
)

// CookieStore keeps the whole session in the cookie, sealed with AES-GCM so
// the browser can neither read nor forge it. Deleted session IDs are kept in
// memory until their cookies would have expired, so a copied cookie stops
// working after logout. The revocation list does not survive a restart.
type CookieStore struct {
	crypter *crypto.Crypter

	mu      sync.Mutex
	revoked map[string]time.Time // session ID -> expiry of its last cookie, zero for never
}

func NewCookieStore(c *crypto.Crypter) *CookieStore {
	return &CookieStore{crypter: c, revoked: make(map[string]time.Time)}
}

func (s *CookieStore) Load(ctx context.Context, token string) (*Session, error) {
	sess, err := s.open(token)
	if err != nil {
		return nil, err
	}
	if s.isRevoked(sess.ID) {
		return nil, ErrNoSession
	}
	return sess, nil
}

func (s *CookieStore) Save(ctx context.Context, sess *Session, ttl time.Duration) (string, error) {
	raw, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	token, err := s.crypter.SealString(raw)
	if err != nil {
		return "", fmt.Errorf("seal session: %w", err)
	}
	return token, nil
}

// Delete revokes the session ID carried by token. Every cookie issued for that
// ID is refused from then on.
func (s *CookieStore) Delete(ctx context.Context, token string) error {
	sess, err := s.open(token)
	if err != nil || sess.ID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, exp := range s.revoked {
		if !exp.IsZero() && now.After(exp) {
			delete(s.revoked, id)
		}
	}

	exp := sess.ExpiresAt
	if !exp.IsZero() && !exp.After(now) {
		return nil
	}
	if prev, ok := s.revoked[sess.ID]; ok && (prev.IsZero() || prev.After(exp) && !exp.IsZero()) {
		exp = prev
	}
	s.revoked[sess.ID] = exp
	return nil
}

func (s *CookieStore) open(token string) (*Session, error) {
	raw, err := s.crypter.OpenString(token)
	if err != nil {
		return nil, ErrNoSession
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, ErrNoSession
	}
	return &sess, nil
}

func (s *CookieStore) isRevoked(id string) bool {
	if id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[id]
	return ok
}
