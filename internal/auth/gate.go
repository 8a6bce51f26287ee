// Package auth gates the application behind one shared secret.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/filebox/internal/session"
)

// Gate checks the shared secret and flips the session's authenticated flag.
// Only a bcrypt hash of the secret is kept.
type Gate struct {
	hash string
}

// NewGate hashes secret for later comparison. An empty secret is refused.
func NewGate(secret string) (*Gate, error) {
	return newGate(secret, Hash)
}

func newGate(secret string, hashFn func(string) (string, error)) (*Gate, error) {
	if secret == "" {
		return nil, errors.New("auth: shared secret must not be empty")
	}
	hash, err := hashFn(secret)
	if err != nil {
		return nil, fmt.Errorf("auth: hash shared secret: %w", err)
	}
	return &Gate{hash: hash}, nil
}

// NewGateFromHash uses an existing bcrypt hash of the shared secret.
func NewGateFromHash(hash string) (*Gate, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("auth: invalid shared secret hash: %w", err)
	}
	return &Gate{hash: hash}, nil
}

// IsAuthenticated reports whether sess has passed the gate.
func (g *Gate) IsAuthenticated(sess *session.Session) bool {
	return sess != nil && sess.Authenticated
}

// Authenticate marks sess authenticated if provided matches the shared secret.
// On mismatch the session is left untouched.
func (g *Gate) Authenticate(sess *session.Session, provided string) bool {
	if provided == "" || !Verify(g.hash, provided) {
		return false
	}
	sess.Authenticated = true
	return true
}
