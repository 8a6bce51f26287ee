// Package session holds the per-browser session object and the stores that
// persist it between requests.
package session

import (
	"context"
	"errors"
	"time"
)

const (
	maxFlashes   = 5
	maxFlashSize = 512
)

// ErrNoSession is returned by a Store when the token does not resolve to a
// live session.
var ErrNoSession = errors.New("session: not found")

// Session is the state carried for one browser. It is created on first
// request, marked authenticated on login and destroyed on logout or expiry.
type Session struct {
	ID            string    `json:"id"`
	Authenticated bool      `json:"authenticated"`
	Flashes       []string  `json:"flashes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	ExpiresAt     time.Time `json:"expiresAt"`

	// token is the cookie value this session was loaded from.
	token string
}

func newSession() *Session {
	return &Session{CreatedAt: time.Now().UTC()}
}

// IsNew reports whether the session has never been saved.
func (s *Session) IsNew() bool {
	return s.token == ""
}

// AddFlash queues a one-shot message for the next rendered page.
func (s *Session) AddFlash(msg string) {
	if len(msg) > maxFlashSize {
		msg = msg[:maxFlashSize]
	}
	s.Flashes = append(s.Flashes, msg)
	if len(s.Flashes) > maxFlashes {
		s.Flashes = s.Flashes[len(s.Flashes)-maxFlashes:]
	}
}

// PopFlashes returns the queued messages and clears them.
func (s *Session) PopFlashes() []string {
	f := s.Flashes
	s.Flashes = nil
	return f
}

func (s *Session) expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Store persists sessions. The token returned by Save is what the browser
// presents back in its cookie.
type Store interface {
	Load(ctx context.Context, token string) (*Session, error)
	Save(ctx context.Context, s *Session, ttl time.Duration) (string, error)
	Delete(ctx context.Context, token string) error
}

type contextKey string

const contextKeySession contextKey = "session"

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKeySession, s)
}

// FromContext returns the session attached by Manager.LoadSession. It returns
// a fresh unauthenticated session if none is attached.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(contextKeySession).(*Session); ok && s != nil {
		return s
	}
	return newSession()
}
