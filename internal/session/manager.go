package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const DefaultCookieName = "filebox_session"

type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager ties a Store to the session cookie.
type Manager struct {
	store      Store
	cookieName string
	ttl        time.Duration
	secure     bool
}

func NewManager(store Store, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.TTL <= 0 {
		opts.TTL = 12 * time.Hour
	}
	return &Manager{store: store, cookieName: opts.CookieName, ttl: opts.TTL, secure: opts.Secure}
}

// Load returns the session for r, or a fresh one if the cookie is missing,
// invalid or expired.
func (m *Manager) Load(r *http.Request) *Session {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return newSession()
	}

	sess, err := m.store.Load(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			slog.Error("session: load failed", "err", err)
		}
		return newSession()
	}
	if sess.expired(time.Now()) {
		_ = m.store.Delete(r.Context(), cookie.Value)
		return newSession()
	}
	sess.token = cookie.Value
	return sess
}

// Save persists sess, extends its expiry and writes the cookie. It must be
// called before the response body or redirect is written.
func (m *Manager) Save(w http.ResponseWriter, r *http.Request, sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	expires := time.Now().Add(m.ttl)
	sess.ExpiresAt = expires.UTC()

	token, err := m.store.Save(r.Context(), sess, m.ttl)
	if err != nil {
		return err
	}
	sess.token = token

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  expires,
		MaxAge:   int(m.ttl.Seconds()),
	})
	return nil
}

// Renew drops the stored copy of sess and gives it a new ID, keeping its
// contents. Call before Save on privilege change.
func (m *Manager) Renew(ctx context.Context, sess *Session) {
	if !sess.IsNew() {
		if err := m.store.Delete(ctx, sess.token); err != nil {
			slog.Warn("session: failed to drop old session", "err", err)
		}
	}
	sess.ID = ""
	sess.token = ""
}

// Destroy removes sess from the store and clears the cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request, sess *Session) error {
	var err error
	if !sess.IsNew() {
		err = m.store.Delete(r.Context(), sess.token)
	}
	sess.Authenticated = false
	sess.Flashes = nil
	sess.ID = ""
	sess.token = ""

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
	return err
}

// LoadSession is middleware that attaches the request's session to its context.
func (m *Manager) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.Load(r)
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), sess)))
	})
}
