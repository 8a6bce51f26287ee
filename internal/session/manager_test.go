package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filebox/internal/crypto"
)

func newCookieManager(ttl time.Duration) *Manager {
	return NewManager(NewCookieStore(crypto.NewFromSecret("test-session-secret")), Options{TTL: ttl})
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

// saveAndCookie saves sess through m and returns the cookie it set.
func saveAndCookie(t *testing.T, m *Manager, sess *Session) *http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, m.Save(rr, req, sess))

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func requestWith(c *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if c != nil {
		req.AddCookie(c)
	}
	return req
}

func TestLoadWithoutCookieIsFresh(t *testing.T) {
	m := newCookieManager(time.Hour)
	sess := m.Load(requestWith(nil))
	assert.False(t, sess.Authenticated)
	assert.True(t, sess.IsNew())
}

func TestCookieStoreRoundTrip(t *testing.T) {
	m := newCookieManager(time.Hour)

	sess := m.Load(requestWith(nil))
	sess.Authenticated = true
	sess.AddFlash("welcome")
	c := saveAndCookie(t, m, sess)

	assert.Equal(t, DefaultCookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.NotContains(t, c.Value, "welcome")

	loaded := m.Load(requestWith(c))
	assert.True(t, loaded.Authenticated)
	assert.Equal(t, sess.ID, loaded.ID)
	assert.Equal(t, []string{"welcome"}, loaded.PopFlashes())
	assert.Empty(t, loaded.Flashes)
}

func TestTamperedCookieIsUnauthenticated(t *testing.T) {
	m := newCookieManager(time.Hour)

	sess := m.Load(requestWith(nil))
	sess.Authenticated = true
	c := saveAndCookie(t, m, sess)

	b := []byte(c.Value)
	if b[5] == 'A' {
		b[5] = 'B'
	} else {
		b[5] = 'A'
	}
	tampered := &http.Cookie{Name: c.Name, Value: string(b)}
	forged := &http.Cookie{Name: c.Name, Value: `eyJhdXRoZW50aWNhdGVkIjp0cnVlfQ`}

	assert.False(t, m.Load(requestWith(tampered)).Authenticated)
	assert.False(t, m.Load(requestWith(forged)).Authenticated)
}

func TestCookieFromOtherSecretIsRejected(t *testing.T) {
	other := NewManager(NewCookieStore(crypto.NewFromSecret("another-secret")), Options{})
	sess := other.Load(requestWith(nil))
	sess.Authenticated = true
	c := saveAndCookie(t, other, sess)

	assert.False(t, newCookieManager(time.Hour).Load(requestWith(c)).Authenticated)
}

func TestExpiredSessionIsFresh(t *testing.T) {
	m := newCookieManager(time.Hour)

	sess := m.Load(requestWith(nil))
	sess.Authenticated = true
	c := saveAndCookie(t, m, sess)

	// Re-seal with an expiry in the past.
	loaded := m.Load(requestWith(c))
	loaded.ExpiresAt = time.Now().Add(-time.Minute)
	token, err := m.store.Save(context.Background(), loaded, time.Hour)
	require.NoError(t, err)

	assert.False(t, m.Load(requestWith(&http.Cookie{Name: c.Name, Value: token})).Authenticated)
}

func TestDestroyClearsCookie(t *testing.T) {
	m := newCookieManager(time.Hour)

	sess := m.Load(requestWith(nil))
	sess.Authenticated = true
	c := saveAndCookie(t, m, sess)

	loaded := m.Load(requestWith(c))
	rr := httptest.NewRecorder()
	require.NoError(t, m.Destroy(rr, requestWith(c), loaded))

	assert.False(t, loaded.Authenticated)
	cleared := rr.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, "", cleared[0].Value)
	assert.Less(t, cleared[0].MaxAge, 0)
}

func TestDestroyRevokesCopiedCookie(t *testing.T) {
	m := newCookieManager(time.Hour)

	sess := m.Load(requestWith(nil))
	sess.Authenticated = true
	c := saveAndCookie(t, m, sess)

	loaded := m.Load(requestWith(c))
	require.NoError(t, m.Destroy(httptest.NewRecorder(), requestWith(c), loaded))

	replayed := m.Load(requestWith(c))
	assert.False(t, replayed.Authenticated)
	assert.True(t, replayed.IsNew())
}

func TestRenewRevokesPreviousCookie(t *testing.T) {
	m := newCookieManager(time.Hour)

	sess := m.Load(requestWith(nil))
	sess.AddFlash("Incorrect password.")
	before := saveAndCookie(t, m, sess)

	loaded := m.Load(requestWith(before))
	m.Renew(context.Background(), loaded)
	loaded.Authenticated = true
	after := saveAndCookie(t, m, loaded)

	assert.True(t, m.Load(requestWith(after)).Authenticated)
	assert.True(t, m.Load(requestWith(before)).IsNew())
}

func TestCookieStorePrunesExpiredRevocations(t *testing.T) {
	store := NewCookieStore(crypto.NewFromSecret("test-session-secret"))
	store.revoked["stale"] = time.Now().Add(-time.Minute)

	sess := &Session{ID: "current", ExpiresAt: time.Now().Add(time.Hour)}
	token, err := store.Save(context.Background(), sess, time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Delete(context.Background(), token))

	assert.NotContains(t, store.revoked, "stale")
	assert.Contains(t, store.revoked, "current")

	_, err = store.Load(context.Background(), token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestFlashesAreCapped(t *testing.T) {
	sess := newSession()
	for i := 0; i < maxFlashes+3; i++ {
		sess.AddFlash("msg")
	}
	assert.Len(t, sess.Flashes, maxFlashes)

	long := make([]byte, maxFlashSize*2)
	for i := range long {
		long[i] = 'a'
	}
	sess.AddFlash(string(long))
	assert.Len(t, sess.Flashes[len(sess.Flashes)-1], maxFlashSize)
}

func TestLoadSessionMiddleware(t *testing.T) {
	m := newCookieManager(time.Hour)
	sess := m.Load(requestWith(nil))
	sess.Authenticated = true
	c := saveAndCookie(t, m, sess)

	var seen *Session
	h := m.LoadSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), requestWith(c))

	require.NotNil(t, seen)
	assert.True(t, seen.Authenticated)
}

func TestFromContextWithoutSession(t *testing.T) {
	s := FromContext(context.Background())
	require.NotNil(t, s)
	assert.False(t, s.Authenticated)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr, client := newTestRedis(t)
	m := NewManager(NewRedisStore(client, ""), Options{TTL: time.Hour})

	sess := m.Load(requestWith(nil))
	sess.Authenticated = true
	c := saveAndCookie(t, m, sess)

	assert.Equal(t, sess.ID, c.Value)
	assert.True(t, mr.Exists(defaultKeyPrefix+sess.ID))

	loaded := m.Load(requestWith(c))
	assert.True(t, loaded.Authenticated)
}

func TestRedisStoreExpires(t *testing.T) {
	mr, client := newTestRedis(t)
	m := NewManager(NewRedisStore(client, "test:"), Options{TTL: time.Minute})

	sess := m.Load(requestWith(nil))
	sess.Authenticated = true
	c := saveAndCookie(t, m, sess)

	mr.FastForward(2 * time.Minute)
	assert.False(t, m.Load(requestWith(c)).Authenticated)
}

func TestRedisStoreDestroyAndRenew(t *testing.T) {
	mr, client := newTestRedis(t)
	m := NewManager(NewRedisStore(client, ""), Options{TTL: time.Hour})

	sess := m.Load(requestWith(nil))
	c := saveAndCookie(t, m, sess)
	oldID := sess.ID

	loaded := m.Load(requestWith(c))
	m.Renew(context.Background(), loaded)
	assert.False(t, mr.Exists(defaultKeyPrefix+oldID))

	loaded.Authenticated = true
	renewed := saveAndCookie(t, m, loaded)
	assert.NotEqual(t, oldID, renewed.Value)

	// The pre-login cookie no longer resolves.
	assert.False(t, m.Load(requestWith(c)).Authenticated)

	rr := httptest.NewRecorder()
	current := m.Load(requestWith(renewed))
	require.NoError(t, m.Destroy(rr, requestWith(renewed), current))
	assert.False(t, mr.Exists(defaultKeyPrefix+renewed.Value))
}
