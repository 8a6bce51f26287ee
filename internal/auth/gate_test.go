package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/filebox/internal/session"
)

func newTestGate(t *testing.T, secret string) *Gate {
	t.Helper()
	g, err := newGate(secret, func(s string) (string, error) {
		return HashCost(s, bcrypt.MinCost)
	})
	require.NoError(t, err)
	return g
}

func TestAuthenticateCorrectSecret(t *testing.T) {
	g := newTestGate(t, "Turismo")
	sess := &session.Session{}

	assert.True(t, g.Authenticate(sess, "Turismo"))
	assert.True(t, g.IsAuthenticated(sess))

	// Repeated correct submissions are harmless.
	assert.True(t, g.Authenticate(sess, "Turismo"))
	assert.True(t, sess.Authenticated)
}

func TestAuthenticateWrongSecret(t *testing.T) {
	g := newTestGate(t, "Turismo")

	for _, attempt := range []string{"", "turismo", "Turismo ", "Turism", "password"} {
		sess := &session.Session{}
		assert.False(t, g.Authenticate(sess, attempt), attempt)
		assert.False(t, g.IsAuthenticated(sess), attempt)
	}
}

func TestNewGateRejectsEmptySecret(t *testing.T) {
	_, err := NewGate("")
	assert.Error(t, err)
}

func TestNewGateFromHash(t *testing.T) {
	hash, err := HashCost("Turismo", bcrypt.MinCost)
	require.NoError(t, err)

	g, err := NewGateFromHash(hash)
	require.NoError(t, err)

	sess := &session.Session{}
	assert.True(t, g.Authenticate(sess, "Turismo"))

	_, err = NewGateFromHash("not-a-hash")
	assert.Error(t, err)
}

func TestIsAuthenticatedNilSession(t *testing.T) {
	g := newTestGate(t, "x")
	assert.False(t, g.IsAuthenticated(nil))
}

func TestNewGateHashesAtDefaultCost(t *testing.T) {
	g, err := NewGate("Turismo")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(g.hash))
	require.NoError(t, err)
	assert.Equal(t, bcryptCost, cost)
	assert.NotContains(t, g.hash, "Turismo")

	_, err = NewGate("")
	assert.Error(t, err)
}
