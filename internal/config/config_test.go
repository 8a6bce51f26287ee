package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedVars = []string{
	"PORT", "ENV", "UPLOAD_DIR", "SHARED_SECRET", "SHARED_SECRET_HASH", "SESSION_SECRET",
	"SESSION_TTL", "SECURE_COOKIES", "REDIS_URL", "MAX_UPLOAD_SIZE_MB", "STRIP_IMAGE_METADATA",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS", "SMTP_FROM_NAME",
	"ATTACHMENT_DIR", "ATTACHMENT_FILES",
}

// clearEnv blanks every variable Load reads; blank counts as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedVars {
		t.Setenv(k, "")
	}
}

func setRequired(t *testing.T) {
	t.Helper()
	clearEnv(t)
	t.Setenv("SHARED_SECRET", "Turismo")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "static/uploads", cfg.UploadDir)
	assert.Equal(t, "static/attachments", cfg.AttachmentDir)
	assert.Equal(t, []string{"document.pdf", "presentation.pdf"}, cfg.AttachmentFiles)
	assert.Equal(t, 465, cfg.SMTPPort)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTPHost)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, int64(200<<20), cfg.MaxUploadBytes())
	assert.False(t, cfg.SecureCookies)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFromEnvAndFlags(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "8081")
	t.Setenv("SMTP_PORT", "587")
	t.Setenv("SECURE_COOKIES", "true")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("ATTACHMENT_FILES", " a.pdf , b.jpg ")

	cfg, err := Load([]string{"-port", "9090", "-env", "production"})
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.True(t, cfg.SecureCookies)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"a.pdf", "b.jpg"}, cfg.AttachmentFiles)
}

func TestSecureCookiesFollowEnv(t *testing.T) {
	setRequired(t)

	cfg, err := Load([]string{"-env", "production"})
	require.NoError(t, err)
	assert.True(t, cfg.SecureCookies)

	t.Setenv("SECURE_COOKIES", "false")
	cfg, err = Load([]string{"-env", "production"})
	require.NoError(t, err)
	assert.False(t, cfg.SecureCookies)

	t.Setenv("SECURE_COOKIES", "")
	cfg, err = Load(nil)
	require.NoError(t, err)
	assert.False(t, cfg.SecureCookies)
}

func TestLoadRequiresSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_SECRET", "short")

	_, err := Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHARED_SECRET")
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestLoadAcceptsSecretHash(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHARED_SECRET_HASH", "$2a$10$abcdefghijklmnopqrstuv")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123")

	_, err := Load(nil)
	assert.NoError(t, err)
}

func TestValidateAttachmentCount(t *testing.T) {
	setRequired(t)
	t.Setenv("ATTACHMENT_FILES", "only-one.pdf")

	_, err := Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly two")
}

func TestLoadInvalidTTL(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_TTL", "forever")

	_, err := Load(nil)
	assert.Error(t, err)
}
