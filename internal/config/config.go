package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string // development, production

	// Security
	SharedSecret     string
	SharedSecretHash string
	SessionSecret    string
	SessionTTL       time.Duration
	SecureCookies    bool
	RedisURL         string

	// Storage
	UploadDir          string
	MaxUploadSizeMB    int
	StripImageMetadata bool

	// Email
	SMTPHost        string
	SMTPPort        int
	SMTPUser        string
	SMTPPass        string
	SMTPFromName    string
	AttachmentDir   string
	AttachmentFiles []string
}

// Load reads configuration from the environment (and a .env file if present),
// then applies command-line flags from args.
func Load(args []string) (*Config, error) {
	// Load .env file if it exists (don't error if missing)
	_ = godotenv.Load()

	cfg := &Config{}

	fs := flag.NewFlagSet("filebox", flag.ContinueOnError)
	fs.StringVar(&cfg.Port, "port", getEnv("PORT", "5000"), "Server port")
	fs.StringVar(&cfg.Env, "env", getEnv("ENV", "development"), "Environment (development, production)")
	fs.StringVar(&cfg.UploadDir, "upload-dir", getEnv("UPLOAD_DIR", "static/uploads"), "Directory holding uploaded files")

	cfg.SharedSecret = getEnv("SHARED_SECRET", "")
	cfg.SharedSecretHash = getEnv("SHARED_SECRET_HASH", "")
	cfg.SessionSecret = getEnv("SESSION_SECRET", "")
	cfg.SecureCookies = getEnvBool("SECURE_COOKIES", false)
	cfg.RedisURL = getEnv("REDIS_URL", "")
	cfg.MaxUploadSizeMB = getEnvInt("MAX_UPLOAD_SIZE_MB", 200)
	cfg.StripImageMetadata = getEnvBool("STRIP_IMAGE_METADATA", false)

	cfg.SMTPHost = getEnv("SMTP_HOST", "smtp.gmail.com")
	cfg.SMTPPort = getEnvInt("SMTP_PORT", 465)
	cfg.SMTPUser = getEnv("SMTP_USER", "")
	cfg.SMTPPass = getEnv("SMTP_PASS", "")
	cfg.SMTPFromName = getEnv("SMTP_FROM_NAME", "Filebox")
	cfg.AttachmentDir = getEnv("ATTACHMENT_DIR", "static/attachments")
	cfg.AttachmentFiles = splitList(getEnv("ATTACHMENT_FILES", "document.pdf,presentation.pdf"))

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "12h"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}
	cfg.SessionTTL = ttl

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Production serves over TLS, so cookies default to Secure there.
	if getEnv("SECURE_COOKIES", "") == "" {
		cfg.SecureCookies = cfg.IsProduction()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.SharedSecret == "" && c.SharedSecretHash == "" {
		errs = append(errs, errors.New("SHARED_SECRET or SHARED_SECRET_HASH is required"))
	}
	if len(c.SessionSecret) < 16 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 16 characters"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.UploadDir == "" {
		errs = append(errs, errors.New("UPLOAD_DIR is required"))
	}
	if c.MaxUploadSizeMB <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_SIZE_MB must be positive"))
	}
	if len(c.AttachmentFiles) != 2 {
		errs = append(errs, fmt.Errorf("ATTACHMENT_FILES must name exactly two files, got %d", len(c.AttachmentFiles)))
	}
	if c.SMTPHost != "" && c.SMTPPort <= 0 {
		errs = append(errs, errors.New("SMTP_PORT must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// MaxUploadBytes is the request body limit for uploads.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadSizeMB) << 20
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
