package app

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/filebox/internal/auth"
	"github.com/filebox/internal/config"
	"github.com/filebox/internal/crypto"
	"github.com/filebox/internal/mailer"
	"github.com/filebox/internal/session"
	"github.com/filebox/internal/store"
	"github.com/filebox/internal/web"
)

type App struct {
	config    *config.Config
	logger    *slog.Logger
	files     *store.FileStore
	redis     *redis.Client
	sessions  *session.Manager
	gate      *auth.Gate
	mailer    *mailer.Mailer
	templates *template.Template
	static    fs.FS
}

func (app *App) Close() {
	if err := app.files.Close(); err != nil {
		app.logger.Warn("close upload dir", "err", err)
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn("close redis", "err", err)
		}
	}
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := newLogger(cfg)

	files, err := store.OpenFileStore(cfg.UploadDir, logger)
	if err != nil {
		return nil, fmt.Errorf("open upload dir: %w", err)
	}

	gate, err := newGate(cfg)
	if err != nil {
		files.Close()
		return nil, err
	}

	var (
		rdb          *redis.Client
		sessionStore session.Store
	)
	if cfg.RedisURL != "" {
		rdb, err = session.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			files.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		sessionStore = session.NewRedisStore(rdb, "")
		logger.Info("sessions stored in redis")
	} else {
		sessionStore = session.NewCookieStore(crypto.NewFromSecret(cfg.SessionSecret))
	}

	sessions := session.NewManager(sessionStore, session.Options{
		TTL:    cfg.SessionTTL,
		Secure: cfg.SecureCookies,
	})

	m := mailer.New(&mailer.Config{
		Host:            cfg.SMTPHost,
		Port:            cfg.SMTPPort,
		Username:        cfg.SMTPUser,
		Password:        cfg.SMTPPass,
		FromName:        cfg.SMTPFromName,
		FromAddress:     cfg.SMTPUser,
		AttachmentDir:   cfg.AttachmentDir,
		AttachmentFiles: cfg.AttachmentFiles,
	})
	if cfg.SMTPHost == "" {
		logger.Warn("SMTP_HOST is empty; emails will be logged, not sent")
	}

	templates, err := web.Templates()
	if err != nil {
		files.Close()
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	static, err := web.Static()
	if err != nil {
		files.Close()
		return nil, fmt.Errorf("static files: %w", err)
	}

	return &App{
		config:    cfg,
		logger:    logger,
		files:     files,
		redis:     rdb,
		sessions:  sessions,
		gate:      gate,
		mailer:    m,
		templates: templates,
		static:    static,
	}, nil
}

// newGate prefers a precomputed hash so the plaintext secret need not be deployed.
func newGate(cfg *config.Config) (*auth.Gate, error) {
	if cfg.SharedSecretHash != "" {
		gate, err := auth.NewGateFromHash(cfg.SharedSecretHash)
		if err != nil {
			return nil, fmt.Errorf("SHARED_SECRET_HASH: %w", err)
		}
		return gate, nil
	}
	gate, err := auth.NewGate(cfg.SharedSecret)
	if err != nil {
		return nil, fmt.Errorf("SHARED_SECRET: %w", err)
	}
	return gate, nil
}

func (app *App) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", app.config.Port),
		Handler:           app.routes(),
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
		// uploads and video downloads are large
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
	}

	g.Go(func() error {
		app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env, "uploads", app.files.Dir())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		app.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	app.logger.Info("stopped server")
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	logLevel := slog.LevelInfo

	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	slog.SetDefault(logger)
	return logger
}
