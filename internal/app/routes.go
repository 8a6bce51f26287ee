package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/filebox/internal/handler"
	"github.com/filebox/internal/middleware"
)

func (app *App) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(app.logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(app.static)))
	r.Get("/healthz", handler.Health(app.logger, app.files))

	base := handler.BaseHandler{
		Logger:    app.logger,
		Sessions:  app.sessions,
		Templates: app.templates,
	}

	r.Group(func(r chi.Router) {
		r.Use(app.sessions.LoadSession)

		authHandler := handler.NewAuthHandler(base, app.gate)
		r.Get("/login", authHandler.LoginPage)
		r.Post("/login", authHandler.Login)

		// Gated routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(app.gate))

			r.Post("/logout", authHandler.Logout)

			filesHandler := handler.NewFilesHandler(base, app.files, app.config.MaxUploadBytes(), app.config.StripImageMetadata)
			r.Get("/", filesHandler.Dashboard)
			r.Post("/upload", filesHandler.Upload)
			r.Get("/download/{filename}", filesHandler.Download)
			r.Get("/files/{filename}", filesHandler.View)
			r.Get("/delete/{filename}", filesHandler.Delete)

			emailHandler := handler.NewEmailHandler(base, app.mailer)
			r.Post("/send_email", emailHandler.Send)
		})
	})
	return r
}
