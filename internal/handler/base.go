package handler

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/filebox/internal/session"
)

// BaseHandler carries what every page handler needs.
type BaseHandler struct {
	Logger    *slog.Logger
	Sessions  *session.Manager
	Templates *template.Template
}

func (h *BaseHandler) logError(r *http.Request, err error) {
	method := r.Method
	uri := r.URL.RequestURI()

	h.Logger.Error(err.Error(), "method", method, "uri", uri)
}

func (h *BaseHandler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logError(r, err)
	http.Error(w, "the server encountered a problem and could not process your request", http.StatusInternalServerError)
}

// render executes the named template into a buffer first so a template error
// never leaves a half-written page.
func (h *BaseHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.Templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// popFlashes takes the pending flashes off sess and persists the change.
func (h *BaseHandler) popFlashes(w http.ResponseWriter, r *http.Request, sess *session.Session) []string {
	flashes := sess.PopFlashes()
	if len(flashes) > 0 {
		if err := h.Sessions.Save(w, r, sess); err != nil {
			h.logError(r, err)
		}
	}
	return flashes
}

// flashRedirect queues msg for the next page and redirects to target.
func (h *BaseHandler) flashRedirect(w http.ResponseWriter, r *http.Request, sess *session.Session, msg, target string) {
	sess.AddFlash(msg)
	if err := h.Sessions.Save(w, r, sess); err != nil {
		h.logError(r, err)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
