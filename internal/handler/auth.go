package handler

import (
	"net/http"

	"github.com/filebox/internal/session"
)

type authenticator interface {
	IsAuthenticated(sess *session.Session) bool
	Authenticate(sess *session.Session, provided string) bool
}

type loginPageData struct {
	Flashes []string
}

// AuthHandler handles the shared-secret login and logout.
type AuthHandler struct {
	BaseHandler
	gate authenticator
}

func NewAuthHandler(base BaseHandler, gate authenticator) *AuthHandler {
	return &AuthHandler{BaseHandler: base, gate: gate}
}

// LoginPage renders the password form.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if h.gate.IsAuthenticated(sess) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	data := loginPageData{Flashes: h.popFlashes(w, r, sess)}
	h.render(w, r, http.StatusOK, "login.html", data)
}

// Login checks the submitted password and marks the session authenticated.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		h.flashRedirect(w, r, sess, "Incorrect password.", "/login")
		return
	}

	if !h.gate.Authenticate(sess, r.PostFormValue("password")) {
		h.Logger.Warn("auth: login failed", "remote", r.RemoteAddr)
		h.flashRedirect(w, r, sess, "Incorrect password.", "/login")
		return
	}

	h.Sessions.Renew(r.Context(), sess)
	if err := h.Sessions.Save(w, r, sess); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.Logger.Info("auth: login succeeded", "remote", r.RemoteAddr)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout destroys the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if err := h.Sessions.Destroy(w, r, sess); err != nil {
		h.logError(r, err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
