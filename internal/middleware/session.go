package middleware

import (
	"net/http"

	"github.com/filebox/internal/session"
)

// LoginPath is where unauthenticated requests are sent.
const LoginPath = "/login"

// authChecker reports whether a session has passed the shared-secret gate.
type authChecker interface {
	IsAuthenticated(sess *session.Session) bool
}

// RequireAuth redirects requests whose session is not authenticated to the
// login page without running next. It expects session.Manager.LoadSession to
// have run first.
func RequireAuth(gate authChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !gate.IsAuthenticated(session.FromContext(r.Context())) {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
