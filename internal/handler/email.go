package handler

import (
	"context"
	"net/http"

	"github.com/filebox/internal/session"
)

type documentSender interface {
	Send(ctx context.Context, recipient string) error
}

// EmailHandler mails the fixed document pair to a user-supplied address.
type EmailHandler struct {
	BaseHandler
	mailer documentSender
}

func NewEmailHandler(base BaseHandler, mailer documentSender) *EmailHandler {
	return &EmailHandler{BaseHandler: base, mailer: mailer}
}

// Send handles the email form posted from the dashboard.
func (h *EmailHandler) Send(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		h.flashRedirect(w, r, sess, "Email could not be sent: "+err.Error(), "/")
		return
	}

	to := r.PostFormValue("email")
	if err := h.mailer.Send(r.Context(), to); err != nil {
		h.logError(r, err)
		h.flashRedirect(w, r, sess, "Email could not be sent: "+err.Error(), "/")
		return
	}

	h.Logger.Info("email: documents sent", "to", to)
	h.flashRedirect(w, r, sess, "Email sent to "+to+".", "/")
}
