package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/semillita/semillita/internal/consent"
	"github.com/semillita/semillita/internal/email"
	"github.com/semillita/semillita/internal/model"
	"github.com/semillita/semillita/internal/store"
)

type ConsentHandler struct {
	userStore   *store.UserStore
	tokens      *consent.Tokens
	emailClient *email.Client
	logger      *slog.Logger
}

func NewConsentHandler(us *store.UserStore, tokens *consent.Tokens, ec *email.Client, logger *slog.Logger) *ConsentHandler {
	return &ConsentHandler{userStore: us, tokens: tokens, emailClient: ec, logger: logger}
}

// Verify handles the link from the consent email. It is a browser-facing
// GET, so it answers with a small HTML page rather than JSON.
func (h *ConsentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		writeConsentPage(w, http.StatusBadRequest, "Enlace incompleto", "El enlace no contiene un código de verificación.")
		return
	}

	userID, err := h.tokens.Verify(tokenStr)
	if err != nil {
		writeConsentPage(w, http.StatusBadRequest, "Enlace caducado", "Este enlace ya no es válido. Pide a tu peque que solicite uno nuevo desde la app.")
		return
	}

	user, err := h.userStore.GetByID(userID)
	if err != nil {
		h.logger.Error("consent verify lookup", "error", err)
		writeConsentPage(w, http.StatusInternalServerError, "Algo salió mal", "No pudimos verificar el consentimiento. Inténtalo de nuevo más tarde.")
		return
	}
	if user == nil {
		writeConsentPage(w, http.StatusNotFound, "Cuenta no encontrada", "La cuenta de este enlace ya no existe.")
		return
	}

	if err := h.userStore.SetConsentVerified(userID, true); err != nil {
		h.logger.Error("set consent verified", "error", err, "user_id", userID)
		writeConsentPage(w, http.StatusInternalServerError, "Algo salió mal", "No pudimos verificar el consentimiento. Inténtalo de nuevo más tarde.")
		return
	}

	h.logger.Info("parental consent verified", "user_id", userID)
	writeConsentPage(w, http.StatusOK, "¡Listo!",
		fmt.Sprintf("Has verificado la cuenta de %s. Ya puede cuidar su plantita y escribir en su diario.", user.Alias))
}

// Status reports the consent state for a user. Useful for the app to decide
// whether to show the waiting-for-consent screen.
func (h *ConsentHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user ID"})
		return
	}

	user, err := h.userStore.GetByID(id)
	if err != nil {
		h.logger.Error("consent status lookup", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get consent status"})
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":          user.ID,
		"parental_consent": user.ParentalConsent,
		"consent_verified": user.ConsentVerified,
		"has_consent":      user.HasConsent(),
	})
}

type resendConsentRequest struct {
	UserID int64 `json:"user_id"`
}

// Resend issues a fresh consent token and re-sends the email. The route is
// consent-exempt so a blocked child can still ask for the email again.
func (h *ConsentHandler) Resend(w http.ResponseWriter, r *http.Request) {
	var req resendConsentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	user, err := h.userStore.GetByID(req.UserID)
	if err != nil {
		h.logger.Error("consent resend lookup", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to resend consent email"})
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	if user.Role != model.RoleChild {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "consent only applies to child accounts"})
		return
	}
	if user.ParentEmail == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no parent email on file"})
		return
	}
	if user.ConsentVerified {
		writeJSON(w, http.StatusOK, map[string]string{"status": "already_verified"})
		return
	}
	if !h.emailClient.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "email is not configured"})
		return
	}

	token, err := h.tokens.Issue(user.ID, user.ParentEmail)
	if err != nil {
		h.logger.Error("issue consent token", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to resend consent email"})
		return
	}
	if err := h.emailClient.SendConsentRequest(user.ParentEmail, token, user.Alias); err != nil {
		h.logger.Error("resend consent email", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to resend consent email"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func writeConsentPage(w http.ResponseWriter, status int, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="es">
<head><meta charset="utf-8"><title>%s · Semillita</title></head>
<body style="font-family: sans-serif; max-width: 32rem; margin: 4rem auto; text-align: center;">
<h1>🌱 %s</h1>
<p>%s</p>
</body>
</html>`, title, title, body)
}
