package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/semillita/semillita/internal/auth"
	"github.com/semillita/semillita/internal/consent"
	"github.com/semillita/semillita/internal/email"
	"github.com/semillita/semillita/internal/middleware"
	"github.com/semillita/semillita/internal/model"
	"github.com/semillita/semillita/internal/store"
)

var validRoles = map[string]bool{
	model.RoleChild:       true,
	model.RoleCaregiver:   true,
	model.RoleFacilitator: true,
}

type AuthHandler struct {
	userStore    *store.UserStore
	sessionStore *store.SessionStore
	tokens       *consent.Tokens
	emailClient  *email.Client
	logger       *slog.Logger
}

func NewAuthHandler(us *store.UserStore, ss *store.SessionStore, tokens *consent.Tokens, ec *email.Client, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		userStore:    us,
		sessionStore: ss,
		tokens:       tokens,
		emailClient:  ec,
		logger:       logger,
	}
}

type registerRequest struct {
	Alias       string `json:"alias"`
	Role        string `json:"role"`
	Age         int    `json:"age"`
	AvatarEmoji string `json:"avatar_emoji"`
	ParentEmail string `json:"parent_email"`
	AcceptTerms bool   `json:"accept_terms"`
	PIN         string `json:"pin"`
}

// Register creates an account and opens a session. Child accounts get a
// consent request emailed to the caregiver; accepting terms at registration
// records parental_consent so the child can start immediately.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Alias = strings.TrimSpace(req.Alias)
	if req.Alias == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "alias is required"})
		return
	}
	if req.Role == "" {
		req.Role = model.RoleChild
	}
	if !validRoles[req.Role] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role must be child, caregiver, or facilitator"})
		return
	}
	if req.Role == model.RoleChild && strings.TrimSpace(req.ParentEmail) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "parent_email is required for child accounts"})
		return
	}
	if req.AvatarEmoji == "" {
		req.AvatarEmoji = "🌱"
	}

	exists, err := h.userStore.AliasExists(req.Alias)
	if err != nil {
		h.logger.Error("register alias check", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create account"})
		return
	}
	if exists {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "that alias is already taken"})
		return
	}

	parentalConsent := req.Role == model.RoleChild && req.AcceptTerms
	user, err := h.userStore.Create(req.Alias, req.Role, req.Age, req.AvatarEmoji, strings.TrimSpace(req.ParentEmail), parentalConsent)
	if err != nil {
		h.logger.Error("register create user", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create account"})
		return
	}

	if req.PIN != "" {
		if len(req.PIN) != 4 || !isDigits(req.PIN) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "PIN must be exactly 4 digits"})
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
		if err != nil {
			h.logger.Error("register hash pin", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create account"})
			return
		}
		if err := h.userStore.SetPIN(user.ID, string(hash)); err != nil {
			h.logger.Error("register set pin", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create account"})
			return
		}
	}

	if user.Role == model.RoleChild {
		h.sendConsentRequest(user)
	}

	if err := h.openSession(w, user.ID); err != nil {
		h.logger.Error("register open session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Alias string `json:"alias"`
	PIN   string `json:"pin"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Alias = strings.TrimSpace(req.Alias)
	if req.Alias == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "alias is required"})
		return
	}

	user, err := h.userStore.GetByAlias(req.Alias)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to log in"})
		return
	}
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unknown alias"})
		return
	}

	if user.HasPIN {
		hash, err := h.userStore.GetPINHash(user.ID)
		if err != nil {
			h.logger.Error("login pin lookup", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to log in"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.PIN)); err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "incorrect PIN"})
			return
		}
	}

	if err := h.openSession(w, user.ID); err != nil {
		h.logger.Error("login open session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if ac, ok := auth.FromContext(r.Context()); ok {
		if err := h.sessionStore.Delete(ac.SessionID); err != nil {
			h.logger.Error("logout delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userStore.GetByID(auth.UserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get profile"})
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) openSession(w http.ResponseWriter, userID int64) error {
	sess, err := h.sessionStore.Create(userID)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (h *AuthHandler) sendConsentRequest(user *model.User) {
	if !h.emailClient.Configured() {
		h.logger.Warn("consent email skipped: email client not configured", "user_id", user.ID)
		return
	}

	token, err := h.tokens.Issue(user.ID, user.ParentEmail)
	if err != nil {
		h.logger.Error("issue consent token", "error", err)
		return
	}
	if err := h.emailClient.SendConsentRequest(user.ParentEmail, token, user.Alias); err != nil {
		h.logger.Error("send consent request", "error", err)
	}
}
