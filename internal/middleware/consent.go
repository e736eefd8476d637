package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/semillita/semillita/internal/auth"
	"github.com/semillita/semillita/internal/consent"
)

// Endpoints a child without consent must still be able to reach: account
// creation and the consent flow itself.
var consentExemptPaths = map[string]bool{
	"/api/users":          true,
	"/api/auth/login":     true,
	"/api/consent/resend": true,
	"/consent/verify":     true,
}

const maxPeekBody = 1 << 20

// ConsentGate blocks data-collection endpoints for child accounts that have
// neither verified consent nor acknowledged terms. Read requests and the
// exempt consent-flow endpoints always pass.
func ConsentGate(gate *consent.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mutating := r.Method == http.MethodPost || r.Method == http.MethodPut ||
				r.Method == http.MethodPatch || r.Method == http.MethodDelete

			if !mutating || consentExemptPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			result, err := gate.Check(resolveUserID(r), true)
			if errors.Is(err, consent.ErrUserNotFound) {
				writeError(w, http.StatusNotFound, "user not found")
				return
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, "consent check failed")
				return
			}

			if result.Decision == consent.Deny {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(map[string]string{
					"error":    result.Message,
					"code":     result.Code,
					"redirect": result.Redirect,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// resolveUserID finds the acting user: the session if present, otherwise a
// user_id field in the JSON body. Zero means unresolvable; the gate treats
// that as a delegate-to-handler branch.
func resolveUserID(r *http.Request) int64 {
	if id := auth.UserID(r.Context()); id != 0 {
		return id
	}

	if r.Body == nil {
		return 0
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBody))
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return 0
	}

	var probe struct {
		UserID int64 `json:"user_id"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return 0
	}
	return probe.UserID
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
