package middleware

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/semillita/semillita/internal/consent"
	"github.com/semillita/semillita/internal/database"
	"github.com/semillita/semillita/internal/store"
)

func setupConsentGateTest(t *testing.T) (http.Handler, *store.UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gate := consent.NewGate(users, logger)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fmt.Fprintf(w, "reached:%d", len(body))
	})
	return ConsentGate(gate)(next), users
}

func TestConsentGatePassesReads(t *testing.T) {
	h, _ := setupConsentGateTest(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/journal", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestConsentGatePassesExemptPaths(t *testing.T) {
	h, users := setupConsentGateTest(t)
	u, _ := users.Create("Luna", "child", 8, "🌻", "", false)

	body := fmt.Sprintf(`{"user_id":%d}`, u.ID)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/consent/resend", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for exempt path", rec.Code)
	}
}

func TestConsentGateBlocksUnconsentedChild(t *testing.T) {
	h, users := setupConsentGateTest(t)
	u, _ := users.Create("Luna", "child", 8, "🌻", "", false)

	body := fmt.Sprintf(`{"user_id":%d,"content":"hola"}`, u.ID)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/journal", strings.NewReader(body)))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["code"] != consent.CodeConsentRequired {
		t.Errorf("code = %q, want %q", resp["code"], consent.CodeConsentRequired)
	}
	if resp["redirect"] == "" {
		t.Error("expected redirect in denial response")
	}
}

func TestConsentGateUnknownUser(t *testing.T) {
	h, _ := setupConsentGateTest(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/journal", strings.NewReader(`{"user_id":999}`)))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestConsentGateDelegatesWithoutUserID(t *testing.T) {
	h, _ := setupConsentGateTest(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/journal", strings.NewReader(`{"content":"hola"}`)))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when no user id resolvable", rec.Code)
	}
}

func TestConsentGateRestoresBody(t *testing.T) {
	h, users := setupConsentGateTest(t)
	u, _ := users.Create("Luna", "child", 8, "🌻", "", true)

	body := fmt.Sprintf(`{"user_id":%d}`, u.ID)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/journal", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for acknowledged terms", rec.Code)
	}
	want := fmt.Sprintf("reached:%d", len(body))
	if rec.Body.String() != want {
		t.Errorf("downstream body = %q, want %q", rec.Body.String(), want)
	}
}

func TestConsentGateAllowsVerifiedChild(t *testing.T) {
	h, users := setupConsentGateTest(t)
	u, _ := users.Create("Luna", "child", 8, "🌻", "", false)
	users.SetConsentVerified(u.ID, true)

	body := fmt.Sprintf(`{"user_id":%d}`, u.ID)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/journal", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for verified child", rec.Code)
	}
}
