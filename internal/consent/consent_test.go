package consent

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/semillita/semillita/internal/database"
	"github.com/semillita/semillita/internal/store"
)

func setupGateTest(t *testing.T) (*Gate, *store.UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewGate(users, logger), users
}

func TestGateAllowsReads(t *testing.T) {
	gate, _ := setupGateTest(t)

	res, err := gate.Check(0, false)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Decision != Allow {
		t.Errorf("decision = %v, want Allow", res.Decision)
	}
}

func TestGateDelegatesWhenUnidentified(t *testing.T) {
	gate, _ := setupGateTest(t)

	res, err := gate.Check(0, true)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Decision != AllowUnidentified {
		t.Errorf("decision = %v, want AllowUnidentified", res.Decision)
	}
}

func TestGateUnknownUser(t *testing.T) {
	gate, _ := setupGateTest(t)

	_, err := gate.Check(999, true)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestGateAllowsNonChildRoles(t *testing.T) {
	gate, users := setupGateTest(t)

	for _, role := range []string{"caregiver", "facilitator"} {
		u, err := users.Create("adulto-"+role, role, 0, "🌼", "", false)
		if err != nil {
			t.Fatalf("create %s: %v", role, err)
		}
		res, err := gate.Check(u.ID, true)
		if err != nil {
			t.Fatalf("check %s: %v", role, err)
		}
		if res.Decision != Allow {
			t.Errorf("%s decision = %v, want Allow", role, res.Decision)
		}
	}
}

func TestGateDeniesUnconsentedChild(t *testing.T) {
	gate, users := setupGateTest(t)
	u, _ := users.Create("Luna", "child", 8, "🌻", "mama@example.com", false)

	res, err := gate.Check(u.ID, true)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Decision != Deny {
		t.Fatalf("decision = %v, want Deny", res.Decision)
	}
	if res.Code != CodeConsentRequired {
		t.Errorf("code = %q, want %q", res.Code, CodeConsentRequired)
	}
	if res.Redirect == "" {
		t.Error("expected a redirect path on denial")
	}
}

func TestGateAllowsVerifiedChild(t *testing.T) {
	gate, users := setupGateTest(t)
	u, _ := users.Create("Luna", "child", 8, "🌻", "mama@example.com", false)
	users.SetConsentVerified(u.ID, true)

	res, err := gate.Check(u.ID, true)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Decision != Allow {
		t.Errorf("decision = %v, want Allow", res.Decision)
	}
}

func TestGateDegradedOnAcknowledgedTerms(t *testing.T) {
	gate, users := setupGateTest(t)
	u, _ := users.Create("Luna", "child", 8, "🌻", "mama@example.com", true)

	res, err := gate.Check(u.ID, true)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Decision != AllowDegraded {
		t.Errorf("decision = %v, want AllowDegraded", res.Decision)
	}
}
