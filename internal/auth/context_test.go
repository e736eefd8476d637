package auth

import (
	"context"
	"testing"
)

func TestWithAuthAndFromContext(t *testing.T) {
	ac := AuthContext{
		UserID:    1,
		Role:      "child",
		SessionID: 3,
	}

	ctx := WithAuth(context.Background(), ac)
	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected AuthContext in context")
	}
	if got.UserID != 1 {
		t.Errorf("UserID = %d, want 1", got.UserID)
	}
	if got.Role != "child" {
		t.Errorf("Role = %q, want %q", got.Role, "child")
	}
	if got.SessionID != 3 {
		t.Errorf("SessionID = %d, want 3", got.SessionID)
	}
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	if ok {
		t.Error("expected false for missing AuthContext")
	}
}

func TestUserID(t *testing.T) {
	ac := AuthContext{UserID: 7}
	ctx := WithAuth(context.Background(), ac)
	if UserID(ctx) != 7 {
		t.Errorf("UserID = %d, want 7", UserID(ctx))
	}
}

func TestUserIDMissing(t *testing.T) {
	if UserID(context.Background()) != 0 {
		t.Error("expected 0 for missing context")
	}
}

func TestIsFacilitator(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{Role: "facilitator"})
	if !IsFacilitator(ctx) {
		t.Error("expected facilitator")
	}
	ctx = WithAuth(context.Background(), AuthContext{Role: "child"})
	if IsFacilitator(ctx) {
		t.Error("expected non-facilitator for child role")
	}
	if IsFacilitator(context.Background()) {
		t.Error("expected false for missing context")
	}
}
