package consent

import "testing"

func TestTokenIssueAndVerify(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"))

	tok, err := tokens.Issue(42, "mama@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tok == "" {
		t.Fatal("expected non-empty token")
	}

	userID, err := tokens.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != 42 {
		t.Errorf("user id = %d, want 42", userID)
	}
}

func TestTokenWrongSecretRejected(t *testing.T) {
	issuer := NewTokens([]byte("secret-a"))
	verifier := NewTokens([]byte("secret-b"))

	tok, _ := issuer.Issue(42, "mama@example.com")
	if _, err := verifier.Verify(tok); err == nil {
		t.Error("expected verification to fail across secrets")
	}
}

func TestTokenGarbageRejected(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"))

	if _, err := tokens.Verify("not.a.jwt"); err == nil {
		t.Error("expected error for malformed token")
	}
}
