package store

import "testing"

func TestUserCreate(t *testing.T) {
	s := NewUserStore(setupTestDB(t))

	u, err := s.Create("Luna", "child", 8, "🌻", "mama@example.com", false)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Alias != "Luna" {
		t.Errorf("alias = %q, want %q", u.Alias, "Luna")
	}
	if u.Points != 0 {
		t.Errorf("points = %d, want 0", u.Points)
	}
	if u.ParentalConsent || u.ConsentVerified {
		t.Error("new user should start without consent")
	}
	if u.HasPIN {
		t.Error("new user should not have a PIN")
	}
}

func TestUserAliasUnique(t *testing.T) {
	s := NewUserStore(setupTestDB(t))

	if _, err := s.Create("Luna", "child", 8, "🌻", "", false); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := s.Create("Luna", "child", 9, "🌵", "", false); err == nil {
		t.Error("expected error for duplicate alias")
	}

	exists, err := s.AliasExists("Luna")
	if err != nil {
		t.Fatalf("alias exists: %v", err)
	}
	if !exists {
		t.Error("expected alias to exist")
	}
}

func TestUserGetByAliasNotFound(t *testing.T) {
	s := NewUserStore(setupTestDB(t))

	u, err := s.GetByAlias("nadie")
	if err != nil {
		t.Fatalf("get by alias: %v", err)
	}
	if u != nil {
		t.Error("expected nil for unknown alias")
	}
}

func TestUserAddPoints(t *testing.T) {
	s := NewUserStore(setupTestDB(t))
	u, _ := s.Create("Luna", "child", 8, "🌻", "", false)

	if err := s.AddPoints(u.ID, 25); err != nil {
		t.Fatalf("add points: %v", err)
	}
	if err := s.AddPoints(u.ID, 10); err != nil {
		t.Fatalf("add points: %v", err)
	}

	got, _ := s.GetByID(u.ID)
	if got.Points != 35 {
		t.Errorf("points = %d, want 35", got.Points)
	}
}

func TestUserConsentFlags(t *testing.T) {
	s := NewUserStore(setupTestDB(t))
	u, _ := s.Create("Luna", "child", 8, "🌻", "mama@example.com", false)

	if err := s.SetParentalConsent(u.ID, true); err != nil {
		t.Fatalf("set parental consent: %v", err)
	}
	if err := s.SetConsentVerified(u.ID, true); err != nil {
		t.Fatalf("set consent verified: %v", err)
	}

	got, _ := s.GetByID(u.ID)
	if !got.ParentalConsent || !got.ConsentVerified {
		t.Error("expected both consent flags set")
	}
	if !got.HasConsent() {
		t.Error("expected HasConsent to be true")
	}
}

func TestUserListByRole(t *testing.T) {
	s := NewUserStore(setupTestDB(t))
	s.Create("Luna", "child", 8, "🌻", "", false)
	s.Create("Mateo", "child", 10, "🌵", "", false)
	s.Create("Sra. García", "facilitator", 0, "🌼", "", false)

	children, err := s.ListByRole("child")
	if err != nil {
		t.Fatalf("list by role: %v", err)
	}
	if len(children) != 2 {
		t.Errorf("children = %d, want 2", len(children))
	}
}

func TestUserPIN(t *testing.T) {
	s := NewUserStore(setupTestDB(t))
	u, _ := s.Create("Luna", "child", 8, "🌻", "", false)

	if err := s.SetPIN(u.ID, "hashed-pin"); err != nil {
		t.Fatalf("set pin: %v", err)
	}

	hash, err := s.GetPINHash(u.ID)
	if err != nil {
		t.Fatalf("get pin hash: %v", err)
	}
	if hash != "hashed-pin" {
		t.Errorf("hash = %q, want %q", hash, "hashed-pin")
	}

	got, _ := s.GetByID(u.ID)
	if !got.HasPIN {
		t.Error("expected HasPIN after SetPIN")
	}
}
