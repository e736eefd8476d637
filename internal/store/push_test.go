package store

import "testing"

func setupPushTest(t *testing.T) (*PushStore, int64) {
	t.Helper()
	db := setupTestDB(t)
	u, err := NewUserStore(db).Create("Luna", "child", 8, "🌻", "", false)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return NewPushStore(db), u.ID
}

func TestPushSubscriptionCreate(t *testing.T) {
	s, userID := setupPushTest(t)

	sub, err := s.CreateSubscription(userID, "https://push.example/abc", "p256dh-key", "auth-key", "tablet")
	if err != nil {
		t.Fatalf("create subscription: %v", err)
	}
	if sub.Endpoint != "https://push.example/abc" {
		t.Errorf("endpoint = %q", sub.Endpoint)
	}
	if sub.DeviceName != "tablet" {
		t.Errorf("device name = %q", sub.DeviceName)
	}
}

func TestPushSubscriptionReplacesByEndpoint(t *testing.T) {
	s, userID := setupPushTest(t)

	s.CreateSubscription(userID, "https://push.example/abc", "old-key", "old-auth", "tablet")
	sub, err := s.CreateSubscription(userID, "https://push.example/abc", "new-key", "new-auth", "tablet")
	if err != nil {
		t.Fatalf("resubscribe: %v", err)
	}
	if sub.P256dhKey != "new-key" {
		t.Errorf("p256dh = %q, want new-key", sub.P256dhKey)
	}

	subs, _ := s.ListByUser(userID)
	if len(subs) != 1 {
		t.Errorf("subscriptions = %d, want 1", len(subs))
	}
}

func TestPushSubscriptionDeleteByEndpoint(t *testing.T) {
	s, userID := setupPushTest(t)

	s.CreateSubscription(userID, "https://push.example/abc", "key", "auth", "")
	if err := s.DeleteByEndpoint("https://push.example/abc"); err != nil {
		t.Fatalf("delete by endpoint: %v", err)
	}

	subs, _ := s.ListByUser(userID)
	if len(subs) != 0 {
		t.Errorf("subscriptions = %d, want 0", len(subs))
	}
}
