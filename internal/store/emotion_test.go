package store

import "testing"

func TestEmotionUpsertIdempotent(t *testing.T) {
	s := NewEmotionStore(setupTestDB(t))

	if err := s.Upsert("Feliz", "😊", "#FFD93D"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.Upsert("Feliz", "😊", "#FFD93D"); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	list, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("emotions = %d, want 1", len(list))
	}
}

func TestEmotionGetByID(t *testing.T) {
	s := NewEmotionStore(setupTestDB(t))
	s.Upsert("Triste", "😢", "#6FA8DC")

	list, _ := s.List()
	e, err := s.GetByID(list[0].ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if e == nil || e.Name != "Triste" {
		t.Errorf("emotion = %+v", e)
	}

	missing, err := s.GetByID(999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown id")
	}
}
