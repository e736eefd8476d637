package seed

import (
	"testing"

	"github.com/semillita/semillita/internal/database"
	"github.com/semillita/semillita/internal/store"
)

func TestRunSeedsAndIsIdempotent(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	emotions := store.NewEmotionStore(db)
	achievements := store.NewAchievementStore(db)
	rewards := store.NewRewardStore(db)

	if err := Run(emotions, achievements, rewards); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := Run(emotions, achievements, rewards); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	es, _ := emotions.List()
	if len(es) == 0 {
		t.Error("expected seeded emotions")
	}

	as, err := achievements.ListActive()
	if err != nil {
		t.Fatalf("list achievements: %v", err)
	}
	if len(as) == 0 {
		t.Fatal("expected seeded achievements")
	}
	for _, a := range as {
		if a.Condition == nil {
			t.Errorf("seeded achievement %q has unparseable condition %q", a.Name, a.ConditionRaw)
		}
	}

	rs, _ := rewards.ListActive()
	if len(rs) == 0 {
		t.Error("expected seeded rewards")
	}
}
