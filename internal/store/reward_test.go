package store

import (
	"context"
	"errors"
	"testing"
)

func setupRewardTest(t *testing.T) (*RewardStore, *UserStore, int64, int64) {
	t.Helper()
	db := setupTestDB(t)

	users := NewUserStore(db)
	u, err := users.Create("Luna", "child", 8, "🌻", "", false)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	rewards := NewRewardStore(db)
	if err := rewards.Upsert("Sticker dorado", "Un sticker brillante", "virtual", 50); err != nil {
		t.Fatalf("upsert reward: %v", err)
	}
	list, err := rewards.ListActive()
	if err != nil {
		t.Fatalf("list rewards: %v", err)
	}

	return rewards, users, u.ID, list[0].ID
}

func TestPurchaseDeductsPoints(t *testing.T) {
	rewards, users, userID, rewardID := setupRewardTest(t)
	users.AddPoints(userID, 80)

	purchase, user, err := rewards.Purchase(context.Background(), userID, rewardID)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if purchase == nil || purchase.RewardID != rewardID {
		t.Fatalf("purchase = %+v", purchase)
	}
	if user.Points != 30 {
		t.Errorf("remaining points = %d, want 30", user.Points)
	}

	owned, _ := rewards.ListPurchased(userID)
	if len(owned) != 1 {
		t.Errorf("purchased = %d, want 1", len(owned))
	}
}

func TestPurchaseInsufficientPoints(t *testing.T) {
	rewards, users, userID, rewardID := setupRewardTest(t)
	users.AddPoints(userID, 20)

	_, _, err := rewards.Purchase(context.Background(), userID, rewardID)
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("err = %v, want ErrInsufficientPoints", err)
	}

	// Nothing may change on a failed purchase.
	u, _ := users.GetByID(userID)
	if u.Points != 20 {
		t.Errorf("points = %d, want 20 untouched", u.Points)
	}
	owned, _ := rewards.ListPurchased(userID)
	if len(owned) != 0 {
		t.Errorf("purchased = %d, want 0", len(owned))
	}
}

func TestPurchaseTwiceRejected(t *testing.T) {
	rewards, users, userID, rewardID := setupRewardTest(t)
	users.AddPoints(userID, 200)

	if _, _, err := rewards.Purchase(context.Background(), userID, rewardID); err != nil {
		t.Fatalf("first purchase: %v", err)
	}

	_, _, err := rewards.Purchase(context.Background(), userID, rewardID)
	if !errors.Is(err, ErrAlreadyPurchased) {
		t.Fatalf("err = %v, want ErrAlreadyPurchased", err)
	}

	// Only the first purchase may be charged.
	u, _ := users.GetByID(userID)
	if u.Points != 150 {
		t.Errorf("points = %d, want 150", u.Points)
	}
}

func TestPurchaseUnknownReward(t *testing.T) {
	rewards, _, userID, _ := setupRewardTest(t)

	_, _, err := rewards.Purchase(context.Background(), userID, 999)
	if !errors.Is(err, ErrRewardNotFound) {
		t.Fatalf("err = %v, want ErrRewardNotFound", err)
	}
}

func TestPurchaseUnknownUser(t *testing.T) {
	rewards, _, _, rewardID := setupRewardTest(t)

	_, _, err := rewards.Purchase(context.Background(), 999, rewardID)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestPurchaseNeverDrivesBalanceNegative(t *testing.T) {
	rewards, users, userID, rewardID := setupRewardTest(t)
	users.AddPoints(userID, 50)

	if _, _, err := rewards.Purchase(context.Background(), userID, rewardID); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	u, _ := users.GetByID(userID)
	if u.Points != 0 {
		t.Errorf("points = %d, want 0", u.Points)
	}
	if u.Points < 0 {
		t.Error("balance went negative")
	}
}
