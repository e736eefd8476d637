package model

import "time"

type Reward struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	PointsCost  int       `json:"points_cost"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

type UserReward struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	RewardID    int64     `json:"reward_id"`
	PurchasedAt time.Time `json:"purchased_at"`
}
