package model

import "time"

type Plant struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	PhotoURL  string    `json:"photo_url"`
	IsActive  bool      `json:"is_active"`
	PlantedAt time.Time `json:"planted_at"`
	CreatedAt time.Time `json:"created_at"`
}

// AgeDays returns the plant's age counted from the planting day, where the
// planting day itself is day 1.
func (p *Plant) AgeDays(now time.Time) int {
	return int(now.Sub(p.PlantedAt).Hours()/24) + 1
}
