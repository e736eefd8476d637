package model

import "time"

type JournalEntry struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	PlantID      *int64    `json:"plant_id"`
	EmotionID    *int64    `json:"emotion_id"`
	Content      string    `json:"content"`
	PhotoURL     string    `json:"photo_url"`
	AudioURL     string    `json:"audio_url"`
	PointsEarned int       `json:"points_earned"`
	CreatedAt    time.Time `json:"created_at"`
}
