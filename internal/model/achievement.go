package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// ConditionType identifies which user statistic an achievement condition
// checks. The set is closed: anything else fails ParseCondition.
type ConditionType string

const (
	ConditionPlantCreated   ConditionType = "plant_created"
	ConditionDaysCaring     ConditionType = "days_caring"
	ConditionJournalEntries ConditionType = "journal_entries"
	ConditionPoints         ConditionType = "points"
)

// Condition is the unlock rule attached to a catalog achievement. Count is
// used by days_caring and journal_entries; Threshold by points. A points
// condition with Threshold 0 falls back to the achievement's flat
// points_required value.
type Condition struct {
	Type      ConditionType `json:"type"`
	Count     int           `json:"count,omitempty"`
	Threshold int           `json:"threshold,omitempty"`
}

// ParseCondition decodes and validates a stored condition descriptor.
func ParseCondition(raw string) (*Condition, error) {
	var c Condition
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("decode condition: %w", err)
	}

	switch c.Type {
	case ConditionPlantCreated:
	case ConditionDaysCaring, ConditionJournalEntries:
		if c.Count <= 0 {
			return nil, fmt.Errorf("condition %q requires a positive count", c.Type)
		}
	case ConditionPoints:
		if c.Threshold < 0 {
			return nil, fmt.Errorf("condition %q requires a non-negative threshold", c.Type)
		}
	default:
		return nil, fmt.Errorf("unknown condition type %q", c.Type)
	}
	return &c, nil
}

type Achievement struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Icon           string    `json:"icon"`
	PointsRequired int       `json:"points_required"`
	ConditionRaw   string    `json:"-"`
	Condition      *Condition `json:"condition,omitempty"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}

type UserAchievement struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	AchievementID int64     `json:"achievement_id"`
	EarnedAt      time.Time `json:"earned_at"`
}
