package store

import (
	"database/sql"
	"fmt"

	"github.com/semillita/semillita/internal/model"
)

type AchievementStore struct {
	db *sql.DB
}

func NewAchievementStore(db *sql.DB) *AchievementStore {
	return &AchievementStore{db: db}
}

func scanAchievement(scanner interface{ Scan(...any) error }) (*model.Achievement, error) {
	var a model.Achievement
	var active int

	err := scanner.Scan(&a.ID, &a.Name, &a.Description, &a.Icon, &a.PointsRequired, &a.ConditionRaw, &active, &a.CreatedAt)
	if err != nil {
		return nil, err
	}

	a.Active = active != 0
	return &a, nil
}

const achievementCols = `id, name, description, icon, points_required, condition, active, created_at`

func (s *AchievementStore) GetByID(id int64) (*model.Achievement, error) {
	row := s.db.QueryRow(`SELECT `+achievementCols+` FROM achievements WHERE id = ?`, id)
	a, err := scanAchievement(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get achievement: %w", err)
	}
	return a, nil
}

// ListActive returns the active catalog with condition descriptors parsed.
// A malformed descriptor leaves Condition nil; callers decide how to report
// it. One bad row never fails the whole load.
func (s *AchievementStore) ListActive() ([]model.Achievement, error) {
	rows, err := s.db.Query(`SELECT ` + achievementCols + ` FROM achievements WHERE active = 1 ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active achievements: %w", err)
	}
	defer rows.Close()

	var achievements []model.Achievement
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		if cond, err := model.ParseCondition(a.ConditionRaw); err == nil {
			a.Condition = cond
		}
		achievements = append(achievements, *a)
	}
	return achievements, rows.Err()
}

// Upsert inserts a catalog achievement by name if it does not already exist.
func (s *AchievementStore) Upsert(name, description, icon string, pointsRequired int, condition string) error {
	_, err := s.db.Exec(
		`INSERT INTO achievements (name, description, icon, points_required, condition)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO NOTHING`,
		name, description, icon, pointsRequired, condition,
	)
	if err != nil {
		return fmt.Errorf("upsert achievement: %w", err)
	}
	return nil
}

// --- User achievement methods ---

func scanUserAchievement(scanner interface{ Scan(...any) error }) (*model.UserAchievement, error) {
	var ua model.UserAchievement
	err := scanner.Scan(&ua.ID, &ua.UserID, &ua.AchievementID, &ua.EarnedAt)
	if err != nil {
		return nil, err
	}
	return &ua, nil
}

const userAchievementCols = `id, user_id, achievement_id, earned_at`

// ListEarnedIDs returns the set of achievement ids the user has unlocked.
func (s *AchievementStore) ListEarnedIDs(userID int64) (map[int64]bool, error) {
	rows, err := s.db.Query(`SELECT achievement_id FROM user_achievements WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list earned achievement ids: %w", err)
	}
	defer rows.Close()

	earned := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan achievement id: %w", err)
		}
		earned[id] = true
	}
	return earned, rows.Err()
}

func (s *AchievementStore) ListEarned(userID int64) ([]model.UserAchievement, error) {
	rows, err := s.db.Query(
		`SELECT `+userAchievementCols+` FROM user_achievements WHERE user_id = ? ORDER BY earned_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list earned achievements: %w", err)
	}
	defer rows.Close()

	var earned []model.UserAchievement
	for rows.Next() {
		ua, err := scanUserAchievement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user achievement: %w", err)
		}
		earned = append(earned, *ua)
	}
	return earned, rows.Err()
}

// Award records an unlock for (userID, achievementID). The unique constraint
// makes it idempotent: if the pair already exists the existing record is
// returned and awarded is false.
func (s *AchievementStore) Award(userID, achievementID int64) (*model.UserAchievement, bool, error) {
	result, err := s.db.Exec(
		`INSERT INTO user_achievements (user_id, achievement_id) VALUES (?, ?)
		 ON CONFLICT(user_id, achievement_id) DO NOTHING`,
		userID, achievementID,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert user achievement: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected: %w", err)
	}

	row := s.db.QueryRow(
		`SELECT `+userAchievementCols+` FROM user_achievements WHERE user_id = ? AND achievement_id = ?`,
		userID, achievementID,
	)
	ua, err := scanUserAchievement(row)
	if err != nil {
		return nil, false, fmt.Errorf("get user achievement: %w", err)
	}
	return ua, n > 0, nil
}
