package store

import (
	"database/sql"
	"fmt"

	"github.com/semillita/semillita/internal/model"
)

type EmotionStore struct {
	db *sql.DB
}

func NewEmotionStore(db *sql.DB) *EmotionStore {
	return &EmotionStore{db: db}
}

const emotionCols = `id, name, emoji, color`

func (s *EmotionStore) List() ([]model.Emotion, error) {
	rows, err := s.db.Query(`SELECT ` + emotionCols + ` FROM emotions ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list emotions: %w", err)
	}
	defer rows.Close()

	var emotions []model.Emotion
	for rows.Next() {
		var e model.Emotion
		if err := rows.Scan(&e.ID, &e.Name, &e.Emoji, &e.Color); err != nil {
			return nil, fmt.Errorf("scan emotion: %w", err)
		}
		emotions = append(emotions, e)
	}
	return emotions, rows.Err()
}

func (s *EmotionStore) GetByID(id int64) (*model.Emotion, error) {
	var e model.Emotion
	err := s.db.QueryRow(`SELECT `+emotionCols+` FROM emotions WHERE id = ?`, id).
		Scan(&e.ID, &e.Name, &e.Emoji, &e.Color)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get emotion: %w", err)
	}
	return &e, nil
}

// Upsert inserts an emotion by name if it does not already exist.
func (s *EmotionStore) Upsert(name, emoji, color string) error {
	_, err := s.db.Exec(
		`INSERT INTO emotions (name, emoji, color) VALUES (?, ?, ?) ON CONFLICT(name) DO NOTHING`,
		name, emoji, color,
	)
	if err != nil {
		return fmt.Errorf("upsert emotion: %w", err)
	}
	return nil
}
