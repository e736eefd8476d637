package store

import (
	"database/sql"
	"fmt"

	"github.com/semillita/semillita/internal/model"
)

type JournalStore struct {
	db *sql.DB
}

func NewJournalStore(db *sql.DB) *JournalStore {
	return &JournalStore{db: db}
}

func scanEntry(scanner interface{ Scan(...any) error }) (*model.JournalEntry, error) {
	var e model.JournalEntry
	var plantID, emotionID sql.NullInt64

	err := scanner.Scan(
		&e.ID, &e.UserID, &plantID, &emotionID, &e.Content,
		&e.PhotoURL, &e.AudioURL, &e.PointsEarned, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if plantID.Valid {
		e.PlantID = &plantID.Int64
	}
	if emotionID.Valid {
		e.EmotionID = &emotionID.Int64
	}
	return &e, nil
}

const entryCols = `id, user_id, plant_id, emotion_id, content, photo_url, audio_url, points_earned, created_at`

func (s *JournalStore) Create(userID int64, plantID, emotionID *int64, content, photoURL, audioURL string, pointsEarned int) (*model.JournalEntry, error) {
	var pID, eID sql.NullInt64
	if plantID != nil {
		pID = sql.NullInt64{Int64: *plantID, Valid: true}
	}
	if emotionID != nil {
		eID = sql.NullInt64{Int64: *emotionID, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO journal_entries (user_id, plant_id, emotion_id, content, photo_url, audio_url, points_earned)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, pID, eID, content, photoURL, audioURL, pointsEarned,
	)
	if err != nil {
		return nil, fmt.Errorf("insert journal entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *JournalStore) GetByID(id int64) (*model.JournalEntry, error) {
	row := s.db.QueryRow(`SELECT `+entryCols+` FROM journal_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get journal entry: %w", err)
	}
	return e, nil
}

// ListByUser returns the user's entries newest first.
func (s *JournalStore) ListByUser(userID int64) ([]model.JournalEntry, error) {
	rows, err := s.db.Query(
		`SELECT `+entryCols+` FROM journal_entries WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []model.JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (s *JournalStore) CountByUser(userID int64) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM journal_entries WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count journal entries: %w", err)
	}
	return n, nil
}

// CountTodayByUser counts entries created on the current UTC day, used by
// the reminder scheduler to skip children who already wrote.
func (s *JournalStore) CountTodayByUser(userID int64) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM journal_entries WHERE user_id = ? AND date(created_at) = date('now')`,
		userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count today's journal entries: %w", err)
	}
	return n, nil
}

func (s *JournalStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM journal_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete journal entry: %w", err)
	}
	return nil
}
