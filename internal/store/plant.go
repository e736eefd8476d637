package store

import (
	"database/sql"
	"fmt"

	"github.com/semillita/semillita/internal/model"
)

type PlantStore struct {
	db *sql.DB
}

func NewPlantStore(db *sql.DB) *PlantStore {
	return &PlantStore{db: db}
}

func scanPlant(scanner interface{ Scan(...any) error }) (*model.Plant, error) {
	var p model.Plant
	var active int

	err := scanner.Scan(&p.ID, &p.UserID, &p.Name, &p.Status, &p.PhotoURL, &active, &p.PlantedAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	p.IsActive = active != 0
	return &p, nil
}

const plantCols = `id, user_id, name, status, photo_url, is_active, planted_at, created_at`

// Create plants a new plant for the user. Any previously active plant is
// deactivated first so GetActive reads exactly one row.
func (s *PlantStore) Create(userID int64, name string) (*model.Plant, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE plants SET is_active = 0 WHERE user_id = ? AND is_active = 1`, userID); err != nil {
		return nil, fmt.Errorf("deactivate plants: %w", err)
	}

	result, err := tx.Exec(
		`INSERT INTO plants (user_id, name) VALUES (?, ?)`,
		userID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("insert plant: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

func (s *PlantStore) GetByID(id int64) (*model.Plant, error) {
	row := s.db.QueryRow(`SELECT `+plantCols+` FROM plants WHERE id = ?`, id)
	p, err := scanPlant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get plant: %w", err)
	}
	return p, nil
}

// GetActive returns the user's active plant, or nil if none.
func (s *PlantStore) GetActive(userID int64) (*model.Plant, error) {
	row := s.db.QueryRow(
		`SELECT `+plantCols+` FROM plants WHERE user_id = ? AND is_active = 1 ORDER BY planted_at DESC LIMIT 1`,
		userID,
	)
	p, err := scanPlant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active plant: %w", err)
	}
	return p, nil
}

func (s *PlantStore) UpdateStatus(id int64, status string) (*model.Plant, error) {
	_, err := s.db.Exec(`UPDATE plants SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return nil, fmt.Errorf("update plant status: %w", err)
	}
	return s.GetByID(id)
}

func (s *PlantStore) UpdatePhoto(id int64, photoURL string) (*model.Plant, error) {
	_, err := s.db.Exec(`UPDATE plants SET photo_url = ? WHERE id = ?`, photoURL, id)
	if err != nil {
		return nil, fmt.Errorf("update plant photo: %w", err)
	}
	return s.GetByID(id)
}
