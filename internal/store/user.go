package store

import (
	"database/sql"
	"fmt"

	"github.com/semillita/semillita/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var parental, verified int
	var pinHash string

	err := scanner.Scan(
		&u.ID, &u.Alias, &u.Role, &u.Age, &u.AvatarEmoji, &u.Points,
		&u.ParentEmail, &parental, &verified, &pinHash,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.ParentalConsent = parental != 0
	u.ConsentVerified = verified != 0
	u.HasPIN = pinHash != ""
	return &u, nil
}

const userCols = `id, alias, role, age, avatar_emoji, points, parent_email, parental_consent, consent_verified, pin_hash, created_at, updated_at`

func (s *UserStore) Create(alias, role string, age int, avatarEmoji, parentEmail string, parentalConsent bool) (*model.User, error) {
	var pc int
	if parentalConsent {
		pc = 1
	}

	result, err := s.db.Exec(
		`INSERT INTO users (alias, role, age, avatar_emoji, parent_email, parental_consent) VALUES (?, ?, ?, ?, ?, ?)`,
		alias, role, age, avatarEmoji, parentEmail, pc,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByAlias(alias string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE alias = ?`, alias)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by alias: %w", err)
	}
	return u, nil
}

func (s *UserStore) AliasExists(alias string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM users WHERE alias = ?`, alias).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check alias: %w", err)
	}
	return n > 0, nil
}

// ListByRole returns users with the given role, ordered by alias.
func (s *UserStore) ListByRole(role string) ([]model.User, error) {
	rows, err := s.db.Query(`SELECT `+userCols+` FROM users WHERE role = ? ORDER BY alias ASC`, role)
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// AddPoints credits (or debits, with a negative delta) a user's balance with
// a server-side increment so concurrent awards never lose updates.
func (s *UserStore) AddPoints(id int64, delta int) error {
	_, err := s.db.Exec(
		`UPDATE users SET points = points + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		delta, id,
	)
	if err != nil {
		return fmt.Errorf("add points: %w", err)
	}
	return nil
}

func (s *UserStore) SetParentalConsent(id int64, granted bool) error {
	var v int
	if granted {
		v = 1
	}
	_, err := s.db.Exec(
		`UPDATE users SET parental_consent = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		v, id,
	)
	if err != nil {
		return fmt.Errorf("set parental consent: %w", err)
	}
	return nil
}

func (s *UserStore) SetConsentVerified(id int64, verified bool) error {
	var v int
	if verified {
		v = 1
	}
	_, err := s.db.Exec(
		`UPDATE users SET consent_verified = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		v, id,
	)
	if err != nil {
		return fmt.Errorf("set consent verified: %w", err)
	}
	return nil
}

func (s *UserStore) SetPIN(id int64, hash string) error {
	_, err := s.db.Exec(`UPDATE users SET pin_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, hash, id)
	if err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	return nil
}

func (s *UserStore) GetPINHash(id int64) (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT pin_hash FROM users WHERE id = ?`, id).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get pin hash: %w", err)
	}
	return hash, nil
}

func (s *UserStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
