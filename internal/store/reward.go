package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/semillita/semillita/internal/model"
)

// Purchase outcomes callers are expected to branch on.
var (
	ErrRewardNotFound     = errors.New("reward not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrAlreadyPurchased   = errors.New("reward already purchased")
)

type RewardStore struct {
	db *sql.DB
}

func NewRewardStore(db *sql.DB) *RewardStore {
	return &RewardStore{db: db}
}

func scanReward(scanner interface{ Scan(...any) error }) (*model.Reward, error) {
	var r model.Reward
	var active int

	err := scanner.Scan(&r.ID, &r.Name, &r.Description, &r.Category, &r.PointsCost, &active, &r.CreatedAt)
	if err != nil {
		return nil, err
	}

	r.Active = active != 0
	return &r, nil
}

const rewardCols = `id, name, description, category, points_cost, active, created_at`

func (s *RewardStore) GetByID(id int64) (*model.Reward, error) {
	row := s.db.QueryRow(`SELECT `+rewardCols+` FROM rewards WHERE id = ?`, id)
	r, err := scanReward(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}
	return r, nil
}

// ListActive returns the purchasable catalog, cheapest first.
func (s *RewardStore) ListActive() ([]model.Reward, error) {
	rows, err := s.db.Query(`SELECT ` + rewardCols + ` FROM rewards WHERE active = 1 ORDER BY points_cost ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active rewards: %w", err)
	}
	defer rows.Close()

	var rewards []model.Reward
	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, *r)
	}
	return rewards, rows.Err()
}

// Upsert inserts a catalog reward by name if it does not already exist.
func (s *RewardStore) Upsert(name, description, category string, pointsCost int) error {
	_, err := s.db.Exec(
		`INSERT INTO rewards (name, description, category, points_cost) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO NOTHING`,
		name, description, category, pointsCost,
	)
	if err != nil {
		return fmt.Errorf("upsert reward: %w", err)
	}
	return nil
}

// --- Purchase methods ---

func scanUserReward(scanner interface{ Scan(...any) error }) (*model.UserReward, error) {
	var ur model.UserReward
	err := scanner.Scan(&ur.ID, &ur.UserID, &ur.RewardID, &ur.PurchasedAt)
	if err != nil {
		return nil, err
	}
	return &ur, nil
}

const userRewardCols = `id, user_id, reward_id, purchased_at`

func (s *RewardStore) ListPurchased(userID int64) ([]model.UserReward, error) {
	rows, err := s.db.Query(
		`SELECT `+userRewardCols+` FROM user_rewards WHERE user_id = ? ORDER BY purchased_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list purchased rewards: %w", err)
	}
	defer rows.Close()

	var purchases []model.UserReward
	for rows.Next() {
		ur, err := scanUserReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user reward: %w", err)
		}
		purchases = append(purchases, *ur)
	}
	return purchases, rows.Err()
}

// Purchase exchanges points for a reward in one transaction. The guarded
// decrement (points >= cost in the UPDATE itself) and the unique constraint
// on (user_id, reward_id) hold even when concurrent purchases race: SQLite
// serializes the writes, and the second transaction sees the first's
// already-decremented balance.
func (s *RewardStore) Purchase(ctx context.Context, userID, rewardID int64) (*model.UserReward, *model.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	reward, err := scanReward(tx.QueryRowContext(ctx, `SELECT `+rewardCols+` FROM rewards WHERE id = ?`, rewardID))
	if err == sql.ErrNoRows {
		return nil, nil, ErrRewardNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get reward: %w", err)
	}

	var points int
	err = tx.QueryRowContext(ctx, `SELECT points FROM users WHERE id = ?`, userID).Scan(&points)
	if err == sql.ErrNoRows {
		return nil, nil, ErrUserNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get user points: %w", err)
	}
	if points < reward.PointsCost {
		return nil, nil, ErrInsufficientPoints
	}

	var owned int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_rewards WHERE user_id = ? AND reward_id = ?`, userID, rewardID).Scan(&owned)
	if err != nil {
		return nil, nil, fmt.Errorf("check existing purchase: %w", err)
	}
	if owned > 0 {
		return nil, nil, ErrAlreadyPurchased
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE users SET points = points - ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND points >= ?`,
		reward.PointsCost, userID, reward.PointsCost,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("debit points: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		// Balance changed between the read and the write.
		return nil, nil, ErrInsufficientPoints
	}

	result, err = tx.ExecContext(ctx,
		`INSERT INTO user_rewards (user_id, reward_id) VALUES (?, ?)`,
		userID, rewardID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("insert purchase: %w", err)
	}
	purchaseID, err := result.LastInsertId()
	if err != nil {
		return nil, nil, fmt.Errorf("last insert id: %w", err)
	}

	purchase, err := scanUserReward(tx.QueryRowContext(ctx, `SELECT `+userRewardCols+` FROM user_rewards WHERE id = ?`, purchaseID))
	if err != nil {
		return nil, nil, fmt.Errorf("get purchase: %w", err)
	}

	user, err := scanUser(tx.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id = ?`, userID))
	if err != nil {
		return nil, nil, fmt.Errorf("get updated user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}
	return purchase, user, nil
}
