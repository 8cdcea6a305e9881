package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tavernkeep/scribe/internal/campaign/storage"
)

// Reward methods

// AddReward appends a reward to a session's ledger.
func (s *Store) AddReward(ctx context.Context, reward storage.RewardRecord) (storage.RewardRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.RewardRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.RewardRecord{}, fmt.Errorf("storage is not configured")
	}

	switch reward.RewardType {
	case storage.RewardTypeTreasure, storage.RewardTypeExperience, storage.RewardTypeStory:
	default:
		return storage.RewardRecord{}, storage.ErrRewardTypeInvalid
	}

	var exists int64
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT 1 FROM sessions WHERE id = ?", reward.SessionID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.RewardRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.RewardRecord{}, fmt.Errorf("check session: %w", err)
	}

	now := time.Now()
	result, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO session_rewards (
	session_id, reward_type, description, value_cp, recipient, notes, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		reward.SessionID,
		reward.RewardType,
		reward.Description,
		reward.ValueCP,
		reward.Recipient,
		reward.Notes,
		toMillis(now),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return storage.RewardRecord{}, storage.ErrForeignKeyViolation
		}
		if isCheckViolation(err) {
			return storage.RewardRecord{}, storage.ErrRewardTypeInvalid
		}
		return storage.RewardRecord{}, fmt.Errorf("add reward: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return storage.RewardRecord{}, fmt.Errorf("add reward: %w", err)
	}

	reward.ID = id
	reward.CreatedAt = fromMillis(toMillis(now))
	return reward, nil
}

// ListSessionRewards returns a session's rewards in insertion order.
func (s *Store) ListSessionRewards(ctx context.Context, sessionID int64) ([]storage.RewardRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, session_id, reward_type, description, value_cp, recipient, notes, created_at
  FROM session_rewards
 WHERE session_id = ?
 ORDER BY id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list session rewards: %w", err)
	}
	defer rows.Close()

	var rewards []storage.RewardRecord
	for rows.Next() {
		var (
			reward    storage.RewardRecord
			createdAt int64
		)
		if err := rows.Scan(
			&reward.ID,
			&reward.SessionID,
			&reward.RewardType,
			&reward.Description,
			&reward.ValueCP,
			&reward.Recipient,
			&reward.Notes,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("list session rewards: %w", err)
		}
		reward.CreatedAt = fromMillis(createdAt)
		rewards = append(rewards, reward)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list session rewards: %w", err)
	}
	return rewards, nil
}
