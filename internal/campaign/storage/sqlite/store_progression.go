package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tavernkeep/scribe/internal/campaign/storage"
)

// Progression methods

const progressionColumns = `campaign_id, character_name, player_name, level,
       experience_points, last_session_id, character_file_path, updated_at`

// GetProgression retrieves one character's progression entry.
func (s *Store) GetProgression(ctx context.Context, campaignID int64, characterName string) (storage.ProgressionEntry, error) {
	if err := ctx.Err(); err != nil {
		return storage.ProgressionEntry{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ProgressionEntry{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+progressionColumns+" FROM character_progression WHERE campaign_id = ? AND character_name = ?",
		campaignID, strings.TrimSpace(characterName))
	entry, err := scanProgression(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ProgressionEntry{}, storage.ErrNotFound
		}
		return storage.ProgressionEntry{}, fmt.Errorf("get progression: %w", err)
	}
	return entry, nil
}

// ListProgression returns a campaign's progression entries by character name.
func (s *Store) ListProgression(ctx context.Context, campaignID int64) ([]storage.ProgressionEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT "+progressionColumns+" FROM character_progression WHERE campaign_id = ? ORDER BY character_name ASC",
		campaignID)
	if err != nil {
		return nil, fmt.Errorf("list progression: %w", err)
	}
	defer rows.Close()

	var entries []storage.ProgressionEntry
	for rows.Next() {
		entry, err := scanProgression(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list progression: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list progression: %w", err)
	}
	return entries, nil
}

// UpdateProgressionSheet writes the fields the character-sheet collaborator
// owns: level, experience points, and the sheet file path.
func (s *Store) UpdateProgressionSheet(ctx context.Context, campaignID int64, characterName string, level int64, experiencePoints int64, filePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE character_progression
   SET level = ?,
       experience_points = ?,
       character_file_path = ?,
       updated_at = ?
 WHERE campaign_id = ? AND character_name = ?`,
		level,
		experiencePoints,
		filePath,
		toMillis(time.Now()),
		campaignID,
		strings.TrimSpace(characterName),
	)
	if err != nil {
		return fmt.Errorf("update progression sheet: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update progression sheet: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanProgression(scan func(...any) error) (storage.ProgressionEntry, error) {
	var (
		entry         storage.ProgressionEntry
		lastSessionID sql.NullInt64
		updatedAt     int64
	)
	if err := scan(
		&entry.CampaignID,
		&entry.CharacterName,
		&entry.PlayerName,
		&entry.Level,
		&entry.ExperiencePoints,
		&lastSessionID,
		&entry.CharacterFilePath,
		&updatedAt,
	); err != nil {
		return storage.ProgressionEntry{}, err
	}
	entry.LastSessionID = lastSessionID.Int64
	entry.UpdatedAt = fromMillis(updatedAt)
	return entry, nil
}
