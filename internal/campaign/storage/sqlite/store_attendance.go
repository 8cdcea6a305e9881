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

// Attendance methods

// RecordAttendance inserts an attendance row. When the record names a
// character, the matching progression entry is upserted in the same
// transaction: identity and last-seen fields follow the attendance event,
// while level and experience points are left to the character-sheet writer.
func (s *Store) RecordAttendance(ctx context.Context, record storage.AttendanceRecord) (storage.AttendanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.AttendanceRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.AttendanceRecord{}, fmt.Errorf("storage is not configured")
	}

	record.PlayerName = strings.TrimSpace(record.PlayerName)
	if record.PlayerName == "" {
		return storage.AttendanceRecord{}, storage.ErrAttendancePlayerEmpty
	}
	record.CharacterName = strings.TrimSpace(record.CharacterName)
	if record.Status == "" {
		record.Status = storage.AttendanceStatusPresent
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.AttendanceRecord{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var campaignID int64
	err = tx.QueryRowContext(ctx,
		"SELECT campaign_id FROM sessions WHERE id = ?", record.SessionID).Scan(&campaignID)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.AttendanceRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.AttendanceRecord{}, fmt.Errorf("check session: %w", err)
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx, `
INSERT INTO session_attendance (
	session_id, player_name, character_name, attendance_status, notes, created_at
) VALUES (?, ?, ?, ?, ?, ?)`,
		record.SessionID,
		record.PlayerName,
		toNullString(record.CharacterName),
		record.Status,
		record.Notes,
		toMillis(now),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return storage.AttendanceRecord{}, storage.ErrForeignKeyViolation
		}
		return storage.AttendanceRecord{}, fmt.Errorf("record attendance: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return storage.AttendanceRecord{}, fmt.Errorf("record attendance: %w", err)
	}

	if record.CharacterName != "" {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO character_progression (
	campaign_id, character_name, player_name, level, experience_points,
	last_session_id, character_file_path, updated_at
) VALUES (?, ?, ?, 1, 0, ?, '', ?)
ON CONFLICT(campaign_id, character_name) DO UPDATE SET
	player_name = excluded.player_name,
	last_session_id = excluded.last_session_id,
	updated_at = excluded.updated_at`,
			campaignID,
			record.CharacterName,
			record.PlayerName,
			record.SessionID,
			toMillis(now),
		); err != nil {
			return storage.AttendanceRecord{}, fmt.Errorf("upsert progression: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storage.AttendanceRecord{}, fmt.Errorf("commit tx: %w", err)
	}

	record.ID = id
	record.CreatedAt = fromMillis(toMillis(now))
	return record, nil
}

// ListAttendance returns a session's attendance rows in insertion order.
func (s *Store) ListAttendance(ctx context.Context, sessionID int64) ([]storage.AttendanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, session_id, player_name, character_name, attendance_status, notes, created_at
  FROM session_attendance
 WHERE session_id = ?
 ORDER BY id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	var records []storage.AttendanceRecord
	for rows.Next() {
		var (
			record        storage.AttendanceRecord
			characterName sql.NullString
			createdAt     int64
		)
		if err := rows.Scan(
			&record.ID,
			&record.SessionID,
			&record.PlayerName,
			&characterName,
			&record.Status,
			&record.Notes,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("list attendance: %w", err)
		}
		record.CharacterName = characterName.String
		record.CreatedAt = fromMillis(createdAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

// ListAttendanceCounts returns per-player totals of present-status attendance
// across a campaign's sessions, ordered by player name.
func (s *Store) ListAttendanceCounts(ctx context.Context, campaignID int64) ([]storage.AttendanceCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT a.player_name, COUNT(*)
  FROM session_attendance a
  JOIN sessions s ON s.id = a.session_id
 WHERE s.campaign_id = ? AND a.attendance_status = 'present'
 GROUP BY a.player_name
 ORDER BY a.player_name ASC`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list attendance counts: %w", err)
	}
	defer rows.Close()

	var counts []storage.AttendanceCount
	for rows.Next() {
		var count storage.AttendanceCount
		if err := rows.Scan(&count.PlayerName, &count.SessionsAttended); err != nil {
			return nil, fmt.Errorf("list attendance counts: %w", err)
		}
		counts = append(counts, count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attendance counts: %w", err)
	}
	return counts, nil
}
