package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tavernkeep/scribe/internal/campaign/storage"
)

// Session methods

const sessionColumns = `id, campaign_id, session_number, session_date, duration_minutes,
       experience_awarded, story_notes, dm_notes, session_data_json, created_at, updated_at`

// AddSession inserts a session and recomputes the owning campaign's counters
// in the same transaction. TotalSessions becomes the current row count;
// CurrentSession becomes the inserted session number regardless of whether a
// higher number already exists.
func (s *Store) AddSession(ctx context.Context, session storage.Session) (storage.Session, error) {
	if err := ctx.Err(); err != nil {
		return storage.Session{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Session{}, fmt.Errorf("storage is not configured")
	}
	if session.SessionNumber <= 0 {
		return storage.Session{}, storage.ErrSessionNumberInvalid
	}

	sessionDataJSON, err := encodeBlob(session.SessionData)
	if err != nil {
		return storage.Session{}, err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.Session{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int64
	err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM campaigns WHERE id = ?", session.CampaignID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Session{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Session{}, fmt.Errorf("check campaign: %w", err)
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx, `
INSERT INTO sessions (
	campaign_id, session_number, session_date, duration_minutes,
	experience_awarded, story_notes, dm_notes, session_data_json,
	created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.CampaignID,
		session.SessionNumber,
		session.SessionDate,
		session.DurationMinutes,
		session.ExperienceAwarded,
		session.StoryNotes,
		session.DMNotes,
		sessionDataJSON,
		toMillis(now),
		toMillis(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.Session{}, storage.ErrUniquenessViolation
		}
		if isForeignKeyViolation(err) {
			return storage.Session{}, storage.ErrForeignKeyViolation
		}
		return storage.Session{}, fmt.Errorf("add session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return storage.Session{}, fmt.Errorf("add session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
UPDATE campaigns
   SET total_sessions = (SELECT COUNT(*) FROM sessions WHERE campaign_id = ?),
       current_session = ?,
       updated_at = ?
 WHERE id = ?`,
		session.CampaignID,
		session.SessionNumber,
		toMillis(now),
		session.CampaignID,
	); err != nil {
		return storage.Session{}, fmt.Errorf("update campaign counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return storage.Session{}, fmt.Errorf("commit tx: %w", err)
	}

	session.ID = id
	session.CreatedAt = fromMillis(toMillis(now))
	session.UpdatedAt = session.CreatedAt
	return session, nil
}

// GetSession retrieves a session by id.
func (s *Store) GetSession(ctx context.Context, id int64) (storage.Session, error) {
	if err := ctx.Err(); err != nil {
		return storage.Session{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Session{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)
	session, err := scanSession(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Session{}, storage.ErrNotFound
		}
		return storage.Session{}, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// ListSessions returns a campaign's sessions ordered by session number.
func (s *Store) ListSessions(ctx context.Context, campaignID int64) ([]storage.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE campaign_id = ? ORDER BY session_number ASC",
		campaignID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []storage.Session
	for rows.Next() {
		session, err := scanSession(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// LatestSession returns the most recently inserted session of a campaign,
// which is the one CurrentSession mirrors.
func (s *Store) LatestSession(ctx context.Context, campaignID int64) (storage.Session, error) {
	if err := ctx.Err(); err != nil {
		return storage.Session{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Session{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE campaign_id = ? ORDER BY id DESC LIMIT 1",
		campaignID)
	session, err := scanSession(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Session{}, storage.ErrNotFound
		}
		return storage.Session{}, fmt.Errorf("latest session: %w", err)
	}
	return session, nil
}

func scanSession(scan func(...any) error) (storage.Session, error) {
	var (
		session         storage.Session
		sessionDataJSON string
		createdAt       int64
		updatedAt       int64
	)
	if err := scan(
		&session.ID,
		&session.CampaignID,
		&session.SessionNumber,
		&session.SessionDate,
		&session.DurationMinutes,
		&session.ExperienceAwarded,
		&session.StoryNotes,
		&session.DMNotes,
		&sessionDataJSON,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.Session{}, err
	}

	sessionData, err := decodeBlob(sessionDataJSON)
	if err != nil {
		return storage.Session{}, err
	}
	session.SessionData = sessionData
	session.CreatedAt = fromMillis(createdAt)
	session.UpdatedAt = fromMillis(updatedAt)
	return session, nil
}
