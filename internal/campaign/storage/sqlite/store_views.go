package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tavernkeep/scribe/internal/campaign/storage"
)

// Aggregation views

// CampaignSummary reads the campaign_summary view for one campaign.
func (s *Store) CampaignSummary(ctx context.Context, campaignID int64) (storage.CampaignSummary, error) {
	if err := ctx.Err(); err != nil {
		return storage.CampaignSummary{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.CampaignSummary{}, fmt.Errorf("storage is not configured")
	}

	var summary storage.CampaignSummary
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT campaign_id, name, session_count, active_character_count,
       last_session_date, total_play_time_minutes, total_experience_awarded
  FROM campaign_summary
 WHERE campaign_id = ?`, campaignID).Scan(
		&summary.CampaignID,
		&summary.Name,
		&summary.SessionCount,
		&summary.ActiveCharacterCount,
		&summary.LastSessionDate,
		&summary.TotalPlayTimeMinutes,
		&summary.TotalExperienceAwarded,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.CampaignSummary{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.CampaignSummary{}, fmt.Errorf("campaign summary: %w", err)
	}
	return summary, nil
}

// SessionAttendanceSummary reads the session_attendance_summary view and the
// ordered attendee list for one session. Only present-status rows count.
func (s *Store) SessionAttendanceSummary(ctx context.Context, sessionID int64) (storage.SessionAttendanceSummary, error) {
	if err := ctx.Err(); err != nil {
		return storage.SessionAttendanceSummary{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.SessionAttendanceSummary{}, fmt.Errorf("storage is not configured")
	}

	var summary storage.SessionAttendanceSummary
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT session_id, attendee_count, duration_minutes, experience_awarded
  FROM session_attendance_summary
 WHERE session_id = ?`, sessionID).Scan(
		&summary.SessionID,
		&summary.AttendeeCount,
		&summary.DurationMinutes,
		&summary.ExperienceAwarded,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.SessionAttendanceSummary{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.SessionAttendanceSummary{}, fmt.Errorf("session attendance summary: %w", err)
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT player_name
  FROM session_attendance
 WHERE session_id = ? AND attendance_status = 'present'
 ORDER BY id ASC`, sessionID)
	if err != nil {
		return storage.SessionAttendanceSummary{}, fmt.Errorf("session attendees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var attendee string
		if err := rows.Scan(&attendee); err != nil {
			return storage.SessionAttendanceSummary{}, fmt.Errorf("session attendees: %w", err)
		}
		summary.Attendees = append(summary.Attendees, attendee)
	}
	if err := rows.Err(); err != nil {
		return storage.SessionAttendanceSummary{}, fmt.Errorf("session attendees: %w", err)
	}
	return summary, nil
}
