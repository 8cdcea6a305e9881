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

// Campaign methods

const campaignColumns = `id, name, description, dm_name, created_date, starting_level,
       current_session, total_sessions, settings_json, created_at, updated_at`

// CreateCampaign inserts a campaign with zeroed session counters.
func (s *Store) CreateCampaign(ctx context.Context, campaign storage.Campaign) (storage.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return storage.Campaign{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Campaign{}, fmt.Errorf("storage is not configured")
	}

	campaign.Name = strings.TrimSpace(campaign.Name)
	if campaign.Name == "" {
		return storage.Campaign{}, storage.ErrCampaignNameEmpty
	}
	if campaign.StartingLevel <= 0 {
		campaign.StartingLevel = 1
	}

	settingsJSON, err := encodeBlob(campaign.Settings)
	if err != nil {
		return storage.Campaign{}, err
	}

	now := time.Now()
	result, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO campaigns (
	name, description, dm_name, created_date, starting_level,
	current_session, total_sessions, settings_json, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, 0, 0, ?, ?, ?)`,
		campaign.Name,
		campaign.Description,
		campaign.DMName,
		campaign.CreatedDate,
		campaign.StartingLevel,
		settingsJSON,
		toMillis(now),
		toMillis(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.Campaign{}, storage.ErrUniquenessViolation
		}
		return storage.Campaign{}, fmt.Errorf("create campaign: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return storage.Campaign{}, fmt.Errorf("create campaign: %w", err)
	}

	campaign.ID = id
	campaign.CurrentSession = 0
	campaign.TotalSessions = 0
	campaign.CreatedAt = fromMillis(toMillis(now))
	campaign.UpdatedAt = campaign.CreatedAt
	return campaign, nil
}

// GetCampaign retrieves a campaign by id.
func (s *Store) GetCampaign(ctx context.Context, id int64) (storage.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return storage.Campaign{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Campaign{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+campaignColumns+" FROM campaigns WHERE id = ?", id)
	campaign, err := scanCampaign(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Campaign{}, storage.ErrNotFound
		}
		return storage.Campaign{}, fmt.Errorf("get campaign: %w", err)
	}
	return campaign, nil
}

// GetCampaignByName retrieves a campaign by its unique name.
func (s *Store) GetCampaignByName(ctx context.Context, name string) (storage.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return storage.Campaign{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Campaign{}, fmt.Errorf("storage is not configured")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return storage.Campaign{}, storage.ErrCampaignNameEmpty
	}

	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+campaignColumns+" FROM campaigns WHERE name = ?", name)
	campaign, err := scanCampaign(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Campaign{}, storage.ErrNotFound
		}
		return storage.Campaign{}, fmt.Errorf("get campaign by name: %w", err)
	}
	return campaign, nil
}

// ListCampaigns returns all campaigns ordered by id.
func (s *Store) ListCampaigns(ctx context.Context) ([]storage.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT "+campaignColumns+" FROM campaigns ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []storage.Campaign
	for rows.Next() {
		campaign, err := scanCampaign(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list campaigns: %w", err)
		}
		campaigns = append(campaigns, campaign)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return campaigns, nil
}

// UpdateCampaignSettings replaces the opaque settings blob.
func (s *Store) UpdateCampaignSettings(ctx context.Context, id int64, settings map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	settingsJSON, err := encodeBlob(settings)
	if err != nil {
		return err
	}

	result, err := s.sqlDB.ExecContext(ctx,
		"UPDATE campaigns SET settings_json = ?, updated_at = ? WHERE id = ?",
		settingsJSON, toMillis(time.Now()), id)
	if err != nil {
		return fmt.Errorf("update campaign settings: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update campaign settings: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteCampaign removes a campaign. Sessions, attendance, rewards, and
// progression entries cascade through the schema's foreign keys.
func (s *Store) DeleteCampaign(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	result, err := s.sqlDB.ExecContext(ctx, "DELETE FROM campaigns WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanCampaign(scan func(...any) error) (storage.Campaign, error) {
	var (
		campaign     storage.Campaign
		settingsJSON string
		createdAt    int64
		updatedAt    int64
	)
	if err := scan(
		&campaign.ID,
		&campaign.Name,
		&campaign.Description,
		&campaign.DMName,
		&campaign.CreatedDate,
		&campaign.StartingLevel,
		&campaign.CurrentSession,
		&campaign.TotalSessions,
		&settingsJSON,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.Campaign{}, err
	}

	settings, err := decodeBlob(settingsJSON)
	if err != nil {
		return storage.Campaign{}, err
	}
	campaign.Settings = settings
	campaign.CreatedAt = fromMillis(createdAt)
	campaign.UpdatedAt = fromMillis(updatedAt)
	return campaign, nil
}
