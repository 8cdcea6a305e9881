// Package config loads process configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Databases holds the file paths for the two persisted stores.
type Databases struct {
	// CampaignDBPath locates the per-campaign relational store.
	CampaignDBPath string `env:"SCRIBE_CAMPAIGN_DB" envDefault:"save_files/campaign.db"`
	// ReferenceDBPath locates the scraped rules-reference corpus.
	ReferenceDBPath string `env:"SCRIBE_REFERENCE_DB" envDefault:"save_files/reference.db"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
