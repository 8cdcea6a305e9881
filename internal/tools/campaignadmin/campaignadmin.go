// Package campaignadmin implements the campaign-database admin CLI.
//
// It initializes a campaign database, creates campaigns, and prints campaign
// summaries for table prep.
package campaignadmin

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/tavernkeep/scribe/internal/campaign/storage"
	storagesqlite "github.com/tavernkeep/scribe/internal/campaign/storage/sqlite"
	"github.com/tavernkeep/scribe/internal/platform/config"
)

// Config holds configuration for the campaign admin tool.
type Config struct {
	DBPath      string
	Create      string
	DMName      string
	Description string
	Summary     string
	List        bool
}

// ParseConfig loads environment defaults and parses CLI flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var databases config.Databases
	if err := config.ParseEnv(&databases); err != nil {
		return Config{}, err
	}

	cfg := Config{DBPath: databases.CampaignDBPath}

	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "campaign database path")
	fs.StringVar(&cfg.Create, "create", "", "create a campaign with this name")
	fs.StringVar(&cfg.DMName, "dm", "", "dungeon master name for -create")
	fs.StringVar(&cfg.Description, "description", "", "description for -create")
	fs.StringVar(&cfg.Summary, "summary", "", "print the summary of the named campaign")
	fs.BoolVar(&cfg.List, "list", false, "list all campaigns")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.Create) == "" && strings.TrimSpace(cfg.Summary) == "" && !cfg.List {
		return Config{}, errors.New("nothing to do: pass -create, -summary, or -list")
	}

	return cfg, nil
}

// Run executes the admin tool using the provided Config. Opening the store
// initializes the database schema, so every invocation doubles as init.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if out == nil {
		out = io.Discard
	}

	store, err := storagesqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open campaign store: %w", err)
	}
	defer store.Close()

	if name := strings.TrimSpace(cfg.Create); name != "" {
		campaign, err := store.CreateCampaign(ctx, storage.Campaign{
			Name:        name,
			DMName:      cfg.DMName,
			Description: cfg.Description,
		})
		if err != nil {
			return fmt.Errorf("create campaign: %w", err)
		}
		if _, err := fmt.Fprintf(out, "created campaign %d: %s\n", campaign.ID, campaign.Name); err != nil {
			return err
		}
	}

	if cfg.List {
		campaigns, err := store.ListCampaigns(ctx)
		if err != nil {
			return fmt.Errorf("list campaigns: %w", err)
		}
		for _, campaign := range campaigns {
			if _, err := fmt.Fprintf(out, "%d  %s (sessions: %d, current: %d)\n",
				campaign.ID, campaign.Name, campaign.TotalSessions, campaign.CurrentSession); err != nil {
				return err
			}
		}
	}

	if name := strings.TrimSpace(cfg.Summary); name != "" {
		campaign, err := store.GetCampaignByName(ctx, name)
		if err != nil {
			return fmt.Errorf("find campaign: %w", err)
		}
		summary, err := store.CampaignSummary(ctx, campaign.ID)
		if err != nil {
			return fmt.Errorf("campaign summary: %w", err)
		}
		if _, err := fmt.Fprintf(out,
			"%s\n  sessions: %d\n  active characters: %d\n  last session: %s\n  play time: %d min\n  experience: %d\n",
			summary.Name,
			summary.SessionCount,
			summary.ActiveCharacterCount,
			summary.LastSessionDate,
			summary.TotalPlayTimeMinutes,
			summary.TotalExperienceAwarded); err != nil {
			return err
		}
	}

	return nil
}
