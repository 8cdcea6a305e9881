// Package referenceload implements the reference-corpus loader CLI.
//
// It ingests scraped rules documents from a JSON file, rebuilds the full-text
// index, and runs ad-hoc searches against the corpus.
package referenceload

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tavernkeep/scribe/internal/platform/config"
	"github.com/tavernkeep/scribe/internal/reference/storage"
	storagesqlite "github.com/tavernkeep/scribe/internal/reference/storage/sqlite"
)

// Config holds configuration for the reference loader.
type Config struct {
	DocsPath string
	DBPath   string
	Rebuild  bool
	Search   string
	Category string
	Limit    int
}

// ParseConfig loads environment defaults and parses CLI flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var databases config.Databases
	if err := config.ParseEnv(&databases); err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath: databases.ReferenceDBPath,
		Limit:  10,
	}

	fs.StringVar(&cfg.DocsPath, "docs", "", "JSON file of scraped documents to load")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "reference database path")
	fs.BoolVar(&cfg.Rebuild, "rebuild", false, "rebuild the full-text index")
	fs.StringVar(&cfg.Search, "search", "", "query to run against the index")
	fs.StringVar(&cfg.Category, "category", "", "restrict search to one category")
	fs.IntVar(&cfg.Limit, "limit", cfg.Limit, "maximum search results")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.DocsPath) == "" && !cfg.Rebuild && strings.TrimSpace(cfg.Search) == "" {
		return Config{}, errors.New("nothing to do: pass -docs, -rebuild, or -search")
	}
	if cfg.Limit <= 0 {
		return Config{}, errors.New("limit must be positive")
	}

	return cfg, nil
}

// documentPayload mirrors the scraper's JSON document shape.
type documentPayload struct {
	ID              int64          `json:"id"`
	Category        string         `json:"category"`
	Name            string         `json:"name"`
	Traits          string         `json:"traits"`
	Summary         string         `json:"summary"`
	BodyText        string         `json:"body_text"`
	SourceURL       string         `json:"source_url"`
	Level           *int64         `json:"level"`
	Rarity          string         `json:"rarity"`
	Traditions      string         `json:"traditions"`
	ActionsNotation string         `json:"actions_notation"`
	SourceBook      string         `json:"source_book"`
	Extra           map[string]any `json:"extra"`
}

// Run executes the loader using the provided Config.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if out == nil {
		out = io.Discard
	}

	store, err := storagesqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open reference store: %w", err)
	}
	defer store.Close()

	loaded := 0
	if path := strings.TrimSpace(cfg.DocsPath); path != "" {
		loaded, err = loadDocuments(ctx, store, path)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(out, "loaded %d document(s) into %s\n", loaded, cfg.DBPath); err != nil {
			return err
		}
	}

	if cfg.Rebuild || loaded > 0 {
		if err := store.RebuildIndex(ctx); err != nil {
			return fmt.Errorf("rebuild index: %w", err)
		}
		if _, err := fmt.Fprintln(out, "index rebuilt"); err != nil {
			return err
		}
	}

	if query := strings.TrimSpace(cfg.Search); query != "" {
		if stale, err := store.IndexStale(ctx); err == nil && stale {
			if _, err := fmt.Fprintln(out, "warning: index is stale, results may lag recent loads"); err != nil {
				return err
			}
		}
		results, err := store.Search(ctx, query, cfg.Category, cfg.Limit)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		for _, result := range results {
			doc, err := store.GetDocument(ctx, result.DocumentID)
			if err != nil {
				return fmt.Errorf("load result %d: %w", result.DocumentID, err)
			}
			if _, err := fmt.Fprintf(out, "%8.4f  %d  %s (%s)\n", result.Score, doc.ID, doc.Name, doc.Category); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(out, "%d result(s)\n", len(results)); err != nil {
			return err
		}
	}

	return nil
}

func loadDocuments(ctx context.Context, store storage.DocumentStore, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read documents: %w", err)
	}

	var payloads []documentPayload
	if err := json.Unmarshal(data, &payloads); err != nil {
		return 0, fmt.Errorf("decode documents: %w", err)
	}

	for _, payload := range payloads {
		doc := storage.Document{
			ID:              payload.ID,
			Category:        payload.Category,
			Name:            payload.Name,
			Traits:          payload.Traits,
			Summary:         payload.Summary,
			BodyText:        payload.BodyText,
			SourceURL:       payload.SourceURL,
			Level:           payload.Level,
			Rarity:          payload.Rarity,
			Traditions:      payload.Traditions,
			ActionsNotation: payload.ActionsNotation,
			SourceBook:      payload.SourceBook,
			Extra:           payload.Extra,
		}
		if err := store.UpsertDocument(ctx, doc); err != nil {
			return 0, fmt.Errorf("upsert document %d: %w", payload.ID, err)
		}
	}
	return len(payloads), nil
}
