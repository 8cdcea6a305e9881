// Package storage defines persistence contracts for the rules-reference corpus.
//
// It covers the denormalized document store populated by the scraper and the
// rebuildable full-text index over it. Implementations (e.g., SQLite) live in
// subpackages.
//
// Common error types:
//   - ErrNotFound: requested document is missing
//   - ErrDocumentIDMissing: a write omitted the externally assigned id
package storage

import (
	"context"

	apperrors "github.com/tavernkeep/scribe/internal/platform/errors"
)

// ErrNotFound indicates a requested document is missing.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "document not found")

// ErrDocumentIDMissing indicates a document write omitted its stable id.
// Document ids are assigned by the scraper collaborator and are never generated
// here. The sentinel carries the constraint-violation code.
var ErrDocumentIDMissing = apperrors.New(apperrors.CodeConstraintViolation, "document id is required")

// Document is one denormalized rules-reference entry (spell, feat, item, etc.).
// All fields except ID are optional; re-scraping overwrites records in place.
type Document struct {
	ID              int64
	Category        string
	Name            string
	Traits          string
	Summary         string
	BodyText        string
	SourceURL       string
	Level           *int64
	Rarity          string
	Traditions      string
	ActionsNotation string
	SourceBook      string
	// Extra carries unmapped scraper fields; producers outside this layer own its shape.
	Extra map[string]any
}

// DocumentFilter restricts QueryDocuments results by plain attribute matching.
type DocumentFilter struct {
	Category   string
	NamePrefix string
	LevelMin   *int64
	LevelMax   *int64
}

// SearchResult is one ranked hit from the full-text index.
type SearchResult struct {
	DocumentID int64
	Score      float64
}

// DocumentStore persists rules-reference documents.
type DocumentStore interface {
	// UpsertDocument inserts or replaces the document with the matching id and
	// marks the full-text index stale in the same transaction.
	UpsertDocument(ctx context.Context, doc Document) error
	// GetDocument retrieves a document by id. Returns ErrNotFound when absent.
	GetDocument(ctx context.Context, id int64) (Document, error)
	// QueryDocuments returns documents matching the filter ordered by id.
	QueryDocuments(ctx context.Context, filter DocumentFilter) ([]Document, error)
}

// SearchIndex owns the derived full-text index over the document store.
//
// The index is not kept in sync incrementally: RebuildIndex is the sole
// synchronization mechanism, and readers tolerate staleness between a document
// write and the next rebuild.
type SearchIndex interface {
	// RebuildIndex clears the index and re-derives it from current documents.
	// Calling it repeatedly without intervening writes yields identical results.
	RebuildIndex(ctx context.Context) error
	// Search returns up to limit document ids ranked by descending relevance,
	// ties broken by ascending id. An empty index yields an empty slice.
	Search(ctx context.Context, query string, category string, limit int) ([]SearchResult, error)
	// IndexStale reports whether a document write postdates the last rebuild.
	IndexStale(ctx context.Context) (bool, error)
}

// Store is the composite reference-corpus persistence contract.
type Store interface {
	DocumentStore
	SearchIndex
	Close() error
}
