package sqlite

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/tavernkeep/scribe/internal/reference/fulltext"
	"github.com/tavernkeep/scribe/internal/reference/storage"
)

// Full-text index methods

// indexedDoc is the projection of one document that feeds the inverted index.
type indexedDoc struct {
	id       int64
	name     string
	traits   string
	summary  string
	bodyText string
	category string
}

// RebuildIndex clears the inverted index and re-derives it from the current
// contents of the docs table. The whole rebuild runs in one transaction, so
// searchers never observe a half-built index.
func (s *Store) RebuildIndex(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	docs, err := collectIndexedDocs(ctx, tx)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM index_postings"); err != nil {
		return fmt.Errorf("clear postings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM index_docs"); err != nil {
		return fmt.Errorf("clear index docs: %w", err)
	}

	insertPosting, err := tx.PrepareContext(ctx,
		"INSERT INTO index_postings (term, doc_id, occurrences) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare posting insert: %w", err)
	}
	defer insertPosting.Close()

	for _, doc := range docs {
		text := strings.Join([]string{doc.name, doc.traits, doc.summary, doc.bodyText, doc.category}, "\n")
		terms, err := fulltext.Tokens(text)
		if err != nil {
			return fmt.Errorf("tokenize document %d: %w", doc.id, err)
		}
		if len(terms) == 0 {
			continue
		}

		for term, occurrences := range fulltext.TermFrequencies(terms) {
			if _, err := insertPosting.ExecContext(ctx, term, doc.id, occurrences); err != nil {
				return fmt.Errorf("insert posting for document %d: %w", doc.id, err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO index_docs (doc_id, token_count) VALUES (?, ?)",
			doc.id, len(terms),
		); err != nil {
			return fmt.Errorf("insert index doc %d: %w", doc.id, err)
		}
	}

	now := toMillis(time.Now())
	if _, err := tx.ExecContext(ctx, `
INSERT INTO index_state (key, value) VALUES ('stale', '0'), ('last_rebuilt_at', ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`, fmt.Sprint(now),
	); err != nil {
		return fmt.Errorf("update index state: %w", err)
	}

	return tx.Commit()
}

// Search tokenizes and stems the query with the same pipeline as indexing,
// scores documents by normalized term frequency, and returns the top limit
// ids by descending score with ties broken by ascending id.
func (s *Store) Search(ctx context.Context, query string, category string, limit int) ([]storage.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	terms, err := fulltext.Tokens(query)
	if err != nil {
		return nil, fmt.Errorf("tokenize query: %w", err)
	}
	if len(terms) == 0 {
		return []storage.SearchResult{}, nil
	}

	category = strings.TrimSpace(category)
	scores := make(map[int64]float64)

	for term, queryCount := range fulltext.TermFrequencies(terms) {
		var (
			rows *sql.Rows
			err  error
		)
		if category == "" {
			rows, err = s.sqlDB.QueryContext(ctx, `
SELECT p.doc_id, p.occurrences, d.token_count
  FROM index_postings p
  JOIN index_docs d ON d.doc_id = p.doc_id
 WHERE p.term = ?`, term)
		} else {
			rows, err = s.sqlDB.QueryContext(ctx, `
SELECT p.doc_id, p.occurrences, d.token_count
  FROM index_postings p
  JOIN index_docs d ON d.doc_id = p.doc_id
  JOIN docs ON docs.id = p.doc_id
 WHERE p.term = ? AND docs.category = ?`, term, category)
		}
		if err != nil {
			return nil, fmt.Errorf("search postings: %w", err)
		}

		for rows.Next() {
			var docID, occurrences, tokenCount int64
			if err := rows.Scan(&docID, &occurrences, &tokenCount); err != nil {
				rows.Close()
				return nil, fmt.Errorf("search postings: %w", err)
			}
			if tokenCount <= 0 {
				continue
			}
			scores[docID] += float64(queryCount) * float64(occurrences) / float64(tokenCount)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("search postings: %w", err)
		}
		rows.Close()
	}

	results := make([]storage.SearchResult, 0, len(scores))
	for docID, score := range scores {
		results = append(results, storage.SearchResult{DocumentID: docID, Score: score})
	}
	slices.SortStableFunc(results, func(a, b storage.SearchResult) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.DocumentID, b.DocumentID)
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// IndexStale reports whether a document write postdates the last rebuild.
// A corpus that has documents but was never rebuilt counts as stale.
func (s *Store) IndexStale(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s == nil || s.sqlDB == nil {
		return false, fmt.Errorf("storage is not configured")
	}

	var value string
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT value FROM index_state WHERE key = 'stale'").Scan(&value)
	if err == nil {
		return value == "1", nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("read index state: %w", err)
	}

	var docCount int64
	if err := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM docs").Scan(&docCount); err != nil {
		return false, fmt.Errorf("count documents: %w", err)
	}
	return docCount > 0, nil
}

func collectIndexedDocs(ctx context.Context, tx *sql.Tx) ([]indexedDoc, error) {
	rows, err := tx.QueryContext(ctx, `
SELECT id,
       COALESCE(name, ''),
       COALESCE(traits, ''),
       COALESCE(summary, ''),
       COALESCE(body_text, ''),
       COALESCE(category, '')
  FROM docs
 ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("read documents: %w", err)
	}
	defer rows.Close()

	var docs []indexedDoc
	for rows.Next() {
		var doc indexedDoc
		if err := rows.Scan(&doc.id, &doc.name, &doc.traits, &doc.summary, &doc.bodyText, &doc.category); err != nil {
			return nil, fmt.Errorf("read documents: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read documents: %w", err)
	}
	return docs, nil
}
