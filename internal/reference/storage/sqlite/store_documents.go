package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tavernkeep/scribe/internal/reference/storage"
)

// Document methods

// UpsertDocument inserts or replaces the document with the matching id.
// The full-text index stale flag is set in the same transaction, so a reader
// that observes the new document also observes that the index lags it.
func (s *Store) UpsertDocument(ctx context.Context, doc storage.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if doc.ID == 0 {
		return storage.ErrDocumentIDMissing
	}

	extraJSON, err := encodeExtra(doc.Extra)
	if err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO docs (
	id, category, name, traits, summary, body_text, source_url,
	level, rarity, traditions, actions_notation, source_book, extra_json
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	category = excluded.category,
	name = excluded.name,
	traits = excluded.traits,
	summary = excluded.summary,
	body_text = excluded.body_text,
	source_url = excluded.source_url,
	level = excluded.level,
	rarity = excluded.rarity,
	traditions = excluded.traditions,
	actions_notation = excluded.actions_notation,
	source_book = excluded.source_book,
	extra_json = excluded.extra_json`,
		doc.ID,
		toNullString(doc.Category),
		toNullString(doc.Name),
		toNullString(doc.Traits),
		toNullString(doc.Summary),
		toNullString(doc.BodyText),
		toNullString(doc.SourceURL),
		toNullInt64(doc.Level),
		toNullString(doc.Rarity),
		toNullString(doc.Traditions),
		toNullString(doc.ActionsNotation),
		toNullString(doc.SourceBook),
		extraJSON,
	); err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO index_state (key, value) VALUES ('stale', '1')
ON CONFLICT(key) DO UPDATE SET value = '1'`,
	); err != nil {
		return fmt.Errorf("mark index stale: %w", err)
	}

	return tx.Commit()
}

// GetDocument retrieves a document by id.
func (s *Store) GetDocument(ctx context.Context, id int64) (storage.Document, error) {
	if err := ctx.Err(); err != nil {
		return storage.Document{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Document{}, fmt.Errorf("storage is not configured")
	}
	if id == 0 {
		return storage.Document{}, storage.ErrDocumentIDMissing
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, category, name, traits, summary, body_text, source_url,
       level, rarity, traditions, actions_notation, source_book, extra_json
  FROM docs
 WHERE id = ?`, id)

	doc, err := scanDocument(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Document{}, storage.ErrNotFound
		}
		return storage.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// QueryDocuments returns documents matching the filter ordered by id.
// All filter fields are optional; an empty filter returns the whole corpus.
func (s *Store) QueryDocuments(ctx context.Context, filter storage.DocumentFilter) ([]storage.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	query := strings.Builder{}
	query.WriteString(`
SELECT id, category, name, traits, summary, body_text, source_url,
       level, rarity, traditions, actions_notation, source_book, extra_json
  FROM docs
 WHERE 1 = 1`)

	var args []any
	if category := strings.TrimSpace(filter.Category); category != "" {
		query.WriteString(" AND category = ?")
		args = append(args, category)
	}
	if prefix := strings.TrimSpace(filter.NamePrefix); prefix != "" {
		query.WriteString(` AND name LIKE ? ESCAPE '\'`)
		args = append(args, escapeLike(prefix)+"%")
	}
	if filter.LevelMin != nil {
		query.WriteString(" AND level >= ?")
		args = append(args, *filter.LevelMin)
	}
	if filter.LevelMax != nil {
		query.WriteString(" AND level <= ?")
		args = append(args, *filter.LevelMax)
	}
	query.WriteString(" ORDER BY id ASC")

	rows, err := s.sqlDB.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []storage.Document
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("query documents: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	return docs, nil
}

// scanDocument maps one docs row through a row.Scan-shaped function.
func scanDocument(scan func(...any) error) (storage.Document, error) {
	var (
		doc             storage.Document
		category        sql.NullString
		name            sql.NullString
		traits          sql.NullString
		summary         sql.NullString
		bodyText        sql.NullString
		sourceURL       sql.NullString
		level           sql.NullInt64
		rarity          sql.NullString
		traditions      sql.NullString
		actionsNotation sql.NullString
		sourceBook      sql.NullString
		extraJSON       sql.NullString
	)
	if err := scan(
		&doc.ID, &category, &name, &traits, &summary, &bodyText, &sourceURL,
		&level, &rarity, &traditions, &actionsNotation, &sourceBook, &extraJSON,
	); err != nil {
		return storage.Document{}, err
	}

	doc.Category = category.String
	doc.Name = name.String
	doc.Traits = traits.String
	doc.Summary = summary.String
	doc.BodyText = bodyText.String
	doc.SourceURL = sourceURL.String
	doc.Level = fromNullInt64(level)
	doc.Rarity = rarity.String
	doc.Traditions = traditions.String
	doc.ActionsNotation = actionsNotation.String
	doc.SourceBook = sourceBook.String

	extra, err := decodeExtra(extraJSON.String)
	if err != nil {
		return storage.Document{}, err
	}
	doc.Extra = extra
	return doc, nil
}

func escapeLike(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, "%", `\%`)
	value = strings.ReplaceAll(value, "_", `\_`)
	return value
}
