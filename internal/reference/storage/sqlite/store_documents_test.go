package sqlite

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/tavernkeep/scribe/internal/platform/errors"
	"github.com/tavernkeep/scribe/internal/reference/storage"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func TestUpsertDocumentRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	doc := storage.Document{
		ID:              42,
		Category:        "spell",
		Name:            "Fireball",
		Traits:          "evocation,fire",
		Summary:         "A roaring blast of fire.",
		BodyText:        "You hurl a ball of fire that explodes on impact.",
		SourceURL:       "https://example.test/spells/fireball",
		Level:           int64Ptr(3),
		Rarity:          "common",
		Traditions:      "arcane,primal",
		ActionsNotation: "2",
		SourceBook:      "Core Rulebook",
		Extra:           map[string]any{"heightened": "+2d6"},
	}
	if err := store.UpsertDocument(ctx, doc); err != nil {
		t.Fatalf("upsert document: %v", err)
	}

	got, err := store.GetDocument(ctx, 42)
	if err != nil {
		t.Fatalf("get document: %v", err)
	}
	if got.Name != doc.Name || got.Category != doc.Category || got.BodyText != doc.BodyText {
		t.Errorf("got document %+v, want %+v", got, doc)
	}
	if got.Level == nil || *got.Level != 3 {
		t.Errorf("got level %v, want 3", got.Level)
	}
	if got.Extra["heightened"] != "+2d6" {
		t.Errorf("got extra %v, want heightened +2d6", got.Extra)
	}
}

func TestUpsertDocumentRequiresID(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)

	err := store.UpsertDocument(context.Background(), storage.Document{Name: "Nameless"})
	if !errors.Is(err, storage.ErrDocumentIDMissing) {
		t.Fatalf("got error %v, want ErrDocumentIDMissing", err)
	}
	if !errors.Is(err, apperrors.New(apperrors.CodeConstraintViolation, "")) {
		t.Fatalf("got error %v, want the constraint-violation code", err)
	}
}

func TestUpsertDocumentReplacesExisting(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	if err := store.UpsertDocument(ctx, storage.Document{ID: 7, Name: "Shield", Level: int64Ptr(1)}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := store.UpsertDocument(ctx, storage.Document{ID: 7, Name: "Shield (Remastered)"}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := store.GetDocument(ctx, 7)
	if err != nil {
		t.Fatalf("get document: %v", err)
	}
	if got.Name != "Shield (Remastered)" {
		t.Errorf("got name %q, want replacement", got.Name)
	}
	if got.Level != nil {
		t.Errorf("got level %v, want nil after replacement", got.Level)
	}

	docs, err := store.QueryDocuments(ctx, storage.DocumentFilter{})
	if err != nil {
		t.Fatalf("query documents: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("got %d documents, want 1", len(docs))
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)

	_, err := store.GetDocument(context.Background(), 999)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("got error %v, want ErrNotFound", err)
	}
}

func TestQueryDocumentsFilters(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	seed := []storage.Document{
		{ID: 1, Category: "spell", Name: "Fireball", Level: int64Ptr(3)},
		{ID: 2, Category: "spell", Name: "Fire Shield", Level: int64Ptr(4)},
		{ID: 3, Category: "feat", Name: "Fireproof", Level: int64Ptr(6)},
		{ID: 4, Category: "spell", Name: "Heal", Level: int64Ptr(1)},
	}
	for _, doc := range seed {
		if err := store.UpsertDocument(ctx, doc); err != nil {
			t.Fatalf("seed document %d: %v", doc.ID, err)
		}
	}

	spells, err := store.QueryDocuments(ctx, storage.DocumentFilter{Category: "spell"})
	if err != nil {
		t.Fatalf("query by category: %v", err)
	}
	if len(spells) != 3 {
		t.Errorf("got %d spells, want 3", len(spells))
	}

	fire, err := store.QueryDocuments(ctx, storage.DocumentFilter{NamePrefix: "Fire"})
	if err != nil {
		t.Fatalf("query by prefix: %v", err)
	}
	if len(fire) != 3 {
		t.Errorf("got %d prefix matches, want 3", len(fire))
	}

	ranged, err := store.QueryDocuments(ctx, storage.DocumentFilter{
		Category: "spell",
		LevelMin: int64Ptr(3),
		LevelMax: int64Ptr(4),
	})
	if err != nil {
		t.Fatalf("query by level range: %v", err)
	}
	if len(ranged) != 2 {
		t.Fatalf("got %d ranged matches, want 2", len(ranged))
	}
	if ranged[0].ID != 1 || ranged[1].ID != 2 {
		t.Errorf("got ids %d, %d, want ascending 1, 2", ranged[0].ID, ranged[1].ID)
	}
}

func TestQueryDocumentsEscapesLikeWildcards(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	if err := store.UpsertDocument(ctx, storage.Document{ID: 1, Name: "100% Orc"}); err != nil {
		t.Fatalf("seed document: %v", err)
	}
	if err := store.UpsertDocument(ctx, storage.Document{ID: 2, Name: "1000 Needles"}); err != nil {
		t.Fatalf("seed document: %v", err)
	}

	docs, err := store.QueryDocuments(ctx, storage.DocumentFilter{NamePrefix: "100%"})
	if err != nil {
		t.Fatalf("query documents: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != 1 {
		t.Fatalf("got %d matches, want only the literal-percent name", len(docs))
	}
}
