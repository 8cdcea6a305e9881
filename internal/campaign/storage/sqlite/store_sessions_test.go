package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/tavernkeep/scribe/internal/campaign/storage"
)

func TestAddSessionUpdatesCounters(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	campaign := createTestCampaign(t, store, "Counter Check")

	for _, number := range []int64{1, 4, 2} {
		addTestSession(t, store, campaign.ID, number)
	}

	got, err := store.GetCampaign(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("get campaign: %v", err)
	}
	if got.TotalSessions != 3 {
		t.Errorf("got total sessions %d, want 3", got.TotalSessions)
	}
	if got.CurrentSession != 2 {
		t.Errorf("got current session %d, want the last inserted number 2", got.CurrentSession)
	}
}

func TestAddSessionCurrentSessionFollowsInsertionOrder(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	campaign := createTestCampaign(t, store, "Out of Order")

	addTestSession(t, store, campaign.ID, 5)
	addTestSession(t, store, campaign.ID, 2)

	got, err := store.GetCampaign(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("get campaign: %v", err)
	}
	if got.CurrentSession != 2 {
		t.Errorf("got current session %d, want 2 even though 5 exists", got.CurrentSession)
	}
	if got.TotalSessions != 2 {
		t.Errorf("got total sessions %d, want 2", got.TotalSessions)
	}
}

func TestAddSessionUnknownCampaign(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)

	_, err := store.AddSession(context.Background(), storage.Session{CampaignID: 404, SessionNumber: 1})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("got error %v, want ErrNotFound", err)
	}
}

func TestAddSessionDuplicateNumber(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	campaign := createTestCampaign(t, store, "Duplicate Numbers")
	addTestSession(t, store, campaign.ID, 1)

	_, err := store.AddSession(ctx, storage.Session{CampaignID: campaign.ID, SessionNumber: 1})
	if !errors.Is(err, storage.ErrUniquenessViolation) {
		t.Fatalf("got error %v, want ErrUniquenessViolation", err)
	}

	got, err := store.GetCampaign(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("get campaign: %v", err)
	}
	if got.TotalSessions != 1 {
		t.Errorf("got total sessions %d after failed insert, want 1", got.TotalSessions)
	}
}

func TestAddSessionRequiresPositiveNumber(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)

	campaign := createTestCampaign(t, store, "Positive Numbers")

	_, err := store.AddSession(context.Background(), storage.Session{CampaignID: campaign.ID, SessionNumber: 0})
	if !errors.Is(err, storage.ErrSessionNumberInvalid) {
		t.Fatalf("got error %v, want ErrSessionNumberInvalid", err)
	}
}

func TestGetSessionRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	campaign := createTestCampaign(t, store, "Round Trip")

	created, err := store.AddSession(ctx, storage.Session{
		CampaignID:        campaign.ID,
		SessionNumber:     1,
		SessionDate:       "2024-03-14",
		DurationMinutes:   240,
		ExperienceAwarded: 120,
		StoryNotes:        "The party reached the ruined keep.",
		DMNotes:           "Foreshadow the cult leader.",
		SessionData:       map[string]any{"map": "keep-level-1"},
	})
	if err != nil {
		t.Fatalf("add session: %v", err)
	}

	got, err := store.GetSession(ctx, created.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.SessionDate != created.SessionDate || got.DurationMinutes != 240 {
		t.Errorf("got session %+v, want %+v", got, created)
	}
	if got.SessionData["map"] != "keep-level-1" {
		t.Errorf("got session data %v, want map keep-level-1", got.SessionData)
	}

	if _, err := store.GetSession(ctx, 404); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("got error %v, want ErrNotFound", err)
	}
}

func TestListSessionsOrderedByNumber(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)

	campaign := createTestCampaign(t, store, "Ordered List")
	for _, number := range []int64{3, 1, 2} {
		addTestSession(t, store, campaign.ID, number)
	}

	sessions, err := store.ListSessions(context.Background(), campaign.ID)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("got %d sessions, want 3", len(sessions))
	}
	for i, want := range []int64{1, 2, 3} {
		if sessions[i].SessionNumber != want {
			t.Errorf("got session number %d at %d, want %d", sessions[i].SessionNumber, i, want)
		}
	}
}

func TestLatestSession(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	campaign := createTestCampaign(t, store, "Latest")

	addTestSession(t, store, campaign.ID, 5)
	last := addTestSession(t, store, campaign.ID, 2)

	got, err := store.LatestSession(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("latest session: %v", err)
	}
	if got.ID != last.ID || got.SessionNumber != 2 {
		t.Errorf("got session %d (number %d), want the last inserted", got.ID, got.SessionNumber)
	}

	empty := createTestCampaign(t, store, "No Sessions Yet")
	if _, err := store.LatestSession(ctx, empty.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("got error %v, want ErrNotFound", err)
	}
}
