package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/tavernkeep/scribe/internal/campaign/storage"
)

func TestAddRewardRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	campaign := createTestCampaign(t, store, "Loot Table")
	session := addTestSession(t, store, campaign.ID, 1)

	created, err := store.AddReward(ctx, storage.RewardRecord{
		SessionID:   session.ID,
		RewardType:  storage.RewardTypeTreasure,
		Description: "+1 longsword",
		ValueCP:     35000,
		Recipient:   "Seelah",
	})
	if err != nil {
		t.Fatalf("add reward: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("created reward has zero id")
	}

	if _, err := store.AddReward(ctx, storage.RewardRecord{
		SessionID:  session.ID,
		RewardType: storage.RewardTypeStory,
		Recipient:  "party",
	}); err != nil {
		t.Fatalf("add second reward: %v", err)
	}

	rewards, err := store.ListSessionRewards(ctx, session.ID)
	if err != nil {
		t.Fatalf("list rewards: %v", err)
	}
	if len(rewards) != 2 {
		t.Fatalf("got %d rewards, want 2", len(rewards))
	}
	if rewards[0].Description != "+1 longsword" || rewards[0].ValueCP != 35000 {
		t.Errorf("got reward %+v, want the longsword first", rewards[0])
	}
	if rewards[1].RewardType != storage.RewardTypeStory {
		t.Errorf("got type %q, want story second", rewards[1].RewardType)
	}
}

func TestAddRewardInvalidType(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)

	campaign := createTestCampaign(t, store, "Typed Loot")
	session := addTestSession(t, store, campaign.ID, 1)

	_, err := store.AddReward(context.Background(), storage.RewardRecord{
		SessionID:  session.ID,
		RewardType: "reputation",
	})
	if !errors.Is(err, storage.ErrRewardTypeInvalid) {
		t.Fatalf("got error %v, want ErrRewardTypeInvalid", err)
	}
}

func TestAddRewardUnknownSession(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)

	_, err := store.AddReward(context.Background(), storage.RewardRecord{
		SessionID:  404,
		RewardType: storage.RewardTypeExperience,
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("got error %v, want ErrNotFound", err)
	}
}

func TestRewardTypeCheckEnforcedBySchema(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	campaign := createTestCampaign(t, store, "Schema Check")
	session := addTestSession(t, store, campaign.ID, 1)

	_, err := store.sqlDB.ExecContext(ctx, `
INSERT INTO session_rewards (session_id, reward_type, created_at)
VALUES (?, 'reputation', 0)`, session.ID)
	if !isCheckViolation(err) {
		t.Fatalf("got error %v, want a check constraint violation", err)
	}
}
