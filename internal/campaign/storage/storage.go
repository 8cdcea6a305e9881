// Package storage defines persistence contracts for campaign tracking.
//
// It covers campaigns, their session log, per-session attendance, derived
// character progression, the session rewards ledger, and the read-only
// aggregation views. Implementations (e.g., SQLite) live in subpackages.
//
// Derived state (session counters, progression upserts) is maintained by the
// write paths inside the same transaction as the triggering insert, so a
// reader that observes the insert always observes its derived effects.
package storage

import (
	"context"
	"time"

	apperrors "github.com/tavernkeep/scribe/internal/platform/errors"
)

// ErrNotFound indicates a referenced campaign or session does not exist.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ErrUniquenessViolation indicates a duplicate campaign name, session number,
// or progression key.
var ErrUniquenessViolation = apperrors.New(apperrors.CodeUniquenessViolation, "record already exists")

// ErrForeignKeyViolation indicates a write referenced a parent row that
// vanished after its existence check. Missing parents named by the operation
// surface as ErrNotFound instead; this sentinel covers the residue the
// cascades are meant to prevent.
var ErrForeignKeyViolation = apperrors.New(apperrors.CodeForeignKeyViolation, "referenced record does not exist")

// ErrConstraintViolation is the category sentinel for writes that fail a
// validation or schema check. The specific sentinels below share its code, so
// errors.Is(err, ErrConstraintViolation) matches any of them.
var ErrConstraintViolation = apperrors.New(apperrors.CodeConstraintViolation, "record violates a constraint")

// ErrCampaignNameEmpty indicates a campaign write omitted its name.
var ErrCampaignNameEmpty = apperrors.New(apperrors.CodeConstraintViolation, "campaign name is required")

// ErrSessionNumberInvalid indicates a session write carried a non-positive number.
var ErrSessionNumberInvalid = apperrors.New(apperrors.CodeConstraintViolation, "session number must be positive")

// ErrAttendancePlayerEmpty indicates an attendance write omitted the player name.
var ErrAttendancePlayerEmpty = apperrors.New(apperrors.CodeConstraintViolation, "player name is required")

// ErrRewardTypeInvalid indicates a reward write carried an unknown reward type.
var ErrRewardTypeInvalid = apperrors.New(apperrors.CodeConstraintViolation, "reward type is invalid")

// Reward types accepted by the rewards ledger.
const (
	RewardTypeTreasure   = "treasure"
	RewardTypeExperience = "experience"
	RewardTypeStory      = "story"
)

// AttendanceStatusPresent is the default attendance status and the only one
// counted by the session attendance summary.
const AttendanceStatusPresent = "present"

// Campaign is one tracked campaign. CurrentSession and TotalSessions are
// derived from the session log and never written by callers.
type Campaign struct {
	ID             int64
	Name           string
	Description    string
	DMName         string
	CreatedDate    string
	StartingLevel  int64
	CurrentSession int64
	TotalSessions  int64
	// Settings carries collaborator-owned configuration; this layer stores it opaquely.
	Settings  map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session is one entry in a campaign's append-mostly session log.
type Session struct {
	ID                int64
	CampaignID        int64
	SessionNumber     int64
	SessionDate       string
	DurationMinutes   int64
	ExperienceAwarded int64
	StoryNotes        string
	DMNotes           string
	SessionData       map[string]any
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AttendanceRecord is one per-session, per-player attendance event. An empty
// CharacterName means the player attended without a tracked character.
type AttendanceRecord struct {
	ID            int64
	SessionID     int64
	PlayerName    string
	CharacterName string
	Status        string
	Notes         string
	CreatedAt     time.Time
}

// ProgressionEntry is the last known status of a character in a campaign,
// keyed by (CampaignID, CharacterName). Attendance maintains the identity and
// "last seen" fields; Level and ExperiencePoints are owned by the external
// character-sheet collaborator. LastSessionID may dangle after a session is
// deleted and is only repaired lazily.
type ProgressionEntry struct {
	CampaignID        int64
	CharacterName     string
	PlayerName        string
	Level             int64
	ExperiencePoints  int64
	LastSessionID     int64
	CharacterFilePath string
	UpdatedAt         time.Time
}

// RewardRecord is one append-only entry in a session's rewards ledger.
// ValueCP is in base currency units (copper pieces).
type RewardRecord struct {
	ID          int64
	SessionID   int64
	RewardType  string
	Description string
	ValueCP     int64
	Recipient   string
	Notes       string
	CreatedAt   time.Time
}

// CampaignSummary aggregates a campaign's sessions and progression entries at
// query time; it is never materialized.
type CampaignSummary struct {
	CampaignID             int64
	Name                   string
	SessionCount           int64
	ActiveCharacterCount   int64
	LastSessionDate        string
	TotalPlayTimeMinutes   int64
	TotalExperienceAwarded int64
}

// SessionAttendanceSummary aggregates present-status attendance for one
// session. Attendees preserve insertion order.
type SessionAttendanceSummary struct {
	SessionID         int64
	AttendeeCount     int64
	Attendees         []string
	DurationMinutes   int64
	ExperienceAwarded int64
}

// CampaignStore persists campaign metadata.
type CampaignStore interface {
	// CreateCampaign inserts a campaign. Returns ErrUniquenessViolation when
	// the name is taken.
	CreateCampaign(ctx context.Context, campaign Campaign) (Campaign, error)
	// GetCampaign retrieves a campaign by id. Returns ErrNotFound when absent.
	GetCampaign(ctx context.Context, id int64) (Campaign, error)
	// GetCampaignByName retrieves a campaign by its unique name.
	GetCampaignByName(ctx context.Context, name string) (Campaign, error)
	// ListCampaigns returns all campaigns ordered by id.
	ListCampaigns(ctx context.Context) ([]Campaign, error)
	// UpdateCampaignSettings replaces the opaque settings blob.
	UpdateCampaignSettings(ctx context.Context, id int64, settings map[string]any) error
	// DeleteCampaign removes a campaign and cascades to its sessions,
	// attendance, rewards, and progression entries.
	DeleteCampaign(ctx context.Context, id int64) error
}

// SessionStore persists the per-campaign session log.
type SessionStore interface {
	// AddSession inserts a session and, in the same transaction, recomputes the
	// owning campaign's TotalSessions and sets CurrentSession to the inserted
	// session number. Insertion order governs CurrentSession, not the maximum.
	AddSession(ctx context.Context, session Session) (Session, error)
	// GetSession retrieves a session by id. Returns ErrNotFound when absent.
	GetSession(ctx context.Context, id int64) (Session, error)
	// ListSessions returns a campaign's sessions ordered by session number.
	ListSessions(ctx context.Context, campaignID int64) ([]Session, error)
	// LatestSession returns the most recently inserted session of a campaign.
	LatestSession(ctx context.Context, campaignID int64) (Session, error)
}

// AttendanceCount is one player's total of present-status attendance rows
// across a campaign's sessions.
type AttendanceCount struct {
	PlayerName       string
	SessionsAttended int64
}

// AttendanceStore persists attendance events and the progression they derive.
type AttendanceStore interface {
	// RecordAttendance inserts an attendance row and, when CharacterName is
	// set, upserts the matching progression entry in the same transaction.
	RecordAttendance(ctx context.Context, record AttendanceRecord) (AttendanceRecord, error)
	// ListAttendance returns a session's attendance rows in insertion order.
	ListAttendance(ctx context.Context, sessionID int64) ([]AttendanceRecord, error)
	// ListAttendanceCounts returns per-player present-attendance totals for a
	// campaign, ordered by player name.
	ListAttendanceCounts(ctx context.Context, campaignID int64) ([]AttendanceCount, error)
}

// ProgressionStore reads and amends character progression.
type ProgressionStore interface {
	// GetProgression retrieves one character's progression entry.
	GetProgression(ctx context.Context, campaignID int64, characterName string) (ProgressionEntry, error)
	// ListProgression returns a campaign's progression entries by character name.
	ListProgression(ctx context.Context, campaignID int64) ([]ProgressionEntry, error)
	// UpdateProgressionSheet is the character-sheet collaborator's write path
	// for level, experience, and the sheet file path.
	UpdateProgressionSheet(ctx context.Context, campaignID int64, characterName string, level int64, experiencePoints int64, filePath string) error
}

// RewardStore persists the append-only session rewards ledger.
type RewardStore interface {
	// AddReward appends a reward. Returns ErrRewardTypeInvalid for unknown
	// types and ErrNotFound for unknown sessions.
	AddReward(ctx context.Context, reward RewardRecord) (RewardRecord, error)
	// ListSessionRewards returns a session's rewards in insertion order.
	ListSessionRewards(ctx context.Context, sessionID int64) ([]RewardRecord, error)
}

// Views exposes the read-only aggregations.
type Views interface {
	// CampaignSummary aggregates one campaign. Returns ErrNotFound when the
	// campaign does not exist.
	CampaignSummary(ctx context.Context, campaignID int64) (CampaignSummary, error)
	// SessionAttendanceSummary aggregates present attendance for one session.
	SessionAttendanceSummary(ctx context.Context, sessionID int64) (SessionAttendanceSummary, error)
}

// Store is the composite campaign persistence contract.
type Store interface {
	CampaignStore
	SessionStore
	AttendanceStore
	ProgressionStore
	RewardStore
	Views
	Close() error
}
