package domain

import (
	"context"
	"time"
)

type UserRepository interface {
	// Create persists a new user. Unique violations map to
	// ErrEmailAlreadyExists / ErrNameAlreadyExists.
	Create(ctx context.Context, user *User) error

	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update persists new account settings (email, name). Unique violations
	// map like Create; a missing row maps to ErrUserNotFound.
	Update(ctx context.Context, user *User) error

	// Delete removes the account. Owned rows (habits, challenges,
	// completions, badges, follows) go with it.
	Delete(ctx context.Context, id string) error

	// UpdateLevel persists a lazily recomputed level. It never touches XP.
	UpdateLevel(ctx context.Context, id string, level int) error

	// AddXP atomically increments cumulative XP and returns the new total.
	AddXP(ctx context.Context, id string, delta int) (int, error)

	// ResetProgress sets XP to 0 and level to 1.
	ResetProgress(ctx context.Context, id string) error

	// Search matches email or display name, case-insensitively.
	Search(ctx context.Context, query string, limit int) ([]*User, error)

	// ListTopByXP returns users ordered by cumulative XP descending.
	ListTopByXP(ctx context.Context, limit int) ([]*User, error)
}

type HabitRepository interface {
	Create(ctx context.Context, habit *Habit) error
	GetByID(ctx context.Context, id string) (*Habit, error)
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)
	Update(ctx context.Context, habit *Habit) error
	Delete(ctx context.Context, id string) error
}

type ChallengeRepository interface {
	Create(ctx context.Context, challenge *Challenge) error
	GetByID(ctx context.Context, id string) (*Challenge, error)
	ListByUserID(ctx context.Context, userID string) ([]*Challenge, error)
	ListByUserIDAndStatus(ctx context.Context, userID, status string) ([]*Challenge, error)
}

type CompletionRepository interface {
	// ListTimesByUser returns completion timestamps for one entity type,
	// newest first. Input to streak and badge evaluation.
	ListTimesByUser(ctx context.Context, userID, entityType string) ([]time.Time, error)

	CountByUser(ctx context.Context, userID, entityType string) (int, error)

	// CreateBatch inserts synthetic history (dev tooling only).
	CreateBatch(ctx context.Context, completions []*Completion) error

	// DeleteByUser drops a user's completion history (administrative reset).
	DeleteByUser(ctx context.Context, userID string) error
}

type BadgeRepository interface {
	List(ctx context.Context) ([]*Badge, error)
	GetByName(ctx context.Context, name string) (*Badge, error)
	ListByUser(ctx context.Context, userID string) ([]*UserBadge, error)

	// Seed inserts badge definitions, skipping names that already exist.
	Seed(ctx context.Context, badges []Badge) error
}

type FollowRepository interface {
	Create(ctx context.Context, follow *Follow) error
	Delete(ctx context.Context, followerID, followingID string) error
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
}

// HabitDecision runs inside the completion transaction while the habit row
// is locked. It checks eligibility, mutates the habit, and returns the
// completion to insert. Returning an error aborts the transaction.
type HabitDecision func(habit *Habit) (*Completion, error)

// ChallengeDecision is the challenge counterpart of HabitDecision.
type ChallengeDecision func(challenge *Challenge) (*Completion, error)

// CompletionStore is the transactional boundary of the reward path. The
// implementation must serialize concurrent attempts per entity (row lock or
// equivalent) so two racing requests cannot both pass eligibility, and must
// commit completion insert + XP increment + entity update together or not
// at all.
type CompletionStore interface {
	// CompleteHabit loads the user's habit under lock, runs decide, then
	// persists the completion, the habit update, and the XP increment.
	// Returns the user's new cumulative XP.
	CompleteHabit(ctx context.Context, habitID, userID string, decide HabitDecision) (int, error)

	CompleteChallenge(ctx context.Context, challengeID, userID string, decide ChallengeDecision) (int, error)

	// GrantBadge awards the badge and applies its XP bonus in one
	// transaction. Returns false without error when the user already holds
	// the badge.
	GrantBadge(ctx context.Context, userID string, badge *Badge) (bool, error)
}
