package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	EntityHabit     = "habit"
	EntityChallenge = "challenge"
)

// Completion is the immutable record of a single successful completion.
// Rows are only ever inserted (or bulk-dropped by administrative reset);
// the time-ordered sequence per user is the sole input to streak and badge
// evaluation.
type Completion struct {
	ID          string    `json:"id" db:"id"`
	EntityType  string    `json:"entity_type" db:"entity_type"`
	EntityID    string    `json:"entity_id" db:"entity_id"`
	UserID      string    `json:"user_id" db:"user_id"`
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
	XPEarned    int       `json:"xp_earned" db:"xp_earned"`
}

func NewCompletion(entityType, entityID, userID string, completedAt time.Time, xpEarned int) *Completion {
	return &Completion{
		ID:          uuid.NewString(),
		EntityType:  entityType,
		EntityID:    entityID,
		UserID:      userID,
		CompletedAt: completedAt.UTC(),
		XPEarned:    xpEarned,
	}
}

// CompletionResult is what the caller gets back from a successful
// completion transaction. LeveledUp is derived from the pure level curve on
// the way out; the stored level itself is recomputed lazily at read time.
type CompletionResult struct {
	NewXP     int  `json:"new_xp"`
	XPEarned  int  `json:"xp_earned"`
	LeveledUp bool `json:"leveled_up"`
	Completed bool `json:"completed,omitempty"`
}
