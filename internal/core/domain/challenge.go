package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrChallengeNotFound      = errors.New("challenge not found")
	ErrChallengeTitleEmpty    = errors.New("challenge title cannot be empty")
	ErrInvalidDuration        = errors.New("challenge duration must be at least 1 hour")
	ErrInvalidXPReward        = errors.New("challenge xp reward must be positive")
)

const (
	ChallengeStatusActive     = "active"
	ChallengeStatusInProgress = "in_progress"
	ChallengeStatusCompleted  = "completed"
)

// Challenge is a time-boxed goal with a fixed XP reward. Duration is in
// hours; durations of a day or more gate completions per calendar day,
// shorter ones act as a rolling cooldown. Once the challenge has run for
// its full duration, the next successful completion closes it for good.
type Challenge struct {
	ID              string     `json:"id" db:"id"`
	UserID          string     `json:"user_id" db:"user_id"`
	Title           string     `json:"title" db:"title"`
	Description     string     `json:"description,omitempty" db:"description"`
	Difficulty      string     `json:"difficulty" db:"difficulty"`
	Duration        int        `json:"duration" db:"duration"`
	XPReward        int        `json:"xp_reward" db:"xp_reward"`
	Status          string     `json:"status" db:"status"`
	AIGenerated     bool       `json:"ai_generated" db:"ai_generated"`
	StartDate       time.Time  `json:"start_date" db:"start_date"`
	EndDate         *time.Time `json:"end_date,omitempty" db:"end_date"`
	LastCompletedAt *time.Time `json:"last_completed_at,omitempty" db:"last_completed_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

func NewChallenge(userID, title, description, difficulty string, duration, xpReward int) (*Challenge, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if strings.TrimSpace(title) == "" {
		return nil, ErrChallengeTitleEmpty
	}
	if duration < 1 {
		return nil, ErrInvalidDuration
	}
	if xpReward < 1 {
		return nil, ErrInvalidXPReward
	}
	if difficulty == "" {
		difficulty = DifficultyEasy
	}
	switch difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return nil, ErrInvalidDifficulty
	}

	now := time.Now().UTC()
	return &Challenge{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Difficulty:  difficulty,
		Duration:    duration,
		XPReward:    xpReward,
		Status:      ChallengeStatusActive,
		StartDate:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// CheckEligibility decides whether the challenge may be completed at `now`.
func (c *Challenge) CheckEligibility(now time.Time) error {
	if c.Status == ChallengeStatusCompleted && c.EndDate != nil {
		return &IneligibleError{Reason: "challenge is already permanently completed"}
	}

	if c.LastCompletedAt == nil {
		return nil
	}
	last := *c.LastCompletedAt

	if c.Duration >= 24 {
		// Day-scale challenges allow one completion per calendar day; the
		// duration only decides when the challenge closes, not the cooldown.
		if sameCalendarDay(last, now) {
			return &IneligibleError{Reason: "challenge can only be completed once per day"}
		}
		return nil
	}

	elapsed := now.Sub(last).Hours()
	if elapsed >= float64(c.Duration) {
		return nil
	}
	wait := int(math.Ceil(float64(c.Duration) - elapsed))
	return &IneligibleError{
		Reason:     fmt.Sprintf("you must wait %d more hours before completing this challenge again", wait),
		RetryAfter: time.Duration(wait) * time.Hour,
	}
}

// RecordCompletion marks a successful completion at `now` and reports
// whether this was the terminal one. The terminal transition is evaluated
// here, not proactively: a challenge past its duration stays open until the
// next successful completion closes it.
func (c *Challenge) RecordCompletion(now time.Time) (completed bool) {
	daysSinceStart := int(now.Sub(c.StartDate).Hours() / 24)
	completed = daysSinceStart >= c.Duration

	c.LastCompletedAt = &now
	if completed {
		c.Status = ChallengeStatusCompleted
		c.EndDate = &now
	} else if c.Status == ChallengeStatusActive {
		c.Status = ChallengeStatusInProgress
	}
	c.UpdatedAt = now
	return completed
}
