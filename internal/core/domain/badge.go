package domain

import (
	"errors"
	"time"
)

var ErrBadgeNotFound = errors.New("badge not found")

const (
	BadgeFirstComplete = "FIRST_COMPLETE"
	BadgeCompleteCount = "COMPLETE_COUNT"
	BadgeStreakDays    = "STREAK_DAYS"
)

// Badge is a one-time-per-user achievement with a bonus XP reward.
type Badge struct {
	ID               string    `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Description      string    `json:"description" db:"description"`
	ImageURL         string    `json:"image_url" db:"image_url"`
	Requirement      string    `json:"requirement" db:"requirement"`
	RequirementValue int       `json:"requirement_value" db:"requirement_value"`
	XPBonus          int       `json:"xp_bonus" db:"xp_bonus"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// UserBadge grants a badge to a user. At most one row per (user, badge)
// pair; the uniqueness constraint is what makes grants idempotent.
type UserBadge struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	BadgeID   string    `json:"badge_id" db:"badge_id"`
	AwardedAt time.Time `json:"awarded_at" db:"awarded_at"`
}

// Satisfied reports whether the user's habit completion history meets this
// badge's requirement.
func (b *Badge) Satisfied(totalCompletions, streakDays int) bool {
	switch b.Requirement {
	case BadgeFirstComplete:
		return totalCompletions >= 1
	case BadgeCompleteCount:
		return totalCompletions >= b.RequirementValue
	case BadgeStreakDays:
		return streakDays >= b.RequirementValue
	}
	return false
}

// SeedBadges is the canonical achievement set, inserted at startup if
// missing. Names are stable because user_badges rows reference them.
var SeedBadges = []Badge{
	{
		Name:             "First Step",
		Description:      "Complete your first habit",
		ImageURL:         "/badges/first-step.svg",
		Requirement:      BadgeFirstComplete,
		RequirementValue: 1,
		XPBonus:          50,
	},
	{
		Name:             "Weekly Warrior",
		Description:      "Complete habits for 7 consecutive days",
		ImageURL:         "/badges/weekly-warrior.svg",
		Requirement:      BadgeStreakDays,
		RequirementValue: 7,
		XPBonus:          100,
	},
	{
		Name:             "Habit Builder",
		Description:      "Log 30 habit completions",
		ImageURL:         "/badges/habit-builder.svg",
		Requirement:      BadgeCompleteCount,
		RequirementValue: 30,
		XPBonus:          150,
	},
}
