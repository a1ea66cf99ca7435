package domain

import "time"

// ProgressSnapshot is the read model for a user's progression: cumulative
// XP with the derived level, in-level bucket, tier placement, and current
// streak, plus the badges earned so far.
type ProgressSnapshot struct {
	UserID          string       `json:"user_id"`
	Name            string       `json:"name,omitempty"`
	XP              int          `json:"xp"`
	Level           int          `json:"level"`
	LevelXP         int          `json:"level_xp"`
	LevelRequiredXP int          `json:"level_required_xp"`
	LevelProgress   float64      `json:"level_progress"`
	Tier            string       `json:"tier"`
	TierProgress    float64      `json:"tier_progress"`
	Streak          int          `json:"streak"`
	Badges          []BadgeGrant `json:"badges"`
}

// BadgeGrant joins a badge definition with its award time for display.
type BadgeGrant struct {
	Badge
	AwardedAt time.Time `json:"awarded_at"`
}

// LeaderboardEntry ranks users by cumulative XP.
type LeaderboardEntry struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	XP     int    `json:"xp"`
	Level  int    `json:"level"`
	Tier   string `json:"tier"`
	Rank   int    `json:"rank"`
}
