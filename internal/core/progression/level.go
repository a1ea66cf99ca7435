// Package progression holds the pure XP, level, tier, and streak math.
// Everything here is deterministic: callers inject "now" where time
// matters and nothing touches storage.
package progression

import "math"

// XPForLevel returns the XP needed to climb from `level` to the next one:
// 100 * level * 1.5, rounded to the nearest multiple of 10. Level 1 needs
// 150, level 2 needs 300, and so on.
func XPForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	raw := 100 * float64(level) * 1.5
	return int(math.Round(raw/10)) * 10
}

// walk subtracts per-level requirements from totalXP until the remainder
// fits inside the current level's bucket. Negative XP clamps to zero so
// display paths stay total.
func walk(totalXP int) (level, remainder int) {
	if totalXP < 0 {
		totalXP = 0
	}

	level = 1
	accumulated := 0
	for accumulated+XPForLevel(level) <= totalXP {
		accumulated += XPForLevel(level)
		level++
	}
	return level, totalXP - accumulated
}

// LevelForXP returns the level a given cumulative XP corresponds to.
func LevelForXP(totalXP int) int {
	level, _ := walk(totalXP)
	return level
}

// CurrentLevelXP returns the XP earned within the current level, always in
// [0, XPForLevel(level)).
func CurrentLevelXP(totalXP int) int {
	_, remainder := walk(totalXP)
	return remainder
}

// LevelProgress returns the in-level progress as a percentage in [0, 100].
func LevelProgress(totalXP int) float64 {
	level, remainder := walk(totalXP)
	pct := float64(remainder) / float64(XPForLevel(level)) * 100
	return clampPercent(pct)
}

func clampPercent(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
