package domain_test

import (
	"testing"

	"github.com/habitquest/habitquest-engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestBadgeSatisfied(t *testing.T) {
	t.Run("First complete", func(t *testing.T) {
		b := &domain.Badge{Requirement: domain.BadgeFirstComplete, RequirementValue: 1}
		assert.False(t, b.Satisfied(0, 0))
		assert.True(t, b.Satisfied(1, 0))
		assert.True(t, b.Satisfied(100, 0))
	})

	t.Run("Completion count", func(t *testing.T) {
		b := &domain.Badge{Requirement: domain.BadgeCompleteCount, RequirementValue: 30}
		assert.False(t, b.Satisfied(29, 365))
		assert.True(t, b.Satisfied(30, 0))
	})

	t.Run("Streak days", func(t *testing.T) {
		b := &domain.Badge{Requirement: domain.BadgeStreakDays, RequirementValue: 7}
		assert.False(t, b.Satisfied(1000, 6))
		assert.True(t, b.Satisfied(0, 7))
	})

	t.Run("Unknown requirement never satisfied", func(t *testing.T) {
		b := &domain.Badge{Requirement: "MYSTERY", RequirementValue: 0}
		assert.False(t, b.Satisfied(1000, 1000))
	})
}

func TestSeedBadges(t *testing.T) {
	seen := make(map[string]bool)
	for _, b := range domain.SeedBadges {
		assert.False(t, seen[b.Name], "duplicate seed badge name %q", b.Name)
		seen[b.Name] = true
		assert.Greater(t, b.XPBonus, 0)
		assert.NotEmpty(t, b.Requirement)
	}
	assert.True(t, seen["First Step"])
	assert.True(t, seen["Weekly Warrior"])
	assert.True(t, seen["Habit Builder"])
}
