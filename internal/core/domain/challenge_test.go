package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/habitquest/habitquest-engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChallenge(t *testing.T, duration int) *domain.Challenge {
	t.Helper()
	ch, err := domain.NewChallenge("user-1", "Deep Work Sprint", "", domain.DifficultyMedium, duration, 100)
	require.NoError(t, err)
	return ch
}

func TestNewChallenge(t *testing.T) {
	t.Run("Valid challenge starts active", func(t *testing.T) {
		ch := newTestChallenge(t, 3)
		assert.Equal(t, domain.ChallengeStatusActive, ch.Status)
		assert.Nil(t, ch.EndDate)
		assert.Nil(t, ch.LastCompletedAt)
	})

	t.Run("Rejects bad input", func(t *testing.T) {
		_, err := domain.NewChallenge("user-1", "  ", "", domain.DifficultyEasy, 3, 100)
		assert.ErrorIs(t, err, domain.ErrChallengeTitleEmpty)

		_, err = domain.NewChallenge("user-1", "X", "", domain.DifficultyEasy, 0, 100)
		assert.ErrorIs(t, err, domain.ErrInvalidDuration)

		_, err = domain.NewChallenge("user-1", "X", "", domain.DifficultyEasy, 3, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidXPReward)

		_, err = domain.NewChallenge("user-1", "X", "", "brutal", 3, 100)
		assert.ErrorIs(t, err, domain.ErrInvalidDifficulty)
	})
}

func TestChallengeEligibility_HourScale(t *testing.T) {
	t.Run("Three hour challenge follows a rolling cooldown", func(t *testing.T) {
		ch := newTestChallenge(t, 3)
		ch.StartDate = wednesday
		assert.NoError(t, ch.CheckEligibility(wednesday))

		ch.RecordCompletion(wednesday)

		// Two hours later: one hour left.
		err := ch.CheckEligibility(wednesday.Add(2 * time.Hour))
		var inel *domain.IneligibleError
		require.True(t, errors.As(err, &inel))
		assert.Equal(t, time.Hour, inel.RetryAfter)

		// Four hours later: eligible again.
		assert.NoError(t, ch.CheckEligibility(wednesday.Add(4 * time.Hour)))
	})
}

func TestChallengeEligibility_DayScale(t *testing.T) {
	t.Run("Day scale challenges gate by calendar day", func(t *testing.T) {
		ch := newTestChallenge(t, 48)
		ch.StartDate = wednesday

		ch.RecordCompletion(wednesday)

		err := ch.CheckEligibility(wednesday.Add(6 * time.Hour))
		var inel *domain.IneligibleError
		require.True(t, errors.As(err, &inel))
		assert.Contains(t, inel.Reason, "once per day")

		// Just past midnight is a new day even though < 24h elapsed.
		nextDay := time.Date(2025, 6, 19, 0, 30, 0, 0, time.UTC)
		assert.NoError(t, ch.CheckEligibility(nextDay))
	})
}

func TestChallengeRecordCompletion(t *testing.T) {
	t.Run("Completion before the duration has run keeps it open", func(t *testing.T) {
		ch := newTestChallenge(t, 3)
		ch.StartDate = wednesday

		completed := ch.RecordCompletion(wednesday.Add(time.Hour))
		assert.False(t, completed)
		assert.Equal(t, domain.ChallengeStatusInProgress, ch.Status)
		assert.Nil(t, ch.EndDate)
	})

	t.Run("Completion after daysSinceStart reaches the duration is terminal", func(t *testing.T) {
		ch := newTestChallenge(t, 3)
		ch.StartDate = wednesday.AddDate(0, 0, -3)

		completed := ch.RecordCompletion(wednesday)
		assert.True(t, completed)
		assert.Equal(t, domain.ChallengeStatusCompleted, ch.Status)
		require.NotNil(t, ch.EndDate)
		assert.Equal(t, wednesday, *ch.EndDate)
	})

	t.Run("Terminal challenge rejects further attempts", func(t *testing.T) {
		ch := newTestChallenge(t, 3)
		ch.StartDate = wednesday.AddDate(0, 0, -4)
		ch.RecordCompletion(wednesday)

		err := ch.CheckEligibility(wednesday.Add(48 * time.Hour))
		var inel *domain.IneligibleError
		require.True(t, errors.As(err, &inel))
		assert.Contains(t, inel.Reason, "permanently completed")
	})
}
