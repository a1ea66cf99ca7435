package services

import (
	"context"
	"time"

	"github.com/habitquest/habitquest-engine/internal/core/domain"
	"github.com/habitquest/habitquest-engine/internal/core/progression"
)

// BadgeEnqueuer hands a user off for asynchronous badge evaluation after a
// successful habit completion. The call must never block the request path.
type BadgeEnqueuer interface {
	Enqueue(userID string)
}

// HabitCacheInvalidator drops any cached habit listing for a user. The
// completion store writes habit rows directly, so the cache layer has to be
// told when a completion lands.
type HabitCacheInvalidator interface {
	InvalidateHabits(ctx context.Context, userID string)
}

// CompletionService drives the reward path. All persistence runs through the
// CompletionStore so the eligibility check, the completion insert, the entity
// update, and the XP increment commit as one unit.
type CompletionService struct {
	store  domain.CompletionStore
	badges BadgeEnqueuer
	cache  HabitCacheInvalidator
	now    func() time.Time
}

// NewCompletionService wires the reward path. badges may be nil when badge
// evaluation is disabled, cache may be nil when habit listings are uncached;
// now defaults to time.Now for production use.
func NewCompletionService(store domain.CompletionStore, badges BadgeEnqueuer, cache HabitCacheInvalidator, now func() time.Time) *CompletionService {
	if now == nil {
		now = time.Now
	}
	return &CompletionService{
		store:  store,
		badges: badges,
		cache:  cache,
		now:    now,
	}
}

func (s *CompletionService) CompleteHabit(ctx context.Context, habitID, userID string) (*domain.CompletionResult, error) {
	now := s.now().UTC()
	var xpEarned int

	newXP, err := s.store.CompleteHabit(ctx, habitID, userID, func(habit *domain.Habit) (*domain.Completion, error) {
		if err := habit.CheckEligibility(now); err != nil {
			return nil, err
		}
		xpEarned = habit.RecordCompletion(now)
		return domain.NewCompletion(domain.EntityHabit, habit.ID, userID, now, xpEarned), nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.InvalidateHabits(ctx, userID)
	}
	if s.badges != nil {
		s.badges.Enqueue(userID)
	}

	return &domain.CompletionResult{
		NewXP:     newXP,
		XPEarned:  xpEarned,
		LeveledUp: leveledUp(newXP, xpEarned),
	}, nil
}

func (s *CompletionService) CompleteChallenge(ctx context.Context, challengeID, userID string) (*domain.CompletionResult, error) {
	now := s.now().UTC()
	var (
		xpEarned  int
		completed bool
	)

	newXP, err := s.store.CompleteChallenge(ctx, challengeID, userID, func(challenge *domain.Challenge) (*domain.Completion, error) {
		if err := challenge.CheckEligibility(now); err != nil {
			return nil, err
		}
		completed = challenge.RecordCompletion(now)
		xpEarned = challenge.XPReward
		return domain.NewCompletion(domain.EntityChallenge, challenge.ID, userID, now, xpEarned), nil
	})
	if err != nil {
		return nil, err
	}

	return &domain.CompletionResult{
		NewXP:     newXP,
		XPEarned:  xpEarned,
		LeveledUp: leveledUp(newXP, xpEarned),
		Completed: completed,
	}, nil
}

// leveledUp compares the levels implied by the XP totals before and after the
// grant. The persisted level column plays no part here; it is only a cache
// refreshed lazily on read.
func leveledUp(newXP, xpEarned int) bool {
	return progression.LevelForXP(newXP) > progression.LevelForXP(newXP-xpEarned)
}
