package services

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/habitquest/habitquest-engine/internal/core/domain"
	"github.com/habitquest/habitquest-engine/internal/core/progression"
)

const boostXPAmount = 50

// ProgressResetter zeroes a user's XP and drops their completion history as
// one atomic operation. Both completion stores implement it.
type ProgressResetter interface {
	ResetProgress(ctx context.Context, userID string) error
}

// ProfileService assembles the progression read model, handles account
// settings, and hosts the development-only progression tools (XP boost,
// reset, synthetic history).
type ProfileService struct {
	userRepo       domain.UserRepository
	habitRepo      domain.HabitRepository
	completionRepo domain.CompletionRepository
	badgeRepo      domain.BadgeRepository
	resetter       ProgressResetter
	now            func() time.Time
	roll           func() float64
}

func NewProfileService(
	userRepo domain.UserRepository,
	habitRepo domain.HabitRepository,
	completionRepo domain.CompletionRepository,
	badgeRepo domain.BadgeRepository,
	resetter ProgressResetter,
	now func() time.Time,
) *ProfileService {
	if now == nil {
		now = time.Now
	}
	return &ProfileService{
		userRepo:       userRepo,
		habitRepo:      habitRepo,
		completionRepo: completionRepo,
		badgeRepo:      badgeRepo,
		resetter:       resetter,
		now:            now,
		roll:           rand.Float64,
	}
}

// GetProgress returns the full progression snapshot for a user. The stored
// level is recomputed from cumulative XP here; if the stored value is stale
// it is refreshed best-effort, and a write failure only costs freshness of
// the cached column, never correctness of the response.
func (s *ProfileService) GetProgress(ctx context.Context, userID string) (*domain.ProgressSnapshot, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	level := s.syncLevel(ctx, user)

	times, err := s.completionRepo.ListTimesByUser(ctx, userID, domain.EntityHabit)
	if err != nil {
		return nil, err
	}

	badges, err := s.collectBadges(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &domain.ProgressSnapshot{
		UserID:          user.ID,
		Name:            user.Name,
		XP:              user.XP,
		Level:           level,
		LevelXP:         progression.CurrentLevelXP(user.XP),
		LevelRequiredXP: progression.XPForLevel(level),
		LevelProgress:   progression.LevelProgress(user.XP),
		Tier:            string(progression.TierForLevel(level)),
		TierProgress:    progression.TierProgress(level, user.XP),
		Streak:          progression.CurrentStreak(times, s.now().UTC()),
		Badges:          badges,
	}, nil
}

func (s *ProfileService) Leaderboard(ctx context.Context, limit int) ([]*domain.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	users, err := s.userRepo.ListTopByXP(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.LeaderboardEntry, 0, len(users))
	for i, u := range users {
		level := s.syncLevel(ctx, u)
		entries = append(entries, &domain.LeaderboardEntry{
			UserID: u.ID,
			Name:   u.Name,
			XP:     u.XP,
			Level:  level,
			Tier:   string(progression.TierForLevel(level)),
			Rank:   i + 1,
		})
	}
	return entries, nil
}

// syncLevel recomputes the level from XP and refreshes the stored column if
// it drifted. The write is best-effort.
func (s *ProfileService) syncLevel(ctx context.Context, user *domain.User) int {
	level := progression.LevelForXP(user.XP)
	if level != user.Level {
		if err := s.userRepo.UpdateLevel(ctx, user.ID, level); err != nil {
			log.Printf("Failed to sync level for user %s: %v", user.ID, err)
		}
		user.Level = level
	}
	return level
}

func (s *ProfileService) collectBadges(ctx context.Context, userID string) ([]domain.BadgeGrant, error) {
	grants, err := s.badgeRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	badges := make([]domain.BadgeGrant, 0, len(grants))
	if len(grants) == 0 {
		return badges, nil
	}

	defs, err := s.badgeRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Badge, len(defs))
	for _, b := range defs {
		byID[b.ID] = b
	}

	for _, g := range grants {
		def, ok := byID[g.BadgeID]
		if !ok {
			continue
		}
		badges = append(badges, domain.BadgeGrant{Badge: *def, AwardedAt: g.AwardedAt})
	}
	return badges, nil
}

// UpdateSettings changes a user's email or display name. Empty fields keep
// their current value, so callers can patch one without resending the other.
func (s *ProfileService) UpdateSettings(ctx context.Context, userID, email, name string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if email == "" {
		email = user.Email
	}
	if name == "" {
		name = user.Name
	}

	if err := user.UpdateProfile(email, name); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount removes the user and everything they own. Tokens issued
// before the deletion stop validating because the user lookup fails.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID string) error {
	return s.userRepo.Delete(ctx, userID)
}

// BoostXP grants a flat XP bump and returns the resulting snapshot values.
// Development tooling only; the route is not registered in production.
func (s *ProfileService) BoostXP(ctx context.Context, userID string) (newXP, level int, err error) {
	newXP, err = s.userRepo.AddXP(ctx, userID, boostXPAmount)
	if err != nil {
		return 0, 0, err
	}

	level = progression.LevelForXP(newXP)
	if err := s.userRepo.UpdateLevel(ctx, userID, level); err != nil {
		log.Printf("Failed to sync level for user %s: %v", userID, err)
	}
	return newXP, level, nil
}

// ResetProgress drops a user back to zero XP, level 1, and an empty
// completion history. Earned badges survive the reset. The store runs the
// user update and the completion delete in one transaction.
func (s *ProfileService) ResetProgress(ctx context.Context, userID string) error {
	return s.resetter.ResetProgress(ctx, userID)
}

// GenerateHistory backfills synthetic habit completions over the past N
// days, for exercising streaks, badges, and the level curve locally. Each
// habit gets a daily chance of having been completed: likelier on weekdays,
// and one in three weeks is a slump week with most days missed.
func (s *ProfileService) GenerateHistory(ctx context.Context, userID string, days int) (int, error) {
	if days <= 0 || days > 365 {
		days = 30
	}

	habits, err := s.habitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	active := habits[:0]
	for _, h := range habits {
		if !h.IsArchived {
			active = append(active, h)
		}
	}
	if len(active) == 0 {
		return 0, domain.ErrHabitNotFound
	}

	now := s.now().UTC()
	var (
		completions []*domain.Completion
		totalXP     int
	)

	for d := days; d >= 1; d-- {
		day := now.AddDate(0, 0, -d)

		chance := 0.7
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			chance = 0.4
		}
		if (d/7)%3 == 2 {
			chance *= 0.3
		}

		for _, h := range active {
			if s.roll() >= chance {
				continue
			}
			at := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, time.UTC)
			xp := domain.XPForDifficulty(h.Difficulty)
			completions = append(completions, domain.NewCompletion(domain.EntityHabit, h.ID, userID, at, xp))
			totalXP += xp
		}
	}

	if len(completions) == 0 {
		return 0, nil
	}

	if err := s.completionRepo.CreateBatch(ctx, completions); err != nil {
		return 0, err
	}
	if _, err := s.userRepo.AddXP(ctx, userID, totalXP); err != nil {
		return 0, err
	}
	return len(completions), nil
}
