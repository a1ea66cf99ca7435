package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/habitquest/habitquest-engine/internal/core/domain"
)

func newStoredHabit(t *testing.T, userID string) *domain.Habit {
	t.Helper()

	habit, err := domain.NewHabit(userID, fmt.Sprintf("habit-%s", uuid.NewString()), "", domain.DifficultyEasy, domain.Frequency{
		Type:  domain.FrequencyInterval,
		Value: 1,
		Unit:  domain.UnitDays,
	})
	if err != nil {
		t.Fatalf("Failed to build habit: %v", err)
	}
	if err := NewPostgresHabitRepository(testDBX).Create(context.Background(), habit); err != nil {
		t.Fatalf("Failed to store habit: %v", err)
	}
	return habit
}

func TestPostgresCompletionStore_CompleteHabit(t *testing.T) {
	requireDB(t)
	t.Parallel()

	store := NewPostgresCompletionStore(testDBX)
	userRepo := NewPostgresUserRepository(testDB)
	completionRepo := NewPostgresCompletionRepository(testDBX)
	ctx := context.Background()

	t.Run("Should record the completion and credit XP atomically", func(t *testing.T) {
		t.Parallel()

		user := newStoredUser(t, userRepo)
		habit := newStoredHabit(t, user.ID)
		now := time.Now().UTC()

		newXP, err := store.CompleteHabit(ctx, habit.ID, user.ID, func(h *domain.Habit) (*domain.Completion, error) {
			if err := h.CheckEligibility(now); err != nil {
				return nil, err
			}
			xp := h.RecordCompletion(now)
			return domain.NewCompletion(domain.EntityHabit, h.ID, h.UserID, now, xp), nil
		})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if newXP != 10 {
			t.Errorf("Expected 10 XP, got %d", newXP)
		}

		count, err := completionRepo.CountByUser(ctx, user.ID, domain.EntityHabit)
		if err != nil {
			t.Fatalf("Could not count completions: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected 1 completion row, got %d", count)
		}

		stored, err := NewPostgresHabitRepository(testDBX).GetByID(ctx, habit.ID)
		if err != nil {
			t.Fatalf("Could not reload habit: %v", err)
		}
		if stored.LastCompletedAt == nil {
			t.Error("Expected LastCompletedAt to be set")
		}
	})

	t.Run("Should leave no trace when the decision rejects", func(t *testing.T) {
		t.Parallel()

		user := newStoredUser(t, userRepo)
		habit := newStoredHabit(t, user.ID)

		_, err := store.CompleteHabit(ctx, habit.ID, user.ID, func(h *domain.Habit) (*domain.Completion, error) {
			return nil, &domain.IneligibleError{Reason: "not yet"}
		})
		var inel *domain.IneligibleError
		if !errors.As(err, &inel) {
			t.Fatalf("Expected IneligibleError, got %v", err)
		}

		count, _ := completionRepo.CountByUser(ctx, user.ID, domain.EntityHabit)
		if count != 0 {
			t.Errorf("Expected no completion rows, got %d", count)
		}

		reloaded, err := userRepo.GetByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("Could not reload user: %v", err)
		}
		if reloaded.XP != 0 {
			t.Errorf("Expected XP untouched, got %d", reloaded.XP)
		}
	})

	t.Run("Should return ErrHabitNotFound for another user's habit", func(t *testing.T) {
		t.Parallel()

		owner := newStoredUser(t, userRepo)
		stranger := newStoredUser(t, userRepo)
		habit := newStoredHabit(t, owner.ID)

		_, err := store.CompleteHabit(ctx, habit.ID, stranger.ID, func(h *domain.Habit) (*domain.Completion, error) {
			t.Fatal("decision must not run for a non-owner")
			return nil, nil
		})
		if err != domain.ErrHabitNotFound {
			t.Errorf("Expected ErrHabitNotFound, got %v", err)
		}
	})
}

func TestPostgresCompletionStore_GrantBadge(t *testing.T) {
	requireDB(t)
	t.Parallel()

	store := NewPostgresCompletionStore(testDBX)
	userRepo := NewPostgresUserRepository(testDB)
	badgeRepo := NewPostgresBadgeRepository(testDBX)
	ctx := context.Background()

	if err := badgeRepo.Seed(ctx, domain.SeedBadges); err != nil {
		t.Fatalf("Could not seed badges: %v", err)
	}
	badge, err := badgeRepo.GetByName(ctx, "First Step")
	if err != nil {
		t.Fatalf("Could not load seeded badge: %v", err)
	}

	t.Run("Grant pays the bonus once and is idempotent", func(t *testing.T) {
		t.Parallel()

		user := newStoredUser(t, userRepo)

		granted, err := store.GrantBadge(ctx, user.ID, badge)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !granted {
			t.Fatal("Expected first grant to succeed")
		}

		granted, err = store.GrantBadge(ctx, user.ID, badge)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if granted {
			t.Error("Expected second grant to be a no-op")
		}

		reloaded, err := userRepo.GetByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("Could not reload user: %v", err)
		}
		if reloaded.XP != badge.XPBonus {
			t.Errorf("Expected XP %d, got %d", badge.XPBonus, reloaded.XP)
		}
	})
}

func TestPostgresCompletionStore_ResetProgress(t *testing.T) {
	requireDB(t)
	t.Parallel()

	store := NewPostgresCompletionStore(testDBX)
	userRepo := NewPostgresUserRepository(testDB)
	completionRepo := NewPostgresCompletionRepository(testDBX)
	ctx := context.Background()

	t.Run("Should zero the user and drop completions together", func(t *testing.T) {
		t.Parallel()

		user := newStoredUser(t, userRepo)
		habit := newStoredHabit(t, user.ID)
		now := time.Now().UTC()

		_, err := store.CompleteHabit(ctx, habit.ID, user.ID, func(h *domain.Habit) (*domain.Completion, error) {
			xp := h.RecordCompletion(now)
			return domain.NewCompletion(domain.EntityHabit, h.ID, h.UserID, now, xp), nil
		})
		if err != nil {
			t.Fatalf("Could not seed completion: %v", err)
		}

		if err := store.ResetProgress(ctx, user.ID); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		stored, err := userRepo.GetByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("Could not reload user: %v", err)
		}
		if stored.XP != 0 || stored.Level != 1 {
			t.Errorf("Expected xp=0 level=1 after reset, got xp=%d level=%d", stored.XP, stored.Level)
		}

		count, err := completionRepo.CountByUser(ctx, user.ID, domain.EntityHabit)
		if err != nil {
			t.Fatalf("Could not count completions: %v", err)
		}
		if count != 0 {
			t.Errorf("Expected 0 completion rows after reset, got %d", count)
		}
	})

	t.Run("Should return ErrUserNotFound for unknown user", func(t *testing.T) {
		t.Parallel()

		if err := store.ResetProgress(ctx, uuid.NewString()); err != domain.ErrUserNotFound {
			t.Errorf("Expected ErrUserNotFound, got %v", err)
		}
	})
}
