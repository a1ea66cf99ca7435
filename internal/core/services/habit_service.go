package services

import (
	"context"

	"github.com/habitquest/habitquest-engine/internal/core/domain"
)

type HabitService struct {
	repo domain.HabitRepository
}

func NewHabitService(repo domain.HabitRepository) *HabitService {
	return &HabitService{
		repo: repo,
	}
}

type HabitInput struct {
	Name        string
	Description string
	Difficulty  string
	Frequency   domain.Frequency
}

func (s *HabitService) Create(ctx context.Context, userID string, input HabitInput) (*domain.Habit, error) {
	habit, err := domain.NewHabit(userID, input.Name, input.Description, input.Difficulty, input.Frequency)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

func (s *HabitService) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// getOwned fetches a habit and hides other users' habits behind
// ErrHabitNotFound, so responses never reveal that the id exists.
func (s *HabitService) getOwned(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

func (s *HabitService) Get(ctx context.Context, id, userID string) (*domain.Habit, error) {
	return s.getOwned(ctx, id, userID)
}

func (s *HabitService) Update(ctx context.Context, id, userID string, input HabitInput) (*domain.Habit, error) {
	habit, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if input.Difficulty == "" {
		input.Difficulty = habit.Difficulty
	}
	if err := habit.Update(input.Name, input.Description, input.Difficulty, input.Frequency); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

// Archive retires a habit. Archived habits stay in listings for history but
// can no longer be completed or edited.
func (s *HabitService) Archive(ctx context.Context, id, userID string) error {
	habit, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return err
	}

	habit.Archive()
	return s.repo.Update(ctx, habit)
}

// Delete removes a habit permanently. Its completions survive so earned XP
// and streak history are unaffected.
func (s *HabitService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.getOwned(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
