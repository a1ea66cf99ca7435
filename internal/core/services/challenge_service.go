package services

import (
	"context"

	"github.com/habitquest/habitquest-engine/internal/core/domain"
)

type ChallengeService struct {
	repo domain.ChallengeRepository
}

func NewChallengeService(repo domain.ChallengeRepository) *ChallengeService {
	return &ChallengeService{
		repo: repo,
	}
}

type ChallengeInput struct {
	Title       string
	Description string
	Difficulty  string
	Duration    int
	XPReward    int
}

func (s *ChallengeService) Create(ctx context.Context, userID string, input ChallengeInput) (*domain.Challenge, error) {
	challenge, err := domain.NewChallenge(userID, input.Title, input.Description, input.Difficulty, input.Duration, input.XPReward)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, challenge); err != nil {
		return nil, err
	}

	return challenge, nil
}

func (s *ChallengeService) ListByUserID(ctx context.Context, userID, status string) ([]*domain.Challenge, error) {
	if status == "" {
		return s.repo.ListByUserID(ctx, userID)
	}
	return s.repo.ListByUserIDAndStatus(ctx, userID, status)
}

func (s *ChallengeService) Get(ctx context.Context, id, userID string) (*domain.Challenge, error) {
	challenge, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if challenge.UserID != userID {
		return nil, domain.ErrChallengeNotFound
	}
	return challenge, nil
}
