package services

import (
	"context"
	"strings"
	"time"

	"github.com/habitquest/habitquest-engine/internal/core/domain"
)

const searchLimit = 20

type SocialService struct {
	followRepo domain.FollowRepository
	userRepo   domain.UserRepository
}

func NewSocialService(followRepo domain.FollowRepository, userRepo domain.UserRepository) *SocialService {
	return &SocialService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

func (s *SocialService) Follow(ctx context.Context, followerID, followingID string) error {
	if followerID == followingID {
		return domain.ErrSelfFollow
	}

	if _, err := s.userRepo.GetByID(ctx, followingID); err != nil {
		return err
	}

	exists, err := s.followRepo.Exists(ctx, followerID, followingID)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrAlreadyFollowing
	}

	return s.followRepo.Create(ctx, &domain.Follow{
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   time.Now().UTC(),
	})
}

func (s *SocialService) Unfollow(ctx context.Context, followerID, followingID string) error {
	exists, err := s.followRepo.Exists(ctx, followerID, followingID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFollowing
	}

	return s.followRepo.Delete(ctx, followerID, followingID)
}

// SearchUsers finds users by partial email or display name. The empty query
// returns nothing rather than everyone.
func (s *SocialService) SearchUsers(ctx context.Context, query string) ([]*domain.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*domain.User{}, nil
	}
	return s.userRepo.Search(ctx, query, searchLimit)
}
