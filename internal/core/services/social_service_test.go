package services

import (
	"context"
	"testing"

	"github.com/habitquest/habitquest-engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memFollowRepo struct {
	edges map[[2]string]bool
}

func newMemFollowRepo() *memFollowRepo {
	return &memFollowRepo{edges: make(map[[2]string]bool)}
}

func (m *memFollowRepo) Create(ctx context.Context, follow *domain.Follow) error {
	m.edges[[2]string{follow.FollowerID, follow.FollowingID}] = true
	return nil
}

func (m *memFollowRepo) Delete(ctx context.Context, followerID, followingID string) error {
	delete(m.edges, [2]string{followerID, followingID})
	return nil
}

func (m *memFollowRepo) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	return m.edges[[2]string{followerID, followingID}], nil
}

func TestSocialService_Follow(t *testing.T) {
	newSvc := func(t *testing.T) (*SocialService, *memFollowRepo) {
		t.Helper()
		follows := newMemFollowRepo()
		users := newMemUserRepo(
			seedUser(t, "alice", 0, 1),
			seedUser(t, "bob", 0, 1),
		)
		return NewSocialService(follows, users), follows
	}

	t.Run("Success: Follow creates the edge", func(t *testing.T) {
		svc, follows := newSvc(t)

		err := svc.Follow(context.Background(), "alice", "bob")

		require.NoError(t, err)
		exists, _ := follows.Exists(context.Background(), "alice", "bob")
		assert.True(t, exists)
	})

	t.Run("Fail: Cannot follow yourself", func(t *testing.T) {
		svc, _ := newSvc(t)

		err := svc.Follow(context.Background(), "alice", "alice")

		assert.ErrorIs(t, err, domain.ErrSelfFollow)
	})

	t.Run("Fail: Cannot follow twice", func(t *testing.T) {
		svc, _ := newSvc(t)

		require.NoError(t, svc.Follow(context.Background(), "alice", "bob"))
		err := svc.Follow(context.Background(), "alice", "bob")

		assert.ErrorIs(t, err, domain.ErrAlreadyFollowing)
	})

	t.Run("Fail: Target must exist", func(t *testing.T) {
		svc, _ := newSvc(t)

		err := svc.Follow(context.Background(), "alice", "ghost")

		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("Unfollow removes the edge, second unfollow fails", func(t *testing.T) {
		svc, follows := newSvc(t)

		require.NoError(t, svc.Follow(context.Background(), "alice", "bob"))
		require.NoError(t, svc.Unfollow(context.Background(), "alice", "bob"))

		exists, _ := follows.Exists(context.Background(), "alice", "bob")
		assert.False(t, exists)

		err := svc.Unfollow(context.Background(), "alice", "bob")
		assert.ErrorIs(t, err, domain.ErrNotFollowing)
	})
}

func TestSocialService_SearchUsers(t *testing.T) {
	users := newMemUserRepo(
		seedUser(t, "alice", 0, 1),
		seedUser(t, "bob", 0, 1),
	)
	svc := NewSocialService(newMemFollowRepo(), users)

	t.Run("Matches by partial email", func(t *testing.T) {
		found, err := svc.SearchUsers(context.Background(), "alice@")

		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "alice", found[0].ID)
	})

	t.Run("Empty query returns nothing", func(t *testing.T) {
		found, err := svc.SearchUsers(context.Background(), "   ")

		require.NoError(t, err)
		assert.Empty(t, found)
	})
}
