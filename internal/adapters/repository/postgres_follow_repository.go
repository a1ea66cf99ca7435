package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/habitquest/habitquest-engine/internal/core/domain"
	"github.com/lib/pq"
)

type PostgresFollowRepository struct {
	db *sql.DB
}

func NewPostgresFollowRepository(db *sql.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) Create(ctx context.Context, follow *domain.Follow) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `
        INSERT INTO follows (follower_id, following_id, created_at)
        VALUES ($1, $2, $3)`

	_, err := r.db.ExecContext(ctx, query, follow.FollowerID, follow.FollowingID, follow.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrAlreadyFollowing
		}
		return fmt.Errorf("repository: insert follow failed: %w", err)
	}
	return nil
}

func (r *PostgresFollowRepository) Delete(ctx context.Context, followerID, followingID string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`

	res, err := r.db.ExecContext(ctx, query, followerID, followingID)
	if err != nil {
		return fmt.Errorf("repository: delete follow failed: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFollowing
	}
	return nil
}

func (r *PostgresFollowRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, followerID, followingID).Scan(&exists); err != nil {
		return false, fmt.Errorf("repository: follow lookup failed: %w", err)
	}
	return exists, nil
}
