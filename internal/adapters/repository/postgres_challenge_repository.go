package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/habitquest/habitquest-engine/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

type PostgresChallengeRepository struct {
	db *sqlx.DB
}

func NewPostgresChallengeRepository(db *sqlx.DB) *PostgresChallengeRepository {
	return &PostgresChallengeRepository{db: db}
}

const challengeColumns = `id, user_id, title, description, difficulty, duration, xp_reward, status, ai_generated, start_date, end_date, last_completed_at, created_at, updated_at`

func scanChallenge(row scannable) (*domain.Challenge, error) {
	var c domain.Challenge
	err := row.Scan(
		&c.ID, &c.UserID, &c.Title, &c.Description, &c.Difficulty,
		&c.Duration, &c.XPReward, &c.Status, &c.AIGenerated,
		&c.StartDate, &c.EndDate, &c.LastCompletedAt,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresChallengeRepository) Create(ctx context.Context, c *domain.Challenge) error {
	query := `
        INSERT INTO challenges (
            id, user_id, title, description, difficulty,
            duration, xp_reward, status, ai_generated,
            start_date, end_date, last_completed_at,
            created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7, $8, $9,
            $10, NULL, NULL,
            $11, $12
        )`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.UserID, c.Title, c.Description, c.Difficulty,
		c.Duration, c.XPReward, c.Status, c.AIGenerated,
		c.StartDate, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert challenge: %w", err)
	}
	return nil
}

func (r *PostgresChallengeRepository) GetByID(ctx context.Context, id string) (*domain.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE id = $1`

	c, err := scanChallenge(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return c, nil
}

func (r *PostgresChallengeRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Challenge, error) {
	query := `
        SELECT ` + challengeColumns + ` FROM challenges
        WHERE user_id = $1
        ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *PostgresChallengeRepository) ListByUserIDAndStatus(ctx context.Context, userID, status string) ([]*domain.Challenge, error) {
	query := `
        SELECT ` + challengeColumns + ` FROM challenges
        WHERE user_id = $1 AND status = $2
        ORDER BY created_at DESC`
	return r.list(ctx, query, userID, status)
}

func (r *PostgresChallengeRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Challenge, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var challenges []*domain.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		challenges = append(challenges, c)
	}
	return challenges, rows.Err()
}
