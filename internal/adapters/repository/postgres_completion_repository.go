package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/habitquest/habitquest-engine/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

type PostgresCompletionRepository struct {
	db *sqlx.DB
}

func NewPostgresCompletionRepository(db *sqlx.DB) *PostgresCompletionRepository {
	return &PostgresCompletionRepository{db: db}
}

func (r *PostgresCompletionRepository) ListTimesByUser(ctx context.Context, userID, entityType string) ([]time.Time, error) {
	query := `
        SELECT completed_at FROM completions
        WHERE user_id = $1 AND entity_type = $2
        ORDER BY completed_at DESC`

	var times []time.Time
	if err := r.db.SelectContext(ctx, &times, query, userID, entityType); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return times, nil
}

func (r *PostgresCompletionRepository) CountByUser(ctx context.Context, userID, entityType string) (int, error) {
	query := `SELECT count(*) FROM completions WHERE user_id = $1 AND entity_type = $2`

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, entityType); err != nil {
		return 0, fmt.Errorf("query error: %w", err)
	}
	return count, nil
}

func (r *PostgresCompletionRepository) CreateBatch(ctx context.Context, completions []*domain.Completion) error {
	if len(completions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx failed: %w", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO completions (id, entity_type, entity_id, user_id, completed_at, xp_earned)
        VALUES (:id, :entity_type, :entity_id, :user_id, :completed_at, :xp_earned)`

	for _, c := range completions {
		if _, err := tx.NamedExecContext(ctx, query, c); err != nil {
			return fmt.Errorf("insert completion failed: %w", err)
		}
	}

	return tx.Commit()
}

func (r *PostgresCompletionRepository) DeleteByUser(ctx context.Context, userID string) error {
	query := `DELETE FROM completions WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("delete completions failed: %w", err)
	}
	return nil
}
