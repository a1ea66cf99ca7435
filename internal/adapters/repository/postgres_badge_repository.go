package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/habitquest/habitquest-engine/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

type PostgresBadgeRepository struct {
	db *sqlx.DB
}

func NewPostgresBadgeRepository(db *sqlx.DB) *PostgresBadgeRepository {
	return &PostgresBadgeRepository{db: db}
}

const badgeColumns = `id, name, description, image_url, requirement, requirement_value, xp_bonus, created_at`

func (r *PostgresBadgeRepository) List(ctx context.Context) ([]*domain.Badge, error) {
	query := `SELECT ` + badgeColumns + ` FROM badges ORDER BY created_at ASC`

	var badges []*domain.Badge
	if err := r.db.SelectContext(ctx, &badges, query); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return badges, nil
}

func (r *PostgresBadgeRepository) GetByName(ctx context.Context, name string) (*domain.Badge, error) {
	query := `SELECT ` + badgeColumns + ` FROM badges WHERE name = $1`

	var badge domain.Badge
	if err := r.db.GetContext(ctx, &badge, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBadgeNotFound
		}
		return nil, fmt.Errorf("query error: %w", err)
	}
	return &badge, nil
}

func (r *PostgresBadgeRepository) ListByUser(ctx context.Context, userID string) ([]*domain.UserBadge, error) {
	query := `
        SELECT id, user_id, badge_id, awarded_at FROM user_badges
        WHERE user_id = $1
        ORDER BY awarded_at ASC`

	var grants []*domain.UserBadge
	if err := r.db.SelectContext(ctx, &grants, query, userID); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return grants, nil
}

// Seed inserts the badge catalogue at startup. Names are the conflict key so
// redeploys never duplicate badges or disturb existing grants.
func (r *PostgresBadgeRepository) Seed(ctx context.Context, badges []domain.Badge) error {
	query := `
        INSERT INTO badges (id, name, description, image_url, requirement, requirement_value, xp_bonus, created_at)
        VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, NOW())
        ON CONFLICT (name) DO NOTHING`

	for _, b := range badges {
		if _, err := r.db.ExecContext(ctx, query,
			b.Name, b.Description, b.ImageURL, b.Requirement, b.RequirementValue, b.XPBonus,
		); err != nil {
			return fmt.Errorf("seed badge %q failed: %w", b.Name, err)
		}
	}
	return nil
}
