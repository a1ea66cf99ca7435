package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/habitquest/habitquest-engine/internal/core/domain"
	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

type scannable interface {
	Scan(dest ...interface{}) error
}

const habitColumns = `id, user_id, name, description, difficulty, frequency, is_archived, last_completed_at, created_at, updated_at`

func scanHabit(row scannable) (*domain.Habit, error) {
	var h domain.Habit
	var frequencyJSON []byte

	err := row.Scan(
		&h.ID, &h.UserID, &h.Name, &h.Description, &h.Difficulty,
		&frequencyJSON, &h.IsArchived, &h.LastCompletedAt,
		&h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// A frequency column that does not parse is a fail-loud condition: the
	// habit cannot be evaluated for eligibility, so it never reaches callers.
	freq, err := domain.ParseFrequency(frequencyJSON)
	if err != nil {
		return nil, fmt.Errorf("habit %s: %w", h.ID, err)
	}
	h.Frequency = freq

	return &h, nil
}

func (r *PostgresHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	frequencyJSON, err := json.Marshal(h.Frequency)
	if err != nil {
		return fmt.Errorf("failed to marshal frequency: %w", err)
	}

	query := `
        INSERT INTO habits (
            id, user_id, name, description, difficulty,
            frequency, is_archived, last_completed_at,
            created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, FALSE, NULL,
            $7, $8
        )`

	_, err = r.db.ExecContext(ctx, query,
		h.ID, h.UserID, h.Name, h.Description, h.Difficulty,
		frequencyJSON, h.CreatedAt, h.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	return nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)

	h, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return h, nil
}

func (r *PostgresHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	query := `
        SELECT ` + habitColumns + ` FROM habits
        WHERE user_id = $1
        ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var habits []*domain.Habit

	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		habits = append(habits, h)
	}

	return habits, rows.Err()
}

func (r *PostgresHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	frequencyJSON, err := json.Marshal(h.Frequency)
	if err != nil {
		return err
	}

	query := `
        UPDATE habits SET
            name=$1, description=$2, difficulty=$3, frequency=$4,
            is_archived=$5, last_completed_at=$6, updated_at=NOW()
        WHERE id=$7`

	res, err := r.db.ExecContext(ctx, query,
		h.Name, h.Description, h.Difficulty, frequencyJSON,
		h.IsArchived, h.LastCompletedAt,
		h.ID,
	)
	if err != nil {
		return fmt.Errorf("update query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

func (r *PostgresHabitRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM habits WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}
