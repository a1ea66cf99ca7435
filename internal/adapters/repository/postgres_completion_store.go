package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/habitquest/habitquest-engine/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

// PostgresCompletionStore runs the reward path inside one transaction. The
// entity row is locked with SELECT ... FOR UPDATE before the decide callback
// runs, so two racing completion attempts serialize: the loser re-reads the
// row the winner committed and fails the same eligibility check the winner
// just passed.
type PostgresCompletionStore struct {
	db *sqlx.DB
}

func NewPostgresCompletionStore(db *sqlx.DB) *PostgresCompletionStore {
	return &PostgresCompletionStore{db: db}
}

func (s *PostgresCompletionStore) CompleteHabit(ctx context.Context, habitID, userID string, decide domain.HabitDecision) (int, error) {
	var newXP int

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		query := `
            SELECT ` + habitColumns + ` FROM habits
            WHERE id = $1 AND user_id = $2
            FOR UPDATE`

		habit, err := scanHabit(tx.QueryRowContext(ctx, query, habitID, userID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrHabitNotFound
			}
			return fmt.Errorf("lock habit failed: %w", err)
		}

		completion, err := decide(habit)
		if err != nil {
			return err
		}

		frequencyJSON, err := json.Marshal(habit.Frequency)
		if err != nil {
			return fmt.Errorf("marshal frequency failed: %w", err)
		}

		update := `
            UPDATE habits SET
                name=$1, description=$2, difficulty=$3, frequency=$4,
                is_archived=$5, last_completed_at=$6, updated_at=$7
            WHERE id=$8`
		if _, err := tx.ExecContext(ctx, update,
			habit.Name, habit.Description, habit.Difficulty, frequencyJSON,
			habit.IsArchived, habit.LastCompletedAt, habit.UpdatedAt,
			habit.ID,
		); err != nil {
			return fmt.Errorf("update habit failed: %w", err)
		}

		newXP, err = s.recordCompletion(ctx, tx, completion)
		return err
	})

	return newXP, err
}

func (s *PostgresCompletionStore) CompleteChallenge(ctx context.Context, challengeID, userID string, decide domain.ChallengeDecision) (int, error) {
	var newXP int

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		query := `
            SELECT ` + challengeColumns + ` FROM challenges
            WHERE id = $1 AND user_id = $2
            FOR UPDATE`

		challenge, err := scanChallenge(tx.QueryRowContext(ctx, query, challengeID, userID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrChallengeNotFound
			}
			return fmt.Errorf("lock challenge failed: %w", err)
		}

		completion, err := decide(challenge)
		if err != nil {
			return err
		}

		update := `
            UPDATE challenges SET
                status=$1, end_date=$2, last_completed_at=$3, updated_at=$4
            WHERE id=$5`
		if _, err := tx.ExecContext(ctx, update,
			challenge.Status, challenge.EndDate, challenge.LastCompletedAt, challenge.UpdatedAt,
			challenge.ID,
		); err != nil {
			return fmt.Errorf("update challenge failed: %w", err)
		}

		newXP, err = s.recordCompletion(ctx, tx, completion)
		return err
	})

	return newXP, err
}

// GrantBadge inserts the grant and credits the bonus XP atomically. The
// unique (user_id, badge_id) constraint makes the grant idempotent: a
// conflicting insert affects zero rows and the XP credit is skipped.
func (s *PostgresCompletionStore) GrantBadge(ctx context.Context, userID string, badge *domain.Badge) (bool, error) {
	var granted bool

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		insert := `
            INSERT INTO user_badges (id, user_id, badge_id, awarded_at)
            VALUES (gen_random_uuid(), $1, $2, NOW())
            ON CONFLICT (user_id, badge_id) DO NOTHING`

		res, err := tx.ExecContext(ctx, insert, userID, badge.ID)
		if err != nil {
			return fmt.Errorf("insert badge grant failed: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET xp = xp + $1, updated_at = NOW() WHERE id = $2`,
			badge.XPBonus, userID,
		); err != nil {
			return fmt.Errorf("credit badge xp failed: %w", err)
		}

		granted = true
		return nil
	})

	return granted, err
}

// ResetProgress zeroes the user's XP and deletes their habit and challenge
// completions in one transaction, so a failure partway through rolls the
// whole reset back.
func (s *PostgresCompletionStore) ResetProgress(ctx context.Context, userID string) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE users SET xp = 0, level = 1, updated_at = NOW() WHERE id = $1`,
			userID,
		)
		if err != nil {
			return fmt.Errorf("reset user failed: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ErrUserNotFound
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM completions WHERE user_id = $1`,
			userID,
		); err != nil {
			return fmt.Errorf("delete completions failed: %w", err)
		}
		return nil
	})
}

func (s *PostgresCompletionStore) recordCompletion(ctx context.Context, tx *sqlx.Tx, c *domain.Completion) (int, error) {
	insert := `
        INSERT INTO completions (id, entity_type, entity_id, user_id, completed_at, xp_earned)
        VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.ExecContext(ctx, insert,
		c.ID, c.EntityType, c.EntityID, c.UserID, c.CompletedAt, c.XPEarned,
	); err != nil {
		return 0, fmt.Errorf("insert completion failed: %w", err)
	}

	var newXP int
	err := tx.QueryRowContext(ctx,
		`UPDATE users SET xp = xp + $1, updated_at = NOW() WHERE id = $2 RETURNING xp`,
		c.XPEarned, c.UserID,
	).Scan(&newXP)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrUserNotFound
		}
		return 0, fmt.Errorf("credit xp failed: %w", err)
	}
	return newXP, nil
}

func (s *PostgresCompletionStore) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx failed: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
