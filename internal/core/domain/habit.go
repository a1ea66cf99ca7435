package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHabitNotFound     = errors.New("habit not found")
	ErrHabitNameEmpty    = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong  = errors.New("habit name is too long (max 100 chars)")
	ErrHabitDescTooLong  = errors.New("habit description is too long (max 500 chars)")
	ErrInvalidDifficulty = errors.New("invalid difficulty (must be easy, medium, or hard)")
	ErrHabitArchived     = errors.New("habit is archived")
	ErrUnauthorized      = errors.New("not authorized")
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"

	MaxHabitNameLen = 100
	MaxHabitDescLen = 500
)

var difficultyXP = map[string]int{
	DifficultyEasy:   10,
	DifficultyMedium: 20,
	DifficultyHard:   40,
}

// XPForDifficulty returns the reward for completing a habit of the given
// difficulty. Unknown values get the easy reward, matching how rewards have
// always been computed for legacy rows.
func XPForDifficulty(difficulty string) int {
	if xp, ok := difficultyXP[difficulty]; ok {
		return xp
	}
	return difficultyXP[DifficultyEasy]
}

type Habit struct {
	ID              string     `json:"id" db:"id"`
	UserID          string     `json:"user_id" db:"user_id"`
	Name            string     `json:"name" db:"name"`
	Description     string     `json:"description,omitempty" db:"description"`
	Difficulty      string     `json:"difficulty" db:"difficulty"`
	Frequency       Frequency  `json:"frequency"`
	IsArchived      bool       `json:"is_archived" db:"is_archived"`
	LastCompletedAt *time.Time `json:"last_completed_at,omitempty" db:"last_completed_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

func validateHabit(name, description, difficulty string, freq Frequency) error {
	if strings.TrimSpace(name) == "" {
		return ErrHabitNameEmpty
	}
	if len(strings.TrimSpace(name)) > MaxHabitNameLen {
		return ErrHabitNameTooLong
	}
	if len(strings.TrimSpace(description)) > MaxHabitDescLen {
		return ErrHabitDescTooLong
	}
	switch difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return ErrInvalidDifficulty
	}
	return freq.Validate()
}

func NewHabit(userID, name, description, difficulty string, freq Frequency) (*Habit, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if difficulty == "" {
		difficulty = DifficultyEasy
	}
	if err := validateHabit(name, description, difficulty, freq); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Habit{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Difficulty:  difficulty,
		Frequency:   freq,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (h *Habit) Update(name, description, difficulty string, freq Frequency) error {
	if h.IsArchived {
		return ErrHabitArchived
	}
	if err := validateHabit(name, description, difficulty, freq); err != nil {
		return err
	}

	h.Name = strings.TrimSpace(name)
	h.Description = strings.TrimSpace(description)
	h.Difficulty = difficulty
	h.Frequency = freq
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func (h *Habit) Archive() {
	if h.IsArchived {
		return
	}
	h.IsArchived = true
	h.UpdatedAt = time.Now().UTC()
}

// CheckEligibility applies the habit's frequency policy at `now`.
// Archived habits are never eligible.
func (h *Habit) CheckEligibility(now time.Time) error {
	if h.IsArchived {
		return ErrHabitArchived
	}
	return h.Frequency.CheckEligibility(h.LastCompletedAt, now)
}

// RecordCompletion marks the habit completed at `now` and returns the XP
// earned. Eligibility must have been checked by the caller.
func (h *Habit) RecordCompletion(now time.Time) int {
	h.LastCompletedAt = &now
	h.UpdatedAt = now
	return XPForDifficulty(h.Difficulty)
}
