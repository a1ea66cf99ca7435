package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/habitquest/habitquest-engine/internal/core/domain"
	"github.com/habitquest/habitquest-engine/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	response string
	err      error
	prompts  []string
}

func (s *stubGenerator) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.prompts = append(s.prompts, userPrompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestRecommendService_GenerateChallenge(t *testing.T) {
	newSvc := func(gen services.TextGenerator) (*services.RecommendService, *MockChallengeRepo) {
		challenges := NewMockChallengeRepo()
		return services.NewRecommendService(gen, NewMockHabitRepo(), challenges), challenges
	}

	t.Run("Success: Valid JSON becomes a persisted AI challenge", func(t *testing.T) {
		gen := &stubGenerator{response: `{"title": "Cold Shower Week", "description": "One cold shower daily", "difficulty": "hard", "duration": 168, "xp_reward": 200}`}
		svc, challenges := newSvc(gen)

		challenge, err := svc.GenerateChallenge(context.Background(), "user-1", "")

		require.NoError(t, err)
		assert.Equal(t, "Cold Shower Week", challenge.Title)
		assert.True(t, challenge.AIGenerated)
		assert.Equal(t, domain.ChallengeStatusActive, challenge.Status)
		assert.Len(t, challenges.store, 1)
	})

	t.Run("Success: Fenced JSON is tolerated", func(t *testing.T) {
		gen := &stubGenerator{response: "```json\n{\"title\": \"Fenced\", \"description\": \"\", \"difficulty\": \"easy\", \"duration\": 24, \"xp_reward\": 50}\n```"}
		svc, _ := newSvc(gen)

		challenge, err := svc.GenerateChallenge(context.Background(), "user-1", "")

		require.NoError(t, err)
		assert.Equal(t, "Fenced", challenge.Title)
	})

	t.Run("Fail closed: Nothing persists on malformed output", func(t *testing.T) {
		cases := map[string]string{
			"prose, not JSON":    `Sure! Here is a challenge for you.`,
			"unknown keys":       `{"title": "X", "description": "", "difficulty": "easy", "duration": 24, "xp_reward": 50, "bonus": true}`,
			"trailing content":   `{"title": "X", "description": "", "difficulty": "easy", "duration": 24, "xp_reward": 50} extra`,
			"bad difficulty":     `{"title": "X", "description": "", "difficulty": "brutal", "duration": 24, "xp_reward": 50}`,
			"duration too large": `{"title": "X", "description": "", "difficulty": "easy", "duration": 9000, "xp_reward": 50}`,
			"zero reward":        `{"title": "X", "description": "", "difficulty": "easy", "duration": 24, "xp_reward": 0}`,
			"empty title":        `{"title": "", "description": "", "difficulty": "easy", "duration": 24, "xp_reward": 50}`,
		}

		for name, response := range cases {
			t.Run(name, func(t *testing.T) {
				svc, challenges := newSvc(&stubGenerator{response: response})

				_, err := svc.GenerateChallenge(context.Background(), "user-1", "")

				assert.ErrorIs(t, err, services.ErrAIBadResponse)
				assert.Empty(t, challenges.store)
			})
		}
	})

	t.Run("Fail: No generator configured", func(t *testing.T) {
		svc, _ := newSvc(nil)

		_, err := svc.GenerateChallenge(context.Background(), "user-1", "")

		assert.ErrorIs(t, err, services.ErrAIUnavailable)
	})

	t.Run("Fail: Generator error surfaces as unavailable", func(t *testing.T) {
		svc, challenges := newSvc(&stubGenerator{err: errors.New("upstream timeout")})

		_, err := svc.GenerateChallenge(context.Background(), "user-1", "")

		assert.ErrorIs(t, err, services.ErrAIUnavailable)
		assert.Empty(t, challenges.store)
	})

	t.Run("Existing habits appear in the prompt context", func(t *testing.T) {
		gen := &stubGenerator{response: `{"title": "X", "description": "", "difficulty": "easy", "duration": 24, "xp_reward": 50}`}
		habits := NewMockHabitRepo()
		h, _ := domain.NewHabit("user-1", "Meditate", "", domain.DifficultyEasy, dailyFreq)
		habits.Create(context.Background(), h)
		svc := services.NewRecommendService(gen, habits, NewMockChallengeRepo())

		_, err := svc.GenerateChallenge(context.Background(), "user-1", "")

		require.NoError(t, err)
		require.Len(t, gen.prompts, 1)
		assert.Contains(t, gen.prompts[0], "Meditate")
	})
}

func TestRecommendService_RecommendHabits(t *testing.T) {
	newSvc := func(gen services.TextGenerator) *services.RecommendService {
		return services.NewRecommendService(gen, NewMockHabitRepo(), NewMockChallengeRepo())
	}

	t.Run("Success: Valid array comes back as suggestions", func(t *testing.T) {
		gen := &stubGenerator{response: `[{"name": "Journal", "description": "Write nightly", "difficulty": "easy"}, {"name": "Stretch", "description": "", "difficulty": "medium"}]`}
		svc := newSvc(gen)

		suggestions, err := svc.RecommendHabits(context.Background(), "user-1")

		require.NoError(t, err)
		require.Len(t, suggestions, 2)
		assert.Equal(t, "Journal", suggestions[0].Name)
	})

	t.Run("Fail closed: Invalid entries reject the whole batch", func(t *testing.T) {
		cases := map[string]string{
			"empty array":    `[]`,
			"too many":       `[{"name":"A","description":"","difficulty":"easy"},{"name":"B","description":"","difficulty":"easy"},{"name":"C","description":"","difficulty":"easy"},{"name":"D","description":"","difficulty":"easy"}]`,
			"empty name":     `[{"name": "  ", "description": "", "difficulty": "easy"}]`,
			"bad difficulty": `[{"name": "X", "description": "", "difficulty": "extreme"}]`,
			"not an array":   `{"name": "X", "description": "", "difficulty": "easy"}`,
		}

		for name, response := range cases {
			t.Run(name, func(t *testing.T) {
				svc := newSvc(&stubGenerator{response: response})

				_, err := svc.RecommendHabits(context.Background(), "user-1")

				assert.ErrorIs(t, err, services.ErrAIBadResponse)
			})
		}
	})

	t.Run("Fail: No generator configured", func(t *testing.T) {
		svc := newSvc(nil)

		_, err := svc.RecommendHabits(context.Background(), "user-1")

		assert.ErrorIs(t, err, services.ErrAIUnavailable)
	})
}
