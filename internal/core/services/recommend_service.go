package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/habitquest/habitquest-engine/internal/core/domain"
)

var (
	// ErrAIUnavailable means no text generator is configured; AI routes
	// answer 503 rather than degrading to canned content.
	ErrAIUnavailable = errors.New("ai generation is not configured")

	// ErrAIBadResponse means the model produced output that failed strict
	// validation. Nothing from such a response is ever persisted.
	ErrAIBadResponse = errors.New("ai response failed validation")
)

// TextGenerator produces one chat completion. Implemented by the
// OpenAI-compatible adapter; anything speaking that wire format plugs in.
type TextGenerator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type RecommendService struct {
	gen           TextGenerator
	habitRepo     domain.HabitRepository
	challengeRepo domain.ChallengeRepository
}

func NewRecommendService(gen TextGenerator, habitRepo domain.HabitRepository, challengeRepo domain.ChallengeRepository) *RecommendService {
	return &RecommendService{
		gen:           gen,
		habitRepo:     habitRepo,
		challengeRepo: challengeRepo,
	}
}

const challengeSystemPrompt = `You are a habit coach generating one personal challenge.
Respond with a single JSON object and nothing else, using exactly these keys:
{"title": string, "description": string, "difficulty": "easy"|"medium"|"hard", "duration": integer hours between 1 and 720, "xp_reward": integer between 1 and 1000}`

type generatedChallenge struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
	Duration    int    `json:"duration"`
	XPReward    int    `json:"xp_reward"`
}

// GenerateChallenge asks the model for a challenge tailored to the user's
// habits and persists it. Model output is parsed and validated strictly;
// anything malformed is rejected wholesale.
func (s *RecommendService) GenerateChallenge(ctx context.Context, userID, difficulty string) (*domain.Challenge, error) {
	if s.gen == nil {
		return nil, ErrAIUnavailable
	}

	userPrompt, err := s.buildUserContext(ctx, userID)
	if err != nil {
		return nil, err
	}
	if difficulty != "" {
		userPrompt += fmt.Sprintf("\nThe challenge difficulty must be %q.", difficulty)
	}

	raw, err := s.gen.Complete(ctx, challengeSystemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}

	var gc generatedChallenge
	if err := strictUnmarshal(raw, &gc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAIBadResponse, err)
	}
	if gc.Duration < 1 || gc.Duration > 720 || gc.XPReward < 1 || gc.XPReward > 1000 {
		return nil, fmt.Errorf("%w: duration or xp_reward out of range", ErrAIBadResponse)
	}

	challenge, err := domain.NewChallenge(userID, gc.Title, gc.Description, gc.Difficulty, gc.Duration, gc.XPReward)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAIBadResponse, err)
	}
	challenge.AIGenerated = true

	if err := s.challengeRepo.Create(ctx, challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

const recommendSystemPrompt = `You are a habit coach recommending new habits.
Respond with a JSON array of at most 3 objects and nothing else, each using exactly these keys:
{"name": string, "description": string, "difficulty": "easy"|"medium"|"hard"}`

// HabitSuggestion is a recommended habit the user may accept. Suggestions
// are never persisted; accepting one goes through the normal create flow.
type HabitSuggestion struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
}

func (s *RecommendService) RecommendHabits(ctx context.Context, userID string) ([]HabitSuggestion, error) {
	if s.gen == nil {
		return nil, ErrAIUnavailable
	}

	userPrompt, err := s.buildUserContext(ctx, userID)
	if err != nil {
		return nil, err
	}

	raw, err := s.gen.Complete(ctx, recommendSystemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}

	var suggestions []HabitSuggestion
	if err := strictUnmarshal(raw, &suggestions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAIBadResponse, err)
	}
	if len(suggestions) == 0 || len(suggestions) > 3 {
		return nil, fmt.Errorf("%w: expected 1 to 3 suggestions", ErrAIBadResponse)
	}
	for _, sg := range suggestions {
		if strings.TrimSpace(sg.Name) == "" {
			return nil, fmt.Errorf("%w: suggestion with empty name", ErrAIBadResponse)
		}
		switch sg.Difficulty {
		case domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard:
		default:
			return nil, fmt.Errorf("%w: invalid difficulty %q", ErrAIBadResponse, sg.Difficulty)
		}
	}

	return suggestions, nil
}

func (s *RecommendService) buildUserContext(ctx context.Context, userID string) (string, error) {
	habits, err := s.habitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return "", err
	}

	if len(habits) == 0 {
		return "The user has no habits yet.", nil
	}

	var b strings.Builder
	b.WriteString("The user currently tracks these habits:\n")
	for _, h := range habits {
		if h.IsArchived {
			continue
		}
		fmt.Fprintf(&b, "- %s (%s)\n", h.Name, h.Difficulty)
	}
	return b.String(), nil
}

// strictUnmarshal parses model output as JSON, tolerating a fenced code
// block around it but nothing else: unknown keys and trailing content both
// fail.
func strictUnmarshal(raw string, v any) error {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
		raw = strings.TrimSpace(raw)
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing content after JSON value")
	}
	return nil
}
