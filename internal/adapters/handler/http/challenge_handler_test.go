package http_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitquest/habitquest-engine/internal/core/domain"
)

var weeklyChallengePayload = map[string]any{
	"title":       "Run every day",
	"description": "At least 2km",
	"difficulty":  "medium",
	"duration":    168,
	"xp_reward":   300,
}

func TestChallengeHandler_Create(t *testing.T) {
	t.Run("Success: 201 Created with active status", func(t *testing.T) {
		env := setupAPI(nil)

		w := env.do(http.MethodPost, "/api/v1/challenges", "user-1", weeklyChallengePayload)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"title":"Run every day"`)
		assert.Contains(t, w.Body.String(), `"status":"active"`)
	})

	t.Run("Fail: 400 for zero duration", func(t *testing.T) {
		env := setupAPI(nil)

		w := env.do(http.MethodPost, "/api/v1/challenges", "user-1", map[string]any{
			"title":     "Broken",
			"duration":  0,
			"xp_reward": 100,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: 400 for non-positive reward", func(t *testing.T) {
		env := setupAPI(nil)

		w := env.do(http.MethodPost, "/api/v1/challenges", "user-1", map[string]any{
			"title":     "Broken",
			"duration":  24,
			"xp_reward": 0,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestChallengeHandler_ListAndGet(t *testing.T) {
	env := setupAPI(nil)

	first := env.do(http.MethodPost, "/api/v1/challenges", "user-1", weeklyChallengePayload)
	require.Equal(t, http.StatusCreated, first.Code)
	var challenge domain.Challenge
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &challenge))

	t.Run("List is scoped to the caller", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/v1/challenges", "user-1", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), challenge.ID)

		other := env.do(http.MethodGet, "/api/v1/challenges", "user-2", nil)
		assert.Equal(t, http.StatusOK, other.Code)
		assert.NotContains(t, other.Body.String(), challenge.ID)
	})

	t.Run("List filters by status", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/v1/challenges?status=completed", "user-1", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), challenge.ID)
	})

	t.Run("Get: 404 for another user's challenge", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/v1/challenges/"+challenge.ID, "user-1", nil).Code)
		assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/v1/challenges/"+challenge.ID, "user-2", nil).Code)
	})
}

func TestChallengeHandler_Complete(t *testing.T) {
	env := setupAPI(nil)
	env.seedUser(t, "user-1", "u1@habitquest.app", "U1")

	created := env.do(http.MethodPost, "/api/v1/challenges", "user-1", weeklyChallengePayload)
	require.Equal(t, http.StatusCreated, created.Code)
	var challenge domain.Challenge
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &challenge))

	t.Run("Success: completion pays the configured reward", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/v1/challenges/"+challenge.ID+"/complete", "user-1", nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var result domain.CompletionResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, 300, result.XPEarned)
		assert.True(t, result.LeveledUp)
		assert.False(t, result.Completed)
	})

	t.Run("Fail: same-day retry rejected with 409", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/v1/challenges/"+challenge.ID+"/complete", "user-1", nil)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), `"allowed":false`)
	})

	t.Run("Fail: stranger completing gets 404", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/v1/challenges/"+challenge.ID+"/complete", "user-2", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestChallengeHandler_Generate(t *testing.T) {
	t.Run("Success: 201 with persisted AI challenge", func(t *testing.T) {
		gen := &stubGenerator{response: `{"title": "Cold showers", "description": "One week of cold showers", "difficulty": "hard", "duration": 168, "xp_reward": 400}`}
		env := setupAPI(gen)

		w := env.do(http.MethodPost, "/api/v1/challenges/generate", "user-1", map[string]any{"difficulty": "hard"})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "Cold showers")
		assert.Contains(t, w.Body.String(), `"ai_generated":true`)

		list := env.do(http.MethodGet, "/api/v1/challenges", "user-1", nil)
		assert.Contains(t, list.Body.String(), "Cold showers")
	})

	t.Run("Fail: 502 when the model returns garbage", func(t *testing.T) {
		gen := &stubGenerator{response: `Sure! Here is a challenge for you: ...`}
		env := setupAPI(gen)

		w := env.do(http.MethodPost, "/api/v1/challenges/generate", "user-1", map[string]any{})

		assert.Equal(t, http.StatusBadGateway, w.Code)

		list := env.do(http.MethodGet, "/api/v1/challenges", "user-1", nil)
		assert.NotContains(t, list.Body.String(), "title")
	})

	t.Run("Fail: 503 when no generator is configured", func(t *testing.T) {
		env := setupAPI(nil)

		w := env.do(http.MethodPost, "/api/v1/challenges/generate", "user-1", map[string]any{})

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
