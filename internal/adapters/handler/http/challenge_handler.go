package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/habitquest/habitquest-engine/internal/adapters/handler/http/middleware"
	"github.com/habitquest/habitquest-engine/internal/core/domain"
	"github.com/habitquest/habitquest-engine/internal/core/services"
)

type ChallengeHandler struct {
	svc         *services.ChallengeService
	completions *services.CompletionService
	recommend   *services.RecommendService
}

func NewChallengeHandler(svc *services.ChallengeService, completions *services.CompletionService, recommend *services.RecommendService) *ChallengeHandler {
	return &ChallengeHandler{
		svc:         svc,
		completions: completions,
		recommend:   recommend,
	}
}

type createChallengeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
	Duration    int    `json:"duration"`
	XPReward    int    `json:"xp_reward"`
}

type generateChallengeRequest struct {
	Difficulty string `json:"difficulty"`
}

func (h *ChallengeHandler) RegisterRoutes(router *gin.RouterGroup) {
	challenges := router.Group("/challenges")
	{
		challenges.POST("", h.Create)
		challenges.GET("", h.List)
		challenges.POST("/generate", h.Generate)
		challenges.GET("/:id", h.Get)
		challenges.POST("/:id/complete", h.Complete)
	}
}

func (h *ChallengeHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req createChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.ChallengeInput{
		Title:       req.Title,
		Description: req.Description,
		Difficulty:  req.Difficulty,
		Duration:    req.Duration,
		XPReward:    req.XPReward,
	}

	challenge, err := h.svc.Create(c.Request.Context(), userID, input)
	if err != nil {
		if isChallengeValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, challenge)
}

func (h *ChallengeHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	list, err := h.svc.ListByUserID(c.Request.Context(), userID, c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *ChallengeHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	challenge, err := h.svc.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrChallengeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "challenge not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, challenge)
}

func (h *ChallengeHandler) Complete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	result, err := h.completions.CompleteChallenge(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		var inel *domain.IneligibleError
		switch {
		case errors.As(err, &inel):
			c.JSON(http.StatusConflict, gin.H{
				"allowed":           false,
				"reason":            inel.Reason,
				"retry_after_hours": int(inel.RetryAfter.Hours()),
			})
		case errors.Is(err, domain.ErrChallengeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "challenge not found"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ChallengeHandler) Generate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req generateChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	challenge, err := h.recommend.GenerateChallenge(c.Request.Context(), userID, req.Difficulty)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAIUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "generation service unavailable"})
		case errors.Is(err, services.ErrAIBadResponse):
			c.JSON(http.StatusBadGateway, gin.H{"error": "generation produced an invalid challenge"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, challenge)
}

func isChallengeValidationError(err error) bool {
	return errors.Is(err, domain.ErrChallengeTitleEmpty) ||
		errors.Is(err, domain.ErrInvalidDuration) ||
		errors.Is(err, domain.ErrInvalidXPReward) ||
		errors.Is(err, domain.ErrInvalidDifficulty)
}
