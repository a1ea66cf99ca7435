package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/habitquest/habitquest-engine/internal/adapters/handler/http/middleware"
	"github.com/habitquest/habitquest-engine/internal/core/domain"
	"github.com/habitquest/habitquest-engine/internal/core/services"
)

type HabitHandler struct {
	svc         *services.HabitService
	completions *services.CompletionService
	recommend   *services.RecommendService
}

func NewHabitHandler(svc *services.HabitService, completions *services.CompletionService, recommend *services.RecommendService) *HabitHandler {
	return &HabitHandler{
		svc:         svc,
		completions: completions,
		recommend:   recommend,
	}
}

type habitRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Difficulty  string           `json:"difficulty"`
	Frequency   domain.Frequency `json:"frequency"`
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.POST("", h.Create)
		habits.GET("", h.List)
		habits.GET("/recommendations", h.Recommendations)
		habits.GET("/:id", h.Get)
		habits.PUT("/:id", h.Update)
		habits.DELETE("/:id", h.Delete)
		habits.POST("/:id/archive", h.Archive)
		habits.POST("/:id/complete", h.Complete)
	}
}

func (h *HabitHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req habitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.HabitInput{
		Name:        req.Name,
		Description: req.Description,
		Difficulty:  req.Difficulty,
		Frequency:   req.Frequency,
	}

	habit, err := h.svc.Create(c.Request.Context(), userID, input)
	if err != nil {
		if isHabitValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, habit)
}

func (h *HabitHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	list, err := h.svc.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *HabitHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	habit, err := h.svc.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req habitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.HabitInput{
		Name:        req.Name,
		Description: req.Description,
		Difficulty:  req.Difficulty,
		Frequency:   req.Frequency,
	}

	habit, err := h.svc.Update(c.Request.Context(), c.Param("id"), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrHabitNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
		case errors.Is(err, domain.ErrHabitArchived):
			c.JSON(http.StatusConflict, gin.H{"error": "habit is archived"})
		case isHabitValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Archive(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	err := h.svc.Archive(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Status(http.StatusOK)
}

func (h *HabitHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Complete runs the full eligibility check plus XP credit in one
// transaction. A rejected attempt is a normal business outcome, so it
// gets a structured 409 body rather than an error string.
func (h *HabitHandler) Complete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	result, err := h.completions.CompleteHabit(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		var inel *domain.IneligibleError
		switch {
		case errors.As(err, &inel):
			c.JSON(http.StatusConflict, gin.H{
				"allowed":           false,
				"reason":            inel.Reason,
				"retry_after_hours": int(inel.RetryAfter.Hours()),
			})
		case errors.Is(err, domain.ErrHabitNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
		case errors.Is(err, domain.ErrHabitArchived):
			c.JSON(http.StatusConflict, gin.H{"error": "habit is archived"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *HabitHandler) Recommendations(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	suggestions, err := h.recommend.RecommendHabits(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAIUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "recommendation service unavailable"})
		case errors.Is(err, services.ErrAIBadResponse):
			c.JSON(http.StatusBadGateway, gin.H{"error": "recommendation service returned an invalid response"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

func isHabitValidationError(err error) bool {
	return errors.Is(err, domain.ErrHabitNameEmpty) ||
		errors.Is(err, domain.ErrHabitNameTooLong) ||
		errors.Is(err, domain.ErrHabitDescTooLong) ||
		errors.Is(err, domain.ErrInvalidDifficulty) ||
		errors.Is(err, domain.ErrMalformedFrequency)
}
