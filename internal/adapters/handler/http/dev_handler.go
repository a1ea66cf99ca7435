package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/habitquest/habitquest-engine/internal/adapters/handler/http/middleware"
	"github.com/habitquest/habitquest-engine/internal/core/domain"
	"github.com/habitquest/habitquest-engine/internal/core/services"
)

// DevHandler exposes testing shortcuts for local environments. The router
// only mounts it when dev mode is explicitly enabled.
type DevHandler struct {
	svc *services.ProfileService
}

func NewDevHandler(svc *services.ProfileService) *DevHandler {
	return &DevHandler{
		svc: svc,
	}
}

type generateHistoryRequest struct {
	Days int `json:"days"`
}

func (h *DevHandler) RegisterRoutes(router *gin.RouterGroup) {
	dev := router.Group("/dev")
	{
		dev.POST("/boost-xp", h.BoostXP)
		dev.POST("/reset-xp", h.ResetProgress)
		dev.POST("/generate-history", h.GenerateHistory)
	}
}

func (h *DevHandler) BoostXP(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	newXP, level, err := h.svc.BoostXP(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"xp":    newXP,
		"level": level,
	})
}

func (h *DevHandler) ResetProgress(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	if err := h.svc.ResetProgress(c.Request.Context(), userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *DevHandler) GenerateHistory(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req generateHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.svc.GenerateHistory(c.Request.Context(), userID, req.Days)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusConflict, gin.H{"error": "no active habits to generate history for"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"completions_created": created})
}
