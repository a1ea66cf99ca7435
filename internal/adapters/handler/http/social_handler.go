package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/habitquest/habitquest-engine/internal/adapters/handler/http/middleware"
	"github.com/habitquest/habitquest-engine/internal/core/domain"
	"github.com/habitquest/habitquest-engine/internal/core/services"
)

type SocialHandler struct {
	svc *services.SocialService
}

func NewSocialHandler(svc *services.SocialService) *SocialHandler {
	return &SocialHandler{
		svc: svc,
	}
}

type searchUserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	XP    int    `json:"xp"`
	Level int    `json:"level"`
}

func (h *SocialHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/users/search", h.Search)
	router.POST("/users/:id/follow", h.Follow)
	router.DELETE("/users/:id/follow", h.Unfollow)
}

func (h *SocialHandler) Search(c *gin.Context) {
	users, err := h.svc.SearchUsers(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	results := make([]searchUserResponse, 0, len(users))
	for _, u := range users {
		results = append(results, searchUserResponse{
			ID:    u.ID,
			Email: u.Email,
			Name:  u.Name,
			XP:    u.XP,
			Level: u.Level,
		})
	}

	c.JSON(http.StatusOK, gin.H{"users": results})
}

func (h *SocialHandler) Follow(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	err := h.svc.Follow(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSelfFollow):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot follow yourself"})
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, domain.ErrAlreadyFollowing):
			c.JSON(http.StatusConflict, gin.H{"error": "already following this user"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.Status(http.StatusCreated)
}

func (h *SocialHandler) Unfollow(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	err := h.svc.Unfollow(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFollowing) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not following this user"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}
