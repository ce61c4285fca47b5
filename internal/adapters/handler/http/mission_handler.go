package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/grovelab/grove-engine/internal/adapters/handler/http/middleware"
	"github.com/grovelab/grove-engine/internal/core/domain"
	"github.com/grovelab/grove-engine/internal/core/services"
)

type MissionHandler struct {
	svc *services.MissionService
}

func NewMissionHandler(svc *services.MissionService) *MissionHandler {
	return &MissionHandler{
		svc: svc,
	}
}

func (h *MissionHandler) RegisterRoutes(router *gin.RouterGroup) {
	missions := router.Group("/missions")
	{
		missions.GET("", h.List)
		missions.GET("/countdown", h.Countdown)
		missions.POST("/reset", h.Reset)
		missions.POST("/:id/claim", h.Claim)
	}
}

func (h *MissionHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	missions, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, missions)
}

// Countdown reports the seconds left until today's batch rolls over.
func (h *MissionHandler) Countdown(c *gin.Context) {
	remaining := h.svc.NextRollover()

	c.JSON(http.StatusOK, gin.H{
		"seconds_remaining": int(remaining.Seconds()),
	})
}

func (h *MissionHandler) Reset(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	if err := h.svc.Reset(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	missions, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, missions)
}

func (h *MissionHandler) Claim(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	id := c.Param("id")

	result, err := h.svc.Claim(c.Request.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "mission not found"})
		case errors.Is(err, domain.ErrMissionNotCompleted):
			c.JSON(http.StatusBadRequest, gin.H{"error": "mission is not completed yet"})
		case errors.Is(err, domain.ErrMissionClaimed):
			c.JSON(http.StatusConflict, gin.H{"error": "reward already claimed"})
		case errors.Is(err, domain.ErrMissionExpired):
			c.JSON(http.StatusGone, gin.H{"error": "mission belongs to a previous day"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mission":  result.Mission,
		"diamonds": result.Diamonds,
	})
}
