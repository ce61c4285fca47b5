package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/grovelab/grove-engine/internal/adapters/handler/http/middleware"
	"github.com/grovelab/grove-engine/internal/core/domain"
	"github.com/grovelab/grove-engine/internal/core/services"
)

type StatsHandler struct {
	svc *services.StatsService
}

func NewStatsHandler(svc *services.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/stats", h.GetSummary)
}

func (h *StatsHandler) GetSummary(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	frame, err := domain.ParseTimeframe(c.Query("frame"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTimeframe) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid frame, expected day, week or month"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	summary, err := h.svc.Summary(c.Request.Context(), userID, frame)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve statistics"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
