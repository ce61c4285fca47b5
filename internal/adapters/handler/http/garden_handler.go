package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/grovelab/grove-engine/internal/adapters/handler/http/middleware"
	"github.com/grovelab/grove-engine/internal/core/domain"
	"github.com/grovelab/grove-engine/internal/core/services"
)

type GardenHandler struct {
	svc *services.GardenService
}

func NewGardenHandler(svc *services.GardenService) *GardenHandler {
	return &GardenHandler{
		svc: svc,
	}
}

type plantRequest struct {
	Position   int    `json:"position"`
	FlowerType string `json:"flower_type" binding:"required"`
}

func (h *GardenHandler) RegisterRoutes(router *gin.RouterGroup) {
	garden := router.Group("/garden")
	{
		garden.GET("", h.View)
		garden.GET("/catalog", h.Catalog)
		garden.POST("/plant", h.Plant)
	}
}

func (h *GardenHandler) View(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	view, err := h.svc.View(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *GardenHandler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, domain.FlowerCatalog())
}

func (h *GardenHandler) Plant(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req plantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.Plant(c.Request.Context(), userID, req.Position, domain.FlowerType(req.FlowerType))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownFlowerType):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown flower type"})
		case errors.Is(err, domain.ErrInvalidSlot):
			c.JSON(http.StatusBadRequest, gin.H{"error": "slot is outside the garden grid"})
		case errors.Is(err, domain.ErrSlotOccupied):
			c.JSON(http.StatusConflict, gin.H{"error": "slot already holds a flower"})
		case errors.Is(err, domain.ErrInsufficientFunds):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "not enough diamonds"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"flower":   result.Flower,
		"diamonds": result.Diamonds,
	})
}
