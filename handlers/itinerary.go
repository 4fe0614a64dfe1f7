package handlers

import (
	"context"
	"net/http"
	"tripplanner/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgMissingConfig    = "Missing API configuration."
	msgGenerationFailed = "An error occurred while generating the itinerary."
)

// Planner turns a validated request into a full response.
type Planner interface {
	Plan(ctx context.Context, req services.ItineraryRequest) (*services.ItineraryResponse, error)
}

type ItineraryHandler struct {
	planner Planner
	// credentials reports missing upstream keys; checked on every request
	credentials func() error
	log         *zap.Logger
}

func NewItineraryHandler(planner Planner, credentials func() error, log *zap.Logger) *ItineraryHandler {
	return &ItineraryHandler{planner: planner, credentials: credentials, log: log}
}

// Create handles POST /api/itinerary.
func (h *ItineraryHandler) Create(c *gin.Context) {
	log := logFor(c, h.log)

	if err := h.credentials(); err != nil {
		log.Error("itinerary request rejected", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgMissingConfig})
		return
	}

	var req services.ItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.planner.Plan(c.Request.Context(), req)
	if err != nil {
		log.Error("itinerary generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgGenerationFailed})
		return
	}

	c.JSON(http.StatusOK, resp)
}
