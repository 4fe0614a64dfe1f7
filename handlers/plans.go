package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"
	"tripplanner/database"
	"tripplanner/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PlanReader loads archived plans.
type PlanReader interface {
	GetPlan(ctx context.Context, id string) (*database.Plan, error)
}

type planResponse struct {
	services.ItineraryResponse
	Entries   []services.Entry `json:"entries"`
	CreatedAt time.Time        `json:"createdAt"`
}

// PlansHandler serves the plan archive. A nil reader means the archive is
// disabled and every lookup is a 404.
type PlansHandler struct {
	plans PlanReader
	log   *zap.Logger
}

func NewPlansHandler(plans PlanReader, log *zap.Logger) *PlansHandler {
	return &PlansHandler{plans: plans, log: log}
}

// Get handles GET /api/plans/:id.
func (h *PlansHandler) Get(c *gin.Context) {
	plan, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, planResponse{
		ItineraryResponse: plan.Response(),
		Entries:           plan.Entries,
		CreatedAt:         plan.CreatedAt,
	})
}

// PDF handles GET /api/plans/:id/pdf.
func (h *PlansHandler) PDF(c *gin.Context) {
	plan, ok := h.load(c)
	if !ok {
		return
	}
	writePDF(c, logFor(c, h.log), services.PlanDocument{
		PlanID:      plan.ID,
		Entries:     plan.Entries,
		Itinerary:   plan.Itinerary,
		FlightData:  plan.FlightData,
		GeneratedAt: plan.CreatedAt,
	})
}

func (h *PlansHandler) load(c *gin.Context) (*database.Plan, bool) {
	if h.plans == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan archive is not enabled"})
		return nil, false
	}

	id := c.Param("id")
	plan, err := h.plans.GetPlan(c.Request.Context(), id)
	switch {
	case errors.Is(err, database.ErrPlanNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		return nil, false
	case err != nil:
		logFor(c, h.log).Error("plan lookup failed", zap.String("plan_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load plan"})
		return nil, false
	}
	return plan, true
}
