package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is a backend that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports configuration and backend status. It always
// answers 200 so a missing key does not take the instance out of rotation.
type HealthHandler struct {
	missing  func() []string
	database Pinger
	cache    Pinger
}

func NewHealthHandler(missing func() []string, database, cache Pinger) *HealthHandler {
	return &HealthHandler{missing: missing, database: database, cache: cache}
}

func (h *HealthHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	configStatus := "ok"
	missing := h.missing()
	if len(missing) > 0 {
		configStatus = "missing credentials"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "Trip Planner API",
		"config":   configStatus,
		"missing":  missing,
		"database": pingStatus(ctx, h.database),
		"cache":    pingStatus(ctx, h.cache),
	})
}

func pingStatus(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
