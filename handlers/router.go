package handlers

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps is everything the router hands out to handlers. Database and Cache
// may be nil when the backend is disabled.
type Deps struct {
	Planner     Planner
	Credentials func() error
	Missing     func() []string
	Plans       PlanReader
	Database    Pinger
	Cache       Pinger
	Origins     []string
	Log         *zap.Logger
}

// NewRouter wires middleware and routes.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(d.Log), Recovery(d.Log))

	// Trusted proxies (the API sits behind a proxy in production)
	_ = r.SetTrustedProxies([]string{"0.0.0.0/0"})

	// CORS: local dev origins plus FRONTEND_URL
	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.Origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", requestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	itinerary := NewItineraryHandler(d.Planner, d.Credentials, d.Log)
	pdf := NewPDFHandler(d.Log)
	plans := NewPlansHandler(d.Plans, d.Log)
	health := NewHealthHandler(d.Missing, d.Database, d.Cache)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", health.Get)
		api.POST("/itinerary", itinerary.Create)
		api.POST("/itinerary/pdf", pdf.Render)
		api.GET("/plans/:id", plans.Get)
		api.GET("/plans/:id/pdf", plans.PDF)
	}

	return r
}

// AllowedOrigins returns the local dev origins plus extra, a comma-separated list.
func AllowedOrigins(extra string) []string {
	origins := []string{"http://localhost:5173", "http://localhost:3000"}
	for _, u := range strings.Split(extra, ",") {
		u = strings.TrimSpace(u)
		if u != "" {
			origins = append(origins, u)
		}
	}
	return origins
}
