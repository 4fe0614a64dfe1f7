package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"tripplanner/config"
	"tripplanner/database"
	"tripplanner/handlers"
	"tripplanner/logger"
	"tripplanner/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if missing := cfg.MissingCredentials(); len(missing) > 0 {
		zlog.Warn("API keys not set; itinerary requests will fail until they are", zap.Strings("missing", missing))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize text generation
	gen, closeGen, err := newTextGenerator(ctx, cfg.Generation)
	if err != nil {
		zlog.Fatal("Failed to initialize text generation", zap.Error(err))
	}
	defer closeGen()
	writer := services.NewItineraryClient(gen, cfg.Generation.Timeout, zlog.Named("itinerary"))

	// Initialize flight search, with the Redis cache when configured
	flights := services.NewFlightClient(cfg.Flights, &http.Client{Timeout: cfg.Flights.Timeout}, zlog.Named("flights"))
	deps := handlers.Deps{
		Credentials: cfg.Validate,
		Missing:     cfg.MissingCredentials,
		Origins:     handlers.AllowedOrigins(cfg.FrontendURL),
		Log:         zlog,
	}
	if cfg.Redis.Enabled() {
		cache := services.NewRedisLegCache(cfg.Redis)
		defer func() { _ = cache.Close() }()
		if err := cache.Ping(ctx); err != nil {
			zlog.Warn("Flight cache unreachable; lookups will bypass it until it recovers", zap.Error(err))
		}
		flights.WithCache(cache)
		deps.Cache = cache
	}

	planner := services.NewPlanner(writer, flights, zlog.Named("planner"))

	// Initialize the plan archive when configured
	if cfg.Database.Enabled() {
		db, err := database.Open(ctx, cfg.Database.URL)
		if err != nil {
			zlog.Fatal("Failed to open database", zap.Error(err))
		}
		defer db.Close()

		store := database.NewStore(db)
		if err := store.Migrate(ctx); err != nil {
			zlog.Fatal("Failed to run migrations", zap.Error(err))
		}
		planner.WithArchive(store)
		deps.Plans = store
		deps.Database = store
		zlog.Info("Plan archive enabled")
	}
	deps.Planner = planner

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		// generation plus one flight search per leg can take a while
		WriteTimeout: 5 * time.Minute,
	}

	go func() {
		zlog.Info("Trip planner backend starting", zap.String("port", cfg.Port), zap.String("llm_provider", cfg.Generation.Provider))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func newTextGenerator(ctx context.Context, cfg config.GenerationConfig) (services.TextGenerator, func(), error) {
	if cfg.APIKey() == "" {
		return unconfiguredGenerator{}, func() {}, nil
	}

	switch cfg.Provider {
	case config.ProviderHuggingFace:
		hf := services.NewHuggingFaceClient(cfg.HuggingFaceKey, cfg.HFModel, &http.Client{Timeout: cfg.Timeout})
		return hf, func() {}, nil
	default:
		gc, err := services.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		return gc, func() { _ = gc.Close() }, nil
	}
}

// unconfiguredGenerator stands in while the provider key is unset. Requests
// are rejected before reaching it.
type unconfiguredGenerator struct{}

func (unconfiguredGenerator) GenerateText(context.Context, string) (string, error) {
	return "", config.ErrMissingCredentials
}
