// Package main is the entry point for the skysweep offer search service.
//
//	@title						Skysweep Offer Search API
//	@version					1.0.0
//	@description				A flight offer aggregation service that resolves free-text places to airports, sweeps the Amadeus offer source across nearby airports and flexible dates, and returns normalized offers ranked under a declarative travel policy.
//
//	@contact.name				API Support
//	@contact.url				https://github.com/skysweep/skysweep/issues
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/api/v1
//
//	@schemes					http https
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	echoSwagger "github.com/swaggo/echo-swagger"

	// Import generated docs for swagger
	_ "github.com/skysweep/skysweep/docs"

	// Application layers
	offerhttp "github.com/skysweep/skysweep/internal/adapter/http"
	"github.com/skysweep/skysweep/internal/adapter/http/middleware"
	"github.com/skysweep/skysweep/internal/adapter/provider/amadeus"
	"github.com/skysweep/skysweep/internal/cache"
	"github.com/skysweep/skysweep/internal/config"
	"github.com/skysweep/skysweep/internal/domain"
	"github.com/skysweep/skysweep/internal/policy"
	"github.com/skysweep/skysweep/internal/ratelimit"
	"github.com/skysweep/skysweep/internal/resolver"
	"github.com/skysweep/skysweep/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	log.Info().
		Str("env", cfg.App.Env).
		Int("port", cfg.Server.Port).
		Msg("Configuration loaded")

	store := setupCache(cfg)
	defer store.Close()

	travelPolicy, err := policy.LoadFile(cfg.Policy.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Policy.Path).Msg("Failed to load travel policy")
	}

	// Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	middleware.Setup(e, log.Logger)

	setupRoutes(e, cfg, store, travelPolicy)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		log.Info().Str("address", addr).Msg("Starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	gracefulShutdown(e)
}

// setupLogger configures the global zerolog logger based on config.
func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if cfg.Logging.Format != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	switch cfg.Logging.Level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// setupCache connects to Redis when configured, otherwise falls back to the
// no-op store so the service still runs without a cache backend.
func setupCache(cfg *config.Config) cache.Store {
	if !cfg.CacheEnabled() {
		log.Info().Msg("Cache disabled, running without Redis")
		return cache.NewNoOp()
	}

	store, err := cache.NewRedis(cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, running without cache")
		return cache.NewNoOp()
	}

	log.Info().Str("addr", cfg.Redis.Addr).Msg("Cache connected")
	return store
}

// setupRoutes wires the application layers and registers the HTTP routes.
func setupRoutes(e *echo.Echo, cfg *config.Config, store cache.Store, travelPolicy domain.Policy) {
	limiter := ratelimit.NewSourceLimiter(ratelimit.Config{
		RequestsPerSecond: cfg.Amadeus.RequestsPerSecond,
		BurstSize:         cfg.Amadeus.BurstSize,
	})

	source := amadeus.New(amadeus.Config{
		BaseURL:    cfg.Amadeus.BaseURL,
		APIKey:     cfg.Amadeus.APIKey,
		APISecret:  cfg.Amadeus.APISecret,
		Currency:   cfg.Amadeus.Currency,
		MaxResults: cfg.Amadeus.MaxResults,
		Timeout:    cfg.Amadeus.Timeout,
	}, amadeus.WithLimiter(limiter))

	gazetteer := resolver.New(resolver.WithCache(store), resolver.WithFallback(source))

	searchUseCase := usecase.NewSearchUseCase(source, gazetteer, store, travelPolicy, &usecase.Config{
		GlobalTimeout: cfg.Sweep.GlobalTimeout,
		LegTimeout:    cfg.Sweep.LegTimeout,
		Concurrency:   cfg.Sweep.Concurrency,
	}, log.Logger)

	handler := offerhttp.NewOfferHandler(searchUseCase, gazetteer, gazetteer, travelPolicy)
	offerhttp.RegisterRoutes(e, handler)

	// Swagger documentation endpoint
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}

// gracefulShutdown handles graceful server shutdown on interrupt signals.
func gracefulShutdown(e *echo.Echo) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	log.Info().Msg("Server stopped")
}
