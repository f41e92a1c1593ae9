// Package main provides the entrypoint for the Jordan air quality API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/jordanair/jordanair/internal/api"
	"github.com/jordanair/jordanair/internal/api/middleware"
	"github.com/jordanair/jordanair/internal/earthengine"
	"github.com/jordanair/jordanair/internal/provider/resilience"
	"github.com/jordanair/jordanair/internal/raster"
	"github.com/jordanair/jordanair/internal/report"
	"github.com/jordanair/jordanair/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "jordanair-api"

	// Load .env if present; the environment wins over the file.
	_ = godotenv.Load()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting Jordan air quality API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	providerMetrics, err := middleware.NewProviderMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize provider metrics")
	}

	// Load the Earth Engine credential. A missing or unparseable
	// credential is not fatal: the service starts unauthenticated, the
	// page shows a warning, and every data endpoint answers 503.
	var (
		authenticated bool
		upstream      *resilience.Client
		rasterService *raster.Service
		reportService *report.Service
	)

	creds, err := earthengine.LoadCredentials()
	switch {
	case errors.Is(err, earthengine.ErrNoCredential):
		log.Warn().Msg("no service account credential configured - data endpoints disabled")
	case errors.Is(err, earthengine.ErrInvalidCredential):
		log.Warn().Err(err).Msg("service account credential rejected - data endpoints disabled")
	case err != nil:
		log.Fatal().Err(err).Msg("failed to load credential")
	default:
		upstream = resilience.NewClient(resilience.ClientConfig{
			Name: earthengine.ProviderName,
		})

		client, err := earthengine.NewClient(earthengine.ClientConfig{
			Credentials: creds,
			Project:     os.Getenv("GEE_PROJECT"),
			HTTPClient:  upstream,
			Metrics:     providerMetrics,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Earth Engine client")
		}

		rasterService = raster.NewService(raster.ServiceConfig{
			Maps:   client,
			Logger: log,
		})
		reportService = report.NewService(report.ServiceConfig{
			Reducer: client,
			Logger:  log,
		})

		authenticated = true
		log.Info().
			Str("project", client.Project()).
			Msg("Earth Engine client initialized")
	}

	// Create router with configuration
	routerCfg := api.RouterConfig{
		Version:       Version,
		BuildTime:     BuildTime,
		Logger:        log,
		ServiceName:   serviceName,
		Metrics:       metrics,
		Authenticated: authenticated,
		RasterService: rasterService,
		ReportService: reportService,
	}
	if upstream != nil {
		routerCfg.Upstream = upstream
	}
	router := api.NewRouter(routerCfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
