// Package api provides the HTTP API for the Jordan air quality dashboard.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/jordanair/jordanair/internal/api/handler"
	"github.com/jordanair/jordanair/internal/api/middleware"
	"github.com/jordanair/jordanair/internal/raster"
	"github.com/jordanair/jordanair/internal/report"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version       string
	BuildTime     string
	Logger        zerolog.Logger
	ServiceName   string
	Metrics       *middleware.Metrics
	Authenticated bool
	Upstream      handler.UpstreamHealth
	RasterService *raster.Service
	ReportService *report.Service
}

// NewRouter creates a new chi router with all routes configured. The
// raster and report services may be nil when no credential is
// configured; their endpoints then answer 503.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "jordanair-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Authenticated, cfg.Upstream)
	metadataHandler := handler.NewMetadataHandler()
	mapHandler := handler.NewMapHandler(cfg.RasterService)
	reportHandler := handler.NewReportHandler(cfg.ReportService)
	pageHandler := handler.NewPageHandler(cfg.Authenticated)

	// Rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// Dashboard page (HTML, sets its own content type and CSP)
	r.Get("/", pageHandler.Dashboard)

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Metadata endpoints - standard rate limiting
		r.Route("/metadata", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/pollutants", metadataHandler.ListPollutants)
		})

		// Map and report endpoints fan out to the remote data service -
		// expensive rate limiting
		r.Group(func(r chi.Router) {
			r.Use(expensiveRateLimit)
			r.Get("/map/layers", mapHandler.GetLayers)
			r.Post("/reports:generate", reportHandler.GenerateReport)
			r.Get("/reports:export", reportHandler.ExportReport)
		})
	})

	return r
}
