// Package handler provides HTTP handlers for the Jordan air quality API.
package handler

import (
	"net/http"
	"time"

	"github.com/jordanair/jordanair/internal/api/models"
	"github.com/jordanair/jordanair/internal/api/response"
	"github.com/jordanair/jordanair/internal/earthengine"
	"github.com/jordanair/jordanair/internal/provider/resilience"
)

// UpstreamHealth reports the health of the Earth Engine transport.
type UpstreamHealth interface {
	Health() resilience.Health
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version       string
	buildTime     string
	authenticated bool
	upstream      UpstreamHealth
}

// NewOpsHandler creates a new OpsHandler. upstream may be nil when the
// service starts without a credential.
func NewOpsHandler(version, buildTime string, authenticated bool, upstream UpstreamHealth) *OpsHandler {
	return &OpsHandler{
		version:       version,
		buildTime:     buildTime,
		authenticated: authenticated,
		upstream:      upstream,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. The
// service is ready even without a remote credential: the page and the
// metadata endpoints still serve, only the data endpoints degrade.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - provider status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	provider := models.ProviderStatus{
		Provider: earthengine.ProviderName,
		Status:   models.HealthStatusOK,
	}

	switch {
	case !h.authenticated:
		msg := "no service account credential configured"
		provider.Status = models.HealthStatusDegraded
		provider.Message = &msg
	case h.upstream != nil && !h.upstream.Health().Healthy():
		msg := "circuit breaker " + h.upstream.Health().CircuitState.String()
		provider.Status = models.HealthStatusDegraded
		provider.Message = &msg
	}

	status := models.SystemStatus{
		Status:    provider.Status,
		Time:      models.Timestamp(time.Now()),
		Providers: []models.ProviderStatus{provider},
	}
	response.JSON(w, r, http.StatusOK, status)
}
