package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanair/jordanair/internal/api"
	"github.com/jordanair/jordanair/internal/api/models"
	"github.com/jordanair/jordanair/internal/earthengine"
	"github.com/jordanair/jordanair/internal/raster"
	"github.com/jordanair/jordanair/internal/report"
)

// stubExporter serves fixed tile URLs for any expression.
type stubExporter struct{}

func (stubExporter) CreateMap(_ context.Context, _ *earthengine.Expression, vis *earthengine.VisualizationOptions) (*earthengine.MapLayer, error) {
	name := "projects/test/maps/boundary"
	if vis != nil {
		name = "projects/test/maps/raster"
	}
	return &earthengine.MapLayer{
		Name:    name,
		TileURL: "https://earthengine.googleapis.com/v1/" + name + "/tiles/{z}/{x}/{y}",
	}, nil
}

// stubReducer answers every reduction with the same value for every band.
type stubReducer struct{}

func (stubReducer) ComputeValue(_ context.Context, _ *earthengine.Expression) (map[string]*float64, error) {
	v := 0.00015
	return map[string]*float64{
		"tropospheric_NO2_column_number_density": &v,
		"SO2_column_number_density":              &v,
		"CO_column_number_density":               &v,
		"absorbing_aerosol_index":                &v,
	}, nil
}

func newTestRouter(authenticated bool) http.Handler {
	logger := zerolog.New(io.Discard)
	cfg := api.RouterConfig{
		Version:       "test",
		BuildTime:     "2024-01-01T00:00:00Z",
		Logger:        logger,
		Authenticated: authenticated,
	}
	if authenticated {
		cfg.RasterService = raster.NewService(raster.ServiceConfig{Maps: stubExporter{}, Logger: logger})
		cfg.ReportService = report.NewService(report.ServiceConfig{Reducer: stubReducer{}, Logger: logger})
	}
	return api.NewRouter(cfg)
}

func TestRouter_HealthCheck(t *testing.T) {
	router := newTestRouter(true)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var health models.Health
	err := json.Unmarshal(w.Body.Bytes(), &health)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.NotEmpty(t, health.Time)
}

func TestRouter_ReadinessCheck(t *testing.T) {
	router := newTestRouter(false)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var health models.Health
	err := json.Unmarshal(w.Body.Bytes(), &health)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_SystemStatus_Unauthenticated(t *testing.T) {
	router := newTestRouter(false)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var status models.SystemStatus
	err := json.Unmarshal(w.Body.Bytes(), &status)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusDegraded, status.Status)
	require.Len(t, status.Providers, 1)
	assert.Equal(t, "earthengine", status.Providers[0].Provider)
	require.NotNil(t, status.Providers[0].Message)
}

func TestRouter_Dashboard(t *testing.T) {
	router := newTestRouter(true)

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "unpkg.com")
	assert.Contains(t, w.Body.String(), "Jordan Air Quality")
	assert.Contains(t, w.Body.String(), `id="map"`)
	assert.NotContains(t, w.Body.String(), "Service account not configured")
}

func TestRouter_Dashboard_Unauthenticated(t *testing.T) {
	router := newTestRouter(false)

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Service account not configured")
	assert.NotContains(t, w.Body.String(), `id="map"`)
}

func TestRouter_ListPollutants(t *testing.T) {
	router := newTestRouter(true)

	req := httptest.NewRequest(http.MethodGet, "/v1/metadata/pollutants", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var meta models.Metadata
	err := json.Unmarshal(w.Body.Bytes(), &meta)
	require.NoError(t, err)

	require.Len(t, meta.Pollutants, 4)
	assert.Equal(t, "Nitrogen Dioxide (NO2)", meta.Pollutants[0].Name)
	assert.Equal(t, "Nitrogen", meta.Pollutants[0].ShortName)
	assert.NotEmpty(t, meta.Pollutants[0].Insight)

	require.Len(t, meta.Cities, 5)
	assert.Equal(t, "Irbid", meta.Cities[0].Name)

	assert.Equal(t, 2019, meta.Years.Min)
	assert.GreaterOrEqual(t, meta.Years.Max, 2025)
	require.Len(t, meta.Months, 12)
	assert.Equal(t, "January", meta.Months[0])

	assert.InDelta(t, 31.2, meta.Center.Lat, 1e-9)
	assert.InDelta(t, 36.5, meta.Center.Lon, 1e-9)
	assert.Equal(t, 7, meta.Zoom)
}

func TestRouter_GetMapLayers(t *testing.T) {
	router := newTestRouter(true)

	req := httptest.NewRequest(http.MethodGet,
		"/v1/map/layers?pollutant=Nitrogen+Dioxide+(NO2)&year=2024&month=6", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var layers models.MapLayers
	err := json.Unmarshal(w.Body.Bytes(), &layers)
	require.NoError(t, err)

	assert.Equal(t, "Nitrogen Dioxide (NO2)", layers.Pollutant)
	assert.Equal(t, "2024-06", layers.Date)
	assert.Equal(t, "June", layers.MonthName)
	assert.Contains(t, layers.Boundary.TileURL, "/tiles/{z}/{x}/{y}")
	assert.Contains(t, layers.Raster.TileURL, "/tiles/{z}/{x}/{y}")
	assert.InDelta(t, 0.0002, layers.Legend.Max, 1e-12)
	assert.Len(t, layers.Legend.Palette, 7)
}

func TestRouter_GetMapLayers_InvalidQuery(t *testing.T) {
	router := newTestRouter(true)

	req := httptest.NewRequest(http.MethodGet,
		"/v1/map/layers?pollutant=Ozone&year=2024&month=6", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, problem.Status)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "pollutant", problem.Errors[0].Field)
}

func TestRouter_GetMapLayers_Unauthenticated(t *testing.T) {
	router := newTestRouter(false)

	req := httptest.NewRequest(http.MethodGet,
		"/v1/map/layers?pollutant=Nitrogen+Dioxide+(NO2)&year=2024&month=6", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_GenerateReport(t *testing.T) {
	router := newTestRouter(true)

	body, _ := json.Marshal(models.GenerateReportRequest{
		Pollutant: "Carbon Monoxide (CO)",
		Year:      2023,
		Month:     12,
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/reports:generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var rep models.Report
	err := json.Unmarshal(w.Body.Bytes(), &rep)
	require.NoError(t, err)

	assert.Equal(t, "Carbon Monoxide (CO)", rep.Pollutant)
	assert.Equal(t, "2023-12", rep.Date)
	assert.Equal(t, "Jordan_AirQuality_Carbon_2023_12.csv", rep.Filename)
	require.Len(t, rep.Rows, 5)
	assert.Equal(t, "Irbid", rep.Rows[0].City)
	assert.Equal(t, "Mafraq", rep.Rows[4].City)
	for _, row := range rep.Rows {
		require.NotNil(t, row.Value)
		assert.InDelta(t, 0.00015, *row.Value, 1e-12)
	}
}

func TestRouter_GenerateReport_InvalidBody(t *testing.T) {
	router := newTestRouter(true)

	req := httptest.NewRequest(http.MethodPost, "/v1/reports:generate", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_ExportReport(t *testing.T) {
	router := newTestRouter(true)

	req := httptest.NewRequest(http.MethodGet,
		"/v1/reports:export?pollutant=Aerosol+Index+(Dust/Smoke)&year=2022&month=3", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Jordan_AirQuality_Aerosol_2022_3.csv"`,
		w.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "City,Pollutant,Value,Unit,Date", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Irbid,"))
}

func TestRouter_SecurityHeaders(t *testing.T) {
	router := newTestRouter(true)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(true)

	req := httptest.NewRequest(http.MethodGet, "/v1/nope", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
