package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanair/jordanair/internal/api/handler"
	"github.com/jordanair/jordanair/internal/api/models"
	"github.com/jordanair/jordanair/internal/earthengine"
	"github.com/jordanair/jordanair/internal/provider/resilience"
	"github.com/jordanair/jordanair/internal/raster"
)

// failingExporter fails every export with a fixed error.
type failingExporter struct {
	err error
}

func (f failingExporter) CreateMap(context.Context, *earthengine.Expression, *earthengine.VisualizationOptions) (*earthengine.MapLayer, error) {
	return nil, f.err
}

func failingMapHandler(err error) *handler.MapHandler {
	svc := raster.NewService(raster.ServiceConfig{
		Maps:   failingExporter{err: err},
		Logger: zerolog.New(io.Discard),
	})
	return handler.NewMapHandler(svc)
}

func TestMapHandler_DeadlineMapsToGatewayTimeout(t *testing.T) {
	h := failingMapHandler(fmt.Errorf("export boundary: %w", context.DeadlineExceeded))

	req := httptest.NewRequest(http.MethodGet,
		"/v1/map/layers?pollutant=Sulfur+Dioxide+(SO2)&year=2023&month=2", http.NoBody)
	w := httptest.NewRecorder()

	h.GetLayers(w, req)

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeUpstreamTimeout, problem.Type)
}

func TestMapHandler_AuthRejectionMapsToUnavailable(t *testing.T) {
	h := failingMapHandler(fmt.Errorf("create map: %w", earthengine.ErrAuthRejected))

	req := httptest.NewRequest(http.MethodGet,
		"/v1/map/layers?pollutant=Sulfur+Dioxide+(SO2)&year=2023&month=2", http.NoBody)
	w := httptest.NewRecorder()

	h.GetLayers(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMapHandler_OpenCircuitMapsToUnavailable(t *testing.T) {
	h := failingMapHandler(fmt.Errorf("create map: %w", resilience.ErrCircuitOpen))

	req := httptest.NewRequest(http.MethodGet,
		"/v1/map/layers?pollutant=Sulfur+Dioxide+(SO2)&year=2023&month=2", http.NoBody)
	w := httptest.NewRecorder()

	h.GetLayers(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMapHandler_UnknownErrorMapsToInternal(t *testing.T) {
	h := failingMapHandler(fmt.Errorf("create map: connection reset"))

	req := httptest.NewRequest(http.MethodGet,
		"/v1/map/layers?pollutant=Sulfur+Dioxide+(SO2)&year=2023&month=2", http.NoBody)
	w := httptest.NewRecorder()

	h.GetLayers(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMapHandler_NonNumericParams(t *testing.T) {
	h := failingMapHandler(nil)

	tests := []struct {
		name  string
		query string
		field string
	}{
		{"non-numeric year", "pollutant=Carbon+Monoxide+(CO)&year=twenty&month=6", "year"},
		{"non-numeric month", "pollutant=Carbon+Monoxide+(CO)&year=2024&month=June", "month"},
		{"missing year", "pollutant=Carbon+Monoxide+(CO)&month=6", "year"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/map/layers?"+tt.query, http.NoBody)
			w := httptest.NewRecorder()

			h.GetLayers(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var problem models.Problem
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
			require.Len(t, problem.Errors, 1)
			assert.Equal(t, tt.field, problem.Errors[0].Field)
		})
	}
}

func TestMapHandler_OutOfRangeParams(t *testing.T) {
	h := failingMapHandler(nil)

	tests := []struct {
		name  string
		query string
		field string
	}{
		{"year before first product", "pollutant=Carbon+Monoxide+(CO)&year=2018&month=6", "year"},
		{"month thirteen", "pollutant=Carbon+Monoxide+(CO)&year=2024&month=13", "month"},
		{"month zero", "pollutant=Carbon+Monoxide+(CO)&year=2024&month=0", "month"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/map/layers?"+tt.query, http.NoBody)
			w := httptest.NewRecorder()

			h.GetLayers(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var problem models.Problem
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
			require.Len(t, problem.Errors, 1)
			assert.Equal(t, tt.field, problem.Errors[0].Field)
		})
	}
}

func TestReportHandler_NilService(t *testing.T) {
	h := handler.NewReportHandler(nil)

	req := httptest.NewRequest(http.MethodGet,
		"/v1/reports:export?pollutant=Carbon+Monoxide+(CO)&year=2024&month=6", http.NoBody)
	w := httptest.NewRecorder()

	h.ExportReport(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
