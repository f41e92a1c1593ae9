package raster_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanair/jordanair/internal/earthengine"
	"github.com/jordanair/jordanair/internal/pollutant"
	"github.com/jordanair/jordanair/internal/raster"
)

// mockExporter records CreateMap calls and returns canned layers.
type mockExporter struct {
	calls []*earthengine.VisualizationOptions
	err   error
}

func (m *mockExporter) CreateMap(_ context.Context, _ *earthengine.Expression, vis *earthengine.VisualizationOptions) (*earthengine.MapLayer, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.calls = append(m.calls, vis)
	name := "projects/test/maps/" + string(rune('a'+len(m.calls)))
	return &earthengine.MapLayer{
		Name:    name,
		TileURL: "https://example.test/" + name + "/tiles/{z}/{x}/{y}",
	}, nil
}

func testQuery(t *testing.T) raster.Query {
	t.Helper()
	profile, err := pollutant.Lookup(pollutant.SulfurDioxide)
	require.NoError(t, err)
	window, err := raster.NewTimeWindow(2024, 3)
	require.NoError(t, err)
	return raster.NewQuery(profile, window)
}

func TestService_MapLayers(t *testing.T) {
	exporter := &mockExporter{}
	service := raster.NewService(raster.ServiceConfig{
		Maps:   exporter,
		Logger: zerolog.Nop(),
	})

	layers, err := service.MapLayers(context.Background(), testQuery(t))
	require.NoError(t, err)
	require.Len(t, exporter.calls, 2)

	// Boundary layer is exported without visualization options.
	assert.Nil(t, exporter.calls[0])

	// Raster layer carries the profile's display range and palette.
	vis := exporter.calls[1]
	require.NotNil(t, vis)
	require.Len(t, vis.Ranges, 1)
	assert.Equal(t, 0.0, vis.Ranges[0].Min)
	assert.Equal(t, 0.0005, vis.Ranges[0].Max)
	assert.Equal(t, []string{"blue", "green", "yellow", "orange", "red"}, vis.PaletteColors)

	assert.Equal(t, "Jordan Boundary", layers.Boundary.Name)
	assert.Equal(t, pollutant.SulfurDioxide, layers.Raster.Name)
	assert.Contains(t, layers.Raster.TileURL, "/tiles/{z}/{x}/{y}")

	assert.Equal(t, 0.0005, layers.Legend.Max)
	assert.Equal(t, "mol/m²", layers.Legend.Unit)
	assert.Len(t, layers.Legend.Palette, 5)
}

func TestService_MapLayers_ExportError(t *testing.T) {
	exporter := &mockExporter{err: errors.New("boom")}
	service := raster.NewService(raster.ServiceConfig{
		Maps:   exporter,
		Logger: zerolog.Nop(),
	})

	_, err := service.MapLayers(context.Background(), testQuery(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boundary layer")
}
