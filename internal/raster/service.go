package raster

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jordanair/jordanair/internal/earthengine"
)

// boundaryColor is the outline color of the national boundary layer.
const boundaryColor = "white"

// MapExporter exports image expressions as tile layers.
type MapExporter interface {
	CreateMap(ctx context.Context, expr *earthengine.Expression, vis *earthengine.VisualizationOptions) (*earthengine.MapLayer, error)
}

// ServiceConfig holds configuration for the raster service.
type ServiceConfig struct {
	// Maps is the map export provider.
	Maps MapExporter

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service renders queries into map layers.
type Service struct {
	maps   MapExporter
	logger zerolog.Logger
}

// NewService creates a new raster service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		maps:   cfg.Maps,
		logger: cfg.Logger,
	}
}

// Layer is a renderable tile layer.
type Layer struct {
	Name    string
	TileURL string
}

// Legend maps palette position to physical values for the colorbar.
type Legend struct {
	Min     float64
	Max     float64
	Palette []string
	Unit    string
}

// Layers is everything the map widget needs for one query: the boundary
// outline, the colorized raster, and the legend.
type Layers struct {
	Boundary Layer
	Raster   Layer
	Legend   Legend
}

// MapLayers exports the boundary and the query's raster as tile layers.
// The raster is colorized by linear interpolation into the profile
// palette, clamped to the profile display range.
func (s *Service) MapLayers(ctx context.Context, q Query) (*Layers, error) {
	boundary, err := s.maps.CreateMap(ctx, BoundaryExpression(boundaryColor), nil)
	if err != nil {
		return nil, fmt.Errorf("export boundary layer: %w", err)
	}

	raster, err := s.maps.CreateMap(ctx, q.CompositeExpression(), &earthengine.VisualizationOptions{
		Ranges:        []earthengine.Range{{Min: q.Profile.Min, Max: q.Profile.Max}},
		PaletteColors: q.Profile.Palette,
	})
	if err != nil {
		return nil, fmt.Errorf("export %s layer: %w", q.Profile.ShortName(), err)
	}

	s.logger.Debug().
		Str("pollutant", q.Profile.Name).
		Str("window", q.Window.Label()).
		Str("map", raster.Name).
		Msg("exported map layers")

	return &Layers{
		Boundary: Layer{Name: "Jordan Boundary", TileURL: boundary.TileURL},
		Raster:   Layer{Name: q.Profile.Name, TileURL: raster.TileURL},
		Legend: Legend{
			Min:     q.Profile.Min,
			Max:     q.Profile.Max,
			Palette: q.Profile.Palette,
			Unit:    q.Profile.Unit,
		},
	}, nil
}
