package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jordanair/jordanair/internal/api/models"
	"github.com/jordanair/jordanair/internal/api/response"
	"github.com/jordanair/jordanair/internal/raster"
)

// mapTimeout bounds a full layer export (boundary + raster).
const mapTimeout = 60 * time.Second

// MapHandler handles map layer endpoints.
type MapHandler struct {
	maps *raster.Service
}

// NewMapHandler creates a new MapHandler. maps may be nil when the
// service starts without a credential.
func NewMapHandler(maps *raster.Service) *MapHandler {
	return &MapHandler{maps: maps}
}

// GetLayers handles GET /v1/map/layers - export the boundary and
// raster tile layers for a pollutant/year/month query.
func (h *MapHandler) GetLayers(w http.ResponseWriter, r *http.Request) {
	if h.maps == nil {
		response.ServiceUnavailable(w, r, "no service account credential configured")
		return
	}

	q, fieldErrors := queryFromParams(r)
	if fieldErrors != nil {
		response.BadRequest(w, r, "invalid map query", fieldErrors)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), mapTimeout)
	defer cancel()

	layers, err := h.maps.MapLayers(ctx, q)
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}

	resp := models.MapLayers{
		Pollutant: q.Profile.Name,
		Date:      q.Window.Label(),
		MonthName: q.Window.MonthName(),
		Boundary:  models.TileLayer{Name: layers.Boundary.Name, TileURL: layers.Boundary.TileURL},
		Raster:    models.TileLayer{Name: layers.Raster.Name, TileURL: layers.Raster.TileURL},
		Legend: models.Legend{
			Min:     layers.Legend.Min,
			Max:     layers.Legend.Max,
			Palette: layers.Legend.Palette,
			Unit:    layers.Legend.Unit,
		},
	}

	w.Header().Set("Cache-Control", "private, max-age=300")
	response.JSON(w, r, http.StatusOK, resp)
}
