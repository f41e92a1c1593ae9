package handler

import (
	"net/http"
	"time"

	"github.com/jordanair/jordanair/internal/api/models"
	"github.com/jordanair/jordanair/internal/api/response"
	"github.com/jordanair/jordanair/internal/pollutant"
	"github.com/jordanair/jordanair/internal/raster"
	"github.com/jordanair/jordanair/internal/report"
)

// Map viewport over Jordan.
const (
	mapCenterLat = 31.2
	mapCenterLon = 36.5
	mapZoom      = 7
)

// MetadataHandler handles metadata endpoints.
type MetadataHandler struct{}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler() *MetadataHandler {
	return &MetadataHandler{}
}

// ListPollutants handles GET /v1/metadata/pollutants - everything the
// dashboard selectors need: the pollutant registry with insights, the
// reported cities, year bounds, and month names.
func (h *MetadataHandler) ListPollutants(w http.ResponseWriter, r *http.Request) {
	profiles := pollutant.All()
	pollutants := make([]models.PollutantInfo, len(profiles))
	for i, p := range profiles {
		pollutants[i] = models.PollutantInfo{
			Name:      p.Name,
			ShortName: p.ShortName(),
			Band:      p.Band,
			Min:       p.Min,
			Max:       p.Max,
			Palette:   p.Palette,
			Unit:      p.Unit,
			Insight:   pollutant.Insight(p.Name),
		}
	}

	cities := report.Cities()
	cityInfos := make([]models.CityInfo, len(cities))
	for i, c := range cities {
		cityInfos[i] = models.CityInfo{
			Name:  c.Name,
			Point: models.Point{Lat: c.Lat, Lon: c.Lon},
		}
	}

	months := make([]string, 12)
	for i := range months {
		months[i] = time.Month(i + 1).String()
	}

	meta := models.Metadata{
		Pollutants: pollutants,
		Cities:     cityInfos,
		Years:      models.YearRange{Min: raster.MinYear, Max: raster.MaxYear()},
		Months:     months,
		Center:     models.Point{Lat: mapCenterLat, Lon: mapCenterLon},
		Zoom:       mapZoom,
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	response.JSON(w, r, http.StatusOK, meta)
}
