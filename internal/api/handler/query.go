package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/jordanair/jordanair/internal/api/models"
	"github.com/jordanair/jordanair/internal/api/response"
	"github.com/jordanair/jordanair/internal/earthengine"
	"github.com/jordanair/jordanair/internal/pollutant"
	"github.com/jordanair/jordanair/internal/provider/resilience"
	"github.com/jordanair/jordanair/internal/raster"
)

// buildQuery validates a pollutant name and year/month pair into a
// raster query. Field errors accumulate so a response can report every
// invalid field at once.
func buildQuery(name string, year, month int) (raster.Query, []models.FieldError) {
	var fieldErrors []models.FieldError

	profile, err := pollutant.Lookup(name)
	if err != nil {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:   "pollutant",
			Message: "unknown pollutant",
		})
	}

	window, err := raster.NewTimeWindow(year, month)
	switch {
	case errors.Is(err, raster.ErrYearOutOfRange):
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:   "year",
			Message: err.Error(),
		})
	case errors.Is(err, raster.ErrMonthOutOfRange):
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:   "month",
			Message: err.Error(),
		})
	}

	if len(fieldErrors) > 0 {
		return raster.Query{}, fieldErrors
	}
	return raster.Query{Profile: profile, Window: window}, nil
}

// queryFromParams parses the pollutant/year/month query parameters.
func queryFromParams(r *http.Request) (raster.Query, []models.FieldError) {
	q := r.URL.Query()

	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		return raster.Query{}, []models.FieldError{{Field: "year", Message: "must be an integer"}}
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil {
		return raster.Query{}, []models.FieldError{{Field: "month", Message: "must be an integer"}}
	}

	return buildQuery(q.Get("pollutant"), year, month)
}

// writeUpstreamError maps a remote data failure onto the problem
// taxonomy: deadline overruns are gateway timeouts, rejected
// credentials and open circuits are service unavailability.
func writeUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		response.UpstreamTimeout(w, r, "the remote data service did not answer in time")
	case errors.Is(err, earthengine.ErrAuthRejected):
		response.ServiceUnavailable(w, r, "the remote data service rejected the configured credential")
	case errors.Is(err, resilience.ErrCircuitOpen):
		response.ServiceUnavailable(w, r, "the remote data service is temporarily unavailable")
	default:
		response.InternalError(w, r, "failed to query the remote data service")
	}
}
