package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jordanair/jordanair/internal/api/models"
	"github.com/jordanair/jordanair/internal/api/response"
	"github.com/jordanair/jordanair/internal/raster"
	"github.com/jordanair/jordanair/internal/report"
)

// reportTimeout bounds a full report generation (one reduction per city).
const reportTimeout = 120 * time.Second

// ReportHandler handles city statistics report endpoints.
type ReportHandler struct {
	reports *report.Service
}

// NewReportHandler creates a new ReportHandler. reports may be nil when
// the service starts without a credential.
func NewReportHandler(reports *report.Service) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// GenerateReport handles POST /v1/reports:generate - run the per-city
// reductions and return the report as JSON.
func (h *ReportHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	var input models.GenerateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	q, fieldErrors := buildQuery(input.Pollutant, input.Year, input.Month)
	if fieldErrors != nil {
		response.BadRequest(w, r, "invalid report request", fieldErrors)
		return
	}

	rep, ok := h.generate(w, r, q)
	if !ok {
		return
	}

	response.JSON(w, r, http.StatusOK, reportModel(rep))
}

// ExportReport handles GET /v1/reports:export - run the same
// generation and stream the result as a CSV attachment.
func (h *ReportHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	q, fieldErrors := queryFromParams(r)
	if fieldErrors != nil {
		response.BadRequest(w, r, "invalid report query", fieldErrors)
		return
	}

	rep, ok := h.generate(w, r, q)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+rep.Filename()+`"`)
	if err := rep.WriteCSV(w); err != nil {
		// Headers are already on the wire; nothing left to do but log
		// at the access log level via the middleware.
		return
	}
}

// generate runs the report generation, writing the problem response on
// failure. The boolean reports whether a report was produced.
func (h *ReportHandler) generate(w http.ResponseWriter, r *http.Request, q raster.Query) (*report.Report, bool) {
	if h.reports == nil {
		response.ServiceUnavailable(w, r, "no service account credential configured")
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), reportTimeout)
	defer cancel()

	rep, err := h.reports.Generate(ctx, q)
	if err != nil {
		writeUpstreamError(w, r, err)
		return nil, false
	}
	return rep, true
}

func reportModel(rep *report.Report) models.Report {
	rows := make([]models.ReportRow, len(rep.Rows))
	for i, row := range rep.Rows {
		rows[i] = models.ReportRow{
			City:      row.City,
			Pollutant: row.Pollutant,
			Value:     row.Value,
			Unit:      row.Unit,
			Date:      row.Date,
		}
	}
	return models.Report{
		Pollutant:   rep.Pollutant,
		Unit:        rep.Unit,
		Date:        rep.Date,
		Filename:    rep.Filename(),
		GeneratedAt: models.Timestamp(rep.GeneratedAt),
		Rows:        rows,
	}
}
