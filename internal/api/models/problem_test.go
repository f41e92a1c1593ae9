package models_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanair/jordanair/internal/api/models"
)

func TestProblem_NewProblem(t *testing.T) {
	p := models.NewProblem(
		models.ProblemTypeValidation,
		"Validation error",
		http.StatusBadRequest,
		"req_test123",
	)

	assert.Equal(t, models.ProblemTypeValidation, p.Type)
	assert.Equal(t, "Validation error", p.Title)
	assert.Equal(t, http.StatusBadRequest, p.Status)
	assert.Equal(t, "req_test123", p.TraceID)
	assert.Empty(t, p.Detail)
	assert.Empty(t, p.Instance)
	assert.Nil(t, p.Errors)
}

func TestProblem_Write(t *testing.T) {
	p := models.NewBadRequest("req_test123", "invalid map query", []models.FieldError{
		{Field: "month", Message: "must be between 1 and 12"},
	})
	rec := httptest.NewRecorder()

	p.Write(rec)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "req_test123", rec.Header().Get("X-Request-Id"))

	var decoded models.Problem
	err := json.Unmarshal(rec.Body.Bytes(), &decoded)
	require.NoError(t, err)
	assert.Equal(t, models.ProblemTypeValidation, decoded.Type)
	assert.Equal(t, "invalid map query", decoded.Detail)
	require.Len(t, decoded.Errors, 1)
	assert.Equal(t, "month", decoded.Errors[0].Field)
}

func TestProblem_Constructors(t *testing.T) {
	tests := []struct {
		name       string
		problem    *models.Problem
		wantType   string
		wantStatus int
	}{
		{
			name:       "not found",
			problem:    models.NewNotFound("req_1", "no such thing"),
			wantType:   models.ProblemTypeNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "too many requests",
			problem:    models.NewTooManyRequests("req_2", "slow down"),
			wantType:   models.ProblemTypeTooManyRequests,
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:       "internal error",
			problem:    models.NewInternalError("req_3", "boom"),
			wantType:   models.ProblemTypeInternal,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "service unavailable",
			problem:    models.NewServiceUnavailable("req_4", "no credential"),
			wantType:   models.ProblemTypeUnavailable,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "upstream timeout",
			problem:    models.NewUpstreamTimeout("req_5", "remote too slow"),
			wantType:   models.ProblemTypeUpstreamTimeout,
			wantStatus: http.StatusGatewayTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.problem.Type)
			assert.Equal(t, tt.wantStatus, tt.problem.Status)
			assert.NotEmpty(t, tt.problem.Detail)
		})
	}
}
