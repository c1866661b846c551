package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/geoinsight/geoinsight/internal/analysis"
	"github.com/geoinsight/geoinsight/internal/api/response"
	"github.com/geoinsight/geoinsight/internal/store"
	"github.com/geoinsight/geoinsight/pkg/models"
)

// AnalysisService defines the orchestration interface the handlers depend on.
type AnalysisService interface {
	Submit(ctx context.Context, input models.AnalysisInput) (*models.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) error
}

// NewSubmitAnalysisHandler returns an http.HandlerFunc for POST /api/v1/analyses.
// Responds 202 with the pending job; clients poll by job id.
func NewSubmitAnalysisHandler(svc AnalysisService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input models.AnalysisInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			if errors.Is(err, models.ErrParse) {
				response.Error(w, http.StatusBadRequest, "PARSE_ERROR", err.Error(), nil)
				return
			}
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		job, err := svc.Submit(r.Context(), input)
		if err != nil {
			if errors.Is(err, analysis.ErrInvalidInput) {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.Accepted(w, jobView(job))
	}
}

// NewPollAnalysisHandler returns an http.HandlerFunc for GET /api/v1/analyses/{jobID}.
func NewPollAnalysisHandler(svc AnalysisService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseJobID(w, r)
		if !ok {
			return
		}

		job, err := svc.GetJob(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "No such job", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.JSON(w, jobView(job))
	}
}

// NewCancelAnalysisHandler returns an http.HandlerFunc for DELETE /api/v1/analyses/{jobID}.
// Canceling a finished job is a conflict, not an idempotent no-op: the
// terminal outcome already happened and is immutable.
func NewCancelAnalysisHandler(svc AnalysisService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseJobID(w, r)
		if !ok {
			return
		}

		var body struct {
			Reason string `json:"reason"`
		}
		// Body is optional on cancel.
		_ = json.NewDecoder(r.Body).Decode(&body)

		err := svc.Cancel(r.Context(), id, body.Reason)
		switch {
		case err == nil:
			response.JSON(w, map[string]string{"id": id.String(), "status": models.JobStatusFailed})
		case errors.Is(err, store.ErrNotFound):
			response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "No such job", nil)
		case errors.Is(err, store.ErrJobTerminal):
			response.Error(w, http.StatusConflict, "JOB_TERMINAL",
				"Job already reached a terminal status", nil)
		default:
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
		}
	}
}

func parseJobID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "jobID")
	id, err := uuid.Parse(raw)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
			"jobID must be a valid UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}

// jobView shapes a job for API responses. Section outcomes are exposed as
// they land so a running job shows progress and a failed job still shows
// the subtask results written before the failure.
func jobView(job *models.Job) map[string]any {
	view := map[string]any{
		"id":         job.ID,
		"status":     job.Status,
		"input":      job.Input,
		"created_at": job.CreatedAt,
	}
	if len(job.Sections) > 0 {
		view["sections"] = job.Sections
	}
	if job.Result != nil {
		view["result"] = job.Result
	}
	if job.ErrorMessage != nil {
		view["error"] = *job.ErrorMessage
	}
	if job.CompletedAt != nil {
		view["completed_at"] = *job.CompletedAt
	}
	return view
}
