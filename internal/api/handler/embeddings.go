package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/geoinsight/geoinsight/internal/api/response"
	"github.com/geoinsight/geoinsight/internal/scoring"
	"github.com/geoinsight/geoinsight/internal/simindex"
	"github.com/geoinsight/geoinsight/pkg/models"
)

// NewUpsertEmbeddingHandler returns an http.HandlerFunc for
// PUT /api/v1/properties/{propertyID}/embedding. Replaces any existing
// embedding for the property.
func NewUpsertEmbeddingHandler(index simindex.Index) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propertyID := chi.URLParam(r, "propertyID")
		if propertyID == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"propertyID is required", nil)
			return
		}

		var req struct {
			Vector   []float32      `json:"vector"`
			Metadata map[string]any `json:"metadata"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if len(req.Vector) == 0 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "vector is required", nil)
			return
		}

		rec := models.EmbeddingRecord{
			PropertyID: propertyID,
			Vector:     req.Vector,
			Metadata:   req.Metadata,
			CreatedAt:  time.Now().UTC(),
		}
		if err := index.Upsert(r.Context(), rec); err != nil {
			var mismatch *scoring.DimensionMismatchError
			if errors.As(err, &mismatch) {
				response.Error(w, http.StatusBadRequest, "DIMENSION_MISMATCH",
					mismatch.Error(), nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.JSON(w, map[string]any{
			"property_id": propertyID,
			"dimension":   len(req.Vector),
		})
	}
}

// NewDeleteEmbeddingHandler returns an http.HandlerFunc for
// DELETE /api/v1/properties/{propertyID}/embedding.
func NewDeleteEmbeddingHandler(index simindex.Index) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propertyID := chi.URLParam(r, "propertyID")

		err := index.Delete(r.Context(), propertyID)
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, simindex.ErrNotFound):
			response.Error(w, http.StatusNotFound, "PROPERTY_NOT_FOUND",
				"No embedding stored for that property", nil)
		default:
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
		}
	}
}
