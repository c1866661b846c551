package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/geoinsight/geoinsight/internal/api/response"
	"github.com/geoinsight/geoinsight/internal/scoring"
	"github.com/geoinsight/geoinsight/internal/simindex"
)

const (
	defaultSimilarLimit = 10
	maxSimilarLimit     = 100
)

// NewSimilarSearchHandler returns an http.HandlerFunc for POST /api/v1/similar.
// The query is either a raw vector or the id of an already-indexed property;
// a property query never matches itself.
func NewSimilarSearchHandler(index simindex.Index, defaultThreshold float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PropertyID string     `json:"property_id"`
			Vector     []float32  `json:"vector"`
			Limit      int        `json:"limit"`
			Threshold  *float64   `json:"threshold"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if (req.PropertyID == "") == (len(req.Vector) == 0) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"exactly one of property_id or vector is required", nil)
			return
		}

		limit := req.Limit
		if limit <= 0 {
			limit = defaultSimilarLimit
		}
		if limit > maxSimilarLimit {
			limit = maxSimilarLimit
		}
		threshold := defaultThreshold
		if req.Threshold != nil {
			threshold = *req.Threshold
		}
		if threshold < 0 || threshold >= 1 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"threshold must be in [0, 1)", nil)
			return
		}

		vector := req.Vector
		selfID := ""
		if req.PropertyID != "" {
			rec, err := index.Get(r.Context(), req.PropertyID)
			if err != nil {
				if errors.Is(err, simindex.ErrNotFound) {
					response.Error(w, http.StatusNotFound, "PROPERTY_NOT_FOUND",
						"No embedding stored for that property", nil)
					return
				}
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
				return
			}
			vector = rec.Vector
			selfID = rec.PropertyID
			// Room for the excluded self-match.
			limit++
		}

		matches, err := index.Search(r.Context(), vector, limit, threshold)
		if err != nil {
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

		results := make([]simindex.Match, 0, len(matches))
		for _, m := range matches {
			if m.PropertyID == selfID {
				continue
			}
			results = append(results, m)
		}
		if selfID != "" && len(results) > limit-1 {
			results = results[:limit-1]
		}

		response.JSON(w, map[string]any{
			"matches":   results,
			"threshold": threshold,
		})
	}
}

// NewSimilarStatsHandler returns an http.HandlerFunc for GET /api/v1/similar/stats.
func NewSimilarStatsHandler(index simindex.Index) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := index.Stats(r.Context())
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		response.JSON(w, stats)
	}
}
