package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/geoinsight/geoinsight/internal/api/middleware"
	"github.com/geoinsight/geoinsight/internal/api/response"
)

// Dependencies holds all handler dependencies for the router.
type Dependencies struct {
	HealthHandler http.HandlerFunc

	SubmitAnalysisHandler http.HandlerFunc
	PollAnalysisHandler   http.HandlerFunc
	CancelAnalysisHandler http.HandlerFunc

	SimilarSearchHandler http.HandlerFunc
	SimilarStatsHandler  http.HandlerFunc

	UpsertEmbeddingHandler http.HandlerFunc
	DeleteEmbeddingHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	r.Post("/api/v1/analyses", orNotImplemented(deps.SubmitAnalysisHandler))
	r.Get("/api/v1/analyses/{jobID}", orNotImplemented(deps.PollAnalysisHandler))
	r.Delete("/api/v1/analyses/{jobID}", orNotImplemented(deps.CancelAnalysisHandler))

	r.Post("/api/v1/similar", orNotImplemented(deps.SimilarSearchHandler))
	r.Get("/api/v1/similar/stats", orNotImplemented(deps.SimilarStatsHandler))

	r.Put("/api/v1/properties/{propertyID}/embedding", orNotImplemented(deps.UpsertEmbeddingHandler))
	r.Delete("/api/v1/properties/{propertyID}/embedding", orNotImplemented(deps.DeleteEmbeddingHandler))

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
