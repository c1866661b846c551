package handler

import (
	"context"
	"net/http"

	"github.com/geoinsight/geoinsight/internal/api/response"
)

// Pinger is anything with a liveness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewHealthHandler returns an http.HandlerFunc for GET /api/v1/health.
// Reports degraded dependencies with a 503 so load balancers rotate the
// instance out.
func NewHealthHandler(db, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		checks := map[string]string{}

		if err := db.Ping(r.Context()); err != nil {
			checks["database"] = "down"
			status = http.StatusServiceUnavailable
		} else {
			checks["database"] = "up"
		}

		if err := cache.Ping(r.Context()); err != nil {
			checks["cache"] = "down"
			status = http.StatusServiceUnavailable
		} else {
			checks["cache"] = "up"
		}

		if status == http.StatusOK {
			response.JSON(w, map[string]any{"status": "ok", "checks": checks})
			return
		}
		response.Error(w, status, "DEGRADED", "One or more dependencies are down", checks)
	}
}
