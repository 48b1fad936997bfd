package api

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dvhs/alumnirank/internal/logger"
	"github.com/dvhs/alumnirank/internal/metrics"
	"github.com/dvhs/alumnirank/internal/services"
	"github.com/dvhs/alumnirank/internal/stream"
)

type Server struct {
	DB                 *sql.DB
	ProfileService     services.ProfileService
	VoteService        services.VoteService
	LeaderboardService services.LeaderboardService
	SearchService      services.SearchService
	ImportService      services.ImportService
	Bus                *stream.Bus
	Metrics            *metrics.Metrics
	Registry           *prometheus.Registry
	AdminToken         string
	LeaderboardLimit   int
}

// respondJSON writes v as the JSON response body.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response: %v", err)
	}
}
