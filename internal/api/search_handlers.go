package api

import (
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/dvhs/alumnirank/internal/errors"
	"github.com/dvhs/alumnirank/internal/logger"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		handleError(w, r, apperrors.NewBadRequestError("q parameter required"))
		return
	}

	limit := 20
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}

	log = log.WithFields(map[string]any{"query": query, "limit": limit})
	log.Debug("running profile search")

	results, err := s.SearchService.Search(r.Context(), query, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if !s.bearerTokenMatches(r) {
		for i := range results {
			results[i].Profile.RedactContacts()
		}
	}

	log.Debug("search returned %d results", len(results))
	respondJSON(w, r, http.StatusOK, map[string]any{
		"query":   query,
		"results": results,
	})
}
