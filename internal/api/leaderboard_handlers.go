package api

import (
	"net/http"
	"strconv"

	"github.com/dvhs/alumnirank/internal/logger"
)

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	limit := s.LeaderboardLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}

	log.Debug("fetching leaderboard, limit=%d", limit)

	profiles, err := s.LeaderboardService.TopProfiles(r.Context(), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if !s.bearerTokenMatches(r) {
		for i := range profiles {
			profiles[i].RedactContacts()
		}
	}

	type entry struct {
		Rank    int `json:"rank"`
		Profile any `json:"profile"`
	}
	entries := make([]entry, len(profiles))
	for i := range profiles {
		entries[i] = entry{Rank: i + 1, Profile: profiles[i]}
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"leaderboard": entries,
	})
}
