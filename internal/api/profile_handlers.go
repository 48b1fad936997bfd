package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dvhs/alumnirank/internal/logger"
	"github.com/dvhs/alumnirank/internal/models"
)

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	q := r.URL.Query()
	filter := models.ProfileFilter{
		ClassOf: q.Get("class_of"),
		College: q.Get("college"),
		Company: q.Get("company"),
	}

	filter.Limit = 50
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 && v <= 200 {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		filter.Offset = v
	}

	log = log.WithFields(map[string]any{
		"class_of": filter.ClassOf,
		"college":  filter.College,
		"company":  filter.Company,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
	log.Debug("listing profiles with filters")

	profiles, total, err := s.ProfileService.ListProfiles(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if !s.bearerTokenMatches(r) {
		for i := range profiles {
			profiles[i].RedactContacts()
		}
	}

	log.Debug("found %d profiles", len(profiles))
	respondJSON(w, r, http.StatusOK, map[string]any{
		"profiles": profiles,
		"total":    total,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	id := chi.URLParam(r, "id")
	log.Debug("fetching profile detail, id=%s", id)

	profile, lastChange, err := s.ProfileService.GetProfile(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if !s.bearerTokenMatches(r) {
		profile.RedactContacts()
	}

	body := map[string]any{"profile": profile}
	if lastChange != nil {
		body["last_rating_change"] = lastChange
	}
	respondJSON(w, r, http.StatusOK, body)
}

func (s *Server) handleProfileRank(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	id := chi.URLParam(r, "id")
	log.Debug("fetching profile rank, id=%s", id)

	rank, err := s.LeaderboardService.ProfileRank(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"profile_id": id,
		"rank":       rank,
	})
}
