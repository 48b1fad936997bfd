package api

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/dvhs/alumnirank/internal/errors"
	"github.com/dvhs/alumnirank/internal/logger"
	"github.com/dvhs/alumnirank/internal/pairing"
	"github.com/dvhs/alumnirank/internal/services"
)

func (s *Server) handleGetPair(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	log.Debug("selecting next pair")

	pair, err := s.VoteService.GetPair(r.Context())
	if err != nil {
		if errors.Is(err, pairing.ErrNoPair) {
			// Fewer than two profiles is a valid state, not a failure.
			log.Debug("no pair available")
			respondJSON(w, r, http.StatusOK, map[string]any{
				"pair":   nil,
				"reason": "not_enough_profiles",
			})
			return
		}
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{"pair": pair})
}

type voteRequest struct {
	SessionID  string `json:"session_id"`
	Profile1ID string `json:"profile1_id"`
	Profile2ID string `json:"profile2_id"`
	WinnerID   string `json:"winner_id"`
	VotedEqual bool   `json:"voted_equal"`
}

func (s *Server) handleSubmitVote(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("malformed vote body: %v", err)
		handleError(w, r, apperrors.NewBadRequestError("invalid JSON body"))
		return
	}

	result, err := s.VoteService.SubmitVote(r.Context(), services.SubmitVoteRequest{
		SessionID:  req.SessionID,
		Profile1ID: req.Profile1ID,
		Profile2ID: req.Profile2ID,
		WinnerID:   req.WinnerID,
		VotedEqual: req.VotedEqual,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	respondJSON(w, r, status, result)
}
