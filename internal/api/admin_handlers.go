package api

import (
	"net/http"

	apperrors "github.com/dvhs/alumnirank/internal/errors"
	"github.com/dvhs/alumnirank/internal/logger"
)

// maxImportBytes caps CSV uploads at 16 MiB.
const maxImportBytes = 16 << 20

func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	log.Info("receiving CSV import")

	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	defer body.Close()

	summary, err := s.ImportService.ImportCSV(r.Context(), body)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusAccepted, summary)
}

func (s *Server) handleClearPairCache(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	log.Info("clearing recently shown cache")

	if err := s.VoteService.ClearRecentlyShown(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{"cleared": true})
}

func (s *Server) handleLedgerCheck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	log.Info("running rating ledger check")

	if err := s.LeaderboardService.CheckLedger(r.Context()); err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok && appErr.Code == apperrors.ErrCodeInvariant {
			respondJSON(w, r, http.StatusOK, map[string]any{
				"balanced": false,
				"detail":   appErr.Message,
			})
			return
		}
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{"balanced": true})
}
