package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	if s.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/pair", s.handleGetPair)
		r.Post("/votes", s.handleSubmitVote)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/profiles", s.handleListProfiles)
		r.Get("/profiles/{id}", s.handleGetProfile)
		r.Get("/profiles/{id}/rank", s.handleProfileRank)
		r.Get("/search", s.handleSearch)

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.adminMiddleware)
			r.Post("/import", s.handleImportCSV)
			r.Post("/pair-cache/clear", s.handleClearPairCache)
			r.Get("/ledger-check", s.handleLedgerCheck)
		})
	})

	r.Get("/ws/leaderboard", s.handleLeaderboardStream)

	return r
}
