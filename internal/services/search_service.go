package services

import (
	"context"
	"sort"

	"github.com/dvhs/alumnirank/internal/logger"
	"github.com/dvhs/alumnirank/internal/metrics"
	"github.com/dvhs/alumnirank/internal/models"
	"github.com/dvhs/alumnirank/internal/repository"
	"github.com/dvhs/alumnirank/internal/search"
)

// SearchService runs directory searches and records them for analytics.
type SearchService interface {
	Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error)
}

type searchService struct {
	profileRepo repository.ProfileRepository
	queryRepo   repository.SearchQueryRepository
	metrics     *metrics.Metrics
}

// NewSearchService creates a new SearchService
func NewSearchService(profileRepo repository.ProfileRepository, queryRepo repository.SearchQueryRepository, m *metrics.Metrics) SearchService {
	return &searchService{profileRepo: profileRepo, queryRepo: queryRepo, metrics: m}
}

func (s *searchService) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("searching: query=%q limit=%d", query, limit)

	if limit <= 0 {
		limit = 20
	}

	terms := search.ExpandQuery(query)
	if len(terms) == 0 {
		return nil, nil
	}

	// Fetch a wider candidate set than the final limit; scoring below is
	// stricter than the store's any-term match.
	candidates, err := s.profileRepo.Search(ctx, terms, limit*3)
	if err != nil {
		log.Error("search query failed: %v", err)
		return nil, storeError(err)
	}

	var results []models.SearchResult
	for _, p := range candidates {
		score, snippet, ok := search.Match(p, terms)
		if !ok {
			continue
		}
		results = append(results, models.SearchResult{Profile: p, Score: score, Snippet: snippet})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}

	if s.metrics != nil {
		s.metrics.SearchExecuted()
	}
	if s.queryRepo != nil {
		// Analytics only; a failed insert must not fail the search.
		if err := s.queryRepo.Record(ctx, query, len(results)); err != nil {
			log.Warn("failed to record search analytics: %v", err)
		}
	}

	log.Debug("search returned %d results", len(results))
	return results, nil
}
