package sqlite

import (
	"context"
	"database/sql"

	"github.com/dvhs/alumnirank/internal/logger"
	"github.com/dvhs/alumnirank/internal/models"
	"github.com/dvhs/alumnirank/internal/repository"
)

type searchQueryRepository struct {
	db *sql.DB
}

// NewSearchQueryRepository creates a new SearchQueryRepository implementation
func NewSearchQueryRepository(db *sql.DB) repository.SearchQueryRepository {
	return &searchQueryRepository{db: db}
}

func (r *searchQueryRepository) Record(ctx context.Context, query string, resultsCount int) error {
	log := logger.FromContext(ctx).WithPrefix("search_query_repo")
	log.Debug("recording search: query=%q results=%d", query, resultsCount)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO search_queries (query, results_count) VALUES (?, ?)`,
		query, resultsCount)
	if err != nil {
		log.Error("failed to record search query: %v", err)
	}
	return err
}

func (r *searchQueryRepository) Recent(ctx context.Context, limit int) ([]models.SearchQuery, error) {
	log := logger.FromContext(ctx).WithPrefix("search_query_repo")

	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, query, results_count, created_at
FROM search_queries
ORDER BY created_at DESC, id DESC
LIMIT ?
`, limit)
	if err != nil {
		log.Error("failed to list search queries: %v", err)
		return nil, err
	}
	defer rows.Close()

	var queries []models.SearchQuery
	for rows.Next() {
		var q models.SearchQuery
		if err := rows.Scan(&q.ID, &q.Query, &q.ResultsCount, &q.CreatedAt); err != nil {
			log.Error("failed to scan search query row: %v", err)
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}
