package services

import (
	"context"
	"io"

	apperrors "github.com/dvhs/alumnirank/internal/errors"
	"github.com/dvhs/alumnirank/internal/importer"
	"github.com/dvhs/alumnirank/internal/logger"
	"github.com/dvhs/alumnirank/internal/metrics"
	"github.com/dvhs/alumnirank/internal/repository"
	"github.com/dvhs/alumnirank/internal/worker"
)

// ImportSummary reports what an upload produced: how many profiles were
// accepted for insertion and which rows were rejected.
type ImportSummary struct {
	Accepted int                 `json:"accepted"`
	Rejected []importer.RowError `json:"rejected,omitempty"`
}

// ImportService handles CSV bulk import business logic
type ImportService interface {
	// ImportCSV parses the upload synchronously and queues the insertion
	// on the import pool.
	ImportCSV(ctx context.Context, r io.Reader) (*ImportSummary, error)
}

type importService struct {
	profileRepo repository.ProfileRepository
	pool        *worker.Pool
	metrics     *metrics.Metrics
}

// NewImportService creates a new ImportService
func NewImportService(profileRepo repository.ProfileRepository, pool *worker.Pool, m *metrics.Metrics) ImportService {
	return &importService{profileRepo: profileRepo, pool: pool, metrics: m}
}

func (s *importService) ImportCSV(ctx context.Context, r io.Reader) (*ImportSummary, error) {
	log := logger.FromContext(ctx)
	log.Info("parsing CSV import")

	result, err := importer.Parse(r)
	if err != nil {
		log.Warn("unreadable CSV upload: %v", err)
		return nil, apperrors.NewBadRequestError("unreadable CSV: " + err.Error())
	}

	if s.metrics != nil && len(result.Rejected) > 0 {
		s.metrics.ImportRowsRejected(len(result.Rejected))
	}

	if len(result.Profiles) > 0 {
		s.pool.Submit(&importer.Job{
			Profiles: result.Profiles,
			Repo:     s.profileRepo,
			Metrics:  s.metrics,
		})
	}

	log.Info("import queued: accepted=%d rejected=%d", len(result.Profiles), len(result.Rejected))
	return &ImportSummary{
		Accepted: len(result.Profiles),
		Rejected: result.Rejected,
	}, nil
}
