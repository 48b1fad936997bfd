package importer

import (
	"context"
	"fmt"

	"github.com/dvhs/alumnirank/internal/logger"
	"github.com/dvhs/alumnirank/internal/metrics"
	"github.com/dvhs/alumnirank/internal/models"
	"github.com/dvhs/alumnirank/internal/repository"
)

// Job inserts parsed profiles in the background. The upload handler returns
// as soon as parsing finished; persistence happens on the import pool.
type Job struct {
	Profiles []models.Profile
	Repo     repository.ProfileRepository
	Metrics  *metrics.Metrics
}

func (j *Job) Name() string { return "csv-import" }

func (j *Job) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info("inserting %d imported profiles", len(j.Profiles))

	if err := j.Repo.InsertBatch(ctx, j.Profiles); err != nil {
		return fmt.Errorf("insert imported profiles: %w", err)
	}
	if j.Metrics != nil {
		j.Metrics.ProfilesImported(len(j.Profiles))
	}
	return nil
}
