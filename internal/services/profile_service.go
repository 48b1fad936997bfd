package services

import (
	"context"

	"github.com/dvhs/alumnirank/internal/errors"
	"github.com/dvhs/alumnirank/internal/logger"
	"github.com/dvhs/alumnirank/internal/models"
	"github.com/dvhs/alumnirank/internal/repository"
)

// ProfileService handles directory browsing business logic
type ProfileService interface {
	ListProfiles(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, int, error)
	// GetProfile returns the profile and its most recent rating change,
	// which is nil when the profile has never been voted on.
	GetProfile(ctx context.Context, id string) (*models.Profile, *models.RatingChange, error)
}

type profileService struct {
	profileRepo repository.ProfileRepository
	voteRepo    repository.VoteRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(profileRepo repository.ProfileRepository, voteRepo repository.VoteRepository) ProfileService {
	return &profileService{profileRepo: profileRepo, voteRepo: voteRepo}
}

func (s *profileService) ListProfiles(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, int, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing profiles")

	profiles, err := s.profileRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list profiles: %v", err)
		return nil, 0, storeError(err)
	}

	total, err := s.profileRepo.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count profiles: %v", err)
		return nil, 0, storeError(err)
	}

	return profiles, total, nil
}

func (s *profileService) GetProfile(ctx context.Context, id string) (*models.Profile, *models.RatingChange, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting profile: id=%s", id)

	if id == "" {
		return nil, nil, errors.NewBadRequestError("profile id required")
	}

	profile, err := s.profileRepo.Get(ctx, id)
	if err != nil {
		log.Error("failed to get profile: %v", err)
		return nil, nil, storeError(err)
	}
	if profile == nil {
		return nil, nil, errors.NewNotFoundError("profile", id)
	}

	lastChange, err := s.voteRepo.LatestChange(ctx, id)
	if err != nil {
		log.Error("failed to get latest rating change: %v", err)
		return nil, nil, storeError(err)
	}

	return profile, lastChange, nil
}
