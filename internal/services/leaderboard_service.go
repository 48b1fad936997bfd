package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/dvhs/alumnirank/internal/errors"
	"github.com/dvhs/alumnirank/internal/logger"
	"github.com/dvhs/alumnirank/internal/models"
	"github.com/dvhs/alumnirank/internal/repository"
)

// LeaderboardService derives the ranked directory view.
type LeaderboardService interface {
	TopProfiles(ctx context.Context, limit int) ([]models.Profile, error)
	ProfileRank(ctx context.Context, id string) (int, error)
	// CheckLedger verifies the zero-sum invariant of the rating ledger.
	// A non-zero sum means a vote was partially applied, which is an
	// unrecoverable internal error requiring operator investigation.
	CheckLedger(ctx context.Context) error
}

type leaderboardService struct {
	profileRepo repository.ProfileRepository
	voteRepo    repository.VoteRepository
	maxLimit    int
}

// NewLeaderboardService creates a new LeaderboardService
func NewLeaderboardService(profileRepo repository.ProfileRepository, voteRepo repository.VoteRepository, maxLimit int) LeaderboardService {
	if maxLimit <= 0 {
		maxLimit = 100
	}
	return &leaderboardService{profileRepo: profileRepo, voteRepo: voteRepo, maxLimit: maxLimit}
}

func (s *leaderboardService) TopProfiles(ctx context.Context, limit int) ([]models.Profile, error) {
	log := logger.FromContext(ctx)
	log.Debug("fetching leaderboard: limit=%d", limit)

	if limit <= 0 || limit > s.maxLimit {
		limit = s.maxLimit
	}

	profiles, err := s.profileRepo.TopByRating(ctx, limit)
	if err != nil {
		log.Error("failed to fetch leaderboard: %v", err)
		return nil, storeError(err)
	}
	return profiles, nil
}

func (s *leaderboardService) ProfileRank(ctx context.Context, id string) (int, error) {
	log := logger.FromContext(ctx)
	log.Debug("fetching rank: id=%s", id)

	rank, err := s.profileRepo.Rank(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperrors.NewNotFoundError("profile", id)
		}
		log.Error("failed to compute rank: %v", err)
		return 0, storeError(err)
	}
	return rank, nil
}

func (s *leaderboardService) CheckLedger(ctx context.Context) error {
	log := logger.FromContext(ctx)

	sum, err := s.voteRepo.SumChanges(ctx)
	if err != nil {
		log.Error("failed to sum rating ledger: %v", err)
		return storeError(err)
	}
	if sum != 0 {
		log.Error("rating ledger out of balance: sum=%d", sum)
		return apperrors.NewInvariantError(fmt.Sprintf("rating ledger sums to %d, expected 0", sum))
	}
	return nil
}
