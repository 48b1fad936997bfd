package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/dvhs/alumnirank/internal/errors"
	"github.com/dvhs/alumnirank/internal/logger"
	"github.com/dvhs/alumnirank/internal/metrics"
	"github.com/dvhs/alumnirank/internal/models"
	"github.com/dvhs/alumnirank/internal/pairing"
	"github.com/dvhs/alumnirank/internal/rating"
	"github.com/dvhs/alumnirank/internal/repository"
	"github.com/dvhs/alumnirank/internal/stream"
)

// SubmitVoteRequest carries one vote submission. SessionID is optional;
// callers that retry supply their own so replays are detected.
type SubmitVoteRequest struct {
	SessionID  string
	Profile1ID string
	Profile2ID string
	WinnerID   string
	VotedEqual bool
}

// VoteService handles vote intake: pair selection, validation, rating
// application and live-update publication.
type VoteService interface {
	GetPair(ctx context.Context) (*models.VotePair, error)
	SubmitVote(ctx context.Context, req SubmitVoteRequest) (*models.VoteResult, error)
	ClearRecentlyShown(ctx context.Context) error
}

type voteService struct {
	profileRepo repository.ProfileRepository
	voteRepo    repository.VoteRepository
	selector    *pairing.Selector
	publisher   stream.Publisher
	metrics     *metrics.Metrics
	k           int
	timeout     time.Duration
}

// NewVoteService creates a new VoteService. publisher and m may be nil in
// tests.
func NewVoteService(
	profileRepo repository.ProfileRepository,
	voteRepo repository.VoteRepository,
	selector *pairing.Selector,
	publisher stream.Publisher,
	m *metrics.Metrics,
	k int,
	timeout time.Duration,
) VoteService {
	if k <= 0 {
		k = rating.DefaultK
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &voteService{
		profileRepo: profileRepo,
		voteRepo:    voteRepo,
		selector:    selector,
		publisher:   publisher,
		metrics:     m,
		k:           k,
		timeout:     timeout,
	}
}

func (s *voteService) GetPair(ctx context.Context) (*models.VotePair, error) {
	log := logger.FromContext(ctx)
	log.Debug("selecting vote pair")

	pair, err := s.selector.SelectPair(ctx)
	if err != nil {
		if errors.Is(err, pairing.ErrNoPair) {
			s.countPair(metrics.PairEmpty)
			return nil, err
		}
		log.Error("pair selection failed: %v", err)
		s.countPair(metrics.PairFailure)
		return nil, storeError(err)
	}

	s.countPair(metrics.PairServed)
	return pair, nil
}

func (s *voteService) SubmitVote(ctx context.Context, req SubmitVoteRequest) (*models.VoteResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("vote submitted: p1=%s p2=%s winner=%s equal=%v",
		req.Profile1ID, req.Profile2ID, req.WinnerID, req.VotedEqual)

	if err := rating.ValidateVote(req.Profile1ID, req.Profile2ID, req.WinnerID, req.VotedEqual); err != nil {
		log.Warn("invalid vote rejected: %v", err)
		return nil, err
	}

	for _, id := range []string{req.Profile1ID, req.Profile2ID} {
		profile, err := s.profileRepo.Get(ctx, id)
		if err != nil {
			log.Error("failed to check profile %s: %v", id, err)
			return nil, storeError(err)
		}
		if profile == nil {
			return nil, apperrors.NewNotFoundError("profile", id)
		}
	}

	session := models.VoteSession{
		ID:         req.SessionID,
		Profile1ID: req.Profile1ID,
		Profile2ID: req.Profile2ID,
		WinnerID:   req.WinnerID,
		VotedEqual: req.VotedEqual,
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}

	// The commit runs on a detached context: once a rating transaction is
	// in flight the caller abandoning the request must not abort it
	// halfway. The timeout still bounds the operation.
	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	result := &models.VoteResult{Session: session}

	if req.VotedEqual {
		replayed, err := s.voteRepo.RecordTie(commitCtx, session)
		if err != nil {
			log.Error("failed to record tie: %v", err)
			return nil, storeError(err)
		}
		result.Replayed = replayed
		s.countVote(replayed, metrics.OutcomeTie)
	} else {
		changes, replayed, err := s.voteRepo.ApplyVote(commitCtx, session, s.k)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// A participant vanished between the existence check and
				// the transaction.
				return nil, apperrors.NewNotFoundError("profile", "vote participant")
			}
			log.Error("failed to apply vote: %v", err)
			return nil, storeError(err)
		}
		result.Changes = changes
		result.Replayed = replayed
		s.countVote(replayed, metrics.OutcomeDecisive)

		if !replayed {
			if s.metrics != nil {
				s.metrics.RatingChanges(len(changes))
			}
			s.publishChanges(changes)
		}
	}

	// Keep just-voted profiles out of the next selections. Best effort.
	if s.selector != nil {
		if err := s.selector.MarkShown(ctx, req.Profile1ID, req.Profile2ID); err != nil {
			log.Warn("failed to mark voted profiles as shown: %v", err)
		}
	}

	log.Info("vote recorded: session=%s equal=%v replayed=%v",
		session.ID, req.VotedEqual, result.Replayed)
	return result, nil
}

func (s *voteService) ClearRecentlyShown(ctx context.Context) error {
	if s.selector == nil {
		return nil
	}
	return s.selector.Clear(ctx)
}

func (s *voteService) publishChanges(changes []models.RatingChange) {
	if s.publisher == nil {
		return
	}
	for _, c := range changes {
		s.publisher.PublishRatingChange(stream.RatingEvent{
			ProfileID: c.ProfileID,
			Rating:    c.NewRating,
			Change:    c.ChangeAmount,
			At:        c.CreatedAt,
		})
	}
}

func (s *voteService) countVote(replayed bool, outcome string) {
	if s.metrics == nil {
		return
	}
	if replayed {
		outcome = metrics.OutcomeReplayed
	}
	s.metrics.VoteRecorded(outcome)
}

func (s *voteService) countPair(result string) {
	if s.metrics != nil {
		s.metrics.PairSelection(result)
	}
}
