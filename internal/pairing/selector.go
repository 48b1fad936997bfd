// Package pairing chooses the next two profiles to present for a vote,
// avoiding recently shown ones, and keeps a prefetched pair warm so the
// caller never waits on selection.
package pairing

import (
	"context"
	"errors"
	"sync"

	apperrors "github.com/dvhs/alumnirank/internal/errors"
	"github.com/dvhs/alumnirank/internal/logger"
	"github.com/dvhs/alumnirank/internal/models"
	"github.com/dvhs/alumnirank/internal/repository"
	"github.com/dvhs/alumnirank/internal/worker"
)

// ErrNoPair signals the valid empty state: fewer than two profiles exist.
// Distinct from a transient store failure, which surfaces as an AppError.
var ErrNoPair = errors.New("no pair available")

// recentPairKeep is how many of the newest exclusion entries are never
// relaxed away while enough profiles exist: the last two served pairs.
const recentPairKeep = 4

type Selector struct {
	profiles repository.ProfileRepository
	cache    ExclusionCache
	pool     *worker.Pool

	mu   sync.Mutex
	next *models.VotePair
}

// NewSelector creates a pair selector. pool may be nil, in which case
// prefetching is disabled and every call selects synchronously.
func NewSelector(profiles repository.ProfileRepository, cache ExclusionCache, pool *worker.Pool) *Selector {
	return &Selector{profiles: profiles, cache: cache, pool: pool}
}

// SelectPair returns two distinct profiles to compare, serving the
// prefetched pair when one is ready. Both served ids enter the exclusion
// cache and a refill is scheduled.
func (s *Selector) SelectPair(ctx context.Context) (*models.VotePair, error) {
	log := logger.FromContext(ctx).WithPrefix("pair_selector")

	s.mu.Lock()
	pair := s.next
	s.next = nil
	s.mu.Unlock()

	if pair == nil {
		var err error
		pair, err = s.pick(ctx)
		if err != nil {
			return nil, err
		}
	}

	if err := s.cache.Add(ctx, pair.Profile1.ID, pair.Profile2.ID); err != nil {
		// Anti-repetition only; the pair is still valid.
		log.Warn("failed to record recently shown ids: %v", err)
	}

	s.schedulePrefetch()

	log.Debug("pair selected: %s vs %s", pair.Profile1.ID, pair.Profile2.ID)
	return pair, nil
}

// Clear resets the recently-shown window and drops the prefetched pair.
func (s *Selector) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.next = nil
	s.mu.Unlock()
	return s.cache.Clear(ctx)
}

// MarkShown feeds ids into the exclusion window. The vote tracker calls
// this so just-voted profiles stay out of the next selections.
func (s *Selector) MarkShown(ctx context.Context, ids ...string) error {
	return s.cache.Add(ctx, ids...)
}

func (s *Selector) pick(ctx context.Context) (*models.VotePair, error) {
	recent, err := s.cache.Recent(ctx)
	if err != nil {
		return nil, apperrors.NewTransientError(err)
	}

	// Start with the full window excluded and relax oldest-first when the
	// directory is too small to honor it, keeping the last two pairs
	// excluded for as long as possible.
	exclude := recent
	for {
		candidates, err := s.profiles.RandomCandidates(ctx, exclude, 2)
		if err != nil {
			return nil, apperrors.NewTransientError(err)
		}
		if len(candidates) >= 2 {
			return &models.VotePair{Profile1: candidates[0], Profile2: candidates[1]}, nil
		}
		if len(candidates) == 1 {
			// Exactly one fresh profile survived the exclusion. It must be
			// in the pair: discarding it and relaxing further could serve
			// two recently shown profiles even though a fresh one exists.
			partner, err := s.pickPartner(ctx, exclude, candidates[0].ID)
			if err != nil {
				return nil, err
			}
			if partner == nil {
				return nil, ErrNoPair
			}
			return &models.VotePair{Profile1: candidates[0], Profile2: *partner}, nil
		}

		relaxed, ok := relaxExclusion(exclude)
		if !ok {
			return nil, ErrNoPair
		}
		exclude = relaxed
	}
}

// pickPartner finds the second profile once the first is pinned. The fresh
// profile already keeps the pair clear of the preceding selections, so the
// partner exclusion may relax all the way down, still preferring the least
// recently shown partner.
func (s *Selector) pickPartner(ctx context.Context, exclude []string, freshID string) (*models.Profile, error) {
	for {
		combined := append([]string{freshID}, exclude...)
		partners, err := s.profiles.RandomCandidates(ctx, combined, 1)
		if err != nil {
			return nil, apperrors.NewTransientError(err)
		}
		if len(partners) == 1 {
			return &partners[0], nil
		}

		relaxed, ok := relaxExclusion(exclude)
		if !ok {
			return nil, nil
		}
		exclude = relaxed
	}
}

// relaxExclusion drops the oldest exclusion entries: two at a time while
// more than the last two pairs remain, then down to the last pair, then
// nothing. ok is false once there is nothing left to drop.
func relaxExclusion(exclude []string) ([]string, bool) {
	switch {
	case len(exclude) > recentPairKeep:
		return exclude[:len(exclude)-2], true
	case len(exclude) > 2:
		return exclude[:2], true
	case len(exclude) > 0:
		return nil, true
	default:
		return nil, false
	}
}

// schedulePrefetch queues a refill of the warm pair. Dropped silently when
// the queue is full; the next caller simply selects synchronously.
func (s *Selector) schedulePrefetch() {
	if s.pool == nil {
		return
	}
	s.pool.TrySubmit(&prefetchJob{selector: s})
}

type prefetchJob struct {
	selector *Selector
}

func (j *prefetchJob) Name() string { return "prefetch-pair" }

func (j *prefetchJob) Run(ctx context.Context) error {
	pair, err := j.selector.pick(ctx)
	if err != nil {
		if errors.Is(err, ErrNoPair) {
			return nil
		}
		return err
	}

	j.selector.mu.Lock()
	j.selector.next = pair
	j.selector.mu.Unlock()
	return nil
}
