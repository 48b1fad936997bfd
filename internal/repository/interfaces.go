package repository

import (
	"context"

	"github.com/dvhs/alumnirank/internal/models"
)

// ProfileRepository handles alumni profile data access. Ratings are read
// through here but only ever written by VoteRepository.ApplyVote.
type ProfileRepository interface {
	Get(ctx context.Context, id string) (*models.Profile, error)
	List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, error)
	Count(ctx context.Context, filter models.ProfileFilter) (int, error)
	Insert(ctx context.Context, profile models.Profile) error
	InsertBatch(ctx context.Context, profiles []models.Profile) error
	// TopByRating orders by rating DESC, created_at ASC, id ASC.
	TopByRating(ctx context.Context, limit int) ([]models.Profile, error)
	// Rank returns the 1-based leaderboard position of a profile.
	Rank(ctx context.Context, id string) (int, error)
	// RandomCandidates returns up to n random profiles whose ids are not in
	// exclude. The exclusion is best-effort: when it would leave fewer than
	// n rows the caller decides whether to relax it.
	RandomCandidates(ctx context.Context, exclude []string, n int) ([]models.Profile, error)
	// Search matches every term against the text fields of a profile.
	Search(ctx context.Context, terms []string, limit int) ([]models.Profile, error)
}

// VoteRepository persists vote sessions and the rating ledger. ApplyVote and
// RecordTie are the only writers of profile ratings and rating_changes.
type VoteRepository interface {
	// ApplyVote commits, as one transaction: the vote session, both profile
	// rating updates (+k winner, -k loser) and both ledger entries. The
	// session id is the idempotency key: replaying a committed session
	// returns the stored changes with replayed=true and mutates nothing.
	ApplyVote(ctx context.Context, session models.VoteSession, k int) (changes []models.RatingChange, replayed bool, err error)
	// RecordTie commits a voted-equal session. No ratings move and no
	// ledger entries are written. Replays are detected the same way.
	RecordTie(ctx context.Context, session models.VoteSession) (replayed bool, err error)
	GetSession(ctx context.Context, id string) (*models.VoteSession, error)
	ChangesForSession(ctx context.Context, sessionID string) ([]models.RatingChange, error)
	// LatestChange returns the most recent ledger entry for a profile, or
	// nil when the profile has never been voted on.
	LatestChange(ctx context.Context, profileID string) (*models.RatingChange, error)
	// SumChanges returns the sum of all signed change amounts. It is zero
	// whenever the ledger is consistent.
	SumChanges(ctx context.Context) (int, error)
}

// SearchQueryRepository records executed searches for analytics.
type SearchQueryRepository interface {
	Record(ctx context.Context, query string, resultsCount int) error
	Recent(ctx context.Context, limit int) ([]models.SearchQuery, error)
}
