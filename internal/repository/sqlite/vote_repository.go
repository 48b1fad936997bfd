package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/dvhs/alumnirank/internal/errors"
	"github.com/dvhs/alumnirank/internal/logger"
	"github.com/dvhs/alumnirank/internal/models"
	"github.com/dvhs/alumnirank/internal/repository"
)

type voteRepository struct {
	db *sql.DB
}

// NewVoteRepository creates a new VoteRepository implementation
func NewVoteRepository(db *sql.DB) repository.VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) ApplyVote(ctx context.Context, session models.VoteSession, k int) ([]models.RatingChange, bool, error) {
	log := logger.FromContext(ctx).WithPrefix("vote_repo")
	log.Debug("applying vote: session=%s winner=%s", session.ID, session.WinnerID)

	winnerID := session.WinnerID
	loserID := session.LoserID()

	var changes []models.RatingChange
	replayed := false

	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		exists, err := sessionExists(ctx, tx, session.ID)
		if err != nil {
			return err
		}
		if exists {
			// At-least-once delivery: the session already committed, so
			// return the recorded outcome without touching any rating.
			replayed = true
			changes, err = changesForSession(ctx, tx, session.ID)
			if err != nil {
				return err
			}
			if len(changes) != 2 {
				return apperrors.NewInvariantError(
					"vote session " + session.ID + " has a winner but not exactly two ledger entries")
			}
			log.Debug("vote session %s replayed, no mutation", session.ID)
			return nil
		}

		var winnerRating, loserRating int
		if err := tx.QueryRowContext(ctx, `SELECT rating FROM profiles WHERE id = ?`, winnerID).Scan(&winnerRating); err != nil {
			return err
		}
		if err := tx.QueryRowContext(ctx, `SELECT rating FROM profiles WHERE id = ?`, loserID).Scan(&loserRating); err != nil {
			return err
		}

		now := time.Now().UTC()
		if _, err := tx.ExecContext(ctx, `
INSERT INTO vote_sessions (id, profile1_id, profile2_id, winner_id, voted_equal, created_at)
VALUES (?, ?, ?, ?, 0, ?)
`, session.ID, session.Profile1ID, session.Profile2ID, winnerID, now); err != nil {
			log.Error("failed to insert vote session: %v", err)
			return err
		}

		for _, upd := range []struct {
			profileID string
			oldRating int
			delta     int
		}{
			{winnerID, winnerRating, +k},
			{loserID, loserRating, -k},
		} {
			newRating := upd.oldRating + upd.delta
			if _, err := tx.ExecContext(ctx,
				`UPDATE profiles SET rating = ?, updated_at = ? WHERE id = ?`,
				newRating, now, upd.profileID); err != nil {
				log.Error("failed to update rating for %s: %v", upd.profileID, err)
				return err
			}

			change := models.RatingChange{
				ID:            uuid.NewString(),
				ProfileID:     upd.profileID,
				OldRating:     upd.oldRating,
				NewRating:     newRating,
				ChangeAmount:  upd.delta,
				VoteSessionID: session.ID,
				CreatedAt:     now,
			}
			if _, err := tx.ExecContext(ctx, `
INSERT INTO rating_changes (id, profile_id, old_rating, new_rating, change_amount, vote_session_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, change.ID, change.ProfileID, change.OldRating, change.NewRating, change.ChangeAmount, change.VoteSessionID, change.CreatedAt); err != nil {
				log.Error("failed to insert rating change for %s: %v", upd.profileID, err)
				return err
			}
			changes = append(changes, change)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	log.Debug("vote applied: session=%s replayed=%v", session.ID, replayed)
	return changes, replayed, nil
}

func (r *voteRepository) RecordTie(ctx context.Context, session models.VoteSession) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("vote_repo")
	log.Debug("recording tie: session=%s", session.ID)

	replayed := false
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		exists, err := sessionExists(ctx, tx, session.ID)
		if err != nil {
			return err
		}
		if exists {
			replayed = true
			return nil
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO vote_sessions (id, profile1_id, profile2_id, winner_id, voted_equal, created_at)
VALUES (?, ?, ?, NULL, 1, ?)
`, session.ID, session.Profile1ID, session.Profile2ID, time.Now().UTC())
		if err != nil {
			log.Error("failed to insert tie session: %v", err)
		}
		return err
	})
	return replayed, err
}

func (r *voteRepository) GetSession(ctx context.Context, id string) (*models.VoteSession, error) {
	log := logger.FromContext(ctx).WithPrefix("vote_repo")

	var s models.VoteSession
	var winner sql.NullString
	err := r.db.QueryRowContext(ctx, `
SELECT id, profile1_id, profile2_id, winner_id, voted_equal, created_at
FROM vote_sessions
WHERE id = ?
`, id).Scan(&s.ID, &s.Profile1ID, &s.Profile2ID, &winner, &s.VotedEqual, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get vote session: %v", err)
		return nil, err
	}
	s.WinnerID = winner.String
	return &s, nil
}

func (r *voteRepository) ChangesForSession(ctx context.Context, sessionID string) ([]models.RatingChange, error) {
	return changesForSessionDB(ctx, r.db, sessionID)
}

func (r *voteRepository) LatestChange(ctx context.Context, profileID string) (*models.RatingChange, error) {
	log := logger.FromContext(ctx).WithPrefix("vote_repo")

	var c models.RatingChange
	err := r.db.QueryRowContext(ctx, `
SELECT id, profile_id, old_rating, new_rating, change_amount, vote_session_id, created_at
FROM rating_changes
WHERE profile_id = ?
ORDER BY created_at DESC, id DESC
LIMIT 1
`, profileID).Scan(&c.ID, &c.ProfileID, &c.OldRating, &c.NewRating, &c.ChangeAmount, &c.VoteSessionID, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get latest rating change: %v", err)
		return nil, err
	}
	return &c, nil
}

func (r *voteRepository) SumChanges(ctx context.Context) (int, error) {
	var sum int
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(change_amount), 0) FROM rating_changes`).Scan(&sum)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("vote_repo").Error("failed to sum rating changes: %v", err)
		return 0, err
	}
	return sum, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func sessionExists(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	var found string
	err := tx.QueryRowContext(ctx, `SELECT id FROM vote_sessions WHERE id = ?`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func changesForSession(ctx context.Context, tx *sql.Tx, sessionID string) ([]models.RatingChange, error) {
	return changesForSessionDB(ctx, tx, sessionID)
}

func changesForSessionDB(ctx context.Context, q queryer, sessionID string) ([]models.RatingChange, error) {
	rows, err := q.QueryContext(ctx, `
SELECT id, profile_id, old_rating, new_rating, change_amount, vote_session_id, created_at
FROM rating_changes
WHERE vote_session_id = ?
ORDER BY change_amount DESC
`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []models.RatingChange
	for rows.Next() {
		var c models.RatingChange
		if err := rows.Scan(&c.ID, &c.ProfileID, &c.OldRating, &c.NewRating, &c.ChangeAmount, &c.VoteSessionID, &c.CreatedAt); err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
