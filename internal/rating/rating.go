// Package rating implements the fixed-increment rating scheme: every
// decisive vote moves the winner up and the loser down by the same constant
// K, regardless of the rating gap between them. The probabilistic
// expected-score weighting of classical ELO is intentionally not applied.
package rating

import (
	apperrors "github.com/dvhs/alumnirank/internal/errors"
)

// DefaultK is the rating adjustment magnitude per decisive vote.
const DefaultK = 15

// Apply returns the post-vote ratings for a winner and loser.
func Apply(winnerRating, loserRating, k int) (newWinner, newLoser int) {
	return winnerRating + k, loserRating - k
}

// ValidateVote checks the structural invariants of a vote submission before
// anything is persisted:
//
//   - the two participants are distinct
//   - a tie carries no winner
//   - a decisive vote names a winner that is one of the participants
func ValidateVote(profile1ID, profile2ID, winnerID string, votedEqual bool) error {
	if profile1ID == "" || profile2ID == "" {
		return apperrors.NewValidationError("profile ids", "both participants are required")
	}
	if profile1ID == profile2ID {
		return apperrors.NewValidationError("profile ids", "participants must be distinct")
	}
	if votedEqual {
		if winnerID != "" {
			return apperrors.NewValidationError("winner_id", "must be absent when voted_equal is set")
		}
		return nil
	}
	if winnerID == "" {
		return apperrors.NewValidationError("winner_id", "required unless voted_equal is set")
	}
	if winnerID != profile1ID && winnerID != profile2ID {
		return apperrors.NewValidationError("winner_id", "must be one of the two participants")
	}
	return nil
}
