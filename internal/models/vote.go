package models

import "time"

// VoteSession is the immutable record of one completed pairwise comparison.
// When VotedEqual is true WinnerID is empty; otherwise WinnerID is one of
// the two participants.
type VoteSession struct {
	ID         string    `json:"id"`
	Profile1ID string    `json:"profile1_id"`
	Profile2ID string    `json:"profile2_id"`
	WinnerID   string    `json:"winner_id,omitempty"`
	VotedEqual bool      `json:"voted_equal"`
	CreatedAt  time.Time `json:"created_at"`
}

// LoserID returns the participant that did not win. Empty for ties.
func (v VoteSession) LoserID() string {
	switch {
	case v.VotedEqual || v.WinnerID == "":
		return ""
	case v.WinnerID == v.Profile1ID:
		return v.Profile2ID
	default:
		return v.Profile1ID
	}
}

// RatingChange is one append-only ledger entry: a single profile's rating
// delta caused by a single vote session.
type RatingChange struct {
	ID            string    `json:"id"`
	ProfileID     string    `json:"profile_id"`
	OldRating     int       `json:"old_rating"`
	NewRating     int       `json:"new_rating"`
	ChangeAmount  int       `json:"change_amount"`
	VoteSessionID string    `json:"vote_session_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// VotePair is the next two profiles to compare.
type VotePair struct {
	Profile1 Profile `json:"profile1"`
	Profile2 Profile `json:"profile2"`
}

// VoteResult is returned to the caller after a vote is recorded. Changes is
// empty for ties.
type VoteResult struct {
	Session  VoteSession    `json:"session"`
	Changes  []RatingChange `json:"changes,omitempty"`
	Replayed bool           `json:"replayed,omitempty"`
}
