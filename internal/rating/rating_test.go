package rating_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/dvhs/alumnirank/internal/errors"
	"github.com/dvhs/alumnirank/internal/rating"
)

func TestApply_FixedIncrement(t *testing.T) {
	tests := []struct {
		name          string
		winner, loser int
		k             int
		wantWinner    int
		wantLoser     int
	}{
		{name: "equal ratings", winner: 1000, loser: 1000, k: 15, wantWinner: 1015, wantLoser: 985},
		{name: "underdog wins, same delta", winner: 800, loser: 1600, k: 15, wantWinner: 815, wantLoser: 1585},
		{name: "favorite wins, same delta", winner: 1600, loser: 800, k: 15, wantWinner: 1615, wantLoser: 785},
		{name: "custom k", winner: 1000, loser: 1000, k: 32, wantWinner: 1032, wantLoser: 968},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotWinner, gotLoser := rating.Apply(tt.winner, tt.loser, tt.k)
			assert.Equal(t, tt.wantWinner, gotWinner)
			assert.Equal(t, tt.wantLoser, gotLoser)
		})
	}
}

func TestApply_ZeroSum(t *testing.T) {
	for _, pair := range [][2]int{{1000, 1000}, {1234, 876}, {15, 15}} {
		newWinner, newLoser := rating.Apply(pair[0], pair[1], rating.DefaultK)
		assert.Equal(t, 0, (newWinner-pair[0])+(newLoser-pair[1]))
	}
}

func TestValidateVote(t *testing.T) {
	tests := []struct {
		name       string
		p1, p2     string
		winner     string
		votedEqual bool
		wantErr    bool
	}{
		{name: "valid decisive vote", p1: "a", p2: "b", winner: "a"},
		{name: "winner is second participant", p1: "a", p2: "b", winner: "b"},
		{name: "valid tie", p1: "a", p2: "b", votedEqual: true},
		{name: "same participant twice", p1: "a", p2: "a", winner: "a", wantErr: true},
		{name: "missing participant", p1: "", p2: "b", winner: "b", wantErr: true},
		{name: "winner outside pair", p1: "a", p2: "b", winner: "c", wantErr: true},
		{name: "tie with winner set", p1: "a", p2: "b", winner: "a", votedEqual: true, wantErr: true},
		{name: "no winner and no tie", p1: "a", p2: "b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rating.ValidateVote(tt.p1, tt.p2, tt.winner, tt.votedEqual)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			appErr, ok := err.(*apperrors.AppError)
			assert.True(t, ok)
			assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
		})
	}
}
