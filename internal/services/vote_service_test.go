package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dvhs/alumnirank/internal/errors"
	"github.com/dvhs/alumnirank/internal/models"
	"github.com/dvhs/alumnirank/internal/services"
	"github.com/dvhs/alumnirank/internal/stream"
	"github.com/dvhs/alumnirank/internal/testutil/mocks"
)

func newVoteService(profiles *mocks.MockProfileRepository, votes *mocks.MockVoteRepository, bus *stream.Bus) services.VoteService {
	var publisher stream.Publisher
	if bus != nil {
		publisher = bus
	}
	return services.NewVoteService(profiles, votes, nil, publisher, nil, 15, time.Second)
}

func votedProfile(id string) *models.Profile {
	return &models.Profile{ID: id, Name: id, Rating: 1000}
}

func TestSubmitVote_Decisive(t *testing.T) {
	profiles := new(mocks.MockProfileRepository)
	votes := new(mocks.MockVoteRepository)
	bus := stream.NewBus()
	sub := bus.Subscribe()
	defer sub.Close()

	profiles.On("Get", mock.Anything, "a").Return(votedProfile("a"), nil)
	profiles.On("Get", mock.Anything, "b").Return(votedProfile("b"), nil)

	changes := []models.RatingChange{
		{ID: "c1", ProfileID: "a", OldRating: 1000, NewRating: 1015, ChangeAmount: 15, VoteSessionID: "s1"},
		{ID: "c2", ProfileID: "b", OldRating: 1000, NewRating: 985, ChangeAmount: -15, VoteSessionID: "s1"},
	}
	votes.On("ApplyVote", mock.Anything, mock.MatchedBy(func(s models.VoteSession) bool {
		return s.ID == "s1" && s.WinnerID == "a" && !s.VotedEqual
	}), 15).Return(changes, false, nil)

	svc := newVoteService(profiles, votes, bus)
	result, err := svc.SubmitVote(context.Background(), services.SubmitVoteRequest{
		SessionID:  "s1",
		Profile1ID: "a",
		Profile2ID: "b",
		WinnerID:   "a",
	})
	require.NoError(t, err)
	assert.False(t, result.Replayed)
	assert.Len(t, result.Changes, 2)

	// Both rating updates reach stream subscribers.
	<-sub.Ready()
	events := sub.Drain()
	require.Len(t, events, 2)
	byProfile := map[string]stream.RatingEvent{}
	for _, e := range events {
		byProfile[e.ProfileID] = e
	}
	assert.Equal(t, 1015, byProfile["a"].Rating)
	assert.Equal(t, 985, byProfile["b"].Rating)

	votes.AssertExpectations(t)
	profiles.AssertExpectations(t)
}

func TestSubmitVote_GeneratesSessionID(t *testing.T) {
	profiles := new(mocks.MockProfileRepository)
	votes := new(mocks.MockVoteRepository)

	profiles.On("Get", mock.Anything, mock.Anything).Return(votedProfile("a"), nil)
	votes.On("ApplyVote", mock.Anything, mock.MatchedBy(func(s models.VoteSession) bool {
		return s.ID != ""
	}), 15).Return([]models.RatingChange{{}, {}}, false, nil)

	svc := newVoteService(profiles, votes, nil)
	result, err := svc.SubmitVote(context.Background(), services.SubmitVoteRequest{
		Profile1ID: "a",
		Profile2ID: "b",
		WinnerID:   "a",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Session.ID)
}

func TestSubmitVote_Replay_NoPublish(t *testing.T) {
	profiles := new(mocks.MockProfileRepository)
	votes := new(mocks.MockVoteRepository)
	bus := stream.NewBus()
	sub := bus.Subscribe()
	defer sub.Close()

	profiles.On("Get", mock.Anything, mock.Anything).Return(votedProfile("a"), nil)
	votes.On("ApplyVote", mock.Anything, mock.Anything, 15).
		Return([]models.RatingChange{{ID: "c1"}, {ID: "c2"}}, true, nil)

	svc := newVoteService(profiles, votes, bus)
	result, err := svc.SubmitVote(context.Background(), services.SubmitVoteRequest{
		SessionID:  "dup",
		Profile1ID: "a",
		Profile2ID: "b",
		WinnerID:   "a",
	})
	require.NoError(t, err)
	assert.True(t, result.Replayed)
	assert.Len(t, result.Changes, 2)

	// Replays are not re-broadcast.
	assert.Empty(t, sub.Drain())
}

func TestSubmitVote_Tie(t *testing.T) {
	profiles := new(mocks.MockProfileRepository)
	votes := new(mocks.MockVoteRepository)

	profiles.On("Get", mock.Anything, mock.Anything).Return(votedProfile("a"), nil)
	votes.On("RecordTie", mock.Anything, mock.MatchedBy(func(s models.VoteSession) bool {
		return s.VotedEqual && s.WinnerID == ""
	})).Return(false, nil)

	svc := newVoteService(profiles, votes, nil)
	result, err := svc.SubmitVote(context.Background(), services.SubmitVoteRequest{
		SessionID:  "tie",
		Profile1ID: "a",
		Profile2ID: "b",
		VotedEqual: true,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Changes)
	votes.AssertNotCalled(t, "ApplyVote", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitVote_ValidationErrors(t *testing.T) {
	svc := newVoteService(new(mocks.MockProfileRepository), new(mocks.MockVoteRepository), nil)

	tests := []struct {
		name string
		req  services.SubmitVoteRequest
	}{
		{"same profile", services.SubmitVoteRequest{Profile1ID: "a", Profile2ID: "a", WinnerID: "a"}},
		{"winner outside pair", services.SubmitVoteRequest{Profile1ID: "a", Profile2ID: "b", WinnerID: "c"}},
		{"tie with winner", services.SubmitVoteRequest{Profile1ID: "a", Profile2ID: "b", WinnerID: "a", VotedEqual: true}},
		{"no outcome", services.SubmitVoteRequest{Profile1ID: "a", Profile2ID: "b"}},
		{"missing participant", services.SubmitVoteRequest{Profile1ID: "", Profile2ID: "b", WinnerID: "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitVote(context.Background(), tt.req)
			require.Error(t, err)
			appErr, ok := err.(*apperrors.AppError)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
		})
	}
}

func TestSubmitVote_UnknownProfile(t *testing.T) {
	profiles := new(mocks.MockProfileRepository)
	votes := new(mocks.MockVoteRepository)

	profiles.On("Get", mock.Anything, "a").Return(votedProfile("a"), nil)
	profiles.On("Get", mock.Anything, "ghost").Return(nil, nil)

	svc := newVoteService(profiles, votes, nil)
	_, err := svc.SubmitVote(context.Background(), services.SubmitVoteRequest{
		SessionID:  "s1",
		Profile1ID: "a",
		Profile2ID: "ghost",
		WinnerID:   "a",
	})
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
	votes.AssertNotCalled(t, "ApplyVote", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitVote_StoreFailureIsRetryable(t *testing.T) {
	profiles := new(mocks.MockProfileRepository)
	votes := new(mocks.MockVoteRepository)

	profiles.On("Get", mock.Anything, mock.Anything).Return(votedProfile("a"), nil)
	votes.On("ApplyVote", mock.Anything, mock.Anything, 15).
		Return(nil, false, assert.AnError)

	svc := newVoteService(profiles, votes, nil)
	_, err := svc.SubmitVote(context.Background(), services.SubmitVoteRequest{
		SessionID:  "s1",
		Profile1ID: "a",
		Profile2ID: "b",
		WinnerID:   "a",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsRetryable(err))
}
