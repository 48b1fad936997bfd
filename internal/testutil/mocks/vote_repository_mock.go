package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dvhs/alumnirank/internal/models"
)

// MockVoteRepository is a mock implementation of repository.VoteRepository
type MockVoteRepository struct {
	mock.Mock
}

func (m *MockVoteRepository) ApplyVote(ctx context.Context, session models.VoteSession, k int) ([]models.RatingChange, bool, error) {
	args := m.Called(ctx, session, k)
	var changes []models.RatingChange
	if args.Get(0) != nil {
		changes = args.Get(0).([]models.RatingChange)
	}
	return changes, args.Bool(1), args.Error(2)
}

func (m *MockVoteRepository) RecordTie(ctx context.Context, session models.VoteSession) (bool, error) {
	args := m.Called(ctx, session)
	return args.Bool(0), args.Error(1)
}

func (m *MockVoteRepository) GetSession(ctx context.Context, id string) (*models.VoteSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VoteSession), args.Error(1)
}

func (m *MockVoteRepository) ChangesForSession(ctx context.Context, sessionID string) ([]models.RatingChange, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RatingChange), args.Error(1)
}

func (m *MockVoteRepository) LatestChange(ctx context.Context, profileID string) (*models.RatingChange, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RatingChange), args.Error(1)
}

func (m *MockVoteRepository) SumChanges(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
