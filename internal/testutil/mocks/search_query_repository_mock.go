package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dvhs/alumnirank/internal/models"
)

// MockSearchQueryRepository is a mock implementation of repository.SearchQueryRepository
type MockSearchQueryRepository struct {
	mock.Mock
}

func (m *MockSearchQueryRepository) Record(ctx context.Context, query string, resultsCount int) error {
	args := m.Called(ctx, query, resultsCount)
	return args.Error(0)
}

func (m *MockSearchQueryRepository) Recent(ctx context.Context, limit int) ([]models.SearchQuery, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SearchQuery), args.Error(1)
}
