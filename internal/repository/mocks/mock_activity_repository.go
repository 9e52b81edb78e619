package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"studymate/internal/model"
	"studymate/internal/repository"
)

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Record(ctx context.Context, a *model.Activity) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockActivityRepository) FindByID(ctx context.Context, id string) (*model.Activity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Activity), args.Error(1)
}

func (m *MockActivityRepository) List(ctx context.Context, f repository.ActivityFilter) (*repository.PageResult[model.Activity], error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Activity]), args.Error(1)
}
