package mocks

import (
	"context"

	"kerneltest/internal/model"
	"kerneltest/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) Create(ctx context.Context, run *model.TestRun) (*model.TestRun, error) {
	args := m.Called(ctx, run)
	if f, ok := args.Get(0).(func(context.Context, *model.TestRun) *model.TestRun); ok {
		return f(ctx, run), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TestRun), args.Error(1)
}

func (m *MockResultRepository) FindByID(ctx context.Context, id string) (*model.TestRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TestRun), args.Error(1)
}

func (m *MockResultRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.TestRun], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.TestRun]), args.Error(1)
}
