package mocks

import (
	"context"
	"io"
	"time"

	"kerneltest/internal/ingest"
	"kerneltest/internal/model"
	"kerneltest/internal/service"
	"kerneltest/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockResultService struct {
	mock.Mock
}

var _ service.ResultService = (*MockResultService)(nil)

func (m *MockResultService) Ingest(ctx context.Context, sub service.Submission) (ingest.Outcome, error) {
	args := m.Called(ctx, sub)
	return args.Get(0).(ingest.Outcome), args.Error(1)
}

func (m *MockResultService) List(ctx context.Context, f service.ListFilter) (*service.ResultListResult, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ResultListResult), args.Error(1)
}

func (m *MockResultService) Get(ctx context.Context, id string) (*model.TestRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TestRun), args.Error(1)
}

func (m *MockResultService) OpenLog(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, id)
	var rc io.ReadCloser
	if v := args.Get(0); v != nil {
		rc = v.(io.ReadCloser)
	}
	return rc, args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockResultService) LogURL(ctx context.Context, id string) (string, time.Duration, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Get(1).(time.Duration), args.Error(2)
}

func (m *MockResultService) Reserved() string {
	return m.Called().String(0)
}
