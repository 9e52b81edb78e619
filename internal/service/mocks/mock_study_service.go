package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"studymate/internal/model"
	"studymate/internal/repository"
	"studymate/internal/service"
	"studymate/internal/storage"
)

type MockStudyService struct {
	mock.Mock
}

var _ service.StudyService = (*MockStudyService)(nil)

func (m *MockStudyService) Upload(ctx context.Context, in service.UploadInput) (*model.Document, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockStudyService) Documents(ctx context.Context) ([]model.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockStudyService) Content(ctx context.Context, documentID string) (*model.DocumentContent, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentContent), args.Error(1)
}

func (m *MockStudyService) Summarize(ctx context.Context, documentID string) (*model.AIResult, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AIResult), args.Error(1)
}

func (m *MockStudyService) Explain(ctx context.Context, documentID string) (*model.AIResult, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AIResult), args.Error(1)
}

func (m *MockStudyService) Quiz(ctx context.Context, documentID string) (*service.Quiz, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Quiz), args.Error(1)
}

func (m *MockStudyService) Ask(ctx context.Context, documentID, question string) (*model.AIResult, error) {
	args := m.Called(ctx, documentID, question)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AIResult), args.Error(1)
}

func (m *MockStudyService) Discuss(ctx context.Context, documentID, message string) error {
	args := m.Called(ctx, documentID, message)
	return args.Error(0)
}

func (m *MockStudyService) Discussions(ctx context.Context, documentID string) ([]model.DiscussionMessage, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DiscussionMessage), args.Error(1)
}

func (m *MockStudyService) Speak(ctx context.Context, text string) (*service.AudioClip, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AudioClip), args.Error(1)
}

func (m *MockStudyService) OpenClip(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, key)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockStudyService) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStudyService) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStudyService) Activity(ctx context.Context, page repository.PageQuery) (*repository.PageResult[model.Activity], error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Activity]), args.Error(1)
}
