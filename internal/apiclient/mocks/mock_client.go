package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"studymate/internal/apiclient"
	"studymate/internal/model"
)

// MockClient mocks the backend operations of apiclient.Client.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) UploadDocument(ctx context.Context, in apiclient.UploadRequest) (*model.Document, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockClient) ListDocuments(ctx context.Context) ([]model.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockClient) GetDocumentContent(ctx context.Context, documentID string) (*model.DocumentContent, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentContent), args.Error(1)
}

func (m *MockClient) Summarize(ctx context.Context, documentID string) (*model.AIResult, error) {
	return m.aiResult(m.Called(ctx, documentID))
}

func (m *MockClient) Explain(ctx context.Context, documentID string) (*model.AIResult, error) {
	return m.aiResult(m.Called(ctx, documentID))
}

func (m *MockClient) GenerateQuiz(ctx context.Context, documentID string) (*model.AIResult, error) {
	return m.aiResult(m.Called(ctx, documentID))
}

func (m *MockClient) AskQuestion(ctx context.Context, documentID, question string) (*model.AIResult, error) {
	return m.aiResult(m.Called(ctx, documentID, question))
}

func (m *MockClient) aiResult(args mock.Arguments) (*model.AIResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AIResult), args.Error(1)
}

func (m *MockClient) TextToSpeech(ctx context.Context, text string) (*model.Audio, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Audio), args.Error(1)
}

func (m *MockClient) PostDiscussion(ctx context.Context, documentID, message string) error {
	args := m.Called(ctx, documentID, message)
	return args.Error(0)
}

func (m *MockClient) ListDiscussions(ctx context.Context, documentID string) ([]model.DiscussionMessage, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DiscussionMessage), args.Error(1)
}
