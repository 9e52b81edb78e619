// Package service holds the caller-level study workflows: input validation that must
// happen before any backend request, quiz splitting, the audio clip lifecycle and
// activity journaling.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"studymate/internal/apiclient"
	"studymate/internal/call"
	"studymate/internal/identity"
	"studymate/internal/logging"
	"studymate/internal/model"
	"studymate/internal/repository"
	"studymate/internal/storage"
)

var (
	ErrFileRequired     = errors.New("file is required")
	ErrNameRequired     = errors.New("document name is required")
	ErrUnsupportedType  = errors.New("unsupported file type: only PDF, JPEG and PNG are allowed")
	ErrQuestionRequired = errors.New("question is required")
	ErrMessageRequired  = errors.New("message is required")
	ErrEmptyText        = errors.New("text is required")
	ErrClipNotFound     = errors.New("audio clip not found")
)

// allowedUploadTypes mirrors what the backend accepts.
var allowedUploadTypes = []string{"application/pdf", "image/jpeg", "image/png"}

// Backend is the slice of the API client the service calls.
type Backend interface {
	UploadDocument(ctx context.Context, in apiclient.UploadRequest) (*model.Document, error)
	ListDocuments(ctx context.Context) ([]model.Document, error)
	GetDocumentContent(ctx context.Context, documentID string) (*model.DocumentContent, error)
	Summarize(ctx context.Context, documentID string) (*model.AIResult, error)
	Explain(ctx context.Context, documentID string) (*model.AIResult, error)
	GenerateQuiz(ctx context.Context, documentID string) (*model.AIResult, error)
	AskQuestion(ctx context.Context, documentID, question string) (*model.AIResult, error)
	TextToSpeech(ctx context.Context, text string) (*model.Audio, error)
	PostDiscussion(ctx context.Context, documentID, message string) error
	ListDiscussions(ctx context.Context, documentID string) ([]model.DiscussionMessage, error)
}

// Principals reports who is signed in; used to attribute journal entries and clips.
type Principals interface {
	CurrentPrincipal() *identity.Principal
}

// UploadInput is a document chosen by the user.
type UploadInput struct {
	File     io.Reader
	Filename string
	Name     string
	Subject  string
	Topic    string
}

// Quiz is a generated quiz split into its questions.
type Quiz struct {
	Raw   string   `json:"raw"`
	Items []string `json:"items"`
}

// AudioClip is a playable handle for synthesized speech. It must be released.
type AudioClip struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// StudyService is the caller layer over the API client.
type StudyService interface {
	Upload(ctx context.Context, in UploadInput) (*model.Document, error)
	Documents(ctx context.Context) ([]model.Document, error)
	Content(ctx context.Context, documentID string) (*model.DocumentContent, error)
	Summarize(ctx context.Context, documentID string) (*model.AIResult, error)
	Explain(ctx context.Context, documentID string) (*model.AIResult, error)
	Quiz(ctx context.Context, documentID string) (*Quiz, error)
	Ask(ctx context.Context, documentID, question string) (*model.AIResult, error)
	Discuss(ctx context.Context, documentID, message string) error
	Discussions(ctx context.Context, documentID string) ([]model.DiscussionMessage, error)

	// Speak synthesizes text into a new clip and releases the previous one.
	Speak(ctx context.Context, text string) (*AudioClip, error)
	// OpenClip streams a live clip. The caller closes the reader.
	OpenClip(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error)
	Release(ctx context.Context, key string) error
	// Close releases every live clip.
	Close(ctx context.Context) error

	// Activity lists journaled calls for the signed-in principal.
	Activity(ctx context.Context, page repository.PageQuery) (*repository.PageResult[model.Activity], error)
}

// Deps are the collaborators of the study service. Journal is optional.
type Deps struct {
	API        Backend
	Principals Principals
	Clips      storage.Storage
	Journal    repository.ActivityRepository
	Log        *logging.Logger
	ClipTTL    time.Duration
}

type studyService struct {
	Deps
	clips *clipSet
}

// NewStudyService constructs a StudyService.
func NewStudyService(d Deps) StudyService {
	if d.Log == nil {
		d.Log = logging.Default()
	}
	d.Log = d.Log.With("service")
	if d.ClipTTL <= 0 {
		d.ClipTTL = 15 * time.Minute
	}
	return &studyService{Deps: d, clips: newClipSet()}
}

// run drives fn through a call and journals the terminal snapshot.
func run[T any](ctx context.Context, s *studyService, op string, fn func(context.Context) (T, error)) (T, error) {
	snap := call.Run(ctx, op, fn)
	s.journal(ctx, op, snap.State, snap.Err, snap.StartedAt, snap.Duration())
	return snap.Value, snap.Err
}

func (s *studyService) journal(ctx context.Context, op string, state call.State, err error, started time.Time, d time.Duration) {
	if s.Journal == nil {
		return
	}
	a := &model.Activity{
		ID:           uuid.NewString(),
		Operation:    op,
		PrincipalUID: s.principalUID(),
		State:        state.String(),
		StartedAt:    started.UTC(),
		Duration:     d,
	}
	if err != nil {
		a.Error = err.Error()
	}
	// journal failures never fail the user's call
	if jerr := s.Journal.Record(context.WithoutCancel(ctx), a); jerr != nil {
		s.Log.Error("journal_record_failed", jerr, map[string]any{"operation": op})
	}
}

func (s *studyService) principalUID() string {
	if s.Principals == nil {
		return ""
	}
	if p := s.Principals.CurrentPrincipal(); p != nil {
		return p.UID
	}
	return ""
}

func (s *studyService) Upload(ctx context.Context, in UploadInput) (*model.Document, error) {
	return run(ctx, s, "upload_document", func(ctx context.Context) (*model.Document, error) {
		if in.File == nil {
			return nil, ErrFileRequired
		}
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		file, ct, err := sniffUpload(in.File)
		if err != nil {
			return nil, err
		}
		return s.API.UploadDocument(ctx, apiclient.UploadRequest{
			File:        file,
			Filename:    in.Filename,
			ContentType: ct,
			Name:        name,
			Subject:     strings.TrimSpace(in.Subject),
			Topic:       strings.TrimSpace(in.Topic),
		})
	})
}

// sniffUpload detects the file type from its leading bytes and returns a reader
// that still yields the whole file.
func sniffUpload(r io.Reader) (io.Reader, string, error) {
	var head bytes.Buffer
	mt, err := mimetype.DetectReader(io.TeeReader(r, &head))
	if err != nil {
		return nil, "", fmt.Errorf("detect file type: %w", err)
	}
	for _, allowed := range allowedUploadTypes {
		if mt.Is(allowed) {
			return io.MultiReader(&head, r), allowed, nil
		}
	}
	return nil, "", fmt.Errorf("%w (got %s)", ErrUnsupportedType, mt.String())
}

func (s *studyService) Documents(ctx context.Context) ([]model.Document, error) {
	return run(ctx, s, "list_documents", s.API.ListDocuments)
}

func (s *studyService) Content(ctx context.Context, documentID string) (*model.DocumentContent, error) {
	return run(ctx, s, "get_document_content", func(ctx context.Context) (*model.DocumentContent, error) {
		return s.API.GetDocumentContent(ctx, documentID)
	})
}

func (s *studyService) Summarize(ctx context.Context, documentID string) (*model.AIResult, error) {
	return run(ctx, s, string(model.OpSummarize), func(ctx context.Context) (*model.AIResult, error) {
		return s.API.Summarize(ctx, documentID)
	})
}

func (s *studyService) Explain(ctx context.Context, documentID string) (*model.AIResult, error) {
	return run(ctx, s, string(model.OpExplain), func(ctx context.Context) (*model.AIResult, error) {
		return s.API.Explain(ctx, documentID)
	})
}

func (s *studyService) Quiz(ctx context.Context, documentID string) (*Quiz, error) {
	return run(ctx, s, string(model.OpQuiz), func(ctx context.Context) (*Quiz, error) {
		res, err := s.API.GenerateQuiz(ctx, documentID)
		if err != nil {
			return nil, err
		}
		return &Quiz{Raw: res.ResultText, Items: SplitQuiz(res.ResultText)}, nil
	})
}

// SplitQuiz splits quiz text into items on blank lines. Items are trimmed; empty ones are dropped.
func SplitQuiz(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	items := make([]string, 0)
	for _, part := range strings.Split(text, "\n\n") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

func (s *studyService) Ask(ctx context.Context, documentID, question string) (*model.AIResult, error) {
	return run(ctx, s, string(model.OpAsk), func(ctx context.Context) (*model.AIResult, error) {
		q := strings.TrimSpace(question)
		if q == "" {
			return nil, ErrQuestionRequired
		}
		return s.API.AskQuestion(ctx, documentID, q)
	})
}

func (s *studyService) Discuss(ctx context.Context, documentID, message string) error {
	_, err := run(ctx, s, "post_discussion", func(ctx context.Context) (struct{}, error) {
		m := strings.TrimSpace(message)
		if m == "" {
			return struct{}{}, ErrMessageRequired
		}
		return struct{}{}, s.API.PostDiscussion(ctx, documentID, m)
	})
	return err
}

func (s *studyService) Discussions(ctx context.Context, documentID string) ([]model.DiscussionMessage, error) {
	return run(ctx, s, "list_discussions", func(ctx context.Context) ([]model.DiscussionMessage, error) {
		return s.API.ListDiscussions(ctx, documentID)
	})
}

func (s *studyService) Activity(ctx context.Context, page repository.PageQuery) (*repository.PageResult[model.Activity], error) {
	if s.Journal == nil {
		return &repository.PageResult[model.Activity]{Items: []model.Activity{}}, nil
	}
	if page.Limit <= 0 {
		page.Limit = 20
	}
	if page.Offset < 0 {
		page.Offset = 0
	}
	return s.Journal.List(ctx, repository.ActivityFilter{PrincipalUID: s.principalUID(), Page: page})
}
