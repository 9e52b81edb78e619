package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"studymate/internal/model"
)

type documentRequest struct {
	DocumentID string `json:"document_id"`
}

type questionRequest struct {
	DocumentID string `json:"document_id"`
	Question   string `json:"question"`
}

type speechRequest struct {
	Text string `json:"text"`
}

// aiResponse accepts every result field name the backend has used.
type aiResponse struct {
	Summary     json.RawMessage `json:"summary"`
	Explanation json.RawMessage `json:"explanation"`
	Quiz        json.RawMessage `json:"quiz"`
	Answer      json.RawMessage `json:"answer"`
	ResultText  json.RawMessage `json:"result_text"`
	ResultCamel json.RawMessage `json:"resultText"`
}

func (r aiResponse) text() (string, bool) {
	for _, raw := range []json.RawMessage{r.ResultText, r.ResultCamel, r.Summary, r.Explanation, r.Quiz, r.Answer} {
		if s, ok := rawText(raw); ok {
			return s, true
		}
	}
	return "", false
}

// rawText reads a string, or a list joined by blank lines.
func rawText(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return "", false
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		var v string
		if err := json.Unmarshal(it, &v); err == nil {
			parts = append(parts, v)
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, it); err == nil {
			parts = append(parts, buf.String())
		}
	}
	return strings.Join(parts, "\n\n"), true
}

func (c *Client) textOperation(ctx context.Context, op model.Operation, path string, payload any) (*model.AIResult, error) {
	var out aiResponse
	_, err := c.Do(ctx, Request{
		Operation: string(op),
		Method:    http.MethodPost,
		Path:      path,
		Body:      JSONBody{Payload: payload},
		Out:       &out,
	})
	if err != nil {
		return nil, err
	}
	text, ok := out.text()
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingResult)
	}
	return &model.AIResult{Operation: op, ResultText: text}, nil
}

// Summarize asks the backend for a summary of the document.
func (c *Client) Summarize(ctx context.Context, documentID string) (*model.AIResult, error) {
	if documentID == "" {
		return nil, ErrDocumentIDRequired
	}
	return c.textOperation(ctx, model.OpSummarize, c.routes.Summarize, documentRequest{DocumentID: documentID})
}

// Explain asks the backend for an explanation of the document.
func (c *Client) Explain(ctx context.Context, documentID string) (*model.AIResult, error) {
	if documentID == "" {
		return nil, ErrDocumentIDRequired
	}
	return c.textOperation(ctx, model.OpExplain, c.routes.Explain, documentRequest{DocumentID: documentID})
}

// GenerateQuiz returns quiz questions as one text; items are separated by blank lines.
func (c *Client) GenerateQuiz(ctx context.Context, documentID string) (*model.AIResult, error) {
	if documentID == "" {
		return nil, ErrDocumentIDRequired
	}
	return c.textOperation(ctx, model.OpQuiz, c.routes.Questions, documentRequest{DocumentID: documentID})
}

// AskQuestion asks a free-form question about the document.
func (c *Client) AskQuestion(ctx context.Context, documentID, question string) (*model.AIResult, error) {
	if documentID == "" {
		return nil, ErrDocumentIDRequired
	}
	return c.textOperation(ctx, model.OpAsk, c.routes.Ask, questionRequest{DocumentID: documentID, Question: question})
}

// TextToSpeech returns the synthesized audio bytes. Empty text is not checked here.
func (c *Client) TextToSpeech(ctx context.Context, text string) (*model.Audio, error) {
	res, err := c.Do(ctx, Request{
		Operation: string(model.OpSpeech),
		Method:    http.MethodPost,
		Path:      c.routes.Speech,
		Body:      JSONBody{Payload: speechRequest{Text: text}},
		Expect:    ResponseBinary,
	})
	if err != nil {
		return nil, err
	}
	ct := res.ContentType
	if ct == "" {
		ct = "audio/mpeg"
	}
	return &model.Audio{ContentType: ct, Data: res.Data}, nil
}
