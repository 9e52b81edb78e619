// Package model contains the data shapes exchanged with the StudyMate backend.
// Types here carry no transport or persistence logic.
package model

import "time"

// DocumentContent is the extracted text of an uploaded document.
type DocumentContent struct {
	Content string `json:"content"`
}

// Operation names an AI capability of the backend.
type Operation string

const (
	OpSummarize Operation = "summarize"
	OpExplain   Operation = "explain"
	OpQuiz      Operation = "quiz"
	OpAsk       Operation = "ask"
	OpSpeech    Operation = "text_to_speech"
)

// AIResult is the normalized result of every text-producing AI operation.
type AIResult struct {
	Operation  Operation `json:"operation"`
	ResultText string    `json:"result_text"`
}

// Audio is a synthesized speech payload as returned by the backend.
type Audio struct {
	ContentType string
	Data        []byte
}

// DiscussionMessage is a single entry on a document's discussion board.
type DiscussionMessage struct {
	DocumentID string `json:"document_id"`
	UserID     string `json:"user_id"`
	UserName   string `json:"user_name"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
}

// Activity is a journal record of one finished client call.
type Activity struct {
	ID           string        `json:"id"`
	Operation    string        `json:"operation"`
	PrincipalUID string        `json:"principal_uid"`
	State        string        `json:"state"`
	Error        string        `json:"error,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration_ns"`
}
