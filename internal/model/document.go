package model

import (
	"encoding/json"
	"time"
)

// Document is the descriptor the backend returns for an uploaded file.
// The client only relies on ID for follow-up calls; the other fields are informational.
type Document struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Subject     string    `json:"subject,omitempty"`
	Topic       string    `json:"topic,omitempty"`
	StoragePath string    `json:"storage_path,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// backend releases disagree on field names, so every alias seen in the wild is accepted.
type documentWire struct {
	ID           string `json:"id"`
	DocumentID   string `json:"document_id"`
	Name         string `json:"name"`
	DocumentName string `json:"document_name"`
	Title        string `json:"title"`
	FileName     string `json:"file_name"`
	Subject      string `json:"subject"`
	Topic        string `json:"topic"`
	StoragePath  string `json:"storage_path"`
	UserID       string `json:"user_id"`
	CreatedAt    string `json:"created_at"`
	CreatedAtJS  string `json:"createdAt"`
}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// UnmarshalJSON decodes a descriptor, falling back to the storage path as identifier
// when the backend does not return an explicit id.
func (d *Document) UnmarshalJSON(b []byte) error {
	var w documentWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	*d = Document{
		ID:          firstNonEmpty(w.ID, w.DocumentID, w.StoragePath, w.FileName),
		Name:        firstNonEmpty(w.Name, w.DocumentName, w.Title, w.FileName),
		Subject:     w.Subject,
		Topic:       w.Topic,
		StoragePath: firstNonEmpty(w.StoragePath, w.FileName),
		UserID:      w.UserID,
		CreatedAt:   parseCreatedAt(firstNonEmpty(w.CreatedAt, w.CreatedAtJS)),
	}
	return nil
}

func parseCreatedAt(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
