package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Document
	}{
		{
			name: "canonical fields",
			in:   `{"id":"a","name":"Notes","created_at":"2024-03-01T10:00:00Z"}`,
			want: Document{ID: "a", Name: "Notes", CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		},
		{
			name: "legacy metadata without id",
			in: `{"title":"Cells","subject":"Biology","topic":"Mitosis","storage_path":"uid/cells.pdf",
				"user_id":"uid","created_at":"2024-03-01T10:00:00.123456"}`,
			want: Document{
				ID:          "uid/cells.pdf",
				Name:        "Cells",
				Subject:     "Biology",
				Topic:       "Mitosis",
				StoragePath: "uid/cells.pdf",
				UserID:      "uid",
				CreatedAt:   time.Date(2024, 3, 1, 10, 0, 0, 123456000, time.UTC),
			},
		},
		{
			name: "upload acknowledgement",
			in:   `{"message":"Document uploaded successfully","file_name":"uid/a.pdf"}`,
			want: Document{ID: "uid/a.pdf", Name: "uid/a.pdf", StoragePath: "uid/a.pdf"},
		},
		{
			name: "document_id and camelCase timestamp",
			in:   `{"document_id":"d1","document_name":"Essay","createdAt":"not a date"}`,
			want: Document{ID: "d1", Name: "Essay"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Document
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDocument_UnmarshalJSON_Invalid(t *testing.T) {
	var d Document
	assert.Error(t, json.Unmarshal([]byte(`["not","an","object"]`), &d))
}
