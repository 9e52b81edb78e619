package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_Info(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, time.UTC).With("apiclient")

	l.Info("request_sent", map[string]any{"path": "/documents/list"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "request_sent", entry["msg"])
	assert.Equal(t, "apiclient", entry["component"])
	assert.Equal(t, "/documents/list", entry["path"])
	assert.NotEmpty(t, entry["ts"])
}

func TestLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, nil)

	l.Error("sign_in_failed", errors.New("popup blocked"), nil)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "popup blocked", entry["error"])
	_, hasComponent := entry["component"]
	assert.False(t, hasComponent)
}

func TestLogger_OneLinePerEntry(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, time.UTC)

	l.Info("a", nil)
	l.Info("b", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.UTC, Location("Not/AZone"))
	assert.Equal(t, "UTC", Location("UTC").String())
}
