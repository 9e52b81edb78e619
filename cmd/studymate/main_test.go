package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBackend(t *testing.T) *[]string {
	t.Helper()
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.EscapedPath())
		switch r.URL.Path {
		case "/documents/list":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"documents":[{"id":"uid-1/a.pdf","name":"Cells"}]}`)
		case "/ai/summarize":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"summary":"Cells are small."}`)
		case "/ai/questions":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"quiz":"What is a cell?\n\nWhat is ATP?"}`)
		case "/ai/text-to-speech":
			w.Header().Set("Content-Type", "audio/mpeg")
			_, _ = io.WriteString(w, "ID3audio")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "uid-1"}).SignedString([]byte("k"))
	require.NoError(t, err)
	t.Setenv("BACKEND_BASE_URL", srv.URL)
	t.Setenv("IDENTITY_MODE", "static")
	t.Setenv("IDENTITY_STATIC_TOKEN", tok)
	t.Setenv("DB_HOST", "")
	t.Setenv("MINIO_ENDPOINT", "")
	return &paths
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestDocumentsList(t *testing.T) {
	paths := setupBackend(t)

	out, err := execute(t, "documents", "list")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "uid-1/a.pdf"`)
	assert.Equal(t, []string{"GET /documents/list"}, *paths)
}

func TestSummarizeAndQuiz(t *testing.T) {
	setupBackend(t)

	out, err := execute(t, "summarize", "uid-1/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Cells are small.\n", out)

	out, err = execute(t, "quiz", "uid-1/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "1. What is a cell?\n\n2. What is ATP?\n\n", out)
}

func TestSpeakWritesFile(t *testing.T) {
	setupBackend(t)
	path := filepath.Join(t.TempDir(), "out.mp3")

	out, err := execute(t, "speak", "--out", path, "hello", "there")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "wrote 8 bytes"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ID3audio", string(data))
}

func TestBackendError(t *testing.T) {
	setupBackend(t)

	_, err := execute(t, "documents", "content", "missing")
	assert.ErrorContains(t, err, "404")
}

func TestArgsValidation(t *testing.T) {
	_, err := execute(t, "ask", "only-id")
	assert.Error(t, err)
}
