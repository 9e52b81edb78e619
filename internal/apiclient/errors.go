package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

var (
	// ErrNoCredentialSource is returned by New when no credential source is given.
	ErrNoCredentialSource = errors.New("credential source is required")
	// ErrDocumentIDRequired is returned before any request when a document id is empty.
	ErrDocumentIDRequired = errors.New("document id is required")
	// ErrMissingResult is returned when a successful AI response carries no result text.
	ErrMissingResult = errors.New("response has no result text")
)

// NetworkError means the request never produced a complete response.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx backend response normalized to a human-readable message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// errorFromResponse reads the backend's {"detail": ...} body. FastAPI validation
// failures carry a list of {"msg": ...} objects instead of a string.
// Without a usable detail the HTTP status text is used.
func errorFromResponse(code int, status string, body []byte) *APIError {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil && s != "" {
			return &APIError{StatusCode: code, Message: s}
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(payload.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			if len(msgs) > 0 {
				return &APIError{StatusCode: code, Message: strings.Join(msgs, "; ")}
			}
		}
	}
	return &APIError{StatusCode: code, Message: statusText(code, status)}
}

func statusText(code int, status string) string {
	if text := strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code))); text != "" {
		return text
	}
	if text := http.StatusText(code); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", code)
}
