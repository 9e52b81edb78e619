package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"studymate/internal/model"
)

// PostDiscussion adds a message to the document's discussion board.
// The backend reads the message from the query string.
func (c *Client) PostDiscussion(ctx context.Context, documentID, message string) error {
	if documentID == "" {
		return ErrDocumentIDRequired
	}
	_, err := c.Do(ctx, Request{
		Operation: "post_discussion",
		Method:    http.MethodPost,
		Path:      documentPath(c.routes.Discussions, documentID),
		Query:     url.Values{"message": {message}},
	})
	return err
}

// ListDiscussions returns the document's discussion messages, oldest first.
func (c *Client) ListDiscussions(ctx context.Context, documentID string) ([]model.DiscussionMessage, error) {
	if documentID == "" {
		return nil, ErrDocumentIDRequired
	}
	var out struct {
		Messages []model.DiscussionMessage `json:"messages"`
	}
	_, err := c.Do(ctx, Request{
		Operation: "list_discussions",
		Method:    http.MethodGet,
		Path:      documentPath(c.routes.Discussions, documentID),
		Out:       &out,
	})
	if err != nil {
		return nil, err
	}
	if out.Messages == nil {
		return []model.DiscussionMessage{}, nil
	}
	return out.Messages, nil
}
