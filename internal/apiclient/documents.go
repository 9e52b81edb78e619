package apiclient

import (
	"context"
	"io"
	"net/http"

	"studymate/internal/model"
)

// UploadRequest is a document to upload. Name is sent as both document_name and title.
type UploadRequest struct {
	File        io.Reader
	Filename    string
	ContentType string
	Name        string
	Subject     string
	Topic       string
}

// UploadDocument sends the file as multipart/form-data and returns the stored descriptor.
func (c *Client) UploadDocument(ctx context.Context, in UploadRequest) (*model.Document, error) {
	fields := []Field{
		{Name: "document_name", Value: in.Name},
		{Name: "title", Value: in.Name},
	}
	if in.Subject != "" {
		fields = append(fields, Field{Name: "subject", Value: in.Subject})
	}
	if in.Topic != "" {
		fields = append(fields, Field{Name: "topic", Value: in.Topic})
	}

	var doc model.Document
	_, err := c.Do(ctx, Request{
		Operation: "upload_document",
		Method:    http.MethodPost,
		Path:      c.routes.Upload,
		Body: MultipartBody{
			Files: []FilePart{{
				Field:       "file",
				Filename:    in.Filename,
				ContentType: in.ContentType,
				Content:     in.File,
			}},
			Fields: fields,
		},
		Out: &doc,
	})
	if err != nil {
		return nil, err
	}
	if in.Name != "" && (doc.Name == "" || doc.Name == doc.StoragePath) {
		doc.Name = in.Name
	}
	return &doc, nil
}

// ListDocuments returns the signed-in user's documents in the order the backend sent them.
func (c *Client) ListDocuments(ctx context.Context) ([]model.Document, error) {
	var out struct {
		Documents []model.Document `json:"documents"`
	}
	_, err := c.Do(ctx, Request{
		Operation: "list_documents",
		Method:    http.MethodGet,
		Path:      c.routes.List,
		Out:       &out,
	})
	if err != nil {
		return nil, err
	}
	if out.Documents == nil {
		return []model.Document{}, nil
	}
	return out.Documents, nil
}

// GetDocumentContent fetches the extracted text of a document.
func (c *Client) GetDocumentContent(ctx context.Context, documentID string) (*model.DocumentContent, error) {
	if documentID == "" {
		return nil, ErrDocumentIDRequired
	}
	var out model.DocumentContent
	_, err := c.Do(ctx, Request{
		Operation: "get_document_content",
		Method:    http.MethodGet,
		Path:      documentPath(c.routes.Content, documentID),
		Out:       &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
