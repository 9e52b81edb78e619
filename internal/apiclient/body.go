package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// ErrNilFileContent is returned when a multipart file part has no content reader.
var ErrNilFileContent = errors.New("file part has no content")

// Body is a request payload. It is a closed set: JSONBody or MultipartBody.
// The variant decides which Content-Type the request carries.
type Body interface {
	encode() (r io.Reader, contentType string, err error)
}

// isNilBody reports whether b carries no payload, including typed-nil pointer variants.
func isNilBody(b Body) bool {
	switch v := b.(type) {
	case nil:
		return true
	case *JSONBody:
		return v == nil
	case *MultipartBody:
		return v == nil
	default:
		return false
	}
}

// JSONBody is serialized with encoding/json and sent as application/json.
type JSONBody struct {
	Payload any
}

func (b JSONBody) encode() (io.Reader, string, error) {
	data, err := json.Marshal(b.Payload)
	if err != nil {
		return nil, "", fmt.Errorf("encode json body: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}

// Field is a plain multipart form value.
type Field struct {
	Name  string
	Value string
}

// FilePart is a multipart file upload.
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Content     io.Reader
}

// MultipartBody is sent as multipart/form-data. Its Content-Type, boundary included,
// always comes from the writer that produced the body.
type MultipartBody struct {
	Files  []FilePart
	Fields []Field
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (b MultipartBody) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range b.Files {
		if f.Content == nil {
			return nil, "", fmt.Errorf("multipart field %q: %w", f.Field, ErrNilFileContent)
		}
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(f.Field), quoteEscaper.Replace(f.Filename)))
		h.Set("Content-Type", ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create multipart file part: %w", err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", fmt.Errorf("write multipart file part: %w", err)
		}
	}

	for _, f := range b.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", fmt.Errorf("write multipart field %q: %w", f.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
