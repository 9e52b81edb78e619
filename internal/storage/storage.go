// Package storage holds the clip store: short-lived playable audio objects
// produced by text-to-speech. Objects are streamed; nothing touches local disk.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("object not found")

// PutObjectOptions are optional upload parameters.
// Size is the exact byte count, or -1 when unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is implemented by the MinIO and in-memory clip stores.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get returns ErrNotFound for unknown keys. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete is idempotent.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a URL the object can be fetched from without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
