package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"maps"
	"net/url"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	data []byte
	info ObjectInfo
}

// Memory is an in-process clip store. URLs point at a path the companion
// server serves the clips from.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	prefix  string
}

// NewMemory returns an empty store whose clip URLs start with urlPrefix (e.g. "/audio/").
func NewMemory(urlPrefix string) *Memory {
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &Memory{objects: make(map[string]memoryObject), prefix: urlPrefix}
}

func (m *Memory) Put(_ context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("put clip %s: %w", key, err)
	}
	if opt.Size >= 0 && int64(len(data)) != opt.Size {
		return ObjectInfo{}, fmt.Errorf("put clip %s: read %d bytes, expected %d", key, len(data), opt.Size)
	}
	sum := md5.Sum(data)
	info := ObjectInfo{
		Key:          key,
		Size:         int64(len(data)),
		ETag:         hex.EncodeToString(sum[:]),
		ContentType:  opt.ContentType,
		LastModified: time.Now().UTC(),
		Metadata:     maps.Clone(opt.Metadata),
	}

	m.mu.Lock()
	m.objects[key] = memoryObject{data: data, info: info}
	m.mu.Unlock()
	return info, nil
}

func (m *Memory) Get(_ context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ObjectInfo{}, fmt.Errorf("clip %s: %w", key, ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.info, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// PresignGet ignores expiry; memory clips live until deleted.
func (m *Memory) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("clip %s: %w", key, ErrNotFound)
	}
	return m.prefix + url.PathEscape(key), nil
}

// Len is the number of live clips.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
