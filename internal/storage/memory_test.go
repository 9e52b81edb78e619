package storage

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studymate/internal/config"
)

func TestMemory_Lifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("/audio")

	info, err := m.Put(ctx, "clip-1", strings.NewReader("ID3audio"), PutObjectOptions{
		Size: 8, ContentType: "audio/mpeg", Metadata: map[string]string{"principal": "uid-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8), info.Size)
	assert.NotEmpty(t, info.ETag)
	assert.Equal(t, 1, m.Len())

	u, err := m.PresignGet(ctx, "clip-1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "/audio/clip-1", u)

	rc, got, err := m.Get(ctx, "clip-1")
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "ID3audio", string(data))
	assert.Equal(t, "audio/mpeg", got.ContentType)
	assert.Equal(t, "uid-1", got.Metadata["principal"])

	require.NoError(t, m.Delete(ctx, "clip-1"))
	require.NoError(t, m.Delete(ctx, "clip-1"))
	assert.Equal(t, 0, m.Len())

	_, _, err = m.Get(ctx, "clip-1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.PresignGet(ctx, "clip-1", time.Minute)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_SizeMismatch(t *testing.T) {
	m := NewMemory("/audio/")
	_, err := m.Put(context.Background(), "k", strings.NewReader("abc"), PutObjectOptions{Size: 10})
	assert.Error(t, err)
	assert.Equal(t, 0, m.Len())

	_, err = m.Put(context.Background(), "k", strings.NewReader("abc"), PutObjectOptions{Size: -1})
	assert.NoError(t, err)
}

func TestMemory_EscapesKey(t *testing.T) {
	m := NewMemory("/audio/")
	_, err := m.Put(context.Background(), "a b", strings.NewReader("x"), PutObjectOptions{Size: -1})
	require.NoError(t, err)

	u, err := m.PresignGet(context.Background(), "a b", 0)
	require.NoError(t, err)
	assert.Equal(t, "/audio/a%20b", u)
}

func TestNewMinIO_Validation(t *testing.T) {
	_, err := NewMinIO(context.Background(), minioCfg("", "a", "s", "b"))
	assert.ErrorContains(t, err, "endpoint")
	_, err = NewMinIO(context.Background(), minioCfg("localhost:9000", "", "s", "b"))
	assert.ErrorContains(t, err, "credentials")
	_, err = NewMinIO(context.Background(), minioCfg("localhost:9000", "a", "s", ""))
	assert.ErrorContains(t, err, "bucket")
}

func minioCfg(endpoint, access, secret, bucket string) config.MinIOConfig {
	return config.MinIOConfig{Endpoint: endpoint, AccessKey: access, SecretKey: secret, Bucket: bucket}
}
