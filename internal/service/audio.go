package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"studymate/internal/model"
	"studymate/internal/storage"
)

// clipSet tracks live clips and which one is current.
type clipSet struct {
	mu      sync.Mutex
	live    map[string]AudioClip
	current string
}

func newClipSet() *clipSet {
	return &clipSet{live: make(map[string]AudioClip)}
}

func (c *clipSet) add(clip AudioClip) (previous string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	previous = c.current
	c.live[clip.Key] = clip
	c.current = clip.Key
	return previous
}

func (c *clipSet) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.live[key]
	return ok
}

func (c *clipSet) remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.live[key]; !ok {
		return false
	}
	delete(c.live, key)
	if c.current == key {
		c.current = ""
	}
	return true
}

func (c *clipSet) keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.live))
	for k := range c.live {
		keys = append(keys, k)
	}
	return keys
}

func (s *studyService) Speak(ctx context.Context, text string) (*AudioClip, error) {
	return run(ctx, s, string(model.OpSpeech), func(ctx context.Context) (*AudioClip, error) {
		if strings.TrimSpace(text) == "" {
			return nil, ErrEmptyText
		}
		audio, err := s.API.TextToSpeech(ctx, text)
		if err != nil {
			return nil, err
		}
		clip, err := s.storeClip(ctx, audio)
		if err != nil {
			return nil, err
		}
		if prev := s.clips.add(*clip); prev != "" {
			if err := s.Release(ctx, prev); err != nil {
				s.Log.Error("clip_release_failed", err, map[string]any{"clip": prev})
			}
		}
		return clip, nil
	})
}

func (s *studyService) storeClip(ctx context.Context, audio *model.Audio) (*AudioClip, error) {
	ext := ".mp3"
	if mt := mimetype.Lookup(audio.ContentType); mt != nil && mt.Extension() != "" {
		ext = mt.Extension()
	}
	key := uuid.NewString() + ext

	info, err := s.Clips.Put(ctx, key, bytes.NewReader(audio.Data), storage.PutObjectOptions{
		Size:        int64(len(audio.Data)),
		ContentType: audio.ContentType,
		Metadata:    map[string]string{"principal": s.principalUID()},
	})
	if err != nil {
		return nil, fmt.Errorf("store clip: %w", err)
	}
	url, err := s.Clips.PresignGet(ctx, key, s.ClipTTL)
	if err != nil {
		if derr := s.Clips.Delete(context.WithoutCancel(ctx), key); derr != nil {
			s.Log.Error("clip_delete_failed", derr, map[string]any{"clip": key})
		}
		return nil, fmt.Errorf("clip url: %w", err)
	}
	return &AudioClip{Key: key, URL: url, ContentType: audio.ContentType, Size: info.Size}, nil
}

func (s *studyService) OpenClip(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	if !s.clips.has(key) {
		return nil, storage.ObjectInfo{}, ErrClipNotFound
	}
	return s.Clips.Get(ctx, key)
}

// Release deletes the clip. It stays tracked until the delete succeeds so a failed
// release can be retried and is still covered by Close.
func (s *studyService) Release(ctx context.Context, key string) error {
	if !s.clips.has(key) {
		return ErrClipNotFound
	}
	if err := s.Clips.Delete(ctx, key); err != nil {
		return fmt.Errorf("release clip %s: %w", key, err)
	}
	s.clips.remove(key)
	return nil
}

func (s *studyService) Close(ctx context.Context) error {
	var errs []error
	for _, key := range s.clips.keys() {
		if err := s.Release(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
