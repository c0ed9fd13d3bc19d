package blob

import (
	"context"
	"sync"

	"github.com/kintreehq/kintree/pkg/errors"
)

// Memory is an in-process blob store for tests and the dev server.
// Uploaded bytes are held in a map keyed by the fake URL.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte

	// FailUploads makes every Upload return an UPLOAD_FAILED error, for
	// exercising partial-failure paths in tests.
	FailUploads bool
}

// NewMemory returns an empty in-memory blob store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func (m *Memory) Upload(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	if m.FailUploads {
		return "", errors.New(errors.ErrCodeUploadFailed, "upload of %s rejected", filename)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	url := "memory://" + filename
	m.objects[url] = append([]byte(nil), data...)
	return url, nil
}

func (m *Memory) Delete(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[url]; !ok {
		return errors.New(errors.ErrCodeNotFound, "object %s not found", url)
	}
	delete(m.objects, url)
	return nil
}

// Object returns the stored bytes for a URL.
func (m *Memory) Object(url string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[url]
	return b, ok
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
