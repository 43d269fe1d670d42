package memory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tendant/property-storage/pkg/propertystorage"
)

// Backend is an in-memory implementation of the propertystorage.BlobStore
// interface, used in tests and local development.
type Backend struct {
	mu           sync.RWMutex
	objects      map[string][]byte
	contentTypes map[string]string
}

// New creates a new in-memory storage backend.
func New() *Backend {
	return &Backend{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

var _ propertystorage.BlobStore = (*Backend)(nil)

// Upload stores content in memory.
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[objectKey] = data
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	b.contentTypes[objectKey] = contentType
	return nil
}

// GetPublicURL returns a synthetic memory:// URL.
func (b *Backend) GetPublicURL(objectKey string) string {
	return "memory://objects/" + objectKey
}

// CreateSignedURL returns a synthetic signed memory:// URL.
func (b *Backend) CreateSignedURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if _, exists := b.objects[objectKey]; !exists {
		return "", errors.New("object not found")
	}
	return fmt.Sprintf("memory://signed/%s?expires=%d", objectKey, int64(ttl.Seconds())), nil
}

// Delete removes an object.
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.objects[objectKey]; !exists {
		return errors.New("object not found")
	}
	delete(b.objects, objectKey)
	delete(b.contentTypes, objectKey)
	return nil
}

// Get returns the stored bytes for an object key. Test helper.
func (b *Backend) Get(objectKey string) ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.objects[objectKey]
	return data, ok
}

// ContentType returns the stored content type for an object key. Test helper.
func (b *Backend) ContentType(objectKey string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ct, ok := b.contentTypes[objectKey]
	return ct, ok
}

// Len returns the number of stored objects.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}
