package memory_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	memorystorage "github.com/tendant/property-storage/pkg/propertystorage/storage/memory"
)

func TestBackend_UploadAndGet(t *testing.T) {
	backend := memorystorage.New()
	ctx := context.Background()

	err := backend.Upload(ctx, "owner/properties/p1/general/photo.jpg", strings.NewReader("image bytes"), "image/jpeg")
	require.NoError(t, err)

	data, ok := backend.Get("owner/properties/p1/general/photo.jpg")
	require.True(t, ok)
	assert.Equal(t, []byte("image bytes"), data)

	ct, ok := backend.ContentType("owner/properties/p1/general/photo.jpg")
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", ct)
	assert.Equal(t, 1, backend.Len())
}

func TestBackend_UploadDefaultsContentType(t *testing.T) {
	backend := memorystorage.New()

	err := backend.Upload(context.Background(), "k", strings.NewReader("data"), "")
	require.NoError(t, err)

	ct, ok := backend.ContentType("k")
	require.True(t, ok)
	assert.Equal(t, "application/octet-stream", ct)
}

func TestBackend_GetPublicURL(t *testing.T) {
	backend := memorystorage.New()
	assert.Equal(t, "memory://objects/a/b.jpg", backend.GetPublicURL("a/b.jpg"))
}

func TestBackend_CreateSignedURL(t *testing.T) {
	backend := memorystorage.New()
	ctx := context.Background()

	_, err := backend.CreateSignedURL(ctx, "missing", time.Hour)
	assert.Error(t, err)

	require.NoError(t, backend.Upload(ctx, "k", strings.NewReader("data"), "image/jpeg"))
	url, err := backend.CreateSignedURL(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "memory://signed/k?expires=3600", url)
}

func TestBackend_Delete(t *testing.T) {
	backend := memorystorage.New()
	ctx := context.Background()

	assert.Error(t, backend.Delete(ctx, "missing"))

	require.NoError(t, backend.Upload(ctx, "k", strings.NewReader("data"), "image/jpeg"))
	require.NoError(t, backend.Delete(ctx, "k"))

	_, ok := backend.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, backend.Len())
}
