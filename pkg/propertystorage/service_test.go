package propertystorage_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/property-storage/pkg/propertystorage"
	memorystorage "github.com/tendant/property-storage/pkg/propertystorage/storage/memory"
)

// recordingCatalog resolves every object to a fixed id and records owner
// reassignments, so tests can observe reconciliation without knowing the
// generated object key up front.
type recordingCatalog struct {
	mu       sync.Mutex
	objectID uuid.UUID
	owners   map[uuid.UUID]uuid.UUID
}

func newRecordingCatalog() *recordingCatalog {
	return &recordingCatalog{
		objectID: uuid.New(),
		owners:   make(map[uuid.UUID]uuid.UUID),
	}
}

func (c *recordingCatalog) LookupObjectID(ctx context.Context, bucket, objectKey string) (uuid.UUID, error) {
	return c.objectID, nil
}

func (c *recordingCatalog) SetObjectOwner(ctx context.Context, objectID, ownerID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owners[objectID] = ownerID
	return nil
}

func (c *recordingCatalog) owner() (uuid.UUID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	owner, ok := c.owners[c.objectID]
	return owner, ok
}

func newPhotoService(t *testing.T, extra ...propertystorage.Option) (propertystorage.Service, *memorystorage.Backend) {
	t.Helper()
	store := memorystorage.New()
	options := append([]propertystorage.Option{
		propertystorage.WithBlobStore("property-media", store),
	}, extra...)
	svc, err := propertystorage.New(options...)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc, store
}

func TestNew_RequiresBlobStore(t *testing.T) {
	_, err := propertystorage.New()
	assert.Error(t, err)
}

func TestNew_RequiresResolverBucketWithMultipleStores(t *testing.T) {
	_, err := propertystorage.New(
		propertystorage.WithBlobStore("property-media", memorystorage.New()),
		propertystorage.WithBlobStore("tenant-documents", memorystorage.New()),
	)
	assert.Error(t, err)

	svc, err := propertystorage.New(
		propertystorage.WithBlobStore("property-media", memorystorage.New()),
		propertystorage.WithBlobStore("tenant-documents", memorystorage.New()),
		propertystorage.WithResolverBucket("property-media"),
	)
	require.NoError(t, err)
	svc.Close()
}

func TestService_Upload(t *testing.T) {
	svc, store := newPhotoService(t)

	path, err := svc.Upload(context.Background(), propertystorage.UploadRequest{
		FileName: "front door.jpg",
		Content:  []byte("image bytes"),
		Context:  propertystorage.ContextPropertyPhotos,
		Metadata: photoMetadata(),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "11111111-1111-1111-1111-111111111111/"))

	data, ok := store.Get(path)
	require.True(t, ok, "object must exist in the backend")
	assert.Equal(t, []byte("image bytes"), data)

	ct, ok := store.ContentType(path)
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", ct)
}

func TestService_Upload_Errors(t *testing.T) {
	svc, store := newPhotoService(t)

	tests := []struct {
		name     string
		req      propertystorage.UploadRequest
		sentinel error
	}{
		{
			name: "empty file",
			req: propertystorage.UploadRequest{
				FileName: "photo.jpg",
				Context:  propertystorage.ContextPropertyPhotos,
				Metadata: photoMetadata(),
			},
			sentinel: propertystorage.ErrEmptyFile,
		},
		{
			name: "disallowed content type",
			req: propertystorage.UploadRequest{
				FileName: "script.exe",
				Content:  []byte("MZ"),
				Context:  propertystorage.ContextPropertyPhotos,
				Metadata: photoMetadata(),
			},
			sentinel: propertystorage.ErrContentTypeNotAllowed,
		},
		{
			name: "missing metadata",
			req: propertystorage.UploadRequest{
				FileName: "photo.jpg",
				Content:  []byte("image bytes"),
				Context:  propertystorage.ContextPropertyPhotos,
				Metadata: map[string]string{propertystorage.MetadataKeyOwnerID: testOwnerID},
			},
			sentinel: propertystorage.ErrMissingMetadata,
		},
		{
			name: "unknown context",
			req: propertystorage.UploadRequest{
				FileName: "photo.jpg",
				Content:  []byte("image bytes"),
				Context:  "no_such_context",
				Metadata: photoMetadata(),
			},
			sentinel: propertystorage.ErrContextNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := svc.Upload(context.Background(), tt.req)
			assert.Empty(t, path)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
		})
	}

	assert.Equal(t, 0, store.Len(), "failed uploads must not reach the backend")
}

func TestService_Upload_NoStoreForBucket(t *testing.T) {
	// Only property-media has a backend; tenant documents go elsewhere.
	svc, _ := newPhotoService(t)

	_, err := svc.Upload(context.Background(), propertystorage.UploadRequest{
		FileName: "lease.pdf",
		Content:  []byte("%PDF"),
		Context:  propertystorage.ContextTenantDocuments,
		Metadata: map[string]string{
			propertystorage.MetadataKeyOwnerID:      testOwnerID,
			propertystorage.MetadataKeyTenantID:     testTenantID,
			propertystorage.MetadataKeyDocumentType: "lease",
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, propertystorage.ErrStoreUnavailable))

	var se *propertystorage.StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "tenant-documents", se.Bucket)
}

func TestService_Upload_BackendFailure(t *testing.T) {
	svc, err := propertystorage.New(
		propertystorage.WithBlobStore("property-media", unavailableStore{}),
	)
	require.NoError(t, err)
	defer svc.Close()

	_, err = svc.Upload(context.Background(), propertystorage.UploadRequest{
		FileName: "photo.jpg",
		Content:  []byte("image bytes"),
		Context:  propertystorage.ContextPropertyPhotos,
		Metadata: photoMetadata(),
	})
	assert.True(t, errors.Is(err, propertystorage.ErrStoreUnavailable))
}

func TestService_UploadBatch(t *testing.T) {
	svc, store := newPhotoService(t, propertystorage.WithBatchConcurrency(2))

	result := svc.UploadBatch(context.Background(), propertystorage.BatchUploadRequest{
		Files: []propertystorage.FileUpload{
			{FileName: "a.jpg", Content: []byte("a")},
			{FileName: "b.png", Content: []byte("b")},
			{FileName: "report.exe", Content: []byte("MZ")},
			{FileName: "c.webp", Content: []byte("c")},
			{FileName: "empty.jpg"},
		},
		Context:  propertystorage.ContextPropertyPhotos,
		Metadata: photoMetadata(),
	})

	assert.Len(t, result.StoredPaths, 3)
	assert.Equal(t, []string{"report.exe"}, result.FailedFilenames)
	assert.Equal(t, 3, store.Len())

	for _, path := range result.StoredPaths {
		assert.True(t, strings.HasPrefix(path, "11111111-1111-1111-1111-111111111111/"), "path %q", path)
	}
}

func TestService_UploadBatch_AllFailuresIsolated(t *testing.T) {
	svc, _ := newPhotoService(t)

	result := svc.UploadBatch(context.Background(), propertystorage.BatchUploadRequest{
		Files: []propertystorage.FileUpload{
			{FileName: "a.exe", Content: []byte("a")},
			{FileName: "b.exe", Content: []byte("b")},
		},
		Context:  propertystorage.ContextPropertyPhotos,
		Metadata: photoMetadata(),
	})

	assert.Empty(t, result.StoredPaths)
	assert.ElementsMatch(t, []string{"a.exe", "b.exe"}, result.FailedFilenames)
}

func TestService_UploadBatch_CancelledContext(t *testing.T) {
	svc, store := newPhotoService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := svc.UploadBatch(ctx, propertystorage.BatchUploadRequest{
		Files:    []propertystorage.FileUpload{{FileName: "a.jpg", Content: []byte("a")}},
		Context:  propertystorage.ContextPropertyPhotos,
		Metadata: photoMetadata(),
	})

	assert.Empty(t, result.StoredPaths)
	assert.Equal(t, 0, store.Len())
}

func TestService_Upload_ReconcilesOwnership(t *testing.T) {
	catalog := newRecordingCatalog()
	svc, _ := newPhotoService(t, propertystorage.WithCatalog(catalog))

	_, err := svc.Upload(context.Background(), propertystorage.UploadRequest{
		FileName: "photo.jpg",
		Content:  []byte("image bytes"),
		Context:  propertystorage.ContextPropertyPhotos,
		Metadata: photoMetadata(),
	})
	require.NoError(t, err)

	// Close drains the reconciliation queue.
	svc.Close()

	owner, ok := catalog.owner()
	require.True(t, ok, "ownership was never reconciled")
	assert.Equal(t, uuid.MustParse(testOwnerID), owner)
}

func TestService_ResolveURLs(t *testing.T) {
	svc, _ := newPhotoService(t, propertystorage.WithPublicBaseURL("https://cdn.example.com"))

	path, err := svc.Upload(context.Background(), propertystorage.UploadRequest{
		FileName: "photo.jpg",
		Content:  []byte("image bytes"),
		Context:  propertystorage.ContextPropertyPhotos,
		Metadata: photoMetadata(),
	})
	require.NoError(t, err)

	urls := svc.ResolveURLs(context.Background(), []string{
		"https://elsewhere.example.com/kept.jpg",
		legacyPath,
		path,
	})
	require.Len(t, urls, 3)
	assert.Equal(t, "https://elsewhere.example.com/kept.jpg", urls[0])
	assert.Equal(t, "https://cdn.example.com/property-media/"+legacyPath, urls[1])
	assert.Equal(t, "memory://objects/"+path, urls[2])
}

func TestService_Delete(t *testing.T) {
	svc, store := newPhotoService(t)

	path, err := svc.Upload(context.Background(), propertystorage.UploadRequest{
		FileName: "photo.jpg",
		Content:  []byte("image bytes"),
		Context:  propertystorage.ContextPropertyPhotos,
		Metadata: photoMetadata(),
	})
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	assert.True(t, svc.Delete(context.Background(), propertystorage.ContextPropertyPhotos, path))
	assert.Equal(t, 0, store.Len())

	assert.False(t, svc.Delete(context.Background(), propertystorage.ContextPropertyPhotos, path))
	assert.False(t, svc.Delete(context.Background(), "no_such_context", path))
}

func TestService_Registry(t *testing.T) {
	svc, _ := newPhotoService(t)
	require.NotNil(t, svc.Registry())

	_, err := svc.Registry().Lookup(propertystorage.ContextPropertyPhotos)
	assert.NoError(t, err)
}
