package propertystorage_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/property-storage/pkg/propertystorage"
)

func validContext() propertystorage.StorageContext {
	return propertystorage.StorageContext{
		Name:         "test_context",
		Bucket:       "test-bucket",
		MaxSize:      1024,
		AllowedTypes: []string{"image/jpeg"},
		PathTemplate: "{owner_id}/things/{filename}",
		Visibility:   propertystorage.VisibilityPublic,
	}
}

func TestNewContextRegistry(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*propertystorage.StorageContext)
		expectError bool
	}{
		{
			name:   "valid context",
			mutate: func(sc *propertystorage.StorageContext) {},
		},
		{
			name:        "missing name",
			mutate:      func(sc *propertystorage.StorageContext) { sc.Name = "" },
			expectError: true,
		},
		{
			name:        "missing bucket",
			mutate:      func(sc *propertystorage.StorageContext) { sc.Bucket = "" },
			expectError: true,
		},
		{
			name:        "zero max size",
			mutate:      func(sc *propertystorage.StorageContext) { sc.MaxSize = 0 },
			expectError: true,
		},
		{
			name:        "no allowed types",
			mutate:      func(sc *propertystorage.StorageContext) { sc.AllowedTypes = nil },
			expectError: true,
		},
		{
			name: "template without owner prefix",
			mutate: func(sc *propertystorage.StorageContext) {
				sc.PathTemplate = "uploads/{owner_id}/{filename}"
			},
			expectError: true,
		},
		{
			name: "template without filename placeholder",
			mutate: func(sc *propertystorage.StorageContext) {
				sc.PathTemplate = "{owner_id}/things/static.jpg"
			},
			expectError: true,
		},
		{
			name:        "invalid visibility",
			mutate:      func(sc *propertystorage.StorageContext) { sc.Visibility = "internal" },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := validContext()
			tt.mutate(&sc)
			reg, err := propertystorage.NewContextRegistry([]propertystorage.StorageContext{sc})
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, reg)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, reg)
			}
		})
	}
}

func TestNewContextRegistry_DuplicateName(t *testing.T) {
	_, err := propertystorage.NewContextRegistry([]propertystorage.StorageContext{
		validContext(), validContext(),
	})
	assert.Error(t, err)
}

func TestContextRegistry_Lookup(t *testing.T) {
	reg := propertystorage.DefaultRegistry()

	sc, err := reg.Lookup(propertystorage.ContextPropertyPhotos)
	require.NoError(t, err)
	assert.Equal(t, "property-media", sc.Bucket)

	_, err = reg.Lookup("no_such_context")
	assert.True(t, errors.Is(err, propertystorage.ErrContextNotFound))
}

func TestContextRegistry_RequiredKeys(t *testing.T) {
	reg := propertystorage.DefaultRegistry()

	sc, err := reg.Lookup(propertystorage.ContextPropertyPhotos)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{
			propertystorage.MetadataKeyOwnerID,
			propertystorage.MetadataKeyPropertyID,
			propertystorage.MetadataKeyCategory,
		},
		sc.RequiredKeys())

	// The filename placeholder is never a required metadata key.
	assert.NotContains(t, sc.RequiredKeys(), "filename")
}

func TestDefaultRegistry_OwnerFirstInvariant(t *testing.T) {
	for _, sc := range propertystorage.DefaultContexts() {
		assert.Regexp(t, `^\{owner_id\}/`, sc.PathTemplate, "context %s", sc.Name)
	}
}

func TestContextRegistry_Buckets(t *testing.T) {
	reg := propertystorage.DefaultRegistry()

	buckets := reg.Buckets()
	assert.ElementsMatch(t, []string{"property-media", "tenant-documents", "agreements", "identity-documents"}, buckets)

	assert.Equal(t, propertystorage.VisibilityPublic, reg.BucketVisibility("property-media"))
	assert.Equal(t, propertystorage.VisibilityPrivate, reg.BucketVisibility("tenant-documents"))
}
