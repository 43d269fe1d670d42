package propertystorage

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// BlobStore defines the interface for object storage backends.
type BlobStore interface {
	// Upload stores content under the given object key with a content-type
	// hint.
	Upload(ctx context.Context, objectKey string, reader io.Reader, contentType string) error

	// GetPublicURL returns the public URL for an object. No network call is
	// made; an empty string means the backend cannot produce a public URL.
	GetPublicURL(objectKey string) string

	// CreateSignedURL returns a time-limited URL granting read access to a
	// private object.
	CreateSignedURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error)

	// Delete removes the object's bytes from the bucket.
	Delete(ctx context.Context, objectKey string) error
}

// ObjectCatalog is the provider's internal object catalog. Uploads performed
// under the privileged service credential are recorded there with the service
// identity as owner; the reconciler uses this interface to correct that.
type ObjectCatalog interface {
	// LookupObjectID resolves a (bucket, objectKey) pair to the catalog's
	// internal object id. Returns ErrObjectNotFound when the catalog has no
	// row for the pair.
	LookupObjectID(ctx context.Context, bucket, objectKey string) (uuid.UUID, error)

	// SetObjectOwner reassigns the catalog owner field for an object.
	// Privileged operation.
	SetObjectOwner(ctx context.Context, objectID, ownerID uuid.UUID) error
}
