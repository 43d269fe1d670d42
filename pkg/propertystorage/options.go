package propertystorage

import (
	"log/slog"
	"time"
)

// Option represents a functional option for configuring the service.
type Option func(*service)

// WithRegistry sets the context registry (default: DefaultRegistry).
func WithRegistry(registry *ContextRegistry) Option {
	return func(s *service) {
		s.registry = registry
	}
}

// WithBlobStore registers a blob store for a bucket.
func WithBlobStore(bucket string, store BlobStore) Option {
	return func(s *service) {
		if s.blobStores == nil {
			s.blobStores = make(map[string]BlobStore)
		}
		s.blobStores[bucket] = store
	}
}

// WithCatalog enables ownership reconciliation through the given catalog.
func WithCatalog(catalog ObjectCatalog) Option {
	return func(s *service) {
		s.catalog = catalog
	}
}

// WithReconciler sets a pre-built reconciler, overriding WithCatalog.
func WithReconciler(r *OwnershipReconciler) Option {
	return func(s *service) {
		s.reconciler = r
	}
}

// WithLogger sets the logger (default: slog.Default).
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithPublicBaseURL sets the fixed public base URL used for legacy path
// resolution and as the secure-path fallback.
func WithPublicBaseURL(baseURL string) Option {
	return func(s *service) {
		s.publicBaseURL = baseURL
	}
}

// WithResolverBucket names the bucket URL resolution reads from. Defaults to
// the only registered bucket when exactly one store is configured.
func WithResolverBucket(bucket string) Option {
	return func(s *service) {
		s.resolverBucket = bucket
	}
}

// WithSignedURLTTL bounds signed URL lifetime (default: DefaultSignedURLTTL).
func WithSignedURLTTL(ttl time.Duration) Option {
	return func(s *service) {
		if ttl > 0 {
			s.signedURLTTL = ttl
		}
	}
}

// WithBatchConcurrency bounds the batch upload fan-out (default: 4).
func WithBatchConcurrency(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}
