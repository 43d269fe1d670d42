package propertystorage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultBatchConcurrency = 4

// service implements the Service interface.
type service struct {
	registry   *ContextRegistry
	blobStores map[string]BlobStore
	catalog    ObjectCatalog
	reconciler *OwnershipReconciler
	resolver   *URLResolver
	builder    *PathBuilder
	validator  *FileValidator
	logger     *slog.Logger

	publicBaseURL    string
	resolverBucket   string
	signedURLTTL     time.Duration
	batchConcurrency int
}

// New creates a new service instance with the given options. At least one
// blob store is required; when stores for several buckets are registered the
// resolver bucket must be named explicitly.
func New(options ...Option) (Service, error) {
	s := &service{
		blobStores:       make(map[string]BlobStore),
		logger:           slog.Default(),
		signedURLTTL:     DefaultSignedURLTTL,
		batchConcurrency: defaultBatchConcurrency,
	}

	for _, option := range options {
		option(s)
	}

	if s.registry == nil {
		s.registry = DefaultRegistry()
	}
	if len(s.blobStores) == 0 {
		return nil, fmt.Errorf("at least one blob store is required")
	}

	if s.resolverBucket == "" {
		if len(s.blobStores) == 1 {
			for bucket := range s.blobStores {
				s.resolverBucket = bucket
			}
		} else {
			return nil, fmt.Errorf("resolver bucket must be named when multiple blob stores are registered")
		}
	}

	s.builder = NewPathBuilder(s.registry)
	s.validator = NewFileValidator(s.registry)

	if s.reconciler == nil && s.catalog != nil {
		s.reconciler = NewOwnershipReconciler(s.catalog, WithReconcilerLogger(s.logger))
	}

	s.resolver = NewURLResolver(ResolverConfig{
		Store:         s.blobStores[s.resolverBucket],
		Bucket:        s.resolverBucket,
		PublicBaseURL: s.publicBaseURL,
		Private:       s.registry.BucketVisibility(s.resolverBucket) == VisibilityPrivate,
		SignedURLTTL:  s.signedURLTTL,
		Logger:        s.logger,
	})

	return s, nil
}

func (s *service) Registry() *ContextRegistry {
	return s.registry
}

// Upload performs validate -> build -> store. Validation and metadata
// failures return before any network call; provider failures return a
// StorageError and no path. Ownership reconciliation is enqueued after a
// successful store and its outcome never alters the result.
func (s *service) Upload(ctx context.Context, req UploadRequest) (string, error) {
	if len(req.Content) == 0 {
		return "", ErrEmptyFile
	}

	if v := s.validator.Validate(req.Content, req.FileName, req.Context); !v.Valid {
		return "", &ValidationError{FileName: req.FileName, Reason: v.Reason, Err: v.Err}
	}

	path, err := s.builder.Build(req.FileName, req.Context, req.Metadata)
	if err != nil {
		return "", err
	}

	sc, err := s.registry.Lookup(req.Context)
	if err != nil {
		return "", err
	}

	store, ok := s.blobStores[sc.Bucket]
	if !ok {
		return "", &StorageError{
			Bucket: sc.Bucket,
			Key:    path,
			Op:     "upload",
			Err:    fmt.Errorf("no blob store registered for bucket %q", sc.Bucket),
		}
	}

	contentType := ContentTypeForFilename(req.FileName)
	if err := store.Upload(ctx, path, bytes.NewReader(req.Content), contentType); err != nil {
		return "", &StorageError{Bucket: sc.Bucket, Key: path, Op: "upload", Err: err}
	}

	if s.reconciler != nil {
		s.reconciler.Enqueue(sc.Bucket, path, req.Metadata[MetadataKeyOwnerID])
	}

	return path, nil
}

// UploadBatch fans out over the files with a bounded concurrency and isolated
// failure domains: each item's outcome is independent and aggregated into the
// two-list result.
func (s *service) UploadBatch(ctx context.Context, req BatchUploadRequest) BatchUploadResult {
	var (
		mu     sync.Mutex
		result BatchUploadResult
	)

	g := new(errgroup.Group)
	g.SetLimit(s.batchConcurrency)

	for _, f := range req.Files {
		if ctx.Err() != nil {
			break
		}
		if len(f.Content) == 0 {
			s.logger.Info("Skipping empty file in batch upload", "filename", f.FileName, "context", req.Context)
			continue
		}

		file := f
		g.Go(func() error {
			path, err := s.Upload(ctx, UploadRequest{
				FileName: file.FileName,
				Content:  file.Content,
				Context:  req.Context,
				Metadata: req.Metadata,
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Error("Batch upload item failed",
					"filename", file.FileName, "context", req.Context, "error", err)
				result.FailedFilenames = append(result.FailedFilenames, file.FileName)
				return nil
			}
			result.StoredPaths = append(result.StoredPaths, path)
			return nil
		})
	}

	g.Wait()
	return result
}

func (s *service) ResolveURLs(ctx context.Context, paths []string) []string {
	return s.resolver.Resolve(ctx, paths)
}

func (s *service) Delete(ctx context.Context, contextName, path string) bool {
	sc, err := s.registry.Lookup(contextName)
	if err != nil {
		s.logger.Error("Delete failed: unknown storage context", "context", contextName, "path", path)
		return false
	}

	store, ok := s.blobStores[sc.Bucket]
	if !ok {
		s.logger.Error("Delete failed: no blob store for bucket", "bucket", sc.Bucket, "path", path)
		return false
	}

	if err := store.Delete(ctx, path); err != nil {
		s.logger.Error("Failed to delete object", "bucket", sc.Bucket, "path", path, "error", err)
		return false
	}
	return true
}

func (s *service) Close() {
	if s.reconciler != nil {
		s.reconciler.Close()
	}
}
