package propertystorage

import "context"

// Service is the storage surface exposed to the property-management CRUD
// layer. All methods are safe for concurrent use.
type Service interface {
	// Upload validates, builds a path and stores a single file, returning the
	// stored relative path (not a URL).
	Upload(ctx context.Context, req UploadRequest) (string, error)

	// UploadBatch stores each file independently; one file's failure never
	// aborts the batch. Cancelling the context stops issuing new item
	// operations but already-recorded partial results are returned.
	UploadBatch(ctx context.Context, req BatchUploadRequest) BatchUploadResult

	// ResolveURLs maps stored paths to externally fetchable URLs, dropping
	// entries that cannot be resolved.
	ResolveURLs(ctx context.Context, paths []string) []string

	// Delete removes an object's bytes from the context's bucket. Returns
	// whether the deletion succeeded.
	Delete(ctx context.Context, contextName, path string) bool

	// Registry returns the immutable context registry the service was built
	// with.
	Registry() *ContextRegistry

	// Close drains background work (ownership reconciliation).
	Close()
}
