package propertystorage

import (
	"errors"
	"fmt"
	"strings"
)

// Error types
var (
	// ErrContextNotFound indicates an unknown storage context name. This is a
	// caller error, not retryable.
	ErrContextNotFound = errors.New("storage context not found")

	// ErrMissingMetadata indicates a required path template key was absent.
	ErrMissingMetadata = errors.New("missing required metadata")

	// ErrFileTooLarge indicates content exceeded the context size limit.
	ErrFileTooLarge = errors.New("file exceeds context size limit")

	// ErrContentTypeNotAllowed indicates the content type is outside the
	// context's allow-list.
	ErrContentTypeNotAllowed = errors.New("content type not allowed")

	// ErrEmptyFile indicates a zero-length upload.
	ErrEmptyFile = errors.New("file is empty")

	// ErrStoreUnavailable indicates a provider network or availability
	// failure. Retryable by the caller with backoff.
	ErrStoreUnavailable = errors.New("object store unavailable")

	// ErrObjectNotFound indicates an object was not found in the ownership
	// catalog.
	ErrObjectNotFound = errors.New("object not found in catalog")
)

// MissingMetadataError names the template keys absent from an upload request.
type MissingMetadataError struct {
	Context string
	Keys    []string
}

func (e *MissingMetadataError) Error() string {
	return fmt.Sprintf("context %s requires metadata keys: %s", e.Context, strings.Join(e.Keys, ", "))
}

func (e *MissingMetadataError) Unwrap() error {
	return ErrMissingMetadata
}

// ValidationError represents a per-file policy rejection. In batch uploads it
// is resolved at the item level and never aborts the batch.
type ValidationError struct {
	FileName string
	Reason   string
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.FileName, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// StorageError represents a provider-facing operation failure.
type StorageError struct {
	Bucket string
	Key    string
	Op     string
	Err    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s in bucket %s: %v", e.Op, e.Key, e.Bucket, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is lets callers classify any provider failure with
// errors.Is(err, ErrStoreUnavailable).
func (e *StorageError) Is(target error) bool {
	return target == ErrStoreUnavailable
}
