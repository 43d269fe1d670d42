// Package propertystorage provides the multi-tenant object storage layer for
// the property-management backend.
//
// The package is organized around a small set of collaborators:
//
//   - ContextRegistry: immutable table of named storage contexts (bucket, size
//     and type limits, path template, visibility), loaded once at startup.
//   - PathBuilder: derives unique, owner-isolated object keys from a filename,
//     a context and caller-supplied metadata.
//   - FileValidator: checks candidate uploads against a context's policy.
//   - Service: orchestrates validate -> build -> upload and exposes batch
//     upload, URL resolution and deletion to the HTTP layer.
//   - OwnershipReconciler: background correction of catalog ownership after
//     uploads performed under the privileged service credential.
//   - URLResolver: turns stored paths (legacy and secure formats) back into
//     externally usable URLs.
//
// Storage backends implement the BlobStore interface; see the storage/s3 and
// storage/memory subpackages. Ownership catalogs implement ObjectCatalog; see
// catalog/postgres and catalog/memory.
package propertystorage
