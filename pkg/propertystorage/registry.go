package propertystorage

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// ContextRegistry is the immutable, process-wide table of storage contexts.
// It is built once at startup and never mutated, so it is safe to share
// across concurrent requests without synchronization.
type ContextRegistry struct {
	contexts map[string]StorageContext
}

// NewContextRegistry builds a registry from the given contexts. Each path
// template is scanned once to extract its placeholder names and compute the
// context's required metadata keys. Construction fails if a template does not
// start with the {owner_id} placeholder or lacks a {filename} placeholder;
// these invariants are enforced here, not at request time.
func NewContextRegistry(contexts []StorageContext) (*ContextRegistry, error) {
	r := &ContextRegistry{contexts: make(map[string]StorageContext, len(contexts))}

	for _, sc := range contexts {
		if sc.Name == "" {
			return nil, fmt.Errorf("storage context name is required")
		}
		if _, exists := r.contexts[sc.Name]; exists {
			return nil, fmt.Errorf("duplicate storage context %q", sc.Name)
		}
		if sc.Bucket == "" {
			return nil, fmt.Errorf("context %q: bucket is required", sc.Name)
		}
		if sc.MaxSize <= 0 {
			return nil, fmt.Errorf("context %q: max size must be positive", sc.Name)
		}
		if len(sc.AllowedTypes) == 0 {
			return nil, fmt.Errorf("context %q: at least one allowed content type is required", sc.Name)
		}
		if sc.Visibility != VisibilityPublic && sc.Visibility != VisibilityPrivate {
			return nil, fmt.Errorf("context %q: visibility must be public or private", sc.Name)
		}

		template := strings.Trim(sc.PathTemplate, "/")
		if template == "" {
			return nil, fmt.Errorf("context %q: path template is required", sc.Name)
		}

		segments := strings.Split(template, "/")
		if segments[0] != "{"+MetadataKeyOwnerID+"}" {
			return nil, fmt.Errorf("context %q: path template must start with the {%s} segment", sc.Name, MetadataKeyOwnerID)
		}

		placeholders, required := scanTemplate(template)
		hasFilename := false
		for _, p := range placeholders {
			if p == placeholderFilename {
				hasFilename = true
			}
		}
		if !hasFilename {
			return nil, fmt.Errorf("context %q: path template must contain a {%s} placeholder", sc.Name, placeholderFilename)
		}

		sc.PathTemplate = template
		sc.placeholders = placeholders
		sc.requiredKeys = required
		r.contexts[sc.Name] = sc
	}

	return r, nil
}

// MustNewContextRegistry is like NewContextRegistry but panics on error. Use
// it only for static tables known to be valid.
func MustNewContextRegistry(contexts []StorageContext) *ContextRegistry {
	r, err := NewContextRegistry(contexts)
	if err != nil {
		panic(err)
	}
	return r
}

// scanTemplate extracts placeholder names in template order. Every
// placeholder except {filename} is a required metadata key.
func scanTemplate(template string) (placeholders, required []string) {
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		name := m[1]
		placeholders = append(placeholders, name)
		if name != placeholderFilename {
			required = append(required, name)
		}
	}
	return placeholders, required
}

// Lookup returns the context registered under name.
func (r *ContextRegistry) Lookup(name string) (StorageContext, error) {
	sc, ok := r.contexts[name]
	if !ok {
		return StorageContext{}, fmt.Errorf("%w: %q", ErrContextNotFound, name)
	}
	return sc, nil
}

// Names returns the registered context names.
func (r *ContextRegistry) Names() []string {
	names := make([]string, 0, len(r.contexts))
	for name := range r.contexts {
		names = append(names, name)
	}
	return names
}

// Buckets returns the distinct buckets referenced by registered contexts.
func (r *ContextRegistry) Buckets() []string {
	seen := make(map[string]bool)
	var buckets []string
	for _, sc := range r.contexts {
		if !seen[sc.Bucket] {
			seen[sc.Bucket] = true
			buckets = append(buckets, sc.Bucket)
		}
	}
	return buckets
}

// BucketVisibility reports the visibility of a bucket. A bucket referenced by
// any private context is treated as private.
func (r *ContextRegistry) BucketVisibility(bucket string) Visibility {
	for _, sc := range r.contexts {
		if sc.Bucket == bucket && sc.Visibility == VisibilityPrivate {
			return VisibilityPrivate
		}
	}
	return VisibilityPublic
}

// DefaultContexts returns the storage contexts used by the property
// management backend.
func DefaultContexts() []StorageContext {
	imageTypes := []string{"image/jpeg", "image/png", "image/webp", "image/gif"}
	documentTypes := []string{
		"application/pdf",
		"image/jpeg",
		"image/png",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}

	return []StorageContext{
		{
			Name:         ContextPropertyPhotos,
			Bucket:       "property-media",
			MaxSize:      10 << 20,
			AllowedTypes: imageTypes,
			PathTemplate: "{owner_id}/properties/{property_id}/{category}/{filename}",
			Visibility:   VisibilityPublic,
		},
		{
			Name:         ContextTenantDocuments,
			Bucket:       "tenant-documents",
			MaxSize:      25 << 20,
			AllowedTypes: documentTypes,
			PathTemplate: "{owner_id}/tenants/{tenant_id}/documents/{document_type}/{filename}",
			Visibility:   VisibilityPrivate,
		},
		{
			Name:         ContextMaintenanceAttachments,
			Bucket:       "property-media",
			MaxSize:      15 << 20,
			AllowedTypes: []string{"image/jpeg", "image/png", "image/webp", "video/mp4"},
			PathTemplate: "{owner_id}/properties/{property_id}/maintenance/{request_id}/{filename}",
			Visibility:   VisibilityPublic,
		},
		{
			Name:         ContextSignedAgreements,
			Bucket:       "agreements",
			MaxSize:      20 << 20,
			AllowedTypes: []string{"application/pdf"},
			PathTemplate: "{owner_id}/leases/{lease_id}/agreements/{filename}",
			Visibility:   VisibilityPrivate,
		},
		{
			Name:         ContextIdentityDocuments,
			Bucket:       "identity-documents",
			MaxSize:      10 << 20,
			AllowedTypes: []string{"application/pdf", "image/jpeg", "image/png"},
			PathTemplate: "{owner_id}/tenants/{tenant_id}/identity/{filename}",
			Visibility:   VisibilityPrivate,
		},
	}
}

// DefaultRegistry returns a registry loaded with DefaultContexts.
func DefaultRegistry() *ContextRegistry {
	return MustNewContextRegistry(DefaultContexts())
}
