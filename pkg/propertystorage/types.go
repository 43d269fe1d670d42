package propertystorage

// Visibility is the access mode of a context's bucket.
type Visibility string

// Visibility constants (typed).
const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Well-known metadata keys used in path templates.
const (
	MetadataKeyOwnerID      = "owner_id"
	MetadataKeyPropertyID   = "property_id"
	MetadataKeyTenantID     = "tenant_id"
	MetadataKeyCategory     = "category"
	MetadataKeyDocumentType = "document_type"
	MetadataKeyRequestID    = "request_id"
	MetadataKeyLeaseID      = "lease_id"
)

// placeholderFilename is filled by the PathBuilder with the generated leaf
// name, never by caller metadata.
const placeholderFilename = "filename"

// Names of the storage contexts shipped with the default registry.
const (
	ContextPropertyPhotos         = "property_photos"
	ContextTenantDocuments        = "tenant_documents"
	ContextMaintenanceAttachments = "maintenance_attachments"
	ContextSignedAgreements       = "signed_agreements"
	ContextIdentityDocuments      = "identity_documents"
)

// StorageContext is an immutable storage policy for one upload context.
//
// PathTemplate contains {placeholder} segments that are substituted from
// caller metadata at build time. The template's first segment must be the
// {owner_id} placeholder: that prefix is what isolates one owner's objects
// from another's, and it is enforced when the registry is constructed.
type StorageContext struct {
	Name         string
	Bucket       string
	MaxSize      int64
	AllowedTypes []string
	PathTemplate string
	Visibility   Visibility

	// Computed by the registry at construction time.
	placeholders []string
	requiredKeys []string
}

// RequiredKeys returns the metadata keys the context's template needs,
// computed once at registry construction.
func (c StorageContext) RequiredKeys() []string {
	keys := make([]string, len(c.requiredKeys))
	copy(keys, c.requiredKeys)
	return keys
}

// AllowsType reports whether the given content type is permitted.
func (c StorageContext) AllowsType(contentType string) bool {
	for _, t := range c.AllowedTypes {
		if t == contentType {
			return true
		}
	}
	return false
}
