package propertystorage

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Tenant document paths have a fixed historical shape:
//
//	users/{ownerId}/tenants/{tenantId}/documents/{documentType}/{filename}
//
// The codec below builds such paths and parses them back into owner/tenant
// identifiers for a fast authorization pre-check.
const (
	docPathUsersMarker     = "users"
	docPathTenantsMarker   = "tenants"
	docPathDocumentsMarker = "documents"
	docPathSegmentCount    = 7
)

// DefaultDocumentType is substituted when an unknown or empty document type
// is supplied to EncodeDocumentPath.
const DefaultDocumentType = "general"

var allowedDocumentTypes = map[string]bool{
	"lease":     true,
	"identity":  true,
	"income":    true,
	"insurance": true,
	"reference": true,
	"general":   true,
}

// DocumentPath holds the identifiers decoded from a tenant document path.
type DocumentPath struct {
	OwnerID      uuid.UUID
	TenantID     uuid.UUID
	DocumentType string
	FileName     string
}

// EncodeDocumentPath builds a tenant document path. Both ids must be
// well-formed UUIDs; an invalid or empty document type falls back to
// DefaultDocumentType; the filename is sanitized with the same rule the
// PathBuilder uses.
func EncodeDocumentPath(ownerID, tenantID, documentType, filename string) (string, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return "", fmt.Errorf("invalid owner id %q: %w", ownerID, err)
	}
	tenant, err := uuid.Parse(tenantID)
	if err != nil {
		return "", fmt.Errorf("invalid tenant id %q: %w", tenantID, err)
	}

	docType := strings.ToLower(strings.TrimSpace(documentType))
	if !allowedDocumentTypes[docType] {
		docType = DefaultDocumentType
	}

	name := SanitizeFilename(filename)
	if name == "" {
		return "", fmt.Errorf("filename %q is not usable after sanitization", filename)
	}

	return strings.Join([]string{
		docPathUsersMarker, owner.String(),
		docPathTenantsMarker, tenant.String(),
		docPathDocumentsMarker, docType,
		name,
	}, "/"), nil
}

// DecodeDocumentPath parses a tenant document path back into its
// identifiers. It requires the exact segment count and literal markers in
// the expected positions and both id segments to parse as UUIDs. On any
// mismatch it returns ok=false, never an error: callers must treat that as
// "cannot determine ownership from the path alone", not as a hard failure.
func DecodeDocumentPath(path string) (DocumentPath, bool) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) != docPathSegmentCount {
		return DocumentPath{}, false
	}
	if segments[0] != docPathUsersMarker || segments[2] != docPathTenantsMarker || segments[4] != docPathDocumentsMarker {
		return DocumentPath{}, false
	}

	owner, err := uuid.Parse(segments[1])
	if err != nil {
		return DocumentPath{}, false
	}
	tenant, err := uuid.Parse(segments[3])
	if err != nil {
		return DocumentPath{}, false
	}
	if segments[5] == "" || segments[6] == "" {
		return DocumentPath{}, false
	}

	return DocumentPath{
		OwnerID:      owner,
		TenantID:     tenant,
		DocumentType: segments[5],
		FileName:     segments[6],
	}, true
}

// QuickAccessCheck reports whether the path's decoded owner matches the
// requesting user. Deny when the path cannot be decoded. This is a fast
// pre-check only; it must always be backed by an authoritative database-level
// authorization check and never used as the sole gate.
func QuickAccessCheck(path, requestingUserID string) bool {
	dp, ok := DecodeDocumentPath(path)
	if !ok {
		return false
	}
	requester, err := uuid.Parse(requestingUserID)
	if err != nil {
		return false
	}
	return dp.OwnerID == requester
}
