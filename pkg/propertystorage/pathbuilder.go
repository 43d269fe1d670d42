package propertystorage

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var unsafePathChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SanitizeFilename strips directory components and replaces every character
// outside [A-Za-z0-9._-] with an underscore. Path traversal sequences cannot
// survive this by construction since slashes are removed. Returns an empty
// string when nothing usable remains (e.g. "..", "", "///").
func SanitizeFilename(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = unsafePathChars.ReplaceAllString(name, "_")
	if strings.Trim(name, "._") == "" {
		return ""
	}
	return name
}

// sanitizePathComponent makes a metadata value safe to use as a single path
// segment. Same character rule as SanitizeFilename, without directory
// stripping (slashes are replaced outright).
func sanitizePathComponent(value string) string {
	return unsafePathChars.ReplaceAllString(strings.TrimSpace(value), "_")
}

// PathBuilder derives concrete, unique, owner-isolated object keys from a
// filename, a context and caller-supplied metadata.
type PathBuilder struct {
	registry *ContextRegistry
	now      func() time.Time
	newID    func() string
}

// NewPathBuilder creates a PathBuilder over the given registry.
func NewPathBuilder(registry *ContextRegistry) *PathBuilder {
	return &PathBuilder{
		registry: registry,
		now:      time.Now,
		newID:    shortRandomID,
	}
}

// shortRandomID returns the first 8 hex characters of a random UUID. Combined
// with a millisecond timestamp this is unique enough across concurrent
// callers without coordination; a collision at worst means a later upload
// silently wins.
func shortRandomID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Build derives the relative object key for an upload. Every required
// metadata key of the context's template must be present and non-blank; the
// owner id key is always required. The returned path always begins with the
// owner-id segment.
func (b *PathBuilder) Build(filename, contextName string, metadata map[string]string) (string, error) {
	sc, err := b.registry.Lookup(contextName)
	if err != nil {
		return "", err
	}

	var missing []string
	for _, key := range sc.requiredKeys {
		if strings.TrimSpace(metadata[key]) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return "", &MissingMetadataError{Context: contextName, Keys: missing}
	}

	leaf := b.uniqueLeafName(filename)

	path := sc.PathTemplate
	for _, key := range sc.placeholders {
		placeholder := "{" + key + "}"
		if key == placeholderFilename {
			path = strings.ReplaceAll(path, placeholder, leaf)
			continue
		}
		path = strings.ReplaceAll(path, placeholder, sanitizePathComponent(metadata[key]))
	}

	return path, nil
}

// uniqueLeafName generates {millisecond_timestamp}-{short_random_id}{ext}.
func (b *PathBuilder) uniqueLeafName(filename string) string {
	ext := strings.ToLower(filepath.Ext(SanitizeFilename(filename)))
	return fmt.Sprintf("%d-%s%s", b.now().UnixMilli(), b.newID(), ext)
}
