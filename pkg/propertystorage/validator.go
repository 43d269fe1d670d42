package propertystorage

import "fmt"

// Validation is the discriminated result of a policy check.
type Validation struct {
	Valid  bool
	Reason string
	Err    error // sentinel classification, nil when valid
}

func accepted() Validation {
	return Validation{Valid: true}
}

func rejected(err error, reason string) Validation {
	return Validation{Reason: reason, Err: err}
}

// FileValidator checks candidate uploads against their context's size and
// content-type policy.
type FileValidator struct {
	registry *ContextRegistry
}

// NewFileValidator creates a FileValidator over the given registry.
func NewFileValidator(registry *ContextRegistry) *FileValidator {
	return &FileValidator{registry: registry}
}

// Validate checks, in order: the context exists, the content fits the
// context's size limit (a file of exactly the limit is valid), and the
// content type derived from the filename extension is allowed.
func (v *FileValidator) Validate(content []byte, filename, contextName string) Validation {
	sc, err := v.registry.Lookup(contextName)
	if err != nil {
		return rejected(ErrContextNotFound, fmt.Sprintf("unknown storage context %q", contextName))
	}

	if size := int64(len(content)); size > sc.MaxSize {
		return rejected(ErrFileTooLarge, fmt.Sprintf("file is %d bytes, context %s allows at most %d", size, contextName, sc.MaxSize))
	}

	contentType := ContentTypeForFilename(filename)
	if !sc.AllowsType(contentType) {
		return rejected(ErrContentTypeNotAllowed, fmt.Sprintf("content type %s is not allowed for context %s", contentType, contextName))
	}

	return accepted()
}
