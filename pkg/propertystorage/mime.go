package propertystorage

import (
	"path/filepath"
	"strings"
)

// extensionContentTypes maps file extensions to the content types accepted by
// the default contexts. Anything unlisted resolves to
// application/octet-stream, which no context allows.
var extensionContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
}

// ContentTypeForFilename derives a content type from the filename's
// extension. No magic-byte sniffing is performed.
func ContentTypeForFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := extensionContentTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}
