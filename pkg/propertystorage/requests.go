package propertystorage

// Request/Response DTOs

// UploadRequest contains parameters for storing a single file.
type UploadRequest struct {
	FileName string
	Content  []byte
	Context  string
	Metadata map[string]string
}

// FileUpload is one file within a batch upload.
type FileUpload struct {
	FileName string
	Content  []byte
}

// BatchUploadRequest contains parameters for storing several files under the
// same context and metadata.
type BatchUploadRequest struct {
	Files    []FileUpload
	Context  string
	Metadata map[string]string
}

// BatchUploadResult reports a batch outcome as two lists. A filename in
// FailedFilenames means that file failed; no positional correspondence with
// the input is guaranteed beyond that. Empty files appear in neither list.
type BatchUploadResult struct {
	StoredPaths     []string `json:"stored_paths"`
	FailedFilenames []string `json:"failed_filenames"`
}
