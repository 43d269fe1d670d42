package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/property-storage/pkg/propertystorage"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing.
const maxUploadMemory = 32 << 20

// StorageHandler exposes the storage service to the property-management CRUD
// routers over HTTP.
type StorageHandler struct {
	service propertystorage.Service
	logger  *slog.Logger
}

// NewStorageHandler creates a handler over the given service.
func NewStorageHandler(service propertystorage.Service, logger *slog.Logger) *StorageHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StorageHandler{service: service, logger: logger}
}

// Routes returns the router for storage endpoints.
func (h *StorageHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/upload", h.UploadFiles)
	r.Post("/upload/single", h.UploadFile)
	r.Post("/resolve", h.ResolveURLs)
	r.Delete("/objects", h.DeleteObject)
	r.Post("/documents/path", h.EncodeDocumentPath)
	r.Get("/documents/access", h.CheckDocumentAccess)
	return r
}

// UploadFiles handles multipart batch uploads. Per-file failures are reported
// in the failed_filenames list; the request itself succeeds whenever the
// batch could be processed at all.
func (h *StorageHandler) UploadFiles(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.logger.Error("Failed to parse multipart form", "error", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "invalid multipart form"})
		return
	}

	contextName := r.FormValue("context")
	if contextName == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "context is required"})
		return
	}

	// Every non-file form field becomes path metadata (owner_id, property_id,
	// tenant_id, category, ...).
	metadata := make(map[string]string)
	for key, values := range r.MultipartForm.Value {
		if key == "context" || len(values) == 0 {
			continue
		}
		metadata[key] = values[0]
	}
	if metadata[propertystorage.MetadataKeyOwnerID] == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "owner_id is required"})
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "at least one file is required"})
		return
	}

	files := make([]propertystorage.FileUpload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			h.logger.Error("Failed to open uploaded file", "filename", fh.Filename, "error", err)
			continue
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			h.logger.Error("Failed to read uploaded file", "filename", fh.Filename, "error", err)
			continue
		}
		files = append(files, propertystorage.FileUpload{FileName: fh.Filename, Content: content})
	}

	result := h.service.UploadBatch(r.Context(), propertystorage.BatchUploadRequest{
		Files:    files,
		Context:  contextName,
		Metadata: metadata,
	})

	render.JSON(w, r, result)
}

// UploadFile handles a single-file multipart upload. Unlike the batch
// endpoint, failures surface as HTTP errors: validation and metadata problems
// as 400, provider availability as 503.
func (h *StorageHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.logger.Error("Failed to parse multipart form", "error", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "invalid multipart form"})
		return
	}

	contextName := r.FormValue("context")
	if contextName == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "context is required"})
		return
	}

	metadata := make(map[string]string)
	for key, values := range r.MultipartForm.Value {
		if key == "context" || len(values) == 0 {
			continue
		}
		metadata[key] = values[0]
	}

	f, fh, err := r.FormFile("file")
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "file is required"})
		return
	}
	content, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		h.logger.Error("Failed to read uploaded file", "filename", fh.Filename, "error", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "failed to read file"})
		return
	}

	path, err := h.service.Upload(r.Context(), propertystorage.UploadRequest{
		FileName: fh.Filename,
		Content:  content,
		Context:  contextName,
		Metadata: metadata,
	})
	if err != nil {
		h.logger.Error("Upload failed", "filename", fh.Filename, "context", contextName, "error", err)
		render.Status(r, mapServiceError(err))
		render.JSON(w, r, map[string]string{"error": err.Error()})
		return
	}

	render.JSON(w, r, map[string]string{"path": path})
}

// ResolveURLsRequest is the request body for URL resolution.
type ResolveURLsRequest struct {
	Paths []string `json:"paths"`
}

// ResolveURLsResponse carries the resolved URLs. Unresolvable entries are
// dropped, so the list may be shorter than the request's.
type ResolveURLsResponse struct {
	URLs []string `json:"urls"`
}

// ResolveURLs maps stored paths to externally fetchable URLs.
func (h *StorageHandler) ResolveURLs(w http.ResponseWriter, r *http.Request) {
	var req ResolveURLsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "invalid request body"})
		return
	}

	urls := h.service.ResolveURLs(r.Context(), req.Paths)
	render.JSON(w, r, ResolveURLsResponse{URLs: urls})
}

// DeleteObjectRequest is the request body for object deletion.
type DeleteObjectRequest struct {
	Context string `json:"context"`
	Path    string `json:"path"`
}

// DeleteObject removes an object's bytes from its context's bucket.
func (h *StorageHandler) DeleteObject(w http.ResponseWriter, r *http.Request) {
	var req DeleteObjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Context == "" || req.Path == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "context and path are required"})
		return
	}

	deleted := h.service.Delete(r.Context(), req.Context, req.Path)
	render.JSON(w, r, map[string]bool{"deleted": deleted})
}

// EncodeDocumentPathRequest is the request body for document path encoding.
type EncodeDocumentPathRequest struct {
	OwnerID      string `json:"owner_id"`
	TenantID     string `json:"tenant_id"`
	DocumentType string `json:"document_type"`
	FileName     string `json:"filename"`
}

// EncodeDocumentPath builds a tenant document path from its identifiers.
func (h *StorageHandler) EncodeDocumentPath(w http.ResponseWriter, r *http.Request) {
	var req EncodeDocumentPathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "invalid request body"})
		return
	}

	path, err := propertystorage.EncodeDocumentPath(req.OwnerID, req.TenantID, req.DocumentType, req.FileName)
	if err != nil {
		h.logger.Error("Failed to encode document path", "error", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": err.Error()})
		return
	}

	render.JSON(w, r, map[string]string{"path": path})
}

// CheckDocumentAccess runs the fast ownership pre-check for a document path.
// This is advisory only; the CRUD layer must still authorize against the
// database.
func (h *StorageHandler) CheckDocumentAccess(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	userID := r.URL.Query().Get("user_id")
	if path == "" || userID == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "path and user_id are required"})
		return
	}

	allowed := propertystorage.QuickAccessCheck(path, userID)
	render.JSON(w, r, map[string]bool{"allowed": allowed})
}

// mapServiceError translates library errors to HTTP status codes. Exported
// behavior: caller errors map to 400, provider availability to 503.
func mapServiceError(err error) int {
	var ve *propertystorage.ValidationError
	switch {
	case errors.As(err, &ve),
		errors.Is(err, propertystorage.ErrContextNotFound),
		errors.Is(err, propertystorage.ErrMissingMetadata),
		errors.Is(err, propertystorage.ErrEmptyFile):
		return http.StatusBadRequest
	case errors.Is(err, propertystorage.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
