package propertystorage

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PathEra classifies the historical format of a stored path. The era is
// derived purely from the path's shape; no side table maps path to era,
// because historical paths predate any such table.
type PathEra int

const (
	// PathEraUnknown marks empty or otherwise unusable entries.
	PathEraUnknown PathEra = iota

	// PathEraAbsolute marks entries that are already full URLs. They are
	// passed through untouched and belong to neither storage era.
	PathEraAbsolute

	// PathEraLegacy marks the pre-existing two-segment format: a UUID
	// followed by a filename, with no owner-id prefix convention.
	PathEraLegacy

	// PathEraSecure marks paths produced by the PathBuilder, always
	// owner-id-prefixed.
	PathEraSecure
)

func (e PathEra) String() string {
	switch e {
	case PathEraAbsolute:
		return "absolute"
	case PathEraLegacy:
		return "legacy"
	case PathEraSecure:
		return "secure"
	default:
		return "unknown"
	}
}

var urlSchemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// ClassifyPath derives the era of a stored path from its shape. This is the
// single classification point; resolution branches on the returned tag
// exactly once per path.
func ClassifyPath(path string) PathEra {
	if strings.TrimSpace(path) == "" {
		return PathEraUnknown
	}
	if urlSchemePattern.MatchString(path) {
		return PathEraAbsolute
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) == 2 {
		if _, err := uuid.Parse(segments[0]); err == nil {
			return PathEraLegacy
		}
	}
	return PathEraSecure
}

// DefaultSignedURLTTL is the lifetime of signed URLs when none is configured.
const DefaultSignedURLTTL = time.Hour

// ResolverConfig configures a URLResolver.
type ResolverConfig struct {
	// Store is the blob store serving resolved paths. May be nil, in which
	// case every non-absolute path resolves via base-URL concatenation.
	Store BlobStore

	// Bucket is the bucket name used when concatenating URLs.
	Bucket string

	// PublicBaseURL is the fixed public base used for legacy paths and as the
	// best-effort fallback when the provider call fails.
	PublicBaseURL string

	// Private selects signed URLs over public ones for secure paths.
	Private bool

	// SignedURLTTL bounds signed URL lifetime (default: DefaultSignedURLTTL).
	SignedURLTTL time.Duration

	Logger *slog.Logger
}

// URLResolver turns stored relative paths into externally fetchable URLs,
// handling both historical path formats through one uniform API.
type URLResolver struct {
	store         BlobStore
	bucket        string
	publicBaseURL string
	private       bool
	signedURLTTL  time.Duration
	logger        *slog.Logger
}

// NewURLResolver creates a URLResolver from the given configuration.
func NewURLResolver(cfg ResolverConfig) *URLResolver {
	if cfg.SignedURLTTL <= 0 {
		cfg.SignedURLTTL = DefaultSignedURLTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &URLResolver{
		store:         cfg.Store,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		private:       cfg.Private,
		signedURLTTL:  cfg.SignedURLTTL,
		logger:        cfg.Logger,
	}
}

// Resolve maps stored paths to URLs. Entries that cannot be resolved are
// dropped, not replaced with placeholders, so the output may be shorter than
// the input. Cancelling the context stops work on remaining entries; already
// resolved URLs are still returned.
func (r *URLResolver) Resolve(ctx context.Context, paths []string) []string {
	urls := make([]string, 0, len(paths))
	dropped := 0

	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		url, ok := r.resolveOne(ctx, path)
		if !ok {
			dropped++
			continue
		}
		urls = append(urls, url)
	}

	if dropped > 0 {
		r.logger.Warn("Dropped unresolvable storage paths", "dropped", dropped, "total", len(paths))
	}
	return urls
}

// resolveOne applies the fallback chain for a single path: absolute-URL
// passthrough, then era classification, then provider call for secure paths
// with legacy-style concatenation as best-effort recovery.
func (r *URLResolver) resolveOne(ctx context.Context, path string) (string, bool) {
	switch ClassifyPath(path) {
	case PathEraAbsolute:
		return path, true

	case PathEraLegacy:
		return r.concatURL(path)

	case PathEraSecure:
		if r.store == nil {
			return r.concatURL(path)
		}
		if r.private {
			url, err := r.store.CreateSignedURL(ctx, path, r.signedURLTTL)
			if err != nil {
				r.logger.Warn("Signed URL generation failed, falling back to public base URL",
					"bucket", r.bucket, "path", path, "error", err)
				return r.concatURL(path)
			}
			return url, true
		}
		if url := r.store.GetPublicURL(path); url != "" {
			return url, true
		}
		return r.concatURL(path)

	default:
		return "", false
	}
}

// concatURL builds {base}/{bucket}/{path} with no network call. This is the
// legacy resolution scheme and the terminal fallback for secure paths.
func (r *URLResolver) concatURL(path string) (string, bool) {
	if r.publicBaseURL == "" {
		return "", false
	}
	return fmt.Sprintf("%s/%s/%s", r.publicBaseURL, r.bucket, strings.TrimPrefix(path, "/")), true
}
