package config

import (
	"fmt"
	"os"
	"strconv"
)

// WithEnv applies environment variable overrides using the provided prefix.
//
// Environment variable mapping:
//
//	PORT                 - Server port (default: "8080")
//	ENVIRONMENT          - Runtime environment (default: "development")
//	DATABASE_URL         - Catalog connection string ("postgres://..."); empty
//	                       disables ownership reconciliation
//	STORAGE_TYPE         - "memory" (default) or "s3"
//	S3_REGION            - AWS region
//	S3_ENDPOINT          - Custom endpoint for S3-compatible services
//	S3_ACCESS_KEY_ID     - Access key
//	S3_SECRET_ACCESS_KEY - Secret key
//	S3_USE_PATH_STYLE    - "true" for MinIO-style addressing
//	PUBLIC_BASE_URL      - Fixed public base URL for legacy path resolution
//	RESOLVER_BUCKET      - Bucket URL resolution reads from
//	SIGNED_URL_TTL       - Signed URL lifetime in seconds
func WithEnv(prefix string) Option {
	return func(c *ServerConfig) error {
		if v, ok := lookupEnv(prefix, "PORT"); ok && v != "" {
			c.Port = v
		}
		if v, ok := lookupEnv(prefix, "ENVIRONMENT"); ok && v != "" {
			c.Environment = v
		}
		if v, ok := lookupEnv(prefix, "DATABASE_URL"); ok {
			c.DatabaseURL = v
		}
		if v, ok := lookupEnv(prefix, "STORAGE_TYPE"); ok && v != "" {
			c.StorageType = v
		}
		if v, ok := lookupEnv(prefix, "S3_REGION"); ok {
			c.S3.Region = v
		}
		if v, ok := lookupEnv(prefix, "S3_ENDPOINT"); ok {
			c.S3.Endpoint = v
		}
		if v, ok := lookupEnv(prefix, "S3_ACCESS_KEY_ID"); ok {
			c.S3.AccessKeyID = v
		}
		if v, ok := lookupEnv(prefix, "S3_SECRET_ACCESS_KEY"); ok {
			c.S3.SecretAccessKey = v
		}
		if v, ok := lookupEnv(prefix, "S3_USE_PATH_STYLE"); ok && v != "" {
			pathStyle, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid S3_USE_PATH_STYLE value %q: %w", v, err)
			}
			c.S3.UsePathStyle = pathStyle
		}
		if v, ok := lookupEnv(prefix, "PUBLIC_BASE_URL"); ok {
			c.PublicBaseURL = v
		}
		if v, ok := lookupEnv(prefix, "RESOLVER_BUCKET"); ok && v != "" {
			c.ResolverBucket = v
		}
		if v, ok := lookupEnv(prefix, "SIGNED_URL_TTL"); ok && v != "" {
			ttl, err := strconv.Atoi(v)
			if err != nil || ttl <= 0 {
				return fmt.Errorf("invalid SIGNED_URL_TTL value %q", v)
			}
			c.SignedURLTTLSeconds = ttl
		}
		return nil
	}
}

func lookupEnv(prefix, key string) (string, bool) {
	return os.LookupEnv(prefix + key)
}
