package config

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/property-storage/pkg/propertystorage"
	catalogpg "github.com/tendant/property-storage/pkg/propertystorage/catalog/postgres"
	memorystorage "github.com/tendant/property-storage/pkg/propertystorage/storage/memory"
	s3storage "github.com/tendant/property-storage/pkg/propertystorage/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of
// library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:                "8080",
		Environment:         "development",
		StorageType:         "memory",
		ResolverBucket:      "property-media",
		SignedURLTTLSeconds: int(propertystorage.DefaultSignedURLTTL / time.Second),
	}
}

// S3Config holds settings shared by every S3-backed bucket.
type S3Config struct {
	Region                 string
	Endpoint               string
	AccessKeyID            string
	SecretAccessKey        string
	UsePathStyle           bool
	CreateBucketIfNotExist bool
}

// ServerConfig represents server configuration for the property storage
// service.
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// DatabaseURL is the provider catalog connection string. Empty disables
	// ownership reconciliation.
	DatabaseURL string

	// Storage configuration
	StorageType string // "memory", "s3"
	S3          S3Config

	// URL resolution
	PublicBaseURL       string
	ResolverBucket      string
	SignedURLTTLSeconds int
}

// Validate checks configuration consistency.
func (c *ServerConfig) Validate() error {
	switch c.StorageType {
	case "memory":
	case "s3":
		if c.S3.AccessKeyID == "" || c.S3.SecretAccessKey == "" {
			return fmt.Errorf("s3 storage requires access credentials")
		}
	default:
		return fmt.Errorf("unsupported storage type %q (use 'memory' or 's3')", c.StorageType)
	}
	if c.ResolverBucket == "" {
		return fmt.Errorf("resolver bucket is required")
	}
	if c.SignedURLTTLSeconds <= 0 {
		return fmt.Errorf("signed URL TTL must be positive")
	}
	return nil
}

// BuildService constructs the storage service and its backends from the
// configuration. The returned cleanup releases the database pool and drains
// background work; callers must invoke it on shutdown.
func (c *ServerConfig) BuildService(ctx context.Context) (propertystorage.Service, func(), error) {
	registry := propertystorage.DefaultRegistry()

	options := []propertystorage.Option{
		propertystorage.WithRegistry(registry),
		propertystorage.WithResolverBucket(c.ResolverBucket),
		propertystorage.WithPublicBaseURL(c.PublicBaseURL),
		propertystorage.WithSignedURLTTL(time.Duration(c.SignedURLTTLSeconds) * time.Second),
	}

	for _, bucket := range registry.Buckets() {
		store, err := c.buildStore(bucket)
		if err != nil {
			return nil, nil, fmt.Errorf("bucket %q: %w", bucket, err)
		}
		options = append(options, propertystorage.WithBlobStore(bucket, store))
	}

	var pool *pgxpool.Pool
	if c.DatabaseURL != "" {
		var err error
		pool, err = pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create catalog pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to ping catalog database: %w", err)
		}
		options = append(options, propertystorage.WithCatalog(catalogpg.NewWithPool(pool)))
	}

	svc, err := propertystorage.New(options...)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, nil, err
	}

	cleanup := func() {
		svc.Close()
		if pool != nil {
			pool.Close()
		}
	}
	return svc, cleanup, nil
}

func (c *ServerConfig) buildStore(bucket string) (propertystorage.BlobStore, error) {
	switch c.StorageType {
	case "memory":
		return memorystorage.New(), nil
	case "s3":
		return s3storage.New(s3storage.Config{
			Region:                 c.S3.Region,
			Bucket:                 bucket,
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			Endpoint:               c.S3.Endpoint,
			UsePathStyle:           c.S3.UsePathStyle,
			PublicBaseURL:          c.PublicBaseURL,
			CreateBucketIfNotExist: c.S3.CreateBucketIfNotExist,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type %q", c.StorageType)
	}
}
