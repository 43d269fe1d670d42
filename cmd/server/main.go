package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/property-storage/pkg/propertystorage"
	"github.com/tendant/property-storage/pkg/propertystorage/api"
	catalogpg "github.com/tendant/property-storage/pkg/propertystorage/catalog/postgres"
	memorystorage "github.com/tendant/property-storage/pkg/propertystorage/storage/memory"
	s3storage "github.com/tendant/property-storage/pkg/propertystorage/storage/s3"
)

type Config struct {
	Port          string `env:"PORT" env-default:"8080"`
	Environment   string `env:"ENVIRONMENT" env-default:"development"`
	DatabaseURL   string `env:"DATABASE_URL" env-default:""`
	StorageType   string `env:"STORAGE_TYPE" env-default:"memory"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" env-default:""`
	Resolver      ResolverConfig
	S3            S3Config
}

type ResolverConfig struct {
	Bucket        string `env:"RESOLVER_BUCKET" env-default:"property-media"`
	SignedURLTTLS int    `env:"SIGNED_URL_TTL" env-default:"3600"`
}

type S3Config struct {
	Endpoint        string `env:"AWS_S3_ENDPOINT" env-default:"http://localhost:9000"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID" env-default:"minioadmin"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" env-default:"minioadmin"`
	Region          string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"true"`
	CreateBuckets   bool   `env:"AWS_S3_CREATE_BUCKETS" env-default:"false"`
}

func NewDbPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

func buildStore(config Config, bucket string) (propertystorage.BlobStore, error) {
	switch config.StorageType {
	case "memory":
		return memorystorage.New(), nil
	case "s3":
		return s3storage.New(s3storage.Config{
			Region:                 config.S3.Region,
			Bucket:                 bucket,
			AccessKeyID:            config.S3.AccessKeyID,
			SecretAccessKey:        config.S3.SecretAccessKey,
			Endpoint:               config.S3.Endpoint,
			UsePathStyle:           config.S3.UsePathStyle,
			PublicBaseURL:          config.PublicBaseURL,
			CreateBucketIfNotExist: config.S3.CreateBuckets,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type %q", config.StorageType)
	}
}

func main() {
	var config Config
	if err := cleanenv.ReadEnv(&config); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	registry := propertystorage.DefaultRegistry()

	options := []propertystorage.Option{
		propertystorage.WithRegistry(registry),
		propertystorage.WithPublicBaseURL(config.PublicBaseURL),
		propertystorage.WithResolverBucket(config.Resolver.Bucket),
		propertystorage.WithSignedURLTTL(time.Duration(config.Resolver.SignedURLTTLS) * time.Second),
	}

	for _, bucket := range registry.Buckets() {
		store, err := buildStore(config, bucket)
		if err != nil {
			slog.Error("Failed to initialize storage backend", "bucket", bucket, "err", err)
			os.Exit(1)
		}
		options = append(options, propertystorage.WithBlobStore(bucket, store))
	}

	var dbPool *pgxpool.Pool
	if config.DatabaseURL != "" {
		var err error
		dbPool, err = NewDbPool(ctx, config.DatabaseURL)
		if err != nil {
			slog.Error("Failed to connect to catalog database", "err", err)
			os.Exit(1)
		}
		defer dbPool.Close()
		options = append(options, propertystorage.WithCatalog(catalogpg.NewWithPool(dbPool)))
	} else {
		slog.Warn("No DATABASE_URL configured, ownership reconciliation is disabled")
	}

	svc, err := propertystorage.New(options...)
	if err != nil {
		slog.Error("Failed to build storage service", "err", err)
		os.Exit(1)
	}
	defer svc.Close()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Mount("/api/v1/storage", api.NewStorageHandler(svc, slog.Default()).Routes())

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.Port),
		Handler: r,
	}

	go func() {
		slog.Info("Property storage server starting",
			"port", config.Port, "env", config.Environment, "storage", config.StorageType)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "err", err)
		os.Exit(1)
	}

	slog.Info("Server exiting")
}
