package config_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/property-storage/pkg/propertystorage"
	"github.com/tendant/property-storage/pkg/propertystorage/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "memory", cfg.StorageType)
	assert.Equal(t, "property-media", cfg.ResolverBucket)
	assert.Equal(t, 3600, cfg.SignedURLTTLSeconds)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoad_Options(t *testing.T) {
	cfg, err := config.Load(
		config.WithPort("9090"),
		config.WithEnvironment("testing"),
		config.WithPublicBaseURL("https://cdn.example.com"),
		config.WithResolverBucket("tenant-documents"),
		config.WithSignedURLTTLSeconds(600),
	)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "testing", cfg.Environment)
	assert.Equal(t, "https://cdn.example.com", cfg.PublicBaseURL)
	assert.Equal(t, "tenant-documents", cfg.ResolverBucket)
	assert.Equal(t, 600, cfg.SignedURLTTLSeconds)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts []config.Option
	}{
		{
			name: "unknown storage type",
			opts: []config.Option{func(c *config.ServerConfig) error {
				c.StorageType = "tape"
				return nil
			}},
		},
		{
			name: "s3 without credentials",
			opts: []config.Option{config.WithS3Storage(config.S3Config{Region: "us-east-1"})},
		},
		{
			name: "empty resolver bucket",
			opts: []config.Option{func(c *config.ServerConfig) error {
				c.ResolverBucket = ""
				return nil
			}},
		},
		{
			name: "non-positive ttl",
			opts: []config.Option{func(c *config.ServerConfig) error {
				c.SignedURLTTLSeconds = 0
				return nil
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(tt.opts...)
			assert.Error(t, err)
		})
	}
}

func TestWithEnv(t *testing.T) {
	t.Setenv("PS_PORT", "9000")
	t.Setenv("PS_ENVIRONMENT", "production")
	t.Setenv("PS_STORAGE_TYPE", "s3")
	t.Setenv("PS_S3_REGION", "eu-west-1")
	t.Setenv("PS_S3_ACCESS_KEY_ID", "key")
	t.Setenv("PS_S3_SECRET_ACCESS_KEY", "secret")
	t.Setenv("PS_S3_USE_PATH_STYLE", "true")
	t.Setenv("PS_PUBLIC_BASE_URL", "https://cdn.example.com")
	t.Setenv("PS_SIGNED_URL_TTL", "120")

	cfg, err := config.Load(config.WithEnv("PS_"))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "s3", cfg.StorageType)
	assert.Equal(t, "eu-west-1", cfg.S3.Region)
	assert.Equal(t, "key", cfg.S3.AccessKeyID)
	assert.True(t, cfg.S3.UsePathStyle)
	assert.Equal(t, "https://cdn.example.com", cfg.PublicBaseURL)
	assert.Equal(t, 120, cfg.SignedURLTTLSeconds)
}

func TestWithEnv_InvalidValues(t *testing.T) {
	t.Setenv("PS_S3_USE_PATH_STYLE", "maybe")
	_, err := config.Load(config.WithEnv("PS_"))
	assert.Error(t, err)
}

func TestWithEnv_InvalidTTL(t *testing.T) {
	t.Setenv("PS_SIGNED_URL_TTL", "-5")
	_, err := config.Load(config.WithEnv("PS_"))
	assert.Error(t, err)
}

func TestBuildService_Memory(t *testing.T) {
	cfg, err := config.Load(config.WithMemoryStorage())
	require.NoError(t, err)

	svc, cleanup, err := cfg.BuildService(context.Background())
	require.NoError(t, err)
	defer cleanup()

	path, err := svc.Upload(context.Background(), propertystorage.UploadRequest{
		FileName: "photo.jpg",
		Content:  []byte("image bytes"),
		Context:  propertystorage.ContextPropertyPhotos,
		Metadata: map[string]string{
			propertystorage.MetadataKeyOwnerID:    "11111111-1111-1111-1111-111111111111",
			propertystorage.MetadataKeyPropertyID: "p1",
			propertystorage.MetadataKeyCategory:   "exterior",
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, path)
}
