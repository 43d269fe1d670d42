package config

// Programmatic options mirroring the environment overrides in env.go.

// WithPort sets the HTTP listen port.
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port != "" {
			c.Port = port
		}
		return nil
	}
}

// WithEnvironment sets the runtime environment name.
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env != "" {
			c.Environment = env
		}
		return nil
	}
}

// WithDatabaseURL sets the provider catalog connection string, enabling
// ownership reconciliation.
func WithDatabaseURL(url string) Option {
	return func(c *ServerConfig) error {
		c.DatabaseURL = url
		return nil
	}
}

// WithMemoryStorage selects in-memory blob storage.
func WithMemoryStorage() Option {
	return func(c *ServerConfig) error {
		c.StorageType = "memory"
		return nil
	}
}

// WithS3Storage selects S3-backed blob storage.
func WithS3Storage(s3 S3Config) Option {
	return func(c *ServerConfig) error {
		c.StorageType = "s3"
		c.S3 = s3
		return nil
	}
}

// WithPublicBaseURL sets the fixed public base URL used for legacy path
// resolution.
func WithPublicBaseURL(url string) Option {
	return func(c *ServerConfig) error {
		c.PublicBaseURL = url
		return nil
	}
}

// WithResolverBucket names the bucket URL resolution reads from.
func WithResolverBucket(bucket string) Option {
	return func(c *ServerConfig) error {
		if bucket != "" {
			c.ResolverBucket = bucket
		}
		return nil
	}
}

// WithSignedURLTTLSeconds bounds signed URL lifetime.
func WithSignedURLTTLSeconds(seconds int) Option {
	return func(c *ServerConfig) error {
		if seconds > 0 {
			c.SignedURLTTLSeconds = seconds
		}
		return nil
	}
}
