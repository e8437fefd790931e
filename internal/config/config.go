package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Storage backends.
const (
	StorageS3    = "s3"
	StorageGCS   = "gcs"
	StorageAzure = "azure"
	StorageLocal = "local"
)

// Record stores.
const (
	RecordStorePostgres = "postgres"
	RecordStoreMemory   = "memory"
)

// Config holds the environment driven configuration for the assistant service.
type Config struct {
	// Service Configuration
	ServiceName        string        `env:"SERVICE_NAME" envDefault:"assistant-api"`
	ServiceVersion     string        `env:"SERVICE_VERSION" envDefault:"dev"`
	Environment        string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort           int           `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat          string        `env:"LOG_FORMAT" envDefault:"json"`
	LogPIILevel        string        `env:"LOG_PII_LEVEL" envDefault:"hashed"`
	EnableTracing      bool          `env:"ENABLE_TRACING" envDefault:"false"`
	EnableOTLPMetrics  bool          `env:"ENABLE_OTLP_METRICS" envDefault:"false"`
	OTLPEndpoint       string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	TraceSamplingRate  float64       `env:"OTEL_TRACE_SAMPLING_RATE" envDefault:"1.0"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// Record store
	RecordStore          string        `env:"RECORD_STORE" envDefault:"postgres"`
	DBPostgresqlWriteDSN string        `env:"DB_POSTGRESQL_WRITE_DSN"`
	DBMaxIdleConns       int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns       int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime       time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	PromptCacheSize      int           `env:"PROMPT_CACHE_SIZE" envDefault:"512"`

	// Chat completion backend (OpenAI compatible)
	ChatAPIBaseURL string        `env:"CHAT_API_BASE_URL" envDefault:"https://api.openai.com/v1"`
	ChatAPIKey     string        `env:"CHAT_API_KEY"`
	ChatModel      string        `env:"CHAT_MODEL" envDefault:"gpt-4o-mini"`
	ChatTimeout    time.Duration `env:"CHAT_TIMEOUT" envDefault:"60s"`

	// Prompt templates; empty uses the built-in set
	PromptTemplatesPath string `env:"PROMPT_TEMPLATES_PATH"`

	// Image generation backend
	ImageAPIURL          string        `env:"IMAGE_API_URL" envDefault:"https://api.openai.com/v1/images/generations"`
	ImageAPIKey          string        `env:"IMAGE_API_KEY"`
	ImageModel           string        `env:"IMAGE_MODEL" envDefault:"dall-e-3"`
	ImageSize            string        `env:"IMAGE_SIZE" envDefault:"1024x1024"`
	ImageStyle           string        `env:"IMAGE_STYLE" envDefault:"vivid"`
	ImageQuality         string        `env:"IMAGE_QUALITY" envDefault:"standard"`
	ImageCount           int           `env:"IMAGE_COUNT" envDefault:"1"`
	ImageTimeout         time.Duration `env:"IMAGE_TIMEOUT" envDefault:"120s"`
	ImageDownloadTimeout time.Duration `env:"IMAGE_DOWNLOAD_TIMEOUT" envDefault:"30s"`
	MaxImageBytes        int64         `env:"MAX_IMAGE_BYTES" envDefault:"20971520"`

	// User uploads
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`

	// Storage Backend Selection
	StorageBackend       string `env:"STORAGE_BACKEND" envDefault:"local"`
	StoragePublicBaseURL string `env:"STORAGE_PUBLIC_BASE_URL"`
	StorageDefaultExt    string `env:"STORAGE_DEFAULT_EXTENSION" envDefault:".png"`

	// Local Storage Configuration
	LocalStoragePath string `env:"LOCAL_STORAGE_PATH" envDefault:"./data/images"`

	// S3 Storage Configuration
	S3Endpoint     string `env:"S3_ENDPOINT"`
	S3Region       string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Bucket       string `env:"S3_BUCKET"`
	S3AccessKeyID  string `env:"S3_ACCESS_KEY_ID"`
	S3SecretKey    string `env:"S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle bool   `env:"S3_USE_PATH_STYLE" envDefault:"false"`

	// GCS Storage Configuration
	GCSBucket          string `env:"GCS_BUCKET"`
	GCSCredentialsFile string `env:"GCS_CREDENTIALS_FILE"`

	// Azure Blob Storage Configuration
	AzureConnectionString string `env:"AZURE_STORAGE_CONNECTION_STRING"`
	AzureContainer        string `env:"AZURE_STORAGE_CONTAINER" envDefault:"images"`

	// Authentication
	AuthEnabled       bool   `env:"AUTH_ENABLED" envDefault:"false"`
	AuthIssuer        string `env:"AUTH_ISSUER"`
	AuthAudience      string `env:"AUTH_AUDIENCE"`
	AuthJWKSURL       string `env:"AUTH_JWKS_URL"`
	AuthUsernameClaim string `env:"AUTH_USERNAME_CLAIM" envDefault:"preferred_username"`
	AuthDevUsername   string `env:"AUTH_DEV_USERNAME" envDefault:"anonymous"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	c.RecordStore = strings.ToLower(strings.TrimSpace(c.RecordStore))
	c.ChatAPIBaseURL = strings.TrimRight(strings.TrimSpace(c.ChatAPIBaseURL), "/")
	c.ChatAPIKey = strings.TrimSpace(c.ChatAPIKey)
	c.ImageAPIKey = strings.TrimSpace(c.ImageAPIKey)
	c.S3Bucket = strings.TrimSpace(c.S3Bucket)
	c.S3AccessKeyID = strings.TrimSpace(c.S3AccessKeyID)
	c.S3SecretKey = strings.TrimSpace(c.S3SecretKey)
	c.S3Endpoint = strings.TrimSpace(c.S3Endpoint)
	c.GCSBucket = strings.TrimSpace(c.GCSBucket)
	c.AzureConnectionString = strings.TrimSpace(c.AzureConnectionString)
	c.AzureContainer = strings.TrimSpace(c.AzureContainer)

	if c.StoragePublicBaseURL = strings.TrimSpace(c.StoragePublicBaseURL); c.StoragePublicBaseURL == "" && c.StorageBackend == StorageLocal {
		c.StoragePublicBaseURL = fmt.Sprintf("http://localhost:%d/files/", c.HTTPPort)
	}
	if c.StoragePublicBaseURL != "" && !strings.HasSuffix(c.StoragePublicBaseURL, "/") {
		c.StoragePublicBaseURL += "/"
	}
	if c.StorageDefaultExt != "" && !strings.HasPrefix(c.StorageDefaultExt, ".") {
		c.StorageDefaultExt = "." + c.StorageDefaultExt
	}
	if c.MaxImageBytes <= 0 {
		c.MaxImageBytes = 20 * 1024 * 1024
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 10 * 1024 * 1024
	}
	if c.ImageCount <= 0 {
		c.ImageCount = 1
	}
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	var errs []error

	switch c.RecordStore {
	case RecordStorePostgres:
		if strings.TrimSpace(c.DBPostgresqlWriteDSN) == "" {
			errs = append(errs, errors.New("DB_POSTGRESQL_WRITE_DSN is required when RECORD_STORE is postgres"))
		}
	case RecordStoreMemory:
	default:
		errs = append(errs, fmt.Errorf("RECORD_STORE %q is not one of postgres, memory", c.RecordStore))
	}

	switch c.StorageBackend {
	case StorageLocal:
		if strings.TrimSpace(c.LocalStoragePath) == "" {
			errs = append(errs, errors.New("LOCAL_STORAGE_PATH is required for the local storage backend"))
		}
	case StorageS3, StorageGCS, StorageAzure:
		if c.StoragePublicBaseURL == "" {
			errs = append(errs, fmt.Errorf("STORAGE_PUBLIC_BASE_URL is required for the %s storage backend", c.StorageBackend))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND %q is not one of s3, gcs, azure, local", c.StorageBackend))
	}
	if c.StoragePublicBaseURL != "" {
		if _, err := url.ParseRequestURI(c.StoragePublicBaseURL); err != nil {
			errs = append(errs, fmt.Errorf("STORAGE_PUBLIC_BASE_URL: %w", err))
		}
	}

	if c.AuthEnabled {
		if strings.TrimSpace(c.AuthIssuer) == "" {
			errs = append(errs, errors.New("AUTH_ISSUER is required when AUTH_ENABLED is true"))
		}
		if strings.TrimSpace(c.AuthJWKSURL) == "" {
			errs = append(errs, errors.New("AUTH_JWKS_URL is required when AUTH_ENABLED is true"))
		}
	} else if strings.TrimSpace(c.AuthDevUsername) == "" {
		errs = append(errs, errors.New("AUTH_DEV_USERNAME is required when AUTH_ENABLED is false"))
	}

	return errors.Join(errs...)
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsLocalStorage returns true if local storage backend is configured.
func (c *Config) IsLocalStorage() bool {
	return c.StorageBackend == StorageLocal
}

// UsesMemoryStore reports whether records are kept in process memory.
func (c *Config) UsesMemoryStore() bool {
	return c.RecordStore == RecordStoreMemory
}
