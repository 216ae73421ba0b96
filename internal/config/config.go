package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Dataset source kinds.
const (
	SourceFile     = "file"
	SourceS3       = "s3"
	SourcePostgres = "postgres"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr   string
	CORSOrigins  string // Comma-separated allowed origins
	RateLimitMax int    // Requests per minute per IP

	// TLS
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string

	// Dataset
	DatasetSource string // file, s3 or postgres
	DatasetPath   string
	S3Bucket      string
	S3Key         string
	AWSRegion     string
	DatabaseURL   string

	// Boundaries
	GeoTemplatePath string

	// Cache
	CacheTTL          time.Duration // 0 disables the dataset cache
	RedisURL          string        // empty uses the in-process cache
	CacheWarmInterval time.Duration // 0 disables the warmer

	// Tokens
	TokenSecret string
	TokenTTL    time.Duration

	// OIDC
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:          getEnv("ENV", "development"),
		ServerAddr:   getEnv("SERVER_ADDR", ":5000"),
		CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
		RateLimitMax: getInt("RATE_LIMIT_MAX", 100),

		TLSEnabled:  getEnv("TLS_ENABLED", "") != "",
		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		DatasetSource: getEnv("DATASET_SOURCE", SourceFile),
		DatasetPath:   getEnv("DATASET_PATH", "data/crime_data.csv"),
		S3Bucket:      getEnv("S3_BUCKET", ""),
		S3Key:         getEnv("S3_KEY", "crime_data.csv"),
		AWSRegion:     getEnv("AWS_REGION", ""),
		DatabaseURL:   getEnv("DATABASE_URL", "postgres://localhost:5432/crimestats?sslmode=disable"),

		GeoTemplatePath: getEnv("GEO_TEMPLATE_PATH", "data/malaysia.geojson"),

		CacheTTL:          getDuration("CACHE_TTL", 0),
		RedisURL:          getEnv("REDIS_URL", ""),
		CacheWarmInterval: getDuration("CACHE_WARM_INTERVAL", 0),

		TokenSecret: getEnv("TOKEN_SECRET", ""),
		TokenTTL:    getDuration("TOKEN_TTL", time.Hour),

		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("OIDC_REDIRECT_URL", "http://localhost:5000/auth/callback"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("ignoring invalid integer setting", "key", key, "value", raw)
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("ignoring invalid duration setting", "key", key, "value", raw)
		return fallback
	}
	return v
}

// Validate checks that the settings required by the chosen source and features
// are present.
func (c *Config) Validate() error {
	var errs []error

	switch c.DatasetSource {
	case SourceFile:
		if c.DatasetPath == "" {
			errs = append(errs, errors.New("DATASET_PATH is required for the file source"))
		}
	case SourceS3:
		if c.S3Bucket == "" || c.S3Key == "" {
			errs = append(errs, errors.New("S3_BUCKET and S3_KEY are required for the s3 source"))
		}
	case SourcePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres source"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DATASET_SOURCE %q", c.DatasetSource))
	}

	if c.GeoTemplatePath == "" {
		errs = append(errs, errors.New("GEO_TEMPLATE_PATH is required"))
	}
	if c.TokenSecret == "" && !c.IsDev() {
		errs = append(errs, errors.New("TOKEN_SECRET is required outside development"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.CacheTTL < 0 || c.CacheWarmInterval < 0 {
		errs = append(errs, errors.New("cache durations must not be negative"))
	}
	if c.TLSEnabled && (c.TLSCertFile == "" || c.TLSKeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE are required when TLS is enabled"))
	}

	return errors.Join(errs...)
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// OIDCEnabled returns true if an OIDC issuer is configured.
func (c *Config) OIDCEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCClientID != ""
}

// UsesPostgres returns true if the dataset is read from the database.
func (c *Config) UsesPostgres() bool {
	return c.DatasetSource == SourcePostgres
}
