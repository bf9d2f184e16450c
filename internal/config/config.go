package config

import (
	"fmt"
	"os"
	"strconv"
)

// Store backend selectors.
const (
	StoreMemory    = "memory"
	StorePostgres  = "postgres"
	StoreFirestore = "firestore"
)

// Asset uploader selectors.
const (
	UploaderNone       = "none"
	UploaderS3         = "s3"
	UploaderCloudinary = "cloudinary"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	Logger LoggerConfig
	Auth   AuthConfig
	Store  StoreConfig
	Assets AssetsConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey string
}

// StoreConfig selects and configures the catalog document store backend.
type StoreConfig struct {
	Backend          string // "memory", "postgres" or "firestore"
	Postgres         PostgresConfig
	FirestoreProject string
}

// PostgresConfig holds connection settings for the Postgres-backed store.
type PostgresConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Database       string
	MaxConnections int
	MinConnections int
}

// AssetsConfig selects and configures the image asset host.
type AssetsConfig struct {
	Uploader   string // "none", "s3" or "cloudinary"
	S3         S3Config
	Cloudinary CloudinaryConfig
}

// S3Config holds AWS S3 configuration for hosted product images.
type S3Config struct {
	Bucket string
	Region string
	Prefix string // key prefix within the bucket (e.g. "menu-images/")
}

// CloudinaryConfig holds Cloudinary upload credentials.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", StoreMemory),
			Postgres: PostgresConfig{
				Host:           getEnv("DB_HOST", "localhost"),
				Port:           getEnvAsInt("DB_PORT", 5432),
				User:           getEnv("DB_USER", "postgres"),
				Password:       getEnv("DB_PASSWORD", ""),
				Database:       getEnv("DB_NAME", "menuadmin"),
				MaxConnections: getEnvAsInt("DB_MAX_CONNECTIONS", 25),
				MinConnections: getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			},
			FirestoreProject: getEnv("FIRESTORE_PROJECT_ID", ""),
		},
		Assets: AssetsConfig{
			Uploader: getEnv("ASSET_UPLOADER", UploaderNone),
			S3: S3Config{
				Bucket: getEnv("S3_BUCKET", ""),
				Region: getEnv("S3_REGION", "us-east-1"),
				Prefix: getEnv("S3_PREFIX", "menu-images/"),
			},
			Cloudinary: CloudinaryConfig{
				CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
				APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
				APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
				Folder:    getEnv("CLOUDINARY_FOLDER", "menu"),
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	switch c.Store.Backend {
	case StoreMemory:
	case StorePostgres:
		p := c.Store.Postgres
		if p.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if p.Port < 1 || p.Port > 65535 {
			return fmt.Errorf("invalid database port: %d", p.Port)
		}
		if p.User == "" {
			return fmt.Errorf("database user is required")
		}
		if p.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if p.MinConnections < 1 || p.MaxConnections < 1 {
			return fmt.Errorf("database connection counts must be at least 1")
		}
		if p.MinConnections > p.MaxConnections {
			return fmt.Errorf("database min connections cannot exceed max connections")
		}
	case StoreFirestore:
		if c.Store.FirestoreProject == "" {
			return fmt.Errorf("firestore project ID is required")
		}
	default:
		return fmt.Errorf("invalid store backend: %s (must be memory, postgres or firestore)", c.Store.Backend)
	}

	switch c.Assets.Uploader {
	case UploaderNone:
	case UploaderS3:
		if c.Assets.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when the S3 uploader is enabled")
		}
		if c.Assets.S3.Region == "" {
			return fmt.Errorf("S3 region is required when the S3 uploader is enabled")
		}
	case UploaderCloudinary:
		cl := c.Assets.Cloudinary
		if cl.CloudName == "" || cl.APIKey == "" || cl.APISecret == "" {
			return fmt.Errorf("cloudinary cloud name, API key and API secret are required when the Cloudinary uploader is enabled")
		}
	default:
		return fmt.Errorf("invalid asset uploader: %s (must be none, s3 or cloudinary)", c.Assets.Uploader)
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
