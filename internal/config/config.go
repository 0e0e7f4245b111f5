// internal/config/config.go
// Configuration management using environment variables and optional config files

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"eventengine/internal/utils"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	Storage     StorageConfig
	Email       EmailConfig
	Features    FeatureFlags
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	RoutePrefix  string
	CORSOrigins  []string
	Timezone     string
}

// DatabaseConfig contains all database connection settings
type DatabaseConfig struct {
	MySQL   MySQLConfig
	MongoDB MongoDBConfig
	Redis   RedisConfig
}

// MySQLConfig contains MySQL-specific settings
type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// MongoDBConfig contains MongoDB-specific settings
type MongoDBConfig struct {
	URI      string
	Database string
}

// RedisConfig contains Redis-specific settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AuthConfig contains bearer/QR token settings. Identity issuance itself is
// an external collaborator; this module only validates bearer tokens it is
// handed and mints its own short-lived QR attendance tokens.
type AuthConfig struct {
	JWTSecret   string
	QRTokenTTL  time.Duration
	PresignTTL  time.Duration
}

// StorageConfig contains object-storage settings consumed by the
// ObjectStore external-collaborator contract.
type StorageConfig struct {
	Region      string
	Bucket      string
	AccessKey   string
	SecretKey   string
	UploadPath  string // static fallback directory, mirrors teacher's UploadPath
}

// EmailConfig contains SMTP settings consumed by the EmailSender contract.
type EmailConfig struct {
	SMTPHost string
	SMTPPort int
	Username string
	Password string
	FromAddr string
}

// FeatureFlags allows toggling features without code changes. Most runtime
// feature flags live in the system_config table (spec.md §9); these are the
// handful that must be known before the database is even reachable.
type FeatureFlags struct {
	MaintenanceMode bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist in production
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &Config{
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnvOrDefault("PORT", "8080"),
			ReadTimeout:  getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationOrDefault("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getDurationOrDefault("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RoutePrefix:  getEnvOrDefault("ROUTE_PREFIX", "/api/v1"),
			CORSOrigins:  getListOrDefault("CORS_ORIGINS", []string{"*"}),
			Timezone:     getEnvOrDefault("APP_TIMEZONE", "UTC"),
		},
		Database: DatabaseConfig{
			MySQL: MySQLConfig{
				DSN:             getEnvOrDefault("MYSQL_DSN", ""),
				MaxOpenConns:    getIntOrDefault("MYSQL_MAX_OPEN_CONNS", 25),
				MaxIdleConns:    getIntOrDefault("MYSQL_MAX_IDLE_CONNS", 5),
				ConnMaxLifetime: getDurationOrDefault("MYSQL_CONN_MAX_LIFETIME", 5*time.Minute),
			},
			MongoDB: MongoDBConfig{
				URI:      getEnvOrDefault("MONGO_URI", ""),
				Database: getEnvOrDefault("MONGO_DATABASE", "eventengine"),
			},
			Redis: RedisConfig{
				Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
				Password: getEnvOrDefault("REDIS_PASSWORD", ""),
				DB:       getIntOrDefault("REDIS_DB", 0),
			},
		},
		Auth: AuthConfig{
			JWTSecret:  getEnvOrDefault("JWT_SECRET", ""),
			QRTokenTTL: getDurationOrDefault("QR_TOKEN_TTL", 12*time.Hour),
			PresignTTL: getDurationOrDefault("PRESIGN_TTL", 15*time.Minute),
		},
		Storage: StorageConfig{
			Region:     getEnvOrDefault("OBJECT_STORAGE_REGION", ""),
			Bucket:     getEnvOrDefault("OBJECT_STORAGE_BUCKET", ""),
			AccessKey:  getEnvOrDefault("OBJECT_STORAGE_ACCESS_KEY", ""),
			SecretKey:  getEnvOrDefault("OBJECT_STORAGE_SECRET_KEY", ""),
			UploadPath: getEnvOrDefault("UPLOAD_PATH", "./uploads"),
		},
		Email: EmailConfig{
			SMTPHost: getEnvOrDefault("SMTP_HOST", ""),
			SMTPPort: getIntOrDefault("SMTP_PORT", 587),
			Username: getEnvOrDefault("SMTP_USERNAME", ""),
			Password: getEnvOrDefault("SMTP_PASSWORD", ""),
			FromAddr: getEnvOrDefault("SMTP_FROM", "noreply@example.com"),
		},
		Features: FeatureFlags{
			MaintenanceMode: getBoolOrDefault("MAINTENANCE_MODE", false),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.Database.MySQL.DSN == "" {
		return fmt.Errorf("MYSQL_DSN is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if err := utils.ValidateTimezone(c.Server.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE %q is invalid: %w", c.Server.Timezone, err)
	}
	return nil
}

// Helper functions to read environment variables with defaults
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	start := 0
	for i := 0; i <= len(value); i++ {
		if i == len(value) || value[i] == ',' {
			if i > start {
				out = append(out, value[start:i])
			}
			start = i + 1
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
