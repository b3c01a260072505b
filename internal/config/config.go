package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for the raw log archive.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// UploadConfig holds the ingestion policy knobs.
type UploadConfig struct {
	// ReservedUsername is the service's own account; nobody may submit under it.
	ReservedUsername string
	// MaxBytes caps the size of a single uploaded log.
	MaxBytes int64
	// AutotestToken enables POST /upload/autotest when non-empty.
	AutotestToken string
	// LogURLExpirySec is the lifetime of presigned raw-log links.
	LogURLExpirySec int
}

// SessionConfig holds browser session and identity settings for the interactive path.
type SessionConfig struct {
	TTLSec       int
	CookieSecure bool
	CSRFEnabled  bool
	// UserHeader is set by the fronting identity proxy on /login.
	UserHeader string
}

// LogConfig controls process logging.
type LogConfig struct {
	Level    string
	Timezone string
}

// Location resolves Timezone, falling back to UTC.
func (c LogConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Database DatabaseConfig
	MinIO    MinIOConfig
	Upload   UploadConfig
	Session  SessionConfig
	Log      LogConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "kerneltest-logs"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Upload: UploadConfig{
			ReservedUsername: getEnv("RESERVED_USERNAME", "kerneltest"),
			MaxBytes:         int64(getEnvInt("MAX_UPLOAD_BYTES", 2<<20)),
			AutotestToken:    getEnv("AUTOTEST_API_TOKEN", ""),
			LogURLExpirySec:  getEnvInt("LOG_URL_EXPIRY_SEC", 900),
		},
		Session: SessionConfig{
			TTLSec:       getEnvInt("SESSION_TTL_SEC", 86400),
			CookieSecure: getEnvBool("SESSION_COOKIE_SECURE", false),
			CSRFEnabled:  getEnvBool("CSRF_ENABLED", true),
			UserHeader:   getEnv("AUTH_USER_HEADER", "X-Remote-User"),
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Timezone: getEnv("LOG_TIMEZONE", "UTC"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
