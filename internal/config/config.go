package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration, loaded from BODA_* environment
// variables.
type Config struct {
	Port string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// StorageMode selects the guest-record layout: "legacy" or "entity".
	// Chosen once at startup; nothing switches modes at runtime.
	StorageMode string
	// DualWrite mirrors entity-mode writes into the legacy array for clients
	// still reading the old key. Ignored in legacy mode.
	DualWrite bool

	// AdminKey is the shared admin secret. AdminKeyBcrypt, when set, takes
	// precedence and holds a bcrypt hash of the secret instead.
	AdminKey       string
	AdminKeyBcrypt string

	// AllowedOrigin is the front-end origin allowed by CORS.
	AllowedOrigin string

	// ImportMaxBytes caps the import request body.
	ImportMaxBytes int64

	LogLevel  string
	LogFormat string
	Debug     bool

	S3Endpoint  string
	S3Bucket    string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
}

// Load reads configuration from the environment, applying defaults suitable
// for local development.
func Load() *Config {
	return &Config{
		Port:           getEnv("BODA_PORT", "8080"),
		RedisAddr:      getEnv("BODA_REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("BODA_REDIS_PASSWORD"),
		RedisTLS:       getBool("BODA_REDIS_TLS", false),
		StorageMode:    getEnv("BODA_STORAGE_MODE", "entity"),
		DualWrite:      getBool("BODA_DUAL_WRITE", true),
		AdminKey:       os.Getenv("BODA_ADMIN_KEY"),
		AdminKeyBcrypt: os.Getenv("BODA_ADMIN_KEY_BCRYPT"),
		AllowedOrigin:  getEnv("BODA_ALLOWED_ORIGIN", "*"),
		ImportMaxBytes: getInt64("BODA_IMPORT_MAX_BYTES", 4<<20),
		LogLevel:       getEnv("BODA_LOG_LEVEL", "info"),
		LogFormat:      getEnv("BODA_LOG_FORMAT", "text"),
		Debug:          getBool("BODA_DEBUG", false),
		S3Endpoint:     os.Getenv("BODA_S3_ENDPOINT"),
		S3Bucket:       os.Getenv("BODA_S3_BUCKET"),
		S3Region:       getEnv("BODA_S3_REGION", "auto"),
		S3AccessKey:    os.Getenv("BODA_S3_ACCESS_KEY"),
		S3SecretKey:    os.Getenv("BODA_S3_SECRET_KEY"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getInt64(key string, defaultValue int64) int64 {
	v, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return defaultValue
	}
	return v
}
