package config

import (
	"os"
	"strconv"
	"time"
)

// envOr returns the value of the environment variable k, or def when unset
// or empty.
func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// parseEnv overlays Config fields from environment variables. Unset
// variables leave the current value untouched, so env sits between the
// JSON file and the command-line flags in precedence.
func parseEnv(config *Config) {
	config.EndpointAddr = envOr("ENDPOINT_ADDR", config.EndpointAddr)
	config.DatabaseDSN = envOr("DATABASE_DSN", config.DatabaseDSN)
	config.JWTSecret = envOr("JWT_SECRET", config.JWTSecret)
	config.S3RootUser = envOr("S3_ROOT_USER", config.S3RootUser)
	config.S3RootPassword = envOr("S3_ROOT_PASSWORD", config.S3RootPassword)
	config.S3Bucket = envOr("S3_BUCKET", config.S3Bucket)
	config.S3Region = envOr("S3_REGION", config.S3Region)
	config.S3BaseEndpoint = envOr("S3_BASE_ENDPOINT", config.S3BaseEndpoint)
	config.AuthBaseEndpoint = envOr("AUTH_BASE_ENDPOINT", config.AuthBaseEndpoint)
	config.AuthServiceKey = envOr("AUTH_SERVICE_KEY", config.AuthServiceKey)
	config.RagBaseEndpoint = envOr("RAG_BASE_ENDPOINT", config.RagBaseEndpoint)

	if v := os.Getenv("SIGNED_URL_TTL"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil {
			config.SignedURLTTL = time.Duration(seconds) * time.Second
		}
	}
}
