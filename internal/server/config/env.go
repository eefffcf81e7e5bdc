package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable the server reads.
const EnvPrefix = "PANTRY_"

// parseEnv loads .env from the working directory when present and copies
// PANTRY_* variables over cfg. A missing .env file is not an error.
func parseEnv(cfg *Config) error {
	_ = godotenv.Load()

	strs := map[string]*string{
		"HTTP_ADDR":              &cfg.EndpointAddrHTTP,
		"GRPC_HEALTH_ADDR":       &cfg.HealthAddrGRPC,
		"DATABASE_DSN":           &cfg.DatabaseDSN,
		"SECRET_KEY":             &cfg.SecretKey,
		"REDIS_ADDR":             &cfg.RedisAddr,
		"REDIS_PASSWORD":         &cfg.RedisPassword,
		"S3_ROOT_USER":           &cfg.S3RootUser,
		"S3_ROOT_PASSWORD":       &cfg.S3RootPassword,
		"S3_BUCKET":              &cfg.S3Bucket,
		"S3_REGION":              &cfg.S3Region,
		"S3_BASE_ENDPOINT":       &cfg.S3BaseEndpoint,
		"TIMEZONE":               &cfg.Timezone,
		"EXPIRY_DIGEST_SCHEDULE": &cfg.ExpiryDigestSchedule,
		"TOKEN_PURGE_SCHEDULE":   &cfg.TokenPurgeSchedule,
		"LOG_LEVEL":              &cfg.LogLevel,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"ACCESS_TOKEN_VALIDITY":  &cfg.AccessTokenValidityDuration,
		"REFRESH_TOKEN_VALIDITY": &cfg.RefreshTokenValidityDuration,
		"SUGGESTION_CACHE_TTL":   &cfg.SuggestionCacheTTL,
		"PHOTO_URL_VALIDITY":     &cfg.PhotoURLValidity,
		"REQUEST_TIMEOUT":        &cfg.RequestTimeout,
	}
	for name, dst := range durations {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("env %s%s: %w", EnvPrefix, name, err)
		}
		*dst = d
	}

	return nil
}
