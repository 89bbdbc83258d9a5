package config

import (
	"os"
	"strconv"
	"time"
)

// FromEnv overlays SUBASHA_* environment variables onto cfg.
// Malformed values are ignored; the existing setting stands.
func FromEnv(cfg *Config) {
	if v := os.Getenv("SUBASHA_MAX_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxBatchSize = n
		}
	}
	if v := os.Getenv("SUBASHA_MAX_STORED_INTERACTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxStoredInteractions = n
		}
	}
	if v := os.Getenv("SUBASHA_MAX_RETRY_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRetryAttempts = n
		}
	}
	if v := os.Getenv("SUBASHA_INGEST_URL"); v != "" {
		cfg.IngestURL = v
	}
	if v := os.Getenv("SUBASHA_DELIVERY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.DeliveryTimeout = d
		}
	}
	if v := os.Getenv("SUBASHA_FLUSH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.FlushInterval = d
		}
	}
	if v := os.Getenv("SUBASHA_STORAGE_BACKEND"); v != "" {
		cfg.StorageBackend = Backend(v)
	}
	if v := os.Getenv("SUBASHA_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("SUBASHA_REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("SUBASHA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
