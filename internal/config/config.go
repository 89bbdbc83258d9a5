package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend selects the durable store adapter backing the pending queue.
type Backend string

const (
	BackendPebble Backend = "pebble"
	BackendRedis  Backend = "redis"
)

// Config is the pipeline configuration loaded from file/env.
type Config struct {
	// MaxBatchSize is the pending-queue length that triggers a flush.
	MaxBatchSize int `json:"maxBatchSize" yaml:"max_batch_size"`
	// MaxStoredInteractions caps the pending queue; overflow evicts the
	// oldest events, keeping the most recent.
	MaxStoredInteractions int `json:"maxStoredInteractions" yaml:"max_stored_interactions"`
	// MaxRetryAttempts is the consecutive-failure count at which the
	// queue is halved and the counter reset.
	MaxRetryAttempts int `json:"maxRetryAttempts" yaml:"max_retry_attempts"`
	// IngestURL is the batch ingestion endpoint.
	IngestURL string `json:"ingestUrl" yaml:"ingest_url"`
	// DeliveryTimeout bounds a single delivery attempt.
	// JSON encodes durations as nanosecond integers; YAML accepts Go
	// duration strings such as "10s".
	DeliveryTimeout time.Duration `json:"deliveryTimeout" yaml:"delivery_timeout"`
	// FlushInterval enables a periodic flush when > 0. Zero keeps the
	// purely size-triggered policy.
	FlushInterval  time.Duration `json:"flushInterval" yaml:"flush_interval"`
	StorageBackend Backend       `json:"storageBackend" yaml:"storage_backend"`
	// DataDir holds the pebble store. Empty resolves to DefaultDataDir.
	DataDir  string `json:"dataDir" yaml:"data_dir"`
	RedisURL string `json:"redisUrl" yaml:"redis_url"`
	LogLevel string `json:"logLevel" yaml:"log_level"`
}

// Default returns built-in defaults. IngestURL has no default and must
// be supplied by the host.
func Default() Config {
	return Config{
		MaxBatchSize:          75,
		MaxStoredInteractions: 500,
		MaxRetryAttempts:      3,
		DeliveryTimeout:       10 * time.Second,
		StorageBackend:        BackendPebble,
		LogLevel:              "info",
	}
}

// Load reads configuration from a JSON or YAML file (by extension),
// overlaying it on Default. If path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// Validate reports the first configuration error, if any.
func (c Config) Validate() error {
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("maxBatchSize must be positive, got %d", c.MaxBatchSize)
	}
	if c.MaxStoredInteractions <= 0 {
		return fmt.Errorf("maxStoredInteractions must be positive, got %d", c.MaxStoredInteractions)
	}
	if c.MaxBatchSize > c.MaxStoredInteractions {
		return fmt.Errorf("maxBatchSize %d exceeds maxStoredInteractions %d; the flush trigger would never fire", c.MaxBatchSize, c.MaxStoredInteractions)
	}
	if c.MaxRetryAttempts <= 0 {
		return fmt.Errorf("maxRetryAttempts must be positive, got %d", c.MaxRetryAttempts)
	}
	if c.IngestURL == "" {
		return errors.New("ingestUrl is required")
	}
	if c.DeliveryTimeout <= 0 {
		return fmt.Errorf("deliveryTimeout must be positive, got %v", c.DeliveryTimeout)
	}
	if c.FlushInterval < 0 {
		return fmt.Errorf("flushInterval must not be negative, got %v", c.FlushInterval)
	}
	switch c.StorageBackend {
	case BackendPebble, BackendRedis:
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	if c.StorageBackend == BackendRedis && c.RedisURL == "" {
		return errors.New("redisUrl is required for the redis backend")
	}
	return nil
}
