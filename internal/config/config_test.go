package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.MaxBatchSize != 75 {
		t.Fatalf("default batch size")
	}
	if cfg.MaxStoredInteractions != 500 {
		t.Fatalf("default stored cap")
	}
	if cfg.MaxRetryAttempts != 3 {
		t.Fatalf("default retry attempts")
	}
	if cfg.DeliveryTimeout != 10*time.Second {
		t.Fatalf("default delivery timeout")
	}
	if cfg.FlushInterval != 0 {
		t.Fatalf("default flush interval should be size-triggered only")
	}
	if cfg.StorageBackend != BackendPebble {
		t.Fatalf("default backend")
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "telemetry.json")
	data := []byte(`{"maxBatchSize":10,"maxStoredInteractions":40,"ingestUrl":"https://ingest.example.com/v1","storageBackend":"redis","redisUrl":"redis://localhost:6379/0"}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxBatchSize != 10 {
		t.Fatalf("expected 10, got %d", cfg.MaxBatchSize)
	}
	if cfg.MaxStoredInteractions != 40 {
		t.Fatalf("expected 40, got %d", cfg.MaxStoredInteractions)
	}
	if cfg.StorageBackend != BackendRedis {
		t.Fatalf("expected redis backend")
	}
	// Untouched fields keep defaults.
	if cfg.MaxRetryAttempts != 3 {
		t.Fatalf("expected default retry attempts, got %d", cfg.MaxRetryAttempts)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "telemetry.yaml")
	data := []byte("max_batch_size: 20\ningest_url: https://ingest.example.com/v1\ndelivery_timeout: 5s\nflush_interval: 30s\n")
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxBatchSize != 20 {
		t.Fatalf("expected 20, got %d", cfg.MaxBatchSize)
	}
	if cfg.IngestURL != "https://ingest.example.com/v1" {
		t.Fatalf("expected ingest url, got %q", cfg.IngestURL)
	}
	if cfg.DeliveryTimeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %v", cfg.DeliveryTimeout)
	}
	if cfg.FlushInterval != 30*time.Second {
		t.Fatalf("expected 30s interval, got %v", cfg.FlushInterval)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxBatchSize != Default().MaxBatchSize {
		t.Fatalf("expected defaults")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	os.Setenv("SUBASHA_MAX_BATCH_SIZE", "50")
	os.Setenv("SUBASHA_INGEST_URL", "https://staging.example.com/v1")
	os.Setenv("SUBASHA_FLUSH_INTERVAL", "45s")
	os.Setenv("SUBASHA_STORAGE_BACKEND", "redis")
	t.Cleanup(func() {
		os.Unsetenv("SUBASHA_MAX_BATCH_SIZE")
		os.Unsetenv("SUBASHA_INGEST_URL")
		os.Unsetenv("SUBASHA_FLUSH_INTERVAL")
		os.Unsetenv("SUBASHA_STORAGE_BACKEND")
	})
	FromEnv(&cfg)
	if cfg.MaxBatchSize != 50 {
		t.Fatalf("env override batch size")
	}
	if cfg.IngestURL != "https://staging.example.com/v1" {
		t.Fatalf("env override ingest url")
	}
	if cfg.FlushInterval != 45*time.Second {
		t.Fatalf("env override flush interval")
	}
	if cfg.StorageBackend != BackendRedis {
		t.Fatalf("env override backend")
	}
}

func TestFromEnvIgnoresMalformed(t *testing.T) {
	cfg := Default()
	os.Setenv("SUBASHA_MAX_BATCH_SIZE", "not-a-number")
	os.Setenv("SUBASHA_DELIVERY_TIMEOUT", "soon")
	t.Cleanup(func() {
		os.Unsetenv("SUBASHA_MAX_BATCH_SIZE")
		os.Unsetenv("SUBASHA_DELIVERY_TIMEOUT")
	})
	FromEnv(&cfg)
	if cfg.MaxBatchSize != 75 {
		t.Fatalf("malformed int should keep default")
	}
	if cfg.DeliveryTimeout != 10*time.Second {
		t.Fatalf("malformed duration should keep default")
	}
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.IngestURL = "https://ingest.example.com/v1"
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero batch size", func(c *Config) { c.MaxBatchSize = 0 }, "maxBatchSize"},
		{"zero stored cap", func(c *Config) { c.MaxStoredInteractions = 0 }, "maxStoredInteractions"},
		{"batch above cap", func(c *Config) { c.MaxBatchSize = 600 }, "never fire"},
		{"zero retries", func(c *Config) { c.MaxRetryAttempts = 0 }, "maxRetryAttempts"},
		{"missing ingest url", func(c *Config) { c.IngestURL = "" }, "ingestUrl"},
		{"zero timeout", func(c *Config) { c.DeliveryTimeout = 0 }, "deliveryTimeout"},
		{"negative interval", func(c *Config) { c.FlushInterval = -time.Second }, "flushInterval"},
		{"unknown backend", func(c *Config) { c.StorageBackend = "etcd" }, "storage backend"},
		{"redis without url", func(c *Config) { c.StorageBackend = BackendRedis }, "redisUrl"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := valid
			c.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), c.want) {
				t.Fatalf("error %q does not mention %q", err, c.want)
			}
		})
	}
}
