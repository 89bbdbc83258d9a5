// Package config provides loading, validation, and environment overlay
// for the telemetry pipeline configuration. It exposes a Default()
// baseline whose limits match the ingestion service's expectations
// (batch of 75, cap of 500, halving after 3 consecutive failures).
//
// Example:
//
//	cfg := config.Default()
//	// Optionally load from file and overlay env vars
//	if fileCfg, err := config.Load("/etc/subasha/telemetry.yaml"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
//	cfg.IngestURL = "https://ingest.example.com/v1/interactions"
//	if err := cfg.Validate(); err != nil {
//	    // reject before constructing the pipeline
//	}
package config
