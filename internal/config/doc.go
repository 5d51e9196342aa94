// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package config provides centralized configuration management for Airwave.

This package handles loading, validation, and parsing of configuration for
all application components via Koanf v2, layering built-in defaults, an
optional YAML config file, and environment variables.

# Configuration Sources

The package reads configuration from, in increasing priority:

  - Built-in defaults (defaultConfig)
  - An optional YAML config file (config.yaml, or CONFIG_PATH)
  - Environment variables

# Configuration Structure

  - MatcherConfig: threshold pairs and fuzzy-grouping knobs
  - ScannerConfig: worker pool and rescan interval
  - DiscoveryConfig: batch size and skip cooldown
  - VectorConfig: top-k and embedding dimensions
  - JobConfig: concurrency and audit retention
  - DatabaseConfig: DuckDB connection and performance tuning
  - ServerConfig / APIConfig: HTTP server and pagination
  - LoggingConfig: zerolog output settings

# Environment Variables

The recognized keys:

	MATCH_ARTIST_AUTO, MATCH_TITLE_AUTO       Auto-link thresholds
	MATCH_ARTIST_REVIEW, MATCH_TITLE_REVIEW   Review thresholds
	WORK_FUZZY_THRESHOLD, WORK_FUZZY_MAX_WORKS
	VECTOR_TOPK
	DISCOVERY_BATCH_SIZE
	SCAN_WORKERS
	JOB_RETAIN_AUDIT_DAYS

plus the ambient DUCKDB_PATH, DUCKDB_MAX_MEMORY, HTTP_PORT, HTTP_HOST,
LOG_LEVEL, LOG_FORMAT keys.

# Usage Example

	import "github.com/airwave/airwave/internal/config"

	cfg, err := config.Load()
	if err != nil {
	    log.Fatalf("failed to load config: %v", err)
	}
	fmt.Printf("database: %s\n", cfg.Database.Path)
	fmt.Printf("artist auto-link threshold: %v\n", cfg.Matcher.ArtistAuto)

# Validation

Validate() enforces "0 <= review <= auto <= 1" on both threshold
pairs, positive batch sizes/concurrency limits, a non-negative
SCAN_WORKERS (0 selects runtime.NumCPU()), and a known logging
level/format/server environment.

# Thread Safety

The Config struct is immutable after Load() returns, making it safe for
concurrent access from multiple goroutines without synchronization.
*/
package config
