// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/airwave/config.yaml",
	"/etc/airwave/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Matcher: MatcherConfig{
			ArtistAuto:     0.92,
			ArtistReview:   0.70,
			TitleAuto:      0.90,
			TitleReview:    0.75,
			FuzzyThreshold: 0.85,
			FuzzyMaxWorks:  500,
		},
		Scanner: ScannerConfig{
			Workers:        0, // 0 = use runtime.NumCPU()
			FollowSymlinks: false,
			RescanInterval: 24 * time.Hour,
		},
		Discovery: DiscoveryConfig{
			BatchSize:    500,
			SkipCooldown: 7 * 24 * time.Hour,
		},
		Vector: VectorConfig{
			TopK:       5,
			Dimensions: 64,
		},
		Job: JobConfig{
			MaxConcurrent:   4,
			RetainAuditDays: 90,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path:                   "/data/airwave.duckdb",
			MaxMemory:              "2GB",
			Threads:                0, // 0 = use runtime.NumCPU()
			PreserveInsertionOrder: true,
			SeedMockData:           false,
		},
		Server: ServerConfig{
			Port:        3857,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	return loadFrom(DefaultConfigPaths)
}

// loadFrom is LoadWithKoanf parameterized over the candidate config file
// paths, so tests can point at a temp directory.
func loadFrom(configPaths []string) (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(configPaths); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile(configPaths []string) string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envTransformFunc transforms environment variable names to koanf config
// paths, covering the matcher/scanner/discovery/vector/job keys plus the
// ambient infrastructure settings (database, server, api, logging).
//
// Examples:
//   - MATCH_ARTIST_AUTO -> matcher.artist_auto
//   - WORK_FUZZY_THRESHOLD -> matcher.fuzzy_threshold
//   - DISCOVERY_BATCH_SIZE -> discovery.batch_size
//   - SCAN_WORKERS -> scanner.workers
//   - DUCKDB_PATH -> database.path
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Matcher thresholds
		"match_artist_auto":   "matcher.artist_auto",
		"match_title_auto":    "matcher.title_auto",
		"match_artist_review": "matcher.artist_review",
		"match_title_review":  "matcher.title_review",
		"work_fuzzy_threshold": "matcher.fuzzy_threshold",
		"work_fuzzy_max_works": "matcher.fuzzy_max_works",

		// Scanner
		"scan_workers":          "scanner.workers",
		"scan_follow_symlinks":  "scanner.follow_symlinks",
		"scan_rescan_interval":  "scanner.rescan_interval",

		// Discovery / rematch batching
		"discovery_batch_size":   "discovery.batch_size",
		"discovery_skip_cooldown": "discovery.skip_cooldown",

		// Vector fallback
		"vector_topk":      "vector.top_k",
		"vector_dimensions": "vector.dimensions",

		// Job controller
		"job_max_concurrent":     "job.max_concurrent",
		"job_retain_audit_days":  "job.retain_audit_days",
		"job_shutdown_timeout":   "job.shutdown_timeout",

		// Database
		"duckdb_path":       "database.path",
		"duckdb_max_memory": "database.max_memory",
		"duckdb_threads":    "database.threads",
		"seed_mock_data":    "database.seed_mock_data",

		// Server
		"http_port":    "server.port",
		"http_host":    "server.host",
		"http_timeout": "server.timeout",
		"environment":  "server.environment",

		// API
		"api_default_page_size": "api.default_page_size",
		"api_max_page_size":     "api.max_page_size",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unmapped keys are skipped so stray environment variables don't
	// pollute the configuration.
	return ""
}

// GetKoanfInstance returns a new Koanf instance for advanced usage
// (hot-reload, custom sources, testing with mock configurations).
func GetKoanfInstance() *koanf.Koanf {
	return koanf.New(".")
}

// WatchConfigFile sets up a file watcher for hot-reload capability. The
// caller is responsible for mutex protection when accessing
// configuration during reloads.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)
	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
