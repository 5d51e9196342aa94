// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import "time"

// Config holds all application configuration loaded from environment
// variables and an optional config file.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in sensible defaults for all optional settings
//  2. Config File: optional YAML config file (config.yaml)
//  3. Environment Variables: override any setting
//
// Configuration Categories:
//
//  1. Matching: thresholds and fuzzy-grouping knobs the Matcher and
//     knowledge base use (MATCH_*/WORK_FUZZY_* keys).
//  2. Pipeline: Scanner, Discovery, Vector index, and Job controller
//     tuning.
//  3. Infrastructure: DuckDB, HTTP server, API pagination, logging.
//
// Thread Safety: Config is immutable after Load() and safe for
// concurrent read access from multiple goroutines.
type Config struct {
	Matcher   MatcherConfig   `koanf:"matcher"`
	Scanner   ScannerConfig   `koanf:"scanner"`
	Discovery DiscoveryConfig `koanf:"discovery"`
	Vector    VectorConfig    `koanf:"vector"`
	Job       JobConfig       `koanf:"job"`
	Database  DatabaseConfig  `koanf:"database"`
	Server    ServerConfig    `koanf:"server"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// MatcherConfig holds the Matcher's live-tunable thresholds and the
// knowledge base's fuzzy work-grouping knobs.
//
// Environment Variables:
//   - MATCH_ARTIST_AUTO, MATCH_TITLE_AUTO: auto-link thresholds
//   - MATCH_ARTIST_REVIEW, MATCH_TITLE_REVIEW: review thresholds
//   - WORK_FUZZY_THRESHOLD: minimum ratio to accept a fuzzy work match
//   - WORK_FUZZY_MAX_WORKS: skip fuzzy grouping above this work count
type MatcherConfig struct {
	ArtistAuto     float64 `koanf:"artist_auto"`
	ArtistReview   float64 `koanf:"artist_review"`
	TitleAuto      float64 `koanf:"title_auto"`
	TitleReview    float64 `koanf:"title_review"`
	FuzzyThreshold float64 `koanf:"fuzzy_threshold"`
	FuzzyMaxWorks  int     `koanf:"fuzzy_max_works"`
}

// ScannerConfig holds the filesystem Scanner's worker pool and tag
// extraction settings.
type ScannerConfig struct {
	Workers        int           `koanf:"workers"`
	FollowSymlinks bool          `koanf:"follow_symlinks"`
	RescanInterval time.Duration `koanf:"rescan_interval"`
}

// DiscoveryConfig holds the Discovery Queue's batching and cooldown
// settings.
type DiscoveryConfig struct {
	BatchSize    int           `koanf:"batch_size"`
	SkipCooldown time.Duration `koanf:"skip_cooldown"`
}

// VectorConfig holds the vector fallback's top-k and embedding settings.
type VectorConfig struct {
	TopK       int `koanf:"top_k"`
	Dimensions int `koanf:"dimensions"`
}

// JobConfig holds the Job Controller's concurrency and audit-retention
// settings.
type JobConfig struct {
	MaxConcurrent   int64         `koanf:"max_concurrent"`
	RetainAuditDays int           `koanf:"retain_audit_days"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"`                  // Number of DuckDB threads (0 = use NumCPU)
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"` // Whether to preserve insertion order (default true)
	SeedMockData           bool   `koanf:"seed_mock_data"`           // Enable mock data seeding for CI/CD screenshot tests
	SkipIndexes            bool   `koanf:"skip_indexes"`             // Skip index creation (for fast test setup)
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // "development", "staging", "production"
}

// APIConfig holds API pagination and response settings.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// LoggingConfig holds zerolog output settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// Load reads configuration from the default config file paths and
// environment variables, applying defaults first.
func Load() (*Config, error) {
	return loadFrom(DefaultConfigPaths)
}
