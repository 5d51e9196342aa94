// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import "fmt"

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateMatcher(); err != nil {
		return err
	}
	if err := c.validateScanner(); err != nil {
		return err
	}
	if err := c.validateDiscovery(); err != nil {
		return err
	}
	if err := c.validateVector(); err != nil {
		return err
	}
	if err := c.validateJob(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

// validateMatcher enforces "0 <= review <= auto <= 1" on both artist
// and title thresholds, plus the fuzzy-grouping knobs.
func (c *Config) validateMatcher() error {
	m := c.Matcher
	if err := validateThresholdPair("artist", m.ArtistReview, m.ArtistAuto); err != nil {
		return err
	}
	if err := validateThresholdPair("title", m.TitleReview, m.TitleAuto); err != nil {
		return err
	}
	if m.FuzzyThreshold < 0 || m.FuzzyThreshold > 1 {
		return fmt.Errorf("WORK_FUZZY_THRESHOLD must be between 0 and 1, got %v", m.FuzzyThreshold)
	}
	if m.FuzzyMaxWorks <= 0 {
		return fmt.Errorf("WORK_FUZZY_MAX_WORKS must be positive, got %d", m.FuzzyMaxWorks)
	}
	return nil
}

func validateThresholdPair(name string, review, auto float64) error {
	if review < 0 {
		return fmt.Errorf("MATCH_%s_REVIEW must be >= 0, got %v", name, review)
	}
	if auto > 1 {
		return fmt.Errorf("MATCH_%s_AUTO must be <= 1, got %v", name, auto)
	}
	if review > auto {
		return fmt.Errorf("MATCH_%s_REVIEW (%v) must be <= MATCH_%s_AUTO (%v)", name, review, name, auto)
	}
	return nil
}

func (c *Config) validateScanner() error {
	if c.Scanner.Workers < 0 {
		return fmt.Errorf("SCAN_WORKERS must be >= 0, got %d", c.Scanner.Workers)
	}
	return nil
}

func (c *Config) validateDiscovery() error {
	if c.Discovery.BatchSize <= 0 {
		return fmt.Errorf("DISCOVERY_BATCH_SIZE must be positive, got %d", c.Discovery.BatchSize)
	}
	if c.Discovery.SkipCooldown <= 0 {
		return fmt.Errorf("discovery.skip_cooldown must be positive, got %v", c.Discovery.SkipCooldown)
	}
	return nil
}

func (c *Config) validateVector() error {
	if c.Vector.TopK <= 0 {
		return fmt.Errorf("VECTOR_TOPK must be positive, got %d", c.Vector.TopK)
	}
	if c.Vector.Dimensions <= 0 {
		return fmt.Errorf("vector.dimensions must be positive, got %d", c.Vector.Dimensions)
	}
	return nil
}

func (c *Config) validateJob() error {
	if c.Job.MaxConcurrent <= 0 {
		return fmt.Errorf("job.max_concurrent must be positive, got %d", c.Job.MaxConcurrent)
	}
	if c.Job.RetainAuditDays <= 0 {
		return fmt.Errorf("JOB_RETAIN_AUDIT_DAYS must be positive, got %d", c.Job.RetainAuditDays)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("server.environment must be one of development, staging, production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
