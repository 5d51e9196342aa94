// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"testing"
)

func TestLoadFrom_NoConfigFile_UsesDefaultsAndEnv(t *testing.T) {
	t.Setenv("MATCH_ARTIST_AUTO", "0.95")
	t.Setenv("DISCOVERY_BATCH_SIZE", "250")

	cfg, err := loadFrom([]string{"/nonexistent/config.yaml"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Matcher.ArtistAuto != 0.95 {
		t.Errorf("expected env override 0.95, got %v", cfg.Matcher.ArtistAuto)
	}
	if cfg.Discovery.BatchSize != 250 {
		t.Errorf("expected env override 250, got %d", cfg.Discovery.BatchSize)
	}
	// Untouched defaults should survive.
	if cfg.Vector.TopK != 5 {
		t.Errorf("expected default top_k 5, got %d", cfg.Vector.TopK)
	}
}

func TestLoadFrom_EnvOverrideFailsValidation(t *testing.T) {
	t.Setenv("MATCH_ARTIST_REVIEW", "0.99")
	t.Setenv("MATCH_ARTIST_AUTO", "0.5")

	if _, err := loadFrom([]string{"/nonexistent/config.yaml"}); err == nil {
		t.Error("expected validation error for review > auto via env override")
	}
}

func TestLoadFrom_ConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.yaml"
	yaml := "scanner:\n  workers: 8\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := loadFrom([]string{path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scanner.Workers != 8 {
		t.Errorf("expected config file override 8, got %d", cfg.Scanner.Workers)
	}
}

func TestEnvTransformFunc_UnmappedKeyIgnored(t *testing.T) {
	if got := envTransformFunc("SOME_RANDOM_VAR"); got != "" {
		t.Errorf("expected unmapped key to be ignored, got %q", got)
	}
}

func TestEnvTransformFunc_MapsKnownKey(t *testing.T) {
	if got := envTransformFunc("MATCH_ARTIST_AUTO"); got != "matcher.artist_auto" {
		t.Errorf("expected matcher.artist_auto, got %q", got)
	}
}
