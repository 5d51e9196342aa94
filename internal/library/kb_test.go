// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package library

import (
	"context"
	"testing"

	"github.com/airwave/airwave/internal/config"
	"github.com/airwave/airwave/internal/database"
)

func setupTestKB(t *testing.T) *KB {
	t.Helper()

	db, err := database.New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "512MB",
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return New(db, DefaultConfig())
}

func TestUpsertArtist_CreatesThenReuses(t *testing.T) {
	kb := setupTestKB(t)
	ctx := context.Background()

	a1, err := kb.UpsertArtist(ctx, "The Beatles", "The Beatles")
	if err != nil {
		t.Fatalf("upsert_artist: %v", err)
	}
	a2, err := kb.UpsertArtist(ctx, "  THE   beatles ", "")
	if err != nil {
		t.Fatalf("upsert_artist: %v", err)
	}
	if a1.ID != a2.ID {
		t.Errorf("expected the same artist id, got %d vs %d", a1.ID, a2.ID)
	}
}

func TestUpsertWork_ExactMatchReused(t *testing.T) {
	kb := setupTestKB(t)
	ctx := context.Background()

	artist, err := kb.UpsertArtist(ctx, "Queen", "Queen")
	if err != nil {
		t.Fatalf("upsert_artist: %v", err)
	}

	w1, err := kb.UpsertWork(ctx, artist.ID, "Bohemian Rhapsody")
	if err != nil {
		t.Fatalf("upsert_work: %v", err)
	}
	w2, err := kb.UpsertWork(ctx, artist.ID, "Bohemian Rhapsody")
	if err != nil {
		t.Fatalf("upsert_work: %v", err)
	}
	if w1.ID != w2.ID {
		t.Errorf("expected exact match to reuse the work, got %d vs %d", w1.ID, w2.ID)
	}
}

func TestUpsertWork_FuzzyMatchGroupsMinorVariant(t *testing.T) {
	kb := setupTestKB(t)
	ctx := context.Background()

	artist, err := kb.UpsertArtist(ctx, "Queen", "Queen")
	if err != nil {
		t.Fatalf("upsert_artist: %v", err)
	}

	w1, err := kb.UpsertWork(ctx, artist.ID, "Bohemian Rhapsody")
	if err != nil {
		t.Fatalf("upsert_work: %v", err)
	}
	w2, err := kb.UpsertWork(ctx, artist.ID, "Bohemian Rhapsody!")
	if err != nil {
		t.Fatalf("upsert_work: %v", err)
	}
	if w1.ID != w2.ID {
		t.Errorf("expected fuzzy match to group trivial variant, got %d vs %d", w1.ID, w2.ID)
	}
}

func TestUpsertWork_PartNumberDiscrimination(t *testing.T) {
	kb := setupTestKB(t)
	ctx := context.Background()

	artist, err := kb.UpsertArtist(ctx, "Pink Floyd", "Pink Floyd")
	if err != nil {
		t.Fatalf("upsert_artist: %v", err)
	}

	w1, err := kb.UpsertWork(ctx, artist.ID, "Another Brick in the Wall, Part 1")
	if err != nil {
		t.Fatalf("upsert_work: %v", err)
	}
	w2, err := kb.UpsertWork(ctx, artist.ID, "Another Brick in the Wall, Part 2")
	if err != nil {
		t.Fatalf("upsert_work: %v", err)
	}
	if w1.ID == w2.ID {
		t.Error("expected distinct part numbers to yield distinct works")
	}
}

func TestUpsertRecording_UniqueOnWorkTitleVersion(t *testing.T) {
	kb := setupTestKB(t)
	ctx := context.Background()

	artist, _ := kb.UpsertArtist(ctx, "Queen", "Queen")
	work, _ := kb.UpsertWork(ctx, artist.ID, "Bohemian Rhapsody")

	r1, err := kb.UpsertRecording(ctx, work.ID, "Bohemian Rhapsody", "Original", nil, "")
	if err != nil {
		t.Fatalf("upsert_recording: %v", err)
	}
	r2, err := kb.UpsertRecording(ctx, work.ID, "Bohemian Rhapsody", "Original", nil, "")
	if err != nil {
		t.Fatalf("upsert_recording: %v", err)
	}
	if r1.ID != r2.ID {
		t.Errorf("expected identical (work, title, version) to reuse the recording, got %d vs %d", r1.ID, r2.ID)
	}

	r3, err := kb.UpsertRecording(ctx, work.ID, "Bohemian Rhapsody", "Live", nil, "")
	if err != nil {
		t.Fatalf("upsert_recording: %v", err)
	}
	if r3.ID == r1.ID {
		t.Error("expected a distinct version_type to yield a distinct recording")
	}
}

func TestMergeArtists_RetargetsWorksAndDeletesSource(t *testing.T) {
	kb := setupTestKB(t)
	ctx := context.Background()

	source, _ := kb.UpsertArtist(ctx, "The Beetles", "")
	target, _ := kb.UpsertArtist(ctx, "The Beatles", "")
	work, _ := kb.UpsertWork(ctx, source.ID, "Hey Jude")

	if err := kb.MergeArtists(ctx, source.ID, target.ID); err != nil {
		t.Fatalf("merge_artists: %v", err)
	}

	w, err := kb.GetWork(ctx, work.ID)
	if err != nil {
		t.Fatalf("get_work: %v", err)
	}
	if w.PrimaryArtistID != target.ID {
		t.Errorf("expected work retargeted to %d, got %d", target.ID, w.PrimaryArtistID)
	}

	if _, err := kb.GetArtist(ctx, source.ID); err == nil {
		t.Error("expected source artist to be deleted")
	}
}
