// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/airwave/airwave/internal/audit"
	"github.com/airwave/airwave/internal/config"
	"github.com/airwave/airwave/internal/database"
	"github.com/airwave/airwave/internal/library"
	"github.com/airwave/airwave/internal/normalizer"
)

func setupTest(t *testing.T) (*Bridge, *database.DB, *audit.MemoryStore) {
	t.Helper()

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB"})
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := audit.NewMemoryStore(100)
	logger := audit.NewLogger(store, &audit.Config{Enabled: true, LogLevel: audit.SeverityDebug, IncludeDebug: true, BufferSize: 10})
	t.Cleanup(func() { logger.Close() })

	return New(db, logger, store), db, store
}

func seedBeatlesHeyJude(t *testing.T, db *database.DB) (workID int64, signature string) {
	t.Helper()
	ctx := context.Background()
	kb := library.New(db, library.DefaultConfig())

	artist, err := kb.UpsertArtist(ctx, "The Beatles", "The Beatles")
	if err != nil {
		t.Fatalf("upsert_artist: %v", err)
	}
	work, err := kb.UpsertWork(ctx, artist.ID, "Hey Jude")
	if err != nil {
		t.Fatalf("upsert_work: %v", err)
	}

	sig := normalizer.Signature("BEATLES", "HEY JUDE")

	if _, err := db.Conn().ExecContext(ctx,
		`INSERT INTO stations (id, name) VALUES (1, 'Test Station') ON CONFLICT DO NOTHING`); err != nil {
		t.Fatalf("seed station: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := db.Conn().ExecContext(ctx,
			`INSERT INTO broadcast_logs (station_id, played_at, raw_artist, raw_title, signature)
			 VALUES (1, ?, 'BEATLES', 'HEY JUDE', ?)`,
			time.Now(), sig); err != nil {
			t.Fatalf("seed broadcast log: %v", err)
		}
	}
	if _, err := db.Conn().ExecContext(ctx,
		`INSERT INTO discovery_queue_items (signature, raw_artist, raw_title, count) VALUES (?, 'BEATLES', 'HEY JUDE', 3)`,
		sig); err != nil {
		t.Fatalf("seed queue item: %v", err)
	}

	return work.ID, sig
}

func TestLink_BackfillsQueueDeletesBridgeExists(t *testing.T) {
	b, db, _ := setupTest(t)
	ctx := context.Background()
	workID, sig := seedBeatlesHeyJude(t, db)

	actor := audit.Actor{ID: "op1", Type: "user", Name: "operator"}
	if err := b.Link(ctx, actor, sig, "BEATLES", "HEY JUDE", workID); err != nil {
		t.Fatalf("link: %v", err)
	}

	var nullCount int
	row := db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM broadcast_logs WHERE signature = ? AND work_id IS NULL`, sig)
	if err := row.Scan(&nullCount); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if nullCount != 0 {
		t.Errorf("expected 0 unlinked logs after backfill, got %d", nullCount)
	}

	var queueCount int
	row = db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM discovery_queue_items WHERE signature = ?`, sig)
	if err := row.Scan(&queueCount); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if queueCount != 0 {
		t.Error("expected discovery queue item to be deleted")
	}

	ib, err := b.Get(ctx, sig)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ib.IsRevoked {
		t.Error("expected fresh bridge to not be revoked")
	}
	if ib.WorkID != workID {
		t.Errorf("expected work_id %d, got %d", workID, ib.WorkID)
	}
}

func TestLink_IdempotentOnSamePair(t *testing.T) {
	b, db, _ := setupTest(t)
	ctx := context.Background()
	workID, sig := seedBeatlesHeyJude(t, db)
	actor := audit.Actor{ID: "op1", Type: "user"}

	if err := b.Link(ctx, actor, sig, "BEATLES", "HEY JUDE", workID); err != nil {
		t.Fatalf("first link: %v", err)
	}
	if err := b.Link(ctx, actor, sig, "BEATLES", "HEY JUDE", workID); err != nil {
		t.Fatalf("second link: %v", err)
	}

	var count int
	row := db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM identity_bridges WHERE signature = ?`, sig)
	if err := row.Scan(&count); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly one bridge row, got %d", count)
	}
}

func TestRevoke_DoesNotReverseBackfill(t *testing.T) {
	b, db, _ := setupTest(t)
	ctx := context.Background()
	workID, sig := seedBeatlesHeyJude(t, db)
	actor := audit.Actor{ID: "op1", Type: "user"}

	if err := b.Link(ctx, actor, sig, "BEATLES", "HEY JUDE", workID); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := b.Revoke(ctx, actor, sig); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	ib, err := b.Get(ctx, sig)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ib.IsRevoked {
		t.Error("expected bridge to be revoked")
	}

	var linkedCount int
	row := db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM broadcast_logs WHERE signature = ? AND work_id = ?`, sig, workID)
	if err := row.Scan(&linkedCount); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if linkedCount != 3 {
		t.Errorf("expected back-filled logs to remain linked after revoke, got %d", linkedCount)
	}
}
