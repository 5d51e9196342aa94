// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package bridge

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/airwave/airwave/internal/apperr"
	"github.com/airwave/airwave/internal/audit"
	"github.com/airwave/airwave/internal/logging"
)

// linkMetadata mirrors the Metadata shape Logger.LogBridgeLink writes.
type linkMetadata struct {
	Signature  string `json:"signature"`
	WorkID     int64  `json:"work_id"`
	Backfilled int64  `json:"backfilled"`
	Promoted   bool   `json:"promoted"`
}

// Undo implements undo(audit_id) for a Link/Promote action (this
// "Undo then Link returns to the post-Link state"): the back-filled
// BroadcastLogs revert to work_id = NULL, the DiscoveryQueueItem is
// restored from them, and the IdentityBridge row is removed.
func (b *Bridge) Undo(ctx context.Context, actor audit.Actor, auditID string) (err error) {
	event, getErr := b.store.Get(ctx, auditID)
	if getErr != nil {
		return fmt.Errorf("undo: %w", apperr.ErrNotFound)
	}
	if event.Type != audit.EventTypeQueueLink {
		return fmt.Errorf("undo: %w: action %s is not undoable as a bridge link", apperr.ErrValidation, event.Type)
	}

	var meta linkMetadata
	if jsonErr := json.Unmarshal(event.Metadata, &meta); jsonErr != nil {
		return fmt.Errorf("undo: decode metadata: %w", jsonErr)
	}

	tx, txErr := b.db.Conn().BeginTx(ctx, nil)
	if txErr != nil {
		return fmt.Errorf("undo: begin: %w", txErr)
	}
	err = txErr
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().Err(rbErr).AnErr("original_error", err).Msg("undo: rollback failed")
			}
		}
	}()

	var rawArtist, rawTitle string
	var count int64
	row := tx.QueryRowContext(ctx,
		`SELECT raw_artist, raw_title, COUNT(*) FROM broadcast_logs
		 WHERE signature = ? AND work_id = ? AND match_reason = 'identity_bridge'
		 GROUP BY raw_artist, raw_title
		 LIMIT 1`,
		meta.Signature, meta.WorkID)
	_ = row.Scan(&rawArtist, &rawTitle, &count)

	if _, err = tx.ExecContext(ctx,
		`UPDATE broadcast_logs SET work_id = NULL, match_reason = NULL
		 WHERE signature = ? AND work_id = ? AND match_reason = 'identity_bridge'`,
		meta.Signature, meta.WorkID); err != nil {
		return fmt.Errorf("undo: revert backfill: %w", err)
	}

	// A Promote's is_verified flip is not reversed: undo contract
	// names only the bridge/backfill/queue triple.

	if count > 0 {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO discovery_queue_items (signature, raw_artist, raw_title, count, suggested_work_id)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (signature) DO UPDATE SET count = excluded.count`,
			meta.Signature, rawArtist, rawTitle, count, meta.WorkID); err != nil {
			return fmt.Errorf("undo: restore queue item: %w", err)
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM identity_bridges WHERE signature = ? AND work_id = ?`, meta.Signature, meta.WorkID); err != nil {
		return fmt.Errorf("undo: remove bridge: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("undo: commit: %w", err)
	}

	if b.logger != nil {
		b.logger.LogUndo(ctx, actor, auditID)
	}
	return nil
}
