// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package bridge

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/airwave/airwave/internal/apperr"
	"github.com/airwave/airwave/internal/audit"
	"github.com/airwave/airwave/internal/database"
	"github.com/airwave/airwave/internal/logging"
	"github.com/airwave/airwave/internal/models"
)

// Bridge links confirmed signatures to Works and records the operator
// actions behind them.
type Bridge struct {
	db     *database.DB
	logger *audit.Logger
	store  audit.Store
}

// New constructs a Bridge. store is used to fetch audit entries for Undo.
func New(db *database.DB, logger *audit.Logger, store audit.Store) *Bridge {
	return &Bridge{db: db, logger: logger, store: store}
}

// Link inserts or updates the Bridge row, back-fills BroadcastLogs, and
// deletes the DiscoveryQueueItem, all in one transaction. Linking the
// same (signature, work_id) a second time is a no-op beyond the
// idempotent upsert.
func (b *Bridge) Link(ctx context.Context, actor audit.Actor, signature, referenceArtist, referenceTitle string, workID int64) error {
	return b.link(ctx, actor, signature, referenceArtist, referenceTitle, workID, false)
}

// Promote implements Promote: same as Link but also flips the
// chosen Recording's is_verified flag.
func (b *Bridge) Promote(ctx context.Context, actor audit.Actor, signature, referenceArtist, referenceTitle string, workID, recordingID int64) error {
	return b.link(ctx, actor, signature, referenceArtist, referenceTitle, workID, true, recordingID)
}

func (b *Bridge) link(ctx context.Context, actor audit.Actor, signature, referenceArtist, referenceTitle string, workID int64, promote bool, recordingID ...int64) (err error) {
	tx, err := b.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("link: begin: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().Err(rbErr).AnErr("original_error", err).Msg("link: rollback failed")
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO identity_bridges (signature, reference_artist, reference_title, work_id, confidence, is_revoked)
		 VALUES (?, ?, ?, ?, 1.0, false)
		 ON CONFLICT (signature) DO UPDATE SET
		   work_id = excluded.work_id,
		   reference_artist = excluded.reference_artist,
		   reference_title = excluded.reference_title,
		   is_revoked = false,
		   updated_at = current_timestamp`,
		signature, referenceArtist, referenceTitle, workID); err != nil {
		return fmt.Errorf("link: upsert bridge: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE broadcast_logs SET work_id = ?, match_reason = 'identity_bridge'
		 WHERE signature = ? AND work_id IS NULL`,
		workID, signature)
	if err != nil {
		return fmt.Errorf("link: backfill: %w", err)
	}
	backfilled, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("link: backfill count: %w", err)
	}

	if promote && len(recordingID) == 1 {
		if _, err = tx.ExecContext(ctx, `UPDATE recordings SET is_verified = true WHERE id = ?`, recordingID[0]); err != nil {
			return fmt.Errorf("link: promote recording: %w", err)
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM discovery_queue_items WHERE signature = ?`, signature); err != nil {
		return fmt.Errorf("link: delete queue item: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("link: commit: %w", err)
	}

	if b.logger != nil {
		b.logger.LogBridgeLink(ctx, actor, signature, workID, backfilled, promote)
	}
	return nil
}

// Revoke implements revocation: sets is_revoked = true. Back-fill
// is not reversed; historical logs keep their decision.
func (b *Bridge) Revoke(ctx context.Context, actor audit.Actor, signature string) error {
	var workID int64
	row := b.db.Conn().QueryRowContext(ctx, `SELECT work_id FROM identity_bridges WHERE signature = ?`, signature)
	if err := row.Scan(&workID); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("revoke: %w", apperr.ErrNotFound)
		}
		return fmt.Errorf("revoke: lookup: %w", err)
	}

	if _, err := b.db.Conn().ExecContext(ctx,
		`UPDATE identity_bridges SET is_revoked = true, updated_at = current_timestamp WHERE signature = ?`,
		signature); err != nil {
		return fmt.Errorf("revoke: %w", err)
	}

	if b.logger != nil {
		b.logger.LogBridgeRevoke(ctx, actor, signature, workID)
	}
	return nil
}

// Get returns the current Bridge row for a signature, including revoked
// ones, or ErrNotFound.
func (b *Bridge) Get(ctx context.Context, signature string) (*models.IdentityBridge, error) {
	row := b.db.Conn().QueryRowContext(ctx,
		`SELECT signature, reference_artist, reference_title, work_id, confidence, is_revoked, updated_at
		 FROM identity_bridges WHERE signature = ?`, signature)

	var ib models.IdentityBridge
	if err := row.Scan(&ib.Signature, &ib.ReferenceArtist, &ib.ReferenceTitle, &ib.WorkID, &ib.Confidence, &ib.IsRevoked, &ib.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("get: %w", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("get: %w", err)
	}
	return &ib, nil
}
