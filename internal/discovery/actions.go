// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/airwave/airwave/internal/apperr"
	"github.com/airwave/airwave/internal/audit"
)

// Link implements Link action: delegate to the Bridge.
func (d *Discovery) Link(ctx context.Context, actor audit.Actor, signature, rawArtist, rawTitle string, workID int64) error {
	return d.bridge.Link(ctx, actor, signature, rawArtist, rawTitle, workID)
}

// Promote implements Promote action: Link plus flipping the
// chosen Recording's is_verified.
func (d *Discovery) Promote(ctx context.Context, actor audit.Actor, signature, rawArtist, rawTitle string, workID, recordingID int64) error {
	return d.bridge.Promote(ctx, actor, signature, rawArtist, rawTitle, workID, recordingID)
}

// Skip implements Skip action: the queue item is marked with a
// cool-down and will not resurface for new plays until it expires.
func (d *Discovery) Skip(ctx context.Context, actor audit.Actor, signature string) error {
	cooldownUntil := time.Now().Add(DefaultCooldown)

	result, err := d.db.Conn().ExecContext(ctx,
		`UPDATE discovery_queue_items SET cooldown_until = ?, updated_at = current_timestamp WHERE signature = ?`,
		cooldownUntil, signature)
	if err != nil {
		return fmt.Errorf("skip: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("skip: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("skip: %w", apperr.ErrNotFound)
	}

	if d.logger != nil {
		d.logger.LogQueueSkip(ctx, actor, signature, cooldownUntil)
	}
	return nil
}

// Alias implements Artist alias action: insert/update an
// ArtistAlias and return the signatures whose raw_artist matches, for
// the caller to schedule a rematch job over.
func (d *Discovery) Alias(ctx context.Context, actor audit.Actor, rawName, resolvedName, rematchTaskID string) ([]string, error) {
	if _, err := d.db.Conn().ExecContext(ctx,
		`INSERT INTO artist_aliases (raw_name, resolved_name, is_verified) VALUES (?, ?, true)
		 ON CONFLICT (raw_name) DO UPDATE SET resolved_name = excluded.resolved_name, is_verified = true`,
		rawName, resolvedName); err != nil {
		return nil, fmt.Errorf("alias: %w", err)
	}

	rows, err := d.db.Conn().QueryContext(ctx,
		`SELECT DISTINCT signature FROM broadcast_logs WHERE raw_artist = ?`, rawName)
	if err != nil {
		return nil, fmt.Errorf("alias: affected signatures: %w", err)
	}
	defer rows.Close()

	var signatures []string
	for rows.Next() {
		var sig string
		if err := rows.Scan(&sig); err != nil {
			return nil, fmt.Errorf("alias: scan: %w", err)
		}
		signatures = append(signatures, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if d.logger != nil {
		d.logger.LogArtistAlias(ctx, actor, rawName, resolvedName, rematchTaskID)
	}
	return signatures, nil
}

// BulkLink implements Bulk link action: Link applied to a set of
// signatures in one audited operation.
func (d *Discovery) BulkLink(ctx context.Context, actor audit.Actor, links []SignatureLink) error {
	for _, l := range links {
		if err := d.bridge.Link(ctx, actor, l.Signature, l.RawArtist, l.RawTitle, l.WorkID); err != nil {
			return fmt.Errorf("bulk_link: signature %s: %w", l.Signature, err)
		}
	}

	if d.logger != nil {
		sigs := make([]string, len(links))
		for i, l := range links {
			sigs[i] = l.Signature
		}
		d.logger.LogBulkLink(ctx, actor, sigs)
	}
	return nil
}

// SignatureLink is one (signature, work_id) pair for BulkLink.
type SignatureLink struct {
	Signature string
	RawArtist string
	RawTitle  string
	WorkID    int64
}
