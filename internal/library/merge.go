// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package library

import (
	"context"
	"fmt"

	"github.com/airwave/airwave/internal/logging"
	"github.com/airwave/airwave/internal/vectorindex"
)

// MergeArtists implements merge_artists: retargets Work.artist_id,
// WorkArtist.artist_id, and all such rows to targetID in a single
// transaction, dropping WorkArtist rows that would duplicate an existing
// association, then deletes the source Artist.
func (kb *KB) MergeArtists(ctx context.Context, sourceID, targetID int64) (err error) {
	if sourceID == targetID {
		return nil
	}

	tx, err := kb.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("merge_artists: begin: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().Err(rbErr).AnErr("original_error", err).Msg("merge_artists: rollback failed")
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE works SET primary_artist_id = ? WHERE primary_artist_id = ?`, targetID, sourceID); err != nil {
		return fmt.Errorf("merge_artists: retarget works: %w", err)
	}

	// Drop WorkArtist rows that would collide with an existing
	// (work_id, target_id) pair once retargeted.
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM work_artists AS wa
		 WHERE wa.artist_id = ?
		   AND EXISTS (SELECT 1 FROM work_artists t WHERE t.work_id = wa.work_id AND t.artist_id = ?)`,
		sourceID, targetID); err != nil {
		return fmt.Errorf("merge_artists: drop duplicate associations: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `UPDATE work_artists SET artist_id = ? WHERE artist_id = ?`, targetID, sourceID); err != nil {
		return fmt.Errorf("merge_artists: retarget work_artists: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM artists WHERE id = ?`, sourceID); err != nil {
		return fmt.Errorf("merge_artists: delete source artist: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("merge_artists: commit: %w", err)
	}

	if kb.vector != nil {
		if reindexErr := kb.reindexArtistRecordings(ctx, targetID); reindexErr != nil {
			logging.Error().Err(reindexErr).Int64("artist_id", targetID).Msg("merge_artists: vector reindex failed")
		}
	}
	return nil
}

// reindexArtistRecordings re-upserts the vector text for every Recording
// under artistID's Works, so a merged artist's name change (the
// "<artist> - <title>" indexed text) doesn't go stale until the next
// full scan.
func (kb *KB) reindexArtistRecordings(ctx context.Context, artistID int64) error {
	rows, err := kb.db.Conn().QueryContext(ctx,
		`SELECT r.id, a.name, r.title
		   FROM recordings r
		   JOIN works w ON w.id = r.work_id
		   JOIN artists a ON a.id = w.primary_artist_id
		  WHERE w.primary_artist_id = ?`, artistID)
	if err != nil {
		return fmt.Errorf("reindex artist recordings: %w", err)
	}
	defer rows.Close()

	type recordingText struct {
		id   int64
		text string
	}
	var targets []recordingText
	for rows.Next() {
		var id int64
		var artistName, title string
		if err := rows.Scan(&id, &artistName, &title); err != nil {
			return fmt.Errorf("reindex artist recordings: scan: %w", err)
		}
		targets = append(targets, recordingText{id: id, text: vectorindex.IndexedText(artistName, title)})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reindex artist recordings: %w", err)
	}

	for _, t := range targets {
		if err := kb.vector.Upsert(ctx, t.id, t.text); err != nil {
			return fmt.Errorf("reindex artist recordings: upsert %d: %w", t.id, err)
		}
	}
	return nil
}

// MergeWorks implements merge_works: retargets Recordings and
// BroadcastLogs from sourceID to targetID, then deletes the source Work,
// in a single transaction.
func (kb *KB) MergeWorks(ctx context.Context, sourceID, targetID int64) (err error) {
	if sourceID == targetID {
		return nil
	}

	tx, err := kb.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("merge_works: begin: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().Err(rbErr).AnErr("original_error", err).Msg("merge_works: rollback failed")
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE recordings SET work_id = ? WHERE work_id = ?`, targetID, sourceID); err != nil {
		return fmt.Errorf("merge_works: retarget recordings: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `UPDATE broadcast_logs SET work_id = ? WHERE work_id = ?`, targetID, sourceID); err != nil {
		return fmt.Errorf("merge_works: retarget broadcast_logs: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM works WHERE id = ?`, sourceID); err != nil {
		return fmt.Errorf("merge_works: delete source work: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("merge_works: commit: %w", err)
	}
	return nil
}
