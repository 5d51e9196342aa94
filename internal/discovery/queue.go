// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package discovery

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/airwave/airwave/internal/database/query"
	"github.com/airwave/airwave/internal/matcher"
	"github.com/airwave/airwave/internal/models"
)

// Upsert implements per-signature aggregation for a BroadcastLog
// the Matcher resolved to review or reject: count increments
// unconditionally; suggested_work_id and best_scores refresh only when
// the new match improves on min(artist_sim, title_sim).
func (d *Discovery) Upsert(ctx context.Context, signature, rawArtist, rawTitle string, m matcher.Match) error {
	var suggestedWorkID sql.NullInt64
	if m.WorkID != nil {
		suggestedWorkID = sql.NullInt64{Int64: *m.WorkID, Valid: true}
	}

	var vectorDistance sql.NullFloat64
	if m.Scores.VectorDistance != nil {
		vectorDistance = sql.NullFloat64{Float64: *m.Scores.VectorDistance, Valid: true}
	}

	_, err := d.db.Conn().ExecContext(ctx,
		`INSERT INTO discovery_queue_items
		   (signature, raw_artist, raw_title, count, suggested_work_id, best_artist_sim, best_title_sim, best_vector_distance, updated_at)
		 VALUES (?, ?, ?, 1, ?, ?, ?, ?, current_timestamp)
		 ON CONFLICT (signature) DO UPDATE SET
		   count = discovery_queue_items.count + 1,
		   suggested_work_id = CASE
		     WHEN LEAST(excluded.best_artist_sim, excluded.best_title_sim)
		          > LEAST(COALESCE(discovery_queue_items.best_artist_sim, 0), COALESCE(discovery_queue_items.best_title_sim, 0))
		     THEN excluded.suggested_work_id ELSE discovery_queue_items.suggested_work_id END,
		   best_artist_sim = CASE
		     WHEN LEAST(excluded.best_artist_sim, excluded.best_title_sim)
		          > LEAST(COALESCE(discovery_queue_items.best_artist_sim, 0), COALESCE(discovery_queue_items.best_title_sim, 0))
		     THEN excluded.best_artist_sim ELSE discovery_queue_items.best_artist_sim END,
		   best_title_sim = CASE
		     WHEN LEAST(excluded.best_artist_sim, excluded.best_title_sim)
		          > LEAST(COALESCE(discovery_queue_items.best_artist_sim, 0), COALESCE(discovery_queue_items.best_title_sim, 0))
		     THEN excluded.best_title_sim ELSE discovery_queue_items.best_title_sim END,
		   best_vector_distance = CASE
		     WHEN LEAST(excluded.best_artist_sim, excluded.best_title_sim)
		          > LEAST(COALESCE(discovery_queue_items.best_artist_sim, 0), COALESCE(discovery_queue_items.best_title_sim, 0))
		     THEN excluded.best_vector_distance ELSE discovery_queue_items.best_vector_distance END,
		   updated_at = current_timestamp`,
		signature, rawArtist, rawTitle, suggestedWorkID, m.Scores.ArtistSim, m.Scores.TitleSim, vectorDistance)
	if err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

// Filter selects a subset of the Discovery Queue for queue_list.
type Filter struct {
	ExcludeCoolingDown bool
	Limit              int
	Offset             int
}

// List implements queue_list(filter, limit, offset).
func (d *Discovery) List(ctx context.Context, f Filter) ([]models.DiscoveryQueueItem, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	wb := query.NewWhereBuilder()
	if f.ExcludeCoolingDown {
		wb.AddClause("cooldown_until IS NULL OR cooldown_until < current_timestamp")
	}

	sql := `SELECT signature, raw_artist, raw_title, count, suggested_work_id, best_artist_sim, best_title_sim, best_vector_distance, cooldown_until
	        FROM discovery_queue_items`
	if !wb.IsEmpty() {
		where, _ := wb.BuildWithPrefix()
		sql += " " + where
	}
	sql += ` ORDER BY count DESC, signature ASC LIMIT ? OFFSET ?`

	rows, err := d.db.Conn().QueryContext(ctx, sql, limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	var out []models.DiscoveryQueueItem
	for rows.Next() {
		var item models.DiscoveryQueueItem
		if err := rows.Scan(&item.Signature, &item.RawArtist, &item.RawTitle, &item.Count,
			&item.SuggestedWorkID, &item.BestArtistSim, &item.BestTitleSim, &item.BestVectorDistance, &item.CooldownUntil); err != nil {
			return nil, fmt.Errorf("list: scan: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
