// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package discovery

import (
	"context"
	"fmt"

	"github.com/airwave/airwave/internal/database/query"
)

// ArtistQueueFilter selects which BroadcastLogs feed the artist-linking
// queue. Unlike the song Discovery Queue, this is fed from all
// BroadcastLogs, not just the unmatched ones.
type ArtistQueueFilter string

const (
	ArtistQueueAll       ArtistQueueFilter = "all"
	ArtistQueueMatched   ArtistQueueFilter = "matched"
	ArtistQueueUnmatched ArtistQueueFilter = "unmatched"
)

// ArtistQueueEntry is one distinct raw_artist string awaiting an alias
// decision, with its observed play count.
type ArtistQueueEntry struct {
	RawArtist string
	PlayCount int64
}

// ListArtistQueue implements decoupled artist-linking queue.
func (d *Discovery) ListArtistQueue(ctx context.Context, filter ArtistQueueFilter, limit, offset int) ([]ArtistQueueEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	wb := query.NewWhereBuilder()
	switch filter {
	case ArtistQueueMatched:
		wb.AddWorkMatched(true)
	case ArtistQueueUnmatched:
		wb.AddWorkMatched(false)
	}

	sql := `SELECT raw_artist, COUNT(*) AS n FROM broadcast_logs`
	if !wb.IsEmpty() {
		where, _ := wb.BuildWithPrefix()
		sql += " " + where
	}
	sql += ` GROUP BY raw_artist ORDER BY n DESC, raw_artist ASC LIMIT ? OFFSET ?`

	rows, err := d.db.Conn().QueryContext(ctx, sql, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list_artist_queue: %w", err)
	}
	defer rows.Close()

	var out []ArtistQueueEntry
	for rows.Next() {
		var e ArtistQueueEntry
		if err := rows.Scan(&e.RawArtist, &e.PlayCount); err != nil {
			return nil, fmt.Errorf("list_artist_queue: scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
