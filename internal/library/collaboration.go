// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package library

import (
	"context"
	"fmt"

	"github.com/airwave/airwave/internal/normalizer"
)

// LinkMultiArtists implements link_multi_artists: splits
// rawArtistString, upserts each secondary artist, and associates it with
// workID idempotently, preserving split order as the WorkArtist position.
func (kb *KB) LinkMultiArtists(ctx context.Context, workID int64, rawArtistString string) error {
	names := normalizer.SplitArtists(rawArtistString)
	for i, name := range names {
		artist, err := kb.UpsertArtist(ctx, name, "")
		if err != nil {
			return fmt.Errorf("link_multi_artists: upsert artist %q: %w", name, err)
		}
		if err := kb.associateWorkArtist(ctx, workID, artist.ID, i); err != nil {
			return fmt.Errorf("link_multi_artists: associate artist %d: %w", artist.ID, err)
		}
	}
	return nil
}

func (kb *KB) associateWorkArtist(ctx context.Context, workID, artistID int64, position int) error {
	_, err := kb.db.Conn().ExecContext(ctx,
		`INSERT INTO work_artists (work_id, artist_id, position) VALUES (?, ?, ?)
		 ON CONFLICT (work_id, artist_id) DO UPDATE SET position = excluded.position`,
		workID, artistID, position)
	return err
}
