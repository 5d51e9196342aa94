// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package matcher

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/airwave/airwave/internal/normalizer"
)

// applyExactStrategy runs an exact (normalized_artist, normalized_title)
// lookup, preferring the Original, verified Recording when more than
// one candidate exists.
func (m *Matcher) applyExactStrategy(ctx context.Context, queries []Query, matches []Match, resolved []bool) error {
	for i, q := range queries {
		if resolved[i] {
			continue
		}

		artist := normalizer.CleanArtist(q.RawArtist)
		title, _ := normalizer.CleanTitle(q.RawTitle)

		workID, recordingID, err := m.lookupExact(ctx, artist, title)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return fmt.Errorf("exact strategy: %w", err)
		}

		wid, rid := workID, recordingID
		matches[i] = Match{
			Query:        q,
			WorkID:       &wid,
			RecordingID:  &rid,
			Category:     CategoryAutoLink,
			Reason:       "exact",
			Scores:       Scores{ArtistSim: 1.0, TitleSim: 1.0},
			matchedTitle: title,
		}
		resolved[i] = true
	}
	return nil
}

func (m *Matcher) lookupExact(ctx context.Context, artist, title string) (workID int64, recordingID int64, err error) {
	row := m.db.Conn().QueryRowContext(ctx,
		`SELECT w.id, r.id
		 FROM artists a
		 JOIN works w ON w.primary_artist_id = a.id
		 JOIN recordings r ON r.work_id = w.id
		 WHERE a.name = ? AND w.title = ?
		 ORDER BY (r.version_type = 'Original') DESC, r.is_verified DESC, r.id ASC
		 LIMIT 1`,
		artist, title)
	if scanErr := row.Scan(&workID, &recordingID); scanErr != nil {
		return 0, 0, scanErr
	}
	return workID, recordingID, nil
}
