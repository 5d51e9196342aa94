// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package matcher

import (
	"context"
	"fmt"

	"github.com/airwave/airwave/internal/normalizer"
)

type artistCandidate struct {
	id        int64
	name      string
	artistSim float64
}

type recordingCandidate struct {
	workID      int64
	recordingID int64
	title       string
	isVerified  bool
}

// applyVariantStrategy runs fuzzy artist matching (exact, or
// ratio >= ArtistReview) feeding a title-ratio scored
// candidate set, decided by the three-range rule and the documented
// tie-break order. Artist-ratio computation is memoized per distinct
// normalized query artist so it is paid once per batch, not per query.
func (m *Matcher) applyVariantStrategy(ctx context.Context, queries []Query, matches []Match, resolved []bool, th Thresholds) error {
	needed := false
	for i := range queries {
		if !resolved[i] {
			needed = true
			break
		}
	}
	if !needed {
		return nil
	}

	allArtists, err := m.allArtists(ctx)
	if err != nil {
		return fmt.Errorf("variant strategy: load artists: %w", err)
	}

	artistRatioCache := make(map[string][]artistCandidate)

	for i, q := range queries {
		if resolved[i] {
			continue
		}

		normArtist := normalizer.CleanArtist(q.RawArtist)
		normTitle, _ := normalizer.CleanTitle(q.RawTitle)

		candidates, ok := artistRatioCache[normArtist]
		if !ok {
			candidates = qualifyingArtists(normArtist, allArtists, th.ArtistReview)
			artistRatioCache[normArtist] = candidates
		}
		if len(candidates) == 0 {
			continue
		}

		best, bestArtistSim, bestTitleSim, err := m.bestVariantCandidate(ctx, candidates, normTitle)
		if err != nil {
			return fmt.Errorf("variant strategy: %w", err)
		}
		if best == nil {
			continue
		}

		category := decide(bestArtistSim, bestTitleSim, th)
		if category == CategoryReject {
			continue
		}

		wid, rid := best.workID, best.recordingID
		matches[i] = Match{
			Query:        q,
			WorkID:       &wid,
			RecordingID:  &rid,
			Category:     category,
			Reason:       "variant",
			Scores:       Scores{ArtistSim: bestArtistSim, TitleSim: bestTitleSim},
			matchedTitle: best.title,
		}
		resolved[i] = true
	}
	return nil
}

// decide applies three-range rule.
func decide(artistSim, titleSim float64, th Thresholds) Category {
	if artistSim >= th.ArtistAuto && titleSim >= th.TitleAuto {
		return CategoryAutoLink
	}
	if artistSim >= th.ArtistReview && titleSim >= th.TitleReview {
		return CategoryReview
	}
	return CategoryReject
}

func qualifyingArtists(normArtist string, all []struct {
	id   int64
	name string
}, artistReview float64) []artistCandidate {
	var out []artistCandidate
	for _, a := range all {
		if a.name == normArtist {
			out = append(out, artistCandidate{id: a.id, name: a.name, artistSim: 1.0})
			continue
		}
		ratio := normalizer.Ratio(normArtist, a.name)
		if ratio >= artistReview {
			out = append(out, artistCandidate{id: a.id, name: a.name, artistSim: ratio})
		}
	}
	return out
}

func (m *Matcher) allArtists(ctx context.Context) ([]struct {
	id   int64
	name string
}, error) {
	rows, err := m.db.Conn().QueryContext(ctx, `SELECT id, name FROM artists`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []struct {
		id   int64
		name string
	}
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out = append(out, struct {
			id   int64
			name string
		}{id, name})
	}
	return out, rows.Err()
}

// bestVariantCandidate scores every recording belonging to any of the
// qualifying artists and applies tie-break order: higher
// min(artist_sim, title_sim); then higher artist_sim+title_sim; then
// is_verified; then lower recording id.
func (m *Matcher) bestVariantCandidate(ctx context.Context, candidates []artistCandidate, normTitle string) (*recordingCandidate, float64, float64, error) {
	ids := make([]int64, len(candidates))
	artistSimByID := make(map[int64]float64, len(candidates))
	for i, c := range candidates {
		ids[i] = c.id
		artistSimByID[c.id] = c.artistSim
	}

	recs, err := m.recordingsForArtists(ctx, ids)
	if err != nil {
		return nil, 0, 0, err
	}

	var best *recordingCandidate
	var bestArtistSim, bestTitleSim float64
	for _, rec := range recs {
		artistSim := artistSimByID[rec.workArtistID]
		titleSim := normalizer.Ratio(normTitle, rec.title)

		if best == nil || better(artistSim, titleSim, rec, bestArtistSim, bestTitleSim, best) {
			r := rec.recordingCandidate
			best = &r
			bestArtistSim, bestTitleSim = artistSim, titleSim
		}
	}
	return best, bestArtistSim, bestTitleSim, nil
}

type recordingRow struct {
	recordingCandidate
	workArtistID int64
}

func (m *Matcher) recordingsForArtists(ctx context.Context, artistIDs []int64) ([]recordingRow, error) {
	if len(artistIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]any, len(artistIDs))
	qmarks := ""
	for i, id := range artistIDs {
		placeholders[i] = id
		if i > 0 {
			qmarks += ", "
		}
		qmarks += "?"
	}

	rows, err := m.db.Conn().QueryContext(ctx,
		fmt.Sprintf(`SELECT w.primary_artist_id, w.id, r.id, r.title, r.is_verified
		 FROM works w JOIN recordings r ON r.work_id = w.id
		 WHERE w.primary_artist_id IN (%s)`, qmarks),
		placeholders...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []recordingRow
	for rows.Next() {
		var row recordingRow
		if err := rows.Scan(&row.workArtistID, &row.workID, &row.recordingID, &row.title, &row.isVerified); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func better(artistSim, titleSim float64, rec recordingRow, bestArtistSim, bestTitleSim float64, best *recordingCandidate) bool {
	minNew, minBest := min2(artistSim, titleSim), min2(bestArtistSim, bestTitleSim)
	if minNew != minBest {
		return minNew > minBest
	}
	sumNew, sumBest := artistSim+titleSim, bestArtistSim+bestTitleSim
	if sumNew != sumBest {
		return sumNew > sumBest
	}
	if rec.isVerified != best.isVerified {
		return rec.isVerified
	}
	return rec.recordingID < best.recordingID
}

func min2(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
