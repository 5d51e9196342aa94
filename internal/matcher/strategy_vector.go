// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package matcher

import (
	"context"
	"fmt"

	"github.com/airwave/airwave/internal/normalizer"
	"github.com/airwave/airwave/internal/vectorindex"
)

// applyVectorStrategy runs last, for queries still unresolved after
// bridge/exact/variant: search the vector index and accept the closest
// hit only if its title_sim clears TitleReview. A vector hit never
// auto-links.
func (m *Matcher) applyVectorStrategy(ctx context.Context, queries []Query, matches []Match, resolved []bool, th Thresholds) error {
	var pending []int
	var texts []string
	for i, q := range queries {
		if resolved[i] {
			continue
		}
		artist := normalizer.CleanArtist(q.RawArtist)
		title, _ := normalizer.CleanTitle(q.RawTitle)
		pending = append(pending, i)
		texts = append(texts, vectorindex.IndexedText(artist, title))
	}
	if len(pending) == 0 {
		return nil
	}

	results, err := m.vector.SearchBatch(ctx, texts, m.vectorTopK)
	if err != nil {
		return fmt.Errorf("vector strategy: %w", err)
	}

	for j, i := range pending {
		q := queries[i]
		normTitle, _ := normalizer.CleanTitle(q.RawTitle)

		accepted, recordingID, distance, titleSim, matchedTitle := bestVectorHit(results[j], m, ctx, normTitle, th.TitleReview)
		if !accepted {
			continue
		}

		workID, err := m.workIDForRecording(ctx, recordingID)
		if err != nil {
			return fmt.Errorf("vector strategy: resolve work: %w", err)
		}

		d := distance
		wid, rid := workID, recordingID
		matches[i] = Match{
			Query:        q,
			WorkID:       &wid,
			RecordingID:  &rid,
			Category:     CategoryReview,
			Reason:       "vector",
			Scores:       Scores{TitleSim: titleSim, VectorDistance: &d},
			matchedTitle: matchedTitle,
		}
		resolved[i] = true
	}
	return nil
}

func bestVectorHit(hits []vectorindex.Match, m *Matcher, ctx context.Context, normTitle string, titleReview float64) (accepted bool, recordingID int64, distance float64, titleSim float64, matchedTitle string) {
	for _, h := range hits {
		title, err := m.recordingTitle(ctx, h.RecordingID)
		if err != nil {
			continue
		}
		sim := normalizer.Ratio(normTitle, title)
		if sim >= titleReview {
			return true, h.RecordingID, h.Distance, sim, title
		}
	}
	return false, 0, 0, 0, ""
}

func (m *Matcher) recordingTitle(ctx context.Context, recordingID int64) (string, error) {
	var title string
	row := m.db.Conn().QueryRowContext(ctx, `SELECT title FROM recordings WHERE id = ?`, recordingID)
	if err := row.Scan(&title); err != nil {
		return "", err
	}
	return title, nil
}

func (m *Matcher) workIDForRecording(ctx context.Context, recordingID int64) (int64, error) {
	var workID int64
	row := m.db.Conn().QueryRowContext(ctx, `SELECT work_id FROM recordings WHERE id = ?`, recordingID)
	if err := row.Scan(&workID); err != nil {
		return 0, err
	}
	return workID, nil
}
