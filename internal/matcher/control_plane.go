// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package matcher

import (
	"context"
	"fmt"
)

// MatchSample is one row of match_samples' stratified preview output.
type MatchSample struct {
	BroadcastLogID int64
	Query          Query
	Match          Match
}

// sampleScanWindow bounds how many recent BroadcastLogs Samples draws
// from before stratifying, so the scan stays bounded regardless of how
// skewed the live category mix is.
const sampleScanWindow = 5000

// Samples implements match_samples(limit, thresholds?): re-runs the
// matcher over a recent window of BroadcastLogs under thresholds (the
// live thresholds if nil), then returns up to limit results stratified
// evenly across {auto_link, review, reject, identity_bridge} so an
// operator previewing a threshold change sees every outcome, not just
// whichever category the live traffic happens to favor.
func (m *Matcher) Samples(ctx context.Context, limit int, thresholds *Thresholds) ([]MatchSample, error) {
	if limit <= 0 {
		limit = 100
	}
	th := m.Thresholds()
	if thresholds != nil {
		th = *thresholds
	}

	rows, err := m.db.Conn().QueryContext(ctx,
		`SELECT id, raw_artist, raw_title FROM broadcast_logs ORDER BY played_at DESC LIMIT ?`, sampleScanWindow)
	if err != nil {
		return nil, fmt.Errorf("match_samples: %w", err)
	}
	defer rows.Close()

	var ids []int64
	var queries []Query
	for rows.Next() {
		var id int64
		var q Query
		if err := rows.Scan(&id, &q.RawArtist, &q.RawTitle); err != nil {
			return nil, fmt.Errorf("match_samples: scan: %w", err)
		}
		ids = append(ids, id)
		queries = append(queries, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("match_samples: %w", err)
	}
	if len(queries) == 0 {
		return nil, nil
	}

	matches, err := m.matchBatch(ctx, queries, th)
	if err != nil {
		return nil, fmt.Errorf("match_samples: match_batch: %w", err)
	}

	perCategory := limit / 4
	if perCategory == 0 {
		perCategory = 1
	}

	buckets := make(map[Category][]MatchSample)
	for i, match := range matches {
		buckets[match.Category] = append(buckets[match.Category], MatchSample{
			BroadcastLogID: ids[i],
			Query:          queries[i],
			Match:          match,
		})
	}

	var out []MatchSample
	for _, cat := range []Category{CategoryAutoLink, CategoryReview, CategoryReject, CategoryIdentityBridge} {
		bucket := buckets[cat]
		if len(bucket) > perCategory {
			bucket = bucket[:perCategory]
		}
		out = append(out, bucket...)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// maxImpactSample is match_impact's "sample_size <= 5000" bound.
const maxImpactSample = 5000

// Impact is match_impact's summary of how a candidate set of thresholds
// would reclassify a sample of BroadcastLogs relative to the live
// thresholds.
type Impact struct {
	SampleSize     int
	CategoryBefore map[Category]int
	CategoryAfter  map[Category]int
	Changed        int
}

// Impact implements match_impact(thresholds, sample_size<=5000): draws a
// random sample of BroadcastLogs, classifies each under both the live
// thresholds and the candidate thresholds, and reports the before/after
// category counts plus how many rows would change category, so an
// operator can evaluate a threshold change before calling
// set_thresholds.
func (m *Matcher) Impact(ctx context.Context, thresholds Thresholds, sampleSize int) (Impact, error) {
	if sampleSize <= 0 || sampleSize > maxImpactSample {
		sampleSize = maxImpactSample
	}

	rows, err := m.db.Conn().QueryContext(ctx,
		`SELECT raw_artist, raw_title FROM broadcast_logs ORDER BY random() LIMIT ?`, sampleSize)
	if err != nil {
		return Impact{}, fmt.Errorf("match_impact: %w", err)
	}
	defer rows.Close()

	var queries []Query
	for rows.Next() {
		var q Query
		if err := rows.Scan(&q.RawArtist, &q.RawTitle); err != nil {
			return Impact{}, fmt.Errorf("match_impact: scan: %w", err)
		}
		queries = append(queries, q)
	}
	if err := rows.Err(); err != nil {
		return Impact{}, fmt.Errorf("match_impact: %w", err)
	}

	impact := Impact{
		CategoryBefore: make(map[Category]int),
		CategoryAfter:  make(map[Category]int),
	}
	if len(queries) == 0 {
		return impact, nil
	}

	before := m.Thresholds()
	beforeMatches, err := m.matchBatch(ctx, queries, before)
	if err != nil {
		return Impact{}, fmt.Errorf("match_impact: before: %w", err)
	}
	afterMatches, err := m.matchBatch(ctx, queries, thresholds)
	if err != nil {
		return Impact{}, fmt.Errorf("match_impact: after: %w", err)
	}

	impact.SampleSize = len(queries)
	for i := range queries {
		impact.CategoryBefore[beforeMatches[i].Category]++
		impact.CategoryAfter[afterMatches[i].Category]++
		if beforeMatches[i].Category != afterMatches[i].Category {
			impact.Changed++
		}
	}
	return impact, nil
}
