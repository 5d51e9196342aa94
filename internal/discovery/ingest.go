// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/airwave/airwave/internal/matcher"
	"github.com/airwave/airwave/internal/normalizer"
)

// Play is one raw broadcast event submitted for ingestion, before
// normalization or matching.
type Play struct {
	StationID int64
	PlayedAt  time.Time
	RawArtist string
	RawTitle  string
}

// IngestResult is submit_logs's (n_inserted, n_auto_linked, n_queued) triple.
type IngestResult struct {
	Inserted   int
	AutoLinked int
	Queued     int
}

// SubmitLogs implements submit_logs: the ingestion data flow of raw log
// -> signature -> identity bridge lookup -> matcher -> either the log is
// linked to a Work directly (auto_link or identity_bridge) or a
// DiscoveryQueueItem is upserted with the matcher's best suggestion.
// Every play is inserted as a BroadcastLog regardless of outcome; only
// its work_id/match_reason differ. m runs one batch over all plays so
// the bridge lookup, the artist-list load for fuzzy scoring, and the
// vector search each happen once per call rather than once per play;
// alias resolution and the exact and recording lookups still run once
// per play.
func (d *Discovery) SubmitLogs(ctx context.Context, m *matcher.Matcher, plays []Play) (IngestResult, error) {
	if len(plays) == 0 {
		return IngestResult{}, nil
	}

	type pending struct {
		logID     int64
		signature string
		rawArtist string
		rawTitle  string
	}

	queries := make([]matcher.Query, len(plays))
	pendings := make([]pending, len(plays))

	for i, p := range plays {
		resolvedArtist := m.ResolveAlias(ctx, p.RawArtist)
		signature := normalizer.Signature(resolvedArtist, p.RawTitle)

		var logID int64
		if err := d.db.Conn().QueryRowContext(ctx,
			`INSERT INTO broadcast_logs (station_id, played_at, raw_artist, raw_title, signature)
			 VALUES (?, ?, ?, ?, ?) RETURNING id`,
			p.StationID, p.PlayedAt, p.RawArtist, p.RawTitle, signature).Scan(&logID); err != nil {
			return IngestResult{}, fmt.Errorf("submit_logs: insert broadcast_log: %w", err)
		}

		queries[i] = matcher.Query{RawArtist: p.RawArtist, RawTitle: p.RawTitle}
		pendings[i] = pending{logID: logID, signature: signature, rawArtist: p.RawArtist, rawTitle: p.RawTitle}
	}

	matches, err := m.MatchBatch(ctx, queries)
	if err != nil {
		return IngestResult{}, fmt.Errorf("submit_logs: match_batch: %w", err)
	}

	result := IngestResult{Inserted: len(plays)}

	for i, match := range matches {
		p := pendings[i]
		switch match.Category {
		case matcher.CategoryAutoLink, matcher.CategoryIdentityBridge:
			if _, err := d.db.Conn().ExecContext(ctx,
				`UPDATE broadcast_logs SET work_id = ?, match_reason = ? WHERE id = ?`,
				*match.WorkID, match.Reason, p.logID); err != nil {
				return result, fmt.Errorf("submit_logs: link broadcast_log %d: %w", p.logID, err)
			}
			result.AutoLinked++
		default:
			if err := d.Upsert(ctx, p.signature, p.rawArtist, p.rawTitle, match); err != nil {
				return result, fmt.Errorf("submit_logs: queue signature %s: %w", p.signature, err)
			}
			result.Queued++
		}
	}

	return result, nil
}
