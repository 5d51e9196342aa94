// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package matcher

import (
	"context"
	"sync"

	"github.com/airwave/airwave/internal/database"
	"github.com/airwave/airwave/internal/vectorindex"
)

// Matcher is batched resolver: a pure function of a KB/vector
// index snapshot and the current thresholds.
type Matcher struct {
	db         *database.DB
	vector     *vectorindex.Index
	vectorTopK int

	mu         sync.RWMutex
	thresholds Thresholds
}

// New constructs a Matcher with the given starting thresholds. vectorTopK
// is the VECTOR_TOPK setting the vector strategy searches with; values
// <= 0 fall back to 5.
func New(db *database.DB, vector *vectorindex.Index, thresholds Thresholds, vectorTopK int) *Matcher {
	if vectorTopK <= 0 {
		vectorTopK = 5
	}
	return &Matcher{db: db, vector: vector, thresholds: thresholds, vectorTopK: vectorTopK}
}

// Thresholds returns the currently active thresholds (get_thresholds).
func (m *Matcher) Thresholds() Thresholds {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.thresholds
}

// SetThresholds validates and swaps the active thresholds (set_thresholds).
func (m *Matcher) SetThresholds(t Thresholds) error {
	if err := t.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.thresholds = t
	m.mu.Unlock()
	return nil
}

// MatchBatch implements match_batch: the four strategies are
// attempted in order per query, the first non-reject result wins, and
// the whole batch shares one snapshot of thresholds. The bridge lookup,
// the artist list, and the vector search run once per batch; alias
// resolution, the exact lookup, and the variant strategy's recording
// lookup run once per unresolved query.
func (m *Matcher) MatchBatch(ctx context.Context, queries []Query) ([]Match, error) {
	return m.matchBatch(ctx, queries, m.Thresholds())
}

// matchBatch is MatchBatch's body parameterized over an explicit
// Thresholds value rather than the live snapshot, so match_samples and
// match_impact can classify a batch under a candidate threshold set
// without mutating (or racing) the Matcher's live thresholds.
func (m *Matcher) matchBatch(ctx context.Context, queries []Query, thresholds Thresholds) ([]Match, error) {
	matches := make([]Match, len(queries))
	resolved := make([]bool, len(queries))

	if err := m.applyBridgeStrategy(ctx, queries, matches, resolved); err != nil {
		return nil, err
	}
	if err := m.applyExactStrategy(ctx, queries, matches, resolved); err != nil {
		return nil, err
	}
	if err := m.applyVariantStrategy(ctx, queries, matches, resolved, thresholds); err != nil {
		return nil, err
	}
	if err := m.applyVectorStrategy(ctx, queries, matches, resolved, thresholds); err != nil {
		return nil, err
	}

	for i, q := range queries {
		if !resolved[i] {
			matches[i] = Match{
				Query:    q,
				Category: CategoryReject,
				Reason:   "No candidate",
			}
		}
		matches[i].Flags = computeFlags(matches[i], thresholds)
	}

	return matches, nil
}

// ResolveAlias applies "after alias resolution of raw_artist". An
// unaliased artist resolves to itself. Exported so callers computing a
// signature ahead of match_batch (ingestion) resolve consistently with
// the bridge strategy's own lookup.
func (m *Matcher) ResolveAlias(ctx context.Context, rawArtist string) string {
	row := m.db.Conn().QueryRowContext(ctx,
		`SELECT resolved_name FROM artist_aliases WHERE raw_name = ?`, rawArtist)
	var resolved string
	if err := row.Scan(&resolved); err != nil {
		return rawArtist
	}
	return resolved
}
