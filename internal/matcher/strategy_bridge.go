// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package matcher

import (
	"context"
	"fmt"

	"github.com/airwave/airwave/internal/normalizer"
)

// applyBridgeStrategy runs the identity bridge strategy: one batched
// query over non-revoked Bridge rows keyed by signature.
func (m *Matcher) applyBridgeStrategy(ctx context.Context, queries []Query, matches []Match, resolved []bool) error {
	signatures := make([]string, len(queries))
	for i, q := range queries {
		resolvedArtist := m.ResolveAlias(ctx, q.RawArtist)
		signatures[i] = normalizer.Signature(resolvedArtist, q.RawTitle)
	}

	bridges, err := m.lookupBridges(ctx, signatures)
	if err != nil {
		return fmt.Errorf("bridge strategy: %w", err)
	}

	for i, sig := range signatures {
		workID, ok := bridges[sig]
		if !ok {
			continue
		}
		wid := workID
		matches[i] = Match{
			Query:    queries[i],
			WorkID:   &wid,
			Category: CategoryAutoLink,
			Reason:   "identity_bridge",
			Scores:   Scores{ArtistSim: 1.0, TitleSim: 1.0},
		}
		resolved[i] = true
	}
	return nil
}

func (m *Matcher) lookupBridges(ctx context.Context, signatures []string) (map[string]int64, error) {
	if len(signatures) == 0 {
		return nil, nil
	}

	placeholders := make([]any, len(signatures))
	qmarks := ""
	for i, s := range signatures {
		placeholders[i] = s
		if i > 0 {
			qmarks += ", "
		}
		qmarks += "?"
	}

	rows, err := m.db.Conn().QueryContext(ctx,
		fmt.Sprintf(`SELECT signature, work_id FROM identity_bridges WHERE is_revoked = false AND signature IN (%s)`, qmarks),
		placeholders...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var sig string
		var workID int64
		if err := rows.Scan(&sig, &workID); err != nil {
			return nil, err
		}
		out[sig] = workID
	}
	return out, rows.Err()
}
