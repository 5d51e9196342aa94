// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package vectorindex

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/airwave/airwave/internal/apperr"
	"github.com/airwave/airwave/internal/database"
	"github.com/airwave/airwave/internal/logging"
)

// Match is one search_batch hit: a candidate Recording and its cosine
// distance from the query.
type Match struct {
	RecordingID int64
	Distance    float64
}

// Index is the vector index over Recording "<artist> - <title>" text.
type Index struct {
	db *database.DB
	cb *gobreaker.CircuitBreaker[any]
}

// New constructs an Index bound to db, wrapped in a circuit breaker
// that trips at a failure rate of 60% or more once there have been enough
// requests to be statistically meaningful.
func New(db *database.DB) *Index {
	cbName := "vector-index"
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("name", name).Str("from", stateToString(from)).Str("to", stateToString(to)).Msg("vector index circuit breaker state transition")
		},
	})
	return &Index{db: db, cb: cb}
}

func stateToString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// IndexedText builds the "<primary_artist_name> - <title>" string used
// as the vectorized text, from already-normalized inputs.
func IndexedText(artistName, title string) string {
	return artistName + " - " + title
}

// Upsert inserts or replaces the vector for recordingID.
func (idx *Index) Upsert(ctx context.Context, recordingID int64, text string) error {
	vec := Embed(text)
	_, err := idx.cb.Execute(func() (any, error) {
		_, err := idx.db.Conn().ExecContext(ctx,
			fmt.Sprintf(`INSERT INTO recording_vectors (recording_id, indexed_text, embedding)
			 VALUES (?, ?, %s)
			 ON CONFLICT (recording_id) DO UPDATE SET indexed_text = excluded.indexed_text, embedding = excluded.embedding, updated_at = current_timestamp`,
				arrayLiteral(vec)),
			recordingID, text)
		return nil, err
	})
	return wrapBreakerErr(err)
}

// Delete removes recordingID's vector.
func (idx *Index) Delete(ctx context.Context, recordingID int64) error {
	_, err := idx.cb.Execute(func() (any, error) {
		_, err := idx.db.Conn().ExecContext(ctx, `DELETE FROM recording_vectors WHERE recording_id = ?`, recordingID)
		return nil, err
	})
	return wrapBreakerErr(err)
}

// SearchBatch computes, for each query, the topK nearest recordings by
// cosine distance. Queries are embedded with the same Embed
// function used by Upsert so index population and search never diverge.
func (idx *Index) SearchBatch(ctx context.Context, queries []string, topK int) ([][]Match, error) {
	out := make([][]Match, len(queries))
	for i, q := range queries {
		matches, err := idx.search(ctx, q, topK)
		if err != nil {
			return nil, err
		}
		out[i] = matches
	}
	return out, nil
}

func (idx *Index) search(ctx context.Context, query string, topK int) ([]Match, error) {
	vec := Embed(query)
	result, err := idx.cb.Execute(func() (any, error) {
		q := fmt.Sprintf(
			`SELECT recording_id, array_cosine_distance(embedding, %s) AS distance
			 FROM recording_vectors
			 ORDER BY distance ASC
			 LIMIT ?`, arrayLiteral(vec))
		rows, err := idx.db.Conn().QueryContext(ctx, q, topK)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var matches []Match
		for rows.Next() {
			var m Match
			if err := rows.Scan(&m.RecordingID, &m.Distance); err != nil {
				return nil, err
			}
			matches = append(matches, m)
		}
		return matches, rows.Err()
	})
	if err != nil {
		return nil, wrapBreakerErr(err)
	}
	return result.([]Match), nil
}

// arrayLiteral renders vec as a DuckDB DOUBLE[N] literal. Values are
// computed floats, never user-controlled strings, so inlining them into
// the query text carries no injection risk.
func arrayLiteral(vec []float64) string {
	parts := make([]string, len(vec))
	for i, v := range vec {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]::DOUBLE[" + strconv.Itoa(len(vec)) + "]"
}

func wrapBreakerErr(err error) error {
	if err == nil {
		return nil
	}
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return fmt.Errorf("vector index unavailable: %w: %w", apperr.ErrTransient, err)
	}
	return err
}
