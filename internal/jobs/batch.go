// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package jobs

import "context"

// DefaultBatchSize is DISCOVERY_BATCH_SIZE default: discovery and
// rematch process queue items in fixed-size batches so the bridge
// lookup, the artist-list load for fuzzy scoring, and vector search are
// invoked once per batch rather than once per item. Alias resolution
// and the exact and recording lookups still run once per item.
const DefaultBatchSize = 500

// BatchFunc processes one batch of items, reporting progress for the
// batch's contribution to the overall total.
type BatchFunc[T any] func(ctx context.Context, batch []T) error

// RunBatched is the single code path shared by discovery and rematch so
// the two never diverge: it slices items into batchSize chunks, observes
// cancellation at each batch boundary, and reports (current, total,
// message) after every batch.
func RunBatched[T any](ctx context.Context, items []T, batchSize int, report Reporter, message string, fn BatchFunc[T]) error {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	total := int64(len(items))
	var current int64

	for start := 0; start < len(items); start += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}

		if err := fn(ctx, items[start:end]); err != nil {
			return err
		}

		current += int64(end - start)
		if report != nil {
			report(current, total, message)
		}
	}

	return nil
}
