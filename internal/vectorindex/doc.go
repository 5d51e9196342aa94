// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package vectorindex implements cosine-similarity index over
// Recording "<artist> - <title>" strings: a DuckDB DOUBLE[] column
// queried with array_cosine_distance, wrapped in a circuit breaker since
// the index is derived state the matcher must be able to degrade past.
package vectorindex
