// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package discovery implements Discovery Queue: the deduplicated,
// per-signature backlog of unmatched or review-grade plays awaiting an
// operator decision, plus the operator actions over it (Link, Promote,
// Skip, Artist alias, Bulk link) and the artist-linking queue decoupled
// from song matching.
package discovery
