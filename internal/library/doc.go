// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package library implements the knowledge-base operations: upserting
// artists, works, recordings, and files with the exact/fuzzy cascade and
// part-number discrimination the three-level hierarchy requires, plus
// the admin merge operations.
package library
