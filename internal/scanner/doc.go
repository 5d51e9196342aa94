// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scanner walks a library's audio files, reads their tags, and
// drives the upsert cascade that materializes the
// Artist -> Work -> Recording -> File hierarchy, with content-hash move
// detection and orphan garbage collection.
package scanner
