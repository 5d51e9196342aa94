// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package matcher implements the four-strategy batched resolver:
// identity bridge, exact, variant (fuzzy), and vector, applying the
// three-range threshold decision and the tie-break and edge-case-flag
// rules shared by discovery and rematch.
package matcher
