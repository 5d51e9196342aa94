// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package normalizer produces the canonical string forms used as keys
// throughout Airwave: title/artist cleaning, collaboration splitting,
// version-tag extraction, part-number discrimination, and signature
// hashing. Every exported function is pure: no I/O, no package-level
// state, idempotent on its own output.
package normalizer
