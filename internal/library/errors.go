// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package library

import "strings"

// isUniqueConstraintError reports whether err is a DuckDB unique-key
// violation: a string match on the driver's error text rather than a
// typed sentinel, since duckdb-go does not expose a distinct
// constraint-violation type.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key") || strings.Contains(msg, "violates unique")
}
