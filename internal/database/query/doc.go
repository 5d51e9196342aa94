// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package query provides SQL query building utilities for the discovery
// queue package.
//
// This package reduces code duplication and provides type-safe query
// construction for parameterized SQL WHERE clauses. It ensures
// consistent parameter handling and prevents SQL injection
// vulnerabilities.
//
// # Overview
//
// The WhereBuilder is the primary component, providing a fluent
// interface for constructing WHERE clauses with properly parameterized
// queries:
//
//	wb := query.NewWhereBuilder()
//	wb.AddWorkMatched(false)
//	wb.AddSignatures([]string{"a1b2c3", "d4e5f6"})
//	whereClause, args := wb.Build()
//	// Result: "work_id IS NULL AND signature IN (?, ?)"
//	// Args: ["a1b2c3", "d4e5f6"]
//
// # Usage Example
//
// Building a query with multiple filters, used by the discovery
// queue's ListArtistQueue and List operations:
//
//	func (d *Discovery) ListArtistQueue(ctx context.Context, filter ArtistQueueFilter, limit, offset int) ([]ArtistQueueEntry, error) {
//	    wb := query.NewWhereBuilder()
//	    switch filter {
//	    case ArtistQueueMatched:
//	        wb.AddWorkMatched(true)
//	    case ArtistQueueUnmatched:
//	        wb.AddWorkMatched(false)
//	    }
//
//	    sql := `SELECT raw_artist, COUNT(*) AS n FROM broadcast_logs`
//	    if !wb.IsEmpty() {
//	        where, _ := wb.BuildWithPrefix()
//	        sql += " " + where
//	    }
//	    sql += ` GROUP BY raw_artist ORDER BY n DESC LIMIT ? OFFSET ?`
//	    // ...
//	}
//
// Adding custom clauses:
//
//	wb := query.NewWhereBuilder()
//	wb.AddClause("cooldown_until IS NULL OR cooldown_until < current_timestamp")
//
// # Available Filter Methods
//
//   - AddWorkMatched: Filters broadcast_logs by whether work_id has resolved
//   - AddSignatures: Filters by a signature list (IN clause)
//   - AddClause: Adds a custom WHERE clause with parameters
//
// # SQL Injection Prevention
//
// All methods use parameterized queries with ? placeholders:
//
//	// Safe - parameters are properly escaped by the database driver
//	wb.AddSignatures(signatures)  // Generates: "signature IN (?, ?)"
//
//	// The generated SQL is safe regardless of input content
//	// Never concatenate user input directly into SQL strings
//
// # Thread Safety
//
// WhereBuilder instances are not thread-safe. Create a new instance per
// query or protect concurrent access with appropriate synchronization.
//
// # See Also
//
//   - internal/discovery: the callers building filtered queue listings
package query
