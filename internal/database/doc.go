// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package database wraps the DuckDB connection shared by the library
// knowledge base, the identity bridge, the discovery queue, and the
// resolver.
//
// # Overview
//
// DB owns a single *sql.DB connection, initializes the schema on open,
// and exposes the connection directly (via Conn) for the data-access
// packages to build their own queries against rather than wrapping
// every statement behind a generic CRUD interface.
//
// # Architecture
//
// The package is organized into a few focused files:
//
//   - database.go: connection lifecycle (New, Close, Ping, Checkpoint)
//     and the per-Artist write lock (LockArtist)
//   - database_connection.go: connection pool configuration and DuckDB
//     driver error classification (IsTransientError)
//   - database_schema.go: table creation and index management
//   - migrations.go: versioned schema migrations applied after initial
//     table creation
//   - errors.go: resource-cleanup helpers used throughout the package
//   - query/: a small SQL WHERE-clause builder used by the discovery
//     queue's filtered listings
//
// # Database Technology
//
// The package uses DuckDB as its embedded store:
//   - A single-process, single-writer engine well suited to Airwave's
//     per-artist write serialization model
//   - CGO-based driver (github.com/duckdb/duckdb-go/v2)
//   - RETURNING clauses on INSERT for id allocation without a
//     separate round trip
//
// # Usage
//
//	db, err := database.New(&cfg.Database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	kb := library.New(db, library.DefaultConfig())
//
// Writes that touch a given Artist's Works, Recordings, or Files are
// serialized through LockArtist so concurrent scanner workers never
// race on the same artist's rows:
//
//	lock := db.LockArtist(artistID)
//	lock.Lock()
//	defer lock.Unlock()
//
// # Concurrency
//
// All exported DB methods are safe for concurrent use. DuckDB's own
// connection pool handles concurrent reads; writes are additionally
// serialized per-Artist by the caller via LockArtist.
//
// # Error Handling
//
// Errors are wrapped with context using fmt.Errorf and %w, and
// classified into the internal/apperr sentinel kinds by the caller
// (typically internal/library) rather than by this package directly.
// IsTransientError identifies DuckDB failures likely to succeed on
// retry — a dropped connection, a transaction conflict from concurrent
// writers, or an internal engine error — so callers can wrap them with
// apperr.ErrTransient for the job controller's retry policy.
//
// # Package Dependencies
//
// Internal dependencies:
//   - internal/config: DatabaseConfig used by New
//   - internal/logging: structured logging during initialization and close
//
// External dependencies:
//   - github.com/duckdb/duckdb-go/v2: DuckDB driver (CGO-based)
//
// # See Also
//
//   - internal/library: the primary caller, building Work/Recording/File
//     upserts against the connection this package provides
//   - internal/database/query: the WHERE-clause builder used by the
//     discovery queue
package database
