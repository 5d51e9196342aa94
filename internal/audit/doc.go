// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audit provides the operator-action audit trail for compliance
// and undo.
//
// This package records the Identity Bridge and Discovery Queue operator
// actions: Link, Promote, Skip, Artist alias, Bulk link, Revoke, and the
// library-admin merges, with enough metadata to satisfy an Undo within
// the retention window.
//
// # Overview
//
// The audit system provides:
//   - Structured event logging with typed event categories
//   - DuckDB persistence for durable audit trail storage
//   - Asynchronous buffered writes for minimal latency impact
//   - Automatic retention policy enforcement with configurable cleanup
//   - SIEM integration via Common Event Format (CEF) export
//   - Flexible querying with multi-dimensional filters
//
// # Event Types
//
// Identity Bridge Events:
//   - bridge.link / bridge.revoke
//
// Discovery Queue Events:
//   - queue.link, queue.promote, queue.skip, queue.bulk_link
//   - artist.alias
//
// Library Admin Events:
//   - library.merge_artists, library.merge_works
//
// Matching and Job Events:
//   - matcher.thresholds_changed
//   - job.completed, job.failed, job.cancelled
//
// Configuration Events:
//   - config.changed
//   - audit.undo
//
// # Architecture
//
// The audit system uses a producer-consumer pattern:
//
//	Logger.Log() -> Event Buffer (chan) -> Async Writer -> Store
//	                     |                      |
//	                 Non-blocking           Background goroutine
//
// Events are buffered in a channel to avoid blocking the caller. A background
// goroutine drains the buffer and persists events to the store.
//
// # Usage Example
//
// Basic audit logging:
//
//	// Initialize store and logger
//	store := audit.NewDuckDBStore(db.Conn())
//	logger := audit.NewLogger(store, audit.DefaultConfig())
//	defer logger.Close()
//
//	// Log a Link action
//	logger.LogBridgeLink(ctx, audit.Actor{
//	    ID:   operatorID,
//	    Type: "user",
//	    Name: operatorName,
//	}, signature, workID, backfilled, false)
//
//	// Log a Skip action
//	logger.LogQueueSkip(ctx, actor, signature, cooldownUntil)
//
// Querying audit logs:
//
//	filter := audit.QueryFilter{
//	    Types:      []audit.EventType{audit.EventTypeQueueLink},
//	    StartTime:  &startTime,
//	    EndTime:    &endTime,
//	    ActorID:    "operator123",
//	    Limit:      100,
//	    OrderDesc:  true,
//	}
//	events, err := logger.Query(ctx, filter)
//
// # Configuration
//
// The logger supports the following configuration options:
//
//	cfg := audit.Config{
//	    Enabled:         true,           // Enable audit logging
//	    LogLevel:        audit.SeverityInfo, // Minimum severity level
//	    RetentionDays:   90,             // Keep logs for JOB_RETAIN_AUDIT_DAYS
//	    CleanupInterval: 24 * time.Hour, // Run cleanup daily
//	    BufferSize:      1000,           // Event buffer size
//	    LogToStdout:     false,          // Also log to stdout
//	    IncludeDebug:    false,          // Include debug events
//	}
//
// # SIEM Integration
//
// Export events in Common Event Format (CEF) for SIEM integration:
//
//	exporter := audit.NewCEFExporter()
//	events, _ := logger.Query(ctx, filter)
//	cefData, _ := exporter.Export(events)
//
// # Retention Policy
//
// Automatic retention cleanup runs at the configured interval, bounding
// the JOB_RETAIN_AUDIT_DAYS undo window:
//
//	logger.StartCleanupRoutine(ctx)
//	// Events older than RetentionDays are automatically deleted
//
// # Thread Safety
//
// All exported functions are safe for concurrent use:
//   - Logger uses buffered channel for non-blocking writes
//   - Store implementations use appropriate synchronization
//   - Query operations use read locks for concurrent access
//
// # See Also
//
//   - internal/bridge: Identity Bridge link/revoke source of these events
//   - internal/discovery: Discovery Queue operator-action source
package audit
