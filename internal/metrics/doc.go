// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package implements application instrumentation using the Prometheus
client library, exposing metrics for the reconciliation pipeline's
throughput, match quality, and error rates.

# Overview

The package provides metrics for:
  - Database query performance (DuckDB)
  - Library scan throughput and outcomes
  - Matcher category outcomes and latency
  - Job controller lifecycle (scan, discovery, rematch, backfill)
  - Discovery queue depth and operator actions
  - Identity bridge link/revoke counts
  - Resolver cache hit rate
  - Vector index circuit breaker state
  - Audit event volume

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:3857/metrics

# Available Metrics

Database Metrics:
  - duckdb_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - duckdb_query_errors_total: Failed queries (counter)
    Labels: operation, table, error_type
  - duckdb_connection_pool_size: Active connections (gauge)

Scanner Metrics:
  - scan_files_processed_total: Files processed per walk (counter)
    Labels: outcome (new, moved, unchanged, skipped, corrupt)
  - scan_duration_seconds: Full walk duration (histogram)
  - scan_files_garbage_collected_total: Rows removed for missing paths (counter)
  - scan_last_success_timestamp_seconds: Unix timestamp of last successful walk (gauge)

Matcher Metrics:
  - matcher_matches_total: Match outcomes (counter)
    Labels: category (exact, variant, bridge, vector, review, none)
  - matcher_match_duration_seconds: Per-signature match latency (histogram)
  - vector_index_search_duration_seconds: search_batch latency (histogram)

Job Controller Metrics:
  - jobs_started_total: Jobs started (counter)
    Labels: kind (scan, import, discovery, rematch, backfill)
  - jobs_completed_total: Jobs reaching a terminal status (counter)
    Labels: kind, status (succeeded, failed, cancelled)
  - job_duration_seconds: Start-to-terminal duration (histogram)
    Labels: kind
  - jobs_active: Currently running jobs (gauge)
  - job_retries_total: Retry attempts after a transient failure (counter)
    Labels: kind

Discovery Queue Metrics:
  - discovery_queue_depth: Unresolved signatures waiting (gauge)
  - discovery_items_added_total: New signatures queued (counter)
  - discovery_operator_actions_total: Operator actions (counter)
    Labels: action (link, promote, skip, bulk_link)

Identity Bridge Metrics:
  - bridge_links_total: Links created (counter)
  - bridge_revokes_total: Links revoked (counter)
  - bridge_backfill_rows: BroadcastLog rows backfilled per Link call (histogram)

Resolver Metrics:
  - resolver_cache_hits_total / resolver_cache_misses_total: Cache effectiveness (counters)
  - resolver_resolve_duration_seconds: Per-call latency (histogram)

Circuit Breaker Metrics:
  - circuit_breaker_state: Current state (gauge)
    Labels: name
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: Outcomes (counter)
    Labels: name, outcome (success, failure, rejected)
  - circuit_breaker_consecutive_failures: Running failure streak (gauge)
    Labels: name
  - circuit_breaker_transitions_total: State transitions (counter)
    Labels: name, from, to

Cache Metrics:
  - cache_hits_total / cache_misses_total: Counters
    Labels: cache_type
  - cache_size: Current entries (gauge)
    Labels: cache_type
  - cache_evictions_total: Evictions (counter)
    Labels: cache_type

Audit Metrics:
  - audit_events_logged_total: Events persisted (counter)
    Labels: event_type
  - audit_buffer_depth: Buffered events awaiting persistence (gauge)
  - audit_events_dropped_total: Events dropped on a full buffer (counter)

Application Metrics:
  - app_info: Version and build info (gauge)
    Labels: version, go_version
  - app_uptime_seconds: Process uptime (gauge)

# Usage Example

Basic setup in main.go:

	import (
	    "github.com/airwave/airwave/internal/metrics"
	    "github.com/prometheus/client_golang/prometheus/promhttp"
	)

	func main() {
	    http.Handle("/metrics", promhttp.Handler())

	    metrics.RecordDBQuery("SELECT", "broadcast_logs", duration, err)
	    metrics.RecordMatch("exact", duration)
	    metrics.RecordJobStart("discovery")
	}

Recording a scanner walk:

	start := time.Now()
	err := sc.Walk(ctx)
	metrics.RecordScanComplete(time.Since(start), time.Now().Unix())

Recording a job's lifecycle:

	metrics.RecordJobStart("rematch")
	err := runRematch(ctx)
	status := "succeeded"
	if err != nil {
	    status = "failed"
	}
	metrics.RecordJobComplete("rematch", status, time.Since(start))

# Prometheus Configuration

Example prometheus.yml configuration:

	scrape_configs:
	  - job_name: 'airwave'
	    static_configs:
	      - targets: ['localhost:3857']
	    metrics_path: '/metrics'
	    scrape_interval: 15s

# Grafana Dashboards

The metrics support dashboards with panels for:

  - Match rate by category (exact/variant/bridge/vector/review/none)
  - Job throughput and failure rate by kind
  - Discovery queue depth over time
  - Resolver cache hit rate
  - Circuit breaker state visualization

Example PromQL queries:

	# Match category breakdown
	sum(rate(matcher_matches_total[5m])) by (category)

	# Job p95 duration by kind
	histogram_quantile(0.95, rate(job_duration_seconds_bucket[15m]))

	# Resolver cache hit rate
	sum(rate(resolver_cache_hits_total[5m])) / (sum(rate(resolver_cache_hits_total[5m])) + sum(rate(resolver_cache_misses_total[5m])))

	# Discovery queue growth
	delta(discovery_queue_depth[1h])

# Alerting Rules

Example Prometheus alerting rules:

	groups:
	  - name: airwave
	    rules:
	      - alert: HighUnmatchedRate
	        expr: |
	          sum(rate(matcher_matches_total{category="none"}[15m]))
	          /
	          sum(rate(matcher_matches_total[15m]))
	          > 0.3
	        for: 15m
	        annotations:
	          summary: "Unmatched broadcast rate above 30%: {{ $value }}"

	      - alert: DiscoveryQueueGrowing
	        expr: delta(discovery_queue_depth[6h]) > 1000
	        for: 1h
	        annotations:
	          summary: "Discovery queue grew by {{ $value }} in 6h"

	      - alert: VectorIndexCircuitOpen
	        expr: circuit_breaker_state{name="vector-index"} == 2
	        for: 2m
	        annotations:
	          summary: "Vector index circuit breaker open"

# Cardinality Management

To prevent high cardinality issues:
  - Match categories, job kinds, and job statuses are fixed label sets
  - Error-type labels are truncated to 50 characters
  - No per-signature or per-Work labels are ever attached to a metric

# Thread Safety

All metric recording functions are safe for concurrent use from multiple
goroutines; the Prometheus client library handles synchronization
internally.

# Current Recording

cmd/server sets app_info and app_uptime_seconds. The other collectors
above are registered and exported at /metrics, but no other package in
this repository calls the Record* helpers or updates them, so they stay at
their zero values.
*/
package metrics
