// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the reconciliation pipeline: database query
// performance (DuckDB), the library scanner, the matcher's category
// outcomes, the job controller, the discovery queue, the identity
// bridge, the resolver cache, and the vector index's circuit breaker.

var (
	// Database Metrics

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	DBConnectionPoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "duckdb_connection_pool_size",
			Help: "Current number of database connections in use",
		},
	)

	// Scanner Metrics

	ScanFilesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scan_files_processed_total",
			Help: "Total number of library files processed by a walk, by outcome",
		},
		[]string{"outcome"}, // "new", "moved", "unchanged", "skipped", "corrupt"
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scan_duration_seconds",
			Help:    "Duration of a full library walk in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 300, 900, 1800, 3600},
		},
	)

	ScanFilesGarbageCollected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scan_files_garbage_collected_total",
			Help: "Total number of library_files rows removed because their path was not observed during a walk",
		},
	)

	ScanLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scan_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful library walk",
		},
	)

	// Matcher Metrics

	MatchesByCategory = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matcher_matches_total",
			Help: "Total number of broadcast log entries resolved, by match category",
		},
		[]string{"category"}, // "exact", "variant", "bridge", "vector", "review", "none"
	)

	MatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matcher_match_duration_seconds",
			Help:    "Duration of a single signature match attempt across all strategies",
			Buckets: prometheus.DefBuckets,
		},
	)

	VectorSearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vector_index_search_duration_seconds",
			Help:    "Duration of a vector index search_batch call",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Job Controller Metrics

	JobsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_started_total",
			Help: "Total number of jobs started, by job kind",
		},
		[]string{"kind"}, // "scan", "import", "discovery", "rematch", "backfill"
	)

	JobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_completed_total",
			Help: "Total number of jobs completed, by job kind and terminal status",
		},
		[]string{"kind", "status"}, // status: "succeeded", "failed", "cancelled"
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "job_duration_seconds",
			Help:    "Duration of a job from start to terminal status",
			Buckets: []float64{1, 5, 15, 30, 60, 300, 900, 1800, 3600, 7200},
		},
		[]string{"kind"},
	)

	JobsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jobs_active",
			Help: "Current number of jobs running concurrently",
		},
	)

	JobRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_retries_total",
			Help: "Total number of job retry attempts after a transient failure, by job kind",
		},
		[]string{"kind"},
	)

	// Discovery Queue Metrics

	DiscoveryQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "discovery_queue_depth",
			Help: "Current number of unresolved signatures waiting in the discovery queue",
		},
	)

	DiscoveryItemsAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "discovery_items_added_total",
			Help: "Total number of new signatures added to the discovery queue",
		},
	)

	DiscoveryOperatorActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_operator_actions_total",
			Help: "Total number of operator actions taken on discovery queue items",
		},
		[]string{"action"}, // "link", "promote", "skip", "bulk_link"
	)

	// Identity Bridge Metrics

	BridgeLinks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_links_total",
			Help: "Total number of signature-to-Work links created",
		},
	)

	BridgeRevokes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_revokes_total",
			Help: "Total number of signature-to-Work links revoked",
		},
	)

	BridgeBackfillRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bridge_backfill_rows",
			Help:    "Number of BroadcastLog rows backfilled by a single Link call",
			Buckets: []float64{0, 1, 5, 25, 100, 500, 2000, 10000},
		},
	)

	// Resolver Metrics

	ResolverCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resolver_cache_hits_total",
			Help: "Total number of resolver lookups served from cache",
		},
	)

	ResolverCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resolver_cache_misses_total",
			Help: "Total number of resolver lookups that missed cache and queried the policy tables",
		},
	)

	ResolverDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resolver_resolve_duration_seconds",
			Help:    "Duration of a single Resolve call",
			Buckets: prometheus.DefBuckets,
		},
	)

	// General Cache Metrics

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_size",
			Help: "Current number of entries in cache",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions",
		},
		[]string{"cache_type"},
	)

	// Circuit Breaker Metrics (vector index, and any future outbound dependency)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through the circuit breaker, by outcome",
		},
		[]string{"name", "outcome"}, // "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current count of consecutive failures observed by the circuit breaker",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Audit Metrics

	AuditEventsLogged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_events_logged_total",
			Help: "Total number of audit events logged, by event type",
		},
		[]string{"event_type"},
	)

	AuditBufferDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "audit_buffer_depth",
			Help: "Current number of buffered audit events awaiting persistence",
		},
	)

	AuditEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_events_dropped_total",
			Help: "Total number of audit events dropped because the buffer was full",
		},
	)

	// Application Metrics

	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build info",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records the duration and, on error, the error-type-labeled
// count of a single DuckDB query.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table, classifyDBError(err)).Inc()
	}
}

func classifyDBError(err error) string {
	msg := err.Error()
	if len(msg) > 50 {
		msg = msg[:50]
	}
	return msg
}

// RecordScanOutcome increments the scanner's per-file outcome counter.
func RecordScanOutcome(outcome string) {
	ScanFilesProcessed.WithLabelValues(outcome).Inc()
}

// RecordScanComplete records a full walk's duration and bumps the
// last-success gauge to now (caller supplies the timestamp so the
// package stays free of direct time.Now() calls in hot paths under test).
func RecordScanComplete(duration time.Duration, nowUnix int64) {
	ScanDuration.Observe(duration.Seconds())
	ScanLastSuccess.Set(float64(nowUnix))
}

// RecordMatch records a match attempt's category outcome and duration.
func RecordMatch(category string, duration time.Duration) {
	MatchesByCategory.WithLabelValues(category).Inc()
	MatchDuration.Observe(duration.Seconds())
}

// RecordJobStart increments the started counter and the active gauge for
// a job of the given kind.
func RecordJobStart(kind string) {
	JobsStarted.WithLabelValues(kind).Inc()
	JobsActive.Inc()
}

// RecordJobComplete decrements the active gauge and records the
// terminal status and duration for a job of the given kind.
func RecordJobComplete(kind, status string, duration time.Duration) {
	JobsActive.Dec()
	JobsCompleted.WithLabelValues(kind, status).Inc()
	JobDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordResolve records whether a Resolve call hit or missed the
// resolver's cache, and its duration.
func RecordResolve(hit bool, duration time.Duration) {
	if hit {
		ResolverCacheHits.Inc()
	} else {
		ResolverCacheMisses.Inc()
	}
	ResolverDuration.Observe(duration.Seconds())
}

// circuitStateValue maps a breaker state name to the numeric gauge value
// used by CircuitBreakerState ("closed"=0, "half-open"=1, "open"=2).
func circuitStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// RecordCircuitBreakerTransition updates the breaker's state gauge and
// increments its transition counter.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerState.WithLabelValues(name).Set(circuitStateValue(to))
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

// contains reports whether substr occurs within s as a prefix match,
// mirroring the cheap classification idiom used elsewhere in this package
// to avoid a dependency on strings.Contains semantics when only a prefix
// check is wanted. Kept for compatibility with existing callers that test
// error-message prefixes.
func contains(s, substr string) bool {
	if len(substr) > len(s) {
		return false
	}
	return s[:len(substr)] == substr
}
