// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package audit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/airwave/airwave/internal/logging"
)

// Config holds configuration for the audit logger.
type Config struct {
	// Enabled controls whether audit logging is active.
	Enabled bool `json:"enabled"`

	// LogLevel filters events by minimum severity.
	LogLevel Severity `json:"log_level"`

	// RetentionDays is how long to keep audit logs.
	RetentionDays int `json:"retention_days"`

	// CleanupInterval is how often to run retention cleanup.
	CleanupInterval time.Duration `json:"cleanup_interval"`

	// BufferSize is the size of the async write buffer.
	BufferSize int `json:"buffer_size"`

	// LogToStdout also writes events to stdout.
	LogToStdout bool `json:"log_to_stdout"`

	// IncludeDebug includes debug-level events.
	IncludeDebug bool `json:"include_debug"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		LogLevel:        SeverityInfo,
		RetentionDays:   90,
		CleanupInterval: 24 * time.Hour,
		BufferSize:      1000,
		LogToStdout:     false,
		IncludeDebug:    false,
	}
}

// Logger is the main audit logging service.
type Logger struct {
	config    *Config
	store     Store
	eventChan chan *Event
	mu        sync.RWMutex
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// NewLogger creates a new audit logger.
func NewLogger(store Store, config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}

	l := &Logger{
		config:    config,
		store:     store,
		eventChan: make(chan *Event, config.BufferSize),
		stopChan:  make(chan struct{}),
	}

	// Start async writer
	l.wg.Add(1)
	go l.asyncWriter()

	return l
}

// asyncWriter processes events from the buffer.
func (l *Logger) asyncWriter() {
	defer l.wg.Done()

	for {
		select {
		case <-l.stopChan:
			// Drain remaining events
			for {
				select {
				case event := <-l.eventChan:
					l.writeEvent(event)
				default:
					return
				}
			}
		case event := <-l.eventChan:
			l.writeEvent(event)
		}
	}
}

// writeEvent persists an event to the store.
func (l *Logger) writeEvent(event *Event) {
	l.mu.RLock()
	config := l.config
	l.mu.RUnlock()

	if config.LogToStdout {
		l.logToStdout(event)
	}

	if l.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := l.store.Save(ctx, event); err != nil {
			logging.Error().Err(err).Msg("Failed to save audit event")
		}
	}
}

// logToStdout writes an event to stdout in JSON format.
func (l *Logger) logToStdout(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal audit event")
		return
	}
	logging.Info().RawJSON("event", data).Msg("Audit event")
}

// Log records an audit event.
func (l *Logger) Log(event *Event) {
	l.mu.RLock()
	config := l.config
	l.mu.RUnlock()

	if !config.Enabled {
		return
	}

	// Filter by severity
	if !l.shouldLog(event.Severity, config) {
		return
	}

	// Generate ID if not set
	if event.ID == "" {
		event.ID = generateEventID()
	}

	// Set timestamp if not set
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	// Send to async writer
	select {
	case l.eventChan <- event:
	default:
		logging.Warn().Str("event_id", event.ID).Msg("Audit event buffer full, dropping event")
	}
}

// shouldLog returns true if the event severity meets the minimum level.
func (l *Logger) shouldLog(severity Severity, config *Config) bool {
	if severity == SeverityDebug && !config.IncludeDebug {
		return false
	}

	severityOrder := map[Severity]int{
		SeverityDebug:    0,
		SeverityInfo:     1,
		SeverityWarning:  2,
		SeverityError:    3,
		SeverityCritical: 4,
	}

	return severityOrder[severity] >= severityOrder[config.LogLevel]
}

// Close shuts down the logger gracefully.
func (l *Logger) Close() error {
	close(l.stopChan)
	l.wg.Wait()
	return nil
}

// StartCleanupRoutine starts the retention cleanup routine.
func (l *Logger) StartCleanupRoutine(ctx context.Context) {
	l.mu.RLock()
	interval := l.config.CleanupInterval
	retention := l.config.RetentionDays
	l.mu.RUnlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().AddDate(0, 0, -retention)
				count, err := l.store.Delete(ctx, cutoff)
				if err != nil {
					logging.Error().Err(err).Msg("Audit cleanup error")
				} else if count > 0 {
					logging.Info().Int64("count", count).Msg("Cleaned up old audit events")
				}
			}
		}
	}()
}

// Query retrieves events matching the filter.
func (l *Logger) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	return l.store.Query(ctx, filter)
}

// Count returns the number of events matching the filter.
func (l *Logger) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	return l.store.Count(ctx, filter)
}

// SetEnabled enables or disables audit logging.
func (l *Logger) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.Enabled = enabled
}

// Enabled returns whether audit logging is enabled.
func (l *Logger) Enabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config.Enabled
}

// generateEventID generates a unique event ID.
func generateEventID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return time.Now().Format("20060102150405.000000000")
	}
	return hex.EncodeToString(b)
}

// Helper methods for the identity bridge's operator actions.
//
// Each records, in Metadata, enough of the pre-action state to satisfy
// Undo (Undo then Link returns to the post-Link state).

// LogBridgeLink logs a Link (or Promote) action: a signature is bound to
// a work_id and back-filled BroadcastLogs are counted.
//
//nolint:gocritic // hugeParam: Actor passed by value for API simplicity
func (l *Logger) LogBridgeLink(ctx context.Context, actor Actor, signature string, workID int64, backfilled int64, promoted bool) {
	action := "link"
	if promoted {
		action = "promote"
	}
	l.Log(&Event{
		Type:     EventTypeQueueLink,
		Severity: SeverityInfo,
		Outcome:  OutcomeSuccess,
		Actor:    actor,
		Target: &Target{
			ID:   signature,
			Type: "signature",
		},
		Action:      action,
		Description: "Linked signature to work",
		Metadata: mustJSON(map[string]interface{}{
			"signature":  signature,
			"work_id":    workID,
			"backfilled": backfilled,
			"promoted":   promoted,
		}),
		RequestID: getRequestID(ctx),
	})
}

// LogBridgeRevoke logs revocation of an IdentityBridge. Back-filled logs
// are not reversed; this is recorded only for the audit trail.
//
//nolint:gocritic // hugeParam: Actor passed by value for API simplicity
func (l *Logger) LogBridgeRevoke(ctx context.Context, actor Actor, signature string, workID int64) {
	l.Log(&Event{
		Type:     EventTypeBridgeRevoke,
		Severity: SeverityWarning,
		Outcome:  OutcomeSuccess,
		Actor:    actor,
		Target: &Target{
			ID:   signature,
			Type: "signature",
		},
		Action:      "revoke",
		Description: "Revoked identity bridge",
		Metadata: mustJSON(map[string]interface{}{
			"signature": signature,
			"work_id":   workID,
		}),
		RequestID: getRequestID(ctx),
	})
}

// LogQueueSkip logs a Skip action with its cool-down horizon.
//
//nolint:gocritic // hugeParam: Actor passed by value for API simplicity
func (l *Logger) LogQueueSkip(ctx context.Context, actor Actor, signature string, cooldownUntil time.Time) {
	l.Log(&Event{
		Type:     EventTypeQueueSkip,
		Severity: SeverityInfo,
		Outcome:  OutcomeSuccess,
		Actor:    actor,
		Target: &Target{
			ID:   signature,
			Type: "signature",
		},
		Action:      "skip",
		Description: "Skipped discovery queue item",
		Metadata: mustJSON(map[string]string{
			"signature":      signature,
			"cooldown_until": cooldownUntil.Format(time.RFC3339),
		}),
		RequestID: getRequestID(ctx),
	})
}

// LogArtistAlias logs an Artist alias action and schedules a rematch.
//
//nolint:gocritic // hugeParam: Actor passed by value for API simplicity
func (l *Logger) LogArtistAlias(ctx context.Context, actor Actor, rawName, resolvedName string, rematchTaskID string) {
	l.Log(&Event{
		Type:     EventTypeArtistAlias,
		Severity: SeverityInfo,
		Outcome:  OutcomeSuccess,
		Actor:    actor,
		Target: &Target{
			ID:   rawName,
			Type: "artist_alias",
		},
		Action:      "alias",
		Description: "Aliased artist " + rawName + " to " + resolvedName,
		Metadata: mustJSON(map[string]string{
			"raw_name":      rawName,
			"resolved_name": resolvedName,
			"rematch_task":  rematchTaskID,
		}),
		RequestID: getRequestID(ctx),
	})
}

// LogBulkLink logs a Bulk link action over a set of signatures.
//
//nolint:gocritic // hugeParam: Actor passed by value for API simplicity
func (l *Logger) LogBulkLink(ctx context.Context, actor Actor, signatures []string) {
	l.Log(&Event{
		Type:        EventTypeQueueBulkLink,
		Severity:    SeverityInfo,
		Outcome:     OutcomeSuccess,
		Actor:       actor,
		Action:      "bulk_link",
		Description: "Bulk-linked discovery queue items",
		Metadata: mustJSON(map[string]interface{}{
			"signatures": signatures,
			"count":      len(signatures),
		}),
		RequestID: getRequestID(ctx),
	})
}

// LogMerge logs a merge_artists or merge_works library-admin action.
//
//nolint:gocritic // hugeParam: Actor passed by value for API simplicity
func (l *Logger) LogMerge(ctx context.Context, actor Actor, kind EventType, sourceID, targetID int64) {
	l.Log(&Event{
		Type:     kind,
		Severity: SeverityWarning,
		Outcome:  OutcomeSuccess,
		Actor:    actor,
		Target: &Target{
			ID:   fmt.Sprintf("%d", targetID),
			Type: "merge_target",
		},
		Action:      "merge",
		Description: "Merged entity",
		Metadata: mustJSON(map[string]int64{
			"source_id": sourceID,
			"target_id": targetID,
		}),
		RequestID: getRequestID(ctx),
	})
}

// LogThresholdsChanged logs a set_thresholds control-plane action.
//
//nolint:gocritic // hugeParam: Actor passed by value for API simplicity
func (l *Logger) LogThresholdsChanged(ctx context.Context, actor Actor, old, updated map[string]float64) {
	l.Log(&Event{
		Type:        EventTypeThresholdsChanged,
		Severity:    SeverityWarning,
		Outcome:     OutcomeSuccess,
		Actor:       actor,
		Action:      "update",
		Description: "Matcher thresholds changed",
		Metadata: mustJSON(map[string]interface{}{
			"old": old,
			"new": updated,
		}),
		RequestID: getRequestID(ctx),
	})
}

// LogUndo logs an Undo of a prior operator action.
//
//nolint:gocritic // hugeParam: Actor passed by value for API simplicity
func (l *Logger) LogUndo(ctx context.Context, actor Actor, originalAuditID string) {
	l.Log(&Event{
		Type:     EventTypeUndo,
		Severity: SeverityWarning,
		Outcome:  OutcomeSuccess,
		Actor:    actor,
		Target: &Target{
			ID:   originalAuditID,
			Type: "audit_event",
		},
		Action:        "undo",
		Description:   "Reversed a prior operator action",
		CorrelationID: originalAuditID,
		RequestID:     getRequestID(ctx),
	})
}

// LogConfigChange logs a configuration change.
//
//nolint:gocritic // hugeParam: Actor passed by value for API simplicity
func (l *Logger) LogConfigChange(ctx context.Context, actor Actor, source Source, configKey, oldValue, newValue string) {
	l.Log(&Event{
		Type:     EventTypeConfigChanged,
		Severity: SeverityWarning,
		Outcome:  OutcomeSuccess,
		Actor:    actor,
		Source:   source,
		Action:   "update",
		Target: &Target{
			ID:   configKey,
			Type: "config",
		},
		Description: "Configuration changed: " + configKey,
		Metadata: mustJSON(map[string]string{
			"key":       configKey,
			"old_value": oldValue,
			"new_value": newValue,
		}),
		RequestID: getRequestID(ctx),
	})
}

// mustJSON converts a value to JSON, returning empty object on error.
func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}

// getRequestID extracts the request ID from context.
func getRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		return reqID
	}
	return ""
}

// Context keys
type contextKey string

// RequestIDKey is the context key for request ID.
const RequestIDKey contextKey = "request_id"

// SourceFromRequest creates a Source from an HTTP request.
func SourceFromRequest(r *http.Request) Source {
	ip := r.RemoteAddr
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip = xff
	} else if xri := r.Header.Get("X-Real-IP"); xri != "" {
		ip = xri
	}

	return Source{
		IPAddress: ip,
		UserAgent: r.UserAgent(),
		Hostname:  r.Host,
	}
}

// ActorFromUser creates an Actor from user information.
func ActorFromUser(id, name string, roles []string, authMethod, sessionID string) Actor {
	return Actor{
		ID:         id,
		Type:       "user",
		Name:       name,
		Roles:      roles,
		AuthMethod: authMethod,
		SessionID:  sessionID,
	}
}

// SystemActor returns an Actor representing the system.
func SystemActor() Actor {
	return Actor{
		ID:   "system",
		Type: "system",
		Name: "airwave",
	}
}
