// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package resolver

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/airwave/airwave/internal/cache"
	"github.com/airwave/airwave/internal/database"
)

// DefaultCacheTTL is how long a resolved (work_id, station_id, format_code)
// answer is trusted before it is re-derived from the KB.
const DefaultCacheTTL = 30 * time.Second

// DefaultCacheCapacity bounds the number of distinct resolve keys cached
// at once.
const DefaultCacheCapacity = 50000

// Resolver implements priority cascade over a short-TTL cache.
type Resolver struct {
	db    *database.DB
	cache *cache.LRUCache
}

// New creates a Resolver backed by db, with its own short-TTL cache.
func New(db *database.DB) *Resolver {
	return &Resolver{
		db:    db,
		cache: cache.NewLRUCache(DefaultCacheCapacity, DefaultCacheTTL),
	}
}

func cacheKey(workID, stationID int64, formatCode string) string {
	return fmt.Sprintf("%d|%d|%s", workID, stationID, formatCode)
}

// Resolve returns the Recording id to play for workID on the given
// station/format, following Station > Format > Default > Any
// cascade, skipping Recordings with no LibraryFile at every level.
// Returns (nil, nil) if no Recording of the Work has a file.
func (r *Resolver) Resolve(ctx context.Context, workID int64, stationID *int64, formatCode *string) (*int64, error) {
	var sid int64
	if stationID != nil {
		sid = *stationID
	}
	var fc string
	if formatCode != nil {
		fc = *formatCode
	}

	key := cacheKey(workID, sid, fc)
	if cached, ok := r.cache.Get(key); ok {
		id, _ := cached.(int64)
		if id == 0 {
			return nil, nil
		}
		return &id, nil
	}

	recordingID, err := r.resolveUncached(ctx, workID, stationID, formatCode)
	if err != nil {
		return nil, err
	}
	if recordingID == nil {
		r.cache.Add(key, int64(0))
		return nil, nil
	}
	r.cache.Add(key, *recordingID)
	return recordingID, nil
}

func (r *Resolver) resolveUncached(ctx context.Context, workID int64, stationID *int64, formatCode *string) (*int64, error) {
	conn := r.db.Conn()

	if stationID != nil {
		id, err := stationPreference(ctx, conn, *stationID, workID)
		if err != nil {
			return nil, err
		}
		if id != nil {
			return id, nil
		}
	}

	if formatCode != nil {
		id, err := formatPreference(ctx, conn, *formatCode, workID)
		if err != nil {
			return nil, err
		}
		if id != nil {
			return id, nil
		}
	}

	id, err := workDefaultRecording(ctx, conn, workID)
	if err != nil {
		return nil, err
	}
	if id != nil {
		return id, nil
	}

	return anyFiledRecording(ctx, conn, workID)
}

func stationPreference(ctx context.Context, conn *sql.DB, stationID, workID int64) (*int64, error) {
	var id int64
	err := conn.QueryRowContext(ctx,
		`SELECT sp.recording_id FROM station_preferences sp
		 WHERE sp.station_id = ? AND sp.work_id = ?
		   AND EXISTS (SELECT 1 FROM library_files lf WHERE lf.recording_id = sp.recording_id)
		 ORDER BY sp.priority ASC LIMIT 1`,
		stationID, workID).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve: station_preference: %w", err)
	}
	return &id, nil
}

func formatPreference(ctx context.Context, conn *sql.DB, formatCode string, workID int64) (*int64, error) {
	rows, err := conn.QueryContext(ctx,
		`SELECT fp.recording_id, fp.exclude_tags, r.version_type
		 FROM format_preferences fp
		 JOIN recordings r ON r.id = fp.recording_id
		 WHERE fp.format_code = ? AND fp.work_id = ?
		   AND EXISTS (SELECT 1 FROM library_files lf WHERE lf.recording_id = fp.recording_id)`,
		formatCode, workID)
	if err != nil {
		return nil, fmt.Errorf("resolve: format_preference: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var excludeTags, versionType string
		if err := rows.Scan(&id, &excludeTags, &versionType); err != nil {
			return nil, fmt.Errorf("resolve: format_preference: scan: %w", err)
		}
		if tagsIntersect(versionType, excludeTags) {
			continue
		}
		return &id, nil
	}
	return nil, rows.Err()
}

// tagsIntersect reports whether any tag in a Recording's " / "-joined
// version_type appears in a comma-separated exclude_tags list.
func tagsIntersect(versionType, excludeTags string) bool {
	if excludeTags == "" {
		return false
	}
	excluded := make(map[string]bool)
	for _, t := range strings.Split(excludeTags, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			excluded[strings.ToLower(t)] = true
		}
	}
	for _, t := range strings.Split(versionType, "/") {
		t = strings.TrimSpace(t)
		if excluded[strings.ToLower(t)] {
			return true
		}
	}
	return false
}

func workDefaultRecording(ctx context.Context, conn *sql.DB, workID int64) (*int64, error) {
	var id int64
	err := conn.QueryRowContext(ctx,
		`SELECT wdr.recording_id FROM work_default_recordings wdr
		 WHERE wdr.work_id = ?
		   AND EXISTS (SELECT 1 FROM library_files lf WHERE lf.recording_id = wdr.recording_id)`,
		workID).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve: work_default_recording: %w", err)
	}
	return &id, nil
}

func anyFiledRecording(ctx context.Context, conn *sql.DB, workID int64) (*int64, error) {
	var id int64
	err := conn.QueryRowContext(ctx,
		`SELECT r.id FROM recordings r
		 WHERE r.work_id = ?
		   AND EXISTS (SELECT 1 FROM library_files lf WHERE lf.recording_id = r.id)
		 ORDER BY r.id ASC LIMIT 1`,
		workID).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve: any_filed_recording: %w", err)
	}
	return &id, nil
}

// Invalidate drops the entire resolve cache. Called whenever a file,
// StationPreference, FormatPreference, or WorkDefaultRecording changes;
// the cascade is cheap enough that a full clear is simpler than tracking
// per-work dependencies and the cache is bounded by a short TTL anyway.
func (r *Resolver) Invalidate() {
	r.cache.Clear()
}
