// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package cache provides the short-TTL LRU cache backing the resolver's
priority-cascade lookups.

# Overview

The resolver (internal/resolver) answers "which Recording should play
for this Work, on this Station, in this Format" by walking a priority
cascade (Station > Format > Default > Any) over rows that rarely
change between scans. Re-running that cascade on every broadcast log
line would mean repeated joins across station_preferences,
format_preferences, and work_default_recordings for the same handful
of popular Works. LRUCache exists to make that cascade pay its cost
once per (work, station, format) key for the span of a TTL, not once
per broadcast log line.

# LRUCache

LRUCache is a thread-safe, fixed-capacity cache with lazy TTL
expiration:

  - O(1) Get, Add, and Remove via a hashmap plus a doubly-linked list
  - Capacity-based eviction of the least recently used entry
  - Entries expire on next access rather than via a background sweep;
    CleanupExpired is available for callers that want to reclaim
    memory from entries that are never looked up again
  - IsDuplicate for set-style dedup use (record a key, get back
    whether it had already been seen within the TTL window)

# Usage

The resolver is the only caller. It keys the cache on the tuple of
Work ID, Station ID, and Format, and stores the resolved Recording ID
as the value:

	c := cache.NewLRUCache(10000, 30*time.Second)
	if v, ok := c.Get(key); ok {
	    return v.(int64), nil
	}
	... resolve uncached, then ...
	c.Add(key, recordingID)

A full Invalidate (Clear) is used instead of targeted eviction: any
write that can change a cascade's outcome (a new library file landing
on a Work, a preference row changing) invalidates the whole cache
rather than tracking which keys it could have affected.

# Thread Safety

All LRUCache methods are safe for concurrent use from multiple
goroutines; a single sync.RWMutex guards both the map and the list.

# See Also

  - internal/resolver: the only caller, and the source of the cache's
    sizing and TTL defaults
*/
package cache
