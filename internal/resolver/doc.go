// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package resolver chooses the Recording to play for a Work given an
// optional station and format code.
//
// Resolve is a pure function of the KB snapshot: StationPreference beats
// FormatPreference beats WorkDefaultRecording beats any fileless-skipping
// Recording of the Work, in that order, skipping any candidate that has
// no LibraryFile. Results are cached with a short TTL keyed by
// (work_id, station_id, format_code); callers invalidate the cache when
// a file or preference row changes.
package resolver
