// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package models

import "time"

// Artist is a stable, named entity in the library knowledge base. Created by
// the scanner on first sighting; never deleted implicitly — only merged.
type Artist struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"` // normalized
	DisplayName string `json:"display_name,omitempty"`
	ExternalID  string `json:"external_id,omitempty"`
}

// Work is the identity layer of the three-level hierarchy. Title is
// normalized; (Title, PrimaryArtistID) is the exact-match key.
type Work struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	PrimaryArtistID int64  `json:"primary_artist_id"`
	IsInstrumental  bool   `json:"is_instrumental"`
}

// WorkArtist associates an additional (non-primary) artist with a Work,
// preserving the order the raw collaboration string was split in.
type WorkArtist struct {
	WorkID   int64 `json:"work_id"`
	ArtistID int64 `json:"artist_id"`
	Position int   `json:"position"`
}

// VersionType tags drawn from extract_version vocabulary.
const (
	VersionOriginal  = "Original"
	VersionLive      = "Live"
	VersionRemix     = "Remix"
	VersionRadioEdit = "Radio Edit"
	VersionExtended  = "Extended"
	VersionAcoustic  = "Acoustic"
	VersionDemo      = "Demo"
	VersionUnplugged = "Unplugged"
	VersionSession   = "Session"
	VersionEdit      = "Edit"
)

// Recording is one performed version of a Work. Within a Work,
// (Title, VersionType) is unique.
type Recording struct {
	ID              int64     `json:"id"`
	WorkID          int64     `json:"work_id"`
	Title           string    `json:"title"`
	VersionType     string    `json:"version_type"` // " / "-joined tag set
	DurationSeconds *float64  `json:"duration_seconds,omitempty"`
	ExternalID      string    `json:"external_id,omitempty"`
	IsVerified      bool      `json:"is_verified"`
	CreatedAt       time.Time `json:"created_at"`
}

// LibraryFile is a concrete audio file tied to exactly one Recording.
type LibraryFile struct {
	ID          int64     `json:"id"`
	RecordingID int64     `json:"recording_id"`
	Path        string    `json:"path"`
	ContentHash string    `json:"content_hash"`
	SizeBytes   int64     `json:"size_bytes"`
	MTime       time.Time `json:"mtime"`
}

// Station identifies a broadcast log source. Managed externally; Airwave
// only stores the id/name pair it needs for resolver policy lookups.
type Station struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BroadcastLog is one raw play-event. Immutable except for WorkID/MatchReason,
// which move from NULL to set when the play is matched or backfilled, and
// back to NULL when the bridge link that backfilled them is undone.
type BroadcastLog struct {
	ID          int64     `json:"id"`
	StationID   int64     `json:"station_id"`
	PlayedAt    time.Time `json:"played_at"`
	RawArtist   string    `json:"raw_artist"`
	RawTitle    string    `json:"raw_title"`
	Signature   string    `json:"signature"`
	WorkID      *int64    `json:"work_id,omitempty"`
	MatchReason string    `json:"match_reason,omitempty"`
}

// DiscoveryQueueItem aggregates unmatched/review-grade plays by signature.
type DiscoveryQueueItem struct {
	Signature          string     `json:"signature"`
	RawArtist          string     `json:"raw_artist"`
	RawTitle           string     `json:"raw_title"`
	Count              int64      `json:"count"`
	SuggestedWorkID    *int64     `json:"suggested_work_id,omitempty"`
	BestArtistSim      *float64   `json:"best_artist_sim,omitempty"`
	BestTitleSim       *float64   `json:"best_title_sim,omitempty"`
	BestVectorDistance *float64   `json:"best_vector_distance,omitempty"`
	CooldownUntil      *time.Time `json:"cooldown_until,omitempty"`
}

// IdentityBridge is the verified, persistent signature -> work mapping.
type IdentityBridge struct {
	Signature       string    `json:"signature"`
	ReferenceArtist string    `json:"reference_artist"`
	ReferenceTitle  string    `json:"reference_title"`
	WorkID          int64     `json:"work_id"`
	Confidence      float64   `json:"confidence"`
	IsRevoked       bool      `json:"is_revoked"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ArtistAlias canonicalizes a raw artist name before signature generation.
type ArtistAlias struct {
	RawName      string `json:"raw_name"`
	ResolvedName string `json:"resolved_name"`
	IsVerified   bool   `json:"is_verified"`
}

// ProposedSplit is a heuristic hypothesis that raw_artist denotes a list of
// distinct artists. Lifecycle: proposed -> confirmed | rejected | edited.
type ProposedSplit struct {
	ID             int64    `json:"id"`
	RawArtist      string   `json:"raw_artist"`
	ProposedNames  []string `json:"proposed_names"`
	Status         string   `json:"status"`
}

// Split statuses.
const (
	SplitProposed  = "proposed"
	SplitConfirmed = "confirmed"
	SplitRejected  = "rejected"
	SplitEdited    = "edited"
)

// StationPreference prefers a specific Recording for a Work on a Station.
type StationPreference struct {
	StationID   int64 `json:"station_id"`
	WorkID      int64 `json:"work_id"`
	RecordingID int64 `json:"recording_id"`
	Priority    int   `json:"priority"`
}

// FormatPreference prefers a Recording for a Work under a format code,
// excluding recordings whose tag set intersects ExcludeTags.
type FormatPreference struct {
	FormatCode  string   `json:"format_code"`
	WorkID      int64    `json:"work_id"`
	RecordingID int64    `json:"recording_id"`
	ExcludeTags []string `json:"exclude_tags"`
}

// WorkDefaultRecording is the fallback Recording for a Work absent any
// station/format preference.
type WorkDefaultRecording struct {
	WorkID      int64 `json:"work_id"`
	RecordingID int64 `json:"recording_id"`
}
