// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package library

import (
	"github.com/airwave/airwave/internal/database"
	"github.com/airwave/airwave/internal/vectorindex"
)

// Config tunes the knowledge base's fuzzy work-grouping cascade.
type Config struct {
	// MaxFuzzyWorks bounds the per-artist work count fuzzy matching will
	// scan; above it, fuzzy matching is skipped entirely. Default 500.
	MaxFuzzyWorks int
	// FuzzyThreshold is the minimum Ratio a candidate title must clear to
	// be accepted as the same Work. Default 0.85.
	FuzzyThreshold float64
}

// DefaultConfig returns documented defaults.
func DefaultConfig() Config {
	return Config{MaxFuzzyWorks: 500, FuzzyThreshold: 0.85}
}

// earlyTerminateRatio short-circuits fuzzy scanning once a candidate
// this close to identical is found.
const earlyTerminateRatio = 0.95

// KB is the library knowledge base: the persistence and invariant layer
// over Artist, Work, WorkArtist, Recording, and LibraryFile.
type KB struct {
	db     *database.DB
	cfg    Config
	vector *vectorindex.Index
}

// New constructs a KB bound to db with the given fuzzy-matching tuning.
func New(db *database.DB, cfg Config) *KB {
	return &KB{db: db, cfg: cfg}
}

// SetVectorIndex attaches the vector index administrative mutations
// (MergeArtists) re-upsert into when a merge changes the artist name
// half of a Recording's indexed text. Optional: a nil index leaves
// affected recordings to the next full scan to bring current.
func (kb *KB) SetVectorIndex(v *vectorindex.Index) {
	kb.vector = v
}
