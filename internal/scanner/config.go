// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package scanner

// Config tunes the filesystem walk and its worker pool.
type Config struct {
	// RootPaths are the directories walked for audio files.
	RootPaths []string
	// Workers is the number of concurrent tag-reader/upsert goroutines.
	// Default runtime.NumCPU().
	Workers int
	// Extensions restricts the walk to these lowercase file extensions
	// (with leading dot). Defaults cover the common lossy/lossless set.
	Extensions []string
}

// DefaultExtensions lists the audio container formats dhowden/tag reads.
var DefaultExtensions = []string{".mp3", ".flac", ".m4a", ".ogg", ".oga", ".dsf", ".wav", ".wma"}
