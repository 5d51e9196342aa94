// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package scanner

import (
	"fmt"
	"os"

	"github.com/dhowden/tag"

	"github.com/airwave/airwave/internal/apperr"
)

// trackTags is the subset of dhowden/tag metadata the upsert cascade
// needs.
type trackTags struct {
	Artist string
	Title  string
	Album  string
}

// readTags extracts artist/title/album from an audio file's embedded
// tags. A file whose tags can't be parsed is reported as Corrupt
// rather than aborting the scan.
func readTags(path string) (trackTags, error) {
	f, err := os.Open(path)
	if err != nil {
		return trackTags{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return trackTags{}, fmt.Errorf("read tags %s: %w: %w", path, apperr.ErrCorrupt, err)
	}

	if m.Title() == "" {
		return trackTags{}, fmt.Errorf("no title tag %s: %w", path, apperr.ErrCorrupt)
	}

	return trackTags{
		Artist: m.Artist(),
		Title:  m.Title(),
		Album:  m.Album(),
	}, nil
}
