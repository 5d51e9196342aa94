// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package normalizer

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Signature computes the identity key: a stable, case-folded,
// accent-folded digest over the normalized artist and title. Callers
// resolve artist aliases before calling this (after alias resolution
// of raw_artist).
func Signature(artist, title string) string {
	cleanArtist := CleanArtist(artist)
	cleanTitle, _ := CleanTitle(title)

	sum := blake2b.Sum256([]byte(cleanArtist + "|" + cleanTitle))
	return hex.EncodeToString(sum[:])
}
