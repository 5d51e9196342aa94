// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package matcher

import (
	"regexp"
	"strings"
)

var reExtraMarker = regexp.MustCompile(`(?i)[\(\[]\s*(?:feat\.?|ft\.?|featuring|remix)\b[^\)\]]*[\)\]]`)

const nearWindow = 0.05

// computeFlags derives edge-case flags. They never feed the
// category decision; they only annotate it for the UI.
func computeFlags(m Match, th Thresholds) Flags {
	var f Flags

	raw := m.Query.RawTitle
	matched := m.matchedTitle

	if matched != "" {
		if len(raw) > 0 && float64(len(matched))/float64(len(raw)) < 0.6 {
			f.TruncationRisk = true
		}
		if abs(len(matched)-len(raw)) > 30 {
			f.LengthMismatch = true
		}
		if reExtraMarker.MatchString(matched) && !reExtraMarker.MatchString(raw) {
			f.ExtraText = true
		}
		if strings.EqualFold(strings.TrimSpace(matched), strings.TrimSpace(raw)) && matched != raw {
			f.CaseOnly = true
		}
	}

	f.NearAuto = near(m.Scores.ArtistSim, th.ArtistAuto) || near(m.Scores.TitleSim, th.TitleAuto)
	f.NearReview = near(m.Scores.ArtistSim, th.ArtistReview) || near(m.Scores.TitleSim, th.TitleReview)

	return f
}

func near(sim, threshold float64) bool {
	d := sim - threshold
	if d < 0 {
		d = -d
	}
	return d <= nearWindow
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
