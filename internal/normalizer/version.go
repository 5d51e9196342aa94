// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package normalizer

import (
	"regexp"
	"strings"
)

// versionKeywords drives all four extraction strategies here.
var versionKeywords = []string{
	"live", "remix", "mix", "edit", "version", "cut", "take",
	"session", "acoustic", "unplugged", "demo", "radio", "extended",
}

var versionKeywordPattern = strings.Join(versionKeywords, "|")

var (
	reBracketGroup  = regexp.MustCompile(`(?i)[\(\[]([^\(\)\[\]]*(?:` + versionKeywordPattern + `)[^\(\)\[\]]*)[\)\]]`)
	reDashSuffix    = regexp.MustCompile(`(?i)\s-\s(` + versionKeywordPattern + `)\b.*$`)
	reShortParen    = regexp.MustCompile(`(?i)[\(\[]([^\(\)\[\]]*(?:edit|mix|version|cut|take)[^\(\)\[\]]*)[\)\]]`)
	rePartNegative  = regexp.MustCompile(`(?i)\b(?:part|pt\.?)\s*\d+\b`)
	reSubtitleStart = regexp.MustCompile(`(?i)^the\s+`)
	reAlbumLive     = regexp.MustCompile(`(?i)live|concert|unplugged|acoustic session`)
)

// ExtractVersion implements extract_version: it returns the title
// with version-bearing groups removed, cleaned as CleanTitle does, and the
// accumulated, title-cased,
// deduplicated, "/"-joined version tag (defaulting to "Original").
func ExtractVersion(title string, albumTitle string) (cleanTitle string, versionType string) {
	var tags []string
	seen := make(map[string]bool)
	addTag := func(raw string) {
		t := classifyTag(raw)
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		tags = append(tags, t)
	}

	work := title

	// Strategy 1: parenthesized/bracketed groups containing a keyword.
	work = reBracketGroup.ReplaceAllStringFunc(work, func(m string) string {
		groups := reBracketGroup.FindStringSubmatch(m)
		content := groups[1]
		if isNegative(content) {
			return m
		}
		addTag(content)
		return ""
	})

	// Strategy 2: " - <keyword> ..." suffix after a spaced dash.
	if m := reDashSuffix.FindStringSubmatchIndex(work); m != nil {
		content := work[m[0]:]
		if !isNegative(content) {
			addTag(content)
			work = work[:m[0]]
		}
	}

	// Strategy 3: album context implies Live when nothing found yet.
	if len(tags) == 0 && albumTitle != "" && reAlbumLive.MatchString(albumTitle) {
		addTag("live")
	}

	// Strategy 4: short ambiguous parentheses (<=3 words) with an
	// edit/mix/version/cut/take keyword, evaluated against what remains.
	work = reShortParen.ReplaceAllStringFunc(work, func(m string) string {
		groups := reShortParen.FindStringSubmatch(m)
		content := groups[1]
		if isNegative(content) || len(strings.Fields(content)) > 3 {
			return m
		}
		addTag(content)
		return ""
	})

	work, _ = CleanTitle(work)

	if len(tags) == 0 {
		return work, "Original"
	}
	return work, strings.Join(tags, " / ")
}

// isNegative applies two suppression patterns: a "part N"/"pt. N"
// marker (a distinct work, not a version) or a "the "-prefixed subtitle
// longer than two words.
func isNegative(content string) bool {
	if rePartNegative.MatchString(content) {
		return true
	}
	if reSubtitleStart.MatchString(strings.TrimSpace(content)) {
		if len(strings.Fields(content)) > 2 {
			return true
		}
	}
	return false
}

// classifyTag reduces free-form bracket/suffix content to the single
// title-cased keyword it matched, so repeated mentions of the same
// concept (e.g. "Radio Edit" vs "radio mix") still dedupe sensibly.
func classifyTag(content string) string {
	lower := strings.ToLower(content)
	switch {
	case strings.Contains(lower, "radio") && strings.Contains(lower, "edit"):
		return "Radio Edit"
	case strings.Contains(lower, "radio"):
		return "Radio Edit"
	case strings.Contains(lower, "unplugged"):
		return "Unplugged"
	case strings.Contains(lower, "acoustic"):
		return "Acoustic"
	case strings.Contains(lower, "demo"):
		return "Demo"
	case strings.Contains(lower, "extended"):
		return "Extended"
	case strings.Contains(lower, "session"):
		return "Session"
	case strings.Contains(lower, "remix"):
		return "Remix"
	case strings.Contains(lower, "live"):
		return "Live"
	case strings.Contains(lower, "mix"):
		return "Remix"
	case strings.Contains(lower, "edit"), strings.Contains(lower, "cut"), strings.Contains(lower, "version"), strings.Contains(lower, "take"):
		return "Edit"
	default:
		return ""
	}
}
