// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

package normalizer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	rePunctEdge  = regexp.MustCompile(`^[\s\p{P}]+|[\s\p{P}]+$`)

	// featClause matches a parenthesized/bracketed "feat./ft./featuring"
	// group so its artist list can be moved to the collaboration channel
	// instead of being discarded with the rest of the bracket contents.
	reFeatClause = regexp.MustCompile(`(?i)[\(\[]\s*(?:feat\.?|ft\.?|featuring)\s+([^\)\]]+)[\)\]]`)

	// reArtistSuffix matches the trailing collaboration suffix stripped
	// from clean_artist, starting at a word-boundary keyword.
	reArtistSuffix = regexp.MustCompile(`(?i)\b(?:duet|feat\.?|ft\.?|featuring|vs\.?)\b.*$`)

	// foldTransformer performs Unicode NFKD decomposition followed by
	// removal of combining marks (accent folding), mirroring 	// "Unicode NFKD then strip combining marks" rule.
	foldTransformer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

func foldAccents(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return s
	}
	return out
}

func stripQuotes(s string) string {
	s = strings.NewReplacer(`"`, "", "“", "", "”", "", "'", "", "‘", "", "’", "").Replace(s)
	return s
}

func collapseAndTrim(s string) string {
	s = reWhitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = rePunctEdge.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// CleanTitle normalizes a raw title: lowercase, NFKD accent-fold,
// collapsed whitespace, stripped edge punctuation and quotes, with any
// bracketed featuring clause removed from the title and its artist list
// returned separately for the collaboration channel.
func CleanTitle(s string) (title string, collaborators []string) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}

	if m := reFeatClause.FindStringSubmatch(s); m != nil {
		collaborators = SplitArtists(m[1])
		s = reFeatClause.ReplaceAllString(s, "")
	}

	s = strings.ToLower(s)
	s = foldAccents(s)
	s = stripQuotes(s)
	s = collapseAndTrim(s)
	return s, collaborators
}

// CleanArtist normalizes a raw artist string: as CleanTitle, plus
// stripping a trailing "duet|feat.?|ft.?|featuring|vs.?" collaboration
// suffix at a word boundary.
func CleanArtist(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	s = reArtistSuffix.ReplaceAllString(s, "")
	s = strings.ToLower(s)
	s = foldAccents(s)
	s = stripQuotes(s)
	return collapseAndTrim(s)
}

// artistSeparators are tried in this order; longer phrases are listed
// before their substrings (" duet with " before " duet ") so the greedier
// phrase wins.
var artistSeparators = []string{
	" duet with ", " & ", " and ", " with ", " x ", " vs. ", " vs ", " duet ", ";", "/",
}

// SplitArtists splits a raw collaboration string into an ordered list of
// canonical artist names using separator set. The comma separator
// is hand-rolled rather than a lookaround regex (Go's RE2 engine does not
// support `(?<!\d),\s*(?!\d)`): a comma only splits when it is not
// immediately flanked by digits on both sides, so "10,000 Maniacs" is not
// broken at its thousands separator.
func SplitArtists(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	parts := splitOnPhrases(s, artistSeparators)

	var withCommas []string
	for _, p := range parts {
		withCommas = append(withCommas, splitOnBareCommas(p)...)
	}

	out := make([]string, 0, len(withCommas))
	for _, p := range withCommas {
		name := CleanArtist(p)
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

func splitOnPhrases(s string, seps []string) []string {
	segments := []string{s}
	for _, sep := range seps {
		var next []string
		for _, seg := range segments {
			next = append(next, splitCaseInsensitive(seg, sep)...)
		}
		segments = next
	}
	return segments
}

func splitCaseInsensitive(s, sep string) []string {
	lower := strings.ToLower(s)
	sepLower := strings.ToLower(sep)
	var out []string
	start := 0
	for {
		idx := strings.Index(lower[start:], sepLower)
		if idx < 0 {
			out = append(out, s[start:])
			break
		}
		idx += start
		out = append(out, s[start:idx])
		start = idx + len(sep)
	}
	return out
}

// splitOnBareCommas splits on "," except where the comma sits between two
// digits (a thousands separator inside a numeral).
func splitOnBareCommas(s string) []string {
	runesIn := []rune(s)
	var out []string
	last := 0
	for i, r := range runesIn {
		if r != ',' {
			continue
		}
		prevDigit := i > 0 && unicode.IsDigit(runesIn[i-1])
		nextDigit := i+1 < len(runesIn) && unicode.IsDigit(runesIn[i+1])
		if prevDigit && nextDigit {
			continue
		}
		out = append(out, string(runesIn[last:i]))
		last = i + 1
	}
	out = append(out, string(runesIn[last:]))
	return out
}
