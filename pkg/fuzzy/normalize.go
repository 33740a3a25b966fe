// Package fuzzy normalizes track titles and artist names and scores how alike two tracks are.
package fuzzy

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// Durations this close count as the same recording.
	durationExact = 30 * time.Second
	// Durations this far apart never match.
	durationCutoff = 2 * time.Minute
)

var (
	// Bracketed qualifiers: "(feat. X)", "[Remastered 2009]", "(Official Video)".
	bracketedNoise = regexp.MustCompile(`(?i)\s*[\(\[][^\)\]]*\b(?:feat\.?|ft\.?|featuring|remix|remaster(?:ed)?|deluxe|extended|radio edit|clean|explicit|official (?:music )?video|official audio|lyrics?|visualizer|hd|4k)\b[^\)\]]*[\)\]]`)
	// Dash suffixes: "Song - Radio Edit", "Song - 2011 Remaster".
	dashedNoise   = regexp.MustCompile(`(?i)\s+-\s+[^-]*\b(?:remix|remaster(?:ed)?|radio edit|extended|deluxe|clean|explicit|live)\b.*$`)
	trailingFeat  = regexp.MustCompile(`(?i)\s+(?:feat\.?|ft\.?|featuring)\s+.*$`)
	nonWordRunes  = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	runsOfSpaces  = regexp.MustCompile(`\s+`)
	artistJoiners = strings.NewReplacer(" and ", " & ", " vs ", " vs. ", " feat ", " feat. ", " ft ", " ft. ")
)

// Normalizer turns display strings into comparable keys.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// NormalizeArtist applies the basic key and spells collaboration joiners one way.
func (n *Normalizer) NormalizeArtist(artist string) string {
	return artistJoiners.Replace(n.basicNormalize(artist))
}

// NormalizeTitle drops featuring credits and version or video qualifiers before
// applying the basic key.
func (n *Normalizer) NormalizeTitle(title string) string {
	title = bracketedNoise.ReplaceAllString(title, "")
	title = dashedNoise.ReplaceAllString(title, "")
	title = trailingFeat.ReplaceAllString(title, "")
	return n.basicNormalize(title)
}

// basicNormalize folds accents, replaces punctuation with spaces and lowercases.
func (n *Normalizer) basicNormalize(text string) string {
	stripMarks := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	if folded, _, err := transform.String(stripMarks, text); err == nil {
		text = folded
	}

	text = nonWordRunes.ReplaceAllString(text, " ")
	text = runsOfSpaces.ReplaceAllString(text, " ")
	return strings.TrimSpace(strings.ToLower(text))
}

// CalculateSimilarity is the longest common subsequence length over the longer length.
func (n *Normalizer) CalculateSimilarity(s1, s2 string) float64 {
	switch {
	case s1 == s2:
		return 1.0
	case s1 == "" || s2 == "":
		return 0.0
	}
	return float64(longestCommonSubsequence(s1, s2)) / float64(max(len(s1), len(s2)))
}

// longestCommonSubsequence keeps two rows of the table.
func longestCommonSubsequence(s1, s2 string) int {
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)

	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			if s1[i-1] == s2[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}

// DurationTolerance is 1 within 30s and falls linearly to 0 at two minutes apart.
func (n *Normalizer) DurationTolerance(d1, d2 time.Duration) float64 {
	diff := d1 - d2
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff <= durationExact:
		return 1.0
	case diff >= durationCutoff:
		return 0.0
	}
	return 1.0 - float64(diff-durationExact)/float64(durationCutoff-durationExact)
}
