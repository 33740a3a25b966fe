package lyrics

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"tunebridge/internal/core"
)

var lrcLinePattern = regexp.MustCompile(`\[(\d{2}):(\d{2})\.(\d{2,3})\](.*)`)

// Format converts an LRCLib entry. Entries without track or artist name give nil.
func Format(rec Record) *core.Lyrics {
	if rec.TrackName == "" || rec.ArtistName == "" {
		return nil
	}

	id := ""
	if rec.ID != 0 {
		id = strconv.FormatInt(rec.ID, 10)
	}

	return &core.Lyrics{
		ID:           id,
		Name:         rec.TrackName,
		TrackName:    rec.TrackName,
		ArtistName:   rec.ArtistName,
		AlbumName:    rec.AlbumName,
		Duration:     rec.Duration,
		Instrumental: rec.Instrumental,
		PlainLyrics:  ParsePlain(rec.PlainLyrics),
		SyncedLyrics: ParseLRC(rec.SyncedLyrics),
		Source:       providerName,
	}
}

// ParsePlain splits lyrics into trimmed, non-empty lines.
func ParsePlain(text string) []string {
	lines := []string{}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// ParseLRC reads "[mm:ss.xx]text" lines sorted by offset. Lines without a timestamp are dropped.
func ParseLRC(content string) []core.SyncedLine {
	lines := []core.SyncedLine{}
	for _, raw := range strings.Split(content, "\n") {
		m := lrcLinePattern.FindStringSubmatch(raw)
		if m == nil {
			continue
		}

		minutes, _ := strconv.Atoi(m[1])
		seconds, _ := strconv.Atoi(m[2])
		fraction := m[3]
		for len(fraction) < 3 {
			fraction += "0"
		}
		millis, _ := strconv.Atoi(fraction)

		lines = append(lines, core.SyncedLine{
			Time:          (minutes*60+seconds)*1000 + millis,
			TimeFormatted: m[1] + ":" + m[2],
			Text:          strings.TrimSpace(m[4]),
		})
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Time < lines[j].Time })
	return lines
}

// LinePosition is the synced line playing at some offset and the one after it.
type LinePosition struct {
	Current core.SyncedLine
	Next    *core.SyncedLine
	Index   int
}

// CurrentLine finds the last line starting at or before offsetMs in sorted lines.
func CurrentLine(lines []core.SyncedLine, offsetMs int) (LinePosition, bool) {
	for i := len(lines) - 1; i >= 0; i-- {
		if offsetMs < lines[i].Time {
			continue
		}
		pos := LinePosition{Current: lines[i], Index: i}
		if i+1 < len(lines) {
			next := lines[i+1]
			pos.Next = &next
		}
		return pos, true
	}
	return LinePosition{}, false
}
