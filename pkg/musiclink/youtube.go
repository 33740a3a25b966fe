package musiclink

import (
	"regexp"
	"strings"
)

var (
	youtubeDomainMarkers = []string{"youtube.com", "youtu.be", "music.youtube.com"}

	youtubeVideoPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&?/]+)`),
		regexp.MustCompile(`music\.youtube\.com/watch\?v=([^&?/]+)`),
	}
	youtubePlaylistPattern = regexp.MustCompile(`[?&]list=([^&]+)`)
)

// YouTubeMatcher recognizes YouTube and YouTube Music links.
type YouTubeMatcher struct{}

// NewYouTubeMatcher creates a YouTube link matcher.
func NewYouTubeMatcher() *YouTubeMatcher {
	return &YouTubeMatcher{}
}

// CanMatch checks for any of the YouTube domains.
func (m *YouTubeMatcher) CanMatch(rawURL string) bool {
	for _, marker := range youtubeDomainMarkers {
		if strings.Contains(rawURL, marker) {
			return true
		}
	}
	return false
}

// Match extracts the video id and the playlist id independently.
// A URL carrying a video id is a track link even when it also names a playlist.
func (m *YouTubeMatcher) Match(rawURL string) (Link, bool) {
	link := Link{
		Provider:   ProviderYouTube,
		VideoID:    VideoID(rawURL),
		PlaylistID: PlaylistID(rawURL),
	}

	switch {
	case link.VideoID != "":
		link.Kind = KindTrack
		link.ID = link.VideoID
	case link.PlaylistID != "":
		link.Kind = KindPlaylist
		link.ID = link.PlaylistID
	default:
		return Link{}, false
	}
	return link, true
}

// VideoID extracts a video id from watch, youtu.be, embed and music watch URLs.
func VideoID(rawURL string) string {
	for _, pattern := range youtubeVideoPatterns {
		if m := pattern.FindStringSubmatch(rawURL); len(m) == 2 {
			return m[1]
		}
	}
	return ""
}

// PlaylistID extracts the list= query parameter.
func PlaylistID(rawURL string) string {
	if m := youtubePlaylistPattern.FindStringSubmatch(rawURL); len(m) == 2 {
		return m[1]
	}
	return ""
}
