package musiclink

import (
	"regexp"
	"strings"
)

const spotifyDomainMarker = "spotify.com"

// Checked in this order: a URL matching several patterns resolves to the first.
var spotifyPatterns = []struct {
	kind  Kind
	regex *regexp.Regexp
}{
	{KindTrack, regexp.MustCompile(`track/([a-zA-Z0-9]+)`)},
	{KindPlaylist, regexp.MustCompile(`playlist/([a-zA-Z0-9]+)`)},
	{KindAlbum, regexp.MustCompile(`album/([a-zA-Z0-9]+)`)},
}

// SpotifyMatcher recognizes open.spotify.com style links.
type SpotifyMatcher struct{}

// NewSpotifyMatcher creates a Spotify link matcher.
func NewSpotifyMatcher() *SpotifyMatcher {
	return &SpotifyMatcher{}
}

// CanMatch checks for the Spotify domain anywhere in the URL.
func (m *SpotifyMatcher) CanMatch(rawURL string) bool {
	return strings.Contains(rawURL, spotifyDomainMarker)
}

// Match extracts the kind and id from the URL path.
func (m *SpotifyMatcher) Match(rawURL string) (Link, bool) {
	kind, id, ok := ParseSpotify(rawURL)
	if !ok {
		return Link{}, false
	}
	return Link{Provider: ProviderSpotify, Kind: kind, ID: id}, true
}

// ParseSpotify extracts a track, playlist or album id from a Spotify URL.
func ParseSpotify(rawURL string) (Kind, string, bool) {
	for _, p := range spotifyPatterns {
		if m := p.regex.FindStringSubmatch(rawURL); len(m) == 2 {
			return p.kind, m[1], true
		}
	}
	return "", "", false
}
