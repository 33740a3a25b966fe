// Package musiclink classifies music links and extracts provider-native identifiers from them.
package musiclink

// Provider identifies the catalog a link belongs to.
type Provider string

const (
	// ProviderSpotify is the Spotify catalog.
	ProviderSpotify Provider = "spotify"
	// ProviderYouTube covers youtube.com, youtu.be and music.youtube.com.
	ProviderYouTube Provider = "youtube"
)

// Kind is the resource kind a link points at.
type Kind string

const (
	// KindTrack is a single track or video.
	KindTrack Kind = "track"
	// KindPlaylist is a playlist.
	KindPlaylist Kind = "playlist"
	// KindAlbum is an album.
	KindAlbum Kind = "album"
)

// Link holds what could be extracted from a URL without touching the network.
type Link struct {
	Provider Provider
	Kind     Kind
	ID       string // Primary native id for Kind.

	// VideoID and PlaylistID are only filled for YouTube links; a watch URL inside a
	// playlist carries both.
	VideoID    string
	PlaylistID string
}

// Matcher recognizes the links of a single provider.
type Matcher interface {
	// CanMatch reports whether the URL belongs to this matcher's provider.
	CanMatch(rawURL string) bool

	// Match extracts kind and ids. ok is false when no id could be found.
	Match(rawURL string) (link Link, ok bool)
}
