package core

import (
	"io"
)

// Platform tags every canonical entity with the catalog it came from.
type Platform string

const (
	// PlatformSpotify is the Spotify catalog.
	PlatformSpotify Platform = "spotify"
	// PlatformYouTube is the YouTube / YouTube Music catalog.
	PlatformYouTube Platform = "youtube"
)

// SearchKind selects which entity lists a search fills.
type SearchKind string

const (
	SearchTracks    SearchKind = "track"
	SearchAlbums    SearchKind = "album"
	SearchArtists   SearchKind = "artist"
	SearchPlaylists SearchKind = "playlist"
	SearchVideos    SearchKind = "video"
)

type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type Track struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Artist   string   `json:"artist"`
	Album    string   `json:"album"`
	Duration *int     `json:"duration"` // Whole seconds, nil when the provider does not report it.
	URL      string   `json:"url"`
	Images   []Image  `json:"images"`
	Platform Platform `json:"platform"`
}

// DurationSeconds returns the duration and whether it is known.
func (t Track) DurationSeconds() (int, bool) {
	if t.Duration == nil {
		return 0, false
	}
	return *t.Duration, true
}

type Album struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Total      int            `json:"total"`
	Images     []Image        `json:"images"`
	Artists    []ArtistCredit `json:"artists"`
	Platform   Platform       `json:"platform"`
	PlaylistID string         `json:"playlistId,omitempty"`
}

type Artist struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	URL      string   `json:"url"`
	Images   []Image  `json:"images"`
	Platform Platform `json:"platform"`
}

type Playlist struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Total    int      `json:"total"` // Provider-declared, may exceed len(Tracks).
	Tracks   []Track  `json:"tracks"`
	URL      string   `json:"url"`
	Platform Platform `json:"platform"`
	Images   []Image  `json:"images,omitempty"`
}

// Video is a YouTube upload that is not necessarily a music track.
type Video struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Artist   ArtistCredit `json:"artist"`
	Duration *int         `json:"duration"`
	Images   []Image      `json:"images"`
	URL      string       `json:"url"`
	Platform Platform     `json:"platform"`
}

// AsTrack flattens a video into a track, the way a video link is presented as a song.
func (v Video) AsTrack() Track {
	return Track{
		ID:       v.ID,
		Title:    v.Name,
		Artist:   v.Artist.Name(),
		Duration: v.Duration,
		URL:      v.URL,
		Images:   v.Images,
		Platform: v.Platform,
	}
}

// SearchResults carries provider-reported totals next to the materialized lists.
// Kinds that were not requested stay empty with a zero total.
type SearchResults struct {
	TracksTotal    int `json:"tracksTotal"`
	AlbumsTotal    int `json:"albumsTotal"`
	ArtistsTotal   int `json:"artistsTotal"`
	PlaylistsTotal int `json:"playlistsTotal"`
	VideosTotal    int `json:"videosTotal"`

	Tracks    []Track    `json:"tracks"`
	Albums    []Album    `json:"albums"`
	Artists   []Artist   `json:"artists"`
	Playlists []Playlist `json:"playlists"`
	Videos    []Video    `json:"videos"`
}

// NewSearchResults returns results with empty, non-nil lists.
func NewSearchResults() *SearchResults {
	return &SearchResults{
		Tracks:    []Track{},
		Albums:    []Album{},
		Artists:   []Artist{},
		Playlists: []Playlist{},
		Videos:    []Video{},
	}
}

// SearchOptions are the paging and region knobs of a catalog search.
type SearchOptions struct {
	Market string
	Limit  int
	Offset int
}

type SyncedLine struct {
	Time          int    `json:"time"` // Offset in milliseconds.
	TimeFormatted string `json:"timeFormatted"`
	Text          string `json:"text"`
}

type Lyrics struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	TrackName    string       `json:"trackName"`
	ArtistName   string       `json:"artistName"`
	AlbumName    string       `json:"albumName,omitempty"`
	Duration     float64      `json:"duration,omitempty"`
	Instrumental bool         `json:"instrumental"`
	PlainLyrics  []string     `json:"plainLyrics"`
	SyncedLyrics []SyncedLine `json:"syncedLyrics"`
	Source       string       `json:"source"`
}

// LyricsQuery identifies a song for the lyrics service. Album and Duration are optional.
type LyricsQuery struct {
	Track    string
	Artist   string
	Album    string
	Duration float64 // Seconds, zero when unknown.
}

// SongWithStream is a track plus the direct audio URL when one could be resolved.
type SongWithStream struct {
	Track
	StreamURL string `json:"streamUrl,omitempty"`
}

// HasStream reports whether a stream URL was attached.
func (s SongWithStream) HasStream() bool {
	return s.StreamURL != ""
}

// AudioStream is a live audio byte stream. The consumer must drain or Close it.
//
// Read may return an error after data has already been delivered; BytesRead then
// tells how far the stream got and Err keeps the terminal error.
type AudioStream interface {
	io.ReadCloser
	BytesRead() int64
	Err() error
}
