package youtube

// Thumbnail is an image reference as YouTube returns it.
type Thumbnail struct {
	URL    string
	Width  int
	Height int
}

type ArtistBasic struct {
	ArtistID string
	Name     string
}

type AlbumBasic struct {
	AlbumID string
	Name    string
}

// SongDetails is a YouTube Music song, from search results, the player or a playlist.
type SongDetails struct {
	VideoID    string
	Name       string
	Artist     *ArtistBasic
	Album      *AlbumBasic
	Duration   int // Seconds, zero when unknown.
	Thumbnails []Thumbnail
}

// VideoDetails is any YouTube upload. Author is nil when the uploader is unknown.
type VideoDetails struct {
	VideoID    string
	Name       string
	Author     *ArtistBasic
	Duration   int
	Thumbnails []Thumbnail
}

type AlbumDetails struct {
	AlbumID    string
	PlaylistID string
	Name       string
	Artist     *ArtistBasic
	TrackCount int
	Thumbnails []Thumbnail
}

type ArtistDetails struct {
	ArtistID   string
	Name       string
	Thumbnails []Thumbnail
}

// PlaylistDetails describes a playlist. Songs is only filled when the playlist was fetched.
type PlaylistDetails struct {
	PlaylistID string
	Name       string
	Author     *ArtistBasic
	VideoCount int
	Thumbnails []Thumbnail
	Songs      []SongDetails
}

type itemKind int

const (
	kindUnknown itemKind = iota
	kindSong
	kindVideo
	kindAlbum
	kindArtist
	kindPlaylist
)

// searchItem is one parsed row of a search shelf; only the field matching kind is set.
type searchItem struct {
	kind     itemKind
	song     SongDetails
	video    VideoDetails
	album    AlbumDetails
	artist   ArtistDetails
	playlist PlaylistDetails
}
