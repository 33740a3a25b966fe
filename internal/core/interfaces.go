package core

import "context"

// SpotifyCatalog is the catalog-A adapter. Not found is nil (or an empty slice), never an error.
type SpotifyCatalog interface {
	FetchTrack(ctx context.Context, id string) (*Track, error)
	FetchAlbum(ctx context.Context, id string) (*Album, error)
	FetchPlaylist(ctx context.Context, id string) (*Playlist, error)
	FetchArtist(ctx context.Context, id string) (*Artist, error)
	Search(ctx context.Context, query string, kinds []SearchKind, opts SearchOptions) (*SearchResults, error)
	SearchTracks(ctx context.Context, query string, opts SearchOptions) ([]Track, error)
	SearchAlbums(ctx context.Context, query string, opts SearchOptions) ([]Album, error)
	SearchArtists(ctx context.Context, query string, opts SearchOptions) ([]Artist, error)
	SearchPlaylists(ctx context.Context, query string, opts SearchOptions) ([]Playlist, error)
}

// YouTubeCatalog is the catalog-B adapter.
type YouTubeCatalog interface {
	FetchTrack(ctx context.Context, id string) (*Track, error)
	FetchVideo(ctx context.Context, id string) (*Video, error)
	FetchAlbum(ctx context.Context, id string) (*Album, error)
	FetchArtist(ctx context.Context, id string) (*Artist, error)
	FetchPlaylist(ctx context.Context, id string) (*Playlist, error)
	Search(ctx context.Context, query string, kinds ...SearchKind) (*SearchResults, error)
	SearchTracks(ctx context.Context, query string) ([]Track, error)
}

type LyricsFinder interface {
	Get(ctx context.Context, query LyricsQuery) (*Lyrics, error)
	Search(ctx context.Context, query LyricsQuery) ([]Lyrics, error)
}

// StreamDelegate turns a YouTube video id into playable audio.
type StreamDelegate interface {
	ResolveDirectURL(ctx context.Context, videoID string, extraArgs ...string) (string, error)
	OpenAudioStream(ctx context.Context, videoID string, extraArgs ...string) (AudioStream, error)
}

// Downloader stores the audio of a video under dir and returns the file path.
type Downloader interface {
	DownloadAudio(ctx context.Context, videoID, dir string, extraArgs ...string) (string, error)
}

type Tagger interface {
	TagFile(path string, track Track) error
}

// Ranker picks the cross-provider candidate for source, or reports that none qualifies.
type Ranker interface {
	Pick(source Track, candidates []Track) (Track, bool)
}

type MatchMemo interface {
	Lookup(sourceID string) (string, bool)
	Remember(sourceID, targetID string)
}
