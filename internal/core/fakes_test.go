package core

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

type fakeSpotify struct {
	mu sync.Mutex

	tracks    map[string]*Track
	playlists map[string]*Playlist
	search    []Track
	fetchErr  error

	calls map[string]int
}

func newFakeSpotify() *fakeSpotify {
	return &fakeSpotify{
		tracks:    map[string]*Track{},
		playlists: map[string]*Playlist{},
		calls:     map[string]int{},
	}
}

func (f *fakeSpotify) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeSpotify) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeSpotify) FetchTrack(_ context.Context, id string) (*Track, error) {
	f.record("FetchTrack")
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.tracks[id], nil
}

func (f *fakeSpotify) FetchAlbum(_ context.Context, _ string) (*Album, error) {
	f.record("FetchAlbum")
	return nil, nil
}

func (f *fakeSpotify) FetchPlaylist(_ context.Context, id string) (*Playlist, error) {
	f.record("FetchPlaylist")
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.playlists[id], nil
}

func (f *fakeSpotify) FetchArtist(_ context.Context, _ string) (*Artist, error) {
	f.record("FetchArtist")
	return nil, nil
}

func (f *fakeSpotify) Search(_ context.Context, _ string, _ []SearchKind, _ SearchOptions) (*SearchResults, error) {
	f.record("Search")
	return NewSearchResults(), nil
}

func (f *fakeSpotify) SearchTracks(_ context.Context, _ string, _ SearchOptions) ([]Track, error) {
	f.record("SearchTracks")
	return f.search, nil
}

func (f *fakeSpotify) SearchAlbums(_ context.Context, _ string, _ SearchOptions) ([]Album, error) {
	return nil, nil
}

func (f *fakeSpotify) SearchArtists(_ context.Context, _ string, _ SearchOptions) ([]Artist, error) {
	return nil, nil
}

func (f *fakeSpotify) SearchPlaylists(_ context.Context, _ string, _ SearchOptions) ([]Playlist, error) {
	return nil, nil
}

type fakeYouTube struct {
	mu sync.Mutex

	videos    map[string]*Video
	tracks    map[string]*Track
	playlists map[string]*Playlist
	results   map[string][]Track
	videoErr  error
	trackErr  error
	searchErr error

	queries []string
	calls   map[string]int
}

func newFakeYouTube() *fakeYouTube {
	return &fakeYouTube{
		videos:    map[string]*Video{},
		tracks:    map[string]*Track{},
		playlists: map[string]*Playlist{},
		results:   map[string][]Track{},
		calls:     map[string]int{},
	}
}

func (f *fakeYouTube) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeYouTube) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeYouTube) FetchTrack(_ context.Context, id string) (*Track, error) {
	f.record("FetchTrack")
	if f.trackErr != nil {
		return nil, f.trackErr
	}
	return f.tracks[id], nil
}

func (f *fakeYouTube) FetchVideo(_ context.Context, id string) (*Video, error) {
	f.record("FetchVideo")
	if f.videoErr != nil {
		return nil, f.videoErr
	}
	return f.videos[id], nil
}

func (f *fakeYouTube) FetchAlbum(_ context.Context, _ string) (*Album, error) {
	return nil, nil
}

func (f *fakeYouTube) FetchArtist(_ context.Context, _ string) (*Artist, error) {
	return nil, nil
}

func (f *fakeYouTube) FetchPlaylist(_ context.Context, id string) (*Playlist, error) {
	f.record("FetchPlaylist")
	return f.playlists[id], nil
}

func (f *fakeYouTube) Search(_ context.Context, _ string, _ ...SearchKind) (*SearchResults, error) {
	f.record("Search")
	return NewSearchResults(), nil
}

func (f *fakeYouTube) SearchTracks(_ context.Context, query string) ([]Track, error) {
	f.record("SearchTracks")
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results[query], nil
}

type fakeDelegate struct {
	mu sync.Mutex

	urls map[string]string
	err  error

	resolved []string
	args     [][]string
	streamed []string
}

func (f *fakeDelegate) ResolveDirectURL(_ context.Context, videoID string, extraArgs ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolved = append(f.resolved, videoID)
	f.args = append(f.args, extraArgs)
	if f.err != nil {
		return "", f.err
	}
	return f.urls[videoID], nil
}

func (f *fakeDelegate) OpenAudioStream(_ context.Context, videoID string, extraArgs ...string) (AudioStream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.streamed = append(f.streamed, videoID)
	f.args = append(f.args, extraArgs)
	if f.err != nil {
		return nil, f.err
	}
	return &fakeStream{Reader: strings.NewReader("audio:" + videoID)}, nil
}

type fakeStream struct {
	io.Reader
	n int64
}

func (s *fakeStream) Read(p []byte) (int, error) {
	n, err := s.Reader.Read(p)
	s.n += int64(n)
	return n, err
}

func (s *fakeStream) Close() error     { return nil }
func (s *fakeStream) BytesRead() int64 { return s.n }
func (s *fakeStream) Err() error       { return nil }

type fakeLyrics struct {
	got    *Lyrics
	found  []Lyrics
	err    error
	called []LyricsQuery
}

func (f *fakeLyrics) Get(_ context.Context, q LyricsQuery) (*Lyrics, error) {
	f.called = append(f.called, q)
	return f.got, f.err
}

func (f *fakeLyrics) Search(_ context.Context, q LyricsQuery) ([]Lyrics, error) {
	f.called = append(f.called, q)
	return f.found, f.err
}

type fakeDownloader struct {
	err  error
	dirs []string
}

func (f *fakeDownloader) DownloadAudio(_ context.Context, videoID, dir string, _ ...string) (string, error) {
	f.dirs = append(f.dirs, dir)
	if f.err != nil {
		return "", f.err
	}
	return dir + "/" + videoID + ".m4a", nil
}

type fakeTagger struct {
	err    error
	tagged map[string]Track
}

func (f *fakeTagger) TagFile(path string, track Track) error {
	if f.tagged == nil {
		f.tagged = map[string]Track{}
	}
	f.tagged[path] = track
	return f.err
}

type fakeMemo struct {
	matches map[string]string
}

func (m *fakeMemo) Lookup(id string) (string, bool) {
	v, ok := m.matches[id]
	return v, ok
}

func (m *fakeMemo) Remember(id, target string) {
	if m.matches == nil {
		m.matches = map[string]string{}
	}
	m.matches[id] = target
}

var errUpstream = errors.New("upstream unavailable")
