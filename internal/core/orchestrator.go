package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"tunebridge/internal/metrics"
	"tunebridge/pkg/musiclink"
)

// Delegate modes used as metric labels.
const (
	delegateModeURL      = "url"
	delegateModeStream   = "stream"
	delegateModeDownload = "download"
)

// Orchestrator resolves URLs and queries across the two catalogs, the lyrics service and the
// stream delegate. It holds no per-call state and is safe for concurrent use.
type Orchestrator struct {
	config     *ResolveConfig
	spotify    SpotifyCatalog
	youtube    YouTubeCatalog
	lyrics     LyricsFinder
	delegate   StreamDelegate
	downloader Downloader
	tagger     Tagger
	ranker     Ranker
	memo       MatchMemo
	metrics    *metrics.Metrics
	detector   *musiclink.Detector
	logger     *zap.Logger
}

type Option func(*Orchestrator)

func WithRanker(r Ranker) Option {
	return func(o *Orchestrator) { o.ranker = r }
}

// WithMatchMemo remembers Spotify to YouTube matches so repeated lookups skip the search.
func WithMatchMemo(m MatchMemo) Option {
	return func(o *Orchestrator) { o.memo = m }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

func WithDownloader(d Downloader) Option {
	return func(o *Orchestrator) { o.downloader = d }
}

func WithTagger(t Tagger) Option {
	return func(o *Orchestrator) { o.tagger = t }
}

// NewOrchestrator wires the collaborators. spotify may be nil when no credentials are
// configured; every Spotify path then fails with ErrNotConfigured.
func NewOrchestrator(
	config *ResolveConfig,
	spotify SpotifyCatalog,
	youtube YouTubeCatalog,
	lyrics LyricsFinder,
	delegate StreamDelegate,
	logger *zap.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		config:   config,
		spotify:  spotify,
		youtube:  youtube,
		lyrics:   lyrics,
		delegate: delegate,
		detector: musiclink.NewDetector(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.ranker == nil {
		o.ranker = NewRanker(*config)
	}
	return o
}

// SearchSong searches tracks on one platform. An empty platform means YouTube.
func (o *Orchestrator) SearchSong(ctx context.Context, query string, platform Platform) ([]Track, error) {
	if strings.TrimSpace(query) == "" {
		return nil, InvalidArgument("query")
	}

	switch platform {
	case PlatformSpotify:
		if o.spotify == nil {
			return nil, errSpotifyNotConfigured()
		}
		start := time.Now()
		tracks, err := o.spotify.SearchTracks(ctx, query, SearchOptions{})
		o.observe(PlatformSpotify, "search_tracks", start, len(tracks) > 0, err)
		if err != nil {
			return nil, err
		}
		return nonNilTracks(tracks), nil
	case PlatformYouTube, "":
		return o.searchYouTube(ctx, query)
	default:
		return nil, fmt.Errorf("%w: unknown platform %q", ErrInvalidArgument, platform)
	}
}

// SearchFirstAndStream returns the first YouTube track for query with its stream URL when
// one can be resolved. No result is nil.
func (o *Orchestrator) SearchFirstAndStream(ctx context.Context, query string) (*SongWithStream, error) {
	tracks, err := o.SearchSong(ctx, query, PlatformYouTube)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, nil
	}

	song := &SongWithStream{Track: tracks[0]}
	streamURL, err := o.resolveURL(ctx, song.ID)
	if err != nil {
		o.degrade("search_first_and_stream", "Failed to get stream URL", err, zap.String("video_id", song.ID))
		return song, nil
	}
	song.StreamURL = streamURL
	return song, nil
}

// GetSongByURL returns the song behind a track link, optionally with a stream URL.
// Unknown links, non-track links and unresolvable YouTube ids give nil without error.
// Only a failing Spotify fetch is returned as an error; stream failures are logged.
func (o *Orchestrator) GetSongByURL(ctx context.Context, rawURL string, withStream bool) (*SongWithStream, error) {
	if rawURL == "" {
		return nil, nil
	}

	link, ok := o.detector.Detect(rawURL)
	if !ok {
		o.logger.Debug("No provider link in URL", zap.String("url", rawURL))
		return nil, nil
	}

	switch link.Provider {
	case musiclink.ProviderSpotify:
		return o.spotifySong(ctx, link, withStream)
	case musiclink.ProviderYouTube:
		return o.youtubeSong(ctx, link, withStream), nil
	}
	return nil, nil
}

func (o *Orchestrator) spotifySong(ctx context.Context, link musiclink.Link, withStream bool) (*SongWithStream, error) {
	if link.Kind != musiclink.KindTrack {
		return nil, nil
	}
	if o.spotify == nil {
		return nil, errSpotifyNotConfigured()
	}

	track, err := o.fetchSpotifyTrack(ctx, link.ID)
	if err != nil {
		return nil, err
	}
	if track == nil {
		return nil, nil
	}

	song := &SongWithStream{Track: *track}
	if !withStream {
		return song, nil
	}

	videoID, err := o.matchOnYouTube(ctx, *track)
	if err != nil {
		o.degrade("get_song_by_url", "No YouTube equivalent for stream", err, zap.String("spotify_id", track.ID))
		return song, nil
	}

	streamURL, err := o.resolveURL(ctx, videoID)
	if err != nil {
		o.degrade("get_song_by_url", "Failed to get stream URL", err,
			zap.String("spotify_id", track.ID), zap.String("video_id", videoID))
		return song, nil
	}
	song.StreamURL = streamURL
	return song, nil
}

func (o *Orchestrator) youtubeSong(ctx context.Context, link musiclink.Link, withStream bool) *SongWithStream {
	if link.VideoID == "" {
		return nil
	}

	track := o.fetchYouTubeSong(ctx, link.VideoID)
	if track == nil {
		return nil
	}

	song := &SongWithStream{Track: *track}
	if !withStream {
		return song
	}

	streamURL, err := o.resolveURL(ctx, link.VideoID)
	if err != nil {
		o.degrade("get_song_by_url", "Failed to get stream URL", err, zap.String("video_id", link.VideoID))
		return song
	}
	song.StreamURL = streamURL
	return song
}

// fetchYouTubeSong tries the video lookup first, which covers videos and music tracks
// alike, and falls back to the song lookup. Both failing gives nil.
func (o *Orchestrator) fetchYouTubeSong(ctx context.Context, videoID string) *Track {
	start := time.Now()
	video, err := o.youtube.FetchVideo(ctx, videoID)
	o.observe(PlatformYouTube, "fetch_video", start, video != nil, err)
	if err == nil && video != nil {
		track := video.AsTrack()
		return &track
	}
	if err != nil {
		o.logger.Debug("Video lookup failed, trying song lookup", zap.String("video_id", videoID), zap.Error(err))
	}

	start = time.Now()
	track, err := o.youtube.FetchTrack(ctx, videoID)
	o.observe(PlatformYouTube, "fetch_track", start, track != nil, err)
	if err != nil {
		o.degrade("get_song_by_url", "Failed to get YouTube song", err, zap.String("video_id", videoID))
		return nil
	}
	if track == nil {
		o.logger.Info("YouTube song not found", zap.String("video_id", videoID))
	}
	return track
}

// GetSongsByPlaylist lists the tracks of a Spotify or YouTube playlist. Spotify albums give
// an empty list. Failures are logged and give an empty list.
func (o *Orchestrator) GetSongsByPlaylist(ctx context.Context, rawURL string) []Track {
	if rawURL == "" {
		return []Track{}
	}

	link, ok := o.detector.Detect(rawURL)
	if !ok {
		return []Track{}
	}

	switch link.Provider {
	case musiclink.ProviderSpotify:
		return o.spotifyPlaylistTracks(ctx, link)
	case musiclink.ProviderYouTube:
		return o.youtubePlaylistTracks(ctx, link)
	}
	return []Track{}
}

func (o *Orchestrator) spotifyPlaylistTracks(ctx context.Context, link musiclink.Link) []Track {
	if o.spotify == nil {
		o.degrade("get_songs_by_playlist", "Spotify playlist requested without Spotify client", ErrNotConfigured)
		return []Track{}
	}

	switch link.Kind {
	case musiclink.KindPlaylist:
		start := time.Now()
		playlist, err := o.spotify.FetchPlaylist(ctx, link.ID)
		o.observe(PlatformSpotify, "fetch_playlist", start, playlist != nil, err)
		if err != nil {
			o.degrade("get_songs_by_playlist", "Failed to get Spotify playlist", err, zap.String("playlist_id", link.ID))
			return []Track{}
		}
		if playlist == nil {
			return []Track{}
		}
		return nonNilTracks(playlist.Tracks)
	case musiclink.KindAlbum:
		o.logger.Debug("Album track listing is not supported", zap.String("album_id", link.ID))
		return []Track{}
	default:
		return []Track{}
	}
}

func (o *Orchestrator) youtubePlaylistTracks(ctx context.Context, link musiclink.Link) []Track {
	if link.PlaylistID == "" {
		return []Track{}
	}

	start := time.Now()
	playlist, err := o.youtube.FetchPlaylist(ctx, link.PlaylistID)
	o.observe(PlatformYouTube, "fetch_playlist", start, playlist != nil, err)
	if err != nil {
		o.degrade("get_songs_by_playlist", "Failed to get YouTube playlist", err,
			zap.String("playlist_id", link.PlaylistID))
		return []Track{}
	}
	if playlist == nil {
		return []Track{}
	}
	return nonNilTracks(playlist.Tracks)
}

// GetStreamURLByURL returns a direct audio URL for a track link or a *StageError naming
// the step that failed.
func (o *Orchestrator) GetStreamURLByURL(ctx context.Context, rawURL string) (string, error) {
	videoID, _, err := o.resolveVideoID(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return o.resolveURL(ctx, videoID)
}

// StreamSongByURL opens a live audio stream for a track link. The caller owns the stream
// and must drain or Close it.
func (o *Orchestrator) StreamSongByURL(ctx context.Context, rawURL string) (AudioStream, error) {
	videoID, _, err := o.resolveVideoID(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	stream, err := o.delegate.OpenAudioStream(ctx, videoID, o.config.DelegateArgs...)
	o.metrics.RecordDelegateCall(delegateModeStream, err)
	if err != nil {
		return nil, stageError(StageDelegateResolution, fmt.Errorf("%w: %w", ErrDelegateFailure, err))
	}
	return stream, nil
}

// DownloadSongByURL stores the audio of a track link under dir and, when a tagger is set,
// writes the song's metadata into the file. Tagging failures are logged only.
func (o *Orchestrator) DownloadSongByURL(ctx context.Context, rawURL, dir string) (string, error) {
	if o.downloader == nil {
		return "", fmt.Errorf("download: %w", ErrNotConfigured)
	}
	if dir == "" {
		return "", InvalidArgument("dir")
	}

	videoID, source, err := o.resolveVideoID(ctx, rawURL)
	if err != nil {
		return "", err
	}

	path, err := o.downloader.DownloadAudio(ctx, videoID, dir, o.config.DelegateArgs...)
	o.metrics.RecordDelegateCall(delegateModeDownload, err)
	if err != nil {
		return "", stageError(StageDelegateResolution, fmt.Errorf("%w: %w", ErrDelegateFailure, err))
	}

	if o.tagger == nil {
		return path, nil
	}
	if source == nil {
		source = o.fetchYouTubeSong(ctx, videoID)
	}
	if source != nil {
		if err := o.tagger.TagFile(path, *source); err != nil {
			o.degrade("download_song_by_url", "Failed to tag downloaded file", err, zap.String("path", path))
		}
	}
	return path, nil
}

// GetLyrics passes the query to the lyrics service. Not found is nil.
func (o *Orchestrator) GetLyrics(ctx context.Context, query LyricsQuery) (*Lyrics, error) {
	if o.lyrics == nil {
		return nil, fmt.Errorf("lyrics: %w", ErrNotConfigured)
	}
	start := time.Now()
	lyrics, err := o.lyrics.Get(ctx, query)
	o.observeProvider("lrclib", "get", start, lyrics != nil, err)
	return lyrics, err
}

// SearchLyrics returns every lyrics entry the service matches. None is nil.
func (o *Orchestrator) SearchLyrics(ctx context.Context, query LyricsQuery) ([]Lyrics, error) {
	if o.lyrics == nil {
		return nil, fmt.Errorf("lyrics: %w", ErrNotConfigured)
	}
	start := time.Now()
	results, err := o.lyrics.Search(ctx, query)
	o.observeProvider("lrclib", "search", start, len(results) > 0, err)
	return results, err
}

// resolveVideoID maps a track link to the YouTube video id the delegate should play.
// For Spotify links it also returns the source track.
func (o *Orchestrator) resolveVideoID(ctx context.Context, rawURL string) (string, *Track, error) {
	if rawURL == "" {
		return "", nil, InvalidArgument("url")
	}

	provider, ok := o.detector.ProviderOf(rawURL)
	if !ok {
		return "", nil, stageError(StageSourceFetch, fmt.Errorf("%w: %s", ErrUnsupportedURL, rawURL))
	}

	if provider == musiclink.ProviderYouTube {
		videoID := musiclink.VideoID(rawURL)
		if videoID == "" {
			return "", nil, stageError(StageSourceFetch, fmt.Errorf("%w: no video id in %s", ErrInvalidArgument, rawURL))
		}
		return videoID, nil, nil
	}

	source, err := o.spotifySource(ctx, rawURL)
	if err != nil {
		return "", nil, err
	}
	videoID, err := o.matchOnYouTube(ctx, *source)
	if err != nil {
		return "", nil, err
	}
	return videoID, source, nil
}

func (o *Orchestrator) spotifySource(ctx context.Context, rawURL string) (*Track, error) {
	if o.spotify == nil {
		return nil, stageError(StageSourceFetch, errSpotifyNotConfigured())
	}

	kind, id, ok := musiclink.ParseSpotify(rawURL)
	if !ok || kind != musiclink.KindTrack {
		return nil, stageError(StageSourceFetch, fmt.Errorf("%w: not a Spotify track link", ErrUnsupportedURL))
	}

	track, err := o.fetchSpotifyTrack(ctx, id)
	if err != nil {
		return nil, stageError(StageSourceFetch, err)
	}
	if track == nil {
		return nil, stageError(StageSourceFetch, fmt.Errorf("spotify track %s not found", id))
	}
	return track, nil
}

func (o *Orchestrator) fetchSpotifyTrack(ctx context.Context, id string) (*Track, error) {
	start := time.Now()
	track, err := o.spotify.FetchTrack(ctx, id)
	o.observe(PlatformSpotify, "fetch_track", start, track != nil, err)
	return track, err
}

// matchOnYouTube finds the YouTube video for a Spotify track by searching "<artist> - <title>"
// and letting the ranker choose.
func (o *Orchestrator) matchOnYouTube(ctx context.Context, source Track) (string, error) {
	if o.memo != nil && source.ID != "" {
		if videoID, ok := o.memo.Lookup(source.ID); ok {
			o.metrics.RecordCrossProvider(metrics.OutcomeMemo)
			return videoID, nil
		}
	}

	query := source.Artist + " - " + source.Title
	candidates, err := o.searchYouTube(ctx, query)
	if err != nil {
		return "", stageError(StageCrossProviderSearch, err)
	}

	match, ok := o.ranker.Pick(source, candidates)
	if !ok || match.ID == "" {
		o.metrics.RecordCrossProvider(metrics.OutcomeUnmatched)
		return "", stageError(StageCrossProviderSearch,
			fmt.Errorf("%w: %d candidates for %q", ErrUnresolvedCrossProvider, len(candidates), query))
	}

	o.metrics.RecordCrossProvider(metrics.OutcomeMatched)
	o.logger.Debug("Matched track on YouTube",
		zap.String("spotify_id", source.ID),
		zap.String("video_id", match.ID),
		zap.String("query", query))

	if o.memo != nil && source.ID != "" {
		o.memo.Remember(source.ID, match.ID)
	}
	return match.ID, nil
}

func (o *Orchestrator) searchYouTube(ctx context.Context, query string) ([]Track, error) {
	start := time.Now()
	tracks, err := o.youtube.SearchTracks(ctx, query)
	o.observe(PlatformYouTube, "search_tracks", start, len(tracks) > 0, err)
	if err != nil {
		return nil, err
	}
	return nonNilTracks(tracks), nil
}

func (o *Orchestrator) resolveURL(ctx context.Context, videoID string) (string, error) {
	streamURL, err := o.delegate.ResolveDirectURL(ctx, videoID, o.config.DelegateArgs...)
	if err == nil && streamURL == "" {
		err = errors.New("empty url")
	}
	o.metrics.RecordDelegateCall(delegateModeURL, err)
	if err != nil {
		return "", stageError(StageDelegateResolution, fmt.Errorf("%w: %w", ErrDelegateFailure, err))
	}
	return streamURL, nil
}

// degrade logs a failure a best-effort operation swallows.
func (o *Orchestrator) degrade(operation, msg string, err error, fields ...zap.Field) {
	o.metrics.RecordDegraded(operation)
	o.logger.Warn(msg, append(fields, zap.String("operation", operation), zap.Error(err))...)
}

func (o *Orchestrator) observe(platform Platform, operation string, start time.Time, found bool, err error) {
	o.observeProvider(string(platform), operation, start, found, err)
}

func (o *Orchestrator) observeProvider(provider, operation string, start time.Time, found bool, err error) {
	status := metrics.StatusOK
	switch {
	case err != nil:
		status = metrics.StatusError
	case !found:
		status = metrics.StatusNotFound
	}
	o.metrics.ObserveProviderCall(provider, operation, status, time.Since(start))
}

func errSpotifyNotConfigured() error {
	return NewProviderError(string(PlatformSpotify), "client not configured", 0, ErrNotConfigured)
}

func nonNilTracks(tracks []Track) []Track {
	if tracks == nil {
		return []Track{}
	}
	return tracks
}
