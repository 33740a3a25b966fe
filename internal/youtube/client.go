// Package youtube provides the YouTube and YouTube Music catalog adapter.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	kkyoutube "github.com/kkdai/youtube/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"tunebridge/internal/core"
)

const providerName = "youtube"

type Client struct {
	config     *core.YouTubeConfig
	logger     *zap.Logger
	httpClient *http.Client

	group   singleflight.Group
	mu      sync.RWMutex
	session *session
}

// session holds the HTTP clients built from the cookie file. api talks to the music
// innertube endpoint; web carries the cookies in a jar for the YouTube web endpoints.
type session struct {
	api          *http.Client
	cookieHeader string
	web          *http.Client
}

// videos returns a kkdai client for one call. kkdai clients mutate themselves lazily and
// are not shared between goroutines.
func (s *session) videos() *kkyoutube.Client {
	return &kkyoutube.Client{HTTPClient: s.web}
}

type Option func(*Client)

// WithHTTPClient sets the client whose transport and timeout every request uses.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(config *core.YouTubeConfig, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		config:     config,
		logger:     logger,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Warmup loads the cookies and builds the session ahead of the first call.
func (c *Client) Warmup(ctx context.Context) error {
	_, err := c.ensureReady(ctx)
	return err
}

// ensureReady returns the session, building it once; concurrent first callers share the work.
func (c *Client) ensureReady(_ context.Context) (*session, error) {
	c.mu.RLock()
	sess := c.session
	c.mu.RUnlock()
	if sess != nil {
		return sess, nil
	}

	v, err, _ := c.group.Do("session", func() (any, error) {
		c.mu.RLock()
		existing := c.session
		c.mu.RUnlock()
		if existing != nil {
			return existing, nil
		}

		sess, err := c.newSession()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.session = sess
		c.mu.Unlock()
		return sess, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*session), nil
}

func (c *Client) newSession() (*session, error) {
	var cookies []*http.Cookie
	if path := c.config.CookiesPath; path != "" {
		loaded, err := LoadCookieFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			c.logger.Warn("Cookie file not found, continuing without cookies", zap.String("path", path))
		case err != nil:
			return nil, core.NewProviderError(providerName, "failed to load cookies", 0, err)
		default:
			cookies = loaded
		}
	}

	jar, err := newCookieJar(cookies)
	if err != nil {
		return nil, core.NewProviderError(providerName, "failed to create cookie jar", 0, err)
	}

	withJar := &http.Client{
		Transport: c.httpClient.Transport,
		Timeout:   c.httpClient.Timeout,
		Jar:       jar,
	}

	c.logger.Info("YouTube session ready",
		zap.Int("cookies", len(cookies)),
		zap.String("hl", c.language()),
		zap.String("gl", c.location()))

	return &session{
		api:          c.httpClient,
		cookieHeader: cookieHeader(cookies),
		web:          withJar,
	}, nil
}

// FetchTrack looks a song up through the music player endpoint.
func (c *Client) FetchTrack(ctx context.Context, id string) (*core.Track, error) {
	if id == "" {
		return nil, core.InvalidArgument("video id")
	}

	sess, err := c.ensureReady(ctx)
	if err != nil {
		return nil, err
	}

	res, err := c.post(ctx, sess, endpointPlayer, map[string]string{"videoId": id})
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	song, ok := parsePlayer(res)
	if !ok {
		c.logger.Debug("Song unavailable",
			zap.String("video_id", id),
			zap.String("status", res.Get("playabilityStatus.status").String()))
		return nil, nil
	}

	track := FormatTrack(song)
	return &track, nil
}

// FetchVideo reads the metadata of any upload.
func (c *Client) FetchVideo(ctx context.Context, id string) (*core.Video, error) {
	if id == "" {
		return nil, core.InvalidArgument("video id")
	}

	sess, err := c.ensureReady(ctx)
	if err != nil {
		return nil, err
	}

	video, err := sess.videos().GetVideoContext(ctx, id)
	switch {
	case err == nil:
	case isUnavailable(err):
		c.logger.Debug("Video unavailable", zap.String("video_id", id), zap.Error(err))
		return nil, nil
	case video != nil && video.Title != "":
		// Metadata parsed but no stream formats came back.
		c.logger.Debug("Video has no usable formats", zap.String("video_id", id), zap.Error(err))
	default:
		return nil, core.NewProviderError(providerName, "get video failed", statusOfVideoErr(err), err)
	}

	result := FormatVideo(videoDetailsOf(video))
	return &result, nil
}

func (c *Client) FetchAlbum(ctx context.Context, id string) (*core.Album, error) {
	if id == "" {
		return nil, core.InvalidArgument("album id")
	}

	sess, err := c.ensureReady(ctx)
	if err != nil {
		return nil, err
	}

	res, err := c.post(ctx, sess, endpointBrowse, map[string]string{"browseId": id})
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	details, ok := parseAlbumPage(id, res)
	if !ok {
		return nil, nil
	}
	album := FormatAlbum(details)
	return &album, nil
}

func (c *Client) FetchArtist(ctx context.Context, id string) (*core.Artist, error) {
	if id == "" {
		return nil, core.InvalidArgument("artist id")
	}

	sess, err := c.ensureReady(ctx)
	if err != nil {
		return nil, err
	}

	res, err := c.post(ctx, sess, endpointBrowse, map[string]string{"browseId": id})
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	details, ok := parseArtistPage(id, res)
	if !ok {
		return nil, nil
	}
	artist := FormatArtist(details)
	return &artist, nil
}

// FetchPlaylist returns the playlist with every entry YouTube lists for it.
func (c *Client) FetchPlaylist(ctx context.Context, id string) (*core.Playlist, error) {
	if id == "" {
		return nil, core.InvalidArgument("playlist id")
	}

	sess, err := c.ensureReady(ctx)
	if err != nil {
		return nil, err
	}

	playlist, err := sess.videos().GetPlaylistContext(ctx, id)
	if err != nil {
		if isUnavailable(err) {
			c.logger.Debug("Playlist unavailable", zap.String("playlist_id", id), zap.Error(err))
			return nil, nil
		}
		return nil, core.NewProviderError(providerName, "get playlist failed", statusOfVideoErr(err), err)
	}

	result := FormatPlaylist(playlistDetailsOf(playlist))
	c.logger.Debug("Retrieved playlist",
		zap.String("playlist_id", id),
		zap.Int("tracks", len(result.Tracks)))
	return &result, nil
}

// Search runs one filtered search for a single kind, or the unfiltered search when several
// kinds are requested. Totals are the number of materialized items.
func (c *Client) Search(ctx context.Context, query string, kinds ...core.SearchKind) (*core.SearchResults, error) {
	if strings.TrimSpace(query) == "" {
		return nil, core.InvalidArgument("query")
	}
	if len(kinds) == 0 {
		return nil, core.InvalidArgument("search kinds")
	}

	wanted := make(map[itemKind]bool, len(kinds))
	for _, kind := range kinds {
		ik, ok := kindOf(kind)
		if !ok {
			return nil, fmt.Errorf("%w: unknown search kind %q", core.ErrInvalidArgument, kind)
		}
		wanted[ik] = true
	}

	sess, err := c.ensureReady(ctx)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{"query": query}
	forced := kindUnknown
	if len(wanted) == 1 {
		for ik := range wanted {
			forced = ik
		}
		fields["params"] = searchParams[forced]
	}

	res, err := c.post(ctx, sess, endpointSearch, fields)
	if errors.Is(err, errNotFound) {
		return core.NewSearchResults(), nil
	}
	if err != nil {
		return nil, err
	}

	results := core.NewSearchResults()
	for _, item := range parseSearch(res, forced) {
		if !wanted[item.kind] {
			continue
		}
		switch item.kind {
		case kindSong:
			results.Tracks = append(results.Tracks, FormatTrack(item.song))
		case kindVideo:
			results.Videos = append(results.Videos, FormatVideo(item.video))
		case kindAlbum:
			results.Albums = append(results.Albums, FormatAlbum(item.album))
		case kindArtist:
			results.Artists = append(results.Artists, FormatArtist(item.artist))
		case kindPlaylist:
			results.Playlists = append(results.Playlists, FormatPlaylist(item.playlist))
		}
	}
	results.TracksTotal = len(results.Tracks)
	results.VideosTotal = len(results.Videos)
	results.AlbumsTotal = len(results.Albums)
	results.ArtistsTotal = len(results.Artists)
	results.PlaylistsTotal = len(results.Playlists)
	return results, nil
}

func (c *Client) SearchTracks(ctx context.Context, query string) ([]core.Track, error) {
	results, err := c.Search(ctx, query, core.SearchTracks)
	if err != nil {
		return nil, err
	}
	return results.Tracks, nil
}

func kindOf(kind core.SearchKind) (itemKind, bool) {
	switch kind {
	case core.SearchTracks:
		return kindSong, true
	case core.SearchVideos:
		return kindVideo, true
	case core.SearchAlbums:
		return kindAlbum, true
	case core.SearchArtists:
		return kindArtist, true
	case core.SearchPlaylists:
		return kindPlaylist, true
	}
	return kindUnknown, false
}

// isUnavailable reports errors that mean the video or playlist does not exist or cannot be seen.
func isUnavailable(err error) bool {
	switch {
	case errors.Is(err, kkyoutube.ErrVideoPrivate),
		errors.Is(err, kkyoutube.ErrLoginRequired),
		errors.Is(err, kkyoutube.ErrNotPlayableInEmbed),
		errors.Is(err, kkyoutube.ErrInvalidPlaylist),
		errors.Is(err, kkyoutube.ErrInvalidCharactersInVideoID),
		errors.Is(err, kkyoutube.ErrVideoIDMinLength):
		return true
	}

	var playability *kkyoutube.ErrPlayabiltyStatus
	if errors.As(err, &playability) {
		return true
	}
	var playlistStatus kkyoutube.ErrPlaylistStatus
	if errors.As(err, &playlistStatus) {
		return true
	}

	status := statusOfVideoErr(err)
	return status == http.StatusNotFound || status == http.StatusBadRequest
}

func statusOfVideoErr(err error) int {
	var status kkyoutube.ErrUnexpectedStatusCode
	if errors.As(err, &status) {
		return int(status)
	}
	return 0
}

func videoDetailsOf(v *kkyoutube.Video) VideoDetails {
	details := VideoDetails{
		VideoID:    v.ID,
		Name:       v.Title,
		Duration:   int(v.Duration.Seconds()),
		Thumbnails: thumbnailsOf(v.Thumbnails),
	}
	if v.Author != "" {
		details.Author = &ArtistBasic{ArtistID: v.ChannelID, Name: v.Author}
	}
	return details
}

func playlistDetailsOf(p *kkyoutube.Playlist) PlaylistDetails {
	details := PlaylistDetails{
		PlaylistID: p.ID,
		Name:       p.Title,
		VideoCount: len(p.Videos),
		Songs:      make([]SongDetails, 0, len(p.Videos)),
	}
	if p.Author != "" {
		details.Author = &ArtistBasic{Name: p.Author}
	}
	for _, entry := range p.Videos {
		if entry == nil || entry.ID == "" {
			continue
		}
		song := SongDetails{
			VideoID:    entry.ID,
			Name:       entry.Title,
			Duration:   int(entry.Duration.Seconds()),
			Thumbnails: thumbnailsOf(entry.Thumbnails),
		}
		if entry.Author != "" {
			song.Artist = &ArtistBasic{Name: entry.Author}
		}
		details.Songs = append(details.Songs, song)
	}
	if len(details.Songs) > 0 {
		details.Thumbnails = details.Songs[0].Thumbnails
	}
	return details
}

func thumbnailsOf(list kkyoutube.Thumbnails) []Thumbnail {
	thumbnails := make([]Thumbnail, 0, len(list))
	for _, t := range list {
		thumbnails = append(thumbnails, Thumbnail{URL: t.URL, Width: int(t.Width), Height: int(t.Height)})
	}
	return thumbnails
}

func (c *Client) language() string {
	if c.config.Language == "" {
		return core.DefaultConfig().YouTube.Language
	}
	return c.config.Language
}

func (c *Client) location() string {
	if c.config.Location == "" {
		return core.DefaultConfig().YouTube.Location
	}
	return c.config.Location
}

func (c *Client) musicAPIURL() string {
	base := c.config.MusicAPIURL
	if base == "" {
		base = core.DefaultConfig().YouTube.MusicAPIURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}
