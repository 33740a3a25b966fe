// Package spotify provides the Spotify Web API catalog adapter.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"

	"tunebridge/internal/core"
	"tunebridge/pkg/musiclink"
)

const (
	providerName = "spotify"

	// expiryMargin renews the token this long before Spotify would reject it.
	expiryMargin = 60 * time.Second
	// defaultTokenLifetime is assumed when the token response carries no expiry.
	defaultTokenLifetime = time.Hour
)

type Client struct {
	config     *core.SpotifyConfig
	logger     *zap.Logger
	httpClient *http.Client

	group   singleflight.Group
	mu      sync.RWMutex
	session *session
}

type session struct {
	api       *spotify.Client
	expiresAt time.Time
}

type Option func(*Client)

// WithHTTPClient sets the client used for the token and API requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(config *core.SpotifyConfig, logger *zap.Logger, opts ...Option) *Client {
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

// Warmup establishes the session ahead of the first call.
func (c *Client) Warmup(ctx context.Context) error {
	_, err := c.ensureReady(ctx)
	return err
}

// ensureReady returns the API client of a live session, authenticating when there is none.
// Concurrent callers share one token request.
func (c *Client) ensureReady(ctx context.Context) (*spotify.Client, error) {
	if api := c.current(); api != nil {
		return api, nil
	}

	v, err, _ := c.group.Do("session", func() (any, error) {
		if api := c.current(); api != nil {
			return api, nil
		}
		return c.authenticate(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return v.(*spotify.Client), nil
}

func (c *Client) current() *spotify.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.session == nil || !time.Now().Before(c.session.expiresAt) {
		return nil
	}
	return c.session.api
}

func (c *Client) authenticate(ctx context.Context) (*spotify.Client, error) {
	if c.config.ClientID == "" || c.config.ClientSecret == "" {
		return nil, core.NewProviderError(providerName, "client credentials missing", 0, core.ErrNotConfigured)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	credentials := clientcredentials.Config{
		ClientID:     c.config.ClientID,
		ClientSecret: c.config.ClientSecret,
		TokenURL:     c.config.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	token, err := credentials.Token(ctx)
	if err != nil {
		status := 0
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			status = re.Response.StatusCode
		}
		return nil, core.NewProviderError(providerName, "failed to authorize", status, err)
	}

	expiresAt := token.Expiry
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(defaultTokenLifetime)
	}
	expiresAt = expiresAt.Add(-expiryMargin)

	api := spotify.New(
		oauth2.NewClient(ctx, oauth2.StaticTokenSource(token)),
		spotify.WithBaseURL(c.apiBaseURL()),
	)

	c.mu.Lock()
	c.session = &session{api: api, expiresAt: expiresAt}
	c.mu.Unlock()

	c.logger.Info("Authenticated with Spotify", zap.Time("expires_at", expiresAt))
	return api, nil
}

// invalidate drops the session if it still belongs to api, so a concurrent renewal is kept.
func (c *Client) invalidate(api *spotify.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil && c.session.api == api {
		c.session = nil
	}
}

func (c *Client) apiBaseURL() string {
	base := c.config.APIBaseURL
	if base == "" {
		base = core.DefaultConfig().Spotify.APIBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

// call runs fn against a live session. A 401 renews the session and retries once.
// A 404 yields the zero value without error.
func call[T any](ctx context.Context, c *Client, operation string, fn func(*spotify.Client) (T, error)) (T, error) {
	var zero T

	api, err := c.ensureReady(ctx)
	if err != nil {
		return zero, err
	}

	result, err := fn(api)
	if statusOf(err) == http.StatusUnauthorized {
		c.logger.Info("Spotify rejected the token, re-authenticating", zap.String("operation", operation))
		c.invalidate(api)

		if api, err = c.ensureReady(ctx); err != nil {
			return zero, err
		}
		result, err = fn(api)
	}

	if err != nil {
		status := statusOf(err)
		if status == http.StatusNotFound {
			return zero, nil
		}
		return zero, core.NewProviderError(providerName, operation+" failed", status, err)
	}
	return result, nil
}

func statusOf(err error) int {
	var se spotify.Error
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

func (c *Client) FetchTrack(ctx context.Context, id string) (*core.Track, error) {
	if id == "" {
		return nil, core.InvalidArgument("track id")
	}

	track, err := call(ctx, c, "get track", func(api *spotify.Client) (*spotify.FullTrack, error) {
		return api.GetTrack(ctx, spotify.ID(id), spotify.Market(c.market()))
	})
	if err != nil || track == nil {
		return nil, err
	}

	result := FormatTrack(track)
	return &result, nil
}

func (c *Client) FetchAlbum(ctx context.Context, id string) (*core.Album, error) {
	if id == "" {
		return nil, core.InvalidArgument("album id")
	}

	album, err := call(ctx, c, "get album", func(api *spotify.Client) (*spotify.FullAlbum, error) {
		return api.GetAlbum(ctx, spotify.ID(id), spotify.Market(c.market()))
	})
	if err != nil || album == nil {
		return nil, err
	}

	result := FormatAlbum(album)
	return &result, nil
}

// FetchPlaylist returns the playlist with the tracks of its first page; Total is the
// playlist's full size.
func (c *Client) FetchPlaylist(ctx context.Context, id string) (*core.Playlist, error) {
	if id == "" {
		return nil, core.InvalidArgument("playlist id")
	}

	playlist, err := call(ctx, c, "get playlist", func(api *spotify.Client) (*spotify.FullPlaylist, error) {
		return api.GetPlaylist(ctx, spotify.ID(id), spotify.Market(c.market()))
	})
	if err != nil || playlist == nil {
		return nil, err
	}

	result := FormatPlaylist(playlist)
	c.logger.Debug("Retrieved playlist",
		zap.String("playlist_id", id),
		zap.Int("tracks", len(result.Tracks)),
		zap.Int("total", result.Total))
	return &result, nil
}

func (c *Client) FetchArtist(ctx context.Context, id string) (*core.Artist, error) {
	if id == "" {
		return nil, core.InvalidArgument("artist id")
	}

	artist, err := call(ctx, c, "get artist", func(api *spotify.Client) (*spotify.FullArtist, error) {
		return api.GetArtist(ctx, spotify.ID(id))
	})
	if err != nil || artist == nil {
		return nil, err
	}

	result := FormatArtist(artist)
	return &result, nil
}

// Search queries the catalog for the given kinds. Zero option fields take the configured
// market and limit and offset 0.
func (c *Client) Search(ctx context.Context, query string, kinds []core.SearchKind, opts core.SearchOptions) (*core.SearchResults, error) {
	if strings.TrimSpace(query) == "" {
		return nil, core.InvalidArgument("query")
	}

	searchType, err := searchTypeOf(kinds)
	if err != nil {
		return nil, err
	}

	market := opts.Market
	if market == "" {
		market = c.market()
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = c.searchLimit()
	}

	result, err := call(ctx, c, "search", func(api *spotify.Client) (*spotify.SearchResult, error) {
		return api.Search(ctx, query, searchType,
			spotify.Market(market), spotify.Limit(limit), spotify.Offset(max(opts.Offset, 0)))
	})
	if err != nil {
		return nil, err
	}

	return FormatSearchResults(result, kinds), nil
}

func searchTypeOf(kinds []core.SearchKind) (spotify.SearchType, error) {
	if len(kinds) == 0 {
		return 0, core.InvalidArgument("search kinds")
	}

	var st spotify.SearchType
	for _, kind := range kinds {
		switch kind {
		case core.SearchTracks:
			st |= spotify.SearchTypeTrack
		case core.SearchAlbums:
			st |= spotify.SearchTypeAlbum
		case core.SearchArtists:
			st |= spotify.SearchTypeArtist
		case core.SearchPlaylists:
			st |= spotify.SearchTypePlaylist
		default:
			return 0, fmt.Errorf("%w: search kind %q is not available on Spotify", core.ErrInvalidArgument, kind)
		}
	}
	return st, nil
}

func (c *Client) SearchTracks(ctx context.Context, query string, opts core.SearchOptions) ([]core.Track, error) {
	results, err := c.Search(ctx, query, []core.SearchKind{core.SearchTracks}, opts)
	if err != nil {
		return nil, err
	}
	return results.Tracks, nil
}

func (c *Client) SearchAlbums(ctx context.Context, query string, opts core.SearchOptions) ([]core.Album, error) {
	results, err := c.Search(ctx, query, []core.SearchKind{core.SearchAlbums}, opts)
	if err != nil {
		return nil, err
	}
	return results.Albums, nil
}

func (c *Client) SearchArtists(ctx context.Context, query string, opts core.SearchOptions) ([]core.Artist, error) {
	results, err := c.Search(ctx, query, []core.SearchKind{core.SearchArtists}, opts)
	if err != nil {
		return nil, err
	}
	return results.Artists, nil
}

func (c *Client) SearchPlaylists(ctx context.Context, query string, opts core.SearchOptions) ([]core.Playlist, error) {
	results, err := c.Search(ctx, query, []core.SearchKind{core.SearchPlaylists}, opts)
	if err != nil {
		return nil, err
	}
	return results.Playlists, nil
}

// URLContents is what a Spotify link resolves to. Album links only carry the album name.
type URLContents struct {
	Tracks     []core.Track
	IsPlaylist bool
	Name       string
}

// FetchFromURL resolves a track, playlist or album link. Links without an id give nil.
func (c *Client) FetchFromURL(ctx context.Context, rawURL string) (*URLContents, error) {
	kind, id, ok := musiclink.ParseSpotify(rawURL)
	if !ok {
		return nil, nil
	}

	switch kind {
	case musiclink.KindTrack:
		track, err := c.FetchTrack(ctx, id)
		if err != nil || track == nil {
			return nil, err
		}
		return &URLContents{Tracks: []core.Track{*track}}, nil
	case musiclink.KindPlaylist:
		playlist, err := c.FetchPlaylist(ctx, id)
		if err != nil || playlist == nil {
			return nil, err
		}
		return &URLContents{Tracks: playlist.Tracks, IsPlaylist: true, Name: playlist.Name}, nil
	case musiclink.KindAlbum:
		album, err := c.FetchAlbum(ctx, id)
		if err != nil || album == nil {
			return nil, err
		}
		return &URLContents{Tracks: []core.Track{}, IsPlaylist: true, Name: album.Name}, nil
	}
	return nil, nil
}

func (c *Client) market() string {
	if c.config.Market == "" {
		return core.DefaultSpotifyMarket
	}
	return c.config.Market
}

func (c *Client) searchLimit() int {
	if c.config.SearchLimit <= 0 {
		return core.DefaultSpotifySearchLimit
	}
	return c.config.SearchLimit
}
