// Package tunebridge resolves music links and queries across Spotify and YouTube Music,
// turns tracks into playable audio through yt-dlp and looks up lyrics on LRCLib.
package tunebridge

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tunebridge/internal/config"
	"tunebridge/internal/core"
	"tunebridge/internal/lyrics"
	"tunebridge/internal/metrics"
	"tunebridge/internal/spotify"
	"tunebridge/internal/store"
	"tunebridge/internal/tagger"
	"tunebridge/internal/youtube"
	"tunebridge/internal/ytdlp"
	"tunebridge/pkg/musiclink"
)

type (
	Config         = core.Config
	Platform       = core.Platform
	SearchKind     = core.SearchKind
	Image          = core.Image
	Track          = core.Track
	Album          = core.Album
	Artist         = core.Artist
	ArtistCredit   = core.ArtistCredit
	Playlist       = core.Playlist
	Video          = core.Video
	SearchResults  = core.SearchResults
	SearchOptions  = core.SearchOptions
	Lyrics         = core.Lyrics
	SyncedLine     = core.SyncedLine
	LyricsQuery    = core.LyricsQuery
	SongWithStream = core.SongWithStream
	AudioStream    = core.AudioStream
	ProviderError  = core.ProviderError
	StageError     = core.StageError
	Stage          = core.Stage
	Link           = musiclink.Link
	LinePosition   = lyrics.LinePosition
	LogConfig      = core.LogConfig
	ConfigOptions  = config.Options
)

const (
	PlatformSpotify = core.PlatformSpotify
	PlatformYouTube = core.PlatformYouTube
)

var (
	ErrInvalidArgument         = core.ErrInvalidArgument
	ErrNotConfigured           = core.ErrNotConfigured
	ErrUnsupportedURL          = core.ErrUnsupportedURL
	ErrUnresolvedCrossProvider = core.ErrUnresolvedCrossProvider
	ErrDelegateFailure         = core.ErrDelegateFailure
)

// matchFalsePositiveRate sizes the Bloom filter in front of the match memo.
const matchFalsePositiveRate = 0.01

// DefaultConfig returns the configuration New uses for a nil config.
func DefaultConfig() *Config {
	return core.DefaultConfig()
}

// LoadConfig reads the configuration from the environment (TUNEBRIDGE_*), a .env file and
// an optional config file, in that order of precedence over the defaults.
func LoadConfig(opts ConfigOptions) (*Config, error) {
	return config.Load(opts)
}

// NewLogger builds a stdout logger and, when cfg.File is set, a rotating file sink.
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	return config.BuildLogger(cfg)
}

// CurrentLine finds the synced line playing at offsetMs and the line after it.
func CurrentLine(lines []SyncedLine, offsetMs int) (LinePosition, bool) {
	return lyrics.CurrentLine(lines, offsetMs)
}

// Client is the entry point. Every method is safe for concurrent use.
type Client struct {
	*core.Orchestrator

	config   *Config
	logger   *zap.Logger
	spotify  *spotify.Client
	youtube  *youtube.Client
	lyrics   *lyrics.Client
	ytdlp    *ytdlp.Client
	delegate core.StreamDelegate
	memo     *store.MatchStore
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	detector *musiclink.Detector
}

type Option func(*options)

type options struct {
	registerer prometheus.Registerer
	httpClient *http.Client
}

// WithRegisterer registers the metrics with reg instead of a private registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithHTTPClient routes every catalog, lyrics and release request through hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// New wires the adapters, the stream delegate and the orchestrator. Sessions are created
// lazily on first use; call Warmup to create them ahead of time. A nil logger is built from
// cfg.Log.
func New(cfg *Config, logger *zap.Logger, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		built, err := config.BuildLogger(cfg.Log)
		if err != nil {
			return nil, fmt.Errorf("failed to build logger: %w", err)
		}
		logger = built
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{
		config:   cfg,
		logger:   logger,
		detector: musiclink.NewDetector(),
	}

	if cfg.Metrics.Enabled {
		reg := o.registerer
		if reg == nil {
			registry := prometheus.NewRegistry()
			reg, c.gatherer = registry, registry
		} else if g, ok := reg.(prometheus.Gatherer); ok {
			c.gatherer = g
		}
		m, err := metrics.New(cfg.Metrics.Namespace, reg)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		c.metrics = m
	}

	var ytOpts []youtube.Option
	var lyricsOpts []lyrics.Option
	var spotifyOpts []spotify.Option
	var ytdlpOpts []ytdlp.Option
	var taggerOpts []tagger.Option
	if o.httpClient != nil {
		ytOpts = append(ytOpts, youtube.WithHTTPClient(o.httpClient))
		lyricsOpts = append(lyricsOpts, lyrics.WithHTTPClient(o.httpClient))
		spotifyOpts = append(spotifyOpts, spotify.WithHTTPClient(o.httpClient))
		ytdlpOpts = append(ytdlpOpts, ytdlp.WithHTTPClient(o.httpClient))
		taggerOpts = append(taggerOpts, tagger.WithHTTPClient(o.httpClient))
	}

	c.youtube = youtube.NewClient(&cfg.YouTube, logger.Named("youtube"), ytOpts...)
	c.lyrics = lyrics.NewClient(&cfg.Lyrics, logger.Named("lyrics"), lyricsOpts...)
	c.ytdlp = ytdlp.New(&cfg.YTDLP, logger.Named("ytdlp"), ytdlpOpts...)

	// A nil *spotify.Client must not reach the orchestrator as a non-nil interface.
	var spotifyCatalog core.SpotifyCatalog
	if cfg.Spotify.Enabled() {
		c.spotify = spotify.NewClient(&cfg.Spotify, logger.Named("spotify"), spotifyOpts...)
		spotifyCatalog = c.spotify
	} else {
		logger.Info("Spotify credentials not set, Spotify links are disabled")
	}

	switch cfg.Stream.Backend {
	case core.StreamBackendNative:
		c.delegate = youtube.NewNativeStreamer(c.youtube, logger.Named("stream"))
	default:
		c.delegate = c.ytdlp
	}

	orchestratorOpts := []core.Option{
		core.WithMetrics(c.metrics),
		core.WithDownloader(c.ytdlp),
	}
	if cfg.Download.Tag {
		orchestratorOpts = append(orchestratorOpts, core.WithTagger(tagger.New(logger.Named("tagger"), taggerOpts...)))
	}
	if cfg.Resolve.MatchCacheSize > 0 {
		c.memo = store.NewMatchStore(cfg.Resolve.MatchCacheSize, matchFalsePositiveRate)
		orchestratorOpts = append(orchestratorOpts, core.WithMatchMemo(c.memo))
	}

	c.Orchestrator = core.NewOrchestrator(
		&cfg.Resolve,
		spotifyCatalog,
		c.youtube,
		c.lyrics,
		c.delegate,
		logger.Named("orchestrator"),
		orchestratorOpts...,
	)

	logger.Info("tunebridge ready",
		zap.Bool("spotify", c.spotify != nil),
		zap.String("stream_backend", cfg.Stream.Backend),
		zap.String("ranker", cfg.Resolve.Ranker),
		zap.Int("match_cache_size", cfg.Resolve.MatchCacheSize))

	return c, nil
}

type warmer interface {
	Warmup(ctx context.Context) error
}

// Warmup creates the catalog sessions and installs the stream delegate in parallel.
func (c *Client) Warmup(ctx context.Context) error {
	targets := map[string]warmer{"youtube": c.youtube}
	if c.spotify != nil {
		targets["spotify"] = c.spotify
	}
	if w, ok := c.delegate.(warmer); ok {
		targets["stream"] = w
	}

	g, gctx := errgroup.WithContext(ctx)
	for name, target := range targets {
		g.Go(func() error {
			if err := target.Warmup(gctx); err != nil {
				return fmt.Errorf("%s warmup: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// DownloadSongByURL downloads into dir, or into the configured download dir when dir is empty.
func (c *Client) DownloadSongByURL(ctx context.Context, rawURL, dir string) (string, error) {
	if dir == "" {
		dir = c.config.Download.Dir
	}
	return c.Orchestrator.DownloadSongByURL(ctx, rawURL, dir)
}

// Detect classifies a link without any network access.
func (c *Client) Detect(rawURL string) (Link, bool) {
	return c.detector.Detect(rawURL)
}

// Spotify returns the catalog-A adapter, or nil when no credentials are configured.
func (c *Client) Spotify() *spotify.Client { return c.spotify }

func (c *Client) YouTube() *youtube.Client { return c.youtube }

func (c *Client) Lyrics() *lyrics.Client { return c.lyrics }

// Delegate is the configured stream backend.
func (c *Client) Delegate() core.StreamDelegate { return c.delegate }

// Gatherer exposes the metrics for scraping. Nil when metrics are disabled or the
// registerer passed to New is not a gatherer.
func (c *Client) Gatherer() prometheus.Gatherer { return c.gatherer }

// MetricsHandler serves the metrics in the Prometheus exposition format. Without a gatherer
// it answers 404.
func (c *Client) MetricsHandler() http.Handler {
	if c.gatherer == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{
		ErrorLog:      zap.NewStdLog(c.logger),
		ErrorHandling: promhttp.ContinueOnError,
	})
}
