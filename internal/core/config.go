package core

import (
	"fmt"
	"time"
)

// Ranker names accepted by ResolveConfig.Ranker.
const (
	RankerFirst      = "first"
	RankerSimilarity = "similarity"
)

// Stream backends accepted by StreamConfig.Backend.
const (
	StreamBackendYTDLP  = "ytdlp"
	StreamBackendNative = "native"
)

const (
	DefaultSpotifyMarket      = "VN"
	DefaultSpotifySearchLimit = 20
	DefaultYTDLPUpdateEvery   = 7 * 24 * time.Hour
	DefaultURLTimeout         = 120 * time.Second
	DefaultBinaryFetchTimeout = 30 * time.Second
)

type Config struct {
	Spotify  SpotifyConfig
	YouTube  YouTubeConfig
	Lyrics   LyricsConfig
	YTDLP    YTDLPConfig
	Stream   StreamConfig
	Resolve  ResolveConfig
	Download DownloadConfig
	Log      LogConfig
	Metrics  MetricsConfig
}

// SpotifyConfig leaves the adapter disabled while ClientID or ClientSecret is empty.
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	APIBaseURL   string
	Market       string
	SearchLimit  int
}

// Enabled reports whether client credentials are present.
func (c SpotifyConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type YouTubeConfig struct {
	Language    string // hl
	Location    string // gl
	CookiesPath string // Netscape cookie file
	MusicAPIURL string
}

type LyricsConfig struct {
	BaseURL string
	Timeout time.Duration
}

type YTDLPConfig struct {
	BinaryPath   string // Skips the managed download when set.
	BinDir       string
	ReleaseURL   string
	AutoUpdate   bool
	UpdateEvery  time.Duration
	FetchTimeout time.Duration
	URLTimeout   time.Duration
	CookiesPath  string
	UserAgent    string
	Referer      string
	Proxy        string
	ExtraArgs    []string
}

type StreamConfig struct {
	Backend string
}

type ResolveConfig struct {
	Ranker         string
	MinScore       float64
	MatchCacheSize int
	DelegateArgs   []string // Appended to every delegate call.
}

type DownloadConfig struct {
	Dir string
	Tag bool
}

type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type MetricsConfig struct {
	Enabled   bool
	Namespace string
}

func DefaultConfig() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			TokenURL:    "https://accounts.spotify.com/api/token",
			APIBaseURL:  "https://api.spotify.com/v1/",
			Market:      DefaultSpotifyMarket,
			SearchLimit: DefaultSpotifySearchLimit,
		},
		YouTube: YouTubeConfig{
			Language:    "en",
			Location:    "US",
			MusicAPIURL: "https://music.youtube.com/youtubei/v1/",
		},
		Lyrics: LyricsConfig{
			BaseURL: "https://lrclib.net/api",
			Timeout: 15 * time.Second,
		},
		YTDLP: YTDLPConfig{
			ReleaseURL:   "https://api.github.com/repos/yt-dlp/yt-dlp/releases/latest",
			AutoUpdate:   true,
			UpdateEvery:  DefaultYTDLPUpdateEvery,
			FetchTimeout: DefaultBinaryFetchTimeout,
			URLTimeout:   DefaultURLTimeout,
		},
		Stream: StreamConfig{
			Backend: StreamBackendYTDLP,
		},
		Resolve: ResolveConfig{
			Ranker:       RankerFirst,
			MinScore:     0.6,
			DelegateArgs: []string{"--force-ipv4"},
		},
		Download: DownloadConfig{
			Tag: true,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "tunebridge",
		},
	}
}

// Validate rejects settings no component can work with.
func (c *Config) Validate() error {
	if c.Spotify.SearchLimit < 0 {
		return fmt.Errorf("%w: spotify search limit must not be negative", ErrInvalidArgument)
	}
	if c.Resolve.MatchCacheSize < 0 {
		return fmt.Errorf("%w: match cache size must not be negative", ErrInvalidArgument)
	}
	if c.Resolve.MinScore < 0 || c.Resolve.MinScore > 1 {
		return fmt.Errorf("%w: min score must be within [0, 1]", ErrInvalidArgument)
	}
	switch c.Resolve.Ranker {
	case RankerFirst, RankerSimilarity:
	default:
		return fmt.Errorf("%w: unknown ranker %q", ErrInvalidArgument, c.Resolve.Ranker)
	}
	switch c.Stream.Backend {
	case StreamBackendYTDLP, StreamBackendNative:
	default:
		return fmt.Errorf("%w: unknown stream backend %q", ErrInvalidArgument, c.Stream.Backend)
	}
	if c.YTDLP.URLTimeout < 0 || c.YTDLP.FetchTimeout < 0 || c.YTDLP.UpdateEvery < 0 {
		return fmt.Errorf("%w: yt-dlp timeouts must not be negative", ErrInvalidArgument)
	}
	return nil
}
