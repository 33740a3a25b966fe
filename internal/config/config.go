// Package config loads core.Config from the environment, a .env file and an optional
// config file, and builds the process logger.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"tunebridge/internal/core"
)

// EnvPrefix prefixes every environment variable, e.g. TUNEBRIDGE_SPOTIFY_CLIENT_ID.
const EnvPrefix = "TUNEBRIDGE"

const defaultEnvFile = ".env"

type Options struct {
	// EnvFile defaults to .env. A missing file is not an error.
	EnvFile string
	// ConfigFile is read when set; yaml, toml and json are picked by extension.
	ConfigFile string
}

// Load builds the configuration. Precedence is environment, then config file, then defaults.
func Load(opts Options) (*core.Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = defaultEnvFile
	}
	if err := gotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	setDefaults(v, core.DefaultConfig())

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigFile, err)
		}
	}

	cfg := buildConfig(v)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *core.Config) {
	v.SetDefault("spotify-token-url", d.Spotify.TokenURL)
	v.SetDefault("spotify-api-base-url", d.Spotify.APIBaseURL)
	v.SetDefault("spotify-market", d.Spotify.Market)
	v.SetDefault("spotify-search-limit", d.Spotify.SearchLimit)

	v.SetDefault("youtube-language", d.YouTube.Language)
	v.SetDefault("youtube-location", d.YouTube.Location)
	v.SetDefault("youtube-music-api-url", d.YouTube.MusicAPIURL)

	v.SetDefault("lyrics-base-url", d.Lyrics.BaseURL)
	v.SetDefault("lyrics-timeout", d.Lyrics.Timeout)

	v.SetDefault("ytdlp-release-url", d.YTDLP.ReleaseURL)
	v.SetDefault("ytdlp-auto-update", d.YTDLP.AutoUpdate)
	v.SetDefault("ytdlp-update-every", d.YTDLP.UpdateEvery)
	v.SetDefault("ytdlp-fetch-timeout", d.YTDLP.FetchTimeout)
	v.SetDefault("ytdlp-url-timeout", d.YTDLP.URLTimeout)

	v.SetDefault("stream-backend", d.Stream.Backend)

	v.SetDefault("resolve-ranker", d.Resolve.Ranker)
	v.SetDefault("resolve-min-score", d.Resolve.MinScore)
	v.SetDefault("resolve-match-cache-size", d.Resolve.MatchCacheSize)
	v.SetDefault("resolve-delegate-args", d.Resolve.DelegateArgs)

	v.SetDefault("download-tag", d.Download.Tag)

	v.SetDefault("log-level", d.Log.Level)
	v.SetDefault("log-format", d.Log.Format)
	v.SetDefault("log-max-size-mb", d.Log.MaxSizeMB)
	v.SetDefault("log-max-backups", d.Log.MaxBackups)
	v.SetDefault("log-max-age-days", d.Log.MaxAgeDays)

	v.SetDefault("metrics-enabled", d.Metrics.Enabled)
	v.SetDefault("metrics-namespace", d.Metrics.Namespace)
}

func buildConfig(v *viper.Viper) *core.Config {
	cfg := core.DefaultConfig()

	configureSpotify(v, cfg)
	configureYouTube(v, cfg)
	configureYTDLP(v, cfg)
	configureResolve(v, cfg)
	configureLog(v, cfg)

	cfg.Lyrics.BaseURL = v.GetString("lyrics-base-url")
	cfg.Lyrics.Timeout = v.GetDuration("lyrics-timeout")
	cfg.Stream.Backend = v.GetString("stream-backend")
	cfg.Download.Dir = v.GetString("download-dir")
	cfg.Download.Tag = v.GetBool("download-tag")
	cfg.Metrics.Enabled = v.GetBool("metrics-enabled")
	cfg.Metrics.Namespace = v.GetString("metrics-namespace")

	return cfg
}

func configureSpotify(v *viper.Viper, cfg *core.Config) {
	cfg.Spotify.ClientID = v.GetString("spotify-client-id")
	cfg.Spotify.ClientSecret = v.GetString("spotify-client-secret")
	cfg.Spotify.TokenURL = v.GetString("spotify-token-url")
	cfg.Spotify.APIBaseURL = v.GetString("spotify-api-base-url")
	cfg.Spotify.Market = v.GetString("spotify-market")
	if cfg.Spotify.Market == "" {
		cfg.Spotify.Market = core.DefaultSpotifyMarket
	}
	cfg.Spotify.SearchLimit = v.GetInt("spotify-search-limit")
}

func configureYouTube(v *viper.Viper, cfg *core.Config) {
	cfg.YouTube.Language = v.GetString("youtube-language")
	cfg.YouTube.Location = v.GetString("youtube-location")
	cfg.YouTube.CookiesPath = v.GetString("youtube-cookies-path")
	cfg.YouTube.MusicAPIURL = v.GetString("youtube-music-api-url")
}

func configureYTDLP(v *viper.Viper, cfg *core.Config) {
	cfg.YTDLP.BinaryPath = v.GetString("ytdlp-binary-path")
	cfg.YTDLP.BinDir = v.GetString("ytdlp-bin-dir")
	cfg.YTDLP.ReleaseURL = v.GetString("ytdlp-release-url")
	cfg.YTDLP.AutoUpdate = v.GetBool("ytdlp-auto-update")
	cfg.YTDLP.UpdateEvery = v.GetDuration("ytdlp-update-every")
	cfg.YTDLP.FetchTimeout = v.GetDuration("ytdlp-fetch-timeout")
	cfg.YTDLP.URLTimeout = v.GetDuration("ytdlp-url-timeout")
	cfg.YTDLP.CookiesPath = v.GetString("ytdlp-cookies-path")
	cfg.YTDLP.UserAgent = v.GetString("ytdlp-user-agent")
	cfg.YTDLP.Referer = v.GetString("ytdlp-referer")
	cfg.YTDLP.Proxy = v.GetString("ytdlp-proxy")
	cfg.YTDLP.ExtraArgs = v.GetStringSlice("ytdlp-extra-args")

	// One cookie file serves both the catalog and the delegate unless set separately.
	if cfg.YTDLP.CookiesPath == "" {
		cfg.YTDLP.CookiesPath = cfg.YouTube.CookiesPath
	}
}

func configureResolve(v *viper.Viper, cfg *core.Config) {
	cfg.Resolve.Ranker = strings.ToLower(v.GetString("resolve-ranker"))
	cfg.Resolve.MinScore = v.GetFloat64("resolve-min-score")
	cfg.Resolve.MatchCacheSize = v.GetInt("resolve-match-cache-size")
	cfg.Resolve.DelegateArgs = v.GetStringSlice("resolve-delegate-args")
}

func configureLog(v *viper.Viper, cfg *core.Config) {
	cfg.Log.Level = v.GetString("log-level")
	cfg.Log.Format = v.GetString("log-format")
	cfg.Log.File = v.GetString("log-file")
	cfg.Log.MaxSizeMB = v.GetInt("log-max-size-mb")
	cfg.Log.MaxBackups = v.GetInt("log-max-backups")
	cfg.Log.MaxAgeDays = v.GetInt("log-max-age-days")
	cfg.Log.Compress = v.GetBool("log-compress")
}
