// Package lyrics looks up plain and synced lyrics on LRCLib.
package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"tunebridge/internal/core"
)

const (
	providerName = "lrclib"
	userAgent    = "tunebridge/1.0"
)

const defaultRetryDelay = 2 * time.Second

// retryDelay is the pause before retrying a transient network failure.
var retryDelay = defaultRetryDelay

type Client struct {
	config     *core.LyricsConfig
	logger     *zap.Logger
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which times out after LyricsConfig.Timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(config *core.LyricsConfig, logger *zap.Logger, opts ...Option) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = core.DefaultConfig().Lyrics.Timeout
	}
	c := &Client{
		config:     config,
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Record is one LRCLib lyrics entry as the API returns it.
type Record struct {
	ID           int64   `json:"id"`
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

// Get returns the best match for the song. Not found is nil.
func (c *Client) Get(ctx context.Context, query core.LyricsQuery) (*core.Lyrics, error) {
	params, err := queryParams(query)
	if err != nil {
		return nil, err
	}
	if query.Duration > 0 {
		params.Set("duration", strconv.FormatInt(int64(math.Round(query.Duration)), 10))
	}

	var rec Record
	found, err := c.fetch(ctx, "get", params, &rec)
	if err != nil || !found {
		return nil, err
	}
	return Format(rec), nil
}

// Search returns every entry LRCLib matches, or nil when there is none.
func (c *Client) Search(ctx context.Context, query core.LyricsQuery) ([]core.Lyrics, error) {
	params, err := queryParams(query)
	if err != nil {
		return nil, err
	}

	var records []Record
	found, err := c.fetch(ctx, "search", params, &records)
	if err != nil || !found || len(records) == 0 {
		return nil, err
	}

	results := make([]core.Lyrics, 0, len(records))
	for _, rec := range records {
		if lyrics := Format(rec); lyrics != nil {
			results = append(results, *lyrics)
		}
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results, nil
}

func queryParams(query core.LyricsQuery) (url.Values, error) {
	if strings.TrimSpace(query.Track) == "" {
		return nil, core.InvalidArgument("track name")
	}
	if strings.TrimSpace(query.Artist) == "" {
		return nil, core.InvalidArgument("artist name")
	}

	params := url.Values{}
	params.Set("track_name", query.Track)
	params.Set("artist_name", query.Artist)
	if query.Album != "" {
		params.Set("album_name", query.Album)
	}
	return params, nil
}

// fetch decodes the response of endpoint into out. A 404 reports found=false.
// Network failures are retried once; API errors are not.
func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values, out any) (bool, error) {
	found, err := c.doFetch(ctx, endpoint, params, out)
	if err == nil || !isTransient(err) {
		return found, err
	}

	c.logger.Debug("Retrying LRCLib request", zap.String("endpoint", endpoint), zap.Error(err))
	select {
	case <-ctx.Done():
		return false, err
	case <-time.After(retryDelay):
	}
	return c.doFetch(ctx, endpoint, params, out)
}

func isTransient(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr)
}

func (c *Client) doFetch(ctx context.Context, endpoint string, params url.Values, out any) (bool, error) {
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL(), endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create lrclib request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, core.NewProviderError(providerName, endpoint+" request failed", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, core.NewProviderError(providerName, endpoint+" request failed", resp.StatusCode, nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, core.NewProviderError(providerName, "failed to decode "+endpoint+" response", resp.StatusCode, err)
	}
	return true, nil
}

func (c *Client) baseURL() string {
	base := c.config.BaseURL
	if base == "" {
		base = core.DefaultConfig().Lyrics.BaseURL
	}
	return strings.TrimSuffix(base, "/")
}
