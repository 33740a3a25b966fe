// Package tagger writes track metadata into downloaded audio files.
package tagger

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"go.senan.xyz/taglib"
	"go.uber.org/zap"

	"tunebridge/internal/core"
)

const (
	commentKey     = "COMMENT"
	artworkTimeout = 15 * time.Second
	maxArtworkSize = 10 << 20
)

type Tagger struct {
	httpClient *http.Client
	logger     *zap.Logger
}

type Option func(*Tagger)

// WithHTTPClient sets the client used to fetch cover art.
func WithHTTPClient(hc *http.Client) Option {
	return func(t *Tagger) { t.httpClient = hc }
}

func New(logger *zap.Logger, opts ...Option) *Tagger {
	t := &Tagger{
		httpClient: &http.Client{Timeout: artworkTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TagFile writes the track's tags into path and embeds its largest image as cover art.
// Cover art failures are logged and do not fail the call.
func (t *Tagger) TagFile(path string, track core.Track) error {
	if err := taglib.WriteTags(path, buildTags(track), 0); err != nil {
		return fmt.Errorf("failed to write tags to %s: %w", path, err)
	}

	img, ok := largestImage(track.Images)
	if !ok {
		return nil
	}
	data, err := t.fetchArtwork(img.URL)
	if err != nil {
		t.logger.Warn("Failed to fetch cover art", zap.String("url", img.URL), zap.Error(err))
		return nil
	}
	if err := taglib.WriteImage(path, data); err != nil {
		t.logger.Warn("Failed to embed cover art", zap.String("path", path), zap.Error(err))
	}
	return nil
}

func buildTags(track core.Track) map[string][]string {
	tags := make(map[string][]string)

	if track.Title != "" {
		tags[taglib.Title] = []string{track.Title}
	}
	if track.Artist != "" {
		tags[taglib.Artist] = []string{track.Artist}
		tags[taglib.AlbumArtist] = []string{track.Artist}
	}
	if track.Album != "" {
		tags[taglib.Album] = []string{track.Album}
	}
	if track.URL != "" {
		tags[commentKey] = []string{track.URL}
	}
	return tags
}

func largestImage(images []core.Image) (core.Image, bool) {
	var best core.Image
	for _, img := range images {
		if img.URL == "" {
			continue
		}
		if best.URL == "" || img.Width*img.Height > best.Width*best.Height {
			best = img
		}
	}
	return best, best.URL != ""
}

func (t *Tagger) fetchArtwork(url string) ([]byte, error) {
	resp, err := t.httpClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArtworkSize))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	return data, nil
}
