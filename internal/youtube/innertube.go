package youtube

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"tunebridge/internal/core"
	"tunebridge/pkg/musiclink"
)

const (
	musicClientName    = "WEB_REMIX"
	musicClientVersion = "1.20250310.01.00"
	musicUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	musicOrigin        = "https://music.youtube.com"

	endpointSearch = "search"
	endpointPlayer = "player"
	endpointBrowse = "browse"
)

// Search filters of the music client, one per result shelf.
var searchParams = map[itemKind]string{
	kindSong:     "Eg-KAQwIARAAGAAgACgAMABqChAEEAMQCRAFEAo=",
	kindVideo:    "Eg-KAQwIABABGAAgACgAMABqChAEEAMQCRAFEAo=",
	kindAlbum:    "Eg-KAQwIABAAGAEgACgAMABqChAEEAMQCRAFEAo=",
	kindArtist:   "Eg-KAQwIABAAGAAgASgAMABqChAEEAMQCRAFEAo=",
	kindPlaylist: "Eg-KAQwIABAAGAAgACgBMABqChAEEAMQCRAFEAo=",
}

// retryDelay is the pause before the single retry of a transient failure.
var retryDelay = time.Second

// errNotFound marks an innertube 404; callers turn it into a nil result.
var errNotFound = errors.New("not found")

var (
	durationPattern = regexp.MustCompile(`^(\d+:)?\d{1,2}:\d{2}$`)
	countPattern    = regexp.MustCompile(`([\d,.]+)\s+(songs?|tracks?|videos?|episodes?)`)
)

// requestBody builds the innertube payload: the client context plus the given top-level fields.
func (c *Client) requestBody(fields map[string]string) ([]byte, error) {
	body := []byte(`{}`)
	var err error

	set := func(path string, value any) {
		if err == nil {
			body, err = sjson.SetBytes(body, path, value)
		}
	}
	set("context.client.clientName", musicClientName)
	set("context.client.clientVersion", musicClientVersion)
	set("context.client.hl", c.language())
	set("context.client.gl", c.location())
	set("context.user.lockedSafetyMode", false)
	for path, value := range fields {
		set(path, value)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", musicClientName, err)
	}
	return body, nil
}

// post sends one innertube request. A transient network failure is retried once.
func (c *Client) post(ctx context.Context, sess *session, endpoint string, fields map[string]string) (gjson.Result, error) {
	body, err := c.requestBody(fields)
	if err != nil {
		return gjson.Result{}, err
	}

	result, err := c.doPost(ctx, sess, endpoint, body)
	if err != nil && isTransient(err) {
		c.logger.Debug("Retrying innertube request", zap.String("endpoint", endpoint), zap.Error(err))
		select {
		case <-ctx.Done():
			return gjson.Result{}, ctx.Err()
		case <-time.After(retryDelay):
		}
		result, err = c.doPost(ctx, sess, endpoint, body)
	}
	if err != nil {
		if errors.Is(err, errNotFound) {
			return gjson.Result{}, err
		}
		var pe *core.ProviderError
		if errors.As(err, &pe) {
			return gjson.Result{}, err
		}
		return gjson.Result{}, core.NewProviderError(providerName, endpoint+" request failed", 0, err)
	}
	return result, nil
}

func (c *Client) doPost(ctx context.Context, sess *session, endpoint string, body []byte) (gjson.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.musicAPIURL()+endpoint+"?prettyPrint=false", bytes.NewReader(body))
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", musicUserAgent)
	req.Header.Set("Origin", musicOrigin)
	req.Header.Set("X-Origin", musicOrigin)
	if sess.cookieHeader != "" {
		req.Header.Set("Cookie", sess.cookieHeader)
	}

	resp, err := sess.api.Do(req)
	if err != nil {
		return gjson.Result{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return gjson.Result{}, errNotFound
	case resp.StatusCode != http.StatusOK:
		return gjson.Result{}, core.NewProviderError(providerName, endpoint+" request failed", resp.StatusCode,
			fmt.Errorf("%s", gjson.GetBytes(data, "error.message").String()))
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, core.NewProviderError(providerName, endpoint+" returned invalid JSON", resp.StatusCode, nil)
	}
	return gjson.ParseBytes(data), nil
}

func isTransient(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr)
}

// parseSearch walks every result shelf of a search response. When forced is not kindUnknown
// every row is read as that kind, otherwise the kind is inferred per row.
func parseSearch(res gjson.Result, forced itemKind) []searchItem {
	var items []searchItem

	sections := res.Get("contents.tabbedSearchResultsRenderer.tabs.0.tabRenderer.content.sectionListRenderer.contents")
	sections.ForEach(func(_, section gjson.Result) bool {
		section.Get("musicShelfRenderer.contents").ForEach(func(_, row gjson.Result) bool {
			renderer := row.Get("musicResponsiveListItemRenderer")
			if !renderer.Exists() {
				return true
			}
			if item, ok := parseListItem(renderer, forced); ok {
				items = append(items, item)
			}
			return true
		})
		return true
	})
	return items
}

type listItemFields struct {
	title      string
	videoID    string
	browseID   string
	videoType  string
	thumbnails []Thumbnail
	artists    []ArtistBasic
	album      *AlbumBasic
	duration   int
	count      int
	subtitle   []string
}

func readListItem(r gjson.Result) listItemFields {
	first := r.Get("flexColumns.0.musicResponsiveListItemFlexColumnRenderer.text.runs")
	f := listItemFields{
		title:      first.Get("0.text").String(),
		videoID:    r.Get("playlistItemData.videoId").String(),
		browseID:   r.Get("navigationEndpoint.browseEndpoint.browseId").String(),
		thumbnails: parseThumbnails(r.Get("thumbnail.musicThumbnailRenderer.thumbnail.thumbnails")),
	}
	if f.videoID == "" {
		f.videoID = first.Get("0.navigationEndpoint.watchEndpoint.videoId").String()
	}
	f.videoType = first.Get("0.navigationEndpoint.watchEndpoint.watchEndpointMusicSupportedConfigs.watchEndpointMusicConfig.musicVideoType").String()

	r.Get("flexColumns").ForEach(func(idx, column gjson.Result) bool {
		if idx.Int() == 0 {
			return true
		}
		column.Get("musicResponsiveListItemFlexColumnRenderer.text.runs").ForEach(func(_, run gjson.Result) bool {
			f.readRun(run)
			return true
		})
		return true
	})
	r.Get("fixedColumns").ForEach(func(_, column gjson.Result) bool {
		column.Get("musicResponsiveListItemFixedColumnRenderer.text.runs").ForEach(func(_, run gjson.Result) bool {
			f.readRun(run)
			return true
		})
		return true
	})
	return f
}

func (f *listItemFields) readRun(run gjson.Result) {
	text := strings.TrimSpace(run.Get("text").String())
	if text == "" || text == "•" || text == "&" || text == "," {
		return
	}

	browseID := run.Get("navigationEndpoint.browseEndpoint.browseId").String()
	switch {
	case strings.HasPrefix(browseID, "UC"):
		f.artists = append(f.artists, ArtistBasic{ArtistID: browseID, Name: text})
	case strings.HasPrefix(browseID, "MPRE"):
		f.album = &AlbumBasic{AlbumID: browseID, Name: text}
	case durationPattern.MatchString(text):
		f.duration = parseDuration(text)
	default:
		if m := countPattern.FindStringSubmatch(text); m != nil {
			f.count = parseCount(m[1])
		}
		f.subtitle = append(f.subtitle, text)
	}
}

// firstArtist prefers a linked artist and falls back to the first subtitle run that is not a label.
func (f *listItemFields) firstArtist(skip ...string) *ArtistBasic {
	if len(f.artists) > 0 {
		a := f.artists[0]
		return &a
	}
	for _, text := range f.subtitle {
		if isLabel(text, skip) {
			continue
		}
		return &ArtistBasic{Name: text}
	}
	return nil
}

func isLabel(text string, labels []string) bool {
	if countPattern.MatchString(text) || strings.HasSuffix(text, " views") {
		return true
	}
	for _, l := range labels {
		if strings.EqualFold(text, l) {
			return true
		}
	}
	return false
}

var itemLabels = []string{"Song", "Video", "Album", "Single", "EP", "Artist", "Playlist", "Episode"}

func parseListItem(r gjson.Result, forced itemKind) (searchItem, bool) {
	f := readListItem(r)

	kind := forced
	if kind == kindUnknown {
		kind = inferKind(f)
	}

	switch kind {
	case kindSong:
		if f.videoID == "" {
			return searchItem{}, false
		}
		return searchItem{kind: kindSong, song: SongDetails{
			VideoID:    f.videoID,
			Name:       f.title,
			Artist:     f.firstArtist(itemLabels...),
			Album:      f.album,
			Duration:   f.duration,
			Thumbnails: f.thumbnails,
		}}, true
	case kindVideo:
		if f.videoID == "" {
			return searchItem{}, false
		}
		return searchItem{kind: kindVideo, video: VideoDetails{
			VideoID:    f.videoID,
			Name:       f.title,
			Author:     f.firstArtist(itemLabels...),
			Duration:   f.duration,
			Thumbnails: f.thumbnails,
		}}, true
	case kindAlbum:
		if f.browseID == "" {
			return searchItem{}, false
		}
		return searchItem{kind: kindAlbum, album: AlbumDetails{
			AlbumID:    f.browseID,
			Name:       f.title,
			Artist:     f.firstArtist(itemLabels...),
			TrackCount: f.count,
			Thumbnails: f.thumbnails,
		}}, true
	case kindArtist:
		if f.browseID == "" {
			return searchItem{}, false
		}
		return searchItem{kind: kindArtist, artist: ArtistDetails{
			ArtistID:   f.browseID,
			Name:       f.title,
			Thumbnails: f.thumbnails,
		}}, true
	case kindPlaylist:
		if f.browseID == "" {
			return searchItem{}, false
		}
		return searchItem{kind: kindPlaylist, playlist: PlaylistDetails{
			PlaylistID: strings.TrimPrefix(f.browseID, "VL"),
			Name:       f.title,
			Author:     f.firstArtist(itemLabels...),
			VideoCount: f.count,
			Thumbnails: f.thumbnails,
		}}, true
	}
	return searchItem{}, false
}

func inferKind(f listItemFields) itemKind {
	if f.videoID != "" {
		switch f.videoType {
		case "MUSIC_VIDEO_TYPE_ATV":
			return kindSong
		case "":
			if f.album != nil {
				return kindSong
			}
		}
		return kindVideo
	}

	switch {
	case strings.HasPrefix(f.browseID, "MPRE"):
		return kindAlbum
	case strings.HasPrefix(f.browseID, "UC"):
		return kindArtist
	case strings.HasPrefix(f.browseID, "VL"):
		return kindPlaylist
	}
	return kindUnknown
}

// parsePlayer reads the song behind a player response; ok is false when the video is unavailable.
func parsePlayer(res gjson.Result) (SongDetails, bool) {
	status := res.Get("playabilityStatus.status").String()
	details := res.Get("videoDetails")
	if status == "ERROR" || !details.Exists() || details.Get("videoId").String() == "" {
		return SongDetails{}, false
	}

	song := SongDetails{
		VideoID:    details.Get("videoId").String(),
		Name:       details.Get("title").String(),
		Duration:   int(details.Get("lengthSeconds").Int()),
		Thumbnails: parseThumbnails(details.Get("thumbnail.thumbnails")),
	}
	if author := details.Get("author").String(); author != "" {
		song.Artist = &ArtistBasic{ArtistID: details.Get("channelId").String(), Name: author}
	}
	return song, true
}

// parseAlbumPage reads an album browse response, either the current responsive header or the
// older detail header.
func parseAlbumPage(albumID string, res gjson.Result) (AlbumDetails, bool) {
	tab := res.Get("contents.twoColumnBrowseResultsRenderer.tabs.0.tabRenderer.content.sectionListRenderer.contents.0")
	album := AlbumDetails{AlbumID: albumID}

	if header := tab.Get("musicResponsiveHeaderRenderer"); header.Exists() {
		album.Name = header.Get("title.runs.0.text").String()
		album.Thumbnails = parseThumbnails(header.Get("thumbnail.musicThumbnailRenderer.thumbnail.thumbnails"))
		album.Artist = headerArtist(header.Get("straplineTextOne.runs"))
		album.TrackCount = countOf(header.Get("secondSubtitle.runs"))
	} else if header := res.Get("header.musicDetailHeaderRenderer"); header.Exists() {
		album.Name = header.Get("title.runs.0.text").String()
		album.Thumbnails = parseThumbnails(header.Get("thumbnail.croppedSquareThumbnailRenderer.thumbnail.thumbnails"))
		album.Artist = headerArtist(header.Get("subtitle.runs"))
		album.TrackCount = countOf(header.Get("secondSubtitle.runs"))
	} else {
		return AlbumDetails{}, false
	}

	if album.TrackCount == 0 {
		shelf := res.Get("contents.twoColumnBrowseResultsRenderer.secondaryContents.sectionListRenderer.contents.0.musicShelfRenderer.contents")
		if !shelf.Exists() {
			shelf = tab.Get("musicShelfRenderer.contents")
		}
		album.TrackCount = len(shelf.Array())
	}
	album.PlaylistID = musiclink.PlaylistID(res.Get("microformat.microformatDataRenderer.urlCanonical").String())
	return album, true
}

// parseArtistPage reads an artist browse response.
func parseArtistPage(artistID string, res gjson.Result) (ArtistDetails, bool) {
	if header := res.Get("header.musicImmersiveHeaderRenderer"); header.Exists() {
		return ArtistDetails{
			ArtistID:   artistID,
			Name:       header.Get("title.runs.0.text").String(),
			Thumbnails: parseThumbnails(header.Get("thumbnail.musicThumbnailRenderer.thumbnail.thumbnails")),
		}, true
	}
	if header := res.Get("header.musicVisualHeaderRenderer"); header.Exists() {
		return ArtistDetails{
			ArtistID:   artistID,
			Name:       header.Get("title.runs.0.text").String(),
			Thumbnails: parseThumbnails(header.Get("foregroundThumbnail.musicThumbnailRenderer.thumbnail.thumbnails")),
		}, true
	}
	return ArtistDetails{}, false
}

func headerArtist(runs gjson.Result) *ArtistBasic {
	var artist *ArtistBasic
	runs.ForEach(func(_, run gjson.Result) bool {
		browseID := run.Get("navigationEndpoint.browseEndpoint.browseId").String()
		if strings.HasPrefix(browseID, "UC") {
			artist = &ArtistBasic{ArtistID: browseID, Name: run.Get("text").String()}
			return false
		}
		return true
	})
	return artist
}

func countOf(runs gjson.Result) int {
	count := 0
	runs.ForEach(func(_, run gjson.Result) bool {
		if m := countPattern.FindStringSubmatch(run.Get("text").String()); m != nil {
			count = parseCount(m[1])
			return false
		}
		return true
	})
	return count
}

func parseThumbnails(list gjson.Result) []Thumbnail {
	thumbnails := []Thumbnail{}
	list.ForEach(func(_, t gjson.Result) bool {
		thumbnails = append(thumbnails, Thumbnail{
			URL:    t.Get("url").String(),
			Width:  int(t.Get("width").Int()),
			Height: int(t.Get("height").Int()),
		})
		return true
	})
	return thumbnails
}

// parseDuration turns "m:ss" or "h:mm:ss" into seconds.
func parseDuration(text string) int {
	total := 0
	for _, part := range strings.Split(text, ":") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0
		}
		total = total*60 + n
	}
	return total
}

func parseCount(text string) int {
	n, _ := strconv.Atoi(strings.NewReplacer(",", "", ".", "").Replace(text))
	return n
}
