package youtube

import (
	"fmt"
	"strings"
)

const (
	rickVideoID  = "dQw4w9WgXcQ"
	rickChannel  = "UCuAXFkgsw1L7xaCfnd5JJOw"
	rickAlbumID  = "MPREb_BQZvl3BFGay"
	roadTripList = "PLrAXtmErZgOeiKm4sgNOknGvNjby9efdf"
)

func thumbnailsJSON(url string, size int) string {
	return fmt.Sprintf(`{"thumbnails":[{"url":%q,"width":%d,"height":%d}]}`, url, size, size)
}

func textRun(text string) string {
	return fmt.Sprintf(`{"text":%q}`, text)
}

func browseRun(text, browseID string) string {
	return fmt.Sprintf(`{"text":%q,"navigationEndpoint":{"browseEndpoint":{"browseId":%q}}}`, text, browseID)
}

func flexColumn(runs ...string) string {
	return `{"musicResponsiveListItemFlexColumnRenderer":{"text":{"runs":[` + strings.Join(runs, ",") + `]}}}`
}

func watchRow(videoID, title, videoType string, subtitle ...string) string {
	titleRun := fmt.Sprintf(`{"text":%q,"navigationEndpoint":{"watchEndpoint":{"videoId":%q,`+
		`"watchEndpointMusicSupportedConfigs":{"watchEndpointMusicConfig":{"musicVideoType":%q}}}}}`,
		title, videoID, videoType)
	return `{"musicResponsiveListItemRenderer":{` +
		`"thumbnail":{"musicThumbnailRenderer":{"thumbnail":` + thumbnailsJSON("https://i.ytimg.com/vi/"+videoID+"/sddefault.jpg", 120) + `}},` +
		`"flexColumns":[` + flexColumn(titleRun) + `,` + flexColumn(subtitle...) + `],` +
		`"playlistItemData":{"videoId":"` + videoID + `"}}}`
}

func browseRow(browseID, title string, subtitle ...string) string {
	return `{"musicResponsiveListItemRenderer":{` +
		`"thumbnail":{"musicThumbnailRenderer":{"thumbnail":` + thumbnailsJSON("https://lh3.googleusercontent.com/"+browseID, 226) + `}},` +
		`"flexColumns":[` + flexColumn(textRun(title)) + `,` + flexColumn(subtitle...) + `],` +
		`"navigationEndpoint":{"browseEndpoint":{"browseId":"` + browseID + `"}}}}`
}

func searchResponse(shelves ...[]string) string {
	sections := make([]string, 0, len(shelves))
	for _, rows := range shelves {
		sections = append(sections, `{"musicShelfRenderer":{"contents":[`+strings.Join(rows, ",")+`]}}`)
	}
	return `{"contents":{"tabbedSearchResultsRenderer":{"tabs":[{"tabRenderer":{"content":{"sectionListRenderer":{"contents":[` +
		strings.Join(sections, ",") + `]}}}}]}}}`
}

var (
	rickSongRow = watchRow(rickVideoID, "Never Gonna Give You Up", "MUSIC_VIDEO_TYPE_ATV",
		browseRun("Rick Astley", rickChannel), textRun(" • "),
		browseRun("Whenever You Need Somebody", rickAlbumID), textRun(" • "), textRun("3:33"))

	shapeSongRow = watchRow("JGwWNGJdvx8", "Shape of You", "MUSIC_VIDEO_TYPE_ATV",
		browseRun("Ed Sheeran", "UC0C-w0YjGpqDXGB8IHb662A"), textRun(" • "),
		browseRun("÷", "MPREb_divide"), textRun(" • "), textRun("3:54"))

	rickVideoRow = watchRow("yPYZpwSpKmA", "Together Forever", "MUSIC_VIDEO_TYPE_OMV",
		textRun("Video"), textRun(" • "), browseRun("Rick Astley", rickChannel), textRun(" • "),
		textRun("120M views"), textRun(" • "), textRun("1:03:25"))

	uploadVideoRow = watchRow("abcdefghijk", "Never gonna give you up (cover)", "MUSIC_VIDEO_TYPE_UGC",
		textRun("Some Uploader"), textRun(" • "), textRun("2.1K views"), textRun(" • "), textRun("4:01"))

	rickAlbumRow = browseRow(rickAlbumID, "Whenever You Need Somebody",
		textRun("Album"), textRun(" • "), browseRun("Rick Astley", rickChannel), textRun(" • "), textRun("1987"))

	rickArtistRow = browseRow(rickChannel, "Rick Astley",
		textRun("Artist"), textRun(" • "), textRun("4.1M subscribers"))

	roadTripRow = browseRow("VL"+roadTripList, "Road Trip",
		textRun("Playlist"), textRun(" • "), textRun("DJ Test"), textRun(" • "), textRun("1,250 songs"))
)

const musicPlayerJSON = `{
	"playabilityStatus": {"status": "OK"},
	"videoDetails": {
		"videoId": "dQw4w9WgXcQ",
		"title": "Never Gonna Give You Up",
		"author": "Rick Astley",
		"channelId": "UCuAXFkgsw1L7xaCfnd5JJOw",
		"lengthSeconds": "213",
		"thumbnail": {"thumbnails": [{"url": "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg", "width": 480, "height": 360}]}
	}
}`

const unplayableJSON = `{"playabilityStatus": {"status": "ERROR", "reason": "Video unavailable"}}`

const albumPageJSON = `{
	"contents": {"twoColumnBrowseResultsRenderer": {
		"tabs": [{"tabRenderer": {"content": {"sectionListRenderer": {"contents": [{"musicResponsiveHeaderRenderer": {
			"title": {"runs": [{"text": "Whenever You Need Somebody"}]},
			"straplineTextOne": {"runs": [{"text": "Rick Astley", "navigationEndpoint": {"browseEndpoint": {"browseId": "UCuAXFkgsw1L7xaCfnd5JJOw"}}}]},
			"secondSubtitle": {"runs": [{"text": "10 songs"}, {"text": " • "}, {"text": "41 minutes"}]},
			"thumbnail": {"musicThumbnailRenderer": {"thumbnail": {"thumbnails": [{"url": "https://lh3.googleusercontent.com/album", "width": 544, "height": 544}]}}}
		}}]}}}}],
		"secondaryContents": {"sectionListRenderer": {"contents": [{"musicShelfRenderer": {"contents": [{}, {}, {}]}}]}}
	}},
	"microformat": {"microformatDataRenderer": {"urlCanonical": "https://music.youtube.com/playlist?list=OLAK5uy_nZxKA5mFNu7BaL9k6J3tOaCkXl8qUvqOU"}}
}`

const legacyAlbumPageJSON = `{
	"header": {"musicDetailHeaderRenderer": {
		"title": {"runs": [{"text": "Hold Me in Your Arms"}]},
		"subtitle": {"runs": [{"text": "Album"}, {"text": " • "}, {"text": "Rick Astley", "navigationEndpoint": {"browseEndpoint": {"browseId": "UCuAXFkgsw1L7xaCfnd5JJOw"}}}, {"text": " • "}, {"text": "1988"}]},
		"thumbnail": {"croppedSquareThumbnailRenderer": {"thumbnail": {"thumbnails": [{"url": "https://lh3.googleusercontent.com/legacy", "width": 226, "height": 226}]}}}
	}},
	"contents": {"singleColumnBrowseResultsRenderer": {}},
	"microformat": {"microformatDataRenderer": {"urlCanonical": "https://music.youtube.com/browse/MPREb_legacy"}}
}`

const artistPageJSON = `{
	"header": {"musicImmersiveHeaderRenderer": {
		"title": {"runs": [{"text": "Rick Astley"}]},
		"thumbnail": {"musicThumbnailRenderer": {"thumbnail": {"thumbnails": [{"url": "https://lh3.googleusercontent.com/artist", "width": 1080, "height": 1080}]}}}
	}}
}`

// webPlayerJSON is what the YouTube web player endpoint returns for the test video; the
// stream URLs point at the test server.
func webPlayerJSON(mediaBase string) string {
	return `{
		"playabilityStatus": {"status": "OK", "playableInEmbed": true},
		"streamingData": {
			"formats": [{"itag": 18, "url": "` + mediaBase + `/media/18", "mimeType": "video/mp4; codecs=\"avc1.42001E, mp4a.40.2\"", "bitrate": 500000}],
			"adaptiveFormats": [
				{"itag": 140, "url": "` + mediaBase + `/media/140", "mimeType": "audio/mp4; codecs=\"mp4a.40.2\"", "bitrate": 130000},
				{"itag": 251, "url": "` + mediaBase + `/media/251", "mimeType": "audio/webm; codecs=\"opus\"", "bitrate": 160000},
				{"itag": 137, "url": "` + mediaBase + `/media/137", "mimeType": "video/mp4; codecs=\"avc1.640028\"", "bitrate": 4000000}
			]
		},
		"videoDetails": {
			"videoId": "dQw4w9WgXcQ",
			"title": "Rick Astley - Never Gonna Give You Up (Official Music Video)",
			"lengthSeconds": "213",
			"channelId": "UCuAXFkgsw1L7xaCfnd5JJOw",
			"author": "Rick Astley",
			"thumbnail": {"thumbnails": [{"url": "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", "width": 1280, "height": 720}]}
		}
	}`
}

const videoOnlyPlayerJSON = `{
	"playabilityStatus": {"status": "OK", "playableInEmbed": true},
	"streamingData": {
		"formats": [{"itag": 18, "url": "https://example.invalid/18", "mimeType": "video/mp4; codecs=\"avc1.42001E\"", "bitrate": 500000}]
	},
	"videoDetails": {"videoId": "videoOnly01", "title": "Silent Film", "lengthSeconds": "60", "author": "Archive"}
}`

const privateVideoJSON = `{"playabilityStatus": {"status": "LOGIN_REQUIRED", "reason": "This video is private"}}`

const playlistPageJSON = `{
	"header": {"playlistHeaderRenderer": {
		"title": {"runs": [{"text": "Road Trip"}]},
		"ownerText": {"runs": [{"text": "DJ Test"}]}
	}},
	"contents": {"singleColumnBrowseResultsRenderer": {"tabs": [{"tabRenderer": {"content": {"sectionListRenderer": {"contents": [
		{"playlistVideoListRenderer": {"contents": [
			{"playlistVideoRenderer": {
				"videoId": "dQw4w9WgXcQ",
				"title": {"runs": [{"text": "Never Gonna Give You Up"}]},
				"shortBylineText": {"runs": [{"text": "Rick Astley"}]},
				"lengthSeconds": "213",
				"thumbnail": {"thumbnails": [{"url": "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg", "width": 480, "height": 360}]}
			}},
			{"playlistVideoRenderer": {
				"videoId": "yPYZpwSpKmA",
				"title": {"runs": [{"text": "Together Forever"}]},
				"shortBylineText": {"runs": [{"text": "Rick Astley"}]},
				"lengthSeconds": "205",
				"thumbnail": {"thumbnails": []}
			}}
		]}}
	]}}}}]}}
}`

const missingPlaylistJSON = `{
	"alerts": [{"alertRenderer": {"type": "ERROR", "text": {"runs": [{"text": "The playlist does not exist."}]}}}]
}`
