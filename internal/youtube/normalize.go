package youtube

import (
	"tunebridge/internal/core"
)

const (
	watchURLPrefix    = "https://www.youtube.com/watch?v="
	playlistURLPrefix = "https://www.youtube.com/playlist?list="
	channelURLPrefix  = "https://music.youtube.com/channel/"
)

// WatchURL is the canonical page of a video.
func WatchURL(videoID string) string {
	return watchURLPrefix + videoID
}

func formatImages(thumbnails []Thumbnail) []core.Image {
	images := make([]core.Image, 0, len(thumbnails))
	for _, t := range thumbnails {
		images = append(images, core.Image{URL: t.URL, Height: t.Height, Width: t.Width})
	}
	return images
}

func optionalDuration(seconds int) *int {
	if seconds <= 0 {
		return nil
	}
	return &seconds
}

func creditOf(artist *ArtistBasic) core.ArtistCredit {
	if artist == nil {
		return core.NoArtist()
	}
	return core.ArtistRef(artist.ArtistID, artist.Name)
}

func FormatTrack(song SongDetails) core.Track {
	track := core.Track{
		ID:       song.VideoID,
		Title:    song.Name,
		Duration: optionalDuration(song.Duration),
		URL:      WatchURL(song.VideoID),
		Images:   formatImages(song.Thumbnails),
		Platform: core.PlatformYouTube,
	}
	if song.Artist != nil {
		track.Artist = song.Artist.Name
	}
	if song.Album != nil {
		track.Album = song.Album.Name
	}
	return track
}

func FormatVideo(video VideoDetails) core.Video {
	return core.Video{
		ID:       video.VideoID,
		Name:     video.Name,
		Artist:   creditOf(video.Author),
		Duration: optionalDuration(video.Duration),
		Images:   formatImages(video.Thumbnails),
		URL:      WatchURL(video.VideoID),
		Platform: core.PlatformYouTube,
	}
}

func FormatAlbum(album AlbumDetails) core.Album {
	artists := []core.ArtistCredit{}
	if credit := creditOf(album.Artist); credit.Kind() != core.CreditNone {
		artists = append(artists, credit)
	}
	return core.Album{
		ID:         album.AlbumID,
		Name:       album.Name,
		Total:      album.TrackCount,
		Images:     formatImages(album.Thumbnails),
		Artists:    artists,
		Platform:   core.PlatformYouTube,
		PlaylistID: album.PlaylistID,
	}
}

func FormatArtist(artist ArtistDetails) core.Artist {
	return core.Artist{
		ID:       artist.ArtistID,
		Name:     artist.Name,
		URL:      channelURLPrefix + artist.ArtistID,
		Images:   formatImages(artist.Thumbnails),
		Platform: core.PlatformYouTube,
	}
}

// FormatPlaylist keeps the declared VideoCount as Total; Tracks holds the songs that were fetched.
func FormatPlaylist(playlist PlaylistDetails) core.Playlist {
	tracks := make([]core.Track, 0, len(playlist.Songs))
	for _, song := range playlist.Songs {
		tracks = append(tracks, FormatTrack(song))
	}
	return core.Playlist{
		ID:       playlist.PlaylistID,
		Name:     playlist.Name,
		Total:    playlist.VideoCount,
		Tracks:   tracks,
		URL:      playlistURLPrefix + playlist.PlaylistID,
		Platform: core.PlatformYouTube,
		Images:   formatImages(playlist.Thumbnails),
	}
}
