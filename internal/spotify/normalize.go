package spotify

import (
	"slices"
	"strings"

	"github.com/zmb3/spotify/v2"

	"tunebridge/internal/core"
)

const openSpotifyURL = "https://open.spotify.com/"

// shareURL returns the Spotify share link of an entity, or the open.spotify.com link built from its id.
// Local files have neither and get no URL.
func shareURL(externalURLs map[string]string, kind string, id spotify.ID) string {
	if u := externalURLs["spotify"]; u != "" {
		return u
	}
	if id == "" {
		return ""
	}
	return openSpotifyURL + kind + "/" + string(id)
}

func formatImages(images []spotify.Image) []core.Image {
	out := make([]core.Image, 0, len(images))
	for _, img := range images {
		out = append(out, core.Image{URL: img.URL, Height: int(img.Height), Width: int(img.Width)})
	}
	return out
}

func joinArtists(artists []spotify.SimpleArtist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

func durationSeconds(ms spotify.Numeric) *int {
	seconds := max(int(ms), 0) / 1000
	return &seconds
}

// FormatTrack normalizes a full track. Images come from the track's album.
func FormatTrack(t *spotify.FullTrack) core.Track {
	return core.Track{
		ID:       string(t.ID),
		Title:    t.Name,
		Artist:   joinArtists(t.Artists),
		Album:    t.Album.Name,
		Duration: durationSeconds(t.Duration),
		URL:      shareURL(t.ExternalURLs, "track", t.ID),
		Images:   formatImages(t.Album.Images),
		Platform: core.PlatformSpotify,
	}
}

// FormatSimpleTrack normalizes a track listed inside an album, which may carry no album of its own.
func FormatSimpleTrack(t *spotify.SimpleTrack) core.Track {
	return core.Track{
		ID:       string(t.ID),
		Title:    t.Name,
		Artist:   joinArtists(t.Artists),
		Album:    t.Album.Name,
		Duration: durationSeconds(t.Duration),
		URL:      shareURL(t.ExternalURLs, "track", t.ID),
		Images:   formatImages(t.Album.Images),
		Platform: core.PlatformSpotify,
	}
}

func FormatSimpleAlbum(a *spotify.SimpleAlbum) core.Album {
	artists := make([]core.ArtistCredit, 0, len(a.Artists))
	for _, artist := range a.Artists {
		artists = append(artists, core.ArtistRef(string(artist.ID), artist.Name))
	}

	return core.Album{
		ID:       string(a.ID),
		Name:     a.Name,
		Total:    int(a.TotalTracks),
		Images:   formatImages(a.Images),
		Artists:  artists,
		Platform: core.PlatformSpotify,
	}
}

func FormatAlbum(a *spotify.FullAlbum) core.Album {
	album := FormatSimpleAlbum(&a.SimpleAlbum)
	if album.Total == 0 {
		album.Total = int(a.Tracks.Total)
	}
	return album
}

func FormatSimpleArtist(a *spotify.SimpleArtist) core.Artist {
	return core.Artist{
		ID:       string(a.ID),
		Name:     a.Name,
		URL:      shareURL(a.ExternalURLs, "artist", a.ID),
		Images:   []core.Image{},
		Platform: core.PlatformSpotify,
	}
}

func FormatArtist(a *spotify.FullArtist) core.Artist {
	artist := FormatSimpleArtist(&a.SimpleArtist)
	artist.Images = formatImages(a.Images)
	return artist
}

// FormatSimplePlaylist normalizes a search hit. Its tracks are not materialized.
func FormatSimplePlaylist(p *spotify.SimplePlaylist) core.Playlist {
	return core.Playlist{
		ID:       string(p.ID),
		Name:     p.Name,
		Total:    int(p.Tracks.Total),
		Tracks:   []core.Track{},
		URL:      shareURL(p.ExternalURLs, "playlist", p.ID),
		Platform: core.PlatformSpotify,
		Images:   formatImages(p.Images),
	}
}

// hasTrack reports whether a playlist item carried a track object. A null track decodes to
// the zero value; local files keep their name and type but have no id.
func hasTrack(t *spotify.FullTrack) bool {
	return t.ID != "" || t.Name != "" || t.Type != ""
}

// FormatPlaylist normalizes a playlist with its first page of items. Items without a track
// (deleted) or whose track is not a track (podcast episodes) are dropped. Local files stay.
func FormatPlaylist(p *spotify.FullPlaylist) core.Playlist {
	tracks := make([]core.Track, 0, len(p.Tracks.Tracks))
	for i := range p.Tracks.Tracks {
		item := &p.Tracks.Tracks[i].Track
		if !hasTrack(item) || (item.Type != "" && item.Type != "track") {
			continue
		}
		tracks = append(tracks, FormatTrack(item))
	}

	return core.Playlist{
		ID:       string(p.ID),
		Name:     p.Name,
		Total:    int(p.Tracks.Total),
		Tracks:   tracks,
		URL:      shareURL(p.ExternalURLs, "playlist", p.ID),
		Platform: core.PlatformSpotify,
		Images:   formatImages(p.Images),
	}
}

// FormatSearchResults fills only the requested kinds; the rest stay empty with zero totals.
func FormatSearchResults(r *spotify.SearchResult, kinds []core.SearchKind) *core.SearchResults {
	results := core.NewSearchResults()
	if r == nil {
		return results
	}

	if slices.Contains(kinds, core.SearchTracks) && r.Tracks != nil {
		results.TracksTotal = int(r.Tracks.Total)
		for i := range r.Tracks.Tracks {
			results.Tracks = append(results.Tracks, FormatTrack(&r.Tracks.Tracks[i]))
		}
	}
	if slices.Contains(kinds, core.SearchAlbums) && r.Albums != nil {
		results.AlbumsTotal = int(r.Albums.Total)
		for i := range r.Albums.Albums {
			results.Albums = append(results.Albums, FormatSimpleAlbum(&r.Albums.Albums[i]))
		}
	}
	if slices.Contains(kinds, core.SearchArtists) && r.Artists != nil {
		results.ArtistsTotal = int(r.Artists.Total)
		for i := range r.Artists.Artists {
			results.Artists = append(results.Artists, FormatArtist(&r.Artists.Artists[i]))
		}
	}
	if slices.Contains(kinds, core.SearchPlaylists) && r.Playlists != nil {
		results.PlaylistsTotal = int(r.Playlists.Total)
		for i := range r.Playlists.Playlists {
			// Spotify returns null entries for playlists removed since indexing.
			if r.Playlists.Playlists[i].ID == "" {
				continue
			}
			results.Playlists = append(results.Playlists, FormatSimplePlaylist(&r.Playlists.Playlists[i]))
		}
	}

	return results
}
