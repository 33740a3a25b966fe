package musiclink

import (
	"testing"
)

func TestYouTubeMatcher_CanMatch(t *testing.T) {
	matcher := NewYouTubeMatcher()

	accepted := []string{
		"https://m.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://music.youtube.com/browse/MPREb_4pL8gzRtw1p",
		"https://www.youtube.com/@RickAstleyYT",
		"youtube.com/playlist?list=PLabc123",
	}
	for _, u := range accepted {
		if !matcher.CanMatch(u) {
			t.Errorf("CanMatch(%q) = false, want true", u)
		}
	}

	rejected := []string{
		"https://open.spotify.com/track/4PTG3Z6ehGkBFwjybzWkR8",
		"https://vimeo.com/76979871",
		"https://youtube.example.org/watch?v=dQw4w9WgXcQ",
		"",
	}
	for _, u := range rejected {
		if matcher.CanMatch(u) {
			t.Errorf("CanMatch(%q) = true, want false", u)
		}
	}
}

func TestVideoID_AllShapesAgree(t *testing.T) {
	const want = "dQw4w9WgXcQ"

	urls := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ?si=abc",
		"https://www.youtube.com/embed/dQw4w9WgXcQ",
		"https://music.youtube.com/watch?v=dQw4w9WgXcQ&feature=share",
	}

	for _, u := range urls {
		t.Run(u, func(t *testing.T) {
			if got := VideoID(u); got != want {
				t.Errorf("VideoID(%q) = %q, want %q", u, got, want)
			}
		})
	}
}

func TestPlaylistID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{
			name:     "Playlist page",
			url:      "https://www.youtube.com/playlist?list=PLabc123",
			expected: "PLabc123",
		},
		{
			name:     "Watch URL inside playlist",
			url:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PLabc123&index=2",
			expected: "PLabc123",
		},
		{
			name:     "Music playlist",
			url:      "https://music.youtube.com/playlist?list=OLAK5uy_xyz",
			expected: "OLAK5uy_xyz",
		},
		{
			name:     "No playlist",
			url:      "https://youtu.be/dQw4w9WgXcQ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlaylistID(tt.url); got != tt.expected {
				t.Errorf("PlaylistID() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestYouTubeMatcher_Match(t *testing.T) {
	matcher := NewYouTubeMatcher()

	tests := []struct {
		name      string
		url       string
		wantOK    bool
		wantKind  Kind
		wantVideo string
		wantList  string
	}{
		{
			name:      "Video only",
			url:       "https://www.youtube.com/watch?v=abcdefghijk",
			wantOK:    true,
			wantKind:  KindTrack,
			wantVideo: "abcdefghijk",
		},
		{
			name:      "Video and playlist are both extracted",
			url:       "https://www.youtube.com/watch?v=abcdefghijk&list=PL1",
			wantOK:    true,
			wantKind:  KindTrack,
			wantVideo: "abcdefghijk",
			wantList:  "PL1",
		},
		{
			name:     "Playlist only",
			url:      "https://music.youtube.com/playlist?list=PL2",
			wantOK:   true,
			wantKind: KindPlaylist,
			wantList: "PL2",
		},
		{
			name:   "Channel page has no id",
			url:    "https://www.youtube.com/@someone",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, ok := matcher.Match(tt.url)
			if ok != tt.wantOK {
				t.Fatalf("Match() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if link.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", link.Kind, tt.wantKind)
			}
			if link.VideoID != tt.wantVideo {
				t.Errorf("VideoID = %q, want %q", link.VideoID, tt.wantVideo)
			}
			if link.PlaylistID != tt.wantList {
				t.Errorf("PlaylistID = %q, want %q", link.PlaylistID, tt.wantList)
			}
		})
	}
}
