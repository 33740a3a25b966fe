package tunebridge

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"tunebridge/internal/metrics"
	"tunebridge/internal/youtube"
	"tunebridge/internal/ytdlp"
)

// fakeYTDLP writes a script that records its arguments and prints a direct URL.
func fakeYTDLP(t *testing.T) (binary, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-ins need a POSIX shell")
	}

	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args.txt")
	binary = filepath.Join(dir, "yt-dlp")
	script := "#!/bin/sh\nprintf '%s\\n' \"$@\" > '" + argsFile + "'\necho 'https://rr3.example/videoplayback?itag=140'\n"
	if err := os.WriteFile(binary, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return binary, argsFile
}

func TestNew_Defaults(t *testing.T) {
	client, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if client.Spotify() != nil {
		t.Error("Spotify() should be nil without credentials")
	}
	if _, ok := client.Delegate().(*ytdlp.Client); !ok {
		t.Errorf("Delegate() = %T, want *ytdlp.Client", client.Delegate())
	}
	if client.Gatherer() == nil {
		t.Error("Gatherer() = nil with metrics enabled")
	}

	_, err = client.GetSongByURL(context.Background(), "https://open.spotify.com/track/4PTG3Z6ehGkBFwjybzWkR8", false)
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("GetSongByURL(spotify) error = %v, want ErrNotConfigured", err)
	}

	tracks := client.GetSongsByPlaylist(context.Background(), "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M")
	if tracks == nil || len(tracks) != 0 {
		t.Errorf("GetSongsByPlaylist(spotify) = %v, want empty", tracks)
	}
}

func TestNew_Options(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Config)
		check func(*testing.T, *Client)
	}{
		{
			name:  "native backend",
			setup: func(c *Config) { c.Stream.Backend = "native" },
			check: func(t *testing.T, c *Client) {
				if _, ok := c.Delegate().(*youtube.NativeStreamer); !ok {
					t.Errorf("Delegate() = %T, want *youtube.NativeStreamer", c.Delegate())
				}
			},
		},
		{
			name:  "match memo",
			setup: func(c *Config) { c.Resolve.MatchCacheSize = 100 },
			check: func(t *testing.T, c *Client) {
				if c.memo == nil {
					t.Error("match memo not created")
				}
			},
		},
		{
			name:  "spotify credentials",
			setup: func(c *Config) { c.Spotify.ClientID, c.Spotify.ClientSecret = "id", "secret" },
			check: func(t *testing.T, c *Client) {
				if c.Spotify() == nil {
					t.Error("Spotify() = nil with credentials")
				}
			},
		},
		{
			name:  "metrics disabled",
			setup: func(c *Config) { c.Metrics.Enabled = false },
			check: func(t *testing.T, c *Client) {
				if c.Gatherer() != nil || c.metrics != nil {
					t.Error("metrics created while disabled")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.setup(cfg)

			client, err := New(cfg, zap.NewNop())
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			tt.check(t, client)
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stream.Backend = "vlc"

	if _, err := New(cfg, zap.NewNop()); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("New() error = %v, want ErrInvalidArgument", err)
	}
}

func TestNew_RegistererConflict(t *testing.T) {
	reg := prometheus.NewRegistry()

	if _, err := New(nil, zap.NewNop(), WithRegisterer(reg)); err != nil {
		t.Fatalf("first New() error = %v", err)
	}
	if _, err := New(nil, zap.NewNop(), WithRegisterer(reg)); err == nil {
		t.Error("second New() on the same registerer should fail")
	}
}

func TestClient_GetStreamURLByURL(t *testing.T) {
	binary, argsFile := fakeYTDLP(t)
	cfg := DefaultConfig()
	cfg.YTDLP.BinaryPath = binary

	client, err := New(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := client.Warmup(context.Background()); err != nil {
		t.Fatalf("Warmup() error = %v", err)
	}

	got, err := client.GetStreamURLByURL(context.Background(), "https://youtu.be/dQw4w9WgXcQ?si=abc")
	if err != nil {
		t.Fatalf("GetStreamURLByURL() error = %v", err)
	}
	if got != "https://rr3.example/videoplayback?itag=140" {
		t.Errorf("GetStreamURLByURL() = %q", got)
	}

	args, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(args), "--force-ipv4\n") || !strings.Contains(string(args), "watch?v=dQw4w9WgXcQ") {
		t.Errorf("yt-dlp args = %s", args)
	}

	_, err = client.GetStreamURLByURL(context.Background(), "https://example.com/song")
	var stageErr *StageError
	if !errors.As(err, &stageErr) || !errors.Is(err, ErrUnsupportedURL) {
		t.Errorf("GetStreamURLByURL(unsupported) error = %v", err)
	}
}

func TestClient_GetLyrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/get" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"id":1,"trackName":"Never Gonna Give You Up","artistName":"Rick Astley",
			"syncedLyrics":"[00:18.81] We're no strangers to love"}`))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.Lyrics.BaseURL = srv.URL + "/api"
	client, err := New(cfg, zap.NewNop(), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got, err := client.GetLyrics(context.Background(), LyricsQuery{Track: "Never Gonna Give You Up", Artist: "Rick Astley"})
	if err != nil {
		t.Fatalf("GetLyrics() error = %v", err)
	}
	if got == nil || len(got.SyncedLyrics) != 1 || got.SyncedLyrics[0].Time != 18810 {
		t.Errorf("GetLyrics() = %+v", got)
	}

	calls := client.metrics.ProviderCallsTotal.WithLabelValues("lrclib", "get", metrics.StatusOK)
	if n := testutil.ToFloat64(calls); n != 1 {
		t.Errorf("lrclib get calls = %v, want 1", n)
	}

	rec := httptest.NewRecorder()
	client.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	if rec.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `provider="lrclib"`) {
		t.Errorf("/metrics body missing lrclib series:\n%s", rec.Body.String())
	}
}

func TestClient_MetricsHandlerDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Metrics.Enabled = false
	client, err := New(cfg, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	client.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	if rec.Code != http.StatusNotFound {
		t.Errorf("/metrics status = %d, want 404", rec.Code)
	}
}

func TestClient_Detect(t *testing.T) {
	client, err := New(nil, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	link, ok := client.Detect("https://music.youtube.com/watch?v=dQw4w9WgXcQ&list=RDAMVM")
	if !ok || link.VideoID != "dQw4w9WgXcQ" || link.PlaylistID != "RDAMVM" {
		t.Errorf("Detect() = %+v, %v", link, ok)
	}
	if _, ok := client.Detect("https://example.com"); ok {
		t.Error("Detect(example.com) ok = true")
	}
}

func TestLoadConfig_BuildsLoggerForNew(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "logs", "tunebridge.log")
	t.Setenv("TUNEBRIDGE_LOG_FILE", logFile)
	t.Setenv("TUNEBRIDGE_LOG_LEVEL", "debug")
	t.Setenv("TUNEBRIDGE_METRICS_ENABLED", "false")

	configFile := filepath.Join(dir, "tunebridge.yaml")
	if err := os.WriteFile(configFile, []byte("stream-backend: native\nresolve-match-cache-size: 64\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(ConfigOptions{EnvFile: filepath.Join(dir, "missing.env"), ConfigFile: configFile})
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Log.File != logFile || cfg.Log.Level != "debug" {
		t.Fatalf("Log = %+v", cfg.Log)
	}

	client, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := client.Delegate().(*youtube.NativeStreamer); !ok {
		t.Errorf("Delegate() = %T, want the native backend from the config file", client.Delegate())
	}
	if client.memo == nil || client.Gatherer() != nil {
		t.Error("config file and environment were not both applied")
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("log file missing: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"tunebridge ready"`) {
		t.Errorf("log file = %s", data)
	}
}

func TestNewLogger_InvalidFileLocation(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewLogger(LogConfig{Level: "info", File: filepath.Join(blocker, "app.log")}); err == nil {
		t.Error("NewLogger() error = nil for a log dir that is a file")
	}

	cfg := DefaultConfig()
	cfg.Log.File = filepath.Join(blocker, "app.log")
	if _, err := New(cfg, nil); err == nil {
		t.Error("New() error = nil when the logger cannot be built")
	}
}

func TestCurrentLine(t *testing.T) {
	lines := []SyncedLine{
		{Time: 18810, Text: "We're no strangers to love"},
		{Time: 22930, Text: "You know the rules and so do I"},
	}

	if _, ok := CurrentLine(lines, 1000); ok {
		t.Error("CurrentLine() before the first line ok = true")
	}

	pos, ok := CurrentLine(lines, 20000)
	if !ok || pos.Index != 0 || pos.Next == nil || pos.Next.Time != 22930 {
		t.Errorf("CurrentLine(20000) = %+v, %v", pos, ok)
	}

	pos, ok = CurrentLine(lines, 60000)
	if !ok || pos.Index != 1 || pos.Next != nil {
		t.Errorf("CurrentLine(60000) = %+v, %v", pos, ok)
	}
}
