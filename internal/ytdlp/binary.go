package ytdlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"tunebridge/internal/core"
)

const (
	githubUserAgent = "tunebridge-ytdlp"
	versionTimeout  = 15 * time.Second
)

// assetName is the release asset yt-dlp publishes for goos.
func assetName(goos string) string {
	switch goos {
	case "windows":
		return "yt-dlp.exe"
	case "darwin":
		return "yt-dlp_macos"
	default:
		return "yt-dlp_linux"
	}
}

type release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	Assets  []struct {
		Name        string `json:"name"`
		DownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

func (r *release) version() string {
	if r.TagName != "" {
		return r.TagName
	}
	return r.Name
}

// binaryManager keeps a usable yt-dlp executable on disk. The first call downloads the
// platform build from the latest GitHub release; later calls check for a newer release at
// most once per UpdateEvery.
type binaryManager struct {
	config     *core.YTDLPConfig
	logger     *zap.Logger
	httpClient *http.Client

	group       singleflight.Group
	mu          sync.RWMutex
	path        string
	lastChecked time.Time
}

func newBinaryManager(config *core.YTDLPConfig, logger *zap.Logger, hc *http.Client) *binaryManager {
	return &binaryManager{config: config, logger: logger, httpClient: hc}
}

func (m *binaryManager) binDir() string {
	if m.config.BinDir != "" {
		return m.config.BinDir
	}
	return filepath.Join(os.TempDir(), "yt-dlp-bin")
}

func (m *binaryManager) binPath() string {
	return filepath.Join(m.binDir(), assetName(runtime.GOOS))
}

func (m *binaryManager) updateDue(now time.Time) bool {
	if !m.config.AutoUpdate {
		return false
	}
	every := m.config.UpdateEvery
	if every <= 0 {
		every = core.DefaultYTDLPUpdateEvery
	}
	return now.Sub(m.lastChecked) >= every
}

// ensureReady returns the executable path, downloading or updating it when needed.
// Concurrent callers share one download.
func (m *binaryManager) ensureReady(ctx context.Context) (string, error) {
	if m.config.BinaryPath != "" {
		return m.config.BinaryPath, nil
	}

	m.mu.RLock()
	path, due := m.path, m.updateDue(time.Now())
	m.mu.RUnlock()
	if path != "" && !due {
		return path, nil
	}

	v, err, _ := m.group.Do("binary", func() (any, error) {
		m.mu.RLock()
		path, due := m.path, m.updateDue(time.Now())
		m.mu.RUnlock()
		if path != "" && !due {
			return path, nil
		}
		return m.prepare(context.WithoutCancel(ctx))
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (m *binaryManager) prepare(ctx context.Context) (string, error) {
	path := m.binPath()
	if err := os.MkdirAll(m.binDir(), 0o755); err != nil {
		return "", fmt.Errorf("failed to create yt-dlp bin dir: %w", err)
	}

	_, statErr := os.Stat(path)
	switch {
	case errors.Is(statErr, os.ErrNotExist):
		rel, err := m.latestRelease(ctx)
		if err != nil {
			return "", err
		}
		if err := m.download(ctx, rel, path); err != nil {
			return "", err
		}
		m.logger.Info("Downloaded yt-dlp", zap.String("version", rel.version()), zap.String("path", path))
	case statErr != nil:
		return "", fmt.Errorf("failed to stat yt-dlp binary: %w", statErr)
	default:
		m.mu.RLock()
		due := m.updateDue(time.Now())
		m.mu.RUnlock()
		if due {
			m.checkForUpdate(ctx, path)
		}
	}

	m.mu.Lock()
	m.path = path
	m.lastChecked = time.Now()
	m.mu.Unlock()
	return path, nil
}

// checkForUpdate replaces the binary when its version differs from the latest release.
// Failures are logged and the existing binary stays in use.
func (m *binaryManager) checkForUpdate(ctx context.Context, path string) {
	rel, err := m.latestRelease(ctx)
	if err != nil {
		m.logger.Warn("yt-dlp update check failed", zap.Error(err))
		return
	}

	current := m.installedVersion(ctx, path)
	latest := rel.version()
	if current != "" && (latest == "" || strings.Contains(current, latest)) {
		m.logger.Debug("yt-dlp is up to date", zap.String("version", current))
		return
	}

	if err := m.download(ctx, rel, path); err != nil {
		m.logger.Warn("yt-dlp update failed", zap.String("latest", latest), zap.Error(err))
		return
	}
	m.logger.Info("Updated yt-dlp", zap.String("from", current), zap.String("to", latest))
}

func (m *binaryManager) installedVersion(ctx context.Context, path string) string {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		m.logger.Debug("Failed to read yt-dlp version", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(string(out))
}

func (m *binaryManager) fetchTimeout() time.Duration {
	if m.config.FetchTimeout > 0 {
		return m.config.FetchTimeout
	}
	return core.DefaultBinaryFetchTimeout
}

func (m *binaryManager) releaseURL() string {
	if m.config.ReleaseURL != "" {
		return m.config.ReleaseURL
	}
	return core.DefaultConfig().YTDLP.ReleaseURL
}

func (m *binaryManager) latestRelease(ctx context.Context) (*release, error) {
	ctx, cancel := context.WithTimeout(ctx, m.fetchTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.releaseURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create release request: %w", err)
	}
	req.Header.Set("User-Agent", githubUserAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch yt-dlp release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch yt-dlp release: HTTP %d", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("failed to decode yt-dlp release: %w", err)
	}
	return &rel, nil
}

// download writes the platform asset of rel next to path and renames it into place.
func (m *binaryManager) download(ctx context.Context, rel *release, path string) error {
	name := assetName(runtime.GOOS)
	var assetURL string
	for _, a := range rel.Assets {
		if a.Name == name {
			assetURL = a.DownloadURL
			break
		}
	}
	if assetURL == "" {
		return fmt.Errorf("yt-dlp asset %s not found in release %s", name, rel.version())
	}

	ctx, cancel := context.WithTimeout(ctx, m.fetchTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}
	req.Header.Set("User-Agent", githubUserAgent)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download yt-dlp: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download yt-dlp: HTTP %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), name+".*.part")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write yt-dlp binary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write yt-dlp binary: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o755); err != nil {
		return fmt.Errorf("failed to make yt-dlp executable: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to install yt-dlp binary: %w", err)
	}
	return nil
}
