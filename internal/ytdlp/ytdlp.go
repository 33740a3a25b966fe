// Package ytdlp drives the yt-dlp executable to turn YouTube video ids into direct audio
// URLs, live audio streams and downloaded files.
package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"tunebridge/internal/core"
)

const (
	audioFormat = "bestaudio[ext=m4a]/bestaudio/best"
	// waitDelay bounds how long Wait keeps pipes open for children that outlive yt-dlp.
	waitDelay = 5 * time.Second
)

// ErrNoOutput is returned when yt-dlp exits cleanly without printing what was asked for.
var ErrNoOutput = errors.New("yt-dlp produced no output")

// ExitError is a non-zero yt-dlp exit.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("yt-dlp exited with code %d", e.Code)
	}
	return fmt.Sprintf("yt-dlp exited with code %d: %s", e.Code, e.Stderr)
}

// exitError converts the error of a finished command.
func exitError(err error, stderr string) error {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return &ExitError{Code: ee.ExitCode(), Stderr: strings.TrimSpace(stderr)}
	}
	return fmt.Errorf("failed to run yt-dlp: %w", err)
}

type Client struct {
	config *core.YTDLPConfig
	logger *zap.Logger
	binary *binaryManager
}

type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
}

// WithHTTPClient sets the client used for GitHub release lookups and binary downloads.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = hc }
}

func New(config *core.YTDLPConfig, logger *zap.Logger, opts ...Option) *Client {
	o := clientOptions{httpClient: http.DefaultClient}
	for _, opt := range opts {
		opt(&o)
	}
	return &Client{
		config: config,
		logger: logger,
		binary: newBinaryManager(config, logger, o.httpClient),
	}
}

// Warmup makes sure the executable is installed.
func (c *Client) Warmup(ctx context.Context) error {
	_, err := c.binary.ensureReady(ctx)
	return err
}

func watchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// defaultArgs are the configured flags every invocation starts with.
func (c *Client) defaultArgs() []string {
	var args []string
	if c.config.CookiesPath != "" {
		args = append(args, "--cookies", c.config.CookiesPath)
	}
	if c.config.UserAgent != "" {
		args = append(args, "--user-agent", c.config.UserAgent)
	}
	if c.config.Referer != "" {
		args = append(args, "--referer", c.config.Referer)
	}
	if c.config.Proxy != "" {
		args = append(args, "--proxy", c.config.Proxy)
	}
	return append(args, c.config.ExtraArgs...)
}

func (c *Client) buildArgs(extraArgs []string, tail ...string) []string {
	args := c.defaultArgs()
	args = append(args, extraArgs...)
	return append(args, tail...)
}

// run executes yt-dlp to completion and returns its stdout.
func (c *Client) run(ctx context.Context, args []string) (string, error) {
	bin, err := c.binary.ensureReady(ctx)
	if err != nil {
		return "", err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	c.logger.Debug("Running yt-dlp", zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("yt-dlp cancelled: %w", ctx.Err())
		}
		return "", exitError(err, stderr.String())
	}
	return stdout.String(), nil
}

// ResolveDirectURL asks yt-dlp for the direct URL of the best audio format.
func (c *Client) ResolveDirectURL(ctx context.Context, videoID string, extraArgs ...string) (string, error) {
	if videoID == "" {
		return "", core.InvalidArgument("video id")
	}

	timeout := c.config.URLTimeout
	if timeout <= 0 {
		timeout = core.DefaultURLTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := c.run(ctx, c.buildArgs(extraArgs,
		"--get-url",
		"-f", audioFormat,
		"--no-warnings",
		"--quiet",
		"--no-playlist",
		"--no-check-certificate",
		watchURL(videoID),
	))
	if err != nil {
		return "", err
	}

	first, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	first = strings.TrimSpace(first)
	if first == "" {
		return "", fmt.Errorf("direct url for %s: %w", videoID, ErrNoOutput)
	}
	return first, nil
}

// DownloadAudio extracts the audio of a video as m4a into dir and returns the file path.
func (c *Client) DownloadAudio(ctx context.Context, videoID, dir string, extraArgs ...string) (string, error) {
	if videoID == "" {
		return "", core.InvalidArgument("video id")
	}
	if dir == "" {
		return "", core.InvalidArgument("dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download dir: %w", err)
	}

	out, err := c.run(ctx, c.buildArgs(extraArgs,
		"-x",
		"--audio-format", "m4a",
		"--audio-quality", "128K",
		"-o", filepath.Join(dir, videoID+".%(ext)s"),
		"--print", "after_move:filepath",
		"--no-warnings",
		"--quiet",
		watchURL(videoID),
	))
	if err != nil {
		return "", err
	}

	path := lastLine(out)
	if path == "" {
		return "", fmt.Errorf("download of %s: %w", videoID, ErrNoOutput)
	}
	c.logger.Info("Downloaded audio", zap.String("video_id", videoID), zap.String("path", path))
	return path, nil
}

func lastLine(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
