package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"go.uber.org/zap"

	"tunebridge/internal/core"
)

// StreamError reports a yt-dlp failure after part of the audio was delivered.
type StreamError struct {
	BytesRead int64
	Err       error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("audio stream failed after %d bytes: %v", e.BytesRead, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// Stream is the stdout of a running yt-dlp process. It is not bound to the context it was
// opened with; the process ends when the output is drained or Close is called.
type Stream struct {
	cmd    *exec.Cmd
	reader *bufio.Reader
	stderr *bytes.Buffer
	logger *zap.Logger

	waitOnce sync.Once
	waitErr  error

	mu        sync.Mutex
	bytesRead int64
	err       error
	completed bool
	closed    bool
}

// OpenAudioStream starts yt-dlp writing the best audio to stdout and returns once the first
// byte is available. A process that exits before producing audio is an error.
func (c *Client) OpenAudioStream(ctx context.Context, videoID string, extraArgs ...string) (core.AudioStream, error) {
	if videoID == "" {
		return nil, core.InvalidArgument("video id")
	}

	bin, err := c.binary.ensureReady(ctx)
	if err != nil {
		return nil, err
	}

	args := c.buildArgs(extraArgs,
		"-o", "-",
		"-f", audioFormat,
		"-x",
		"--no-part",
		"--quiet",
		"--no-warnings",
		watchURL(videoID),
	)

	var stderr bytes.Buffer
	cmd := exec.Command(bin, args...)
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create yt-dlp pipe: %w", err)
	}

	c.logger.Debug("Starting yt-dlp stream", zap.String("video_id", videoID))
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start yt-dlp: %w", err)
	}

	s := &Stream{
		cmd:    cmd,
		reader: bufio.NewReader(stdout),
		stderr: &stderr,
		logger: c.logger,
	}

	peeked := make(chan error, 1)
	go func() {
		_, err := s.reader.Peek(1)
		peeked <- err
	}()

	select {
	case err := <-peeked:
		if err == nil {
			return s, nil
		}
		if waitErr := s.wait(); waitErr != nil {
			return nil, exitError(waitErr, stderr.String())
		}
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("stream of %s: %w", videoID, ErrNoOutput)
		}
		return nil, fmt.Errorf("failed to read yt-dlp output: %w", err)
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-peeked
		_ = s.wait()
		return nil, ctx.Err()
	}
}

// wait reaps the process once. It must only run after stdout hit EOF or the process was killed.
func (s *Stream) wait() error {
	s.waitOnce.Do(func() {
		s.waitErr = s.cmd.Wait()
	})
	return s.waitErr
}

func (s *Stream) Read(p []byte) (int, error) {
	n, err := s.reader.Read(p)

	s.mu.Lock()
	s.bytesRead += int64(n)
	total, closed := s.bytesRead, s.closed
	s.mu.Unlock()

	if err == nil || closed {
		return n, err
	}
	if !errors.Is(err, io.EOF) {
		return n, s.fail(&StreamError{BytesRead: total, Err: err})
	}
	if waitErr := s.wait(); waitErr != nil {
		return n, s.fail(&StreamError{BytesRead: total, Err: exitError(waitErr, s.stderr.String())})
	}

	s.mu.Lock()
	s.completed = true
	s.mu.Unlock()
	return n, io.EOF
}

func (s *Stream) fail(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
	return s.err
}

// Close stops an unfinished process. It is safe to call more than once.
func (s *Stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	completed := s.completed
	s.mu.Unlock()

	if !completed {
		if err := s.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			s.logger.Debug("Failed to kill yt-dlp", zap.Error(err))
		}
	}
	_ = s.wait()
	return nil
}

// BytesRead is the number of audio bytes delivered so far.
func (s *Stream) BytesRead() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bytesRead
}

// Err is the terminal error of the stream, nil while it is healthy or after a clean end.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Completed reports whether yt-dlp exited successfully after delivering all output.
func (s *Stream) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}
