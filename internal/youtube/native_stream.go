package youtube

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	kkyoutube "github.com/kkdai/youtube/v2"
	"go.uber.org/zap"

	"tunebridge/internal/core"
)

var errNoAudioFormat = errors.New("no audio format available")

// NativeStreamer resolves and streams audio in process, without the yt-dlp executable.
// Delegate arguments meant for yt-dlp are ignored.
type NativeStreamer struct {
	client *Client
	logger *zap.Logger
}

func NewNativeStreamer(client *Client, logger *zap.Logger) *NativeStreamer {
	return &NativeStreamer{client: client, logger: logger}
}

// Warmup prepares the shared YouTube session.
func (s *NativeStreamer) Warmup(ctx context.Context) error {
	return s.client.Warmup(ctx)
}

func (s *NativeStreamer) ResolveDirectURL(ctx context.Context, videoID string, _ ...string) (string, error) {
	yt, video, format, err := s.bestAudio(ctx, videoID)
	if err != nil {
		return "", err
	}

	streamURL, err := yt.GetStreamURLContext(ctx, video, format)
	if err != nil {
		return "", fmt.Errorf("failed to resolve stream url of %s: %w", videoID, err)
	}
	if streamURL == "" {
		return "", fmt.Errorf("empty stream url for %s", videoID)
	}
	return streamURL, nil
}

// OpenAudioStream returns once the first byte has arrived. The download outlives ctx and
// stops when the stream is drained or closed.
func (s *NativeStreamer) OpenAudioStream(ctx context.Context, videoID string, _ ...string) (core.AudioStream, error) {
	yt, video, format, err := s.bestAudio(ctx, videoID)
	if err != nil {
		return nil, err
	}

	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	body, _, err := yt.GetStreamContext(streamCtx, video, format)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open stream of %s: %w", videoID, err)
	}

	reader := bufio.NewReader(body)
	if _, err := reader.Peek(1); err != nil {
		cancel()
		body.Close()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("stream of %s ended before any audio", videoID)
		}
		return nil, fmt.Errorf("failed to read stream of %s: %w", videoID, err)
	}

	s.logger.Debug("Opened native audio stream",
		zap.String("video_id", videoID),
		zap.Int("itag", format.ItagNo),
		zap.Int("bitrate", format.Bitrate))

	return &nativeStream{reader: reader, body: body, cancel: cancel}, nil
}

func (s *NativeStreamer) bestAudio(ctx context.Context, videoID string) (*kkyoutube.Client, *kkyoutube.Video, *kkyoutube.Format, error) {
	if videoID == "" {
		return nil, nil, nil, core.InvalidArgument("video id")
	}

	sess, err := s.client.ensureReady(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	yt := sess.videos()
	video, err := yt.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get video %s: %w", videoID, err)
	}

	format := bestAudioFormat(video.Formats)
	if format == nil {
		return nil, nil, nil, fmt.Errorf("%w for %s", errNoAudioFormat, videoID)
	}
	return yt, video, format, nil
}

// bestAudioFormat picks the audio format with the highest bitrate.
func bestAudioFormat(formats kkyoutube.FormatList) *kkyoutube.Format {
	var best *kkyoutube.Format
	audio := formats.Type("audio")
	for i := range audio {
		if best == nil || audio[i].Bitrate > best.Bitrate {
			best = &audio[i]
		}
	}
	return best
}

type nativeStream struct {
	reader *bufio.Reader
	body   io.ReadCloser
	cancel context.CancelFunc

	mu        sync.Mutex
	bytesRead int64
	err       error
	closed    bool
}

func (s *nativeStream) Read(p []byte) (int, error) {
	n, err := s.reader.Read(p)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bytesRead += int64(n)
	if err != nil && !errors.Is(err, io.EOF) && s.err == nil {
		s.err = err
	}
	return n, err
}

func (s *nativeStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	return s.body.Close()
}

func (s *nativeStream) BytesRead() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bytesRead
}

func (s *nativeStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
