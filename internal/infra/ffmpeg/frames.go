package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"go.uber.org/zap"

	"github.com/swinglab/swinglab-detection-service/internal/domain/entity"
	"github.com/swinglab/swinglab-detection-service/internal/domain/port"
)

// FrameReader streams grayscale frames out of ffmpeg over a pipe instead of
// writing intermediate image files. One byte per pixel keeps the per-frame
// buffer at analysis resolution small enough to copy per retained frame.
type FrameReader struct {
	ffmpegPath string
	logger     *zap.Logger
}

func NewFrameReader(ffmpegPath string, logger *zap.Logger) *FrameReader {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FrameReader{ffmpegPath: ffmpegPath, logger: logger}
}

func (r *FrameReader) Open(ctx context.Context, video *entity.Video, analysisWidth, stride int) (port.FrameStream, error) {
	if video.FPS <= 0 {
		return nil, fmt.Errorf("open frame stream: %s has invalid frame rate", video.Path)
	}
	if video.Width <= 0 || video.Height <= 0 {
		return nil, fmt.Errorf("open frame stream: %s has no dimensions", video.Path)
	}
	if stride < 1 {
		stride = 1
	}

	w, h := analysisDims(video, analysisWidth)
	args := []string{"-v", "error", "-i", video.Path}
	if w != video.Width || h != video.Height {
		args = append(args, "-vf", fmt.Sprintf("scale=%d:%d", w, h))
	}
	args = append(args, "-f", "rawvideo", "-pix_fmt", "gray", "pipe:1")

	cmd := exec.CommandContext(ctx, r.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open frame stream: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg for %s: %w", video.Path, err)
	}

	r.logger.Debug("frame stream opened",
		zap.String("path", video.Path),
		zap.Int("width", w),
		zap.Int("height", h),
		zap.Int("stride", stride),
	)

	return &grayStream{
		cmd:    cmd,
		out:    stdout,
		stderr: &stderr,
		buf:    make([]byte, w*h),
		width:  w,
		height: h,
		fps:    video.FPS,
		stride: stride,
		path:   video.Path,
		logger: r.logger,
	}, nil
}

// analysisDims scales the probed dimensions down to the analysis width,
// preserving aspect ratio. Videos already at or below that width pass
// through unscaled.
func analysisDims(video *entity.Video, analysisWidth int) (int, int) {
	if analysisWidth <= 0 || analysisWidth >= video.Width {
		return video.Width, video.Height
	}
	h := (video.Height*analysisWidth + video.Width/2) / video.Width
	if h < 1 {
		h = 1
	}
	return analysisWidth, h
}

type grayStream struct {
	cmd    *exec.Cmd
	out    io.ReadCloser
	stderr *bytes.Buffer
	buf    []byte
	width  int
	height int
	fps    float64
	stride int
	next   int
	path   string
	logger *zap.Logger
}

// Next returns the next retained frame. Any mid-stream decode failure,
// including a short final frame, truncates the stream: callers see io.EOF
// and keep whatever was collected so far.
func (s *grayStream) Next() (*port.Frame, error) {
	for {
		if _, err := io.ReadFull(s.out, s.buf); err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Warn("frame stream truncated",
					zap.String("path", s.path),
					zap.Int("frames_read", s.next),
					zap.Error(err),
					zap.String("ffmpeg_stderr", lastLine(s.stderr.String())),
				)
			}
			return nil, io.EOF
		}
		idx := s.next
		s.next++
		if idx%s.stride != 0 {
			continue
		}

		pixels := make([]byte, len(s.buf))
		copy(pixels, s.buf)
		return &port.Frame{
			Index:  idx,
			Time:   float64(idx) / s.fps,
			Width:  s.width,
			Height: s.height,
			Pixels: pixels,
		}, nil
	}
}

func (s *grayStream) Close() error {
	s.out.Close()
	if err := s.cmd.Wait(); err != nil {
		s.logger.Debug("ffmpeg exited",
			zap.String("path", s.path),
			zap.Error(err),
		)
	}
	return nil
}

func lastLine(s string) string {
	lines := bytes.Split(bytes.TrimSpace([]byte(s)), []byte("\n"))
	if len(lines) == 0 {
		return ""
	}
	return string(bytes.TrimSpace(lines[len(lines)-1]))
}
